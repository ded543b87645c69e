package glassglyph

import (
	"fmt"
	"sort"
	"sync"
	"unicode"

	"github.com/unixpickle/model3d/model2d"
)

// GlyphScale converts glyph table units to model units.
const GlyphScale = 0.006

// glyphTable holds SVG path data for every supported character, in a Y-down
// design space centered on the origin. Each entry lists independently
// extruded parts; within a part, the first subpath is the outline and later
// subpaths are counters.
var glyphTable = map[rune][]string{
	'A': {"M-40 60 L0 -60 L40 60 L25 60 L15 20 L-15 20 L-25 60 Z M0 -25 L9 5 L-9 5 Z"},
	'B': {"M-30 -60 L10 -60 Q35 -60 35 -32 Q35 -10 18 -3 Q40 5 40 30 Q40 60 12 60 L-30 60 Z " +
		"M-15 -45 L8 -45 Q20 -45 20 -31 Q20 -15 8 -15 L-15 -15 Z " +
		"M-15 0 L10 0 Q25 0 25 28 Q25 45 10 45 L-15 45 Z"},
	'C': {"M35 -45 Q30 -70 0 -70 Q-40 -70 -40 0 Q-40 70 0 70 Q30 70 35 45 L20 40 " +
		"Q17 55 0 55 Q-25 55 -25 0 Q-25 -55 0 -55 Q17 -55 20 -40 Z"},
	'D': {"M-30 -60 L0 -60 Q40 -60 40 0 Q40 60 0 60 L-30 60 Z " +
		"M-15 -45 L0 -45 Q25 -45 25 0 Q25 45 0 45 L-15 45 Z"},
	'E': {"M-30 -60 L30 -60 L30 -45 L-15 -45 L-15 -7 L20 -7 L20 7 L-15 7 L-15 45 L30 45 L30 60 L-30 60 Z"},
	'F': {"M-30 -60 L30 -60 L30 -45 L-15 -45 L-15 -7 L20 -7 L20 7 L-15 7 L-15 60 L-30 60 Z"},
	'G': {"M35 -45 Q30 -70 0 -70 Q-40 -70 -40 0 Q-40 70 0 70 Q40 70 40 20 L40 0 L5 0 L5 14 L25 14 " +
		"L25 20 Q25 55 0 55 Q-25 55 -25 0 Q-25 -55 0 -55 Q17 -55 20 -40 Z"},
	'H': {"M-30 -60 L-15 -60 L-15 -7 L15 -7 L15 -60 L30 -60 L30 60 L15 60 L15 8 L-15 8 L-15 60 L-30 60 Z"},
	'I': {"M-8 -60 L8 -60 L8 60 L-8 60 Z"},
	'J': {"M10 -60 L25 -60 L25 25 Q25 60 -5 60 Q-35 60 -35 30 L-20 30 Q-20 45 -5 45 Q10 45 10 25 Z"},
	'K': {"M-30 -60 L-15 -60 L-15 -8 L20 -60 L38 -60 L2 -2 L40 60 L22 60 L-6 12 L-15 22 L-15 60 L-30 60 Z"},
	'L': {"M-30 -60 L-15 -60 L-15 45 L30 45 L30 60 L-30 60 Z"},
	'M': {"M-35 -60 L-18 -60 L0 -5 L18 -60 L35 -60 L35 60 L20 60 L20 -25 L5 15 L-5 15 L-20 -25 L-20 60 L-35 60 Z"},
	'N': {"M-30 -60 L-14 -60 L15 25 L15 -60 L30 -60 L30 60 L14 60 L-15 -25 L-15 60 L-30 60 Z"},
	'O': {"M0 -70 Q-40 -70 -40 0 Q-40 70 0 70 Q40 70 40 0 Q40 -70 0 -70 Z " +
		"M0 -55 Q-25 -55 -25 0 Q-25 55 0 55 Q25 55 25 0 Q25 -55 0 -55 Z"},
	'P': {"M-30 -60 L5 -60 Q35 -60 35 -28 Q35 5 5 5 L-15 5 L-15 60 L-30 60 Z " +
		"M-15 -45 L5 -45 Q20 -45 20 -28 Q20 -10 5 -10 L-15 -10 Z"},
	'Q': {
		"M0 -70 Q-40 -70 -40 0 Q-40 70 0 70 Q40 70 40 0 Q40 -70 0 -70 Z " +
			"M0 -55 Q-25 -55 -25 0 Q-25 55 0 55 Q25 55 25 0 Q25 -55 0 -55 Z",
		"M2 28 L17 20 L43 66 L28 74 Z",
	},
	'R': {
		"M-30 -60 L5 -60 Q35 -60 35 -28 Q35 5 5 5 L-15 5 L-15 60 L-30 60 Z " +
			"M-15 -45 L5 -45 Q20 -45 20 -28 Q20 -10 5 -10 L-15 -10 Z",
		"M0 0 L16 0 L38 60 L22 60 Z",
	},
	'S': {"M35 -45 Q30 -70 0 -70 Q-35 -70 -35 -35 Q-35 -8 0 -4 Q22 -1 22 28 Q22 55 0 55 " +
		"Q-17 55 -22 40 L-37 45 Q-30 70 0 70 Q37 70 37 28 Q37 -13 0 -18 Q-20 -21 -20 -35 " +
		"Q-20 -55 0 -55 Q17 -55 20 -40 Z"},
	'T': {"M-30 -60 L30 -60 L30 -45 L7 -45 L7 60 L-7 60 L-7 -45 L-30 -45 Z"},
	'U': {"M-30 -60 L-15 -60 L-15 20 Q-15 55 0 55 Q15 55 15 20 L15 -60 L30 -60 L30 20 " +
		"Q30 70 0 70 Q-30 70 -30 20 Z"},
	'V': {"M-40 -60 L-24 -60 L0 35 L24 -60 L40 -60 L8 60 L-8 60 Z"},
	'W': {"M-42 -60 L-28 -60 L-16 30 L-6 -20 L6 -20 L16 30 L28 -60 L42 -60 L24 60 L10 60 " +
		"L0 15 L-10 60 L-24 60 Z"},
	'X': {
		"M-38 -60 L-20 -60 L38 60 L20 60 Z",
		"M20 -60 L38 -60 L-20 60 L-38 60 Z",
	},
	'Y': {"M-38 -60 L-20 -60 L0 -15 L20 -60 L38 -60 L8 5 L8 60 L-8 60 L-8 5 Z"},
	'Z': {"M-30 -60 L30 -60 L30 -46 L-11 45 L30 45 L30 60 L-30 60 L-30 46 L11 -45 L-30 -45 Z"},

	'0': {"M0 -70 Q-35 -70 -35 0 Q-35 70 0 70 Q35 70 35 0 Q35 -70 0 -70 Z " +
		"M0 -55 Q-20 -55 -20 0 Q-20 55 0 55 Q20 55 20 0 Q20 -55 0 -55 Z"},
	'1': {"M-5 -60 L8 -60 L8 45 L25 45 L25 60 L-25 60 L-25 45 L-7 45 L-7 -38 L-22 -30 L-26 -42 Z"},
	'2': {"M-32 -35 Q-30 -70 0 -70 Q32 -70 32 -35 Q32 -12 5 12 L-12 45 L33 45 L33 60 L-32 60 " +
		"L-32 48 L-7 5 Q17 -15 17 -35 Q17 -55 0 -55 Q-15 -55 -17 -33 Z"},
	'3': {"M-30 -40 Q-28 -70 0 -70 Q32 -70 32 -37 Q32 -12 15 -5 Q35 5 35 30 Q35 70 0 70 " +
		"Q-30 70 -33 40 L-18 37 Q-15 55 0 55 Q20 55 20 30 Q20 5 -5 5 L-8 5 L-8 -9 L-3 -9 " +
		"Q17 -9 17 -37 Q17 -55 0 -55 Q-13 -55 -15 -37 Z"},
	'4': {
		"M8 -60 L25 -60 L25 20 L35 20 L35 34 L25 34 L25 60 L10 60 L10 34 L-35 34 L-35 20 Z " +
			"M10 20 L10 -30 L-18 20 Z",
	},
	'5': {"M-25 -60 L30 -60 L30 -45 L-11 -45 L-13 -15 Q-5 -20 5 -20 Q35 -20 35 22 Q35 70 0 70 " +
		"Q-28 70 -33 42 L-18 38 Q-15 55 0 55 Q20 55 20 22 Q20 -5 3 -5 Q-10 -5 -15 5 L-29 2 Z"},
	'6': {"M28 -55 Q20 -70 0 -70 Q-35 -70 -35 0 Q-35 70 0 70 Q35 70 35 25 Q35 -18 0 -18 " +
		"Q-12 -18 -20 -12 Q-18 -55 0 -55 Q10 -55 14 -48 Z " +
		"M0 -3 Q-20 -3 -20 25 Q-20 55 0 55 Q20 55 20 25 Q20 -3 0 -3 Z"},
	'7': {"M-30 -60 L30 -60 L30 -47 L-2 60 L-18 60 L13 -45 L-30 -45 Z"},
	'8': {"M0 -70 Q-32 -70 -32 -35 Q-32 -10 -14 -3 Q-36 8 -36 32 Q-36 70 0 70 Q36 70 36 32 " +
		"Q36 8 14 -3 Q32 -10 32 -35 Q32 -70 0 -70 Z " +
		"M0 -55 Q-17 -55 -17 -35 Q-17 -13 0 -13 Q17 -13 17 -35 Q17 -55 0 -55 Z " +
		"M0 5 Q-21 5 -21 32 Q-21 55 0 55 Q21 55 21 32 Q21 5 0 5 Z"},
	'9': {"M-28 55 Q-20 70 0 70 Q35 70 35 0 Q35 -70 0 -70 Q-35 -70 -35 -25 Q-35 18 0 18 " +
		"Q12 18 20 12 Q18 55 0 55 Q-10 55 -14 48 Z " +
		"M0 3 Q20 3 20 -25 Q20 -55 0 -55 Q-20 -55 -20 -25 Q-20 3 0 3 Z"},
}

// Characters returns the characters offered for export, in order.
func Characters() []rune {
	return []rune("0123456789")
}

// AllCharacters returns every character in the glyph table, letters first.
func AllCharacters() []rune {
	return []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
}

// PlaceholderShape returns the square used for characters that cannot be
// built.
func PlaceholderShape() ShapeGroup {
	const h = 0.3
	c := &Contour{
		Start: model2d.XY(-h, -h),
		Segments: []Segment{
			{Kind: SegmentLine, End: model2d.XY(h, -h)},
			{Kind: SegmentLine, End: model2d.XY(h, h)},
			{Kind: SegmentLine, End: model2d.XY(-h, h)},
		},
		Closed: true,
	}
	return ShapeGroup{{Outer: c}}
}

// A GlyphSource builds the shape group for a single, already upper-cased
// character.
type GlyphSource interface {
	Glyph(r rune) (ShapeGroup, error)
	Defined(r rune) bool
}

// TableSource builds glyphs from the built-in path table.
type TableSource struct {
	Scale float64
}

func (t TableSource) Defined(r rune) bool {
	_, ok := glyphTable[r]
	return ok
}

func (t TableSource) Glyph(r rune) (ShapeGroup, error) {
	parts, ok := glyphTable[r]
	if !ok {
		return nil, fmt.Errorf("no glyph for %q", r)
	}
	scale := t.Scale
	if scale == 0 {
		scale = GlyphScale
	}
	res := make(ShapeGroup, 0, len(parts))
	for i, part := range parts {
		shape, err := ParseSVGShape(part, scale)
		if err != nil {
			return nil, fmt.Errorf("glyph %q part %d: %w", r, i, err)
		}
		res = append(res, shape)
	}
	return res, nil
}

// Library memoizes shape groups per character.
//
// Characters are upper-cased before lookup. Characters the source cannot
// build resolve to PlaceholderShape, and Warnf (if set) is called once per
// such character.
type Library struct {
	Source GlyphSource
	Warnf  func(format string, args ...any)

	lock   sync.Mutex
	cache  map[rune]ShapeGroup
	warned map[rune]bool
}

// DefaultLibrary is the process-wide table-backed library.
var DefaultLibrary = NewLibrary()

// NewLibrary creates a library backed by the built-in glyph table.
func NewLibrary() *Library {
	return &Library{Source: TableSource{Scale: GlyphScale}}
}

// ContoursFor looks up r in DefaultLibrary.
func ContoursFor(r rune) ShapeGroup {
	return DefaultLibrary.ContoursFor(r)
}

// ContoursFor returns the shape group for r.
//
// The result is shared between callers and must not be modified.
func (l *Library) ContoursFor(r rune) ShapeGroup {
	r = unicode.ToUpper(r)

	l.lock.Lock()
	defer l.lock.Unlock()
	if g, ok := l.cache[r]; ok {
		return g
	}
	if l.cache == nil {
		l.cache = map[rune]ShapeGroup{}
	}

	g, err := l.Source.Glyph(r)
	if err == nil && len(g) == 0 {
		err = fmt.Errorf("glyph %q is empty", r)
	}
	if err != nil {
		if l.warned == nil {
			l.warned = map[rune]bool{}
		}
		if !l.warned[r] && l.Warnf != nil {
			l.Warnf("using placeholder for %q: %v", r, err)
		}
		l.warned[r] = true
		g = PlaceholderShape()
	}
	l.cache[r] = g
	return g
}

// Defined reports whether r has a real glyph rather than the placeholder.
func (l *Library) Defined(r rune) bool {
	return l.Source.Defined(unicode.ToUpper(r))
}

// Cached returns the characters that have been built so far, sorted.
func (l *Library) Cached() []rune {
	l.lock.Lock()
	defer l.lock.Unlock()
	res := make([]rune, 0, len(l.cache))
	for r := range l.cache {
		res = append(res, r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}
