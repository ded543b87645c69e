package glassglyph

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"

	gotextfont "github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/golang/freetype/truetype"
	"github.com/unixpickle/model3d/model2d"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// ParsedFont stores a font parsed by both freetype and go-text.
//
// Outlines come from go-text when it can read the font, and from freetype
// otherwise.
type ParsedFont struct {
	TTFont *truetype.Font

	face *gotextfont.Face
}

// ParseFont parses a TTF/OTF (TrueType outlines) font file.
func ParseFont(data []byte) (*ParsedFont, error) {
	ttf, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}
	res := &ParsedFont{TTFont: ttf}
	if face, err := gotextfont.ParseTTF(bytes.NewReader(data)); err == nil {
		res.face = face
	}
	return res, nil
}

// UnitsPerEm returns the size of the em square in font units.
func (p *ParsedFont) UnitsPerEm() float64 {
	if p.face != nil {
		return float64(p.face.Upem())
	}
	return float64(p.TTFont.FUnitsPerEm())
}

// HasGlyph reports whether the font maps r to a real glyph.
func (p *ParsedFont) HasGlyph(r rune) bool {
	if p.face != nil {
		_, ok := p.face.NominalGlyph(r)
		return ok
	}
	return p.TTFont.Index(r) != 0
}

// GlyphCommands returns the outline of r as drawing commands in font units,
// with the Y axis pointing up.
func (p *ParsedFont) GlyphCommands(r rune) ([]Command, error) {
	if p.face != nil {
		gid, ok := p.face.NominalGlyph(r)
		if !ok {
			return nil, fmt.Errorf("font has no glyph for %q", r)
		}
		outline, ok := p.face.GlyphData(gid).(gotextfont.GlyphOutline)
		if !ok {
			return nil, fmt.Errorf("glyph for %q has no vector outline", r)
		}
		return outlineCommands(outline), nil
	}
	return p.TrueTypeCommands(r)
}

// TrueTypeCommands reads the outline of r through freetype.
func (p *ParsedFont) TrueTypeCommands(r rune) ([]Command, error) {
	idx := p.TTFont.Index(r)
	if idx == 0 {
		return nil, fmt.Errorf("font has no glyph for %q", r)
	}
	// One font unit maps to 64 in the 26.6 glyph buffer.
	fixedScale := fixed.Int26_6(p.TTFont.FUnitsPerEm()) * 64
	var gb truetype.GlyphBuf
	if err := gb.Load(p.TTFont, fixedScale, idx, xfont.HintingNone); err != nil {
		return nil, err
	}
	var cmds []Command
	start := 0
	for _, end := range gb.Ends {
		cmds = append(cmds, trueTypeContourCommands(gb.Points[start:end])...)
		start = end
	}
	if len(cmds) == 0 {
		return nil, fmt.Errorf("glyph for %q is empty", r)
	}
	return cmds, nil
}

func outlineCommands(outline gotextfont.GlyphOutline) []Command {
	cmds := make([]Command, 0, len(outline.Segments)+1)
	open := false
	pt := func(s ot.SegmentPoint) (float64, float64) { return float64(s.X), float64(s.Y) }
	for _, seg := range outline.Segments {
		switch seg.Op {
		case ot.SegmentOpMoveTo:
			if open {
				cmds = append(cmds, ClosePath())
			}
			x, y := pt(seg.Args[0])
			cmds = append(cmds, MoveTo(x, y))
			open = true
		case ot.SegmentOpLineTo:
			x, y := pt(seg.Args[0])
			cmds = append(cmds, LineTo(x, y))
		case ot.SegmentOpQuadTo:
			cx, cy := pt(seg.Args[0])
			x, y := pt(seg.Args[1])
			cmds = append(cmds, QuadTo(cx, cy, x, y))
		case ot.SegmentOpCubeTo:
			c1x, c1y := pt(seg.Args[0])
			c2x, c2y := pt(seg.Args[1])
			x, y := pt(seg.Args[2])
			cmds = append(cmds, CubicTo(c1x, c1y, c2x, c2y, x, y))
		}
	}
	if open {
		cmds = append(cmds, ClosePath())
	}
	return cmds
}

// trueTypeContourCommands walks on-curve and off-curve points of a TrueType
// contour, inserting the implied on-curve midpoints between consecutive
// control points.
func trueTypeContourCommands(pts []truetype.Point) []Command {
	n := len(pts)
	if n == 0 {
		return nil
	}
	coord := func(p truetype.Point) model2d.Coord {
		return model2d.XY(float64(p.X)/64, float64(p.Y)/64)
	}
	onCurve := func(p truetype.Point) bool { return p.Flags&0x01 != 0 }

	var start model2d.Coord
	var rest []truetype.Point
	switch {
	case onCurve(pts[0]):
		start, rest = coord(pts[0]), pts[1:]
	case onCurve(pts[n-1]):
		start, rest = coord(pts[n-1]), pts[:n-1]
	default:
		start, rest = coord(pts[n-1]).Mid(coord(pts[0])), pts
	}

	cmds := []Command{MoveTo(start.X, start.Y)}
	var ctrl model2d.Coord
	haveCtrl := false
	for _, p := range rest {
		c := coord(p)
		if onCurve(p) {
			if haveCtrl {
				cmds = append(cmds, QuadTo(ctrl.X, ctrl.Y, c.X, c.Y))
				haveCtrl = false
			} else {
				cmds = append(cmds, LineTo(c.X, c.Y))
			}
			continue
		}
		if haveCtrl {
			mid := ctrl.Mid(c)
			cmds = append(cmds, QuadTo(ctrl.X, ctrl.Y, mid.X, mid.Y))
		}
		ctrl = c
		haveCtrl = true
	}
	if haveCtrl {
		cmds = append(cmds, QuadTo(ctrl.X, ctrl.Y, start.X, start.Y))
	}
	return append(cmds, ClosePath())
}

// FontSource builds glyphs from a parsed font.
//
// Each glyph is scaled by Scale/UnitsPerEm, so a Scale of 1 maps the em
// square to one model unit, and centered on the origin.
type FontSource struct {
	Font  *ParsedFont
	Scale float64
}

// NewFontLibrary creates a library whose glyphs come from font.
func NewFontLibrary(font *ParsedFont, scale float64) *Library {
	return &Library{Source: FontSource{Font: font, Scale: scale}}
}

func (f FontSource) Defined(r rune) bool {
	return f.Font != nil && f.Font.HasGlyph(r)
}

func (f FontSource) Glyph(r rune) (ShapeGroup, error) {
	if f.Font == nil {
		return nil, errors.New("nil font")
	}
	cmds, err := f.Font.GlyphCommands(r)
	if err != nil {
		return nil, err
	}
	scale := f.Scale
	if scale == 0 {
		scale = 1
	}
	interp := Interpreter{Scale: scale / f.Font.UnitsPerEm()}
	shape, err := interp.Interpret(cmds)
	if err != nil {
		return nil, fmt.Errorf("glyph %q: %w", r, err)
	}
	group := GroupContours(append([]*Contour{shape.Outer}, shape.Holes...), DefaultCurveSegments)
	if len(group) == 0 {
		return nil, fmt.Errorf("glyph %q has no area", r)
	}
	min, max := group.Bounds(DefaultCurveSegments)
	return group.Translate(min.Mid(max).Scale(-1)), nil
}

// GroupContours nests contours by containment: a contour lying inside an
// odd number of larger contours becomes a hole of the innermost one, and
// every other contour starts a new shape. This handles glyphs whose outline
// lists several separate parts.
func GroupContours(contours []*Contour, curveSegments int) ShapeGroup {
	type entry struct {
		contour *Contour
		points  []model2d.Coord
		area    float64
		solid   model2d.Solid
	}
	var entries []*entry
	for _, c := range contours {
		pts := c.Points(curveSegments)
		if len(pts) < 3 {
			continue
		}
		mesh := model2d.NewMesh()
		addLoop(mesh, pts)
		entries = append(entries, &entry{
			contour: c,
			points:  pts,
			area:    math.Abs(signedArea(pts)),
			solid:   mesh.Solid(),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].area > entries[j].area
	})

	var group ShapeGroup
	shapeOf := map[*entry]*Shape{}
	for i, e := range entries {
		probe := interiorPoint(e.points)
		var parent *entry
		depth := 0
		for _, other := range entries[:i] {
			if other.solid.Contains(probe) {
				depth++
				parent = other
			}
		}
		if depth%2 == 1 {
			if s, ok := shapeOf[parent]; ok {
				s.Holes = append(s.Holes, e.contour)
				continue
			}
		}
		s := &Shape{Outer: e.contour}
		shapeOf[e] = s
		group = append(group, s)
	}
	return group
}

// interiorPoint returns a point just inside the polygon, next to the middle
// of its longest edge.
func interiorPoint(pts []model2d.Coord) model2d.Coord {
	best := 0
	bestLen := -1.0
	for i := range pts {
		if l := pts[i].Dist(pts[(i+1)%len(pts)]); l > bestLen {
			best, bestLen = i, l
		}
	}
	a, b := pts[best], pts[(best+1)%len(pts)]
	dir := b.Sub(a).Normalize()
	left := model2d.XY(-dir.Y, dir.X)
	if signedArea(pts) < 0 {
		left = left.Scale(-1)
	}
	return a.Mid(b).Add(left.Scale(bestLen * 1e-3))
}
