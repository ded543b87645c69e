package glassglyph

import "github.com/unixpickle/model3d/model2d"

// HAlign controls where a row of glyphs sits relative to x=0.
type HAlign int

const (
	// HAlignLeft starts the row at x=0.
	HAlignLeft HAlign = iota
	// HAlignCenter centers the row around x=0.
	HAlignCenter
	// HAlignRight ends the row at x=0.
	HAlignRight
)

// RowOptions configures LayoutRow.
type RowOptions struct {
	// Gap is the space between neighboring glyph boxes in model units.
	Gap float64

	// SpaceWidth is the advance of a ' ' character. Zero uses half the
	// height of the tallest glyph in the row.
	SpaceWidth float64

	Align HAlign

	CurveSegments int
}

// LayoutRow places the glyphs of text side by side, each at its own
// bounding box width, with glyph centers on y=0.
func LayoutRow(lib *Library, text string, opts RowOptions) ShapeGroup {
	segs := opts.CurveSegments
	if segs <= 0 {
		segs = DefaultCurveSegments
	}

	type placed struct {
		group    ShapeGroup
		min, max model2d.Coord
	}
	var glyphs []*placed
	var tallest float64
	for _, r := range text {
		if r == ' ' {
			glyphs = append(glyphs, nil)
			continue
		}
		g := lib.ContoursFor(r)
		min, max := g.Bounds(segs)
		if h := max.Y - min.Y; h > tallest {
			tallest = h
		}
		glyphs = append(glyphs, &placed{group: g, min: min, max: max})
	}
	space := opts.SpaceWidth
	if space <= 0 {
		space = tallest / 2
	}

	var res ShapeGroup
	penX := 0.0
	for i, p := range glyphs {
		if i > 0 {
			penX += opts.Gap
		}
		if p == nil {
			penX += space
			continue
		}
		offset := model2d.XY(penX-p.min.X, -(p.min.Y+p.max.Y)/2)
		res = append(res, p.group.Translate(offset)...)
		penX += p.max.X - p.min.X
	}

	var dx float64
	switch opts.Align {
	case HAlignLeft:
	case HAlignCenter:
		dx = -penX / 2
	case HAlignRight:
		dx = -penX
	default:
		panic("unknown HAlign")
	}
	if dx != 0 {
		res = res.Translate(model2d.XY(dx, 0))
	}
	return res
}
