package glassglyph

import (
	"math"
	"testing"
)

func TestLayoutRow(t *testing.T) {
	lib := &Library{Source: brokenSource{}}

	cases := []struct {
		align    HAlign
		min, max float64
	}{
		{HAlignLeft, 0, 2.4},
		{HAlignCenter, -1.2, 1.2},
		{HAlignRight, -2.4, 0},
	}
	for _, c := range cases {
		row := LayoutRow(lib, "ab c", RowOptions{Gap: 0.1, Align: c.align})
		if len(row) != 3 {
			t.Fatalf("expected 3 shapes, got %d", len(row))
		}
		min, max := row.Bounds(DefaultCurveSegments)
		if math.Abs(min.X-c.min) > 1e-8 || math.Abs(max.X-c.max) > 1e-8 {
			t.Errorf("align %d: expected x range [%f, %f], got [%f, %f]",
				c.align, c.min, c.max, min.X, max.X)
		}
		if math.Abs(min.Y+0.3) > 1e-8 || math.Abs(max.Y-0.3) > 1e-8 {
			t.Errorf("align %d: unexpected y range [%f, %f]", c.align, min.Y, max.Y)
		}
	}

	// The shared cached glyph must not move.
	min, max := lib.ContoursFor('a').Bounds(DefaultCurveSegments)
	if min.X != -0.3 || max.X != 0.3 {
		t.Errorf("cached glyph was modified: [%f, %f]", min.X, max.X)
	}
}

func TestLayoutRowTable(t *testing.T) {
	row := LayoutRow(DefaultLibrary, "10", RowOptions{Gap: 0.2})
	min, max := row.Bounds(DefaultCurveSegments)
	oneMin, oneMax := ContoursFor('1').Bounds(DefaultCurveSegments)
	zeroMin, zeroMax := ContoursFor('0').Bounds(DefaultCurveSegments)
	width := (oneMax.X - oneMin.X) + 0.2 + (zeroMax.X - zeroMin.X)
	if math.Abs(min.X) > 1e-8 || math.Abs(max.X-width) > 1e-8 {
		t.Errorf("expected x range [0, %f], got [%f, %f]", width, min.X, max.X)
	}
	if solid := row.Solid2D(DefaultCurveSegments); solid == nil {
		t.Error("expected a solid")
	}
}
