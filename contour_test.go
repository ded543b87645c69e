package glassglyph

import (
	"math"
	"testing"

	"github.com/unixpickle/model3d/model2d"
)

func TestContourPoints(t *testing.T) {
	c := &Contour{
		Start: model2d.XY(0, 0),
		Segments: []Segment{
			{Kind: SegmentLine, End: model2d.XY(1, 0)},
			{Kind: SegmentLine, End: model2d.XY(2, 0)},
			{Kind: SegmentLine, End: model2d.XY(2, 0)},
			{Kind: SegmentQuad, Ctrl1: model2d.XY(2, 2), End: model2d.XY(0, 2)},
			{Kind: SegmentLine, End: model2d.XY(0, 0)},
		},
	}
	pts := c.Points(8)

	// The collinear (1, 0), the duplicate (2, 0) and the closing point are
	// dropped; the quadratic contributes 8 points including its end.
	if len(pts) != 10 {
		t.Fatalf("expected 10 points, got %d: %v", len(pts), pts)
	}
	if pts[0] != model2d.XY(0, 0) || pts[1] != model2d.XY(2, 0) {
		t.Fatalf("unexpected leading points: %v", pts[:2])
	}
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		if p.Dist(q) < geometryEpsilon {
			t.Fatalf("duplicate point at %d", i)
		}
	}
}

func TestContourCubic(t *testing.T) {
	c := &Contour{
		Start: model2d.XY(0, 0),
		Segments: []Segment{
			{Kind: SegmentCubic, Ctrl1: model2d.XY(0, 1), Ctrl2: model2d.XY(1, 1), End: model2d.XY(1, 0)},
		},
	}
	pts := c.Points(10)
	if len(pts) != 11 {
		t.Fatalf("expected 11 points, got %d", len(pts))
	}
	// The curve's peak is at t=0.5 with height 0.75.
	if math.Abs(pts[5].Y-0.75) > 1e-9 || math.Abs(pts[5].X-0.5) > 1e-9 {
		t.Fatalf("unexpected midpoint %v", pts[5])
	}
}

func TestShapeOutlineOrientation(t *testing.T) {
	square := func(min, max float64, ccw bool) *Contour {
		pts := []model2d.Coord{
			model2d.XY(min, min), model2d.XY(max, min), model2d.XY(max, max), model2d.XY(min, max),
		}
		if !ccw {
			reversePoints(pts)
		}
		c := &Contour{Start: pts[0], Closed: true}
		for _, p := range pts[1:] {
			c.Segments = append(c.Segments, Segment{Kind: SegmentLine, End: p})
		}
		return c
	}
	for _, outerCCW := range []bool{false, true} {
		for _, holeCCW := range []bool{false, true} {
			shape := &Shape{
				Outer: square(0, 10, outerCCW),
				Holes: []*Contour{square(2, 8, holeCCW), {Start: model2d.XY(1, 1)}},
			}
			outer, holes := shape.Outline(0)
			if signedArea(outer) != 100 {
				t.Fatalf("outer area %f", signedArea(outer))
			}
			if len(holes) != 1 {
				t.Fatalf("expected degenerate hole to be dropped, got %d holes", len(holes))
			}
			if signedArea(holes[0]) != -36 {
				t.Fatalf("hole area %f", signedArea(holes[0]))
			}
		}
	}
}

func TestShapeGroupSolid(t *testing.T) {
	group := ContoursFor('O')
	solid := group.Solid2D(DefaultCurveSegments)
	if solid == nil {
		t.Fatal("nil solid")
	}
	min, max := group.Bounds(DefaultCurveSegments)
	center := min.Mid(max)
	if solid.Contains(center) {
		t.Fatal("counter of O should not be solid")
	}
	ring := model2d.XY(center.X, max.Y-0.01)
	if !solid.Contains(ring) {
		t.Fatal("ring of O should be solid")
	}

	moved := group.Translate(model2d.XY(1, 2))
	min2, max2 := moved.Bounds(DefaultCurveSegments)
	if min2.Sub(min).Dist(model2d.XY(1, 2)) > 1e-9 || max2.Sub(max).Dist(model2d.XY(1, 2)) > 1e-9 {
		t.Fatalf("unexpected translated bounds %v %v", min2, max2)
	}
}
