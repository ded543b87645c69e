package glassglyph

import (
	"math"

	"github.com/unixpickle/model3d/model2d"
)

// DefaultCurveSegments is the number of flattening steps used for each curve
// when a caller does not choose one.
const DefaultCurveSegments = 12

type SegmentKind int

const (
	SegmentLine SegmentKind = iota
	SegmentQuad
	SegmentCubic
)

// A Segment continues a contour from the previous end point.
// Ctrl1 is used by quadratic and cubic segments, Ctrl2 only by cubics.
type Segment struct {
	Kind  SegmentKind
	Ctrl1 model2d.Coord
	Ctrl2 model2d.Coord
	End   model2d.Coord
}

// A Contour is a loop starting at Start and following Segments.
//
// Closed records whether the source path closed the loop explicitly; an open
// contour is still treated as a loop back to Start once it is flattened.
type Contour struct {
	Start    model2d.Coord
	Segments []Segment
	Closed   bool
}

// Points flattens the contour into a polygon.
//
// The result never repeats its first point at the end. Consecutive duplicate
// points and collinear interior points are removed, so every returned vertex
// is a real corner.
func (c *Contour) Points(curveSegments int) []model2d.Coord {
	if curveSegments <= 0 {
		curveSegments = DefaultCurveSegments
	}
	pts := []model2d.Coord{c.Start}
	prev := c.Start
	for _, seg := range c.Segments {
		switch seg.Kind {
		case SegmentLine:
			pts = append(pts, seg.End)
		case SegmentQuad:
			pts = append(pts, flattenQuad(prev, seg.Ctrl1, seg.End, curveSegments)...)
		case SegmentCubic:
			pts = append(pts, flattenCubic(prev, seg.Ctrl1, seg.Ctrl2, seg.End, curveSegments)...)
		}
		prev = seg.End
	}
	return cleanPolygon(pts)
}

// Shape is an outer contour with zero or more holes cut out of it.
type Shape struct {
	Outer *Contour
	Holes []*Contour
}

// Outline flattens the shape, orienting the outer polygon counter-clockwise
// and every hole clockwise. Holes that collapse to fewer than three points
// are dropped.
func (s *Shape) Outline(curveSegments int) (outer []model2d.Coord, holes [][]model2d.Coord) {
	outer = s.Outer.Points(curveSegments)
	if signedArea(outer) < 0 {
		reversePoints(outer)
	}
	for _, h := range s.Holes {
		pts := h.Points(curveSegments)
		if len(pts) < 3 {
			continue
		}
		if signedArea(pts) > 0 {
			reversePoints(pts)
		}
		holes = append(holes, pts)
	}
	return outer, holes
}

// Mesh2D converts the flattened shape into a 2D segment mesh.
func (s *Shape) Mesh2D(curveSegments int) *model2d.Mesh {
	outer, holes := s.Outline(curveSegments)
	mesh := model2d.NewMesh()
	addLoop(mesh, outer)
	for _, h := range holes {
		addLoop(mesh, h)
	}
	return mesh
}

// A ShapeGroup is a set of shapes that are extruded independently. The
// shapes may overlap, which lets glyphs combine strokes that are not a
// single region with holes.
type ShapeGroup []*Shape

// Solid2D returns the union of the group's shapes as a 2D solid, or nil if
// the group has no usable geometry.
func (g ShapeGroup) Solid2D(curveSegments int) model2d.Solid {
	var solids model2d.JoinedSolid
	for _, s := range g {
		m := s.Mesh2D(curveSegments)
		if m.NumSegments() == 0 {
			continue
		}
		solids = append(solids, m.Solid())
	}
	if len(solids) == 0 {
		return nil
	}
	return solids
}

// Bounds returns the 2D bounding box of the flattened group.
func (g ShapeGroup) Bounds(curveSegments int) (min, max model2d.Coord) {
	min = model2d.XY(math.Inf(1), math.Inf(1))
	max = model2d.XY(math.Inf(-1), math.Inf(-1))
	for _, s := range g {
		outer, _ := s.Outline(curveSegments)
		for _, p := range outer {
			min = min.Min(p)
			max = max.Max(p)
		}
	}
	return min, max
}

// Translate returns a copy of the group moved by offset.
func (g ShapeGroup) Translate(offset model2d.Coord) ShapeGroup {
	res := make(ShapeGroup, len(g))
	for i, s := range g {
		ns := &Shape{Outer: s.Outer.translate(offset)}
		for _, h := range s.Holes {
			ns.Holes = append(ns.Holes, h.translate(offset))
		}
		res[i] = ns
	}
	return res
}

func (c *Contour) translate(offset model2d.Coord) *Contour {
	res := &Contour{Start: c.Start.Add(offset), Closed: c.Closed}
	res.Segments = make([]Segment, len(c.Segments))
	for i, s := range c.Segments {
		s.Ctrl1 = s.Ctrl1.Add(offset)
		s.Ctrl2 = s.Ctrl2.Add(offset)
		s.End = s.End.Add(offset)
		res.Segments[i] = s
	}
	return res
}

func addLoop(mesh *model2d.Mesh, pts []model2d.Coord) {
	if len(pts) < 3 {
		return
	}
	for i := range pts {
		mesh.Add(&model2d.Segment{pts[i], pts[(i+1)%len(pts)]})
	}
}

func flattenQuad(p0, p1, p2 model2d.Coord, segs int) []model2d.Coord {
	out := make([]model2d.Coord, 0, segs)
	for i := 1; i <= segs; i++ {
		t := float64(i) / float64(segs)
		u := 1 - t
		p := p0.Scale(u * u).Add(p1.Scale(2 * u * t)).Add(p2.Scale(t * t))
		out = append(out, p)
	}
	return out
}

func flattenCubic(p0, p1, p2, p3 model2d.Coord, segs int) []model2d.Coord {
	out := make([]model2d.Coord, 0, segs)
	for i := 1; i <= segs; i++ {
		t := float64(i) / float64(segs)
		u := 1 - t
		p := p0.Scale(u * u * u).
			Add(p1.Scale(3 * u * u * t)).
			Add(p2.Scale(3 * u * t * t)).
			Add(p3.Scale(t * t * t))
		out = append(out, p)
	}
	return out
}

const geometryEpsilon = 1e-9

// cleanPolygon drops repeated and collinear vertices, including the implicit
// closing point.
func cleanPolygon(pts []model2d.Coord) []model2d.Coord {
	res := make([]model2d.Coord, 0, len(pts))
	for _, p := range pts {
		if len(res) > 0 && res[len(res)-1].Dist(p) < geometryEpsilon {
			continue
		}
		res = append(res, p)
	}
	for len(res) > 1 && res[0].Dist(res[len(res)-1]) < geometryEpsilon {
		res = res[:len(res)-1]
	}

	for changed := true; changed && len(res) >= 3; {
		changed = false
		for i := 0; i < len(res) && len(res) >= 3; i++ {
			prev := res[(i+len(res)-1)%len(res)]
			next := res[(i+1)%len(res)]
			if math.Abs(cross2(prev, res[i], next)) < geometryEpsilon {
				res = append(res[:i], res[i+1:]...)
				changed = true
				i--
			}
		}
	}
	if len(res) < 3 {
		return nil
	}
	return res
}

// cross2 is the z component of (b-a) x (c-a).
func cross2(a, b, c model2d.Coord) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// signedArea is positive for counter-clockwise polygons.
func signedArea(pts []model2d.Coord) float64 {
	var sum float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

func reversePoints(pts []model2d.Coord) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}
