package glassglyph

import (
	"math"
	"sort"

	"github.com/unixpickle/model3d/model2d"
)

// Triangulate splits a polygon with holes into triangles.
//
// The outer polygon must be counter-clockwise and the holes clockwise, as
// returned by Shape.Outline. Returned indices refer to the concatenation of
// outer followed by each hole in order, and each triangle is
// counter-clockwise.
//
// Holes are joined to the outer boundary through bridge edges, and the
// resulting single loop is ear-clipped. Holes with fewer than 3 points are
// ignored, though their points still take up indices. The number of
// triangles is always len(points) + 2*len(holes) - 2 over the points and
// holes that are used, even for degenerate input.
func Triangulate(outer []model2d.Coord, holes [][]model2d.Coord) [][3]int {
	var points []model2d.Coord
	points = append(points, outer...)
	loop := make([]int, len(outer))
	for i := range loop {
		loop[i] = i
	}

	type holeRef struct {
		start int
		size  int
		right int
	}
	refs := make([]holeRef, 0, len(holes))
	for _, h := range holes {
		if len(h) < 3 {
			points = append(points, h...)
			continue
		}
		ref := holeRef{start: len(points), size: len(h)}
		for i, p := range h {
			if p.X > h[ref.right].X {
				ref.right = i
			}
		}
		points = append(points, h...)
		refs = append(refs, ref)
	}
	sort.SliceStable(refs, func(i, j int) bool {
		return points[refs[i].start+refs[i].right].X > points[refs[j].start+refs[j].right].X
	})
	for _, ref := range refs {
		loop = bridgeHole(points, loop, ref.start, ref.size, ref.right)
	}

	return earClip(points, loop)
}

// bridgeHole splices a hole into loop by connecting the hole's rightmost
// vertex to a mutually visible vertex of the loop.
func bridgeHole(points []model2d.Coord, loop []int, start, size, right int) []int {
	m := points[start+right]
	bridge := visibleVertex(points, loop, m)

	res := make([]int, 0, len(loop)+size+2)
	res = append(res, loop[:bridge+1]...)
	for i := 0; i <= size; i++ {
		res = append(res, start+(right+i)%size)
	}
	res = append(res, loop[bridge])
	res = append(res, loop[bridge+1:]...)
	return res
}

// visibleVertex finds the position in loop of a vertex that can be connected
// to m without crossing the loop, following Eberly's ray casting method.
func visibleVertex(points []model2d.Coord, loop []int, m model2d.Coord) int {
	bestX := math.Inf(1)
	candidate := -1
	for i := range loop {
		a := points[loop[i]]
		b := points[loop[(i+1)%len(loop)]]
		if a.Y == b.Y || (a.Y-m.Y)*(b.Y-m.Y) > 0 {
			continue
		}
		x := a.X + (m.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
		if x < m.X || x >= bestX {
			continue
		}
		bestX = x
		switch {
		case a.Y == m.Y:
			candidate = i
		case b.Y == m.Y:
			candidate = (i + 1) % len(loop)
		case a.X > b.X:
			candidate = i
		default:
			candidate = (i + 1) % len(loop)
		}
	}
	if candidate < 0 {
		// The hole is not inside the loop. Fall back to the nearest vertex so
		// that a loop is still produced.
		best := math.Inf(1)
		for i, idx := range loop {
			if d := points[idx].Dist(m); d < best {
				best = d
				candidate = i
			}
		}
		return candidate
	}

	c := points[loop[candidate]]
	if c.Y == m.Y {
		return candidate
	}

	// Reflex vertices inside the triangle (m, hit, c) may block the view of
	// c; the one making the smallest angle with the ray is visible.
	hit := model2d.XY(bestX, m.Y)
	tri := [3]model2d.Coord{m, hit, c}
	if cross2(tri[0], tri[1], tri[2]) < 0 {
		tri[1], tri[2] = tri[2], tri[1]
	}
	bestAngle := math.Inf(1)
	bestDist := math.Inf(1)
	result := candidate
	for i, idx := range loop {
		p := points[idx]
		if i == candidate || p == c {
			continue
		}
		prev := points[loop[(i+len(loop)-1)%len(loop)]]
		next := points[loop[(i+1)%len(loop)]]
		if cross2(prev, p, next) >= 0 {
			continue
		}
		if !pointInTriangle(p, tri[0], tri[1], tri[2]) {
			continue
		}
		angle := math.Abs(math.Atan2(p.Y-m.Y, p.X-m.X))
		dist := p.Dist(m)
		if angle < bestAngle || (angle == bestAngle && dist < bestDist) {
			bestAngle = angle
			bestDist = dist
			result = i
		}
	}
	return result
}

func earClip(points []model2d.Coord, loop []int) [][3]int {
	if len(loop) < 3 {
		return nil
	}
	remaining := append([]int{}, loop...)
	res := make([][3]int, 0, len(loop)-2)
	for len(remaining) > 3 {
		n := len(remaining)
		ear := -1
		for i := 0; i < n; i++ {
			if isEar(points, remaining, i) {
				ear = i
				break
			}
		}
		if ear < 0 {
			ear = mostConvex(points, remaining)
		}
		prev := remaining[(ear+n-1)%n]
		next := remaining[(ear+1)%n]
		res = append(res, [3]int{prev, remaining[ear], next})
		remaining = append(remaining[:ear], remaining[ear+1:]...)
	}
	res = append(res, [3]int{remaining[0], remaining[1], remaining[2]})
	return res
}

func isEar(points []model2d.Coord, loop []int, i int) bool {
	n := len(loop)
	a := points[loop[(i+n-1)%n]]
	b := points[loop[i]]
	c := points[loop[(i+1)%n]]
	if cross2(a, b, c) <= geometryEpsilon {
		return false
	}
	for _, idx := range loop {
		p := points[idx]
		if p == a || p == b || p == c {
			continue
		}
		if pointInTriangle(p, a, b, c) {
			return false
		}
	}
	return true
}

// mostConvex is used when no proper ear exists, which only happens for
// self-intersecting or numerically degenerate input.
func mostConvex(points []model2d.Coord, loop []int) int {
	n := len(loop)
	best := 0
	bestCross := math.Inf(-1)
	for i := range loop {
		c := cross2(points[loop[(i+n-1)%n]], points[loop[i]], points[loop[(i+1)%n]])
		if c > bestCross {
			bestCross = c
			best = i
		}
	}
	return best
}

// pointInTriangle reports whether p is inside or on the boundary of the
// counter-clockwise triangle abc.
func pointInTriangle(p, a, b, c model2d.Coord) bool {
	return cross2(a, b, p) >= -geometryEpsilon &&
		cross2(b, c, p) >= -geometryEpsilon &&
		cross2(c, a, p) >= -geometryEpsilon
}
