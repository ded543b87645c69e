package glassglyph

import (
	"errors"
	"io"
	"math"

	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/model3d/model3d"
)

// maxMiter bounds the bevel offset at sharp corners, in multiples of the
// bevel size.
const maxMiter = 4.0

// ExtrudeOptions control how a shape group is swept into a solid.
type ExtrudeOptions struct {
	// Depth is the length of the straight part of the sweep along Z.
	Depth float64

	// When BevelEnabled is set, each end of the sweep is rounded by
	// BevelSegments rings following a quarter circle. The caps sit
	// BevelThickness beyond the body and the body is expanded outward by
	// BevelSize.
	BevelEnabled   bool
	BevelThickness float64
	BevelSize      float64
	BevelSegments  int

	// CurveSegments is the number of steps used to flatten each curve.
	CurveSegments int

	// Steps is the number of body subdivisions along the depth. Zero means 1.
	Steps int
}

// Mesh is an indexed triangle mesh with one normal per vertex.
//
// Triangles are wound clockwise when seen from outside the solid, while
// Normals point outward. Triangle and the model3d conversions reverse each
// triangle into model3d's counter-clockwise order.
//
// If Indices is nil, consecutive triples of Positions form the triangles.
type Mesh struct {
	Positions []model3d.Coord3D
	Normals   []model3d.Coord3D
	Indices   []int
}

// NumTriangles returns the number of triangles in the mesh.
func (m *Mesh) NumTriangles() int {
	if m.Indices == nil {
		return len(m.Positions) / 3
	}
	return len(m.Indices) / 3
}

// TriangleIndices returns the vertex indices of the i-th triangle.
func (m *Mesh) TriangleIndices(i int) [3]int {
	if m.Indices == nil {
		return [3]int{i * 3, i*3 + 1, i*3 + 2}
	}
	return [3]int{m.Indices[i*3], m.Indices[i*3+1], m.Indices[i*3+2]}
}

// Triangle returns the i-th triangle, counter-clockwise from outside.
func (m *Mesh) Triangle(i int) *model3d.Triangle {
	idx := m.TriangleIndices(i)
	return &model3d.Triangle{m.Positions[idx[2]], m.Positions[idx[1]], m.Positions[idx[0]]}
}

// Bounds returns the bounding box of the vertices.
func (m *Mesh) Bounds() (min, max model3d.Coord3D) {
	if len(m.Positions) == 0 {
		return
	}
	min, max = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		min = min.Min(p)
		max = max.Max(p)
	}
	return min, max
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	res := &Mesh{
		Positions: append([]model3d.Coord3D{}, m.Positions...),
		Normals:   append([]model3d.Coord3D{}, m.Normals...),
	}
	if m.Indices != nil {
		res.Indices = append([]int{}, m.Indices...)
	}
	return res
}

// Model3D converts the mesh into a model3d mesh for geometry queries.
func (m *Mesh) Model3D() *model3d.Mesh {
	tris := make([]*model3d.Triangle, m.NumTriangles())
	for i := range tris {
		tris[i] = m.Triangle(i)
	}
	return model3d.NewMeshTriangles(tris)
}

// WriteSTL encodes the mesh as a binary STL file.
func (m *Mesh) WriteSTL(w io.Writer) error {
	tris := make([]*model3d.Triangle, m.NumTriangles())
	for i := range tris {
		tris[i] = m.Triangle(i)
	}
	return model3d.WriteSTL(w, tris)
}

// Extrude sweeps every shape of the group along Z and merges the results
// into one mesh.
//
// The mesh is recentered so that its bounding box is centered on the origin,
// and normals are averaged from the adjacent faces, weighted by area.
func Extrude(group ShapeGroup, opts ExtrudeOptions) (*Mesh, error) {
	if opts.Depth < 0 {
		return nil, errors.New("extrude: negative depth")
	}
	if opts.BevelEnabled && opts.BevelSegments < 1 {
		return nil, errors.New("extrude: bevel requires at least one segment")
	}
	rings := extrusionRings(opts)

	mesh := &Mesh{}
	for _, shape := range group {
		if shape == nil || shape.Outer == nil {
			continue
		}
		outer, holes := shape.Outline(opts.CurveSegments)
		if len(outer) < 3 {
			continue
		}
		extrudeShape(mesh, outer, holes, rings)
	}
	if len(mesh.Indices) == 0 {
		return nil, errors.New("extrude: no geometry")
	}

	min, max := mesh.Bounds()
	center := min.Mid(max)
	for i, p := range mesh.Positions {
		mesh.Positions[i] = p.Sub(center)
	}
	mesh.Normals = vertexNormals(mesh)
	return mesh, nil
}

type extrusionRing struct {
	Z      float64
	Offset float64
}

// extrusionRings lists the layers of the sweep from the front cap to the
// back cap.
func extrusionRings(opts ExtrudeOptions) []extrusionRing {
	steps := opts.Steps
	if steps < 1 {
		steps = 1
	}
	var rings []extrusionRing
	bodyOffset := 0.0
	if opts.BevelEnabled {
		for b := 0; b < opts.BevelSegments; b++ {
			t := float64(b) / float64(opts.BevelSegments)
			rings = append(rings, extrusionRing{
				Z:      -opts.BevelThickness * math.Cos(t*math.Pi/2),
				Offset: opts.BevelSize * math.Sin(t*math.Pi/2),
			})
		}
		bodyOffset = opts.BevelSize
	}
	for s := 0; s <= steps; s++ {
		rings = append(rings, extrusionRing{
			Z:      opts.Depth * float64(s) / float64(steps),
			Offset: bodyOffset,
		})
	}
	if opts.BevelEnabled {
		for b := opts.BevelSegments - 1; b >= 0; b-- {
			t := float64(b) / float64(opts.BevelSegments)
			rings = append(rings, extrusionRing{
				Z:      opts.Depth + opts.BevelThickness*math.Cos(t*math.Pi/2),
				Offset: opts.BevelSize * math.Sin(t*math.Pi/2),
			})
		}
	}
	return rings
}

func extrudeShape(mesh *Mesh, outer []model2d.Coord, holes [][]model2d.Coord, rings []extrusionRing) {
	contours := append([][]model2d.Coord{outer}, holes...)
	perRing := 0
	directions := make([][]model2d.Coord, len(contours))
	for i, c := range contours {
		perRing += len(c)
		directions[i] = miterDirections(c)
	}

	base := len(mesh.Positions)
	for _, ring := range rings {
		for i, c := range contours {
			for j, p := range c {
				q := p.Add(directions[i][j].Scale(ring.Offset))
				mesh.Positions = append(mesh.Positions, model3d.XYZ(q.X, q.Y, ring.Z))
			}
		}
	}

	capTris := Triangulate(outer, holes)
	back := base + (len(rings)-1)*perRing
	for _, t := range capTris {
		mesh.Indices = append(mesh.Indices, base+t[0], base+t[1], base+t[2])
	}
	for _, t := range capTris {
		mesh.Indices = append(mesh.Indices, back+t[2], back+t[1], back+t[0])
	}

	start := 0
	for _, c := range contours {
		n := len(c)
		for l := 0; l+1 < len(rings); l++ {
			lo := base + l*perRing + start
			hi := lo + perRing
			for i := 0; i < n; i++ {
				j := (i + 1) % n
				mesh.Indices = append(mesh.Indices,
					lo+i, hi+j, lo+j,
					lo+i, hi+i, hi+j,
				)
			}
		}
		start += n
	}
}

// miterDirections computes, for each vertex, the vector that moves it
// outward by one unit from both adjacent edges. "Outward" is the right side
// of the direction of travel.
func miterDirections(pts []model2d.Coord) []model2d.Coord {
	n := len(pts)
	res := make([]model2d.Coord, n)
	for i, p := range pts {
		prev := pts[(i+n-1)%n]
		next := pts[(i+1)%n]
		d1 := p.Sub(prev).Normalize()
		d2 := next.Sub(p).Normalize()
		r1 := model2d.XY(d1.Y, -d1.X)
		r2 := model2d.XY(d2.Y, -d2.X)
		denom := 1 + r1.Dot(r2)
		if denom < 1e-9 {
			res[i] = r1
			continue
		}
		v := r1.Add(r2).Scale(1 / denom)
		if l := v.Norm(); l > maxMiter {
			v = v.Scale(maxMiter / l)
		}
		res[i] = v
	}
	return res
}

func vertexNormals(mesh *Mesh) []model3d.Coord3D {
	normals := make([]model3d.Coord3D, len(mesh.Positions))
	for i := 0; i < mesh.NumTriangles(); i++ {
		idx := mesh.TriangleIndices(i)
		a, b, c := mesh.Positions[idx[0]], mesh.Positions[idx[1]], mesh.Positions[idx[2]]
		// Clockwise winding, so the outward normal is (c-a)x(b-a). Its length
		// is twice the area, which weights the sum.
		n := c.Sub(a).Cross(b.Sub(a))
		for _, j := range idx {
			normals[j] = normals[j].Add(n)
		}
	}
	for i, n := range normals {
		if norm := n.Norm(); norm > 0 {
			normals[i] = n.Scale(1 / norm)
		} else {
			normals[i] = model3d.XYZ(0, 0, 1)
		}
	}
	return normals
}
