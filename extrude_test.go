package glassglyph

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/model3d/model3d"
)

const (
	sampleCount          = 20000
	correlationThreshold = 0.97
)

func TestExtrudeTriangleCounts(t *testing.T) {
	m := DefaultMaterial()
	smooth := m.ExtrudeOptions()
	m.EdgeSmooth = false
	faceted := m.ExtrudeOptions()
	flat := ExtrudeOptions{Depth: 0.5, CurveSegments: 12}

	cases := []struct {
		char  rune
		opts  ExtrudeOptions
		count int
	}{
		{'I', smooth, 140},
		{'I', faceted, 44},
		{'I', flat, 12},
		{'A', smooth, 360},
		{'A', faceted, 120},
		{'A', flat, 40},
		{'X', smooth, 280},
		{'X', flat, 24},
		{'0', smooth, 3456},
		{'0', faceted, 576},
		{'0', flat, 384},
		{'8', smooth, 6916},
		{'8', faceted, 1156},
		{'8', flat, 772},
		{'Q', smooth, 3596},
		{'Q', flat, 396},
	}
	for _, c := range cases {
		mesh, err := Extrude(ContoursFor(c.char), c.opts)
		if err != nil {
			t.Fatal(err)
		}
		if n := mesh.NumTriangles(); n != c.count {
			t.Errorf("%c (bevel segments %d): expected %d triangles, got %d",
				c.char, c.opts.BevelSegments, c.count, n)
		}
	}
}

func TestExtrudeManifold(t *testing.T) {
	m := DefaultMaterial()
	for _, smooth := range []bool{true, false} {
		m.EdgeSmooth = smooth
		for _, r := range AllCharacters() {
			mesh, err := Extrude(ContoursFor(r), m.ExtrudeOptions())
			if err != nil {
				t.Fatal(err)
			}
			edges := map[[2]int]int{}
			for i := 0; i < mesh.NumTriangles(); i++ {
				idx := mesh.TriangleIndices(i)
				for j := 0; j < 3; j++ {
					edges[[2]int{idx[j], idx[(j+1)%3]}]++
				}
			}
			for e, n := range edges {
				if n != 1 || edges[[2]int{e[1], e[0]}] != 1 {
					t.Fatalf("%c: edge %v is not shared by exactly two faces", r, e)
				}
			}
			if v := signedVolume(mesh); v <= 0 {
				t.Fatalf("%c: expected outward-facing triangles, got volume %f", r, v)
			}
		}
	}
}

func TestExtrudeDeterministic(t *testing.T) {
	opts := DefaultMaterial().ExtrudeOptions()
	m1, err := Extrude(ContoursFor('8'), opts)
	if err != nil {
		t.Fatal(err)
	}
	m2, err := Extrude(ContoursFor('8'), opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(m1.Positions) != len(m2.Positions) || len(m1.Indices) != len(m2.Indices) {
		t.Fatal("mesh sizes differ")
	}
	for i, p := range m1.Positions {
		if p != m2.Positions[i] || m1.Normals[i] != m2.Normals[i] {
			t.Fatalf("vertex %d differs", i)
		}
	}
	for i, x := range m1.Indices {
		if x != m2.Indices[i] {
			t.Fatalf("index %d differs", i)
		}
	}
}

func TestExtrudeCenteredWithNormals(t *testing.T) {
	opts := DefaultMaterial().ExtrudeOptions()
	mesh, err := Extrude(ContoursFor('7'), opts)
	if err != nil {
		t.Fatal(err)
	}
	min, max := mesh.Bounds()
	if c := min.Mid(max); c.Norm() > 1e-9 {
		t.Fatalf("mesh not centered: %v", c)
	}
	if depth := max.Z - min.Z; math.Abs(depth-(opts.Depth+2*opts.BevelThickness)) > 1e-9 {
		t.Fatalf("unexpected depth %f", depth)
	}
	if len(mesh.Normals) != len(mesh.Positions) {
		t.Fatalf("expected %d normals, got %d", len(mesh.Positions), len(mesh.Normals))
	}
	for i, n := range mesh.Normals {
		if math.Abs(n.Norm()-1) > 1e-9 {
			t.Fatalf("normal %d is not unit length: %v", i, n)
		}
	}

	// Vertices on the back cap, away from its edges, face the viewer.
	var facing int
	for i, p := range mesh.Positions {
		if p.Z == max.Z && mesh.Normals[i].Z > 0 {
			facing++
		}
	}
	if facing == 0 {
		t.Fatal("no back cap normals point along +Z")
	}
}

func TestExtrudeContainment(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	opts := ExtrudeOptions{Depth: 0.5, CurveSegments: 16}
	for _, r := range "ABO84" {
		group := ContoursFor(r)
		mesh, err := Extrude(group, opts)
		if err != nil {
			t.Fatal(err)
		}
		s2 := group.Solid2D(opts.CurveSegments)
		s3 := mesh.Model3D().Solid()

		min, max := group.Bounds(opts.CurveSegments)
		center := min.Mid(max)
		match := 0
		for i := 0; i < sampleCount; i++ {
			p := model2d.XY(
				min.X+rng.Float64()*(max.X-min.X),
				min.Y+rng.Float64()*(max.Y-min.Y),
			)
			q := p.Sub(center)
			if s2.Contains(p) == s3.Contains(model3d.XYZ(q.X, q.Y, 0)) {
				match++
			}
		}
		if corr := float64(match) / sampleCount; corr < correlationThreshold {
			t.Errorf("%c: correlation %.4f below threshold %.2f", r, corr, correlationThreshold)
		}
	}
}

func TestExtrudeErrors(t *testing.T) {
	if _, err := Extrude(nil, ExtrudeOptions{Depth: 1}); err == nil {
		t.Fatal("expected error for empty group")
	}
	if _, err := Extrude(PlaceholderShape(), ExtrudeOptions{Depth: -1}); err == nil {
		t.Fatal("expected error for negative depth")
	}
	if _, err := Extrude(PlaceholderShape(), ExtrudeOptions{Depth: 1, BevelEnabled: true}); err == nil {
		t.Fatal("expected error for bevel without segments")
	}
}

func TestMeshSTL(t *testing.T) {
	mesh, err := Extrude(PlaceholderShape(), ExtrudeOptions{Depth: 1})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := mesh.WriteSTL(&buf); err != nil {
		t.Fatal(err)
	}
	tris, err := model3d.ReadSTL(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(tris) != mesh.NumTriangles() {
		t.Fatalf("expected %d triangles, got %d", mesh.NumTriangles(), len(tris))
	}

	clone := mesh.Clone()
	clone.Positions[0] = model3d.XYZ(9, 9, 9)
	if mesh.Positions[0] == clone.Positions[0] {
		t.Fatal("clone shares positions")
	}
}

func TestExtrudeIndexWinding(t *testing.T) {
	m := DefaultMaterial()
	for _, r := range []rune("I08") {
		mesh, err := Extrude(ContoursFor(r), m.ExtrudeOptions())
		if err != nil {
			t.Fatal(err)
		}
		// The index buffer itself runs clockwise from outside.
		var raw float64
		for i := 0; i < mesh.NumTriangles(); i++ {
			idx := mesh.TriangleIndices(i)
			a, b, c := mesh.Positions[idx[0]], mesh.Positions[idx[1]], mesh.Positions[idx[2]]
			raw += a.Dot(b.Cross(c)) / 6
		}
		if vol := signedVolume(mesh); raw >= 0 || math.Abs(raw+vol) > 1e-9 {
			t.Fatalf("%c: expected clockwise indices, got volume %f (converted %f)", r, raw, vol)
		}
		if n := len(mesh.Model3D().TriangleSlice()); n != mesh.NumTriangles() {
			t.Fatalf("%c: model3d mesh has %d triangles", r, n)
		}
	}
}

func signedVolume(m *Mesh) float64 {
	var vol float64
	for i := 0; i < m.NumTriangles(); i++ {
		tri := m.Triangle(i)
		vol += tri[0].Dot(tri[1].Cross(tri[2])) / 6
	}
	return vol
}
