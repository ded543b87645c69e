package usdz

import (
	"archive/zip"
	"bytes"
	"io"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unixpickle/glassglyph"
	"github.com/unixpickle/model3d/model3d"
)

func singleTriangle() *glassglyph.Mesh {
	return &glassglyph.Mesh{
		Positions: []model3d.Coord3D{
			model3d.XYZ(0, 0, 0),
			model3d.XYZ(1, 0, 0),
			model3d.XYZ(0, 1, 0),
		},
		// (0, 1, 2) is clockwise seen from -Z, so that side is outside.
		Normals: []model3d.Coord3D{
			model3d.XYZ(0, 0, -1),
			model3d.XYZ(0, 0, -1),
			model3d.XYZ(0, 0, -1),
		},
		Indices: []int{0, 1, 2},
	}
}

func readArchive(t *testing.T, data []byte) (*zip.File, string) {
	t.Helper()
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, r.File, 1)
	f := r.File[0]
	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	doc, err := io.ReadAll(rc)
	require.NoError(t, err)
	return f, string(doc)
}

func parseInts(t *testing.T, doc, decl string) []int {
	t.Helper()
	m := regexp.MustCompile(regexp.QuoteMeta(decl) + ` = \[([^\]]*)\]`).FindStringSubmatch(doc)
	require.NotNil(t, m, "missing %s", decl)
	var res []int
	for _, field := range strings.Split(m[1], ",") {
		x, err := strconv.Atoi(strings.TrimSpace(field))
		require.NoError(t, err)
		res = append(res, x)
	}
	return res
}

func TestExportReversesWinding(t *testing.T) {
	data, err := Export(singleTriangle(), glassglyph.DefaultMaterial(), Options{})
	require.NoError(t, err)
	_, doc := readArchive(t, data)
	assert.Equal(t, []int{2, 1, 0}, parseInts(t, doc, "int[] faceVertexIndices"))
	assert.Equal(t, []int{3}, parseInts(t, doc, "int[] faceVertexCounts"))

	implicit := singleTriangle()
	implicit.Indices = nil
	data, err = Export(implicit, glassglyph.DefaultMaterial(), Options{})
	require.NoError(t, err)
	_, doc = readArchive(t, data)
	assert.Equal(t, []int{2, 1, 0}, parseInts(t, doc, "int[] faceVertexIndices"))
}

func parseCoords(t *testing.T, doc, decl string) []model3d.Coord3D {
	t.Helper()
	m := regexp.MustCompile(regexp.QuoteMeta(decl) + ` = \[([^\]]*)\]`).FindStringSubmatch(doc)
	require.NotNil(t, m, "missing %s", decl)
	var res []model3d.Coord3D
	for _, c := range regexp.MustCompile(`\(([^)]*)\)`).FindAllStringSubmatch(m[1], -1) {
		var xyz [3]float64
		fields := strings.Split(c[1], ",")
		require.Len(t, fields, 3)
		for i, field := range fields {
			x, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			require.NoError(t, err)
			xyz[i] = x
		}
		res = append(res, model3d.XYZ(xyz[0], xyz[1], xyz[2]))
	}
	return res
}

func TestExportFacesMatchNormals(t *testing.T) {
	for _, r := range []rune("I8") {
		mesh, err := glassglyph.Extrude(glassglyph.ContoursFor(r), glassglyph.DefaultMaterial().ExtrudeOptions())
		require.NoError(t, err)
		data, err := Export(mesh, glassglyph.DefaultMaterial(), Options{})
		require.NoError(t, err)
		_, doc := readArchive(t, data)

		points := parseCoords(t, doc, "point3f[] points")
		normals := parseCoords(t, doc, "normal3f[] normals")
		indices := parseInts(t, doc, "int[] faceVertexIndices")
		require.Len(t, points, len(mesh.Positions))
		require.Len(t, normals, len(points))

		var volume float64
		for i := 0; i < len(indices); i += 3 {
			a, b, c := points[indices[i]], points[indices[i+1]], points[indices[i+2]]
			volume += a.Dot(b.Cross(c)) / 6
			if r != 'I' {
				continue
			}
			// Counter-clockwise faces must agree with the vertex normals.
			face := b.Sub(a).Cross(c.Sub(a))
			sum := normals[indices[i]].Add(normals[indices[i+1]]).Add(normals[indices[i+2]])
			require.Positive(t, face.Dot(sum), "face %d of %c points inward", i/3, r)
		}
		assert.Positive(t, volume, "%c: emitted faces must enclose positive volume", r)
	}
}

func TestExportArchiveLayout(t *testing.T) {
	for _, name := range []string{"", "8", "glass letter", "ABCDEFGHIJKLMNOPQRSTUVWXYZ"} {
		data, err := Export(singleTriangle(), glassglyph.DefaultMaterial(), Options{Name: name})
		require.NoError(t, err)
		f, doc := readArchive(t, data)
		assert.Equal(t, zip.Store, f.Method)
		assert.Zero(t, f.Flags&0x8, "entries must not use a data descriptor")
		assert.Equal(t, PrimName(name)+".usda", f.Name)
		offset, err := f.DataOffset()
		require.NoError(t, err)
		assert.Zero(t, offset%Alignment, "data of %q starts at %d", f.Name, offset)
		assert.True(t, strings.HasPrefix(doc, "#usda 1.0\n"))
		assert.Contains(t, doc, `defaultPrim = "`+PrimName(name)+`"`)
	}
}

func TestExportDocument(t *testing.T) {
	mesh, err := glassglyph.Extrude(glassglyph.ContoursFor('8'), glassglyph.ExtrudeOptions{
		Depth: 0.5,
		Steps: 1,
	})
	require.NoError(t, err)
	data, err := Export(mesh, glassglyph.DefaultMaterial(), Options{Name: "Glyph"})
	require.NoError(t, err)
	_, doc := readArchive(t, data)

	indices := parseInts(t, doc, "int[] faceVertexIndices")
	require.Len(t, indices, len(mesh.Indices))
	for i := 0; i < len(indices); i += 3 {
		require.Equal(t, []int{mesh.Indices[i+2], mesh.Indices[i+1], mesh.Indices[i]}, indices[i:i+3])
	}
	assert.Equal(t, len(mesh.Positions), strings.Count(
		regexp.MustCompile(`point3f\[\] points = \[[^\]]*\]`).FindString(doc), "("))
	assert.Contains(t, doc, `interpolation = "vertex"`)
	assert.Contains(t, doc, `uniform token orientation = "rightHanded"`)
	assert.Contains(t, doc, `upAxis = "Y"`)
	assert.Contains(t, doc, `uniform token info:id = "UsdPreviewSurface"`)
	assert.Contains(t, doc, `rel material:binding = </Glyph/Materials/Glass>`)
	assert.Contains(t, doc, "float inputs:opacity = 0.350000")
	assert.Contains(t, doc, "float inputs:transmission = 0.400000")
	assert.Contains(t, doc, "float inputs:roughness = 0.020000")
	assert.Contains(t, doc, "float inputs:ior = 1.500000")
	assert.Contains(t, doc, "float inputs:clearcoat = 1.000000")
}

func TestRemap(t *testing.T) {
	m := glassglyph.DefaultMaterial()
	m.Roughness = 0.25
	m.Transmission = 0.6
	m.BaseColor = "#ff0000"
	in := DefaultRemap().Apply(m)
	assert.Equal(t, 0.35, in.Opacity)
	assert.InDelta(t, 0.3, in.Transmission, 1e-12)
	assert.Equal(t, 0.05, in.Roughness)
	assert.Equal(t, [3]float64{1, 0, 0}, in.DiffuseColor)

	m.NoColor = true
	m.Transmission = 1
	in = DefaultRemap().Apply(m)
	assert.Equal(t, 0.4, in.Transmission)
	assert.Equal(t, [3]float64{1, 1, 1}, in.DiffuseColor)

	custom := DefaultRemap()
	custom.Opacity = 0.8
	data, err := Export(singleTriangle(), m, Options{Remap: &custom})
	require.NoError(t, err)
	_, doc := readArchive(t, data)
	assert.Contains(t, doc, "float inputs:opacity = 0.800000")
}

func TestExportErrors(t *testing.T) {
	m := glassglyph.DefaultMaterial()
	_, err := Export(nil, m, Options{})
	assert.ErrorIs(t, err, ErrNoMesh)
	_, err = Export(&glassglyph.Mesh{}, m, Options{})
	assert.ErrorIs(t, err, ErrNoVertices)

	noFaces := singleTriangle()
	noFaces.Indices = []int{}
	_, err = Export(noFaces, m, Options{})
	assert.ErrorIs(t, err, ErrNoFaces)

	bad := singleTriangle()
	bad.Indices = []int{0, 1, 3}
	_, err = Export(bad, m, Options{})
	assert.Error(t, err)
}

func TestPrimName(t *testing.T) {
	assert.Equal(t, DefaultName, PrimName(""))
	assert.Equal(t, "_8", PrimName("8"))
	assert.Equal(t, "glass_letter", PrimName("glass letter"))
	assert.Equal(t, "A_", PrimName("Aé"))
}
