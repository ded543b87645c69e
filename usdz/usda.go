package usdz

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/unixpickle/glassglyph"
	"github.com/unixpickle/model3d/model3d"
)

// WriteUSDA writes the mesh and its material as a USDA 1.0 document with
// a single root prim called name.
//
// Mesh triangles are wound clockwise from outside. They are written with
// their vertex order reversed, which makes them counter-clockwise and so
// outward facing under the document's right-handed orientation, in
// agreement with the written normals.
func WriteUSDA(w io.Writer, mesh *glassglyph.Mesh, inputs SurfaceInputs, name string) error {
	if err := checkMesh(mesh); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	u := &usdaWriter{w: bw}

	u.line(0, "#usda 1.0")
	u.line(0, "(")
	u.line(1, "defaultPrim = %q", name)
	u.line(1, "metersPerUnit = 0.01")
	u.line(1, "upAxis = \"Y\"")
	u.line(0, ")")
	u.line(0, "")
	u.line(0, "def Xform %q", name)
	u.line(0, "{")
	u.line(1, "def Mesh \"Geometry\"")
	u.line(1, "{")

	counts := make([]int, mesh.NumTriangles())
	indices := make([]int, 0, mesh.NumTriangles()*3)
	for i := range counts {
		counts[i] = 3
		idx := mesh.TriangleIndices(i)
		indices = append(indices, idx[2], idx[1], idx[0])
	}
	u.ints(2, "int[] faceVertexCounts", counts)
	u.ints(2, "int[] faceVertexIndices", indices)
	u.coords(2, "point3f[] points", mesh.Positions, false)
	if len(mesh.Normals) == len(mesh.Positions) {
		u.coords(2, "normal3f[] normals", mesh.Normals, true)
		u.line(3, "interpolation = \"vertex\"")
		u.line(2, ")")
	}
	min, max := mesh.Bounds()
	u.line(2, "float3[] extent = [%s, %s]", formatCoord(min), formatCoord(max))
	u.line(2, "uniform token orientation = \"rightHanded\"")
	u.line(2, "uniform token subdivisionScheme = \"none\"")
	u.line(2, "color3f[] primvars:displayColor = [%s]", formatColor(inputs.DiffuseColor))
	u.line(2, "rel material:binding = </%s/Materials/Glass>", name)
	u.line(1, "}")
	u.line(0, "")
	u.line(1, "def Scope \"Materials\"")
	u.line(1, "{")
	u.line(2, "def Material \"Glass\"")
	u.line(2, "{")
	u.line(3, "token outputs:surface.connect = </%s/Materials/Glass/PreviewSurface.outputs:surface>", name)
	u.line(0, "")
	u.line(3, "def Shader \"PreviewSurface\"")
	u.line(3, "{")
	u.line(4, "uniform token info:id = \"UsdPreviewSurface\"")
	u.line(4, "color3f inputs:diffuseColor = %s", formatColor(inputs.DiffuseColor))
	u.line(4, "float inputs:ior = %s", formatFloat(inputs.IOR))
	u.line(4, "float inputs:roughness = %s", formatFloat(inputs.Roughness))
	u.line(4, "float inputs:opacity = %s", formatFloat(inputs.Opacity))
	u.line(4, "float inputs:transmission = %s", formatFloat(inputs.Transmission))
	u.line(4, "float inputs:clearcoat = %s", formatFloat(inputs.Clearcoat))
	u.line(4, "float inputs:clearcoatRoughness = %s", formatFloat(inputs.ClearcoatRoughness))
	s := inputs.Specular
	u.line(4, "color3f inputs:specularColor = %s", formatColor([3]float64{s, s, s}))
	u.line(4, "float inputs:metallic = 0")
	u.line(4, "int inputs:useSpecularWorkflow = 0")
	u.line(4, "token outputs:surface")
	u.line(3, "}")
	u.line(2, "}")
	u.line(1, "}")
	u.line(0, "}")

	if u.err != nil {
		return u.err
	}
	return bw.Flush()
}

func checkMesh(mesh *glassglyph.Mesh) error {
	if mesh == nil {
		return ErrNoMesh
	}
	if len(mesh.Positions) == 0 {
		return ErrNoVertices
	}
	if mesh.NumTriangles() == 0 {
		return ErrNoFaces
	}
	if mesh.Indices == nil && len(mesh.Positions)%3 != 0 {
		return fmt.Errorf("usdz: %d vertices do not form whole triangles", len(mesh.Positions))
	}
	if len(mesh.Indices)%3 != 0 {
		return fmt.Errorf("usdz: index count %d is not a multiple of 3", len(mesh.Indices))
	}
	for i, idx := range mesh.Indices {
		if idx < 0 || idx >= len(mesh.Positions) {
			return fmt.Errorf("usdz: index %d refers to vertex %d of %d", i, idx, len(mesh.Positions))
		}
	}
	return nil
}

type usdaWriter struct {
	w   *bufio.Writer
	err error
}

func (u *usdaWriter) line(indent int, format string, args ...any) {
	if u.err != nil {
		return
	}
	for i := 0; i < indent; i++ {
		if _, u.err = u.w.WriteString("    "); u.err != nil {
			return
		}
	}
	if _, u.err = fmt.Fprintf(u.w, format, args...); u.err != nil {
		return
	}
	u.err = u.w.WriteByte('\n')
}

func (u *usdaWriter) ints(indent int, decl string, values []int) {
	buf := make([]byte, 0, len(values)*6)
	for i, v := range values {
		if i > 0 {
			buf = append(buf, ", "...)
		}
		buf = strconv.AppendInt(buf, int64(v), 10)
	}
	u.line(indent, "%s = [%s]", decl, buf)
}

// coords writes an array of tuples. With metadata set, the declaration is
// left open with " (" for the caller to finish.
func (u *usdaWriter) coords(indent int, decl string, values []model3d.Coord3D, metadata bool) {
	buf := make([]byte, 0, len(values)*32)
	for i, c := range values {
		if i > 0 {
			buf = append(buf, ", "...)
		}
		buf = append(buf, formatCoord(c)...)
	}
	suffix := ""
	if metadata {
		suffix = " ("
	}
	u.line(indent, "%s = [%s]%s", decl, buf, suffix)
}

func formatCoord(c model3d.Coord3D) string {
	return "(" + formatFloat(c.X) + ", " + formatFloat(c.Y) + ", " + formatFloat(c.Z) + ")"
}

func formatColor(c [3]float64) string {
	return "(" + formatFloat(c[0]) + ", " + formatFloat(c[1]) + ", " + formatFloat(c[2]) + ")"
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
