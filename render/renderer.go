package render

import (
	"errors"
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/transform"
	"github.com/gogpu/gg"
	"github.com/unixpickle/model3d/model3d"
)

// A Renderer draws a Scene from a Camera into an image.
//
// The output image is Size() scaled by PixelRatio(). Pixels not covered by
// the scene's background or object keep the clear color, including its
// alpha.
type Renderer interface {
	Size() (width, height int)
	SetSize(width, height int)
	PixelRatio() float64
	SetPixelRatio(ratio float64)
	ClearColor() gg.RGBA
	SetClearColor(c gg.RGBA)
	Render(scene *Scene, camera *Camera) error

	// Image returns the result of the last Render, or nil before the first.
	Image() image.Image
}

// SoftwareRenderer is a CPU Renderer that draws depth-sorted triangles
// with gg.
type SoftwareRenderer struct {
	// Supersample renders at this multiple of the output size and then
	// downsamples, smoothing triangle seams. Values below 2 disable it.
	Supersample int

	width      int
	height     int
	pixelRatio float64
	clearColor gg.RGBA
	frames     int
	image      image.Image
}

// NewSoftwareRenderer creates a renderer with an opaque black clear color.
func NewSoftwareRenderer(width, height int) *SoftwareRenderer {
	return &SoftwareRenderer{
		width:      width,
		height:     height,
		pixelRatio: 1,
		clearColor: gg.Black,
	}
}

func (s *SoftwareRenderer) Size() (int, int) {
	return s.width, s.height
}

func (s *SoftwareRenderer) SetSize(width, height int) {
	s.width, s.height = width, height
}

func (s *SoftwareRenderer) PixelRatio() float64 {
	return s.pixelRatio
}

func (s *SoftwareRenderer) SetPixelRatio(ratio float64) {
	s.pixelRatio = ratio
}

func (s *SoftwareRenderer) ClearColor() gg.RGBA {
	return s.clearColor
}

func (s *SoftwareRenderer) SetClearColor(c gg.RGBA) {
	s.clearColor = c
}

// FrameCount returns the number of completed Render calls.
func (s *SoftwareRenderer) FrameCount() int {
	return s.frames
}

func (s *SoftwareRenderer) Image() image.Image {
	return s.image
}

// Render draws the scene. The object is drawn back to front, so every
// layer of the glass contributes to the final color.
func (s *SoftwareRenderer) Render(scene *Scene, camera *Camera) error {
	if scene == nil || camera == nil {
		return errors.New("render: nil scene or camera")
	}
	w, h := s.outputSize()
	if w <= 0 || h <= 0 {
		return errors.New("render: renderer has no area")
	}
	ss := 1
	if s.Supersample > 1 {
		ss = s.Supersample
	}

	ctx := gg.NewContext(w*ss, h*ss)
	defer ctx.Close()
	ctx.ClearWithColor(s.clearColor)
	if scene.Background != nil {
		ctx.ClearWithColor(*scene.Background)
	}
	if scene.Object.HasGeometry() {
		if err := s.drawObject(ctx, scene, camera, w*ss, h*ss); err != nil {
			return err
		}
	}

	if err := ctx.FlushGPU(); err != nil {
		return err
	}
	var img image.Image = ctx.Image()
	if ss > 1 {
		img = transform.Resize(img, w, h, transform.Linear)
	}
	s.image = img
	s.frames++
	return nil
}

func (s *SoftwareRenderer) outputSize() (int, int) {
	ratio := s.pixelRatio
	if !(ratio > 0) {
		ratio = 1
	}
	return int(math.Round(float64(s.width) * ratio)), int(math.Round(float64(s.height) * ratio))
}

type screenTriangle struct {
	points [3][2]float64
	depth  float64
	color  gg.RGBA
}

func (s *SoftwareRenderer) drawObject(ctx *gg.Context, scene *Scene, camera *Camera, w, h int) error {
	view, ok := camera.basis()
	if !ok {
		return nil
	}
	obj := scene.Object
	mesh := obj.Mesh
	rot := obj.Rotation.Matrix()

	positions := make([]model3d.Coord3D, len(mesh.Positions))
	for i, p := range mesh.Positions {
		positions[i] = rot.MulColumn(p)
	}
	normals := make([]model3d.Coord3D, len(mesh.Normals))
	for i, n := range mesh.Normals {
		normals[i] = rot.MulColumn(n)
	}

	shader := newGlassShader(obj.Material, scene)
	tris := make([]screenTriangle, 0, mesh.NumTriangles())
	for i := 0; i < mesh.NumTriangles(); i++ {
		idx := mesh.TriangleIndices(i)
		var st screenTriangle
		visible := true
		var center model3d.Coord3D
		for j, k := range idx {
			x, y, depth, ok := view.project(positions[k], w, h)
			if !ok {
				visible = false
				break
			}
			st.points[j] = [2]float64{x, y}
			st.depth += depth / 3
			center = center.Add(positions[k].Scale(1.0 / 3))
		}
		if !visible {
			continue
		}
		normal := triangleNormal(positions, normals, idx)
		st.color = shader.shade(center, normal, camera.Position)
		tris = append(tris, st)
	}

	sort.SliceStable(tris, func(i, j int) bool {
		return tris[i].depth > tris[j].depth
	})

	for _, t := range tris {
		ctx.MoveTo(t.points[0][0], t.points[0][1])
		ctx.LineTo(t.points[1][0], t.points[1][1])
		ctx.LineTo(t.points[2][0], t.points[2][1])
		ctx.ClosePath()
		ctx.SetRGBA(t.color.R, t.color.G, t.color.B, t.color.A)
		if err := ctx.Fill(); err != nil {
			return err
		}
	}
	return nil
}

// triangleNormal averages the vertex normals, falling back on the face
// normal when the mesh has none.
func triangleNormal(positions, normals []model3d.Coord3D, idx [3]int) model3d.Coord3D {
	if len(normals) == len(positions) {
		n := normals[idx[0]].Add(normals[idx[1]]).Add(normals[idx[2]])
		if n.Norm() > 0 {
			return n.Normalize()
		}
	}
	t := &model3d.Triangle{positions[idx[2]], positions[idx[1]], positions[idx[0]]}
	if t.Area() == 0 {
		return model3d.XYZ(0, 0, 1)
	}
	return t.Normal()
}
