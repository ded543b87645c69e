package render

import (
	"math"

	"github.com/unixpickle/model3d/model3d"
)

// Camera is a perspective camera looking from Position toward Target.
//
// FOV is the vertical field of view in degrees. Aspect is width over
// height; like most real-time engines, it is not updated automatically when
// the renderer is resized.
type Camera struct {
	Position model3d.Coord3D
	Target   model3d.Coord3D
	Up       model3d.Coord3D
	FOV      float64
	Aspect   float64
	Near     float64
	Far      float64
}

// NewCamera creates the default preview camera: a 45 degree field of view
// from five units in front of the origin.
func NewCamera() *Camera {
	return &Camera{
		Position: model3d.XYZ(0, 0, 5),
		Up:       model3d.XYZ(0, 1, 0),
		FOV:      45,
		Aspect:   1,
		Near:     0.1,
		Far:      1000,
	}
}

// LookAt points the camera at target while keeping its position.
func (c *Camera) LookAt(target model3d.Coord3D) {
	c.Target = target
}

type viewBasis struct {
	origin  model3d.Coord3D
	right   model3d.Coord3D
	up      model3d.Coord3D
	forward model3d.Coord3D
	focal   float64
	aspect  float64
	near    float64
	far     float64
}

func (c *Camera) basis() (viewBasis, bool) {
	forward := c.Target.Sub(c.Position)
	if forward.Norm() == 0 {
		return viewBasis{}, false
	}
	forward = forward.Normalize()
	up := c.Up
	if up.Norm() == 0 {
		up = model3d.XYZ(0, 1, 0)
	}
	right := forward.Cross(up)
	if right.Norm() < 1e-12 {
		// Looking straight along the up vector.
		right = forward.Cross(model3d.XYZ(0, 0, -1))
	}
	right = right.Normalize()
	aspect := c.Aspect
	if !(aspect > 0) {
		aspect = 1
	}
	fov := c.FOV
	if !(fov > 0 && fov < 180) {
		fov = 45
	}
	far := c.Far
	if !(far > c.Near) {
		far = math.Inf(1)
	}
	return viewBasis{
		origin:  c.Position,
		right:   right,
		up:      right.Cross(forward),
		forward: forward,
		focal:   1 / math.Tan(fov*math.Pi/360),
		aspect:  aspect,
		near:    math.Max(c.Near, 1e-6),
		far:     far,
	}, true
}

// project maps a world point to pixel coordinates in a w by h image. The
// depth is the distance along the view direction.
func (v viewBasis) project(p model3d.Coord3D, w, h int) (x, y, depth float64, ok bool) {
	d := p.Sub(v.origin)
	depth = d.Dot(v.forward)
	if depth < v.near || depth > v.far {
		return 0, 0, depth, false
	}
	nx := d.Dot(v.right) * v.focal / (depth * v.aspect)
	ny := d.Dot(v.up) * v.focal / depth
	x = (nx + 1) / 2 * float64(w)
	y = (1 - ny) / 2 * float64(h)
	return x, y, depth, true
}
