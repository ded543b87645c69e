package render

import (
	"math"

	"github.com/gogpu/gg"
	"github.com/unixpickle/glassglyph"
	"github.com/unixpickle/model3d/model3d"
)

// Rotation is an Euler rotation in radians, applied about X first and then
// about Y.
type Rotation struct {
	X float64
	Y float64
}

// Matrix returns the rotation as a matrix acting on column vectors.
func (r Rotation) Matrix() *model3d.Matrix3 {
	rx := model3d.NewMatrix3Rotation(model3d.XYZ(1, 0, 0), r.X)
	ry := model3d.NewMatrix3Rotation(model3d.XYZ(0, 1, 0), r.Y)
	return ry.Mul(rx)
}

// Object is the single glass mesh shown in a scene.
type Object struct {
	Mesh     *glassglyph.Mesh
	Material glassglyph.MaterialState
	Rotation Rotation
}

// HasGeometry reports whether there is at least one triangle to draw.
func (o *Object) HasGeometry() bool {
	return o != nil && o.Mesh != nil && o.Mesh.NumTriangles() > 0
}

// WorldBounds returns the bounding box of the rotated mesh.
func (o *Object) WorldBounds() (min, max model3d.Coord3D) {
	if !o.HasGeometry() {
		return
	}
	m := o.Rotation.Matrix()
	for i, p := range o.Mesh.Positions {
		p = m.MulColumn(p)
		if i == 0 {
			min, max = p, p
		} else {
			min = min.Min(p)
			max = max.Max(p)
		}
	}
	return
}

// Environment is a vertical gradient used for glass reflections. It is
// lighting only and is never drawn as a backdrop.
type Environment struct {
	Sky       gg.RGBA
	Horizon   gg.RGBA
	Ground    gg.RGBA
	Intensity float64
}

// StudioEnvironment resembles a softly lit photo studio.
func StudioEnvironment() *Environment {
	return &Environment{
		Sky:       gg.RGB(0.95, 0.96, 1.0),
		Horizon:   gg.RGB(0.55, 0.57, 0.62),
		Ground:    gg.RGB(0.12, 0.12, 0.14),
		Intensity: 1,
	}
}

// Sample returns the environment radiance in the given direction.
func (e *Environment) Sample(dir model3d.Coord3D) gg.RGBA {
	if e == nil {
		return gg.RGB(0, 0, 0)
	}
	y := 0.0
	if n := dir.Norm(); n > 0 {
		y = dir.Y / n
	}
	var c gg.RGBA
	if y >= 0 {
		c = e.Horizon.Lerp(e.Sky, math.Sqrt(y))
	} else {
		c = e.Horizon.Lerp(e.Ground, math.Sqrt(-y))
	}
	return scaleColor(c, e.Intensity)
}

// DirLight shines from Position toward the origin without attenuation.
type DirLight struct {
	Position  model3d.Coord3D
	Color     gg.RGBA
	Intensity float64
}

// Lights holds the analytic lights of a scene.
type Lights struct {
	Ambient          gg.RGBA
	AmbientIntensity float64
	Directional      []DirLight
}

// DefaultLights is a key light, a fill light and a dim ambient term.
func DefaultLights() Lights {
	return Lights{
		Ambient:          gg.RGB(1, 1, 1),
		AmbientIntensity: 0.25,
		Directional: []DirLight{
			{Position: model3d.XYZ(5, 5, 5), Color: gg.RGB(1, 1, 1), Intensity: 1},
			{Position: model3d.XYZ(-5, -2, 3), Color: gg.RGB(0.8, 0.85, 1), Intensity: 0.4},
		},
	}
}

// Scene is everything the renderer draws.
//
// Background, when non-nil, is painted behind the object. A nil Background
// shows the renderer's clear color instead.
type Scene struct {
	Background  *gg.RGBA
	Environment *Environment
	Lights      Lights
	Object      *Object
}

// NewScene creates a scene with a black backdrop, the studio environment
// and the default lights.
func NewScene() *Scene {
	bg := gg.RGB(0, 0, 0)
	return &Scene{
		Background:  &bg,
		Environment: StudioEnvironment(),
		Lights:      DefaultLights(),
	}
}

func scaleColor(c gg.RGBA, s float64) gg.RGBA {
	return gg.RGBA{R: c.R * s, G: c.G * s, B: c.B * s, A: c.A}
}
