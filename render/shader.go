package render

import (
	"math"

	"github.com/gogpu/gg"
	"github.com/unixpickle/glassglyph"
	"github.com/unixpickle/model3d/model3d"
)

// glassShader is a cheap stand-in for physically based transmission: the
// surface reflects the environment by a Schlick fresnel term, picks up a
// little diffuse light, and lets the rest of the backdrop through according
// to the transmission.
type glassShader struct {
	tint         gg.RGBA
	f0           float64
	roughness    float64
	transmission float64
	dispersion   bool
	shininess    float64

	env    *Environment
	lights Lights
}

func newGlassShader(m glassglyph.MaterialState, scene *Scene) *glassShader {
	m = m.Clamped()
	r, g, b := m.Color()
	f0 := (m.IOR - 1) / (m.IOR + 1)
	return &glassShader{
		tint:         gg.RGB(r, g, b),
		f0:           f0 * f0,
		roughness:    m.Roughness,
		transmission: m.Transmission,
		dispersion:   m.Dispersion,
		shininess:    8 + 120*(1-m.Roughness/glassglyph.MaxRoughness),
		env:          scene.Environment,
		lights:       scene.Lights,
	}
}

func (g *glassShader) shade(point, normal, eye model3d.Coord3D) gg.RGBA {
	view := eye.Sub(point)
	if view.Norm() == 0 {
		view = model3d.XYZ(0, 0, 1)
	}
	view = view.Normalize()
	cosView := normal.Dot(view)
	if cosView < 0 {
		// Back faces are seen through the front of the glass.
		normal = normal.Scale(-1)
		cosView = -cosView
	}

	fresnel := g.f0 + (1-g.f0)*math.Pow(1-cosView, 5)
	fresnel *= 1 - g.roughness

	reflected := normal.Scale(2 * cosView).Sub(view)
	env := g.env.Sample(reflected)

	diffuse := scaleColor(g.lights.Ambient, g.lights.AmbientIntensity)
	var specular float64
	for _, l := range g.lights.Directional {
		if l.Position.Norm() == 0 {
			continue
		}
		dir := l.Position.Normalize()
		if d := normal.Dot(dir); d > 0 {
			diffuse = addColor(diffuse, scaleColor(l.Color, d*l.Intensity))
		}
		half := dir.Add(view)
		if half.Norm() > 0 {
			if s := normal.Dot(half.Normalize()); s > 0 {
				specular += math.Pow(s, g.shininess) * l.Intensity * (1 - g.roughness)
			}
		}
	}

	body := 1 - 0.85*g.transmission
	c := gg.RGBA{
		R: g.tint.R*diffuse.R*body + env.R*fresnel + specular,
		G: g.tint.G*diffuse.G*body + env.G*fresnel + specular,
		B: g.tint.B*diffuse.B*body + env.B*fresnel + specular,
	}
	if g.dispersion {
		edge := (1 - cosView) * (1 - cosView)
		c.R += 0.06 * edge
		c.B += 0.12 * edge
	}
	c.R *= mixTint(g.tint.R, g.transmission)
	c.G *= mixTint(g.tint.G, g.transmission)
	c.B *= mixTint(g.tint.B, g.transmission)

	c.A = clamp01(body*0.6 + fresnel + specular*0.5)
	c.A = math.Max(c.A, 0.15)
	c.R, c.G, c.B = clamp01(c.R), clamp01(c.G), clamp01(c.B)
	return c
}

// mixTint colors transmitted light by the base color, more strongly the
// more light passes through.
func mixTint(channel, transmission float64) float64 {
	return 1 - transmission*(1-channel)
}

func addColor(a, b gg.RGBA) gg.RGBA {
	return gg.RGBA{R: a.R + b.R, G: a.G + b.G, B: a.B + b.B, A: math.Max(a.A, b.A)}
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
