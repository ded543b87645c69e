package glassglyph

import (
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gg"
)

// Bounds accepted for material parameters.
const (
	MinIOR          = 1.4
	MaxIOR          = 1.6
	MinRoughness    = 0.0
	MaxRoughness    = 0.3
	MinThickness    = 0.1
	MaxThickness    = 2.0
	MinTransmission = 0.0
	MaxTransmission = 1.0
)

var ErrInvalidMaterial = errors.New("invalid material")

// MaterialState holds the user-tunable glass parameters.
type MaterialState struct {
	BaseColor    string  `yaml:"base_color" toml:"base_color"`
	NoColor      bool    `yaml:"no_color" toml:"no_color"`
	IOR          float64 `yaml:"ior" toml:"ior"`
	Roughness    float64 `yaml:"roughness" toml:"roughness"`
	Thickness    float64 `yaml:"thickness" toml:"thickness"`
	Dispersion   bool    `yaml:"dispersion" toml:"dispersion"`
	Transmission float64 `yaml:"transmission" toml:"transmission"`
	EdgeSmooth   bool    `yaml:"edge_smooth" toml:"edge_smooth"`
}

// DefaultMaterial returns clear, smooth-edged glass.
func DefaultMaterial() MaterialState {
	return MaterialState{
		BaseColor:    "#ffffff",
		IOR:          1.5,
		Roughness:    0.02,
		Thickness:    0.5,
		Dispersion:   true,
		Transmission: 1.0,
		EdgeSmooth:   true,
	}
}

// Validate checks that every parameter is within bounds.
func (m MaterialState) Validate() error {
	if !validHexColor(m.BaseColor) {
		return fmt.Errorf("%w: base color %q is not #rgb or #rrggbb", ErrInvalidMaterial, m.BaseColor)
	}
	checks := []struct {
		name     string
		value    float64
		min, max float64
	}{
		{"ior", m.IOR, MinIOR, MaxIOR},
		{"roughness", m.Roughness, MinRoughness, MaxRoughness},
		{"thickness", m.Thickness, MinThickness, MaxThickness},
		{"transmission", m.Transmission, MinTransmission, MaxTransmission},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || c.value < c.min || c.value > c.max {
			return fmt.Errorf("%w: %s %v outside [%v, %v]", ErrInvalidMaterial, c.name, c.value, c.min, c.max)
		}
	}
	return nil
}

// Clamped returns a copy with every numeric parameter moved into bounds and
// an unparseable color replaced by white.
func (m MaterialState) Clamped() MaterialState {
	clamp := func(x, min, max float64) float64 {
		if math.IsNaN(x) {
			return min
		}
		return math.Max(min, math.Min(max, x))
	}
	m.IOR = clamp(m.IOR, MinIOR, MaxIOR)
	m.Roughness = clamp(m.Roughness, MinRoughness, MaxRoughness)
	m.Thickness = clamp(m.Thickness, MinThickness, MaxThickness)
	m.Transmission = clamp(m.Transmission, MinTransmission, MaxTransmission)
	if !validHexColor(m.BaseColor) {
		m.BaseColor = "#ffffff"
	}
	return m
}

// Color returns the tint in [0, 1] components. NoColor yields white.
func (m MaterialState) Color() (r, g, b float64) {
	if m.NoColor || !validHexColor(m.BaseColor) {
		return 1, 1, 1
	}
	c := gg.Hex(m.BaseColor)
	return c.R, c.G, c.B
}

// Bevel profiles for the two edge qualities.
var (
	SmoothBevel  = BevelProfile{Thickness: 0.03, Size: 0.02, Segments: 8, CurveSegments: 12}
	FacetedBevel = BevelProfile{Thickness: 0.012, Size: 0.008, Segments: 2, CurveSegments: 6}
)

type BevelProfile struct {
	Thickness     float64
	Size          float64
	Segments      int
	CurveSegments int
}

// ExtrudeOptions derives the extrusion parameters. Thickness sets the depth
// and EdgeSmooth picks between the smooth and faceted bevel profiles.
func (m MaterialState) ExtrudeOptions() ExtrudeOptions {
	p := FacetedBevel
	if m.EdgeSmooth {
		p = SmoothBevel
	}
	return ExtrudeOptions{
		Depth:          m.Thickness,
		BevelEnabled:   true,
		BevelThickness: p.Thickness,
		BevelSize:      p.Size,
		BevelSegments:  p.Segments,
		CurveSegments:  p.CurveSegments,
		Steps:          1,
	}
}

// AffectsGeometry reports whether switching from m to other requires a new
// mesh.
func (m MaterialState) AffectsGeometry(other MaterialState) bool {
	return m.Thickness != other.Thickness || m.EdgeSmooth != other.EdgeSmooth
}

func validHexColor(s string) bool {
	if len(s) != 4 && len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}
