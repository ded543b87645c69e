package usdz

import (
	"math"

	"github.com/unixpickle/glassglyph"
)

// Remap converts live glass parameters into preview surface inputs.
//
// Viewers of the exported scene light it without real transmission, so the
// live values are not passed through: opacity is a fixed constant,
// transmission is scaled and capped, and roughness is held in a narrow band
// near zero.
type Remap struct {
	Opacity            float64 `yaml:"opacity" toml:"opacity"`
	TransmissionScale  float64 `yaml:"transmission_scale" toml:"transmission_scale"`
	TransmissionCap    float64 `yaml:"transmission_cap" toml:"transmission_cap"`
	RoughnessMin       float64 `yaml:"roughness_min" toml:"roughness_min"`
	RoughnessMax       float64 `yaml:"roughness_max" toml:"roughness_max"`
	Clearcoat          float64 `yaml:"clearcoat" toml:"clearcoat"`
	ClearcoatRoughness float64 `yaml:"clearcoat_roughness" toml:"clearcoat_roughness"`
	Specular           float64 `yaml:"specular" toml:"specular"`
}

// DefaultRemap returns the constants used by the product.
func DefaultRemap() Remap {
	return Remap{
		Opacity:            0.35,
		TransmissionScale:  0.5,
		TransmissionCap:    0.4,
		RoughnessMin:       0,
		RoughnessMax:       0.05,
		Clearcoat:          1,
		ClearcoatRoughness: 0.05,
		Specular:           0.5,
	}
}

// SurfaceInputs are the values written to the preview surface shader.
type SurfaceInputs struct {
	DiffuseColor       [3]float64
	IOR                float64
	Roughness          float64
	Opacity            float64
	Transmission       float64
	Clearcoat          float64
	ClearcoatRoughness float64
	Specular           float64
}

// Apply maps a material through the remapping.
func (r Remap) Apply(m glassglyph.MaterialState) SurfaceInputs {
	m = m.Clamped()
	red, green, blue := m.Color()
	return SurfaceInputs{
		DiffuseColor:       [3]float64{red, green, blue},
		IOR:                m.IOR,
		Roughness:          math.Max(r.RoughnessMin, math.Min(r.RoughnessMax, m.Roughness)),
		Opacity:            r.Opacity,
		Transmission:       math.Min(m.Transmission*r.TransmissionScale, r.TransmissionCap),
		Clearcoat:          r.Clearcoat,
		ClearcoatRoughness: r.ClearcoatRoughness,
		Specular:           r.Specular,
	}
}
