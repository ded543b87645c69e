package glassglyph

import (
	"errors"
	"fmt"
)

const (
	MinFrameCount = 1
	MaxFrameCount = 120
	MinResolution = 16
	MaxResolution = 4096
)

var ErrInvalidExportConfig = errors.New("invalid export config")

type ExportFormat string

const (
	FormatPNG         ExportFormat = "png"
	FormatPNGSequence ExportFormat = "png-sequence"
	FormatUSDZ        ExportFormat = "usdz"
)

// Extension returns the file extension of a single export in this format.
func (f ExportFormat) Extension() string {
	switch f {
	case FormatPNGSequence:
		return "zip"
	case FormatUSDZ:
		return "usdz"
	default:
		return "png"
	}
}

func (f ExportFormat) valid() bool {
	return f == FormatPNG || f == FormatPNGSequence || f == FormatUSDZ
}

type AnimationType string

const (
	AnimateRotation AnimationType = "rotation"
	AnimateTilt     AnimationType = "tilt"
	AnimateBoth     AnimationType = "both"
)

// AnimationConfig describes a turntable sequence. Angles are in degrees;
// rotation turns about the vertical axis and tilt about the horizontal one.
type AnimationConfig struct {
	Type          AnimationType `yaml:"type" toml:"type"`
	RotationStart float64       `yaml:"rotation_start" toml:"rotation_start"`
	RotationEnd   float64       `yaml:"rotation_end" toml:"rotation_end"`
	TiltStart     float64       `yaml:"tilt_start" toml:"tilt_start"`
	TiltEnd       float64       `yaml:"tilt_end" toml:"tilt_end"`
	FrameCount    int           `yaml:"frame_count" toml:"frame_count"`
}

// Pose returns the (tilt, rotation) angles in degrees for frame f.
//
// The first frame is the start pose and the last is the end pose. A single
// frame sequence uses the start pose.
func (a AnimationConfig) Pose(f int) (tilt, rotation float64) {
	t := 0.0
	if a.FrameCount > 1 {
		t = float64(f) / float64(a.FrameCount-1)
	}
	tilt, rotation = a.TiltStart, a.RotationStart
	switch a.Type {
	case AnimateRotation:
		rotation = lerp(a.RotationStart, a.RotationEnd, t)
	case AnimateTilt:
		tilt = lerp(a.TiltStart, a.TiltEnd, t)
	case AnimateBoth:
		rotation = lerp(a.RotationStart, a.RotationEnd, t)
		tilt = lerp(a.TiltStart, a.TiltEnd, t)
	}
	return tilt, rotation
}

func (a AnimationConfig) Validate() error {
	switch a.Type {
	case AnimateRotation, AnimateTilt, AnimateBoth:
	default:
		return fmt.Errorf("%w: unknown animation type %q", ErrInvalidExportConfig, a.Type)
	}
	if a.FrameCount < MinFrameCount || a.FrameCount > MaxFrameCount {
		return fmt.Errorf("%w: frame count %d outside [%d, %d]", ErrInvalidExportConfig,
			a.FrameCount, MinFrameCount, MaxFrameCount)
	}
	return nil
}

type ExportConfig struct {
	Format     ExportFormat    `yaml:"format" toml:"format"`
	Resolution int             `yaml:"resolution" toml:"resolution"`
	Animation  AnimationConfig `yaml:"animation" toml:"animation"`
}

func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		Format:     FormatPNG,
		Resolution: 1024,
		Animation: AnimationConfig{
			Type:          AnimateRotation,
			RotationStart: 0,
			RotationEnd:   360,
			TiltStart:     0,
			TiltEnd:       0,
			FrameCount:    36,
		},
	}
}

func (e ExportConfig) Validate() error {
	if !e.Format.valid() {
		return fmt.Errorf("%w: unknown format %q", ErrInvalidExportConfig, e.Format)
	}
	if e.Resolution < MinResolution || e.Resolution > MaxResolution {
		return fmt.Errorf("%w: resolution %d outside [%d, %d]", ErrInvalidExportConfig,
			e.Resolution, MinResolution, MaxResolution)
	}
	return e.Animation.Validate()
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
