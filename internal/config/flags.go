package config

import (
	"flag"

	"github.com/unixpickle/glassglyph"
)

// Flags are command-line overrides. Zero values leave the file settings
// alone.
type Flags struct {
	ConfigPath string
	Format     string
	Resolution int
	Frames     int
	Animation  string
	Color      string
	Thickness  float64
	Faceted    bool
	Font       string
	Characters string
	Debug      bool
	LogFile    string
}

// RegisterFlags defines the override flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.ConfigPath, "config", "", "path to a YAML or TOML config file")
	fs.StringVar(&f.Format, "format", "", "export format: png, png-sequence or usdz")
	fs.IntVar(&f.Resolution, "resolution", 0, "output resolution in pixels")
	fs.IntVar(&f.Frames, "frames", 0, "number of animation frames")
	fs.StringVar(&f.Animation, "animation", "", "animation type: rotation, tilt or both")
	fs.StringVar(&f.Color, "color", "", "glass base color, e.g. #88ccff")
	fs.Float64Var(&f.Thickness, "thickness", 0, "extrusion depth")
	fs.BoolVar(&f.Faceted, "faceted", false, "use the faceted bevel profile")
	fs.StringVar(&f.Font, "font", "", "TrueType font for glyph outlines")
	fs.StringVar(&f.Characters, "chars", "", "characters to export in a batch")
	fs.BoolVar(&f.Debug, "debug", false, "enable debug logging")
	fs.StringVar(&f.LogFile, "log-file", "", "also log to this file")
	return f
}

// Load reads the config file named by the flags and applies the overrides.
func (f *Flags) Load() (*Config, error) {
	cfg, err := Load(f.ConfigPath)
	if err != nil {
		return nil, err
	}
	f.apply(cfg)
	return cfg, nil
}

func (f *Flags) apply(cfg *Config) {
	if f.Format != "" {
		cfg.Export.Format = glassglyph.ExportFormat(f.Format)
	}
	if f.Resolution > 0 {
		cfg.Export.Resolution = f.Resolution
	}
	if f.Frames > 0 {
		cfg.Export.Animation.FrameCount = f.Frames
	}
	if f.Animation != "" {
		cfg.Export.Animation.Type = glassglyph.AnimationType(f.Animation)
	}
	if f.Color != "" {
		cfg.Material.BaseColor = f.Color
		cfg.Material.NoColor = false
	}
	if f.Thickness > 0 {
		cfg.Material.Thickness = f.Thickness
	}
	if f.Faceted {
		cfg.Material.EdgeSmooth = false
	}
	if f.Font != "" {
		cfg.Render.FontPath = f.Font
	}
	if f.Characters != "" {
		cfg.Batch.Characters = f.Characters
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.File.Path = f.LogFile
	}
}
