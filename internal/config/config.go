// Package config loads glassglyph settings from YAML or TOML files and
// command-line flags.
package config

import (
	"errors"
	"fmt"

	"github.com/unixpickle/glassglyph"
	"github.com/unixpickle/glassglyph/internal/logger"
	"github.com/unixpickle/glassglyph/usdz"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds every setting of the exporter.
type Config struct {
	Material glassglyph.MaterialState `yaml:"material" toml:"material"`
	Export   glassglyph.ExportConfig  `yaml:"export" toml:"export"`
	Render   RenderConfig             `yaml:"render" toml:"render"`
	USDZ     usdz.Remap               `yaml:"usdz" toml:"usdz"`
	Batch    BatchConfig              `yaml:"batch" toml:"batch"`
	Logging  LoggingConfig            `yaml:"logging" toml:"logging"`
}

// RenderConfig holds the software renderer settings.
type RenderConfig struct {
	// Supersample is the factor used to smooth captured images.
	Supersample int `yaml:"supersample" toml:"supersample"`

	// FontPath selects a TrueType font for glyph outlines. Empty uses the
	// built-in glyph table.
	FontPath string `yaml:"font_path" toml:"font_path"`

	// SettleTimeout is the longest a capture waits for the preview to
	// render a new character, in milliseconds.
	SettleTimeoutMS int `yaml:"settle_timeout_ms" toml:"settle_timeout_ms"`
}

// BatchConfig holds batch export settings.
type BatchConfig struct {
	// Characters to export. Empty means the active alphabet.
	Characters string `yaml:"characters" toml:"characters"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string            `yaml:"level" toml:"level"`
	File  logger.FileConfig `yaml:"file" toml:"file"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Material: glassglyph.DefaultMaterial(),
		Export:   glassglyph.DefaultExportConfig(),
		Render: RenderConfig{
			Supersample:     2,
			SettleTimeoutMS: 2000,
		},
		USDZ: usdz.DefaultRemap(),
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Material.Validate(); err != nil {
		return err
	}
	if err := c.Export.Validate(); err != nil {
		return err
	}
	if c.Render.Supersample < 1 || c.Render.Supersample > 4 {
		return fmt.Errorf("%w: supersample %d outside [1, 4]", ErrInvalidConfig, c.Render.Supersample)
	}
	if c.Render.SettleTimeoutMS <= 0 {
		return fmt.Errorf("%w: settle timeout must be positive", ErrInvalidConfig)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Logging.Level)
	}
	r := c.USDZ
	if r.Opacity < 0 || r.Opacity > 1 || r.TransmissionCap < 0 || r.TransmissionCap > 1 ||
		r.RoughnessMin > r.RoughnessMax {
		return fmt.Errorf("%w: usdz remap out of range", ErrInvalidConfig)
	}
	return nil
}

// BatchCharacters returns the characters a batch export covers.
func (c *Config) BatchCharacters() []rune {
	if c.Batch.Characters == "" {
		return glassglyph.Characters()
	}
	return []rune(c.Batch.Characters)
}
