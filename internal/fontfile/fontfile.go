// Package fontfile loads glyph fonts from disk.
package fontfile

import (
	"errors"
	"fmt"
	"os"

	"github.com/h2non/filetype"
	"github.com/unixpickle/glassglyph"
)

var ErrUnsupportedFont = errors.New("fontfile: unsupported font format")

// Sniff returns the font extension detected from the leading bytes of data.
// Only TrueType and OpenType files are accepted; web fonts must be
// decompressed first.
func Sniff(data []byte) (string, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return "", err
	}
	switch kind.Extension {
	case "ttf", "otf":
		return kind.Extension, nil
	case "woff", "woff2":
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFont, kind.Extension)
	}
	if kind == filetype.Unknown {
		return "", fmt.Errorf("%w: unrecognized data", ErrUnsupportedFont)
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFont, kind.MIME.Value)
}

// Parse sniffs and parses a font.
func Parse(data []byte) (*glassglyph.ParsedFont, error) {
	if _, err := Sniff(data); err != nil {
		return nil, err
	}
	return glassglyph.ParseFont(data)
}

// Load reads a font file and wraps it in a glyph library. The em square
// maps to scale model units.
func Load(path string, scale float64) (*glassglyph.Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	font, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load font %s: %w", path, err)
	}
	return glassglyph.NewFontLibrary(font, scale), nil
}
