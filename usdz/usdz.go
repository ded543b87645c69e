// Package usdz exports glass meshes as USDZ packages: a USDA scene with a
// preview surface material, stored uncompressed in an aligned zip archive.
package usdz

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/unixpickle/glassglyph"
)

var (
	ErrNoMesh     = errors.New("usdz: no mesh to export")
	ErrNoVertices = errors.New("usdz: mesh has no vertices")
	ErrNoFaces    = errors.New("usdz: mesh has no faces")
)

// DefaultName is the root prim name used when Options.Name is empty.
const DefaultName = "Letter"

type Options struct {
	// Name of the root prim and of the USDA entry. Characters that are not
	// valid in a prim name are replaced by underscores.
	Name string

	// Remap converts the material. Nil means DefaultRemap.
	Remap *Remap
}

// Export encodes a mesh and material as a USDZ package.
func Export(mesh *glassglyph.Mesh, material glassglyph.MaterialState, opts Options) ([]byte, error) {
	if err := checkMesh(mesh); err != nil {
		return nil, err
	}
	remap := DefaultRemap()
	if opts.Remap != nil {
		remap = *opts.Remap
	}
	name := PrimName(opts.Name)

	var doc bytes.Buffer
	if err := WriteUSDA(&doc, mesh, remap.Apply(material), name); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	aw := newAlignedWriter(&out)
	if err := aw.Add(name+".usda", doc.Bytes()); err != nil {
		return nil, fmt.Errorf("usdz: write archive: %w", err)
	}
	if err := aw.Close(); err != nil {
		return nil, fmt.Errorf("usdz: write archive: %w", err)
	}
	return out.Bytes(), nil
}

// PrimName turns an arbitrary label into a valid prim name.
func PrimName(name string) string {
	if name == "" {
		return DefaultName
	}
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if i == 0 && unicode.IsDigit(r) {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
