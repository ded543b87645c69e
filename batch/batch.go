// Package batch exports a list of characters into one compressed archive.
package batch

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"

	"github.com/unixpickle/glassglyph/render"
)

// A Stage displays a character. Show returns once a render pass has
// observed the new character, so a capture taken afterwards shows it.
type Stage interface {
	Show(ctx context.Context, char rune) error
}

// An ExportFunc produces the output file for the character being shown.
type ExportFunc func(ctx context.Context, char rune) ([]byte, error)

// CharError reports the character whose export stopped a batch.
type CharError struct {
	Char rune
	Err  error
}

func (c *CharError) Error() string {
	return fmt.Sprintf("export %q: %v", c.Char, c.Err)
}

func (c *CharError) Unwrap() error {
	return c.Err
}

// Entry is a named file in an archive.
type Entry struct {
	Name string
	Data []byte
}

// Run shows and exports every character in order, then packs the outputs
// into a zip archive with one entry named "<char>.<ext>" per character.
//
// onProgress, if non-nil, is called with (i, len(chars)) before the i-th
// character (1-indexed) is processed. The first failure aborts the batch
// and is returned as a *CharError; no archive is produced in that case.
// Cancellation is checked between characters.
func Run(ctx context.Context, chars []rune, stage Stage, export ExportFunc, ext string,
	onProgress func(current, total int)) ([]byte, error) {
	outputs := make([]Entry, 0, len(chars))
	for i, c := range chars {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if onProgress != nil {
			onProgress(i+1, len(chars))
		}
		if err := stage.Show(ctx, c); err != nil {
			return nil, &CharError{Char: c, Err: err}
		}
		data, err := export(ctx, c)
		if err != nil {
			return nil, &CharError{Char: c, Err: err}
		}
		outputs = append(outputs, Entry{Name: string(c) + "." + ext, Data: data})
	}
	return Pack(outputs)
}

// Pack writes the entries, in order, to a deflate-compressed zip archive.
func Pack(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	seen := map[string]bool{}
	for _, e := range entries {
		if seen[e.Name] {
			return nil, fmt.Errorf("pack: duplicate entry %q", e.Name)
		}
		seen[e.Name] = true
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.Name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("pack: %w", err)
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, fmt.Errorf("pack: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("pack: %w", err)
	}
	return buf.Bytes(), nil
}

// PackFrames archives an ordered image sequence as frame_001.png,
// frame_002.png and so on.
func PackFrames(frames [][]byte) ([]byte, error) {
	entries := make([]Entry, len(frames))
	for i, f := range frames {
		entries[i] = Entry{Name: render.FrameName(i, len(frames)), Data: f}
	}
	return Pack(entries)
}
