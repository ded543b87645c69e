// Package studio holds the live preview: the renderer, scene, camera and
// current glyph mesh, plus the export entry points that borrow them.
package studio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode"

	"github.com/unixpickle/glassglyph"
	"github.com/unixpickle/glassglyph/batch"
	"github.com/unixpickle/glassglyph/render"
	"github.com/unixpickle/glassglyph/usdz"
	"go.uber.org/zap"
)

const (
	DefaultPreviewSize   = 512
	DefaultSettleTimeout = 2 * time.Second
	BatchArchiveName     = "glass-letters-all.zip"
)

var ErrSettleTimeout = errors.New("studio: timed out waiting for a rendered frame")

type Options struct {
	// Renderer draws the preview. Nil creates a software renderer of
	// PreviewSize pixels on a side with the given Supersample factor.
	Renderer    render.Renderer
	PreviewSize int
	Supersample int

	// Library supplies glyph outlines. Nil uses glassglyph.DefaultLibrary.
	Library *glassglyph.Library

	Character rune
	Material  glassglyph.MaterialState
	Export    glassglyph.ExportConfig
	Remap     *usdz.Remap

	// SettleTimeout bounds how long Show waits for the preview to render.
	SettleTimeout time.Duration

	Logger *zap.Logger
}

// DefaultOptions returns options for a preview of '0' in clear glass.
func DefaultOptions() Options {
	return Options{
		PreviewSize:   DefaultPreviewSize,
		Supersample:   2,
		Character:     '0',
		Material:      glassglyph.DefaultMaterial(),
		Export:        glassglyph.DefaultExportConfig(),
		SettleTimeout: DefaultSettleTimeout,
	}
}

// Studio owns the preview state. Every method is safe to call from any
// goroutine, and captures never overlap.
type Studio struct {
	log           *zap.Logger
	library       *glassglyph.Library
	remap         *usdz.Remap
	settleTimeout time.Duration

	lock     sync.Mutex
	renderer render.Renderer
	scene    *render.Scene
	camera   *render.Camera
	char     rune
	material glassglyph.MaterialState
	export   glassglyph.ExportConfig
	running  bool
	waiters  []chan struct{}
}

// New creates a studio showing opts.Character.
func New(opts Options) (*Studio, error) {
	if err := opts.Material.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Export.Validate(); err != nil {
		return nil, err
	}
	s := &Studio{
		log:           opts.Logger,
		library:       opts.Library,
		remap:         opts.Remap,
		settleTimeout: opts.SettleTimeout,
		renderer:      opts.Renderer,
		scene:         render.NewScene(),
		camera:        render.NewCamera(),
		char:          unicode.ToUpper(opts.Character),
		material:      opts.Material,
		export:        opts.Export,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.library == nil {
		s.library = glassglyph.DefaultLibrary
	}
	if s.settleTimeout <= 0 {
		s.settleTimeout = DefaultSettleTimeout
	}
	if s.renderer == nil {
		size := opts.PreviewSize
		if size <= 0 {
			size = DefaultPreviewSize
		}
		sr := render.NewSoftwareRenderer(size, size)
		sr.Supersample = opts.Supersample
		s.renderer = sr
	}
	if s.char == 0 {
		s.char = glassglyph.Characters()[0]
	}
	s.scene.Object = &render.Object{Material: s.material}
	s.rebuild()
	return s, nil
}

func (s *Studio) Character() rune {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.char
}

func (s *Studio) Material() glassglyph.MaterialState {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.material
}

// Mesh returns the mesh currently on display.
func (s *Studio) Mesh() *glassglyph.Mesh {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.scene.Object.Mesh
}

// SetCharacter switches the displayed glyph.
func (s *Studio) SetCharacter(c rune) {
	s.lock.Lock()
	defer s.lock.Unlock()
	c = unicode.ToUpper(c)
	if c == s.char && s.scene.Object.Mesh != nil {
		return
	}
	s.char = c
	s.rebuild()
}

// SetMaterial validates and applies a material. The mesh is only rebuilt
// when the change affects its geometry.
func (s *Studio) SetMaterial(m glassglyph.MaterialState) error {
	if err := m.Validate(); err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	rebuild := s.material.AffectsGeometry(m)
	s.material = m
	s.scene.Object.Material = m
	if rebuild {
		s.rebuild()
	}
	return nil
}

func (s *Studio) SetExportConfig(e glassglyph.ExportConfig) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.export = e
	return nil
}

// SetRotation turns the displayed object.
func (s *Studio) SetRotation(r render.Rotation) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.scene.Object.Rotation = r
}

// rebuild replaces the mesh for the current character and material. A
// failure leaves the scene without a mesh.
func (s *Studio) rebuild() {
	start := time.Now()
	mesh, err := glassglyph.Extrude(s.library.ContoursFor(s.char), s.material.ExtrudeOptions())
	if err != nil {
		s.log.Error("build mesh", zap.String("char", string(s.char)), zap.Error(err))
		s.scene.Object.Mesh = nil
		return
	}
	s.scene.Object.Mesh = mesh
	s.log.Debug("built mesh",
		zap.String("char", string(s.char)),
		zap.Int("triangles", mesh.NumTriangles()),
		zap.Duration("elapsed", time.Since(start)))
}

// RenderFrame draws one preview frame and wakes everyone waiting for it.
func (s *Studio) RenderFrame() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.renderFrame()
}

func (s *Studio) renderFrame() error {
	err := s.renderer.Render(s.scene, s.camera)
	for _, ch := range s.waiters {
		close(ch)
	}
	s.waiters = nil
	return err
}

// Run renders a preview frame every interval until ctx is done.
func (s *Studio) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("studio: invalid render interval %v", interval)
	}
	s.lock.Lock()
	if s.running {
		s.lock.Unlock()
		return errors.New("studio: render loop already running")
	}
	s.running = true
	s.lock.Unlock()

	defer func() {
		s.lock.Lock()
		defer s.lock.Unlock()
		s.running = false
		if len(s.waiters) > 0 {
			s.renderFrame()
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := s.RenderFrame(); err != nil {
			s.log.Warn("render frame", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Settle returns once a frame started after the call has been rendered.
// Without a render loop the frame is rendered immediately.
func (s *Studio) Settle(ctx context.Context) error {
	s.lock.Lock()
	if !s.running {
		defer s.lock.Unlock()
		return s.renderFrame()
	}
	ch := make(chan struct{})
	s.waiters = append(s.waiters, ch)
	s.lock.Unlock()

	timer := time.NewTimer(s.settleTimeout)
	defer timer.Stop()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrSettleTimeout
	}
}

// Show displays c and waits for it to be rendered.
func (s *Studio) Show(ctx context.Context, c rune) error {
	s.SetCharacter(c)
	return s.Settle(ctx)
}

// ExportCurrent exports the displayed character in the configured format.
func (s *Studio) ExportCurrent(ctx context.Context) (name string, data []byte, err error) {
	if err := s.Settle(ctx); err != nil {
		return "", nil, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	data, err = s.exportLocked()
	if err != nil {
		return "", nil, err
	}
	name = fmt.Sprintf("glass-letter-%c.%s", s.char, s.export.Format.Extension())
	s.log.Info("exported",
		zap.String("file", name),
		zap.String("format", string(s.export.Format)),
		zap.Int("bytes", len(data)))
	return name, data, nil
}

// ExportBatch exports every character and archives the outputs. The
// displayed character is restored afterwards.
func (s *Studio) ExportBatch(ctx context.Context, chars []rune,
	onProgress func(current, total int)) (name string, data []byte, err error) {
	original := s.Character()
	defer s.SetCharacter(original)

	s.lock.Lock()
	ext := s.export.Format.Extension()
	s.lock.Unlock()

	start := time.Now()
	data, err = batch.Run(ctx, chars, s, func(ctx context.Context, c rune) ([]byte, error) {
		s.lock.Lock()
		defer s.lock.Unlock()
		return s.exportLocked()
	}, ext, onProgress)
	if err != nil {
		s.log.Error("batch export", zap.Error(err))
		return "", nil, err
	}
	s.log.Info("batch exported",
		zap.Int("characters", len(chars)),
		zap.Duration("elapsed", time.Since(start)))
	return BatchArchiveName, data, nil
}

func (s *Studio) exportLocked() ([]byte, error) {
	switch s.export.Format {
	case glassglyph.FormatPNG:
		return render.Capture(s.renderer, s.scene, s.camera, s.export.Resolution)
	case glassglyph.FormatPNGSequence:
		frames, err := render.CaptureSequence(s.renderer, s.scene, s.camera,
			s.export.Resolution, s.export.Animation)
		if err != nil {
			return nil, err
		}
		return batch.PackFrames(frames)
	case glassglyph.FormatUSDZ:
		return usdz.Export(s.scene.Object.Mesh, s.material, usdz.Options{
			Name:  usdz.DefaultName,
			Remap: s.remap,
		})
	default:
		return nil, fmt.Errorf("studio: unknown export format %q", s.export.Format)
	}
}
