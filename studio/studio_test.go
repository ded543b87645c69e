package studio

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unixpickle/glassglyph"
	"github.com/unixpickle/glassglyph/batch"
	"github.com/unixpickle/glassglyph/render"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.PreviewSize = 24
	opts.Supersample = 1
	opts.Material.EdgeSmooth = false
	opts.Export.Resolution = 24
	return opts
}

func zipNames(t *testing.T, data []byte) []string {
	t.Helper()
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names
}

func TestNew(t *testing.T) {
	s, err := New(testOptions())
	require.NoError(t, err)
	assert.Equal(t, '0', s.Character())
	require.NotNil(t, s.Mesh())
	assert.Positive(t, s.Mesh().NumTriangles())

	opts := testOptions()
	opts.Material.IOR = 3
	_, err = New(opts)
	assert.ErrorIs(t, err, glassglyph.ErrInvalidMaterial)
}

func TestSetMaterialRebuild(t *testing.T) {
	s, err := New(testOptions())
	require.NoError(t, err)
	mesh := s.Mesh()

	m := s.Material()
	m.BaseColor = "#336699"
	m.Roughness = 0.2
	require.NoError(t, s.SetMaterial(m))
	assert.Same(t, mesh, s.Mesh(), "appearance changes keep the mesh")

	m.Thickness = 1.5
	require.NoError(t, s.SetMaterial(m))
	assert.NotSame(t, mesh, s.Mesh())
	min, max := s.Mesh().Bounds()
	assert.Greater(t, max.Z-min.Z, 1.5)

	bad := m
	bad.Thickness = 5
	assert.Error(t, s.SetMaterial(bad))
	assert.Equal(t, m, s.Material())
}

func TestSetCharacter(t *testing.T) {
	s, err := New(testOptions())
	require.NoError(t, err)
	s.SetCharacter('b')
	assert.Equal(t, 'B', s.Character())
	mesh := s.Mesh()
	s.SetCharacter('B')
	assert.Same(t, mesh, s.Mesh())
}

func TestSettleWithoutLoop(t *testing.T) {
	r := render.NewSoftwareRenderer(16, 16)
	opts := testOptions()
	opts.Renderer = r
	s, err := New(opts)
	require.NoError(t, err)
	require.NoError(t, s.Show(context.Background(), '7'))
	assert.Equal(t, 1, r.FrameCount())
	assert.Equal(t, '7', s.Character())
}

func TestSettleWithLoop(t *testing.T) {
	r := render.NewSoftwareRenderer(16, 16)
	opts := testOptions()
	opts.Renderer = r
	s, err := New(opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Run(ctx, time.Millisecond)
	}()
	require.Eventually(t, func() bool {
		s.lock.Lock()
		defer s.lock.Unlock()
		return s.running
	}, time.Second, time.Millisecond)

	require.NoError(t, s.Show(context.Background(), '3'))
	assert.Error(t, s.Run(context.Background(), time.Millisecond), "only one loop may run")

	cancel()
	wg.Wait()
	s.lock.Lock()
	assert.False(t, s.running)
	assert.Empty(t, s.waiters)
	s.lock.Unlock()
}

func TestRunInvalidInterval(t *testing.T) {
	s, err := New(testOptions())
	require.NoError(t, err)
	assert.Error(t, s.Run(context.Background(), 0))
	assert.Error(t, s.Run(context.Background(), -time.Second))
	s.lock.Lock()
	assert.False(t, s.running)
	s.lock.Unlock()
}

func TestSettleTimeout(t *testing.T) {
	opts := testOptions()
	opts.SettleTimeout = 10 * time.Millisecond
	s, err := New(opts)
	require.NoError(t, err)

	// Pretend a loop is running that never renders.
	s.lock.Lock()
	s.running = true
	s.lock.Unlock()
	assert.ErrorIs(t, s.Settle(context.Background()), ErrSettleTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Settle(ctx), context.Canceled)
}

func TestExportCurrentPNG(t *testing.T) {
	r := render.NewSoftwareRenderer(16, 12)
	opts := testOptions()
	opts.Renderer = r
	s, err := New(opts)
	require.NoError(t, err)
	s.SetRotation(render.Rotation{Y: 0.3})

	name, data, err := s.ExportCurrent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "glass-letter-0.png", name)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 24, 24), img.Bounds())

	w, h := r.Size()
	assert.Equal(t, []int{16, 12}, []int{w, h})
	assert.Equal(t, render.Rotation{Y: 0.3}, s.scene.Object.Rotation)
	assert.NotNil(t, s.scene.Background)
}

func TestExportCurrentFormats(t *testing.T) {
	s, err := New(testOptions())
	require.NoError(t, err)
	s.SetCharacter('8')

	cfg := glassglyph.DefaultExportConfig()
	cfg.Resolution = 16
	cfg.Format = glassglyph.FormatPNGSequence
	cfg.Animation.FrameCount = 3
	require.NoError(t, s.SetExportConfig(cfg))
	name, data, err := s.ExportCurrent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "glass-letter-8.zip", name)
	assert.Equal(t, []string{"frame_001.png", "frame_002.png", "frame_003.png"}, zipNames(t, data))

	cfg.Format = glassglyph.FormatUSDZ
	require.NoError(t, s.SetExportConfig(cfg))
	name, data, err = s.ExportCurrent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "glass-letter-8.usdz", name)
	assert.Equal(t, []string{"Letter.usda"}, zipNames(t, data))

	cfg.Animation.FrameCount = 0
	assert.Error(t, s.SetExportConfig(cfg))
}

func TestExportBatch(t *testing.T) {
	s, err := New(testOptions())
	require.NoError(t, err)
	s.SetCharacter('9')

	var progress []int
	name, data, err := s.ExportBatch(context.Background(), []rune("012"), func(current, total int) {
		assert.Equal(t, 3, total)
		progress = append(progress, current)
	})
	require.NoError(t, err)
	assert.Equal(t, BatchArchiveName, name)
	assert.Equal(t, []int{1, 2, 3}, progress)
	assert.Equal(t, []string{"0.png", "1.png", "2.png"}, zipNames(t, data))
	assert.Equal(t, '9', s.Character())
}

// flakyRenderer fails its n-th Render call.
type flakyRenderer struct {
	*render.SoftwareRenderer
	calls  int
	failAt int
}

func (f *flakyRenderer) Render(scene *render.Scene, cam *render.Camera) error {
	f.calls++
	if f.calls == f.failAt {
		return errors.New("device lost")
	}
	return f.SoftwareRenderer.Render(scene, cam)
}

func TestExportBatchFailure(t *testing.T) {
	// Each character renders once to settle and once to capture, so the
	// sixth call is the capture of the third character.
	r := &flakyRenderer{SoftwareRenderer: render.NewSoftwareRenderer(16, 16), failAt: 6}
	opts := testOptions()
	opts.Renderer = r
	s, err := New(opts)
	require.NoError(t, err)

	name, data, err := s.ExportBatch(context.Background(), []rune("0123456789"), nil)
	assert.Empty(t, name)
	assert.Nil(t, data)
	var charErr *batch.CharError
	require.ErrorAs(t, err, &charErr)
	assert.Equal(t, '2', charErr.Char)
	assert.Equal(t, 6, r.calls)
	assert.Equal(t, '0', s.Character())
}
