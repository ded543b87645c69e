package render

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"math"

	"github.com/gogpu/gg"
	"github.com/unixpickle/glassglyph"
	"github.com/unixpickle/model3d/model3d"
)

var ErrRendererNotReady = errors.New("renderer not ready")

type borrowedState struct {
	width      int
	height     int
	pixelRatio float64
	clearColor gg.RGBA
	camera     Camera
	background *gg.RGBA
	object     *Object
	rotation   Rotation
}

func snapshot(r Renderer, scene *Scene, cam *Camera) *borrowedState {
	s := &borrowedState{
		pixelRatio: r.PixelRatio(),
		clearColor: r.ClearColor(),
		camera:     *cam,
		background: scene.Background,
		object:     scene.Object,
	}
	s.width, s.height = r.Size()
	if scene.Object != nil {
		s.rotation = scene.Object.Rotation
	}
	return s
}

func (s *borrowedState) restore(r Renderer, scene *Scene, cam *Camera) {
	r.SetSize(s.width, s.height)
	r.SetPixelRatio(s.pixelRatio)
	r.SetClearColor(s.clearColor)
	*cam = s.camera
	scene.Background = s.background
	scene.Object = s.object
	if s.object != nil {
		s.object.Rotation = s.rotation
	}
}

// Borrow runs fn with temporary ownership of the renderer, scene and camera.
//
// fn may change the renderer size, pixel ratio and clear color, any camera
// field, the scene background and the object rotation. All of them are put
// back when fn returns, fails or panics.
func Borrow(r Renderer, scene *Scene, cam *Camera, fn func() error) error {
	if r == nil || scene == nil || cam == nil {
		return ErrRendererNotReady
	}
	state := snapshot(r, scene, cam)
	defer state.restore(r, scene, cam)
	return fn()
}

// Capture renders a square, transparent PNG of the scene at the given
// resolution.
//
// The camera is reframed around the rotated object, the backdrop is
// hidden, and the environment keeps lighting the glass. Without an object
// the result is an empty transparent frame. The renderer, scene and camera
// are left exactly as they were.
func Capture(r Renderer, scene *Scene, cam *Camera, resolution int) ([]byte, error) {
	var data []byte
	err := Borrow(r, scene, cam, func() error {
		if err := prepareCapture(r, scene, cam, resolution); err != nil {
			return err
		}
		min, max := scene.Object.WorldBounds()
		frameCamera(cam, min, max)
		var err error
		data, err = renderPNG(r, scene, cam)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// CaptureSequence renders one transparent PNG per animation frame, in
// frame order.
//
// Frame f uses the pose from anim.Pose(f): rotation turns the object about
// the Y axis and tilt about the X axis. The camera is framed once, from the
// unrotated object, before the first frame.
func CaptureSequence(r Renderer, scene *Scene, cam *Camera, resolution int,
	anim glassglyph.AnimationConfig) ([][]byte, error) {
	if err := anim.Validate(); err != nil {
		return nil, err
	}
	var frames [][]byte
	err := Borrow(r, scene, cam, func() error {
		if err := prepareCapture(r, scene, cam, resolution); err != nil {
			return err
		}
		if scene.Object.HasGeometry() {
			min, max := scene.Object.Mesh.Bounds()
			frameCamera(cam, min, max)
		}
		frames = make([][]byte, 0, anim.FrameCount)
		for f := 0; f < anim.FrameCount; f++ {
			if scene.Object != nil {
				tilt, rotation := anim.Pose(f)
				scene.Object.Rotation = Rotation{
					X: tilt * math.Pi / 180,
					Y: rotation * math.Pi / 180,
				}
			}
			data, err := renderPNG(r, scene, cam)
			if err != nil {
				return fmt.Errorf("frame %d: %w", f+1, err)
			}
			frames = append(frames, data)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return frames, nil
}

// FrameName returns the file name of frame i (zero-based) in a sequence of
// n frames, e.g. frame_001.png. Numbers are padded to at least three digits.
func FrameName(i, n int) string {
	digits := len(fmt.Sprint(n))
	if digits < 3 {
		digits = 3
	}
	return fmt.Sprintf("frame_%0*d.png", digits, i+1)
}

func prepareCapture(r Renderer, scene *Scene, cam *Camera, resolution int) error {
	if resolution <= 0 {
		return fmt.Errorf("capture: invalid resolution %d", resolution)
	}
	r.SetSize(resolution, resolution)
	r.SetPixelRatio(1)
	r.SetClearColor(gg.Transparent)
	scene.Background = nil
	cam.Aspect = 1
	return nil
}

func frameCamera(cam *Camera, min, max model3d.Coord3D) {
	f, ok := glassglyph.Frame(min, max, cam.FOV, glassglyph.DefaultFillFraction)
	if !ok {
		return
	}
	cam.Position = f.Position
	cam.Target = f.Target
	cam.Up = model3d.XYZ(0, 1, 0)
}

func renderPNG(r Renderer, scene *Scene, cam *Camera) ([]byte, error) {
	if err := r.Render(scene, cam); err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	img := r.Image()
	if img == nil {
		return nil, errors.New("capture: renderer produced no image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("capture: encode png: %w", err)
	}
	return buf.Bytes(), nil
}
