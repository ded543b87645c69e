package glassglyph

import (
	"math"

	"github.com/unixpickle/model3d/model3d"
)

// DefaultFillFraction leaves a 20% margin on every side of the frame.
const DefaultFillFraction = 0.6

// Framing places a camera on the +Z side of an object, looking at the
// center of its bounding box.
type Framing struct {
	Distance float64
	Position model3d.Coord3D
	Target   model3d.Coord3D
}

// Frame computes a camera placement such that the largest dimension of the
// box [min, max] spans fill of a square frame with the given vertical field
// of view in degrees.
//
// The result is relative to the box center, so translating the box moves
// the camera by the same amount. A non-positive fill uses
// DefaultFillFraction. The second return value is false for an empty or
// degenerate box.
func Frame(min, max model3d.Coord3D, fovDegrees, fill float64) (Framing, bool) {
	if fill <= 0 {
		fill = DefaultFillFraction
	}
	size := max.Sub(min)
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if !(maxDim > 0) || math.IsInf(maxDim, 0) || !(fovDegrees > 0 && fovDegrees < 180) {
		return Framing{}, false
	}
	fov := fovDegrees * math.Pi / 180
	dist := (maxDim / 2) / math.Tan(fov/2) / fill
	center := min.Mid(max)
	return Framing{
		Distance: dist,
		Position: center.Add(model3d.XYZ(0, 0, dist)),
		Target:   center,
	}, true
}
