package glassglyph

import (
	"errors"
	"fmt"

	"github.com/unixpickle/model3d/model2d"
)

// ErrMalformedCommand is returned when a drawing command carries fewer
// coordinates than its operation needs.
var ErrMalformedCommand = errors.New("malformed path command")

// CommandOp identifies a path-drawing instruction.
type CommandOp int

const (
	// OpUnknown marks an instruction the interpreter does not understand.
	// Such commands are skipped rather than failing the whole path.
	OpUnknown CommandOp = iota
	OpMoveTo
	OpLineTo
	OpQuadTo
	OpCubicTo
	OpClose
)

// NumArgs returns the number of coordinate values required by op.
func (c CommandOp) NumArgs() int {
	switch c {
	case OpMoveTo, OpLineTo:
		return 2
	case OpQuadTo:
		return 4
	case OpCubicTo:
		return 6
	default:
		return 0
	}
}

func (c CommandOp) String() string {
	switch c {
	case OpMoveTo:
		return "moveTo"
	case OpLineTo:
		return "lineTo"
	case OpQuadTo:
		return "quadraticCurveTo"
	case OpCubicTo:
		return "cubicCurveTo"
	case OpClose:
		return "closePath"
	default:
		return "unknown"
	}
}

// A Command is one drawing instruction.
//
// Args are flat coordinate pairs: control points first and the end point
// last, as in canvas-style APIs.
type Command struct {
	Op   CommandOp
	Args []float64
}

func MoveTo(x, y float64) Command { return Command{Op: OpMoveTo, Args: []float64{x, y}} }
func LineTo(x, y float64) Command { return Command{Op: OpLineTo, Args: []float64{x, y}} }
func QuadTo(cx, cy, x, y float64) Command {
	return Command{Op: OpQuadTo, Args: []float64{cx, cy, x, y}}
}
func CubicTo(c1x, c1y, c2x, c2y, x, y float64) Command {
	return Command{Op: OpCubicTo, Args: []float64{c1x, c1y, c2x, c2y, x, y}}
}
func ClosePath() Command { return Command{Op: OpClose} }

// Interpreter turns command streams into shapes.
//
// Every coordinate is mapped as (x*Scale+OffsetX, ±y*Scale+OffsetY), where the
// Y axis is negated when FlipY is set. Both SVG path data and font outlines
// loaded top-down use FlipY so that the resulting contours are Y-up, matching
// the extrusion convention.
type Interpreter struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
	FlipY   bool
}

func (in Interpreter) point(x, y float64) model2d.Coord {
	scale := in.Scale
	if scale == 0 {
		scale = 1
	}
	if in.FlipY {
		y = -y
	}
	return model2d.XY(x*scale+in.OffsetX, y*scale+in.OffsetY)
}

// Interpret builds a shape from cmds.
//
// The first subpath becomes the outer contour and every subsequent subpath
// becomes one of its holes. Unknown commands are ignored. A command with
// too few arguments yields an error wrapping ErrMalformedCommand.
func (in Interpreter) Interpret(cmds []Command) (*Shape, error) {
	var contours []*Contour
	var cur *Contour
	var pen model2d.Coord

	begin := func(p model2d.Coord) {
		cur = &Contour{Start: p}
		contours = append(contours, cur)
		pen = p
	}

	for i, cmd := range cmds {
		if cmd.Op == OpUnknown {
			continue
		}
		if len(cmd.Args) < cmd.Op.NumArgs() {
			return nil, fmt.Errorf("command %d (%s): %w: need %d values, got %d",
				i, cmd.Op, ErrMalformedCommand, cmd.Op.NumArgs(), len(cmd.Args))
		}
		a := cmd.Args
		switch cmd.Op {
		case OpMoveTo:
			begin(in.point(a[0], a[1]))
			continue
		case OpClose:
			if cur != nil {
				cur.Closed = true
				pen = cur.Start
				cur = nil
			}
			continue
		}

		// Drawing without an active subpath starts one at the pen, like a
		// canvas path does after closePath or at the very beginning.
		if cur == nil {
			begin(pen)
		}
		switch cmd.Op {
		case OpLineTo:
			end := in.point(a[0], a[1])
			cur.Segments = append(cur.Segments, Segment{Kind: SegmentLine, End: end})
			pen = end
		case OpQuadTo:
			end := in.point(a[2], a[3])
			cur.Segments = append(cur.Segments, Segment{
				Kind:  SegmentQuad,
				Ctrl1: in.point(a[0], a[1]),
				End:   end,
			})
			pen = end
		case OpCubicTo:
			end := in.point(a[4], a[5])
			cur.Segments = append(cur.Segments, Segment{
				Kind:  SegmentCubic,
				Ctrl1: in.point(a[0], a[1]),
				Ctrl2: in.point(a[2], a[3]),
				End:   end,
			})
			pen = end
		}
	}

	// Subpaths that never drew anything are dropped.
	shape := &Shape{}
	for _, c := range contours {
		if len(c.Segments) == 0 {
			continue
		}
		if shape.Outer == nil {
			shape.Outer = c
		} else {
			shape.Holes = append(shape.Holes, c)
		}
	}
	if shape.Outer == nil {
		return nil, errors.New("path has no drawable subpath")
	}
	return shape, nil
}
