package glassglyph

import (
	"fmt"

	"github.com/tdewolff/parse/v2/strconv"
)

// ParseSVGPath tokenizes SVG path data into drawing commands.
//
// The absolute commands M L H V C Q Z and their relative lowercase forms are
// converted to absolute commands. Repeated argument groups after a command
// letter are accepted, and extra pairs after M become line segments. Other
// command letters are kept as OpUnknown commands so that interpretation can
// skip them.
func ParseSVGPath(d string) ([]Command, error) {
	p := &svgPathParser{data: []byte(d)}
	return p.parse()
}

// ParseSVGShape parses SVG path data and interprets it with the Y axis
// flipped and coordinates multiplied by scale.
func ParseSVGShape(d string, scale float64) (*Shape, error) {
	cmds, err := ParseSVGPath(d)
	if err != nil {
		return nil, err
	}
	return Interpreter{Scale: scale, FlipY: true}.Interpret(cmds)
}

type svgPathParser struct {
	data []byte
	pos  int

	cmds []Command

	// Current point and start of the current subpath, in path coordinates.
	x, y   float64
	startX float64
	startY float64
}

func (p *svgPathParser) parse() ([]Command, error) {
	var op byte
	for {
		p.skipSeparators()
		if p.pos >= len(p.data) {
			break
		}
		c := p.data[p.pos]
		if isCommandLetter(c) {
			op = c
			p.pos++
		} else if op == 0 || !isSupportedCommand(op) {
			return nil, fmt.Errorf("svg path: unexpected %q at offset %d", c, p.pos)
		} else if op == 'Z' || op == 'z' {
			return nil, fmt.Errorf("svg path: unexpected number after close at offset %d", p.pos)
		}
		if err := p.command(op); err != nil {
			return nil, err
		}
		// Implicit repeats of moveto are linetos.
		if op == 'M' {
			op = 'L'
		} else if op == 'm' {
			op = 'l'
		}
	}
	return p.cmds, nil
}

func (p *svgPathParser) command(op byte) error {
	rel := op >= 'a' && op <= 'z'
	var ox, oy float64
	if rel {
		ox, oy = p.x, p.y
	}
	switch op {
	case 'M', 'm':
		v, err := p.numbers(op, 2)
		if err != nil {
			return err
		}
		p.x, p.y = ox+v[0], oy+v[1]
		p.startX, p.startY = p.x, p.y
		p.cmds = append(p.cmds, MoveTo(p.x, p.y))
	case 'L', 'l':
		v, err := p.numbers(op, 2)
		if err != nil {
			return err
		}
		p.x, p.y = ox+v[0], oy+v[1]
		p.cmds = append(p.cmds, LineTo(p.x, p.y))
	case 'H', 'h':
		v, err := p.numbers(op, 1)
		if err != nil {
			return err
		}
		p.x = ox + v[0]
		p.cmds = append(p.cmds, LineTo(p.x, p.y))
	case 'V', 'v':
		v, err := p.numbers(op, 1)
		if err != nil {
			return err
		}
		p.y = oy + v[0]
		p.cmds = append(p.cmds, LineTo(p.x, p.y))
	case 'Q', 'q':
		v, err := p.numbers(op, 4)
		if err != nil {
			return err
		}
		p.cmds = append(p.cmds, QuadTo(ox+v[0], oy+v[1], ox+v[2], oy+v[3]))
		p.x, p.y = ox+v[2], oy+v[3]
	case 'C', 'c':
		v, err := p.numbers(op, 6)
		if err != nil {
			return err
		}
		p.cmds = append(p.cmds, CubicTo(ox+v[0], oy+v[1], ox+v[2], oy+v[3], ox+v[4], oy+v[5]))
		p.x, p.y = ox+v[4], oy+v[5]
	case 'Z', 'z':
		p.cmds = append(p.cmds, ClosePath())
		p.x, p.y = p.startX, p.startY
	default:
		// Unsupported commands still consume their numbers so that parsing can
		// continue with the next letter.
		var args []float64
		for {
			p.skipSeparators()
			f, n := strconv.ParseFloat(p.data[p.pos:])
			if n == 0 {
				break
			}
			args = append(args, f)
			p.pos += n
		}
		p.cmds = append(p.cmds, Command{Op: OpUnknown, Args: args})
	}
	return nil
}

func (p *svgPathParser) numbers(op byte, count int) ([]float64, error) {
	res := make([]float64, count)
	for i := range res {
		p.skipSeparators()
		f, n := strconv.ParseFloat(p.data[p.pos:])
		if n == 0 {
			return nil, fmt.Errorf("svg path: command %c at offset %d: %w: need %d values, got %d",
				op, p.pos, ErrMalformedCommand, count, i)
		}
		res[i] = f
		p.pos += n
	}
	return res, nil
}

func (p *svgPathParser) skipSeparators() {
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case ' ', ',', '\t', '\n', '\r', '\f':
			p.pos++
		default:
			return
		}
	}
}

func isSupportedCommand(c byte) bool {
	switch c {
	case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v', 'Q', 'q', 'C', 'c', 'Z', 'z':
		return true
	}
	return false
}

func isCommandLetter(c byte) bool {
	return (c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') && c != 'e' && c != 'E'
}
