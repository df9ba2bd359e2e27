package canvas

import (
	"fmt"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a straight-alpha colour.
type Color struct {
	colorful.Color
	A float64
}

// Transparent is the zero colour.
var Transparent = Color{}

// Hex parses "#rrggbb" into an opaque colour.
func Hex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse colour %q: %w", s, err)
	}
	return Color{Color: c, A: 1}, nil
}

// MustHex is Hex for compile-time palettes.
func MustHex(s string) Color {
	c, err := Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// HSL builds a colour from hue in degrees and saturation/lightness in [0, 1].
func HSL(h, s, l float64) Color {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return Color{Color: colorful.Hsl(h, s, l), A: 1}
}

// RGBA builds a colour from 0-255 channels and a [0, 1] alpha.
func RGBA(r, g, b uint8, a float64) Color {
	return Color{Color: colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}, A: a}
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

func (c Color) blend(o Color, t float64) Color {
	return Color{Color: c.BlendRgb(o.Color, t), A: c.A + (o.A-c.A)*t}
}

// Paint yields a colour for a point in the user space of the fill.
type Paint interface {
	ColorAt(x, y float64) Color
}

// Solid paints a single colour.
type Solid Color

func (s Solid) ColorAt(_, _ float64) Color {
	return Color(s)
}

// Stop is one colour stop of a gradient.
type Stop struct {
	Offset float64
	Color  Color
}

type stops []Stop

func (s stops) at(t float64) Color {
	switch {
	case len(s) == 0:
		return Transparent
	case t <= s[0].Offset:
		return s[0].Color
	case t >= s[len(s)-1].Offset:
		return s[len(s)-1].Color
	}
	i := sort.Search(len(s), func(i int) bool { return s[i].Offset > t })
	a, b := s[i-1], s[i]
	span := b.Offset - a.Offset
	if span <= 0 {
		return b.Color
	}
	return a.Color.blend(b.Color, (t-a.Offset)/span)
}

func sortStops(in []Stop) stops {
	out := make(stops, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

// LinearGradient interpolates stops along the segment (X0,Y0)-(X1,Y1), padding
// beyond both ends.
type LinearGradient struct {
	X0, Y0, X1, Y1 float64
	stops          stops
}

// NewLinearGradient builds a linear gradient in user space.
func NewLinearGradient(x0, y0, x1, y1 float64, s ...Stop) *LinearGradient {
	return &LinearGradient{X0: x0, Y0: y0, X1: x1, Y1: y1, stops: sortStops(s)}
}

func (g *LinearGradient) ColorAt(x, y float64) Color {
	dx, dy := g.X1-g.X0, g.Y1-g.Y0
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return Transparent
	}
	return g.stops.at(((x-g.X0)*dx + (y-g.Y0)*dy) / l2)
}

// RadialGradient is the two-circle gradient of the HTML canvas: colour at t
// belongs to the largest circle interpolated between (X0,Y0,R0) and
// (X1,Y1,R1) that passes through the point.
type RadialGradient struct {
	X0, Y0, R0 float64
	X1, Y1, R1 float64
	stops      stops
}

// NewRadialGradient builds a radial gradient in user space.
func NewRadialGradient(x0, y0, r0, x1, y1, r1 float64, s ...Stop) *RadialGradient {
	return &RadialGradient{X0: x0, Y0: y0, R0: r0, X1: x1, Y1: y1, R1: r1, stops: sortStops(s)}
}

func (g *RadialGradient) ColorAt(x, y float64) Color {
	cdx, cdy, dr := g.X1-g.X0, g.Y1-g.Y0, g.R1-g.R0
	pdx, pdy := x-g.X0, y-g.Y0

	a := cdx*cdx + cdy*cdy - dr*dr
	b := pdx*cdx + pdy*cdy + g.R0*dr
	c := pdx*pdx + pdy*pdy - g.R0*g.R0

	if math.Abs(a) < 1e-12 {
		if b == 0 {
			return Transparent
		}
		t := c / (2 * b)
		if g.R0+t*dr < 0 {
			return Transparent
		}
		return g.stops.at(t)
	}

	disc := b*b - a*c
	if disc < 0 {
		return Transparent
	}
	sq := math.Sqrt(disc)
	hi, lo := (b+sq)/a, (b-sq)/a
	if lo > hi {
		hi, lo = lo, hi
	}
	for _, t := range [2]float64{hi, lo} {
		if g.R0+t*dr >= 0 {
			return g.stops.at(t)
		}
	}
	return Transparent
}
