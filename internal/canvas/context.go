// Package canvas is a small immediate-mode 2D drawing context over an
// *image.RGBA, modelled on the HTML canvas: a current path in device space,
// an affine transform stack, global alpha and two composite operations.
//
// Coverage comes from golang.org/x/image/vector; strokes are expanded into
// filled polygons with round caps and joins.
package canvas

import (
	"image"
	"image/draw"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/vector"
)

// CompositeOp selects how source pixels combine with the destination.
type CompositeOp int

const (
	// SourceOver is normal alpha blending.
	SourceOver CompositeOp = iota
	// Lighter adds source to destination, saturating at white.
	Lighter
)

type state struct {
	ctm   Matrix
	alpha float64
	op    CompositeOp
}

// Context draws into a single RGBA image. It is not safe for concurrent use.
type Context struct {
	dst   *image.RGBA
	st    state
	stack []state
	path  path

	rast *vector.Rasterizer
	mask *image.Alpha
}

// New returns a context drawing into dst with an identity transform.
func New(dst *image.RGBA) *Context {
	return &Context{
		dst:  dst,
		st:   state{ctm: Identity, alpha: 1},
		rast: vector.NewRasterizer(0, 0),
	}
}

// Image returns the destination image.
func (c *Context) Image() *image.RGBA {
	return c.dst
}

// Width and Height are the device pixel dimensions of the destination.
func (c *Context) Width() int { return c.dst.Rect.Dx() }
func (c *Context) Height() int { return c.dst.Rect.Dy() }

// Save pushes the transform, alpha and composite op.
func (c *Context) Save() {
	c.stack = append(c.stack, c.st)
}

// Restore pops the state saved by the matching Save. Unbalanced calls are ignored.
func (c *Context) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.st = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

// Transform returns the current transform.
func (c *Context) Transform() Matrix {
	return c.st.ctm
}

// SetTransform replaces the current transform.
func (c *Context) SetTransform(m Matrix) {
	c.st.ctm = m
}

func (c *Context) Translate(x, y float64) {
	c.st.ctm = c.st.ctm.Mul(Translation(x, y))
}

func (c *Context) Scale(sx, sy float64) {
	c.st.ctm = c.st.ctm.Mul(Scaling(sx, sy))
}

func (c *Context) Rotate(angle float64) {
	c.st.ctm = c.st.ctm.Mul(Rotation(angle))
}

// SetGlobalAlpha sets the alpha multiplied into every subsequent draw.
func (c *Context) SetGlobalAlpha(a float64) {
	c.st.alpha = math.Min(math.Max(a, 0), 1)
}

// SetComposite sets the composite operation.
func (c *Context) SetComposite(op CompositeOp) {
	c.st.op = op
}

// Clear makes every pixel transparent, ignoring transform and clip.
func (c *Context) Clear() {
	clear(c.dst.Pix)
}

// BeginPath discards the current path.
func (c *Context) BeginPath() {
	c.path.reset()
}

func (c *Context) device(x, y float64) point {
	dx, dy := c.st.ctm.Apply(x, y)
	return point{dx, dy}
}

func (c *Context) MoveTo(x, y float64) {
	c.path.moveTo(c.device(x, y))
}

func (c *Context) LineTo(x, y float64) {
	q := c.device(x, y)
	if !c.path.open {
		c.path.moveTo(q)
		return
	}
	c.path.lineTo(q)
}

func (c *Context) QuadraticCurveTo(cx, cy, x, y float64) {
	cp := c.device(cx, cy)
	c.path.ensureStart(cp)
	c.path.quadTo(cp, c.device(x, y))
}

func (c *Context) BezierCurveTo(c1x, c1y, c2x, c2y, x, y float64) {
	cp := c.device(c1x, c1y)
	c.path.ensureStart(cp)
	c.path.cubicTo(cp, c.device(c2x, c2y), c.device(x, y))
}

func (c *Context) ClosePath() {
	c.path.close()
}

// Arc adds a clockwise circular arc from angle a0 to a1 (radians) around
// (cx, cy), connected to the current point by a straight line.
func (c *Context) Arc(cx, cy, r, a0, a1 float64) {
	if r <= 0 {
		return
	}
	sweep := a1 - a0
	if sweep > 2*math.Pi {
		sweep = 2 * math.Pi
	}
	n := int(math.Ceil(math.Abs(sweep) / (math.Pi / 2)))
	if n == 0 {
		return
	}
	step := sweep / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4)

	sin0, cos0 := math.Sincos(a0)
	c.LineTo(cx+r*cos0, cy+r*sin0)
	for i := 0; i < n; i++ {
		t0 := a0 + float64(i)*step
		t1 := t0 + step
		s0, co0 := math.Sincos(t0)
		s1, co1 := math.Sincos(t1)
		c.BezierCurveTo(
			cx+r*(co0-k*s0), cy+r*(s0+k*co0),
			cx+r*(co1+k*s1), cy+r*(s1-k*co1),
			cx+r*co1, cy+r*s1,
		)
	}
}

// FillRect fills an axis-aligned rectangle in user space without touching
// the current path.
func (c *Context) FillRect(x, y, w, h float64, p Paint) {
	saved := c.path
	c.path = path{}
	c.MoveTo(x, y)
	c.LineTo(x+w, y)
	c.LineTo(x+w, y+h)
	c.LineTo(x, y+h)
	c.ClosePath()
	c.Fill(p)
	c.path = saved
}

// Fill paints the interior of the current path (non-zero coverage).
func (c *Context) Fill(p Paint) {
	if c.path.empty() {
		return
	}
	r, ok := c.clipBounds(c.path.bounds())
	if !ok {
		return
	}
	c.rasterStart(r)
	ox, oy := float32(r.Min.X), float32(r.Min.Y)
	for _, s := range c.path.segs {
		switch s.op {
		case opMove:
			c.rast.MoveTo(float32(s.pts[0].X)-ox, float32(s.pts[0].Y)-oy)
		case opLine:
			c.rast.LineTo(float32(s.pts[0].X)-ox, float32(s.pts[0].Y)-oy)
		case opQuad:
			c.rast.QuadTo(
				float32(s.pts[0].X)-ox, float32(s.pts[0].Y)-oy,
				float32(s.pts[1].X)-ox, float32(s.pts[1].Y)-oy,
			)
		case opCubic:
			c.rast.CubeTo(
				float32(s.pts[0].X)-ox, float32(s.pts[0].Y)-oy,
				float32(s.pts[1].X)-ox, float32(s.pts[1].Y)-oy,
				float32(s.pts[2].X)-ox, float32(s.pts[2].Y)-oy,
			)
		case opClose:
			c.rast.ClosePath()
		}
	}
	c.composite(r, p)
}

// Stroke outlines the current path with the given user-space line width.
func (c *Context) Stroke(p Paint, width float64) {
	if c.path.empty() || width <= 0 {
		return
	}
	half := width * math.Sqrt(math.Abs(c.st.ctm.Det())) / 2
	lines, _ := c.path.flatten()
	if len(lines) == 0 {
		return
	}
	minX, minY, maxX, maxY := c.path.bounds()
	r, ok := c.clipBounds(minX-half, minY-half, maxX+half, maxY+half)
	if !ok {
		return
	}
	c.rasterStart(r)
	origin := point{float64(r.Min.X), float64(r.Min.Y)}
	for _, line := range lines {
		strokePolyline(c.rast, line, half, origin)
	}
	c.composite(r, p)
}

func (c *Context) clipBounds(minX, minY, maxX, maxY float64) (image.Rectangle, bool) {
	if math.IsInf(minX, 0) || math.IsNaN(minX) || math.IsNaN(maxX) {
		return image.Rectangle{}, false
	}
	r := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1,
	).Intersect(c.dst.Rect)
	return r, !r.Empty()
}

func (c *Context) rasterStart(r image.Rectangle) {
	w, h := r.Dx(), r.Dy()
	c.rast.Reset(w, h)
	c.rast.DrawOp = draw.Src
	if c.mask == nil || cap(c.mask.Pix) < w*h {
		c.mask = image.NewAlpha(image.Rect(0, 0, w, h))
		return
	}
	c.mask.Pix = c.mask.Pix[:w*h]
	c.mask.Stride = w
	c.mask.Rect = image.Rect(0, 0, w, h)
}

// composite rasterizes the accumulated coverage into the mask and blends the
// paint through it into r.
func (c *Context) composite(r image.Rectangle, p Paint) {
	c.rast.Draw(c.mask, c.mask.Rect, image.Opaque, image.Point{})

	inv, ok := c.st.ctm.Invert()
	if !ok {
		return
	}
	_, uniform := p.(Solid)
	var col Color
	if uniform {
		col = p.ColorAt(0, 0)
	}

	w := r.Dx()
	for y := 0; y < r.Dy(); y++ {
		row := c.mask.Pix[y*c.mask.Stride : y*c.mask.Stride+w]
		py := r.Min.Y + y
		for x, cov := range row {
			if cov == 0 {
				continue
			}
			px := r.Min.X + x
			if !uniform {
				ux, uy := inv.Apply(float64(px)+0.5, float64(py)+0.5)
				col = p.ColorAt(ux, uy)
			}
			a := col.A * c.st.alpha * float64(cov) / 255
			if a <= 0 {
				continue
			}
			c.blend(c.dst.PixOffset(px, py), col.Clamped(), a)
		}
	}
}

func (c *Context) blend(i int, col colorful.Color, a float64) {
	r8, g8, b8 := col.RGB255()
	src := [3]float64{float64(r8) * a, float64(g8) * a, float64(b8) * a}
	pix := c.dst.Pix[i : i+4 : i+4]
	switch c.st.op {
	case Lighter:
		for k := 0; k < 3; k++ {
			pix[k] = sat8(float64(pix[k]) + src[k])
		}
		pix[3] = sat8(float64(pix[3]) + 255*a)
	default:
		inv := 1 - a
		for k := 0; k < 3; k++ {
			pix[k] = sat8(src[k] + float64(pix[k])*inv)
		}
		pix[3] = sat8(255*a + float64(pix[3])*inv)
	}
}

func sat8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
