package renderer

import (
	"math"

	"github.com/ivlev/rosebloom/internal/canvas"
	"github.com/ivlev/rosebloom/internal/scene"
)

const (
	stemWidth      = 8
	highlightWidth = 4
	outlineWidth   = 1.2
	petalStretch   = 1.1
)

func (r *Renderer) drawBackground(c *canvas.Context, st *scene.State) {
	g := canvas.NewLinearGradient(0, 0, 0, st.Height, r.pal.background...)
	c.FillRect(0, 0, st.Width, st.Height, g)
}

func (r *Renderer) drawTwinkle(c *canvas.Context, st *scene.State) {
	paint := canvas.Solid(r.pal.twinkle)
	for i := 0; i < scene.TwinkleCount; i++ {
		p := scene.Twinkle(i, st.Progress, st.Width, st.Height)
		if p.Alpha <= 0 {
			continue
		}
		c.SetGlobalAlpha(p.Alpha)
		c.BeginPath()
		c.Arc(p.X, p.Y, p.Radius, 0, 2*math.Pi)
		c.Fill(paint)
	}
}

func (r *Renderer) drawStem(c *canvas.Context, st *scene.State) {
	cx, h, top := st.CenterX, st.Height, st.StemTopY

	c.MoveTo(cx, h)
	c.BezierCurveTo(cx-30, h-h*0.25, cx+12, h-h*0.38, cx, top)
	c.Stroke(canvas.Solid(r.pal.stemBase), stemWidth)

	c.BeginPath()
	c.MoveTo(cx+5, h)
	c.BezierCurveTo(cx-10, h-h*0.24, cx+24, h-h*0.37, cx+3, top-6)
	c.Stroke(canvas.Solid(r.pal.stemHighlight), highlightWidth)
}

func (r *Renderer) drawLeaves(c *canvas.Context, st *scene.State) {
	r.drawLeaf(c, st, -28, 1)
	r.drawLeaf(c, st, 34, -1)
}

func (r *Renderer) drawLeaf(c *canvas.Context, st *scene.State, degrees, flip float64) {
	open := st.LeafOpen

	c.Save()
	defer c.Restore()
	c.Translate(st.CenterX, st.Height-st.Height*0.28)
	c.Rotate(degrees * math.Pi / 180)
	c.Scale(flip, 1)

	c.BeginPath()
	c.MoveTo(0, 0)
	c.QuadraticCurveTo(65, -24*open, 90, -2)
	c.QuadraticCurveTo(65, 22*open, 0, 0)
	c.Fill(canvas.Solid(r.pal.leaf))

	c.BeginPath()
	c.MoveTo(0, 0)
	c.QuadraticCurveTo(55, -18*open, 85, -2)
	c.QuadraticCurveTo(55, 18*open, 0, 0)
	c.Fill(canvas.Solid(r.pal.leafVein))
}

func (r *Renderer) drawPetals(c *canvas.Context, st *scene.State) {
	outline := canvas.Solid(r.pal.outline)
	for _, p := range st.Petals {
		if p.Local <= 0 {
			continue
		}
		rad, wf, open := p.Radius, p.Width, p.Opened

		c.Save()
		c.Translate(st.CenterX, st.StemTopY)
		c.Rotate(p.Angle)
		c.Scale(1, petalStretch)

		g := canvas.NewLinearGradient(0, 0, 0, -rad, r.pal.petalStops(p.HueShift)...)
		c.BeginPath()
		c.MoveTo(0, 0)
		c.BezierCurveTo(rad*0.18*wf, -rad*0.12, rad*0.45*wf, -rad*0.55*open, 0, -rad*open)
		c.BezierCurveTo(-rad*0.45*wf, -rad*0.55*open, -rad*0.18*wf, -rad*0.12, 0, 0)
		c.ClosePath()
		c.Fill(g)
		c.Stroke(outline, outlineWidth)
		c.Restore()
	}
}

func (r *Renderer) drawCore(c *canvas.Context, st *scene.State) {
	c.Translate(st.CenterX, st.StemTopY)
	g := canvas.NewRadialGradient(0, -8, 6, 0, 0, st.CoreRadius, r.pal.core...)
	c.Arc(0, 0, st.CoreRadius, 0, 2*math.Pi)
	c.Fill(g)
}

func (r *Renderer) drawShimmer(c *canvas.Context, st *scene.State) {
	c.SetComposite(canvas.Lighter)
	paint := canvas.Solid(r.pal.shimmer)
	for i := 0; i < scene.ShimmerCount; i++ {
		p := scene.Shimmer(i, st.Progress, st.CenterX, st.StemTopY)
		if p.Alpha <= 0 {
			continue
		}
		c.SetGlobalAlpha(p.Alpha)
		c.BeginPath()
		c.Arc(p.X, p.Y, p.Radius, 0, 2*math.Pi)
		c.Fill(paint)
	}
}
