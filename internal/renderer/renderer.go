// Package renderer composes one frame of the rose from an evaluated scene.
//
// A frame is a fixed, ordered list of layers drawn over a cleared target.
// Rendering is a pure function of progress and target size, so a Renderer
// is safe for concurrent use as long as each call has its own target.
package renderer

import (
	"fmt"
	"image"

	"github.com/ivlev/rosebloom/internal/canvas"
	"github.com/ivlev/rosebloom/internal/scene"
)

// Target is anything the renderer can draw into.
type Target interface {
	// Canvas returns the backing raster, or nil when nothing is attached.
	Canvas() *image.RGBA
	// Size returns the CSS size and the device pixel ratio.
	Size() (width, height, pixelRatio float64)
}

type layer struct {
	name string
	draw func(c *canvas.Context, st *scene.State)
}

// Renderer draws frames of a single scene.
type Renderer struct {
	scene  *scene.Scene
	pal    colors
	layers []layer
}

// New prepares a renderer for sc, parsing its palette up front.
func New(sc *scene.Scene) (*Renderer, error) {
	pal, err := parsePalette(sc.Palette)
	if err != nil {
		return nil, err
	}
	r := &Renderer{scene: sc, pal: pal}
	r.layers = []layer{
		{scene.LayerBackground, r.drawBackground},
		{scene.LayerTwinkle, r.drawTwinkle},
		{scene.LayerStem, r.drawStem},
		{scene.LayerLeaves, r.drawLeaves},
		{scene.LayerPetals, r.drawPetals},
		{scene.LayerCore, r.drawCore},
		{scene.LayerShimmer, r.drawShimmer},
	}
	return r, nil
}

// Scene returns the scene being drawn.
func (r *Renderer) Scene() *scene.Scene {
	return r.scene
}

// Only returns a renderer restricted to the named layers, keeping the
// canonical drawing order.
func (r *Renderer) Only(names ...string) (*Renderer, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	sub := &Renderer{scene: r.scene, pal: r.pal}
	for _, l := range r.layers {
		if want[l.name] {
			sub.layers = append(sub.layers, l)
			delete(want, l.name)
		}
	}
	for n := range want {
		return nil, fmt.Errorf("unknown layer %q", n)
	}
	return sub, nil
}

// Layers returns the names of the layers this renderer draws, in order.
func (r *Renderer) Layers() []string {
	names := make([]string, len(r.layers))
	for i, l := range r.layers {
		names[i] = l.name
	}
	return names
}

// Render draws the frame for progress into t, replacing its contents.
// A nil target or a detached canvas is silently skipped.
func (r *Renderer) Render(progress float64, t Target) {
	if t == nil {
		return
	}
	dst := t.Canvas()
	if dst == nil {
		return
	}
	w, h, pr := t.Size()
	r.Draw(progress, dst, w, h, pr)
}

// Draw renders into dst, where (w, h) is the CSS size and pr the number of
// device pixels per CSS pixel.
func (r *Renderer) Draw(progress float64, dst *image.RGBA, w, h, pr float64) {
	c := canvas.New(dst)
	c.Clear()
	if pr <= 0 {
		pr = 1
	}
	c.Scale(pr, pr)

	st := r.scene.Evaluate(progress, w, h)
	for _, l := range r.layers {
		if !st.Visible(l.name) {
			continue
		}
		c.Save()
		c.BeginPath()
		l.draw(c, &st)
		c.Restore()
	}
}
