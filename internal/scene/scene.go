// Package scene describes the blooming rose as immutable layer descriptors
// and evaluates them for a given progress value.
//
// Nothing here draws; the renderer turns a State into pixels.
package scene

import (
	"math"

	"github.com/ivlev/rosebloom/internal/easing"
)

// Duration is the length of one playback in milliseconds.
const Duration = 14000

const (
	TwinkleCount = 40
	ShimmerCount = 120

	petalStagger = 0.012
	petalSpan    = 0.48
)

// Layer names, in drawing order.
const (
	LayerBackground = "background"
	LayerTwinkle    = "twinkle"
	LayerStem       = "stem"
	LayerLeaves     = "leaves"
	LayerPetals     = "petals"
	LayerCore       = "core"
	LayerShimmer    = "shimmer"
)

// Layers lists every layer name in drawing order.
var Layers = []string{
	LayerBackground, LayerTwinkle, LayerStem, LayerLeaves, LayerPetals, LayerCore, LayerShimmer,
}

// Descriptor is a layer's growth window and the curve applied inside it.
// Local progress is (progress - Start) / Span clamped to [0, 1].
type Descriptor struct {
	Name  string
	Start float64
	Span  float64
	Ease  easing.Func
}

// End is the exclusive end of the growth window.
func (d Descriptor) End() float64 {
	return d.Start + d.Span
}

// Local maps overall progress into the window.
func (d Descriptor) Local(progress float64) float64 {
	if d.Span <= 0 {
		return 0
	}
	return easing.Clamp01((progress - d.Start) / d.Span)
}

// Eval eases the local progress. The result may overshoot [0, 1].
func (d Descriptor) Eval(progress float64) float64 {
	return d.Ease(d.Local(progress))
}

// Ring is one concentric layer of petals.
type Ring struct {
	Count    int
	Radius   float64
	Width    float64 // width factor, not animated
	Offset   float64 // growth start of the ring's first petal
	Angle    float64 // angular offset in radians
	HueShift float64
}

// Scene holds every descriptor of the rose.
type Scene struct {
	Stem      Descriptor
	Leaves    Descriptor
	Core      Descriptor
	Rings     []Ring
	PetalEase easing.Func
	Palette   Palette
}

// Default returns the canonical rose.
func Default() *Scene {
	return &Scene{
		Stem:   Descriptor{Name: LayerStem, Start: 0, Span: 1 / 1.3, Ease: easing.OutCubic},
		Leaves: Descriptor{Name: LayerLeaves, Start: 0.12, Span: 1 / 1.5, Ease: easing.OutBack},
		Core:   Descriptor{Name: LayerCore, Start: 0.08, Span: 1 / 1.4, Ease: easing.InOutCubic},
		Rings: []Ring{
			{Count: 5, Radius: 140, Width: 1.06, Offset: 0.00, Angle: 0.0, HueShift: 0},
			{Count: 7, Radius: 112, Width: 0.94, Offset: 0.08, Angle: 0.4, HueShift: 2},
			{Count: 9, Radius: 88, Width: 0.78, Offset: 0.16, Angle: 0.8, HueShift: 4},
		},
		PetalEase: easing.OutBack,
		Palette:   DefaultPalette(),
	}
}

// PetalCount is the number of petals over all rings.
func (s *Scene) PetalCount() int {
	n := 0
	for _, r := range s.Rings {
		n += r.Count
	}
	return n
}

// Petal returns the descriptor of petal i of ring r.
func (s *Scene) Petal(r, i int) Descriptor {
	return Descriptor{
		Name:  LayerPetals,
		Start: s.Rings[r].Offset + float64(i)*petalStagger,
		Span:  petalSpan,
		Ease:  s.PetalEase,
	}
}

// PetalState is one evaluated petal.
type PetalState struct {
	Ring, Index int
	Angle       float64
	Local       float64
	Opened      float64 // eased, may overshoot
	Radius      float64
	Width       float64
	HueShift    float64
}

// State is the scene evaluated at one progress value, in CSS pixels.
type State struct {
	Progress      float64
	Width, Height float64
	CenterX       float64
	CenterY       float64

	StemGrowth float64
	StemTopY   float64
	LeafLocal  float64
	LeafOpen   float64
	CoreOpen   float64
	CoreRadius float64
	Petals     []PetalState
}

// Evaluate computes every layer's visual state. Progress is clamped to [0, 1]
// first, so out-of-range values behave like the nearest end.
func (s *Scene) Evaluate(progress, width, height float64) State {
	p := easing.Clamp01(progress)
	if math.IsNaN(progress) {
		p = 0
	}
	st := State{
		Progress: p,
		Width:    width,
		Height:   height,
		CenterX:  width / 2,
		CenterY:  height * 0.58,
	}

	st.StemGrowth = s.Stem.Eval(p)
	st.StemTopY = st.CenterY - st.StemGrowth*height*0.23
	st.LeafLocal = s.Leaves.Local(p)
	st.LeafOpen = s.Leaves.Ease(st.LeafLocal)
	st.CoreOpen = s.Core.Eval(p)
	st.CoreRadius = 32 * st.CoreOpen

	st.Petals = make([]PetalState, 0, s.PetalCount())
	for ri, ring := range s.Rings {
		for i := 0; i < ring.Count; i++ {
			d := s.Petal(ri, i)
			local := d.Local(p)
			st.Petals = append(st.Petals, PetalState{
				Ring:     ri,
				Index:    i,
				Angle:    float64(i)/float64(ring.Count)*2*math.Pi + ring.Angle,
				Local:    local,
				Opened:   d.Ease(local),
				Radius:   ring.Radius,
				Width:    ring.Width,
				HueShift: ring.HueShift,
			})
		}
	}
	return st
}

// Visible reports whether a layer contributes pixels in this state. Layers
// whose progress is not positive are skipped entirely.
func (st State) Visible(layer string) bool {
	switch layer {
	case LayerStem:
		return st.StemGrowth > 0
	case LayerLeaves:
		return st.LeafLocal > 0 && st.LeafOpen > 0
	case LayerPetals:
		for _, pt := range st.Petals {
			if pt.Local > 0 {
				return true
			}
		}
		return false
	case LayerCore, LayerShimmer:
		// the shimmer field rides on the core's growth window
		return st.CoreOpen > 0
	}
	return true
}
