// Package easing maps normalized time onto progress curves.
//
// All functions are pure and accept any input. Back easing overshoots
// [0, 1] on purpose; callers clamp the timing fraction, never the result.
package easing

import "math"

// Func reparameterizes a timing fraction.
type Func func(t float64) float64

// backOvershoot is the c1 constant of the classic back curve.
const backOvershoot = 1.70158

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Linear returns t unchanged.
func Linear(t float64) float64 {
	return t
}

// InOutCubic accelerates through the first half and decelerates through the second.
func InOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// OutCubic decelerates towards 1.
func OutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// OutBack overshoots past 1 before settling, giving the opening bounce.
func OutBack(t float64) float64 {
	c3 := backOvershoot + 1
	return 1 + c3*math.Pow(t-1, 3) + backOvershoot*math.Pow(t-1, 2)
}

// Window maps overall progress onto a layer's local progress:
// (progress - start) * scale, clamped to [0, 1].
func Window(progress, start, scale float64) float64 {
	return Clamp01((progress - start) * scale)
}
