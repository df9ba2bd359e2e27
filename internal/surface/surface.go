// Package surface holds the render target: its CSS size, device pixel ratio
// and backing raster, plus taps that observe every presented frame.
package surface

import (
	"image"
	"math"
	"sync"

	"github.com/ivlev/rosebloom/internal/system"
)

// Surface is a resizable raster. The zero value is detached: it has no
// canvas until Configure gives it a positive size.
type Surface struct {
	mu            sync.RWMutex
	width, height float64
	ratio         float64
	img           *image.RGBA

	tapMu  sync.Mutex
	nextID int
	taps   map[int]func(*image.RGBA)
}

// New returns a detached surface.
func New() *Surface {
	return &Surface{}
}

// Configure sets the CSS size and pixel ratio and reallocates the backing
// raster at round(size × ratio). Non-positive sizes detach the canvas.
func (s *Surface) Configure(width, height, ratio float64) {
	if ratio <= 0 || math.IsNaN(ratio) {
		ratio = 1
	}
	dw := int(math.Round(width * ratio))
	dh := int(math.Round(height * ratio))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height, s.ratio = width, height, ratio
	if s.img != nil && s.img.Rect.Dx() == dw && s.img.Rect.Dy() == dh {
		return
	}
	if s.img != nil {
		system.PutImage(s.img)
		s.img = nil
	}
	if dw > 0 && dh > 0 {
		s.img = system.GetImage(image.Rect(0, 0, dw, dh))
	}
}

// Canvas returns the backing raster, or nil while detached.
func (s *Surface) Canvas() *image.RGBA {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img
}

// Size returns the CSS size and pixel ratio.
func (s *Surface) Size() (width, height, ratio float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, s.ratio
}

// DeviceSize returns the raster size in device pixels.
func (s *Surface) DeviceSize() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.img == nil {
		return 0, 0
	}
	return s.img.Rect.Dx(), s.img.Rect.Dy()
}

// Paint runs fn on the canvas while holding off Configure and Release, so
// a resize never swaps the raster out from under a frame being drawn. It
// reports false when the surface is detached.
func (s *Surface) Paint(fn func(dst *image.RGBA, width, height, ratio float64)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.img == nil {
		return false
	}
	fn(s.img, s.width, s.height, s.ratio)
	return true
}

// Attached reports whether the surface has a canvas.
func (s *Surface) Attached() bool {
	return s.Canvas() != nil
}

// Present publishes the current canvas to every tap. Taps run on the
// caller's goroutine and must not keep the image.
func (s *Surface) Present() {
	img := s.Canvas()
	if img == nil {
		return
	}
	s.tapMu.Lock()
	taps := make([]func(*image.RGBA), 0, len(s.taps))
	for _, f := range s.taps {
		taps = append(taps, f)
	}
	s.tapMu.Unlock()

	for _, f := range taps {
		f(img)
	}
}

// Tap registers f for presented frames and returns a function removing it.
func (s *Surface) Tap(f func(*image.RGBA)) (remove func()) {
	s.tapMu.Lock()
	defer s.tapMu.Unlock()
	if s.taps == nil {
		s.taps = make(map[int]func(*image.RGBA))
	}
	s.nextID++
	id := s.nextID
	s.taps[id] = f
	return func() {
		s.tapMu.Lock()
		defer s.tapMu.Unlock()
		delete(s.taps, id)
	}
}

// Release returns the canvas to the image pool and detaches the surface.
func (s *Surface) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.img != nil {
		system.PutImage(s.img)
		s.img = nil
	}
}
