package surface

import (
	"image"
	"sync"
	"time"

	"github.com/ivlev/rosebloom/internal/clock"
)

// Stream samples a surface at a fixed frame rate. Sampling starts with the
// first frame presented after the stream opened; from then on every tick
// emits the most recently presented frame, repeated if nothing new was
// drawn, until Stop.
type Stream struct {
	clk      clock.Clock
	interval time.Duration
	sink     func(*image.RGBA)
	untap    func()

	mu      sync.Mutex
	latest  *image.RGBA
	timer   clock.Timer
	frames  int
	stopped bool
}

// CaptureStream opens a stream at fps frames per second. sink receives a
// private copy that is only valid until sink returns.
func (s *Surface) CaptureStream(clk clock.Clock, fps int, sink func(*image.RGBA)) *Stream {
	if fps <= 0 {
		fps = 60
	}
	st := &Stream{
		clk:      clk,
		interval: time.Second / time.Duration(fps),
		sink:     sink,
	}
	st.untap = s.Tap(st.presented)
	return st
}

func (st *Stream) presented(img *image.RGBA) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.stopped {
		return
	}
	if st.latest == nil || st.latest.Rect != img.Rect {
		st.latest = image.NewRGBA(img.Rect)
	}
	copy(st.latest.Pix, img.Pix)
	if st.timer == nil {
		st.emitLocked()
	}
}

func (st *Stream) tick() {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.stopped {
		return
	}
	st.emitLocked()
}

func (st *Stream) emitLocked() {
	st.frames++
	st.sink(st.latest)
	st.timer = st.clk.AfterFunc(st.interval, st.tick)
}

// Frames returns the number of frames emitted so far.
func (st *Stream) Frames() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.frames
}

// Stop ends sampling. After Stop returns the sink is not called again.
func (st *Stream) Stop() {
	st.untap()
	st.mu.Lock()
	defer st.mu.Unlock()
	st.stopped = true
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
}
