// Package scheduler plays the animation timeline: once per display frame it
// turns elapsed time into progress and renders, until progress reaches 1.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/ivlev/rosebloom/internal/clock"
	"github.com/ivlev/rosebloom/internal/display"
)

// State of the current run.
type State int

const (
	Idle State = iota
	Running
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Frames is the next-frame queue the scheduler runs on.
type Frames interface {
	RequestFrame(cb display.Callback) display.ID
	CancelFrame(id display.ID)
}

// RenderFunc draws one frame.
type RenderFunc func(progress float64)

// Scheduler owns the single active timeline. Each Play starts a new run and
// invalidates the previous one, so a stale frame callback is a no-op even
// if it could not be unscheduled.
type Scheduler struct {
	clk      clock.Clock
	frames   Frames
	render   RenderFunc
	duration time.Duration

	mu       sync.Mutex
	run      uint64
	pending  display.ID
	state    State
	progress float64
}

// New creates an idle scheduler. A non-positive duration falls back to
// 14 seconds.
func New(clk clock.Clock, frames Frames, render RenderFunc, duration time.Duration) *Scheduler {
	if duration <= 0 {
		duration = 14 * time.Second
	}
	return &Scheduler{clk: clk, frames: frames, render: render, duration: duration}
}

// Duration is the length of one run.
func (s *Scheduler) Duration() time.Duration {
	return s.duration
}

// Play restarts the timeline from progress 0. onComplete, if not nil, is
// called once after the frame at progress 1 has been rendered, unless the
// run is cancelled or replaced first.
func (s *Scheduler) Play(onComplete func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(Idle)
	s.run++
	run := s.run
	start := s.clk.Now()
	s.state = Running
	s.progress = 0

	var frame display.Callback
	frame = func(now time.Duration) {
		if !s.step(run, start, now, frame) {
			return
		}
		if onComplete != nil {
			onComplete()
		}
	}
	s.pending = s.frames.RequestFrame(frame)
}

// Cancel stops the current run. It is safe to call in any state.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(Cancelled)
}

// State returns the state of the latest run.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Progress returns the progress of the last rendered frame.
func (s *Scheduler) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// step renders one frame of run and reports whether the run just completed.
func (s *Scheduler) step(run uint64, start, now time.Duration, next display.Callback) bool {
	s.mu.Lock()
	if run != s.run || s.state != Running {
		s.mu.Unlock()
		return false
	}
	p := float64(now-start) / float64(s.duration)
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	s.progress = p
	s.pending = 0
	s.mu.Unlock()

	s.render(p)

	s.mu.Lock()
	defer s.mu.Unlock()
	if run != s.run {
		// replaced from inside render
		return false
	}
	if p < 1 {
		s.pending = s.frames.RequestFrame(next)
		return false
	}
	s.state = Completed
	return true
}

func (s *Scheduler) cancelLocked(to State) {
	if s.state != Running {
		return
	}
	if s.pending != 0 {
		s.frames.CancelFrame(s.pending)
		s.pending = 0
	}
	s.run++
	s.state = to
}
