// Package clock abstracts wall time so the frame loop, scheduler and capture
// grace period can run against either the monotonic clock or a simulated one.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending AfterFunc call.
type Timer interface {
	// Stop prevents the call from firing. It reports whether the call was
	// still pending.
	Stop() bool
}

// Clock is a monotonic time source with one-shot timers.
type Clock interface {
	// Now is the time elapsed since the clock's epoch.
	Now() time.Duration
	AfterFunc(d time.Duration, f func()) Timer
}

// Real is the process's monotonic clock.
type Real struct {
	epoch time.Time
}

// NewReal starts a real clock at zero.
func NewReal() *Real {
	return &Real{epoch: time.Now()}
}

func (r *Real) Now() time.Duration {
	return time.Since(r.epoch)
}

func (r *Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Manual is a simulated clock. Time only moves in Advance, which runs due
// timers on the calling goroutine in deadline order.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	m   *Manual
	at  time.Duration
	seq uint64
	f   func()
}

// NewManual returns a simulated clock at zero.
func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{m: m, at: m.now + d, seq: m.seq, f: f}
	m.timers = append(m.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	m := t.m
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, o := range m.timers {
		if o == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return true
		}
	}
	return false
}

// Advance moves time forward by d. Timers that come due, including ones
// scheduled by other timers during the advance, fire in deadline order with
// ties broken by scheduling order.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		t := m.popDue(target)
		if t == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = t.at
		m.mu.Unlock()
		t.f()
	}
}

// Pending returns the number of timers that have not fired or been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *Manual) popDue(target time.Duration) *manualTimer {
	if len(m.timers) == 0 {
		return nil
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		a, b := m.timers[i], m.timers[j]
		if a.at != b.at {
			return a.at < b.at
		}
		return a.seq < b.seq
	})
	t := m.timers[0]
	if t.at > target {
		return nil
	}
	m.timers = m.timers[1:]
	return t
}
