// Package display delivers next-frame callbacks once per refresh tick, the
// way a browser's animation-frame queue does.
package display

import (
	"sync"
	"time"

	"github.com/ivlev/rosebloom/internal/clock"
)

// DefaultRefresh is the refresh rate used when none is given.
const DefaultRefresh = 60

// ID identifies a requested frame callback. Zero is never issued.
type ID uint64

// Callback receives the timestamp of the refresh tick.
type Callback func(now time.Duration)

type request struct {
	id ID
	cb Callback
}

// Loop queues frame callbacks and fires all of them on the next tick.
// Callbacks requested while a tick is firing wait for the following tick.
type Loop struct {
	clk      clock.Clock
	interval time.Duration
	pumped   bool

	mu      sync.Mutex
	nextID  ID
	pending []request
	timer   clock.Timer
	closed  bool
}

// New returns a loop that ticks itself on clk at refresh Hz.
func New(clk clock.Clock, refresh int) *Loop {
	if refresh <= 0 {
		refresh = DefaultRefresh
	}
	return &Loop{clk: clk, interval: time.Second / time.Duration(refresh)}
}

// NewPumped returns a loop whose ticks come from the host calling Pump,
// for hosts that own the refresh such as a game window.
func NewPumped(clk clock.Clock) *Loop {
	return &Loop{clk: clk, pumped: true}
}

// Interval is the time between self-driven ticks.
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// RequestFrame queues cb for the next tick.
func (l *Loop) RequestFrame(cb Callback) ID {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0
	}
	l.nextID++
	l.pending = append(l.pending, request{id: l.nextID, cb: cb})
	l.armLocked()
	return l.nextID
}

// CancelFrame drops a queued callback. Unknown or fired ids are ignored.
func (l *Loop) CancelFrame(id ID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, r := range l.pending {
		if r.id == id {
			l.pending = append(l.pending[:i], l.pending[i+1:]...)
			break
		}
	}
	if len(l.pending) == 0 && l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

// Pending reports how many callbacks wait for the next tick.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Pump fires every queued callback with the current time.
func (l *Loop) Pump() {
	l.mu.Lock()
	batch := l.pending
	l.pending = nil
	l.mu.Unlock()

	now := l.clk.Now()
	for _, r := range batch {
		r.cb(now)
	}
}

// Close stops ticking and drops queued callbacks.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.pending = nil
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

func (l *Loop) armLocked() {
	if l.pumped || l.timer != nil {
		return
	}
	// ticks land on multiples of the interval, like vsync
	delay := l.interval - l.clk.Now()%l.interval
	l.timer = l.clk.AfterFunc(delay, l.tick)
}

func (l *Loop) tick() {
	l.mu.Lock()
	l.timer = nil
	l.mu.Unlock()
	l.Pump()
}
