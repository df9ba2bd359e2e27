package display

import (
	"testing"
	"time"

	"github.com/ivlev/rosebloom/internal/clock"
)

func TestTicksAtRefreshRate(t *testing.T) {
	clk := clock.NewManual()
	l := New(clk, 50)

	var stamps []time.Duration
	var frame Callback
	frame = func(now time.Duration) {
		stamps = append(stamps, now)
		l.RequestFrame(frame)
	}
	l.RequestFrame(frame)
	clk.Advance(100 * time.Millisecond)

	if len(stamps) != 5 {
		t.Fatalf("expected 5 frames in 100ms at 50Hz, got %d", len(stamps))
	}
	for i, s := range stamps {
		if want := time.Duration(i+1) * 20 * time.Millisecond; s != want {
			t.Errorf("frame %d at %v, want %v", i, s, want)
		}
	}
}

func TestCancelFrame(t *testing.T) {
	clk := clock.NewManual()
	l := New(clk, 60)

	fired := 0
	id := l.RequestFrame(func(time.Duration) { fired++ })
	l.RequestFrame(func(time.Duration) { fired += 10 })
	l.CancelFrame(id)
	l.CancelFrame(id)
	l.CancelFrame(999)
	clk.Advance(time.Second)

	if fired != 10 {
		t.Errorf("expected only the second callback to fire, got %d", fired)
	}
	if clk.Pending() != 0 {
		t.Errorf("expected idle loop to hold no timers, got %d", clk.Pending())
	}
}

func TestCancelLastFrameStopsTimer(t *testing.T) {
	clk := clock.NewManual()
	l := New(clk, 60)
	id := l.RequestFrame(func(time.Duration) {})
	l.CancelFrame(id)
	if clk.Pending() != 0 {
		t.Errorf("expected timer to be stopped, got %d pending", clk.Pending())
	}
}

func TestPumped(t *testing.T) {
	clk := clock.NewManual()
	l := NewPumped(clk)

	var got time.Duration
	l.RequestFrame(func(now time.Duration) { got = now })
	clk.Advance(time.Second)
	if got != 0 {
		t.Fatal("pumped loop ticked by itself")
	}
	l.Pump()
	if got != time.Second {
		t.Errorf("expected timestamp 1s, got %v", got)
	}
}

func TestClose(t *testing.T) {
	clk := clock.NewManual()
	l := New(clk, 60)
	fired := false
	l.RequestFrame(func(time.Duration) { fired = true })
	l.Close()
	if id := l.RequestFrame(func(time.Duration) { fired = true }); id != 0 {
		t.Errorf("expected zero id after Close, got %d", id)
	}
	clk.Advance(time.Second)
	if fired {
		t.Error("callback fired after Close")
	}
}
