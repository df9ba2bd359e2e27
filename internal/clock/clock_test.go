package clock

import (
	"testing"
	"time"
)

func TestManualFiresInDeadlineOrder(t *testing.T) {
	m := NewManual()
	var got []string
	m.AfterFunc(30*time.Millisecond, func() { got = append(got, "c") })
	m.AfterFunc(10*time.Millisecond, func() { got = append(got, "a") })
	m.AfterFunc(10*time.Millisecond, func() { got = append(got, "b") })

	m.Advance(20 * time.Millisecond)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected [a b] after 20ms, got %v", got)
	}
	if m.Now() != 20*time.Millisecond {
		t.Errorf("expected now 20ms, got %v", m.Now())
	}
	m.Advance(time.Second)
	if len(got) != 3 {
		t.Errorf("expected 3 calls, got %v", got)
	}
}

func TestManualChainedTimers(t *testing.T) {
	m := NewManual()
	var ticks []time.Duration
	var tick func()
	tick = func() {
		ticks = append(ticks, m.Now())
		if len(ticks) < 5 {
			m.AfterFunc(10*time.Millisecond, tick)
		}
	}
	m.AfterFunc(10*time.Millisecond, tick)
	m.Advance(100 * time.Millisecond)

	if len(ticks) != 5 {
		t.Fatalf("expected 5 ticks, got %d", len(ticks))
	}
	for i, at := range ticks {
		if want := time.Duration(i+1) * 10 * time.Millisecond; at != want {
			t.Errorf("tick %d at %v, want %v", i, at, want)
		}
	}
}

func TestManualStop(t *testing.T) {
	m := NewManual()
	fired := false
	tm := m.AfterFunc(time.Millisecond, func() { fired = true })
	if !tm.Stop() {
		t.Error("Stop on pending timer returned false")
	}
	if tm.Stop() {
		t.Error("second Stop returned true")
	}
	m.Advance(time.Second)
	if fired {
		t.Error("stopped timer fired")
	}
	if m.Pending() != 0 {
		t.Errorf("expected no pending timers, got %d", m.Pending())
	}
}

func TestRealAdvances(t *testing.T) {
	r := NewReal()
	done := make(chan time.Duration, 1)
	r.AfterFunc(5*time.Millisecond, func() { done <- r.Now() })
	select {
	case at := <-done:
		if at < 5*time.Millisecond {
			t.Errorf("timer fired early at %v", at)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("real timer never fired")
	}
}
