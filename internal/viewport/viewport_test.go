package viewport

import (
	"testing"

	"github.com/ivlev/rosebloom/internal/surface"
)

type countingPlayer struct{ plays int }

func (p *countingPlayer) Play(func()) { p.plays++ }

type fakeRecorder struct{ active bool }

func (r *fakeRecorder) Active() bool { return r.active }

func TestResizeWithoutSurface(t *testing.T) {
	p := &countingPlayer{}
	m := New(p, nil)
	if m.Resize(640, 480, 1) {
		t.Error("resize applied without a mounted surface")
	}
	if p.plays != 0 {
		t.Errorf("expected no plays, got %d", p.plays)
	}
}

func TestMountAndResize(t *testing.T) {
	p := &countingPlayer{}
	m := New(p, &fakeRecorder{})
	s := surface.New()

	m.Mount(s, 400, 300, 2)
	if w, h := s.DeviceSize(); w != 800 || h != 600 {
		t.Errorf("expected 800x600 raster, got %dx%d", w, h)
	}
	if !m.Resize(200, 100, 1) {
		t.Error("resize not applied")
	}
	if w, h, pr := s.Size(); w != 200 || h != 100 || pr != 1 {
		t.Errorf("expected 200x100@1, got %vx%v@%v", w, h, pr)
	}
	if p.plays != 2 {
		t.Errorf("expected a restart per size change, got %d", p.plays)
	}

	m.Unmount()
	if m.Resize(10, 10, 1) {
		t.Error("resize applied after unmount")
	}
}

func TestResizeDeferredDuringCapture(t *testing.T) {
	p := &countingPlayer{}
	rec := &fakeRecorder{}
	m := New(p, rec)
	s := surface.New()
	m.Mount(s, 400, 300, 1)

	rec.active = true
	m.Resize(500, 300, 1)
	m.Resize(640, 480, 1)
	if p.plays != 1 {
		t.Errorf("playback restarted during capture: %d plays", p.plays)
	}
	if w, _, _ := s.Size(); w != 400 {
		t.Errorf("surface resized during capture to width %v", w)
	}
	if !m.Pending() {
		t.Fatal("expected a pending resize")
	}

	m.Flush()
	if p.plays != 1 {
		t.Error("flush applied while capture still active")
	}

	rec.active = false
	m.Flush()
	if w, h, _ := s.Size(); w != 640 || h != 480 {
		t.Errorf("expected last deferred size 640x480, got %vx%v", w, h)
	}
	if p.plays != 2 || m.Pending() {
		t.Errorf("expected one restart and nothing pending, got %d plays pending=%v", p.plays, m.Pending())
	}
}
