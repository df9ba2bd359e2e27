package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ivlev/rosebloom/internal/clock"
	"github.com/ivlev/rosebloom/internal/display"
	"github.com/ivlev/rosebloom/internal/scheduler"
	"github.com/ivlev/rosebloom/internal/surface"
	"github.com/ivlev/rosebloom/internal/video"
)

// fakeEncoder emits one byte per frame, so the media size is the frame count.
type fakeEncoder struct {
	mu       sync.Mutex
	opened   int
	sessions []*fakeSession
	err      error
}

type fakeSession struct {
	params video.Params
	mu     sync.Mutex
	frames int
	closed bool
}

func (e *fakeEncoder) Open(_ context.Context, p video.Params) (video.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	e.opened++
	s := &fakeSession{params: p}
	e.sessions = append(e.sessions, s)
	return s, nil
}

func (s *fakeSession) WriteFrame(img *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("write after close")
	}
	s.frames++
	s.params.OnChunk([]byte{img.Pix[0]})
	return nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type rig struct {
	clk   *clock.Manual
	surf  *surface.Surface
	sched *scheduler.Scheduler
	enc   *fakeEncoder
	pipe  *Pipeline
	idles int
}

func newRig() *rig {
	r := &rig{clk: clock.NewManual(), surf: surface.New(), enc: &fakeEncoder{}}
	r.surf.Configure(8, 8, 1)
	loop := display.New(r.clk, 60)
	r.sched = scheduler.New(r.clk, loop, func(p float64) {
		r.surf.Canvas().Pix[0] = byte(p * 255)
		r.surf.Present()
	}, 14*time.Second)
	r.pipe = New(r.clk, r.surf, r.sched, r.enc, Options{OnIdle: func() { r.idles++ }})
	return r
}

func receive(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case res := <-ch:
		return res
	default:
		t.Fatal("capture not finalized")
	}
	return Result{}
}

func TestCaptureCoversRunAndGrace(t *testing.T) {
	r := newRig()
	ch, err := r.pipe.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !r.pipe.Active() {
		t.Error("expected pipeline to be active")
	}

	r.clk.Advance(14*time.Second + 200*time.Millisecond)
	if r.pipe.State() != Recording {
		t.Fatalf("finalized before the grace interval elapsed: %v", r.pipe.State())
	}
	r.clk.Advance(200 * time.Millisecond)

	res := receive(t, ch)
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	m := res.Media
	want := float64(14300) / (1000.0 / 60)
	if d := float64(m.Frames) - want; d < -3 || d > 3 {
		t.Errorf("expected ~%.0f frames, got %d", want, m.Frames)
	}
	if m.Size() != m.Frames {
		t.Errorf("expected one chunk per frame, got %d bytes for %d frames", m.Size(), m.Frames)
	}
	data, _ := m.Bytes()
	if data[len(data)-1] != 255 {
		t.Errorf("expected the final frame at progress 1, got %d", data[len(data)-1])
	}
	if m.MIMEType != "video/webm" || m.FileName != "rose-bloom.webm" {
		t.Errorf("unexpected media type %s name %s", m.MIMEType, m.FileName)
	}

	written := r.enc.sessions[0].frames
	r.clk.Advance(5 * time.Second)
	if r.enc.sessions[0].frames != written {
		t.Error("frames written after the capture was finalized")
	}
	if r.pipe.Active() || r.idles != 1 {
		t.Errorf("expected idle pipeline after one capture, active=%v idles=%d", r.pipe.Active(), r.idles)
	}
}

func TestSecondStartIsRejected(t *testing.T) {
	r := newRig()
	ch, err := r.pipe.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.pipe.Start(context.Background()); !errors.Is(err, ErrCaptureActive) {
		t.Fatalf("expected ErrCaptureActive, got %v", err)
	}

	r.clk.Advance(15 * time.Second)
	if res := receive(t, ch); res.Err != nil || res.Media == nil {
		t.Fatalf("expected one finished media, got %+v", res)
	}
	if r.enc.opened != 1 {
		t.Errorf("expected a single encoder session, got %d", r.enc.opened)
	}
}

func TestStopEarly(t *testing.T) {
	r := newRig()
	ch, _ := r.pipe.Start(context.Background())
	r.clk.Advance(time.Second)

	if !r.pipe.Stop() {
		t.Fatal("Stop reported no capture")
	}
	if r.pipe.Stop() {
		t.Error("second Stop reported a capture")
	}
	res := receive(t, ch)
	if res.Media == nil || res.Media.Frames < 55 || res.Media.Frames > 62 {
		t.Errorf("expected ~60 frames after 1s, got %+v", res.Media)
	}
	if _, open := <-ch; open {
		t.Error("result channel not closed")
	}
}

func TestEncoderUnavailable(t *testing.T) {
	r := newRig()
	r.enc.err = video.ErrEncoderUnavailable
	_, err := r.pipe.Start(context.Background())
	if !errors.Is(err, video.ErrEncoderUnavailable) {
		t.Fatalf("expected ErrEncoderUnavailable, got %v", err)
	}
	if r.pipe.Active() || r.pipe.Media() != nil {
		t.Error("failed start left the pipeline recording or holding media")
	}
	if r.sched.State() != scheduler.Idle {
		t.Errorf("failed start touched playback: %v", r.sched.State())
	}
}

func TestStartWithoutSurface(t *testing.T) {
	r := newRig()
	r.surf.Release()
	if _, err := r.pipe.Start(context.Background()); !errors.Is(err, ErrNoSurface) {
		t.Errorf("expected ErrNoSurface, got %v", err)
	}
}

func TestMediaReleasedOnRestartAndClose(t *testing.T) {
	r := newRig()
	ch, _ := r.pipe.Start(context.Background())
	r.clk.Advance(15 * time.Second)
	first := receive(t, ch).Media

	ch, err := r.pipe.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !first.Released() {
		t.Error("previous media not released on restart")
	}
	if _, err := first.Bytes(); !errors.Is(err, ErrReleased) {
		t.Errorf("expected ErrReleased, got %v", err)
	}

	r.clk.Advance(time.Second)
	r.pipe.Close()
	second := receive(t, ch).Media
	if second == nil || !second.Released() {
		t.Error("Close did not release the last media")
	}
	if r.pipe.Active() {
		t.Error("pipeline active after Close")
	}
}

func TestMediaSave(t *testing.T) {
	m := newMedia([]byte("webm"), 3, 60)
	path, err := m.Save(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "webm" {
		t.Errorf("expected saved bytes %q, got %q (%v)", "webm", got, err)
	}
	var buf bytes.Buffer
	if n, err := m.WriteTo(&buf); err != nil || n != 4 {
		t.Errorf("WriteTo = %d, %v", n, err)
	}
	if m.Duration != 50*time.Millisecond {
		t.Errorf("expected 50ms for 3 frames at 60fps, got %v", m.Duration)
	}
}
