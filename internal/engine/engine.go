// Package engine wires the rose animation together and exposes the
// operations a host calls: render, play, cancel, capture and resize.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/ivlev/rosebloom/internal/capture"
	"github.com/ivlev/rosebloom/internal/clock"
	"github.com/ivlev/rosebloom/internal/config"
	"github.com/ivlev/rosebloom/internal/display"
	"github.com/ivlev/rosebloom/internal/renderer"
	"github.com/ivlev/rosebloom/internal/scheduler"
	"github.com/ivlev/rosebloom/internal/surface"
	"github.com/ivlev/rosebloom/internal/video"
	"github.com/ivlev/rosebloom/internal/viewport"
)

// Options replace the engine's collaborators, mostly for tests and for
// hosts that drive the refresh themselves.
type Options struct {
	Clock   clock.Clock
	Encoder video.Encoder
	// Pumped leaves ticking to the host, which calls Pump once per frame.
	Pumped bool
}

type Engine struct {
	Config *config.Config

	clk      clock.Clock
	encoder  video.Encoder
	surf     *surface.Surface
	rend     *renderer.Renderer
	loop     *display.Loop
	sched    *scheduler.Scheduler
	view     *viewport.Manager
	recorder *capture.Pipeline

	frameMu   sync.Mutex
	closeOnce sync.Once
}

func New(cfg *config.Config, opts Options) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("некорректный конфиг: %w", err)
	}
	sc, err := cfg.BuildScene()
	if err != nil {
		return nil, err
	}
	rend, err := renderer.New(sc)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		Config:  cfg,
		clk:     opts.Clock,
		encoder: opts.Encoder,
		surf:    surface.New(),
		rend:    rend,
	}
	if e.clk == nil {
		e.clk = clock.NewReal()
	}
	if e.encoder == nil {
		e.encoder = &video.FFmpegEncoder{Binary: cfg.FFmpeg}
	}
	if opts.Pumped {
		e.loop = display.NewPumped(e.clk)
	} else {
		e.loop = display.New(e.clk, cfg.Refresh)
	}

	e.sched = scheduler.New(e.clk, e.loop, e.frame, cfg.Duration)
	e.recorder = capture.New(e.clk, e.surf, e.sched, e.encoder, capture.Options{
		FPS:     cfg.FPS,
		Grace:   cfg.Grace,
		Codec:   cfg.VideoEncoder,
		Quality: cfg.Quality,
		OnIdle:  e.captureIdle,
	})
	e.view = viewport.New(e.sched, e.recorder)
	return e, nil
}

// Mount attaches the surface at its initial size and starts playback.
func (e *Engine) Mount(width, height, pixelRatio float64) {
	e.view.Mount(e.surf, width, height, pixelRatio)
}

// Render draws a single frame at progress and presents it.
func (e *Engine) Render(progress float64) {
	e.frame(progress)
}

// Play restarts the animation; onComplete runs once after progress 1.
// While a capture is recording the run belongs to the capture: the request
// is ignored and Play reports false.
func (e *Engine) Play(onComplete func()) bool {
	if e.recorder.Active() {
		log.Println("[*] Идет запись, перезапуск проигнорирован")
		return false
	}
	e.sched.Play(onComplete)
	return true
}

// Cancel stops playback. Safe in any state. A running capture is
// finalized with the frames recorded so far.
func (e *Engine) Cancel() {
	e.recorder.Stop()
	e.sched.Cancel()
}

// StartCapture records one full playback. A second call while recording
// returns capture.ErrCaptureActive.
func (e *Engine) StartCapture(ctx context.Context) (<-chan capture.Result, error) {
	return e.recorder.Start(ctx)
}

// StopCapture finalizes the running capture early.
func (e *Engine) StopCapture() bool {
	return e.recorder.Stop()
}

// Recording reports whether a capture is in flight.
func (e *Engine) Recording() bool {
	return e.recorder.Active()
}

// Media returns the last finished recording, or nil.
func (e *Engine) Media() *capture.Media {
	return e.recorder.Media()
}

// Resize applies a new displayed size. During a capture the change is
// deferred until the recording is finalized.
func (e *Engine) Resize(width, height, pixelRatio float64) bool {
	return e.view.Resize(width, height, pixelRatio)
}

// Size returns the surface size in device pixels, 0x0 while detached.
func (e *Engine) Size() (int, int) {
	return e.surf.DeviceSize()
}

// Pump delivers one refresh tick on a pumped engine.
func (e *Engine) Pump() {
	e.loop.Pump()
}

// Snapshot calls fn with the current frame under the frame lock.
func (e *Engine) Snapshot(fn func(img *image.RGBA)) bool {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()
	img := e.surf.Canvas()
	if img == nil {
		return false
	}
	fn(img)
	return true
}

// State returns the scheduler state.
func (e *Engine) State() scheduler.State {
	return e.sched.State()
}

// Progress returns the progress of the last played frame.
func (e *Engine) Progress() float64 {
	return e.sched.Progress()
}

// Close cancels playback, finalizes any capture and releases the surface
// and the last media. It is safe to call more than once.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		// сначала отмонтируем: финализация записи не должна перезапускать анимацию
		e.view.Unmount()
		e.sched.Cancel()
		e.recorder.Close()
		e.loop.Close()
		e.surf.Release()
	})
	return nil
}

func (e *Engine) frame(progress float64) {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()
	painted := e.surf.Paint(func(dst *image.RGBA, w, h, pr float64) {
		e.rend.Draw(progress, dst, w, h, pr)
	})
	if painted {
		e.surf.Present()
	}
}

func (e *Engine) captureIdle() {
	e.view.Flush()
}

// IsNoop reports whether err only means the request was ignored, as with a
// record request while one is already running.
func IsNoop(err error) bool {
	return errors.Is(err, capture.ErrCaptureActive)
}
