// Package capture records one playback of the animation into a WebM file.
//
// A capture opens a fixed-rate stream on the surface, restarts playback and
// waits for the run to complete. After a short grace period that lets the
// final frame reach the stream, the encoder is finalized and the chunks are
// joined into a Media handle.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ivlev/rosebloom/internal/clock"
	"github.com/ivlev/rosebloom/internal/surface"
	"github.com/ivlev/rosebloom/internal/video"
)

const (
	DefaultFPS   = 60
	DefaultGrace = 300 * time.Millisecond
)

var (
	// ErrCaptureActive is returned by Start while a capture is running.
	// Callers driving a record button treat it as a no-op.
	ErrCaptureActive = errors.New("capture already active")
	// ErrNoSurface is returned by Start when the surface has no canvas.
	ErrNoSurface = errors.New("capture: surface not attached")
)

// State of the pipeline.
type State int

const (
	Idle State = iota
	Recording
	Finalizing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Finalizing:
		return "finalizing"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Player restarts playback and reports completion.
type Player interface {
	Play(onComplete func())
}

// Result is delivered once per capture.
type Result struct {
	Media *Media
	Err   error
}

// Options tune a Pipeline. Zero values take the defaults.
type Options struct {
	FPS     int
	Grace   time.Duration
	Codec   string
	Quality int
	// OnIdle runs after every capture ends, successful or not.
	OnIdle func()
}

type session struct {
	id      uuid.UUID
	stream  *surface.Stream
	enc     video.Session
	chunks  *video.Collect
	grace   clock.Timer
	result  chan Result
	frames  int
	failure error
}

func (s *session) write(img *image.RGBA) {
	if s.failure != nil {
		return
	}
	if err := s.enc.WriteFrame(img); err != nil {
		s.failure = err
		log.Printf("[!] Запись %s: кадр %d не принят энкодером: %v", s.id, s.frames, err)
		return
	}
	s.frames++
}

// Pipeline owns at most one capture session and the last finished media.
type Pipeline struct {
	clk    clock.Clock
	surf   *surface.Surface
	player Player
	enc    video.Encoder
	opts   Options

	mu    sync.Mutex
	state State
	sess  *session
	media *Media
}

// New creates an idle pipeline.
func New(clk clock.Clock, surf *surface.Surface, player Player, enc video.Encoder, opts Options) *Pipeline {
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	if opts.Grace <= 0 {
		opts.Grace = DefaultGrace
	}
	return &Pipeline{clk: clk, surf: surf, player: player, enc: enc, opts: opts}
}

// Active reports whether a capture is recording or finalizing.
func (p *Pipeline) Active() bool {
	return p.State() != Idle
}

// State returns the pipeline state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Media returns the last finished recording, or nil.
func (p *Pipeline) Media() *Media {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.media
}

// Start begins a capture and restarts playback. The returned channel
// yields exactly one Result when the capture has been finalized. Any
// previous media is released first.
func (p *Pipeline) Start(ctx context.Context) (<-chan Result, error) {
	p.mu.Lock()
	if p.state != Idle {
		p.mu.Unlock()
		return nil, ErrCaptureActive
	}
	w, h := p.surf.DeviceSize()
	if w == 0 || h == 0 {
		p.mu.Unlock()
		return nil, ErrNoSurface
	}
	if p.media != nil {
		p.media.Release()
		p.media = nil
	}
	p.state = Recording
	p.mu.Unlock()

	s := &session{
		id:     uuid.New(),
		chunks: &video.Collect{},
		result: make(chan Result, 1),
	}
	enc, err := p.enc.Open(ctx, video.Params{
		Width:   w,
		Height:  h,
		FPS:     p.opts.FPS,
		Codec:   p.opts.Codec,
		Quality: p.opts.Quality,
		OnChunk: s.chunks.Add,
	})
	if err != nil {
		p.mu.Lock()
		p.state = Idle
		p.mu.Unlock()
		p.idle()
		return nil, fmt.Errorf("start capture: %w", err)
	}
	s.enc = enc

	// the stream must be open before the first frame of the run is drawn
	s.stream = p.surf.CaptureStream(p.clk, p.opts.FPS, s.write)
	p.mu.Lock()
	p.sess = s
	p.mu.Unlock()

	fmt.Printf("[*] Запись %s: %dx%d @ %d FPS\n", s.id, w, h, p.opts.FPS)
	p.player.Play(func() { p.runEnded(s) })
	return s.result, nil
}

// Stop finalizes the running capture now instead of after playback ends.
// It reports whether a capture was stopped.
func (p *Pipeline) Stop() bool {
	p.mu.Lock()
	s := p.sess
	if s == nil || p.state != Recording {
		p.mu.Unlock()
		return false
	}
	if s.grace != nil {
		s.grace.Stop()
	}
	p.mu.Unlock()
	return p.finalize(s)
}

// Close stops any capture and releases the last media.
func (p *Pipeline) Close() {
	p.Stop()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.media != nil {
		p.media.Release()
		p.media = nil
	}
}

func (p *Pipeline) runEnded(s *session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sess != s || p.state != Recording || s.grace != nil {
		return
	}
	s.grace = p.clk.AfterFunc(p.opts.Grace, func() { p.finalize(s) })
}

func (p *Pipeline) finalize(s *session) bool {
	p.mu.Lock()
	if p.sess != s || p.state != Recording {
		p.mu.Unlock()
		return false
	}
	p.state = Finalizing
	p.mu.Unlock()

	s.stream.Stop()
	err := s.enc.Close()
	if err == nil {
		err = s.failure
	}
	var m *Media
	switch {
	case err != nil:
		log.Printf("[!] Запись %s не удалась: %v", s.id, err)
	case s.frames == 0:
		err = fmt.Errorf("capture %s: no frames recorded", s.id)
	default:
		m = newMedia(s.chunks.Bytes(), s.frames, p.opts.FPS)
		fmt.Printf("[+++] Запись готова: %s (%d кадров, %.1f КБ)\n", m.FileName, m.Frames, float64(m.Size())/1024)
	}

	p.mu.Lock()
	p.sess = nil
	p.state = Idle
	if m != nil {
		p.media = m
	}
	p.mu.Unlock()

	s.result <- Result{Media: m, Err: err}
	close(s.result)
	p.idle()
	return true
}

func (p *Pipeline) idle() {
	if p.opts.OnIdle != nil {
		p.opts.OnIdle()
	}
}
