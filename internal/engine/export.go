package engine

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/rosebloom/internal/system"
	"github.com/ivlev/rosebloom/internal/video"
)

// Timeline is the frame schedule of a recording: one frame every 1/FPS
// from the start of playback until the grace period after it ends.
type Timeline struct {
	Duration time.Duration
	Grace    time.Duration
	FPS      int
}

// Frames is the number of frames in the recording.
func (t Timeline) Frames() int {
	if t.FPS <= 0 || t.Duration <= 0 {
		return 0
	}
	total := (t.Duration + t.Grace).Seconds() * float64(t.FPS)
	return int(math.Round(total))
}

// Progress of frame i, clamped to [0, 1]; grace frames hold progress 1.
func (t Timeline) Progress(i int) float64 {
	at := time.Duration(i) * time.Second / time.Duration(t.FPS)
	return math.Min(float64(at)/float64(t.Duration), 1)
}

// ExportResult summarizes an offline export.
type ExportResult struct {
	Path   string
	Frames int
	Bytes  int64
}

type fileSink struct {
	mu  sync.Mutex
	f   *os.File
	n   int64
	err error
}

func (s *fileSink) write(chunk []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	n, err := s.f.Write(chunk)
	s.n += int64(n)
	s.err = err
}

// Export renders the recording offline, faster than real time, and writes
// it to path. Frames are rendered by a worker pool and fed to the encoder
// strictly in order.
func (e *Engine) Export(ctx context.Context, path string) (*ExportResult, error) {
	cfg := e.Config
	startTime := time.Now()

	tl := Timeline{Duration: cfg.Duration, Grace: cfg.Grace, FPS: cfg.FPS}
	total := tl.Frames()
	if total == 0 {
		return nil, fmt.Errorf("пустая временная шкала")
	}
	w, h, pr := float64(cfg.Width), float64(cfg.Height), cfg.PixelRatio
	rect := image.Rect(0, 0, int(math.Round(w*pr)), int(math.Round(h*pr)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла: %w", err)
	}
	defer f.Close()
	sink := &fileSink{f: f}

	sess, err := e.encoder.Open(ctx, video.Params{
		Width:   rect.Dx(),
		Height:  rect.Dy(),
		FPS:     cfg.FPS,
		Codec:   cfg.VideoEncoder,
		Quality: cfg.Quality,
		OnChunk: sink.write,
	})
	if err != nil {
		return nil, err
	}

	fmt.Println("--- [PROJECT: ROSE BLOOM] ---")
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Кадров: %d | Кодек: %s\n", rect.Dx(), rect.Dy(), cfg.FPS, total, cfg.VideoEncoder)
	fmt.Println("-----------------------------")

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > total {
		workers = total
	}

	// jobs -> renderPool -> slots[i] -> encoder (по порядку)
	// window ограничивает число кадров в памяти
	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int)
	window := make(chan struct{}, workers*2)
	slots := make([]chan *image.RGBA, total)
	for i := range slots {
		slots[i] = make(chan *image.RGBA, 1)
	}

	var renderTime, encodeTime time.Duration
	var statMu sync.Mutex

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < total; i++ {
			select {
			case window <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	// 1. Render Pool (CPU bound)
	for wk := 0; wk < workers; wk++ {
		g.Go(func() error {
			for i := range jobs {
				t0 := time.Now()
				img := system.GetImage(rect)
				e.rend.Draw(tl.Progress(i), img, w, h, pr)
				statMu.Lock()
				renderTime += time.Since(t0)
				statMu.Unlock()
				slots[i] <- img
			}
			return nil
		})
	}

	// 2. Encoder: принимает кадры строго по порядку
	g.Go(func() error {
		for i := 0; i < total; i++ {
			var img *image.RGBA
			select {
			case img = <-slots[i]:
			case <-gctx.Done():
				return gctx.Err()
			}
			t0 := time.Now()
			err := sess.WriteFrame(img)
			encodeTime += time.Since(t0)
			system.PutImage(img)
			<-window
			if err != nil {
				return fmt.Errorf("кадр %d: %w", i, err)
			}
			if (i+1)%cfg.FPS == 0 || i+1 == total {
				fmt.Printf("[>] Ready: %d/%d\n", i+1, total)
			}
		}
		return nil
	})

	runErr := g.Wait()
	closeErr := sess.Close()
	if runErr != nil {
		return nil, runErr
	}
	if closeErr != nil {
		return nil, closeErr
	}
	if sink.err != nil {
		return nil, fmt.Errorf("ошибка записи %s: %w", path, sink.err)
	}

	res := &ExportResult{Path: path, Frames: total, Bytes: sink.n}
	if cfg.ShowStats {
		e.report(res, time.Since(startTime), renderTime, encodeTime)
	}
	return res, nil
}
