// Package video streams raw RGBA frames through ffmpeg into a WebM (VP9)
// byte stream delivered as ordered chunks.
package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"sync"

	"github.com/ivlev/rosebloom/internal/system"
)

const (
	// MIMEType of the produced container.
	MIMEType = "video/webm"
	// DefaultCodec is the VP9 encoder ffmpeg is asked for.
	DefaultCodec = "libvpx-vp9"

	chunkSize = 64 << 10
)

var (
	// ErrEncoderUnavailable means ffmpeg is missing or lacks the codec.
	ErrEncoderUnavailable = errors.New("video encoder unavailable")
	// ErrFrameSize means a frame does not match the session's video size.
	ErrFrameSize = errors.New("frame size does not match session")
)

// Params describe one encoding session.
type Params struct {
	Width, Height int
	FPS           int
	Codec         string
	Quality       int // CRF, lower is better
	// OnChunk receives encoded bytes in stream order. The slice is owned
	// by the callee.
	OnChunk func(chunk []byte)
}

// Encoder opens encoding sessions.
type Encoder interface {
	Open(ctx context.Context, p Params) (Session, error)
}

// Session accepts frames until Close finalizes the stream.
type Session interface {
	WriteFrame(img *image.RGBA) error
	// Close flushes the encoder. Every chunk has been delivered when it
	// returns.
	Close() error
}

// FFmpegEncoder runs the system ffmpeg binary.
type FFmpegEncoder struct {
	// Binary defaults to "ffmpeg" from PATH.
	Binary string
}

func (e *FFmpegEncoder) binary() string {
	if e.Binary == "" {
		return "ffmpeg"
	}
	return e.Binary
}

func (e *FFmpegEncoder) Open(ctx context.Context, p Params) (Session, error) {
	if p.Codec == "" {
		p.Codec = DefaultCodec
	}
	if p.FPS <= 0 {
		p.FPS = 60
	}
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("open encoder: invalid size %dx%d", p.Width, p.Height)
	}
	if !system.HasEncoder(e.binary(), p.Codec) {
		return nil, fmt.Errorf("%w: %s not found in %s", ErrEncoderUnavailable, p.Codec, e.binary())
	}

	cmd := exec.CommandContext(ctx, e.binary(), e.buildFFmpegArgs(p)...)
	s := &ffmpegSession{cmd: cmd, params: p, done: make(chan struct{})}
	cmd.Stderr = &s.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg start error: %v", ErrEncoderUnavailable, err)
	}
	s.stdin = stdin

	go s.readChunks(stdout)
	return s, nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(p Params) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", fmt.Sprintf("%d", p.FPS),
		"-i", "-",
		// yuv420p требует четных размеров
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-pix_fmt", "yuv420p",
		"-c:v", p.Codec,
	}

	quality := p.Quality
	if quality <= 0 {
		quality = 32
	}
	switch p.Codec {
	case "libvpx-vp9":
		// constant quality: CRF работает только при нулевом битрейте
		args = append(args, "-b:v", "0", "-crf", fmt.Sprintf("%d", quality),
			"-deadline", "realtime", "-cpu-used", "8", "-row-mt", "1")
	case "vp9_qsv":
		args = append(args, "-global_quality", fmt.Sprintf("%d", quality))
	}

	args = append(args, "-f", "webm", "pipe:1")
	return args
}

type ffmpegSession struct {
	cmd    *exec.Cmd
	params Params
	stdin  io.WriteCloser
	stderr bytes.Buffer

	done    chan struct{}
	readErr error

	closeOnce sync.Once
	closeErr  error
}

func (s *ffmpegSession) readChunks(r io.Reader) {
	defer close(s.done)
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 && s.params.OnChunk != nil {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.params.OnChunk(chunk)
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			s.readErr = err
			return
		}
	}
}

func (s *ffmpegSession) WriteFrame(img *image.RGBA) error {
	if img.Rect.Dx() != s.params.Width || img.Rect.Dy() != s.params.Height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrFrameSize,
			img.Rect.Dx(), img.Rect.Dy(), s.params.Width, s.params.Height)
	}
	if err := writeRawRGBA(s.stdin, img); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	return nil
}

func (s *ffmpegSession) Close() error {
	s.closeOnce.Do(func() {
		s.stdin.Close()
		<-s.done
		if err := s.cmd.Wait(); err != nil {
			s.closeErr = fmt.Errorf("ffmpeg wait error: %w, output: %s", err, s.stderr.String())
			return
		}
		if s.readErr != nil {
			s.closeErr = fmt.Errorf("read encoded stream: %w", s.readErr)
		}
	})
	return s.closeErr
}

// writeRawRGBA пишет кадр без копирования, если его layout уже плотный.
func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || len(rgba.Pix) != bounds.Dx()*bounds.Dy()*4 {
		rgba = image.NewRGBA(image.Rectangle{Max: bounds.Size()})
		draw.Draw(rgba, rgba.Rect, img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

// Collect is an OnChunk sink that appends into a list. It is safe for the
// encoder's reader goroutine and the caller to use concurrently.
type Collect struct {
	mu     sync.Mutex
	chunks [][]byte
	size   int
}

// Add appends a chunk.
func (c *Collect) Add(chunk []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunks = append(c.chunks, chunk)
	c.size += len(chunk)
}

// Bytes joins the collected chunks.
func (c *Collect) Bytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]byte, 0, c.size)
	for _, ch := range c.chunks {
		out = append(out, ch...)
	}
	return out
}

// Len is the number of chunks received.
func (c *Collect) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.chunks)
}
