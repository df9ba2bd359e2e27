package video

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/rosebloom/internal/system"
)

func TestBuildFFmpegArgs(t *testing.T) {
	e := &FFmpegEncoder{}
	args := strings.Join(e.buildFFmpegArgs(Params{Width: 321, Height: 240, FPS: 60, Codec: DefaultCodec}), " ")

	for _, want := range []string{
		"-f rawvideo -pixel_format rgba",
		"-video_size 321x240",
		"-framerate 60",
		"-c:v libvpx-vp9",
		"-b:v 0 -crf 32",
		"-f webm pipe:1",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("expected args to contain %q, got %s", want, args)
		}
	}
}

func TestWriteRawRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = byte(i)
	}

	var dense bytes.Buffer
	if err := writeRawRGBA(&dense, src); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dense.Bytes(), src.Pix) {
		t.Error("dense frame was not written verbatim")
	}

	// a sub-image has a wider stride and must be repacked
	sub := src.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)
	var packed bytes.Buffer
	if err := writeRawRGBA(&packed, sub); err != nil {
		t.Fatal(err)
	}
	if packed.Len() != 2*2*4 {
		t.Fatalf("expected 16 bytes, got %d", packed.Len())
	}
	if first := packed.Bytes()[0]; first != sub.Pix[0] {
		t.Errorf("expected first byte %d, got %d", sub.Pix[0], first)
	}
}

func TestOpenWithoutFFmpeg(t *testing.T) {
	e := &FFmpegEncoder{Binary: filepath.Join(t.TempDir(), "ffmpeg")}
	_, err := e.Open(context.Background(), Params{Width: 16, Height: 16})
	if !errors.Is(err, ErrEncoderUnavailable) {
		t.Errorf("expected ErrEncoderUnavailable, got %v", err)
	}
}

func TestEncodeWebM(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	if !system.HasEncoder("ffmpeg", DefaultCodec) {
		t.Skip("ffmpeg built without libvpx-vp9")
	}

	var out Collect
	s, err := (&FFmpegEncoder{}).Open(context.Background(), Params{
		Width: 33, Height: 17, FPS: 30, OnChunk: out.Add,
	})
	if err != nil {
		t.Fatal(err)
	}
	frame := image.NewRGBA(image.Rect(0, 0, 33, 17))
	for i := 0; i < 10; i++ {
		frame.Pix[i*4] = 255
		frame.Pix[i*4+3] = 255
		if err := s.WriteFrame(frame); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
	if err := s.WriteFrame(image.NewRGBA(image.Rect(0, 0, 2, 2))); !errors.Is(err, ErrFrameSize) {
		t.Errorf("expected ErrFrameSize, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	data := out.Bytes()
	// EBML magic opens every webm file
	if len(data) < 4 || !bytes.Equal(data[:4], []byte{0x1a, 0x45, 0xdf, 0xa3}) {
		t.Errorf("output does not start with EBML header: % x", data[:min(len(data), 8)])
	}
	t.Logf("encoded %d bytes in %d chunks", len(data), out.Len())
}
