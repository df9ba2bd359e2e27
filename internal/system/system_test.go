package system

import (
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestImagePoolReusesBySize(t *testing.T) {
	p := NewImagePool()
	img := p.Get(image.Rect(0, 0, 8, 4))
	if img.Rect.Dx() != 8 || img.Rect.Dy() != 4 || len(img.Pix) != 8*4*4 {
		t.Fatalf("unexpected frame %v with %d bytes", img.Rect, len(img.Pix))
	}
	p.Put(img)

	// a frame of another size never comes back for this request
	other := p.Get(image.Rect(0, 0, 4, 8))
	if other.Rect.Dx() != 4 || len(other.Pix) != 4*8*4 {
		t.Errorf("expected 4x8 frame, got %v", other.Rect)
	}
	p.Put(nil)
	p.Put(image.NewRGBA(image.Rect(0, 0, 3, 3)))
}

func TestFindLatestVideo(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "a.webm")
	newer := filepath.Join(dir, "b.WEBM")
	for _, p := range []string{old, newer, filepath.Join(dir, "c.mp4")} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	got, err := FindLatestVideo(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != newer {
		t.Errorf("expected %s, got %s", newer, got)
	}

	if _, err := FindLatestVideo(t.TempDir()); err == nil {
		t.Error("Expected error for empty dir, got nil")
	}
}

func TestHasEncoderMissingBinary(t *testing.T) {
	if HasEncoder(filepath.Join(t.TempDir(), "no-ffmpeg"), "libvpx-vp9") {
		t.Error("missing binary reported an encoder")
	}
	if _, ok := GetBestWebMEncoder(filepath.Join(t.TempDir(), "no-ffmpeg")); ok {
		t.Error("missing binary reported a webm encoder")
	}
}

func TestCollectStats(t *testing.T) {
	st, err := CollectStats()
	if err != nil {
		t.Logf("partial stats: %v", err)
	}
	if st.GoRoutines == 0 {
		t.Error("expected at least one goroutine")
	}
	if !strings.Contains(st.String(), "goroutines") {
		t.Errorf("unexpected report: %s", st.String())
	}
}

func TestRaisedLimit(t *testing.T) {
	tests := []struct {
		cur, max, want uint64
	}{
		{256, 1 << 20, 2048},
		{256, 1024, 1024},
		{65536, 1 << 20, 65536},
		{2048, 4096, 2048},
	}
	for _, tt := range tests {
		if got := raisedLimit(tt.cur, tt.max); got != tt.want {
			t.Errorf("raisedLimit(%d, %d): expected %d, got %d", tt.cur, tt.max, tt.want, got)
		}
	}
}
