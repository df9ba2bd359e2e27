package capture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ivlev/rosebloom/internal/video"
)

// FileName is the name finished recordings are offered under.
const FileName = "rose-bloom.webm"

// ErrReleased is returned when reading a media handle after Release.
var ErrReleased = errors.New("media released")

// Media is a finished recording held in memory until released.
type Media struct {
	ID       uuid.UUID
	MIMEType string
	FileName string
	Frames   int
	Duration time.Duration
	Created  time.Time

	mu       sync.RWMutex
	data     []byte
	released bool
}

func newMedia(data []byte, frames, fps int) *Media {
	return &Media{
		ID:       uuid.New(),
		MIMEType: video.MIMEType,
		FileName: FileName,
		Frames:   frames,
		Duration: time.Duration(frames) * time.Second / time.Duration(fps),
		Created:  time.Now(),
		data:     data,
	}
}

// Size is the encoded size in bytes, zero once released.
func (m *Media) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Bytes returns the encoded stream. The caller must not modify it.
func (m *Media) Bytes() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.released {
		return nil, ErrReleased
	}
	return m.data, nil
}

// WriteTo implements io.WriterTo.
func (m *Media) WriteTo(w io.Writer) (int64, error) {
	data, err := m.Bytes()
	if err != nil {
		return 0, err
	}
	return bytes.NewReader(data).WriteTo(w)
}

// Save writes the recording to dir under its file name and returns the path.
func (m *Media) Save(dir string) (string, error) {
	data, err := m.Bytes()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("save media: %w", err)
	}
	path := filepath.Join(dir, m.FileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("save media: %w", err)
	}
	return path, nil
}

// Release drops the encoded bytes. It is safe to call more than once.
func (m *Media) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	m.released = true
}

// Released reports whether Release has been called.
func (m *Media) Released() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.released
}
