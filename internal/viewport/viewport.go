// Package viewport keeps the surface in step with its displayed size and
// restarts playback after every change.
package viewport

import (
	"log"
	"sync"

	"github.com/ivlev/rosebloom/internal/surface"
)

// Player restarts the animation.
type Player interface {
	Play(onComplete func())
}

// Recorder reports whether a capture is in flight.
type Recorder interface {
	Active() bool
}

type size struct {
	w, h, ratio float64
}

// Manager applies size changes to a mounted surface. While a capture is
// recording, changes are held back and only the latest one is applied once
// the capture has finished, so the recording shows one uninterrupted run.
type Manager struct {
	player   Player
	recorder Recorder

	mu       sync.Mutex
	surf     *surface.Surface
	deferred *size
}

// New creates a manager with nothing mounted. recorder may be nil.
func New(player Player, recorder Recorder) *Manager {
	return &Manager{player: player, recorder: recorder}
}

// Mount attaches the surface and applies its initial size.
func (m *Manager) Mount(s *surface.Surface, width, height, ratio float64) {
	m.mu.Lock()
	m.surf = s
	m.mu.Unlock()
	m.Resize(width, height, ratio)
}

// Unmount detaches the surface; later resizes are ignored.
func (m *Manager) Unmount() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.surf = nil
	m.deferred = nil
}

// Resize reconfigures the surface and restarts playback. It reports false
// when nothing was applied: no surface is mounted or the change was
// deferred behind an active capture.
func (m *Manager) Resize(width, height, ratio float64) bool {
	m.mu.Lock()
	if m.surf == nil {
		m.mu.Unlock()
		return false
	}
	if m.recorder != nil && m.recorder.Active() {
		m.deferred = &size{width, height, ratio}
		m.mu.Unlock()
		log.Printf("[*] Resize %.0fx%.0f отложен до конца записи", width, height)
		return false
	}
	s := m.surf
	m.deferred = nil
	m.mu.Unlock()

	s.Configure(width, height, ratio)
	m.player.Play(nil)
	return true
}

// Pending reports whether a resize is waiting for a capture to finish.
func (m *Manager) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deferred != nil
}

// Flush applies a deferred resize, if any. The capture pipeline calls it
// once the recording has been finalized.
func (m *Manager) Flush() {
	m.mu.Lock()
	d := m.deferred
	m.mu.Unlock()
	if d == nil {
		return
	}
	m.Resize(d.w, d.h, d.ratio)
}
