package preview

import (
	"context"
	"log"

	"github.com/ivlev/rosebloom/internal/capture"
	"github.com/ivlev/rosebloom/internal/engine"
)

type action int

const (
	actionReplay action = iota
	actionRecord
)

// controller turns window input into engine calls. It owns no ebiten
// state and runs on the game loop goroutine.
type controller struct {
	eng    *engine.Engine
	outDir string

	mounted bool
	size    [3]float64
	pending <-chan capture.Result
	saved   []string
}

func (c *controller) do(a action) {
	switch a {
	case actionReplay:
		c.eng.Play(nil)
	case actionRecord:
		ch, err := c.eng.StartCapture(context.Background())
		if engine.IsNoop(err) {
			log.Println("[*] Запись уже идёт, запрос проигнорирован")
			return
		}
		if err != nil {
			log.Printf("[!] Не удалось начать запись: %v", err)
			return
		}
		c.pending = ch
	}
}

// layout mounts the surface on the first call and resizes it when the
// window or its scale factor changes.
func (c *controller) layout(w, h, scale float64) {
	size := [3]float64{w, h, scale}
	if c.mounted && size == c.size {
		return
	}
	c.size = size
	if !c.mounted {
		c.mounted = true
		c.eng.Mount(w, h, scale)
		return
	}
	c.eng.Resize(w, h, scale)
}

// poll saves a finished capture without blocking the frame.
func (c *controller) poll() {
	if c.pending == nil {
		return
	}
	select {
	case res, ok := <-c.pending:
		c.pending = nil
		if !ok {
			return
		}
		if res.Err != nil {
			log.Printf("[!] Запись не удалась: %v", res.Err)
			return
		}
		path, err := res.Media.Save(c.outDir)
		if err != nil {
			log.Printf("[!] Ошибка сохранения записи: %v", err)
			return
		}
		c.saved = append(c.saved, path)
		log.Printf("[+++] Запись сохранена: %s (%d кадров)", path, res.Media.Frames)
	default:
	}
}
