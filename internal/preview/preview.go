// Package preview shows the animation in a desktop window. R replays,
// V records one run to the output directory, Esc quits.
package preview

import (
	"errors"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/ivlev/rosebloom/internal/engine"
)

// Game adapts the engine to ebiten. The engine must be created with
// engine.Options{Pumped: true}: every Update delivers one refresh tick.
type Game struct {
	ctl   controller
	frame *ebiten.Image
}

func New(eng *engine.Engine, outDir string) *Game {
	return &Game{ctl: controller{eng: eng, outDir: outDir}}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.ctl.do(actionReplay)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyV) {
		g.ctl.do(actionRecord)
	}
	g.ctl.eng.Pump()
	g.ctl.poll()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.ctl.eng.Snapshot(func(img *image.RGBA) {
		w, h := img.Rect.Dx(), img.Rect.Dy()
		if g.frame == nil || g.frame.Bounds().Dx() != w || g.frame.Bounds().Dy() != h {
			if g.frame != nil {
				g.frame.Deallocate()
			}
			g.frame = ebiten.NewImage(w, h)
		}
		g.frame.WritePixels(img.Pix[:4*w*h])
	})
	if g.frame != nil {
		screen.DrawImage(g.frame, nil)
	}
}

// Layout reports the window size in device pixels so the frame is drawn
// one to one; the engine keeps working in window units.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	scale := ebiten.Monitor().DeviceScaleFactor()
	g.ctl.layout(float64(outsideWidth), float64(outsideHeight), scale)
	w, h := g.ctl.eng.Size()
	if w == 0 || h == 0 {
		return outsideWidth, outsideHeight
	}
	return w, h
}

// Run opens the window and blocks until it is closed.
func Run(eng *engine.Engine, outDir string) error {
	cfg := eng.Config
	ebiten.SetWindowTitle("Rose Bloom")
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.Refresh)

	err := ebiten.RunGame(New(eng, outDir))
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}
