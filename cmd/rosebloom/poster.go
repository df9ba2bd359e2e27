package main

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/ivlev/rosebloom/internal/config"
	"github.com/ivlev/rosebloom/internal/renderer"
)

const thumbWidth = 320

func runPoster(cfg *config.Config, progress float64, layers string) {
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Некорректный конфиг: %v", err)
	}
	sc, err := cfg.BuildScene()
	if err != nil {
		log.Fatalf("[-] Ошибка сцены: %v", err)
	}
	rend, err := renderer.New(sc)
	if err != nil {
		log.Fatalf("[-] Ошибка рендера: %v", err)
	}
	if layers != "" {
		rend, err = rend.Only(strings.Split(layers, ",")...)
		if err != nil {
			log.Fatalf("[-] Ошибка: %v", err)
		}
	}

	w, h, pr := float64(cfg.Width), float64(cfg.Height), cfg.PixelRatio
	img := image.NewRGBA(image.Rect(0, 0, int(w*pr+0.5), int(h*pr+0.5)))
	rend.Draw(progress, img, w, h, pr)

	out := cfg.OutputVideo
	if out == "" {
		out = filepath.Join(cfg.OutputDir, fmt.Sprintf("rose-bloom_%03d.png", int(progress*100+0.5)))
	}
	if err := writePNG(out, img); err != nil {
		log.Fatalf("[-] Ошибка записи: %v", err)
	}

	// превью для соцсетей
	tw := thumbWidth
	th := img.Rect.Dy() * tw / img.Rect.Dx()
	thumb := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(thumb, thumb.Rect, img, img.Rect, draw.Src, nil)
	thumbPath := strings.TrimSuffix(out, filepath.Ext(out)) + "_thumb.png"
	if err := writePNG(thumbPath, thumb); err != nil {
		log.Fatalf("[-] Ошибка записи: %v", err)
	}

	fmt.Printf("[+++] Успех! Кадр %.2f (%s): %s, %s\n", progress, strings.Join(rend.Layers(), ","), out, thumbPath)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
