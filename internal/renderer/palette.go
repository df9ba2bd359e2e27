package renderer

import (
	"fmt"

	"github.com/ivlev/rosebloom/internal/canvas"
	"github.com/ivlev/rosebloom/internal/scene"
)

const (
	shimmerAlpha = 0.6
	outlineAlpha = 0.15
)

// colors is a scene.Palette resolved into canvas paints.
type colors struct {
	background    []canvas.Stop
	twinkle       canvas.Color
	stemBase      canvas.Color
	stemHighlight canvas.Color
	leaf          canvas.Color
	leafVein      canvas.Color
	petal         []scene.HSLStop
	core          []canvas.Stop
	shimmer       canvas.Color
	outline       canvas.Color
}

func parsePalette(p scene.Palette) (colors, error) {
	var (
		out colors
		err error
	)
	if out.background, err = hexStops("background", p.Background); err != nil {
		return colors{}, err
	}
	if out.core, err = hexStops("core", p.Core); err != nil {
		return colors{}, err
	}
	singles := []struct {
		name string
		src  string
		dst  *canvas.Color
	}{
		{"twinkle", p.Twinkle, &out.twinkle},
		{"stem_base", p.StemBase, &out.stemBase},
		{"stem_highlight", p.StemHighlight, &out.stemHighlight},
		{"leaf", p.Leaf, &out.leaf},
		{"leaf_vein", p.LeafVein, &out.leafVein},
		{"shimmer", p.Shimmer, &out.shimmer},
	}
	for _, s := range singles {
		c, err := canvas.Hex(s.src)
		if err != nil {
			return colors{}, fmt.Errorf("palette %s: %w", s.name, err)
		}
		*s.dst = c
	}
	if len(p.Petal) == 0 {
		return colors{}, fmt.Errorf("palette petal: no stops")
	}
	out.petal = p.Petal
	out.shimmer = out.shimmer.WithAlpha(shimmerAlpha)
	out.outline = canvas.RGBA(255, 255, 255, outlineAlpha)
	return out, nil
}

func hexStops(name string, in []scene.HexStop) ([]canvas.Stop, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("palette %s: no stops", name)
	}
	out := make([]canvas.Stop, 0, len(in))
	for _, s := range in {
		c, err := canvas.Hex(s.Color)
		if err != nil {
			return nil, fmt.Errorf("palette %s: %w", name, err)
		}
		out = append(out, canvas.Stop{Offset: s.Offset, Color: c})
	}
	return out, nil
}

// petalStops shifts the petal hues for one ring.
func (c colors) petalStops(hueShift float64) []canvas.Stop {
	out := make([]canvas.Stop, len(c.petal))
	for i, s := range c.petal {
		out[i] = canvas.Stop{
			Offset: s.Offset,
			Color:  canvas.HSL(s.Hue+hueShift, s.Saturation, s.Lightness),
		}
	}
	return out
}
