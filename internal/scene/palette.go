package scene

// HSLStop is a gradient stop given as hue/saturation/lightness, hue in
// degrees before the ring's shift is added.
type HSLStop struct {
	Offset     float64 `yaml:"offset"`
	Hue        float64 `yaml:"hue"`
	Saturation float64 `yaml:"saturation"`
	Lightness  float64 `yaml:"lightness"`
}

// HexStop is a gradient stop given as "#rrggbb".
type HexStop struct {
	Offset float64 `yaml:"offset"`
	Color  string  `yaml:"color"`
}

// Palette is every colour the rose uses.
type Palette struct {
	Background    []HexStop `yaml:"background"`
	Twinkle       string    `yaml:"twinkle"`
	StemBase      string    `yaml:"stem_base"`
	StemHighlight string    `yaml:"stem_highlight"`
	Leaf          string    `yaml:"leaf"`
	LeafVein      string    `yaml:"leaf_vein"`
	Petal         []HSLStop `yaml:"petal"`
	Core          []HexStop `yaml:"core"`
	Shimmer       string    `yaml:"shimmer"`
}

// DefaultPalette is dark violet night over dark green with pink petals.
func DefaultPalette() Palette {
	return Palette{
		Background: []HexStop{
			{0, "#0b0824"},
			{0.35, "#220d41"},
			{0.7, "#2b421a"},
			{1, "#06140a"},
		},
		Twinkle:       "#f4eeff",
		StemBase:      "#1e6c31",
		StemHighlight: "#2a8c3d",
		Leaf:          "#2a8c3d",
		LeafVein:      "#1f6c2c",
		Petal: []HSLStop{
			{0, 345, 0.80, 0.45},
			{0.5, 350, 0.90, 0.55},
			{1, 355, 0.95, 0.65},
		},
		Core: []HexStop{
			{0, "#ffb3c6"},
			{0.3, "#ff99b0"},
			{1, "#f74f78"},
		},
		Shimmer: "#ffb6c1",
	}
}
