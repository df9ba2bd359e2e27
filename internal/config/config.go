package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/rosebloom/internal/easing"
	"github.com/ivlev/rosebloom/internal/scene"
)

type Config struct {
	OutputDir    string        `yaml:"output_dir"`
	OutputVideo  string        `yaml:"output_video"`
	Width        int           `yaml:"width"`
	Height       int           `yaml:"height"`
	PixelRatio   float64       `yaml:"pixel_ratio"`
	FPS          int           `yaml:"fps"`
	Refresh      int           `yaml:"refresh"`
	Duration     time.Duration `yaml:"duration"`
	Grace        time.Duration `yaml:"grace"`
	Workers      int           `yaml:"workers"`
	Preset       string        `yaml:"preset"`
	FFmpeg       string        `yaml:"ffmpeg"`
	VideoEncoder string        `yaml:"video_encoder"`
	Quality      int           `yaml:"quality"`
	Addr         string        `yaml:"addr"`
	ShowStats    bool          `yaml:"show_stats"`
	BuildVersion string        `yaml:"-"`

	Scene SceneConfig `yaml:"scene"`
}

// SceneConfig overrides the look of the rose.
type SceneConfig struct {
	// Easing maps a layer (stem, leaves, core, petals) to a curve name.
	Easing   map[string]string `yaml:"easing"`
	HueShift float64           `yaml:"hue_shift"`
	Palette  scene.Palette     `yaml:"palette"`
}

// Presets are CSS sizes for common formats.
var Presets = map[string][2]int{
	"16:9": {1280, 720},
	"9:16": {720, 1280},
	"4:5":  {1080, 1350},
	"1:1":  {1080, 1080},
}

// Default returns the canonical settings: 14 s at 60 FPS with a 300 ms
// trailing grace period.
func Default() *Config {
	return &Config{
		OutputDir:    "output",
		Width:        1280,
		Height:       720,
		PixelRatio:   1,
		FPS:          60,
		Refresh:      60,
		Duration:     scene.Duration * time.Millisecond,
		Grace:        300 * time.Millisecond,
		Workers:      4,
		FFmpeg:       "ffmpeg",
		VideoEncoder: "libvpx-vp9",
		Quality:      32,
		Addr:         ":8080",
		Scene:        SceneConfig{Palette: scene.DefaultPalette()},
	}
}

// Load reads a YAML file over the current values; keys missing from the
// file keep what is already set.
func (c *Config) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ошибка чтения конфига: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("ошибка разбора конфига %s: %w", path, err)
	}
	return nil
}

// Save writes the config as YAML; the file can be edited and passed back
// to Load.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyPreset sets Width and Height from a named preset.
func (c *Config) ApplyPreset(name string) error {
	if name == "" {
		return nil
	}
	size, ok := Presets[name]
	if !ok {
		return fmt.Errorf("неизвестный пресет %q", name)
	}
	c.Width, c.Height = size[0], size[1]
	c.Preset = name
	return nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("размер %dx%d должен быть положительным", c.Width, c.Height))
	}
	if c.PixelRatio <= 0 {
		errs = append(errs, fmt.Errorf("pixel ratio %.2f должен быть положительным", c.PixelRatio))
	}
	if c.FPS <= 0 || c.FPS > 240 {
		errs = append(errs, fmt.Errorf("fps %d вне диапазона 1..240", c.FPS))
	}
	if c.Duration <= 0 {
		errs = append(errs, fmt.Errorf("длительность %v должна быть положительной", c.Duration))
	}
	if c.Grace < 0 {
		errs = append(errs, fmt.Errorf("grace %v не может быть отрицательным", c.Grace))
	}
	for layer, name := range c.Scene.Easing {
		if _, err := easing.Named(name); err != nil {
			errs = append(errs, fmt.Errorf("easing %s: %w", layer, err))
		}
	}
	return errors.Join(errs...)
}

// BuildScene returns the default rose with this config's overrides.
func (c *Config) BuildScene() (*scene.Scene, error) {
	sc := scene.Default()
	sc.Palette = c.Scene.Palette
	if c.Scene.HueShift != 0 {
		for i := range sc.Rings {
			sc.Rings[i].HueShift += c.Scene.HueShift
		}
	}
	for layer, name := range c.Scene.Easing {
		fn, err := easing.Named(name)
		if err != nil {
			return nil, fmt.Errorf("easing %s: %w", layer, err)
		}
		switch layer {
		case scene.LayerStem:
			sc.Stem.Ease = fn
		case scene.LayerLeaves:
			sc.Leaves.Ease = fn
		case scene.LayerCore:
			sc.Core.Ease = fn
		case scene.LayerPetals:
			sc.PetalEase = fn
		default:
			return nil, fmt.Errorf("easing: у слоя %q нет кривой", layer)
		}
	}
	return sc, nil
}
