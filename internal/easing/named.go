package easing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tanema/gween/ease"
)

var builtin = map[string]Func{
	"linear":       Linear,
	"out-cubic":    OutCubic,
	"in-out-cubic": InOutCubic,
	"out-back":     OutBack,
}

// Curves from gween, available to scene overrides in the config file.
var tweens = map[string]ease.TweenFunc{
	"in-quad":     ease.InQuad,
	"out-quad":    ease.OutQuad,
	"in-out-quad": ease.InOutQuad,
	"in-cubic":    ease.InCubic,
	"out-sine":    ease.OutSine,
	"in-out-sine": ease.InOutSine,
	"out-expo":    ease.OutExpo,
	"out-elastic": ease.OutElastic,
	"out-bounce":  ease.OutBounce,
	"in-out-back": ease.InOutBack,
}

// FromTween adapts a gween easing function to a unit Func.
func FromTween(fn ease.TweenFunc) Func {
	return func(t float64) float64 {
		return float64(fn(float32(t), 0, 1, 1))
	}
}

// Named resolves a curve by its kebab-case name.
func Named(name string) (Func, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if fn, ok := builtin[key]; ok {
		return fn, nil
	}
	if fn, ok := tweens[key]; ok {
		return FromTween(fn), nil
	}
	return nil, fmt.Errorf("unknown easing %q (known: %s)", name, strings.Join(Names(), ", "))
}

// Names lists every curve Named accepts, sorted.
func Names() []string {
	names := make([]string, 0, len(builtin)+len(tweens))
	for k := range builtin {
		names = append(names, k)
	}
	for k := range tweens {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
