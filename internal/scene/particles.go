package scene

import "math"

// Particle is one evaluated point of a particle field.
type Particle struct {
	X, Y   float64
	Radius float64
	Alpha  float64 // draw alpha, already scaled by the field's intensity
}

// Twinkle places background point i. Positions come from index arithmetic
// and progress only, so the field has no state between frames.
func Twinkle(i int, progress, width, height float64) Particle {
	fi := float64(i)
	phase := math.Mod(progress*6+fi*0.1, 1)
	a := math.Sin(phase * math.Pi)
	return Particle{
		X:      modPos(fi*503, width) + math.Sin(progress*10+fi)*8,
		Y:      modPos(fi*233, height*0.6) + math.Cos(progress*7+fi)*6,
		Radius: 1.5 + a*1.2,
		Alpha:  a * 0.25,
	}
}

// Shimmer places glow point i around the flower centre (cx, cy).
func Shimmer(i int, progress, cx, cy float64) Particle {
	seed := float64((i * 37) % 360)
	angle := seed / ShimmerCount * 2 * math.Pi
	dist := 40 + math.Mod(seed*13, 70)
	phase := math.Mod(progress*4+seed*0.03, 1)
	a := math.Max(0, math.Sin(phase*math.Pi))
	return Particle{
		X:      cx + math.Cos(angle)*dist,
		Y:      cy + math.Sin(angle)*dist*0.8,
		Radius: 10 + a*12,
		Alpha:  a * 0.07,
	}
}

func modPos(v, m float64) float64 {
	if m <= 0 {
		return 0
	}
	return math.Mod(v, m)
}
