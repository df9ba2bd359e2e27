package canvas

import (
	"math"

	"golang.org/x/image/vector"
)

// capSegments is the number of chords used for each round join or cap.
const capSegments = 16

// strokePolyline feeds the outline of a polyline of half-width hw into z as
// a union of segment quads and vertex discs. Every sub-polygon is emitted
// with the same winding so overlaps saturate instead of cancelling.
func strokePolyline(z *vector.Rasterizer, line []point, hw float64, origin point) {
	emit := func(pts ...point) {
		z.MoveTo(float32(pts[0].X-origin.X), float32(pts[0].Y-origin.Y))
		for _, q := range pts[1:] {
			z.LineTo(float32(q.X-origin.X), float32(q.Y-origin.Y))
		}
		z.ClosePath()
	}

	for i := 1; i < len(line); i++ {
		a, b := line[i-1], line[i]
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*hw, dx/l*hw
		emit(
			point{a.X + nx, a.Y + ny},
			point{b.X + nx, b.Y + ny},
			point{b.X - nx, b.Y - ny},
			point{a.X - nx, a.Y - ny},
		)
	}

	var disc [capSegments]point
	for _, v := range line {
		for k := range disc {
			// decreasing angle matches the quads' winding
			s, c := math.Sincos(-2 * math.Pi * float64(k) / capSegments)
			disc[k] = point{v.X + hw*c, v.Y + hw*s}
		}
		emit(disc[:]...)
	}
}
