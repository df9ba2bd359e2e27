package canvas

import "math"

type point struct{ X, Y float64 }

type segOp uint8

const (
	opMove segOp = iota
	opLine
	opQuad
	opCubic
	opClose
)

// segment holds device-space points; only the first n of pts are used.
type segment struct {
	op  segOp
	pts [3]point
}

// path is recorded in device space, so later transform changes do not move it.
type path struct {
	segs    []segment
	start   point
	current point
	open    bool
}

func (p *path) reset() {
	p.segs = p.segs[:0]
	p.open = false
}

func (p *path) moveTo(q point) {
	p.segs = append(p.segs, segment{op: opMove, pts: [3]point{q}})
	p.start, p.current, p.open = q, q, true
}

func (p *path) ensureStart(q point) {
	if !p.open {
		p.moveTo(q)
	}
}

func (p *path) lineTo(q point) {
	p.segs = append(p.segs, segment{op: opLine, pts: [3]point{q}})
	p.current = q
}

func (p *path) quadTo(c, q point) {
	p.segs = append(p.segs, segment{op: opQuad, pts: [3]point{c, q}})
	p.current = q
}

func (p *path) cubicTo(c1, c2, q point) {
	p.segs = append(p.segs, segment{op: opCubic, pts: [3]point{c1, c2, q}})
	p.current = q
}

func (p *path) close() {
	if !p.open {
		return
	}
	p.segs = append(p.segs, segment{op: opClose})
	p.current = p.start
}

func (p *path) empty() bool {
	for _, s := range p.segs {
		if s.op != opMove && s.op != opClose {
			return false
		}
	}
	return true
}

// bounds covers every point including control points, which by the convex
// hull property also covers the curves.
func (p *path) bounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, s := range p.segs {
		n := s.op.points()
		for i := 0; i < n; i++ {
			q := s.pts[i]
			minX, maxX = math.Min(minX, q.X), math.Max(maxX, q.X)
			minY, maxY = math.Min(minY, q.Y), math.Max(maxY, q.Y)
		}
	}
	return
}

func (op segOp) points() int {
	switch op {
	case opMove, opLine:
		return 1
	case opQuad:
		return 2
	case opCubic:
		return 3
	}
	return 0
}

// flatten converts the path to polylines; closed reports whether each
// polyline ended with ClosePath.
func (p *path) flatten() (lines [][]point, closed []bool) {
	var cur []point
	flush := func(c bool) {
		if len(cur) > 1 {
			lines = append(lines, cur)
			closed = append(closed, c)
		}
		cur = nil
	}
	for _, s := range p.segs {
		switch s.op {
		case opMove:
			flush(false)
			cur = []point{s.pts[0]}
		case opLine:
			cur = append(cur, s.pts[0])
		case opQuad:
			a := cur[len(cur)-1]
			n := curveSteps(a, s.pts[0], s.pts[1])
			for i := 1; i <= n; i++ {
				t := float64(i) / float64(n)
				mt := 1 - t
				cur = append(cur, point{
					X: mt*mt*a.X + 2*mt*t*s.pts[0].X + t*t*s.pts[1].X,
					Y: mt*mt*a.Y + 2*mt*t*s.pts[0].Y + t*t*s.pts[1].Y,
				})
			}
		case opCubic:
			a := cur[len(cur)-1]
			n := curveSteps(a, s.pts[0], s.pts[1], s.pts[2])
			for i := 1; i <= n; i++ {
				t := float64(i) / float64(n)
				mt := 1 - t
				cur = append(cur, point{
					X: mt*mt*mt*a.X + 3*mt*mt*t*s.pts[0].X + 3*mt*t*t*s.pts[1].X + t*t*t*s.pts[2].X,
					Y: mt*mt*mt*a.Y + 3*mt*mt*t*s.pts[0].Y + 3*mt*t*t*s.pts[1].Y + t*t*t*s.pts[2].Y,
				})
			}
		case opClose:
			if len(cur) == 0 {
				continue
			}
			first := cur[0]
			cur = append(cur, first)
			flush(true)
			cur = []point{first}
		}
	}
	flush(false)
	return lines, closed
}

// curveSteps picks a subdivision count from the control polygon length,
// roughly one step per 3 device pixels.
func curveSteps(pts ...point) int {
	l := 0.0
	for i := 1; i < len(pts); i++ {
		l += math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	}
	n := int(math.Ceil(l / 3))
	return max(4, min(n, 96))
}
