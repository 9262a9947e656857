package geom

import "math"

// Separation is a lower bound on the distance between two generators, exact
// for every pair this package supports. Zero means they touch or cross.
func Separation(a, b Generator) float64 {
	if a.Kind > b.Kind {
		a, b = b, a
	}
	switch {
	case a.Kind == KindPoint:
		return Distance(a.A, b)
	case a.Kind == KindSegment && b.Kind == KindSegment:
		if segmentsCross(a.A, a.B, b.A, b.B) {
			return 0
		}
		return math.Min(
			math.Min(Distance(a.A, b), Distance(a.B, b)),
			math.Min(Distance(b.A, a), Distance(b.B, a)),
		)
	case a.Kind == KindSegment && b.Kind == KindArc:
		return segmentArcSeparation(a, b)
	default:
		return arcArcSeparation(a, b)
	}
}

func orient(a, b, c Point) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

func segmentsCross(a, b, c, d Point) bool {
	d1, d2 := orient(c, d, a), orient(c, d, b)
	d3, d4 := orient(a, b, c), orient(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func segmentArcSeparation(s, arc Generator) float64 {
	best := math.Min(
		math.Min(Distance(s.A, arc), Distance(s.B, arc)),
		math.Min(Distance(arc.A, s), Distance(arc.B, s)),
	)
	// the segment point nearest to the center
	foot := Closest(arc.Center, s)
	if arc.InSpan(foot) {
		best = math.Min(best, math.Abs(foot.Dist(arc.Center)-arc.Radius))
	}
	for _, p := range lineCircle(s.A, s.B, arc.Center, arc.Radius) {
		if arc.InSpan(p) {
			return 0
		}
	}
	return best
}

func arcArcSeparation(a, b Generator) float64 {
	best := math.Min(
		math.Min(Distance(a.A, b), Distance(a.B, b)),
		math.Min(Distance(b.A, a), Distance(b.B, a)),
	)
	axis := b.Center.Sub(a.Center)
	if axis.NormSq() > 0 {
		u := axis.Unit()
		for _, p := range []Point{a.Center.Add(u.Scale(a.Radius)), a.Center.Sub(u.Scale(a.Radius))} {
			if a.InSpan(p) && b.InSpan(p) {
				best = math.Min(best, math.Abs(p.Dist(b.Center)-b.Radius))
			}
		}
	}
	for _, p := range circleCircle(a.Center, a.Radius, b.Center, b.Radius) {
		if a.InSpan(p) && b.InSpan(p) {
			return 0
		}
	}
	return best
}

// lineCircle returns the crossings of segment p-q with a circle.
func lineCircle(p, q, c Point, r float64) []Point {
	d := q.Sub(p)
	f := p.Sub(c)
	a := d.NormSq()
	b := 2 * f.Dot(d)
	cc := f.NormSq() - r*r
	disc := b*b - 4*a*cc
	if disc < 0 || a == 0 {
		return nil
	}
	sq := math.Sqrt(disc)
	var out []Point
	for _, t := range []float64{(-b - sq) / (2 * a), (-b + sq) / (2 * a)} {
		if t >= 0 && t <= 1 {
			out = append(out, p.Add(d.Scale(t)))
		}
	}
	return out
}

func circleCircle(c1 Point, r1 float64, c2 Point, r2 float64) []Point {
	d := c1.Dist(c2)
	if d == 0 || d > r1+r2 || d < math.Abs(r1-r2) {
		return nil
	}
	a := (r1*r1 - r2*r2 + d*d) / (2 * d)
	h := math.Sqrt(math.Max(0, r1*r1-a*a))
	u := c2.Sub(c1).Scale(1 / d)
	m := c1.Add(u.Scale(a))
	return []Point{m.Add(u.Perp().Scale(h)), m.Sub(u.Perp().Scale(h))}
}
