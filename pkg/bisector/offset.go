package bisector

import (
	"math"
	"sort"

	"github.com/0x0FACED/go-gvd/pkg/geom"
)

// offset is the set of points at distance t from a site: a circle around a
// point, a line shifted along its normal, or a circle of radius r+sign*t.
type offset struct {
	circle bool
	c      geom.Point
	r      float64
	// line n.x = w
	n geom.Point
	w float64
}

func (s site) offset(t float64) offset {
	switch s.kind {
	case siteLine:
		return offset{n: s.n, w: s.n.Dot(s.p) + t}
	case siteCircle:
		return offset{circle: true, c: s.p, r: s.r + s.sign*t}
	}
	return offset{circle: true, c: s.p, r: t}
}

// OffsetPoints returns the points of the bisector at clearance t, the two
// branches of x = x1 - x2 - x3*t +/- x4*sqrt((x5+x6*t)^2 - (x7+x8*t)^2).
// They are computed as the intersection of both generators' offsets and
// ordered by curve parameter. Fewer than two points come back when the
// offsets touch or miss.
func (bs Bisector) OffsetPoints(t float64) []geom.Point {
	if t < 0 {
		return nil
	}
	oa, ob := bs.a.offset(t), bs.b.offset(t)
	var pts []geom.Point
	switch {
	case oa.circle && ob.circle:
		pts = circleCircle(oa.c, oa.r, ob.c, ob.r)
	case oa.circle:
		pts = lineCircle(ob.n, ob.w, oa.c, oa.r)
	case ob.circle:
		pts = lineCircle(oa.n, oa.w, ob.c, ob.r)
	default:
		if p, ok := lineLine(oa.n, oa.w, ob.n, ob.w); ok {
			pts = []geom.Point{p}
		}
	}
	// keep the points at clearance t from both sites
	out := pts[:0]
	for _, p := range pts {
		if math.Abs(bs.a.dist(p)-t) <= 1e-9*math.Max(1, t) && math.Abs(bs.b.dist(p)-t) <= 1e-9*math.Max(1, t) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return bs.Param(out[i]) < bs.Param(out[j]) })
	return out
}

func circleCircle(c1 geom.Point, r1 float64, c2 geom.Point, r2 float64) []geom.Point {
	if r1 < 0 || r2 < 0 {
		return nil
	}
	d := c1.Dist(c2)
	if d == 0 || d > r1+r2 || d < math.Abs(r1-r2) {
		return nil
	}
	a := (r1*r1 - r2*r2 + d*d) / (2 * d)
	h := math.Sqrt(math.Max(0, r1*r1-a*a))
	u := c2.Sub(c1).Scale(1 / d)
	m := c1.Add(u.Scale(a))
	if h == 0 {
		return []geom.Point{m}
	}
	return []geom.Point{m.Add(u.Perp().Scale(h)), m.Sub(u.Perp().Scale(h))}
}

// lineCircle intersects the line n.x = w (unit n) with a circle.
func lineCircle(n geom.Point, w float64, c geom.Point, r float64) []geom.Point {
	if r < 0 {
		return nil
	}
	dist := w - n.Dot(c)
	if math.Abs(dist) > r {
		return nil
	}
	foot := c.Add(n.Scale(dist))
	h := math.Sqrt(math.Max(0, r*r-dist*dist))
	if h == 0 {
		return []geom.Point{foot}
	}
	return []geom.Point{foot.Add(n.Perp().Scale(h)), foot.Sub(n.Perp().Scale(h))}
}

func lineLine(n1 geom.Point, w1 float64, n2 geom.Point, w2 float64) (geom.Point, bool) {
	det := n1.Cross(n2)
	if math.Abs(det) < relEps {
		return geom.Point{}, false
	}
	return geom.Pt((w1*n2.Y-w2*n1.Y)/det, (n1.X*w2-n2.X*w1)/det), true
}
