package voronoi

import (
	"github.com/0x0FACED/go-gvd/pkg/classify"
	"github.com/0x0FACED/go-gvd/pkg/geom"
)

// BoundingBox is a viewport, Yt being the smaller y.
type BoundingBox struct {
	Xl, Xr, Yt, Yb float64
}

func NewBoundingBox(xl, xr, yt, yb float64) BoundingBox {
	return BoundingBox{xl, xr, yt, yb}
}

// clipSegment cuts a-b down to the part inside bbox (Liang-Barsky). It
// reports false when nothing is left.
func clipSegment(a, b geom.Point, bbox BoundingBox) (geom.Point, geom.Point, bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := b.X-a.X, b.Y-a.Y

	// p < 0 enters the box, p > 0 leaves it
	for _, side := range [4][2]float64{
		{-dx, a.X - bbox.Xl}, // left
		{dx, bbox.Xr - a.X},  // right
		{-dy, a.Y - bbox.Yt}, // top
		{dy, bbox.Yb - a.Y},  // bottom
	} {
		p, q := side[0], side[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return a, b, false
			} else if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return a, b, false
			} else if r < t1 {
				t1 = r
			}
		}
	}

	ca, cb := a, b
	if t0 > 0 {
		ca = geom.Pt(a.X+t0*dx, a.Y+t0*dy)
	}
	if t1 < 1 {
		cb = geom.Pt(a.X+t1*dx, a.Y+t1*dy)
	}
	return ca, cb, !ca.Near(cb, 1e-9)
}

// Clip splits a polyline into the runs that lie inside bbox.
func (bbox BoundingBox) Clip(pts []geom.Point) [][]geom.Point {
	var out [][]geom.Point
	var run []geom.Point
	for i := 0; i+1 < len(pts); i++ {
		a, b, ok := clipSegment(pts[i], pts[i+1], bbox)
		if !ok {
			if len(run) > 0 {
				out = append(out, run)
				run = nil
			}
			continue
		}
		if len(run) == 0 || run[len(run)-1] != a {
			if len(run) > 0 {
				out = append(out, run)
			}
			run = []geom.Point{a}
		}
		run = append(run, b)
		if b != pts[i+1] {
			out = append(out, run)
			run = nil
		}
	}
	if len(run) > 0 {
		out = append(out, run)
	}
	return out
}

// ClippedEdges samples every edge except the outer rim with n segments and
// cuts the polylines to bbox.
func (d *Diagram) ClippedEdges(bbox BoundingBox, n int) [][]geom.Point {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out [][]geom.Point
	for _, e := range d.edges() {
		if d.g.Edge(e).Data.kind == classify.EdgeOuter {
			continue
		}
		out = append(out, bbox.Clip(d.polyline(e, n))...)
	}
	return out
}
