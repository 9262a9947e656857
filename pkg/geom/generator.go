package geom

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidGenerator = errors.New("invalid generator")

// Kind is the closed set of generator shapes.
type Kind int

const (
	KindPoint Kind = iota
	KindSegment
	KindArc
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindSegment:
		return "segment"
	case KindArc:
		return "arc"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Generator is a point, a line segment A->B, or a circular arc from A to B
// around Center (counterclockwise when CCW is set). Generators are values and
// are never modified after construction.
type Generator struct {
	Kind   Kind
	A, B   Point
	Center Point
	Radius float64
	CCW    bool
}

func NewPoint(p Point) Generator {
	return Generator{Kind: KindPoint, A: p, B: p}
}

func NewSegment(a, b Point) (Generator, error) {
	if !a.IsFinite() || !b.IsFinite() {
		return Generator{}, fmt.Errorf("segment %v-%v: non-finite coordinate: %w", a, b, ErrInvalidGenerator)
	}
	if a == b {
		return Generator{}, fmt.Errorf("segment %v-%v: zero length: %w", a, b, ErrInvalidGenerator)
	}
	return Generator{Kind: KindSegment, A: a, B: b}, nil
}

// NewArc builds an arc from start to end around center. The radius is taken
// from start; end must lie on the same circle within a relative 1e-9.
func NewArc(start, end, center Point, ccw bool) (Generator, error) {
	r := start.Dist(center)
	if r == 0 || !start.IsFinite() || !end.IsFinite() || !center.IsFinite() {
		return Generator{}, fmt.Errorf("arc around %v: degenerate radius: %w", center, ErrInvalidGenerator)
	}
	if math.Abs(end.Dist(center)-r) > 1e-9*r {
		return Generator{}, fmt.Errorf("arc around %v: endpoints not on one circle: %w", center, ErrInvalidGenerator)
	}
	if start == end {
		return Generator{}, fmt.Errorf("arc around %v: start equals end: %w", center, ErrInvalidGenerator)
	}
	return Generator{Kind: KindArc, A: start, B: end, Center: center, Radius: r, CCW: ccw}, nil
}

func (g Generator) String() string {
	switch g.Kind {
	case KindPoint:
		return fmt.Sprintf("point%v", g.A)
	case KindSegment:
		return fmt.Sprintf("segment%v-%v", g.A, g.B)
	default:
		dir := "cw"
		if g.CCW {
			dir = "ccw"
		}
		return fmt.Sprintf("arc%v-%v c=%v r=%.6g %s", g.A, g.B, g.Center, g.Radius, dir)
	}
}

// IsCurve reports whether g is a segment or an arc.
func (g Generator) IsCurve() bool { return g.Kind != KindPoint }

// IsEndpoint reports whether the point generator p is an endpoint of curve g.
func (g Generator) IsEndpoint(p Generator) bool {
	return g.IsCurve() && p.Kind == KindPoint && (p.A == g.A || p.A == g.B)
}

// Endpoints returns the two endpoint generators of a curve.
func (g Generator) Endpoints() (Generator, Generator) {
	return NewPoint(g.A), NewPoint(g.B)
}

// Anchor is a point on the generator used to seed nearest searches.
func (g Generator) Anchor() Point {
	switch g.Kind {
	case KindSegment:
		return g.A.Lerp(g.B, 0.5)
	case KindArc:
		mid := g.startDir().Rotate(g.Sweep() / 2)
		if !g.CCW {
			mid = g.startDir().Rotate(-g.Sweep() / 2)
		}
		return g.Center.Add(mid.Scale(g.Radius))
	}
	return g.A
}

// Dir is the unit direction A->B of a segment.
func (g Generator) Dir() Point { return g.B.Sub(g.A).Unit() }

// Normal is the left normal of a segment.
func (g Generator) Normal() Point { return g.Dir().Perp() }

// Length of a segment.
func (g Generator) Length() float64 { return g.B.Dist(g.A) }

func (g Generator) startDir() Point { return g.A.Sub(g.Center).Scale(1 / g.Radius) }

// Sweep is the angular extent of an arc in (0, 2pi).
func (g Generator) Sweep() float64 {
	s, e := g.A.Sub(g.Center), g.B.Sub(g.Center)
	if g.CCW {
		return ccwAngle(s, e)
	}
	return ccwAngle(e, s)
}

// InSpan reports whether x lies in the region R3 of the generator: the
// perpendicular strip of a segment or the angular wedge of an arc.
func (g Generator) InSpan(x Point) bool {
	switch g.Kind {
	case KindSegment:
		d := g.B.Sub(g.A)
		t := x.Sub(g.A).Dot(d) / d.NormSq()
		return t >= 0 && t <= 1
	case KindArc:
		v := x.Sub(g.Center)
		if v.NormSq() == 0 {
			return true
		}
		if g.CCW {
			return ccwAngle(g.A.Sub(g.Center), v) <= g.Sweep()
		}
		return ccwAngle(g.B.Sub(g.Center), v) <= g.Sweep()
	}
	return true
}

// Distance from x to the generator. Segments use the three regions R1/R2/R3
// (endpoint half planes and the perpendicular strip), arcs use |dist(x,c)-r|
// inside their wedge and the nearer endpoint outside it.
func Distance(x Point, g Generator) float64 {
	switch g.Kind {
	case KindSegment:
		d := g.B.Sub(g.A)
		t := x.Sub(g.A).Dot(d) / d.NormSq()
		if t <= 0 {
			return x.Dist(g.A)
		}
		if t >= 1 {
			return x.Dist(g.B)
		}
		return math.Abs(x.Sub(g.A).Cross(d)) / math.Sqrt(d.NormSq())
	case KindArc:
		if g.InSpan(x) {
			return math.Abs(x.Dist(g.Center) - g.Radius)
		}
		return math.Min(x.Dist(g.A), x.Dist(g.B))
	}
	return x.Dist(g.A)
}

// InteriorDistance is the distance to the open interior of a curve generator,
// +Inf outside its span. For points it equals Distance.
func InteriorDistance(x Point, g Generator) float64 {
	if g.Kind == KindPoint {
		return x.Dist(g.A)
	}
	if !g.InSpan(x) {
		return math.Inf(1)
	}
	return Distance(x, g)
}

// Closest returns the point of g nearest to x.
func Closest(x Point, g Generator) Point {
	switch g.Kind {
	case KindSegment:
		d := g.B.Sub(g.A)
		t := x.Sub(g.A).Dot(d) / d.NormSq()
		t = math.Max(0, math.Min(1, t))
		return g.A.Add(d.Scale(t))
	case KindArc:
		if g.InSpan(x) {
			v := x.Sub(g.Center)
			if v.NormSq() == 0 {
				return g.A
			}
			return g.Center.Add(v.Unit().Scale(g.Radius))
		}
		if x.Dist(g.A) <= x.Dist(g.B) {
			return g.A
		}
		return g.B
	}
	return g.A
}

// Bounds is the bounding box of the generator.
func (g Generator) Bounds() Box {
	switch g.Kind {
	case KindSegment:
		return boxOf(g.A, g.B)
	case KindArc:
		pts := []Point{g.A, g.B}
		for _, d := range []Point{{1, 0}, {0, 1}, {-1, 0}, {0, -1}} {
			p := g.Center.Add(d.Scale(g.Radius))
			if g.InSpan(p) {
				pts = append(pts, p)
			}
		}
		return boxOf(pts...)
	}
	return boxOf(g.A)
}

// Sample returns n+1 points along the generator, used for rendering.
func (g Generator) Sample(n int) []Point {
	if n < 1 {
		n = 1
	}
	switch g.Kind {
	case KindSegment:
		return []Point{g.A, g.B}
	case KindArc:
		out := make([]Point, 0, n+1)
		sweep := g.Sweep()
		if !g.CCW {
			sweep = -sweep
		}
		for i := 0; i <= n; i++ {
			out = append(out, g.Center.Add(g.startDir().Rotate(sweep*float64(i)/float64(n)).Scale(g.Radius)))
		}
		return out
	}
	return []Point{g.A}
}
