// Package bisector builds the curve of points equidistant from two generators.
//
// A generator is first reduced to a site: a point, a line seen from one side,
// or a circle seen from inside or outside. Which side applies is read off a
// point known to lie on the bisector. Every pair of sites then gives a line, a
// parabola or a focal conic, each with a monotone parameter.
package bisector

import (
	"errors"
	"fmt"
	"math"

	"github.com/0x0FACED/go-gvd/pkg/geom"
)

var ErrDegenerate = errors.New("degenerate bisector")

// Kind is the geometric family of a bisector.
type Kind int

const (
	Line Kind = iota
	Parabola
	Hyperbola
	Ellipse
)

func (k Kind) String() string {
	switch k {
	case Line:
		return "line"
	case Parabola:
		return "parabola"
	case Hyperbola:
		return "hyperbola"
	case Ellipse:
		return "ellipse"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

const relEps = 1e-12

type siteKind int

const (
	sitePoint siteKind = iota
	siteLine
	siteCircle
)

// site is the distance function of one generator near the bisector.
type site struct {
	kind siteKind
	p    geom.Point // point, line origin or circle center
	n    geom.Point // line normal, pointing to the bisector side
	r    float64
	sign float64 // circle: +1 seen from outside, -1 from inside
}

func (s site) dist(x geom.Point) float64 {
	switch s.kind {
	case siteLine:
		return s.n.Dot(x.Sub(s.p))
	case siteCircle:
		return s.sign * (x.Dist(s.p) - s.r)
	}
	return x.Dist(s.p)
}

func resolve(g geom.Generator, near, other geom.Point) site {
	switch g.Kind {
	case geom.KindSegment:
		n := g.Normal()
		side := n.Dot(near.Sub(g.A))
		if math.Abs(side) <= relEps*g.Length() {
			side = n.Dot(other.Sub(g.A))
		}
		if side < 0 {
			n = n.Scale(-1)
		}
		return site{kind: siteLine, p: g.A, n: n}
	case geom.KindArc:
		d := near.Dist(g.Center) - g.Radius
		if math.Abs(d) <= relEps*g.Radius {
			d = other.Dist(g.Center) - g.Radius
		}
		sign := 1.0
		if d < 0 {
			sign = -1
		}
		return site{kind: siteCircle, p: g.Center, r: g.Radius, sign: sign}
	}
	return site{kind: sitePoint, p: g.A}
}

// Bisector is a parametric curve. The zero value is not usable; build one
// with New.
type Bisector struct {
	Kind Kind

	a, b site

	// line: origin + s*dir
	origin, dir geom.Point

	// parabola: focus, directrix through origin along dir with normal
	// toward the focus at distance df
	focus, normal geom.Point
	df            float64

	// focal conic |x-f1| + sigma*|x-f2| = k, polar around f2 from axis
	f1, f2 geom.Point
	axis   geom.Point
	sigma  float64
	k      float64
	d      float64
}

// New returns the bisector of a and b passing through near. Near only has to
// be on the right side of each generator; it is not required to lie exactly
// on the curve.
func New(a, b geom.Generator, near geom.Point) (Bisector, error) {
	sa := resolve(a, near, b.Anchor())
	sb := resolve(b, near, a.Anchor())
	if sa.kind > sb.kind {
		sa, sb = sb, sa
	}
	bs := Bisector{a: sa, b: sb}
	scale := math.Max(1, math.Max(near.Norm(), math.Max(sa.p.Norm(), sb.p.Norm())))

	switch {
	case sa.kind == sitePoint && sb.kind == sitePoint:
		if sa.p.Near(sb.p, relEps*scale) {
			return Bisector{}, fmt.Errorf("points %v and %v coincide: %w", sa.p, sb.p, ErrDegenerate)
		}
		bs.line(sa.p.Lerp(sb.p, 0.5), sb.p.Sub(sa.p).Perp())

	case sa.kind == sitePoint && sb.kind == siteLine:
		h := sb.dist(sa.p)
		switch {
		case math.Abs(h) <= relEps*scale:
			bs.line(sa.p, sb.n)
		case h < 0:
			return Bisector{}, fmt.Errorf("point %v behind line: %w", sa.p, ErrDegenerate)
		default:
			bs.parabola(sa.p, sb.p, sb.n)
		}

	case sa.kind == sitePoint && sb.kind == siteCircle:
		dist := sa.p.Dist(sb.p)
		switch {
		case math.Abs(dist-sb.r) <= relEps*scale:
			bs.line(sa.p, sa.p.Sub(sb.p))
		case sb.sign > 0 && dist > sb.r:
			bs.conic(sb.p, sa.p, -1, sb.r)
		case sb.sign < 0 && dist < sb.r:
			bs.conic(sb.p, sa.p, 1, sb.r)
		default:
			return Bisector{}, fmt.Errorf("point %v on the wrong side of circle %v: %w", sa.p, sb.p, ErrDegenerate)
		}

	case sa.kind == siteLine && sb.kind == siteLine:
		m := sa.n.Sub(sb.n)
		if m.NormSq() <= relEps {
			return Bisector{}, fmt.Errorf("parallel lines facing the same way: %w", ErrDegenerate)
		}
		c := sa.n.Dot(sa.p) - sb.n.Dot(sb.p)
		origin := near.Add(m.Scale((c - m.Dot(near)) / m.NormSq()))
		bs.line(origin, m.Perp())

	case sa.kind == siteLine && sb.kind == siteCircle:
		n, o := sa.n, sa.p.Sub(sa.n.Scale(sb.r))
		if sb.sign < 0 {
			n, o = sa.n.Scale(-1), sa.p.Add(sa.n.Scale(sb.r))
		}
		if n.Dot(sb.p.Sub(o)) <= relEps*scale {
			return Bisector{}, fmt.Errorf("circle %v behind offset line: %w", sb.p, ErrDegenerate)
		}
		bs.parabola(sb.p, o, n)

	default: // circle, circle
		if sa.sign == sb.sign {
			f1, f2, k := sa.p, sb.p, sa.r-sb.r
			if k < 0 {
				f1, f2, k = f2, f1, -k
			}
			if k <= relEps*scale {
				if sa.p.Near(sb.p, relEps*scale) {
					return Bisector{}, fmt.Errorf("identical circles: %w", ErrDegenerate)
				}
				bs.line(sa.p.Lerp(sb.p, 0.5), sb.p.Sub(sa.p).Perp())
				break
			}
			bs.conic(f1, f2, -1, k)
		} else {
			bs.conic(sa.p, sb.p, 1, sa.r+sb.r)
		}
	}
	return bs, nil
}

// Straight is the segment p->q as a curve, parameterised by arc length from
// p. It bounds no pair of generators: Residual is zero everywhere and
// Clearance is the distance back to p.
func Straight(p, q geom.Point) Bisector {
	var bs Bisector
	bs.line(p, q.Sub(p))
	bs.a = site{kind: sitePoint, p: p}
	bs.b = bs.a
	return bs
}

// Classify reports the curve family of the bisector of a and b through near.
// It fails with ErrDegenerate where New does.
func Classify(a, b geom.Generator, near geom.Point) (Kind, error) {
	bs, err := New(a, b, near)
	if err != nil {
		return 0, err
	}
	return bs.Kind, nil
}

func (bs *Bisector) line(origin, dir geom.Point) {
	bs.Kind = Line
	bs.origin = origin
	bs.dir = dir.Unit()
}

// parabola with the given focus and directrix through o with normal n
// pointing toward the focus.
func (bs *Bisector) parabola(focus, o, n geom.Point) {
	n = n.Unit()
	bs.Kind = Parabola
	bs.focus = focus
	bs.normal = n
	bs.df = n.Dot(focus.Sub(o))
	bs.origin = focus.Sub(n.Scale(bs.df))
	bs.dir = n.Perp().Scale(-1)
}

func (bs *Bisector) conic(f1, f2 geom.Point, sigma, k float64) {
	bs.f1, bs.f2, bs.sigma, bs.k = f1, f2, sigma, k
	d := f1.Sub(f2)
	bs.d = d.Norm()
	bs.axis = geom.Pt(1, 0)
	if bs.d > 0 {
		bs.axis = d.Scale(1 / bs.d)
	}
	if math.Abs(k-bs.d) <= relEps*math.Max(1, k) {
		// the conic collapses onto its axis
		bs.line(f2, bs.axis.Scale(-1))
		return
	}
	bs.Kind = Hyperbola
	if sigma > 0 {
		bs.Kind = Ellipse
	}
}

func (bs Bisector) rho(beta float64) float64 {
	return (bs.k*bs.k - bs.d*bs.d) / (2 * (bs.sigma*bs.k - bs.d*math.Cos(beta)))
}

// Point evaluates the curve at parameter s.
func (bs Bisector) Point(s float64) geom.Point {
	switch bs.Kind {
	case Line:
		return bs.origin.Add(bs.dir.Scale(s))
	case Parabola:
		p := bs.origin.Add(bs.dir.Scale(s))
		return p.Add(bs.normal.Scale(p.Sub(bs.focus).NormSq() / (2 * bs.df)))
	}
	u := bs.axis.Rotate(s)
	return bs.f2.Add(u.Scale(bs.rho(s)))
}

// Param is the parameter of the curve point nearest to p. For conics it is
// the polar angle around the second focus, in (-pi, pi].
func (bs Bisector) Param(p geom.Point) float64 {
	switch bs.Kind {
	case Line, Parabola:
		return bs.dir.Dot(p.Sub(bs.origin))
	}
	v := p.Sub(bs.f2)
	return math.Atan2(bs.axis.Cross(v), bs.axis.Dot(v))
}

// Valid reports whether s is inside the parameter domain. Only hyperbolas
// restrict it, to the angles between their asymptotes.
func (bs Bisector) Valid(s float64) bool {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return false
	}
	if bs.Kind != Hyperbola {
		return true
	}
	return math.Abs(s) < math.Acos(-bs.k/bs.d)
}

// Sample returns n+1 points from s0 to s1.
func (bs Bisector) Sample(s0, s1 float64, n int) []geom.Point {
	if n < 1 {
		n = 1
	}
	out := make([]geom.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, bs.Point(s0+(s1-s0)*float64(i)/float64(n)))
	}
	return out
}

// Clearance is the distance from the curve point at s to either generator.
func (bs Bisector) Clearance(s float64) float64 {
	return bs.a.dist(bs.Point(s))
}

// Residual is the difference of the distances from x to both generators,
// zero on the curve.
func (bs Bisector) Residual(x geom.Point) float64 {
	return bs.a.dist(x) - bs.b.dist(x)
}
