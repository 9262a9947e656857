package bisector

import (
	"errors"
	"math"
	"testing"

	"github.com/0x0FACED/go-gvd/pkg/geom"
	"github.com/tdewolff/test"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-7 }

func mustSegment(a, b geom.Point) geom.Generator {
	g, err := geom.NewSegment(a, b)
	if err != nil {
		panic(err)
	}
	return g
}

func mustArc(start, end, center geom.Point) geom.Generator {
	g, err := geom.NewArc(start, end, center, true)
	if err != nil {
		panic(err)
	}
	return g
}

// equidistant samples the curve and checks points inside both generators'
// spans; it returns how many were checked.
func equidistant(t *testing.T, bs Bisector, a, b geom.Generator, s0, s1 float64) int {
	t.Helper()
	checked := 0
	for i := 0; i <= 40; i++ {
		s := s0 + (s1-s0)*float64(i)/40
		if !bs.Valid(s) {
			continue
		}
		x := bs.Point(s)
		da, db := geom.InteriorDistance(x, a), geom.InteriorDistance(x, b)
		if math.IsInf(da, 1) || math.IsInf(db, 1) {
			continue
		}
		test.T(t, near(da, db), true, x, da, db)
		test.T(t, near(bs.Clearance(s), da), true, s)
		checked++
	}
	return checked
}

var (
	upper = mustArc(geom.Pt(5, 0), geom.Pt(-5, 0), geom.Pt(0, 0)) // r=5, y >= 0
	floor = mustSegment(geom.Pt(-10, 0), geom.Pt(10, 0))
	roof  = mustSegment(geom.Pt(-10, 8), geom.Pt(10, 8))
)

func TestBisectorFamilies(t *testing.T) {
	var tts = []struct {
		name   string
		a, b   geom.Generator
		near   geom.Point
		kind   Kind
		s0, s1 float64
	}{
		{"point/point", geom.NewPoint(geom.Pt(0, 0)), geom.NewPoint(geom.Pt(4, 0)), geom.Pt(2, 1), Line, -5, 5},
		{"point/segment", geom.NewPoint(geom.Pt(0, 2)), floor, geom.Pt(0, 1), Parabola, -4, 4},
		{"endpoint/segment", geom.NewPoint(geom.Pt(10, 0)), floor, geom.Pt(10, 1), Line, 0, 5},
		{"segment/segment", floor, mustSegment(geom.Pt(-10, 4), geom.Pt(10, 4)), geom.Pt(5, 2), Line, -5, 5},
		{"point inside arc", geom.NewPoint(geom.Pt(0, 2)), upper, geom.Pt(0, 3.5), Ellipse, -math.Pi, math.Pi},
		{"point outside arc", geom.NewPoint(geom.Pt(0, 8)), upper, geom.Pt(0, 6.5), Hyperbola, -2, 2},
		{"arc endpoint", geom.NewPoint(geom.Pt(5, 0)), upper, geom.Pt(6, 0), Line, -3, 0},
		{"segment/arc", roof, upper, geom.Pt(0, 6.5), Parabola, -5, 5},
		{"nested arcs", upper, mustArc(geom.Pt(1, 1), geom.Pt(-1, 1), geom.Pt(0, 1)), geom.Pt(0, 3.5), Ellipse, -math.Pi, math.Pi},
		{"separate arcs", mustArc(geom.Pt(2, 0), geom.Pt(-2, 0), geom.Pt(0, 0)), mustArc(geom.Pt(13, 0), geom.Pt(7, 0), geom.Pt(10, 0)), geom.Pt(4.5, 0), Hyperbola, -1.5, 1.5},
	}
	for _, tt := range tts {
		t.Run(tt.name, func(t *testing.T) {
			bs, err := New(tt.a, tt.b, tt.near)
			test.T(t, err, nil)
			test.T(t, bs.Kind, tt.kind)
			kind, err := Classify(tt.b, tt.a, tt.near)
			test.T(t, err, nil)
			test.T(t, kind, tt.kind)
			test.T(t, near(bs.Residual(tt.near), 0), true, bs.Residual(tt.near))
			test.T(t, equidistant(t, bs, tt.a, tt.b, tt.s0, tt.s1) > 0, true)
		})
	}
}

func TestParamInvertsPoint(t *testing.T) {
	for _, g := range []struct {
		a, b geom.Generator
		near geom.Point
		s    float64
	}{
		{geom.NewPoint(geom.Pt(0, 0)), geom.NewPoint(geom.Pt(4, 0)), geom.Pt(2, 1), 1.5},
		{geom.NewPoint(geom.Pt(0, 2)), floor, geom.Pt(0, 1), -2.5},
		{geom.NewPoint(geom.Pt(0, 2)), upper, geom.Pt(0, 3.5), 2.9},
		{geom.NewPoint(geom.Pt(0, 8)), upper, geom.Pt(0, 6.5), 0.3},
	} {
		bs, err := New(g.a, g.b, g.near)
		test.T(t, err, nil)
		test.T(t, near(bs.Param(bs.Point(g.s)), g.s), true, bs.Kind)
	}
}

func TestHyperbolaDomain(t *testing.T) {
	bs, err := New(geom.NewPoint(geom.Pt(0, 8)), upper, geom.Pt(0, 6.5))
	test.T(t, err, nil)
	limit := math.Acos(-5.0 / 8.0)
	test.T(t, bs.Valid(limit-1e-3), true)
	test.T(t, bs.Valid(limit+1e-3), false)
	test.T(t, bs.Valid(math.NaN()), false)
}

func TestOffsetPoints(t *testing.T) {
	bs, err := New(geom.NewPoint(geom.Pt(0, 0)), geom.NewPoint(geom.Pt(4, 0)), geom.Pt(2, 1))
	test.T(t, err, nil)
	pts := bs.OffsetPoints(5)
	test.T(t, len(pts), 2)
	for _, p := range pts {
		test.T(t, near(p.X, 2), true)
		test.T(t, near(math.Abs(p.Y), math.Sqrt(21)), true)
	}
	test.T(t, bs.Param(pts[0]) < bs.Param(pts[1]), true)
	test.T(t, len(bs.OffsetPoints(1)), 0) // closer than half the gap

	par, err := New(geom.NewPoint(geom.Pt(0, 2)), floor, geom.Pt(0, 1))
	test.T(t, err, nil)
	pts = par.OffsetPoints(2)
	test.T(t, len(pts), 2)
	for _, p := range pts {
		test.T(t, near(p.Y, 2), true)
		test.T(t, near(math.Abs(p.X), 2), true)
	}

	hyp, err := New(geom.NewPoint(geom.Pt(0, 8)), upper, geom.Pt(0, 6.5))
	test.T(t, err, nil)
	for _, p := range hyp.OffsetPoints(3) {
		test.T(t, near(p.Dist(geom.Pt(0, 8)), 3), true)
		test.T(t, near(p.Norm()-5, 3), true)
	}
}

func TestDegenerateBisectors(t *testing.T) {
	p := geom.NewPoint(geom.Pt(1, 1))
	_, err := New(p, p, geom.Pt(0, 0))
	test.T(t, errors.Is(err, ErrDegenerate), true)

	_, err = New(floor, mustSegment(geom.Pt(-10, -3), geom.Pt(10, -3)), geom.Pt(0, 1))
	test.T(t, errors.Is(err, ErrDegenerate), true) // both lines seen from above

	_, err = Classify(p, p, geom.Pt(0, 0))
	test.T(t, errors.Is(err, ErrDegenerate), true)
}

func TestStraight(t *testing.T) {
	bs := Straight(geom.Pt(1, 1), geom.Pt(4, 5))
	test.T(t, bs.Kind, Line)
	test.T(t, near(bs.Param(geom.Pt(4, 5)), 5), true)
	test.T(t, bs.Point(2.5).Near(geom.Pt(2.5, 3), 1e-12), true)
	test.T(t, bs.Residual(geom.Pt(-3, 7)), 0.0)
}
