package geom

import (
	"fmt"
	"math"
)

// Point is a position or a vector in the plane.
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{x, y} }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }

// Cross is the z component of the 3D cross product, positive when q is
// counterclockwise from p.
func (p Point) Cross(q Point) float64 { return p.X*q.Y - p.Y*q.X }

func (p Point) NormSq() float64 { return p.X*p.X + p.Y*p.Y }
func (p Point) Norm() float64 { return math.Hypot(p.X, p.Y) }
func (p Point) Dist(q Point) float64 { return p.Sub(q).Norm() }

// Lerp interpolates linearly: t=0 gives p, t=1 gives q.
func (p Point) Lerp(q Point, t float64) Point { return p.Add(q.Sub(p).Scale(t)) }

// Perp rotates p by +90 degrees.
func (p Point) Perp() Point { return Point{-p.Y, p.X} }

// Unit returns p scaled to length 1, or the zero point for a zero vector.
func (p Point) Unit() Point {
	n := p.Norm()
	if n == 0 {
		return Point{}
	}
	return p.Scale(1 / n)
}

// Rotate rotates p counterclockwise by angle radians.
func (p Point) Rotate(angle float64) Point {
	s, c := math.Sincos(angle)
	return Point{c*p.X - s*p.Y, s*p.X + c*p.Y}
}

// Near compares coordinate by coordinate.
func (p Point) Near(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// IsFinite is false for NaN and infinite coordinates.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func (p Point) String() string {
	return fmt.Sprintf("(%.6g, %.6g)", p.X, p.Y)
}

// ccwAngle is the counterclockwise angle from u to v in [0, 2pi).
func ccwAngle(u, v Point) float64 {
	a := math.Atan2(u.Cross(v), u.Dot(v))
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// Box is an axis aligned bounding box.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

func boxOf(pts ...Point) Box {
	b := Box{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, p := range pts {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

// DistToPoint is the euclidean distance from the box to p (zero inside).
func (b Box) DistToPoint(p Point) float64 {
	dx := math.Max(0, math.Max(b.MinX-p.X, p.X-b.MaxX))
	dy := math.Max(0, math.Max(b.MinY-p.Y, p.Y-b.MaxY))
	return math.Hypot(dx, dy)
}
