// Package classify names vertices and edges of a generalized Voronoi diagram
// after the generators that define them. Both classifications are table
// lookups over generator kinds plus one geometric relation, so adding a
// generator kind means adding table rows rather than branches.
package classify

import (
	"fmt"

	"github.com/0x0FACED/go-gvd/pkg/bisector"
	"github.com/0x0FACED/go-gvd/pkg/geom"
)

type EdgeKind int

const (
	EdgeUnknown EdgeKind = iota
	E1                   // point / point: line
	E2                   // segment endpoint / segment: line
	E3                   // point / segment: parabola
	E4                   // segment / segment: line
	E5                   // point inside arc circle / arc: ellipse
	E6                   // point outside arc circle / arc: hyperbola
	E7                   // arc endpoint / arc: line
	E8                   // segment / arc: parabola
	E9                   // arc / arc, one circle inside the other: ellipse
	E10                  // arc / arc otherwise: hyperbola
	EdgeOuter            // bounds the outer face
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeUnknown:
		return "unknown"
	case EdgeOuter:
		return "outer"
	}
	if k >= E1 && k <= E10 {
		return fmt.Sprintf("E%d", int(k))
	}
	return fmt.Sprintf("EdgeKind(%d)", int(k))
}

type VertexKind int

const (
	VertexUnknown VertexKind = iota
	V1                       // three points
	V2                       // two points and a curve, a point is one of its endpoints
	V3                       // two points and a curve
	V4                       // one point and two curves, the point is an endpoint
	V5                       // one point and two curves
	V6                       // three curves
	VertexOuter              // on the outer face
)

func (k VertexKind) String() string {
	switch k {
	case VertexUnknown:
		return "unknown"
	case VertexOuter:
		return "outer"
	}
	if k >= V1 && k <= V6 {
		return fmt.Sprintf("V%d", int(k))
	}
	return fmt.Sprintf("VertexKind(%d)", int(k))
}

// Relation is the geometric fact that, next to the kinds, decides an edge
// type.
type Relation int

const (
	None      Relation = iota
	Endpoint           // the point is an endpoint of the curve
	Inside             // the point is strictly inside the arc's circle
	Outside            // the point is on or outside the arc's circle
	Contained          // one arc circle lies inside the other
	Separate           // arc circles overlap or are disjoint
)

func (r Relation) String() string {
	switch r {
	case None:
		return "none"
	case Endpoint:
		return "endpoint"
	case Inside:
		return "inside"
	case Outside:
		return "outside"
	case Contained:
		return "contained"
	case Separate:
		return "separate"
	}
	return fmt.Sprintf("Relation(%d)", int(r))
}

// Relate computes the relation between two generators. It is symmetric.
func Relate(a, b geom.Generator) Relation {
	if a.Kind > b.Kind {
		a, b = b, a
	}
	switch {
	case a.Kind == geom.KindPoint && b.IsCurve():
		if b.IsEndpoint(a) {
			return Endpoint
		}
		if b.Kind == geom.KindArc {
			if a.A.Dist(b.Center) < b.Radius {
				return Inside
			}
			return Outside
		}
	case a.Kind == geom.KindArc && b.Kind == geom.KindArc:
		d := a.Center.Dist(b.Center)
		if d+a.Radius <= b.Radius || d+b.Radius <= a.Radius {
			return Contained
		}
		return Separate
	}
	return None
}

type edgeKey struct {
	lo, hi geom.Kind
	rel    Relation
}

var edgeTable = map[edgeKey]EdgeKind{
	{geom.KindPoint, geom.KindPoint, None}:       E1,
	{geom.KindPoint, geom.KindSegment, Endpoint}: E2,
	{geom.KindPoint, geom.KindSegment, None}:     E3,
	{geom.KindSegment, geom.KindSegment, None}:   E4,
	{geom.KindPoint, geom.KindArc, Inside}:       E5,
	{geom.KindPoint, geom.KindArc, Outside}:      E6,
	{geom.KindPoint, geom.KindArc, Endpoint}:     E7,
	{geom.KindSegment, geom.KindArc, None}:       E8,
	{geom.KindArc, geom.KindArc, Contained}:      E9,
	{geom.KindArc, geom.KindArc, Separate}:       E10,
}

// EdgeType classifies the Voronoi edge separating the faces of a and b.
// EdgeType(a, b) == EdgeType(b, a).
func EdgeType(a, b geom.Generator) EdgeKind {
	lo, hi := a.Kind, b.Kind
	if lo > hi {
		lo, hi = hi, lo
	}
	if k, ok := edgeTable[edgeKey{lo, hi, Relate(a, b)}]; ok {
		return k
	}
	return EdgeUnknown
}

type vertexKey struct {
	points, curves int
	endpoint       bool
}

var vertexTable = map[vertexKey]VertexKind{
	{3, 0, false}: V1,
	{2, 1, true}:  V2,
	{2, 1, false}: V3,
	{1, 2, true}:  V4,
	{1, 2, false}: V5,
	{0, 3, false}: V6,
}

// VertexType classifies a vertex equidistant from three generators. Arcs
// count as curves together with segments.
func VertexType(a, b, c geom.Generator) VertexKind {
	gens := [3]geom.Generator{a, b, c}
	var key vertexKey
	for i, g := range gens {
		if g.IsCurve() {
			key.curves++
			continue
		}
		key.points++
		for j, h := range gens {
			if i != j && h.IsEndpoint(g) {
				key.endpoint = true
			}
		}
	}
	if k, ok := vertexTable[key]; ok {
		return k
	}
	return VertexUnknown
}

// Curve is the bisector shape an edge of this kind normally has.
func (k EdgeKind) Curve() bisector.Kind {
	switch k {
	case E3, E8:
		return bisector.Parabola
	case E5, E9:
		return bisector.Ellipse
	case E6, E10:
		return bisector.Hyperbola
	}
	return bisector.Line
}
