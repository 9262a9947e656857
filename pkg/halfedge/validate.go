package halfedge

import (
	"fmt"

	"go.uber.org/multierr"
)

// maxReported caps the number of problems Validate collects.
const maxReported = 32

// Validate checks the structural invariants of the graph and returns every
// violation it finds, combined with multierr:
//
//   - twin(twin(e)) == e and the two sides of an edge bound different faces;
//   - origin(next(e)) == target(e) and next(e) bounds the same face;
//   - each face boundary is one closed cycle;
//   - a vertex's stored half-edge leaves that vertex;
//   - V - E + F == 2 once the graph has edges.
func (g *Graph[V, E, F]) Validate() error {
	var err error
	n := 0
	report := func(format string, args ...any) {
		if n < maxReported {
			err = multierr.Append(err, fmt.Errorf(format, args...))
		}
		n++
	}

	perFace := make(map[FaceID]int)
	for i := range g.edges {
		e := EdgeID(i)
		if !g.edges[e].alive {
			continue
		}
		he := g.edges[e]
		if !g.IsVertex(he.Origin) {
			report("half-edge %d: dead origin %d", e, he.Origin)
		}
		if !g.IsEdge(he.Twin) || g.edges[he.Twin].Twin != e {
			report("half-edge %d: twin %d is not symmetric", e, he.Twin)
			continue
		}
		if !g.IsFace(he.Face) {
			report("half-edge %d: dead face %d", e, he.Face)
		} else {
			perFace[he.Face]++
		}
		if he.Face == g.edges[he.Twin].Face {
			report("half-edge %d: both sides bound face %d", e, he.Face)
		}
		if !g.IsEdge(he.Next) {
			report("half-edge %d: next %d is not live", e, he.Next)
			continue
		}
		if g.edges[he.Next].Origin != g.Target(e) {
			report("half-edge %d: next %d starts at %d, want %d", e, he.Next, g.edges[he.Next].Origin, g.Target(e))
		}
		if g.edges[he.Next].Face != he.Face {
			report("half-edge %d: next %d bounds face %d, want %d", e, he.Next, g.edges[he.Next].Face, he.Face)
		}
	}

	for i := range g.faces {
		f := FaceID(i)
		if !g.faces[f].alive {
			continue
		}
		start := g.faces[f].Edge
		if start == NoEdge {
			if g.liveEdges > 0 {
				report("face %d: no boundary", f)
			}
			continue
		}
		if !g.IsEdge(start) || g.edges[start].Face != f {
			report("face %d: stored half-edge %d does not bound it", f, start)
			continue
		}
		length, closed := 0, false
		for cur := start; length <= len(g.edges); {
			length++
			cur = g.edges[cur].Next
			if !g.IsEdge(cur) {
				break
			}
			if cur == start {
				closed = true
				break
			}
		}
		switch {
		case !closed:
			report("face %d: boundary does not close", f)
		case length != perFace[f]:
			report("face %d: cycle has %d half-edges, face has %d", f, length, perFace[f])
		}
	}

	for i := range g.vertices {
		v := VertexID(i)
		if !g.vertices[v].alive || g.vertices[v].Edge == NoEdge {
			continue
		}
		e := g.vertices[v].Edge
		if !g.IsEdge(e) || g.edges[e].Origin != v {
			report("vertex %d: stored half-edge %d does not leave it", v, e)
		}
	}

	if g.liveEdges > 0 {
		if euler := g.liveVertices - g.liveEdges/2 + g.liveFaces; euler != 2 {
			report("euler characteristic %d, want 2 (V=%d E=%d F=%d)", euler, g.liveVertices, g.liveEdges/2, g.liveFaces)
		}
	}

	if n > maxReported {
		err = multierr.Append(err, fmt.Errorf("%d more problems", n-maxReported))
	}
	return err
}
