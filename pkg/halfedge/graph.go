// Package halfedge is an arena based half-edge graph. Vertices, half-edges and
// faces live in slices and refer to each other by integer ids, so the cyclic
// next/twin references cost nothing. Ids are never reused: removed elements
// stay in the arena as tombstones.
//
// The graph knows positions and status flags but never evaluates geometry;
// callers attach their own payload through the V, E and F type parameters.
package halfedge

import (
	"fmt"

	"github.com/0x0FACED/go-gvd/pkg/geom"
)

// Ids index the arenas of a Graph.
type (
	VertexID int
	EdgeID   int
	FaceID   int
)

// No* stand for a missing element.
const (
	NoVertex VertexID = -1
	NoEdge   EdgeID   = -1
	NoFace   FaceID   = -1
)

// VertexStatus marks a vertex relative to the generator being inserted.
type VertexStatus int

const (
	Undecided VertexStatus = iota
	In
	Out
	New
)

func (s VertexStatus) String() string {
	switch s {
	case Undecided:
		return "undecided"
	case In:
		return "in"
	case Out:
		return "out"
	case New:
		return "new"
	}
	return fmt.Sprintf("VertexStatus(%d)", int(s))
}

// FaceStatus marks whether a face touches the current conflict zone.
type FaceStatus int

const (
	NonIncident FaceStatus = iota
	Incident
)

// Vertex is a node of the graph. Edge is NoEdge for an isolated vertex.
type Vertex[V any] struct {
	Pos    geom.Point
	Status VertexStatus
	Edge   EdgeID // one outgoing half-edge
	Data   V
	alive  bool
}

// Edge is one half of an undirected edge; Face lies to its left.
type Edge[E any] struct {
	Origin VertexID
	Next   EdgeID // next half-edge counterclockwise around Face
	Twin   EdgeID
	Face   FaceID
	Data   E
	alive  bool
}

// Face is a region of the subdivision, bounded by the cycle through Edge.
type Face[F any] struct {
	Edge   EdgeID // one boundary half-edge
	Status FaceStatus
	Data   F
	alive  bool
}

// Graph owns the three arenas. The zero value is not usable; call NewGraph.
type Graph[V, E, F any] struct {
	vertices []Vertex[V]
	edges    []Edge[E]
	faces    []Face[F]

	liveVertices int
	liveEdges    int
	liveFaces    int
}

// NewGraph returns an empty graph.
func NewGraph[V, E, F any]() *Graph[V, E, F] {
	return &Graph[V, E, F]{}
}

// Clone returns an independent copy of the graph. Payloads are copied by
// value.
func (g *Graph[V, E, F]) Clone() *Graph[V, E, F] {
	c := *g
	c.vertices = append([]Vertex[V](nil), g.vertices...)
	c.edges = append([]Edge[E](nil), g.edges...)
	c.faces = append([]Face[F](nil), g.faces...)
	return &c
}

// AddVertex adds an isolated vertex.
func (g *Graph[V, E, F]) AddVertex(pos geom.Point, status VertexStatus) VertexID {
	g.vertices = append(g.vertices, Vertex[V]{Pos: pos, Status: status, Edge: NoEdge, alive: true})
	g.liveVertices++
	return VertexID(len(g.vertices) - 1)
}

// AddFace adds a face with no boundary yet.
func (g *Graph[V, E, F]) AddFace(status FaceStatus) FaceID {
	g.faces = append(g.faces, Face[F]{Edge: NoEdge, Status: status, alive: true})
	g.liveFaces++
	return FaceID(len(g.faces) - 1)
}

// AddEdgePair creates the half-edge a->b bounding left and its twin b->a
// bounding right. Next pointers are left unset; use SetNext to close cycles.
func (g *Graph[V, E, F]) AddEdgePair(a, b VertexID, left, right FaceID) (EdgeID, EdgeID) {
	e := EdgeID(len(g.edges))
	t := e + 1
	g.edges = append(g.edges,
		Edge[E]{Origin: a, Next: NoEdge, Twin: t, Face: left, alive: true},
		Edge[E]{Origin: b, Next: NoEdge, Twin: e, Face: right, alive: true},
	)
	g.liveEdges += 2
	if g.vertices[a].Edge == NoEdge {
		g.vertices[a].Edge = e
	}
	if g.vertices[b].Edge == NoEdge {
		g.vertices[b].Edge = t
	}
	if left != NoFace && g.faces[left].Edge == NoEdge {
		g.faces[left].Edge = e
	}
	if right != NoFace && g.faces[right].Edge == NoEdge {
		g.faces[right].Edge = t
	}
	return e, t
}

// SetNext links e -> next. Both must bound the same face and next must start
// where e ends.
func (g *Graph[V, E, F]) SetNext(e, next EdgeID) error {
	if !g.IsEdge(e) || !g.IsEdge(next) {
		return violation("SetNext", "unknown half-edge %d or %d", e, next)
	}
	if g.edges[e].Face != g.edges[next].Face {
		return violation("SetNext", "half-edges %d and %d bound faces %d and %d", e, next, g.edges[e].Face, g.edges[next].Face)
	}
	if g.Target(e) != g.edges[next].Origin {
		return violation("SetNext", "half-edge %d ends at %d but %d starts at %d", e, g.Target(e), next, g.edges[next].Origin)
	}
	g.edges[e].Next = next
	return nil
}

// IsVertex reports whether v is in range and not removed.
func (g *Graph[V, E, F]) IsVertex(v VertexID) bool {
	return v >= 0 && int(v) < len(g.vertices) && g.vertices[v].alive
}

func (g *Graph[V, E, F]) IsEdge(e EdgeID) bool {
	return e >= 0 && int(e) < len(g.edges) && g.edges[e].alive
}

func (g *Graph[V, E, F]) IsFace(f FaceID) bool {
	return f >= 0 && int(f) < len(g.faces) && g.faces[f].alive
}

// Vertex, Edge and Face return pointers into the arenas; they are invalidated
// by any call that adds elements.
func (g *Graph[V, E, F]) Vertex(v VertexID) *Vertex[V] { return &g.vertices[v] }
func (g *Graph[V, E, F]) Edge(e EdgeID) *Edge[E] { return &g.edges[e] }
func (g *Graph[V, E, F]) Face(f FaceID) *Face[F] { return &g.faces[f] }

func (g *Graph[V, E, F]) Twin(e EdgeID) EdgeID { return g.edges[e].Twin }
func (g *Graph[V, E, F]) Next(e EdgeID) EdgeID { return g.edges[e].Next }
func (g *Graph[V, E, F]) Origin(e EdgeID) VertexID { return g.edges[e].Origin }
func (g *Graph[V, E, F]) Target(e EdgeID) VertexID { return g.edges[g.edges[e].Twin].Origin }
func (g *Graph[V, E, F]) FaceOf(e EdgeID) FaceID { return g.edges[e].Face }

// Prev walks the face cycle of e to find the half-edge whose next is e.
func (g *Graph[V, E, F]) Prev(e EdgeID) EdgeID {
	cur := e
	for i := 0; i < len(g.edges); i++ {
		n := g.edges[cur].Next
		if n == e {
			return cur
		}
		if n == NoEdge {
			break
		}
		cur = n
	}
	return NoEdge
}

// OutEdges lists the half-edges leaving v, rotating around the vertex.
func (g *Graph[V, E, F]) OutEdges(v VertexID) []EdgeID {
	start := g.vertices[v].Edge
	if start == NoEdge {
		return nil
	}
	var out []EdgeID
	e := start
	for i := 0; i < len(g.edges); i++ {
		out = append(out, e)
		e = g.edges[g.edges[e].Twin].Next
		if e == start || e == NoEdge {
			break
		}
	}
	return out
}

// FaceBoundary lists the half-edges of the face cycle, starting at the face's
// stored edge.
func (g *Graph[V, E, F]) FaceBoundary(f FaceID) []EdgeID {
	start := g.faces[f].Edge
	if start == NoEdge {
		return nil
	}
	var out []EdgeID
	e := start
	for i := 0; i < len(g.edges); i++ {
		out = append(out, e)
		e = g.edges[e].Next
		if e == start || e == NoEdge {
			break
		}
	}
	return out
}

// FaceVertices lists the origins of the face boundary half-edges.
func (g *Graph[V, E, F]) FaceVertices(f FaceID) []VertexID {
	edges := g.FaceBoundary(f)
	out := make([]VertexID, len(edges))
	for i, e := range edges {
		out[i] = g.edges[e].Origin
	}
	return out
}

// AdjacentFaces lists the faces around v.
func (g *Graph[V, E, F]) AdjacentFaces(v VertexID) []FaceID {
	var out []FaceID
	for _, e := range g.OutEdges(v) {
		out = append(out, g.edges[e].Face)
	}
	return out
}

// Vertices lists live vertices in id order.
func (g *Graph[V, E, F]) Vertices() []VertexID {
	out := make([]VertexID, 0, g.liveVertices)
	for i := range g.vertices {
		if g.vertices[i].alive {
			out = append(out, VertexID(i))
		}
	}
	return out
}

// Edges lists live half-edges.
func (g *Graph[V, E, F]) Edges() []EdgeID {
	out := make([]EdgeID, 0, g.liveEdges)
	for i := range g.edges {
		if g.edges[i].alive {
			out = append(out, EdgeID(i))
		}
	}
	return out
}

// Faces lists live faces in id order.
func (g *Graph[V, E, F]) Faces() []FaceID {
	out := make([]FaceID, 0, g.liveFaces)
	for i := range g.faces {
		if g.faces[i].alive {
			out = append(out, FaceID(i))
		}
	}
	return out
}

func (g *Graph[V, E, F]) NumVertices() int { return g.liveVertices }

// NumEdges counts undirected edges (half-edge pairs).
func (g *Graph[V, E, F]) NumEdges() int { return g.liveEdges / 2 }
func (g *Graph[V, E, F]) NumFaces() int { return g.liveFaces }

func (g *Graph[V, E, F]) removeVertex(v VertexID) {
	if g.vertices[v].alive {
		g.vertices[v].alive = false
		g.vertices[v].Edge = NoEdge
		g.liveVertices--
	}
}

func (g *Graph[V, E, F]) removeEdge(e EdgeID) {
	if g.edges[e].alive {
		g.edges[e].alive = false
		g.liveEdges--
	}
}

func (g *Graph[V, E, F]) removeFace(f FaceID) {
	if g.faces[f].alive {
		g.faces[f].alive = false
		g.faces[f].Edge = NoEdge
		g.liveFaces--
	}
}
