package halfedge

import (
	"fmt"

	"github.com/0x0FACED/go-gvd/pkg/geom"
)

// TopologyViolation is returned when an operation's preconditions do not hold.
// The graph is left unchanged.
type TopologyViolation struct {
	Op     string
	Detail string
}

func (e *TopologyViolation) Error() string {
	return fmt.Sprintf("topology violation in %s: %s", e.Op, e.Detail)
}

func violation(op, format string, args ...any) error {
	return &TopologyViolation{Op: op, Detail: fmt.Sprintf(format, args...)}
}

// SplitEdge inserts a vertex at pos on e and its twin. Both halves keep the
// payload of the half-edge they were cut from; the new vertex has status
// Undecided.
func (g *Graph[V, E, F]) SplitEdge(e EdgeID, pos geom.Point) (VertexID, error) {
	if !g.IsEdge(e) {
		return NoVertex, violation("SplitEdge", "unknown half-edge %d", e)
	}
	t := g.edges[e].Twin
	v := g.AddVertex(pos, Undecided)

	e2 := EdgeID(len(g.edges))
	t2 := e2 + 1
	g.edges = append(g.edges,
		Edge[E]{Origin: v, Next: g.edges[e].Next, Twin: t, Face: g.edges[e].Face, Data: g.edges[e].Data, alive: true},
		Edge[E]{Origin: v, Next: g.edges[t].Next, Twin: e, Face: g.edges[t].Face, Data: g.edges[t].Data, alive: true},
	)
	g.liveEdges += 2

	g.edges[e].Next = e2
	g.edges[e].Twin = t2
	g.edges[t].Next = t2
	g.edges[t].Twin = e2
	g.vertices[v].Edge = e2
	return v, nil
}

// MergeVertex undoes SplitEdge: v must have exactly two edges, and the edge
// ending at v is extended over the one leaving it. It returns the surviving
// half-edge, which now ends where the removed one did, and keeps its payload.
func (g *Graph[V, E, F]) MergeVertex(v VertexID) (EdgeID, error) {
	const op = "MergeVertex"
	if !g.IsVertex(v) {
		return NoEdge, violation(op, "unknown vertex %d", v)
	}
	outs := g.OutEdges(v)
	if len(outs) != 2 {
		return NoEdge, violation(op, "vertex %d has degree %d", v, len(outs))
	}
	e2, t2 := outs[0], outs[1] // v->b and v->a
	e, t := g.edges[t2].Twin, g.edges[e2].Twin
	if g.edges[e].Next != e2 || g.edges[t].Next != t2 {
		return NoEdge, violation(op, "edges around vertex %d do not pass straight through", v)
	}
	if g.edges[e].Face == g.edges[t].Face {
		return NoEdge, violation(op, "vertex %d is the tip of a dangling edge", v)
	}

	g.edges[e].Next = g.edges[e2].Next
	g.edges[t].Next = g.edges[t2].Next
	g.edges[e].Twin = t
	g.edges[t].Twin = e
	if f := g.edges[e].Face; g.faces[f].Edge == e2 {
		g.faces[f].Edge = e
	}
	if f := g.edges[t].Face; g.faces[f].Edge == t2 {
		g.faces[f].Edge = t
	}
	g.removeEdge(e2)
	g.removeEdge(t2)
	g.removeVertex(v)
	return e, nil
}

// Connect adds an edge a->b across face f. The part of f left of a->b keeps
// the id f; the other part becomes a new face, returned together with the two
// half-edges (a->b in f, b->a in the new face).
func (g *Graph[V, E, F]) Connect(a, b VertexID, f FaceID) (EdgeID, EdgeID, FaceID, error) {
	nf, fwd, bwd, err := g.split("Connect", f, []VertexID{a, b})
	if err != nil {
		return NoEdge, NoEdge, NoFace, err
	}
	return fwd[0], bwd[0], nf, nil
}

// SplitFace cuts f along path. The first and last vertices must lie on the
// boundary of f; the ones between must be isolated vertices. It returns both
// halves: f itself, now left of the path, and the new face right of it.
func (g *Graph[V, E, F]) SplitFace(f FaceID, path []VertexID) (FaceID, FaceID, error) {
	nf, _, _, err := g.split("SplitFace", f, path)
	if err != nil {
		return NoFace, NoFace, err
	}
	return f, nf, nil
}

func (g *Graph[V, E, F]) split(op string, f FaceID, path []VertexID) (FaceID, []EdgeID, []EdgeID, error) {
	if !g.IsFace(f) {
		return NoFace, nil, nil, violation(op, "unknown face %d", f)
	}
	if len(path) < 2 {
		return NoFace, nil, nil, violation(op, "path of %d vertices", len(path))
	}
	first, last := path[0], path[len(path)-1]
	if first == last {
		return NoFace, nil, nil, violation(op, "path starts and ends at vertex %d", first)
	}

	inFirst, inLast := NoEdge, NoEdge
	for _, e := range g.FaceBoundary(f) {
		switch g.Target(e) {
		case first:
			if inFirst != NoEdge {
				return NoFace, nil, nil, violation(op, "vertex %d appears twice on face %d", first, f)
			}
			inFirst = e
		case last:
			if inLast != NoEdge {
				return NoFace, nil, nil, violation(op, "vertex %d appears twice on face %d", last, f)
			}
			inLast = e
		}
	}
	if inFirst == NoEdge || inLast == NoEdge {
		return NoFace, nil, nil, violation(op, "vertices %d and %d are not both on face %d", first, last, f)
	}
	seen := map[VertexID]bool{first: true, last: true}
	for _, v := range path[1 : len(path)-1] {
		if !g.IsVertex(v) || g.vertices[v].Edge != NoEdge || seen[v] {
			return NoFace, nil, nil, violation(op, "interior path vertex %d is not a fresh isolated vertex", v)
		}
		seen[v] = true
	}

	outFirst, outLast := g.edges[inFirst].Next, g.edges[inLast].Next

	// edges that move to the new face: first ... last along the old cycle
	var moved []EdgeID
	for cur, i := outFirst, 0; i < len(g.edges); i++ {
		moved = append(moved, cur)
		if cur == inLast {
			break
		}
		cur = g.edges[cur].Next
	}

	nf := g.AddFace(g.faces[f].Status)
	fwd := make([]EdgeID, len(path)-1)
	bwd := make([]EdgeID, len(path)-1)
	for i := 0; i+1 < len(path); i++ {
		fwd[i], bwd[i] = g.AddEdgePair(path[i], path[i+1], f, nf)
	}

	g.edges[inFirst].Next = fwd[0]
	for i := 0; i+1 < len(fwd); i++ {
		g.edges[fwd[i]].Next = fwd[i+1]
		g.edges[bwd[i+1]].Next = bwd[i]
	}
	g.edges[fwd[len(fwd)-1]].Next = outLast
	g.edges[inLast].Next = bwd[len(bwd)-1]
	g.edges[bwd[0]].Next = outFirst
	for _, e := range moved {
		g.edges[e].Face = nf
	}
	g.faces[f].Edge = fwd[0]
	g.faces[nf].Edge = bwd[0]
	return nf, fwd, bwd, nil
}

// Chord is one boundary piece created by CarveFace: Edge runs NEW1->NEW2 and
// still bounds Face, Twin runs the other way and bounds the carved face.
type Chord struct {
	Face FaceID
	Edge EdgeID
	Twin EdgeID
}

// CarveFace removes the tree of In vertices and gives the region they
// occupied to the empty face n. Every face touching the tree must have a
// single run of In vertices on its boundary, entered and left through New
// vertices; each such face is closed by a chord between the two New vertices.
// On any violation the graph is left unchanged.
func (g *Graph[V, E, F]) CarveFace(n FaceID, in []VertexID) ([]Chord, error) {
	const op = "CarveFace"
	if !g.IsFace(n) || g.faces[n].Edge != NoEdge {
		return nil, violation(op, "face %d is not a fresh empty face", n)
	}
	if len(in) == 0 {
		return nil, violation(op, "no In vertices")
	}
	for _, v := range in {
		if !g.IsVertex(v) || g.vertices[v].Status != In {
			return nil, violation(op, "vertex %d is not an In vertex", v)
		}
	}

	type run struct {
		face       FaceID
		start, end VertexID
	}
	var runs []run
	visited := map[FaceID]bool{}
	for _, v := range in {
		for _, f := range g.AdjacentFaces(v) {
			if visited[f] {
				continue
			}
			visited[f] = true
			if f == n {
				return nil, violation(op, "face %d already touches the In tree", n)
			}
			r := run{face: f, start: NoVertex, end: NoVertex}
			for _, e := range g.FaceBoundary(f) {
				from, to := g.vertices[g.Origin(e)].Status, g.vertices[g.Target(e)].Status
				if from != In && to == In {
					if r.start != NoVertex || from != New {
						return nil, violation(op, "face %d: In run not entered through a single New vertex", f)
					}
					r.start = g.Origin(e)
				}
				if from == In && to != In {
					if r.end != NoVertex || to != New {
						return nil, violation(op, "face %d: In run not left through a single New vertex", f)
					}
					r.end = g.Target(e)
				}
			}
			if r.start == NoVertex || r.end == NoVertex || r.start == r.end {
				return nil, violation(op, "face %d: In run has no distinct New ends", f)
			}
			runs = append(runs, r)
		}
	}

	checkpoint := g.Clone()
	fail := func(err error) ([]Chord, error) {
		*g = *checkpoint
		return nil, err
	}

	chords := make([]Chord, 0, len(runs))
	cut := make([]FaceID, 0, len(runs))
	for _, r := range runs {
		e, t, cf, err := g.Connect(r.start, r.end, r.face)
		if err != nil {
			return fail(err)
		}
		chords = append(chords, Chord{Face: r.face, Edge: e, Twin: t})
		cut = append(cut, cf)
	}

	for _, v := range in {
		for _, e := range g.OutEdges(v) {
			g.removeEdge(e)
			g.removeEdge(g.edges[e].Twin)
		}
	}
	for _, v := range in {
		g.removeVertex(v)
	}

	byOrigin := make(map[VertexID]EdgeID, len(chords))
	for _, c := range chords {
		if _, dup := byOrigin[g.Origin(c.Twin)]; dup {
			return fail(violation(op, "New vertex %d closes two faces", g.Origin(c.Twin)))
		}
		byOrigin[g.Origin(c.Twin)] = c.Twin
	}
	for _, c := range chords {
		next, ok := byOrigin[g.Target(c.Twin)]
		if !ok {
			return fail(violation(op, "boundary of face %d does not close at vertex %d", n, g.Target(c.Twin)))
		}
		g.edges[c.Twin].Face = n
		g.edges[c.Twin].Next = next
		g.vertices[g.Origin(c.Twin)].Edge = c.Twin
	}
	for _, c := range chords {
		g.vertices[g.Origin(c.Edge)].Edge = c.Edge
	}
	for _, f := range cut {
		g.removeFace(f)
	}
	g.faces[n].Edge = chords[0].Twin
	return chords, nil
}
