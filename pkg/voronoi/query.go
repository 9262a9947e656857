package voronoi

import (
	"math"

	"github.com/0x0FACED/go-gvd/pkg/bisector"
	"github.com/0x0FACED/go-gvd/pkg/classify"
	"github.com/0x0FACED/go-gvd/pkg/geom"
	"github.com/0x0FACED/go-gvd/pkg/halfedge"
)

// Stats are element counts of a diagram.
type Stats struct {
	Vertices   int
	Edges      int
	Faces      int
	Generators int
}

// Stats counts the live elements of the graph, the bootstrap and the outer
// face included, and the generators inserted by the caller.
func (d *Diagram) Stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Stats{
		Vertices:   d.g.NumVertices(),
		Edges:      d.g.NumEdges(),
		Faces:      d.g.NumFaces(),
		Generators: len(d.gens),
	}
}

// Validate checks the topological invariants of the whole graph.
func (d *Diagram) Validate() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.g.Validate()
}

// Config returns the configuration the diagram was created with.
func (d *Diagram) Config() Config { return d.cfg }

// Generators lists the inserted generators in insertion order.
func (d *Diagram) Generators() []geom.Generator {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]geom.Generator(nil), d.gens...)
}

// Degeneracies lists the near ties met so far, oldest first.
func (d *Diagram) Degeneracies() []*DegenerateConfiguration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]*DegenerateConfiguration(nil), d.degeneracies...)
}

// Faces lists every face except the outer one.
func (d *Diagram) Faces() []halfedge.FaceID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []halfedge.FaceID
	for _, f := range d.g.Faces() {
		if !d.g.Face(f).Data.outer {
			out = append(out, f)
		}
	}
	return out
}

// FaceGenerator returns the generator owning f. Interior faces of curves
// report the whole segment or arc, endpoint faces the endpoint as a point.
func (d *Diagram) FaceGenerator(f halfedge.FaceID) (geom.Generator, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.siteOf(f)
	return s.gen, ok
}

// IsFar reports whether f belongs to one of the bootstrap far points.
func (d *Diagram) IsFar(f halfedge.FaceID) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.siteOf(f)
	return ok && s.far
}

// FaceBoundary lists the half-edges around f counterclockwise.
func (d *Diagram) FaceBoundary(f halfedge.FaceID) []halfedge.EdgeID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.g.IsFace(f) {
		return nil
	}
	return d.g.FaceBoundary(f)
}

// Edges lists one half-edge per edge.
func (d *Diagram) Edges() []halfedge.EdgeID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.edges()
}

func (d *Diagram) edges() []halfedge.EdgeID {
	var out []halfedge.EdgeID
	for _, e := range d.g.Edges() {
		if e < d.g.Twin(e) {
			out = append(out, e)
		}
	}
	return out
}

// EdgeKind is EdgeUnknown for a removed edge.
func (d *Diagram) EdgeKind(e halfedge.EdgeID) classify.EdgeKind {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.g.IsEdge(e) {
		return classify.EdgeUnknown
	}
	return d.g.Edge(e).Data.kind
}

// EdgeEndpoints returns the origin and target of e.
func (d *Diagram) EdgeEndpoints(e halfedge.EdgeID) (halfedge.VertexID, halfedge.VertexID) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.g.IsEdge(e) {
		return halfedge.NoVertex, halfedge.NoVertex
	}
	return d.g.Origin(e), d.g.Target(e)
}

// EdgeFaces returns the face left of e and the face on its other side.
func (d *Diagram) EdgeFaces(e halfedge.EdgeID) (halfedge.FaceID, halfedge.FaceID) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.g.IsEdge(e) {
		return halfedge.NoFace, halfedge.NoFace
	}
	return d.g.FaceOf(e), d.g.FaceOf(d.g.Twin(e))
}

// EdgeCurve returns the curve carrying e and the parameters of its origin and
// target.
func (d *Diagram) EdgeCurve(e halfedge.EdgeID) (bisector.Bisector, float64, float64, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.g.IsEdge(e) {
		return bisector.Bisector{}, 0, 0, false
	}
	data := d.g.Edge(e).Data
	return data.curve, data.s0, data.s1, true
}

// EdgePolyline samples e with n segments, pinned to its vertex positions.
func (d *Diagram) EdgePolyline(e halfedge.EdgeID, n int) []geom.Point {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.g.IsEdge(e) {
		return nil
	}
	return d.polyline(e, n)
}

func (d *Diagram) polyline(e halfedge.EdgeID, n int) []geom.Point {
	data := d.g.Edge(e).Data
	if data.curve.Kind == bisector.Line {
		n = 1
	}
	pts := data.curve.Sample(data.s0, data.s1, n)
	pts[0] = d.g.Vertex(d.g.Origin(e)).Pos
	pts[len(pts)-1] = d.g.Vertex(d.g.Target(e)).Pos
	return pts
}

// Vertices lists the live vertices, the outer ones included.
func (d *Diagram) Vertices() []halfedge.VertexID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.g.Vertices()
}

// VertexPosition is NaN for a removed vertex.
func (d *Diagram) VertexPosition(v halfedge.VertexID) geom.Point {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.g.IsVertex(v) {
		return geom.Pt(math.NaN(), math.NaN())
	}
	return d.g.Vertex(v).Pos
}

// Clearance is the radius of the empty circle centered at v.
func (d *Diagram) Clearance(v halfedge.VertexID) float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.g.IsVertex(v) {
		return math.NaN()
	}
	return d.g.Vertex(v).Data.clearance
}

// VertexGenerators lists the generators of the faces around v, the far
// points included and the outer face left out.
func (d *Diagram) VertexGenerators(v halfedge.VertexID) []geom.Generator {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.g.IsVertex(v) {
		return nil
	}
	return d.vertexGenerators(v)
}

func (d *Diagram) vertexGenerators(v halfedge.VertexID) []geom.Generator {
	var out []geom.Generator
	for _, f := range d.g.AdjacentFaces(v) {
		if s, ok := d.siteOf(f); ok {
			out = append(out, s.gen)
		}
	}
	return out
}

// VertexKind classifies v by its three generators. Vertices on the outer
// face are VertexOuter.
func (d *Diagram) VertexKind(v halfedge.VertexID) classify.VertexKind {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.g.IsVertex(v) {
		return classify.VertexUnknown
	}
	if d.g.Vertex(v).Data.outer {
		return classify.VertexOuter
	}
	gens := d.vertexGenerators(v)
	if len(gens) != 3 {
		return classify.VertexUnknown
	}
	return classify.VertexType(gens[0], gens[1], gens[2])
}

// OffsetPoints returns the points at clearance t on edges between two
// inserted generators.
func (d *Diagram) OffsetPoints(t float64) []geom.Point {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []geom.Point
	for _, e := range d.edges() {
		a, okA := d.siteOf(d.g.FaceOf(e))
		b, okB := d.siteOf(d.g.FaceOf(d.g.Twin(e)))
		if !okA || !okB || a.far || b.far {
			continue
		}
		data := d.g.Edge(e).Data
		for _, p := range data.curve.OffsetPoints(t) {
			if onRange(data.curve, data.curve.Param(p), data.s0, data.s1) {
				out = append(out, p)
			}
		}
	}
	return out
}

// onRange reports whether s lies between s0 and s1, allowing a full turn on
// ellipses.
func onRange(curve bisector.Bisector, s, s0, s1 float64) bool {
	lo, hi := math.Min(s0, s1), math.Max(s0, s1)
	for _, c := range []float64{s, s - 2*math.Pi, s + 2*math.Pi} {
		if c >= lo && c <= hi {
			return true
		}
		if curve.Kind != bisector.Ellipse {
			break
		}
	}
	return false
}
