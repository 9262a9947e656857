package halfedge

import (
	"errors"
	"testing"

	"github.com/0x0FACED/go-gvd/pkg/geom"
	"github.com/cheekybits/is"
	"go.uber.org/multierr"
)

type testGraph = Graph[struct{}, string, string]

// triangle is a single bounded face a,b,c plus the outer face.
func triangle() (g *testGraph, a, b, c VertexID, in, out FaceID) {
	g = NewGraph[struct{}, string, string]()
	a = g.AddVertex(geom.Pt(0, 0), Undecided)
	b = g.AddVertex(geom.Pt(4, 0), Undecided)
	c = g.AddVertex(geom.Pt(0, 4), Undecided)
	in = g.AddFace(NonIncident)
	out = g.AddFace(NonIncident)
	ab, ba := g.AddEdgePair(a, b, in, out)
	bc, cb := g.AddEdgePair(b, c, in, out)
	ca, ac := g.AddEdgePair(c, a, in, out)
	for _, pair := range [][2]EdgeID{{ab, bc}, {bc, ca}, {ca, ab}, {ba, ac}, {ac, cb}, {cb, ba}} {
		if err := g.SetNext(pair[0], pair[1]); err != nil {
			panic(err)
		}
	}
	return
}

// star is a center vertex with three spokes to a rim triangle: faces A, B, C
// around the center and the outer face O.
func star() (g *testGraph, center VertexID, spokes [3]EdgeID, faces [3]FaceID) {
	g = NewGraph[struct{}, string, string]()
	center = g.AddVertex(geom.Pt(0, 0), Undecided)
	var rim [3]VertexID
	for i := range rim {
		rim[i] = g.AddVertex(geom.Pt(0, 1).Rotate(float64(i)*2.0943951023931953), Undecided)
	}
	for i := range faces {
		faces[i] = g.AddFace(NonIncident)
	}
	outer := g.AddFace(NonIncident)

	var back, edge, edgeTwin [3]EdgeID
	for i := range rim {
		spokes[i], back[i] = g.AddEdgePair(center, rim[i], faces[i], faces[(i+2)%3])
		edge[i], edgeTwin[i] = g.AddEdgePair(rim[i], rim[(i+1)%3], faces[i], outer)
	}
	for i := range rim {
		must(g.SetNext(spokes[i], edge[i]))
		must(g.SetNext(edge[i], back[(i+1)%3]))
		must(g.SetNext(back[(i+1)%3], spokes[i]))
		must(g.SetNext(edgeTwin[(i+1)%3], edgeTwin[i]))
	}
	return
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func TestTriangle(t *testing.T) {
	is := is.New(t)
	g, a, b, c, in, out := triangle()
	is.NoErr(g.Validate())
	is.Equal(g.NumVertices(), 3)
	is.Equal(g.NumEdges(), 3)
	is.Equal(g.NumFaces(), 2)
	is.Equal(g.FaceVertices(in), []VertexID{a, b, c})
	is.Equal(len(g.FaceBoundary(out)), 3)
	is.Equal(len(g.OutEdges(a)), 2)
	for _, e := range g.Edges() {
		is.Equal(g.Twin(g.Twin(e)), e)
		is.Equal(g.Origin(g.Next(e)), g.Target(e))
	}
}

func TestSetNextRejectsBrokenLinks(t *testing.T) {
	is := is.New(t)
	g := NewGraph[struct{}, string, string]()
	a := g.AddVertex(geom.Pt(0, 0), Undecided)
	b := g.AddVertex(geom.Pt(1, 0), Undecided)
	c := g.AddVertex(geom.Pt(0, 1), Undecided)
	f := g.AddFace(NonIncident)
	h := g.AddFace(NonIncident)
	ab, _ := g.AddEdgePair(a, b, f, h)
	ca, _ := g.AddEdgePair(c, a, f, h)

	var tv *TopologyViolation
	is.True(errors.As(g.SetNext(ab, ca), &tv)) // ca does not start at b
	is.Equal(tv.Op, "SetNext")
	is.NoErr(g.SetNext(ca, ab))
}

func TestSplitEdge(t *testing.T) {
	is := is.New(t)
	g, a, b, _, in, _ := triangle()
	ab := g.Vertex(a).Edge
	is.Equal(g.Target(ab), b)
	g.Edge(ab).Data = "ab"
	g.Edge(g.Twin(ab)).Data = "ba"

	m, err := g.SplitEdge(ab, geom.Pt(2, 0))
	is.NoErr(err)
	is.NoErr(g.Validate())
	is.Equal(g.NumVertices(), 4)
	is.Equal(g.NumEdges(), 4)
	is.Equal(len(g.FaceBoundary(in)), 4)
	is.Equal(g.Target(ab), m)
	is.Equal(g.Target(g.Next(ab)), b)
	is.Equal(g.Edge(g.Next(ab)).Data, "ab")
	is.Equal(len(g.OutEdges(m)), 2)
	for _, e := range g.OutEdges(m) {
		is.Equal(g.Origin(e), m)
	}

	_, err = g.SplitEdge(EdgeID(99), geom.Pt(0, 0))
	is.Err(err)
}

func TestMergeVertex(t *testing.T) {
	is := is.New(t)
	g, a, b, _, in, out := triangle()
	ab := g.Vertex(a).Edge
	m, err := g.SplitEdge(ab, geom.Pt(2, 0))
	is.NoErr(err)
	// faces remember the halves that go away
	g.Face(in).Edge = g.Next(ab)
	g.Face(out).Edge = g.Twin(ab)

	kept, err := g.MergeVertex(m)
	is.NoErr(err)
	is.Equal(kept, ab)
	is.NoErr(g.Validate())
	is.True(!g.IsVertex(m))
	is.Equal(g.NumVertices(), 3)
	is.Equal(g.NumEdges(), 3)
	is.Equal(g.Target(ab), b)
	is.Equal(g.Target(g.Twin(ab)), a)
	is.Equal(len(g.FaceBoundary(in)), 3)
	is.Equal(len(g.FaceBoundary(out)), 3)

	sg, center, _, _ := star()
	_, err = sg.MergeVertex(center)
	var tv *TopologyViolation
	is.True(errors.As(err, &tv))
	is.Equal(tv.Op, "MergeVertex")
	is.NoErr(sg.Validate())
}

func TestConnect(t *testing.T) {
	is := is.New(t)
	g, a, _, c, in, _ := triangle()
	m, err := g.SplitEdge(g.Vertex(a).Edge, geom.Pt(2, 0))
	is.NoErr(err)

	e, tw, nf, err := g.Connect(m, c, in)
	is.NoErr(err)
	is.NoErr(g.Validate())
	is.Equal(g.NumFaces(), 3)
	is.Equal(g.NumEdges(), 5)
	is.Equal(g.FaceOf(e), in)
	is.Equal(g.FaceOf(tw), nf)
	is.Equal(g.FaceVertices(in), []VertexID{m, c, a})
	is.Equal(len(g.FaceBoundary(nf)), 3)
}

func TestConnectViolationLeavesGraphUnchanged(t *testing.T) {
	is := is.New(t)
	g, a, b, _, in, _ := triangle()
	before := g.Clone()

	_, _, _, err := g.Connect(a, a, in)
	var tv *TopologyViolation
	is.True(errors.As(err, &tv))
	is.Equal(tv.Op, "Connect")

	stray := g.AddVertex(geom.Pt(9, 9), Undecided)
	_, _, _, err = g.Connect(stray, b, in)
	is.True(errors.As(err, &tv))

	is.Equal(g.NumEdges(), before.NumEdges())
	is.Equal(g.NumFaces(), before.NumFaces())
	is.Equal(g.FaceVertices(in), before.FaceVertices(in))
}

func TestSplitFace(t *testing.T) {
	is := is.New(t)
	g, a, b, c, in, _ := triangle()
	x := g.AddVertex(geom.Pt(1, 1), Undecided)

	kept, nf, err := g.SplitFace(in, []VertexID{b, x, c})
	is.NoErr(err)
	is.Equal(kept, in)
	is.True(nf != in)
	is.NoErr(g.Validate())
	is.Equal(g.NumVertices(), 4)
	is.Equal(g.NumEdges(), 5)
	is.Equal(g.NumFaces(), 3)
	is.Equal(g.FaceVertices(in), []VertexID{b, x, c, a})
	is.Equal(len(g.FaceBoundary(nf)), 3)

	// x is now on a boundary and can no longer be an interior path vertex
	_, _, err = g.SplitFace(in, []VertexID{a, x, b})
	is.Err(err)
}

func TestCarveFace(t *testing.T) {
	is := is.New(t)
	g, center, spokes, _ := star()
	is.NoErr(g.Validate())
	is.Equal(g.NumVertices(), 4)
	is.Equal(g.NumEdges(), 6)
	is.Equal(g.NumFaces(), 4)

	g.Vertex(center).Status = In
	var fresh [3]VertexID
	for i, e := range spokes {
		v, err := g.SplitEdge(e, g.Vertex(g.Target(e)).Pos.Scale(0.5))
		is.NoErr(err)
		g.Vertex(v).Status = New
		fresh[i] = v
	}
	n := g.AddFace(Incident)

	chords, err := g.CarveFace(n, []VertexID{center})
	is.NoErr(err)
	is.NoErr(g.Validate())
	is.Equal(len(chords), 3)
	is.Equal(g.NumVertices(), 6)
	is.Equal(g.NumEdges(), 9)
	is.Equal(g.NumFaces(), 5)
	is.True(!g.IsVertex(center))
	is.Equal(len(g.FaceBoundary(n)), 3)
	for _, ch := range chords {
		is.Equal(g.FaceOf(ch.Edge), ch.Face)
		is.Equal(g.FaceOf(ch.Twin), n)
		is.Equal(g.Vertex(g.Origin(ch.Edge)).Status, New)
		is.Equal(len(g.FaceBoundary(ch.Face)), 4)
	}
	for _, v := range fresh {
		is.Equal(len(g.OutEdges(v)), 3)
	}
}

func TestCarveFaceRejectsOpenRun(t *testing.T) {
	is := is.New(t)
	g, center, _, _ := star()
	g.Vertex(center).Status = In
	n := g.AddFace(Incident)
	before := g.Clone()

	// neighbours were never marked New
	_, err := g.CarveFace(n, []VertexID{center})
	var tv *TopologyViolation
	is.True(errors.As(err, &tv))
	is.Equal(tv.Op, "CarveFace")
	is.Equal(g.NumVertices(), before.NumVertices())
	is.Equal(g.NumEdges(), before.NumEdges())
	is.True(g.IsVertex(center))

	g.Vertex(center).Status = Out
	_, err = g.CarveFace(n, []VertexID{center})
	is.True(errors.As(err, &tv))
}

func TestCloneIsIndependent(t *testing.T) {
	is := is.New(t)
	g, a, _, _, _, _ := triangle()
	c := g.Clone()
	_, err := c.SplitEdge(c.Vertex(a).Edge, geom.Pt(2, 0))
	is.NoErr(err)
	is.Equal(c.NumVertices(), 4)
	is.Equal(g.NumVertices(), 3)
	is.NoErr(g.Validate())
}

func TestValidateReportsEveryProblem(t *testing.T) {
	is := is.New(t)
	g, a, _, _, _, _ := triangle()
	e := g.Vertex(a).Edge
	g.Edge(e).Next = g.Twin(e)
	g.Vertex(a).Edge = g.Twin(e)

	err := g.Validate()
	is.Err(err)
	is.True(len(multierr.Errors(err)) >= 2)
}
