package voronoi

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/0x0FACED/go-gvd/pkg/classify"
	"github.com/0x0FACED/go-gvd/pkg/geom"
	"github.com/0x0FACED/go-gvd/pkg/halfedge"
	"github.com/0x0FACED/go-gvd/pkg/logger"
	"github.com/cheekybits/is"
	"go.uber.org/multierr"
)

func newDiagram(t *testing.T, cfg Config) *Diagram {
	t.Helper()
	d, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func pt(x, y float64) geom.Generator { return geom.NewPoint(geom.Pt(x, y)) }

func segment(t *testing.T, ax, ay, bx, by float64) geom.Generator {
	t.Helper()
	g, err := geom.NewSegment(geom.Pt(ax, ay), geom.Pt(bx, by))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func mustAdd(t *testing.T, d *Diagram, gens ...geom.Generator) {
	t.Helper()
	for _, g := range gens {
		if _, err := d.AddGenerator(g); err != nil {
			t.Fatalf("AddGenerator(%v): %v", g, err)
		}
	}
}

// userEdges counts the edges between two inserted generators by kind.
func userEdges(d *Diagram) map[classify.EdgeKind]int {
	count := map[classify.EdgeKind]int{}
	for _, e := range d.Edges() {
		l, r := d.EdgeFaces(e)
		if d.IsFar(l) || d.IsFar(r) {
			continue
		}
		if _, ok := d.FaceGenerator(l); !ok {
			continue
		}
		if _, ok := d.FaceGenerator(r); !ok {
			continue
		}
		count[d.EdgeKind(e)]++
	}
	return count
}

func euler(s Stats) int { return s.Vertices - s.Edges + s.Faces }

func TestBootstrap(t *testing.T) {
	is := is.New(t)
	d := newDiagram(t, DefaultConfig())
	is.NoErr(d.Validate())
	is.Equal(d.Stats(), Stats{Vertices: 4, Edges: 6, Faces: 4})
	is.Equal(len(d.Faces()), 3)
	for _, f := range d.Faces() {
		is.True(d.IsFar(f))
	}
	outer := 0
	for _, v := range d.Vertices() {
		if d.VertexKind(v) == classify.VertexOuter {
			outer++
			continue
		}
		is.True(d.VertexPosition(v).Near(geom.Pt(0, 0), 1e-12))
		is.True(math.Abs(d.Clearance(v)-3) < 1e-12)
	}
	is.Equal(outer, 3)
}

func TestNewRejectsBadConfig(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	cfg.Radius = 0
	_, err := New(cfg, nil)
	is.Err(err)
	cfg = DefaultConfig()
	cfg.Samples = 1
	_, err = New(cfg, nil)
	is.Err(err)
}

func TestThreePoints(t *testing.T) {
	is := is.New(t)
	d := newDiagram(t, DefaultConfig())
	mustAdd(t, d, pt(-0.5, -0.3), pt(0.5, -0.3), pt(0, 0.5))
	is.NoErr(d.Validate())

	var inner []halfedge.VertexID
	for _, v := range d.Vertices() {
		gens := d.VertexGenerators(v)
		user := 0
		for _, f := range gens {
			if f.A.Norm() < 2 {
				user++
			}
		}
		if len(gens) == 3 && user == 3 {
			inner = append(inner, v)
		}
	}
	is.Equal(len(inner), 1)
	v := inner[0]
	is.Equal(d.VertexKind(v), classify.V1)
	is.True(d.VertexPosition(v).Near(geom.Pt(0, -0.05625), 1e-9))
	is.True(math.Abs(d.Clearance(v)-d.VertexPosition(v).Dist(geom.Pt(0, 0.5))) < 1e-9)

	is.Equal(userEdges(d), map[classify.EdgeKind]int{classify.E1: 3})
	is.Equal(len(d.Degeneracies()), 0)
}

func TestPointAndSegment(t *testing.T) {
	is := is.New(t)
	d := newDiagram(t, DefaultConfig())
	seg := segment(t, -0.5, 0, 0.5, 0)
	face, err := d.AddGenerator(seg)
	is.NoErr(err)
	g, ok := d.FaceGenerator(face)
	is.True(ok)
	is.Equal(g, seg)
	mustAdd(t, d, pt(0, 0.5))
	is.NoErr(d.Validate())

	kinds := userEdges(d)
	is.Equal(kinds[classify.E2], 2)
	is.True(kinds[classify.E3] >= 1)

	// the vertex shared by the left endpoint, the segment and the point
	found := false
	for _, v := range d.Vertices() {
		if d.VertexPosition(v).Near(geom.Pt(-0.5, 0.5), 1e-6) {
			found = true
			is.True(math.Abs(d.Clearance(v)-0.5) < 1e-6)
		}
	}
	is.True(found)
}

func TestDegenerateSquare(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	cfg.Center = geom.Pt(0.5, 0.5)
	d := newDiagram(t, cfg)
	err := d.Build([]geom.Generator{pt(0, 0), pt(1, 0), pt(0, 1), pt(1, 1)})
	is.NoErr(err)
	is.NoErr(d.Validate())

	tie := false
	for _, dc := range d.Degeneracies() {
		is.True(errors.Is(dc, ErrDegenerateConfiguration))
		if dc.Pos.Near(geom.Pt(0.5, 0.5), 1e-6) {
			tie = true
			is.Equal(dc.Generator, pt(1, 1))
		}
	}
	is.True(tie)
	is.Equal(d.Stats().Generators, 4)
}

func TestArc(t *testing.T) {
	is := is.New(t)
	d := newDiagram(t, DefaultConfig())
	arc, err := geom.NewArc(geom.Pt(0.5, 0), geom.Pt(-0.5, 0), geom.Pt(0, 0), true)
	is.NoErr(err)
	mustAdd(t, d, arc)
	is.NoErr(d.Validate())
	is.True(userEdges(d)[classify.E7] >= 2)

	mustAdd(t, d, pt(0, 0.2))
	is.NoErr(d.Validate())
	is.True(userEdges(d)[classify.E5] >= 1)
}

func TestEndpointReusesPoint(t *testing.T) {
	is := is.New(t)
	d := newDiagram(t, DefaultConfig())
	mustAdd(t, d, pt(-0.5, 0))
	faces := len(d.Faces())
	mustAdd(t, d, segment(t, -0.5, 0, 0.5, 0))
	is.Equal(len(d.Faces()), faces+2) // one endpoint and the interior
	is.NoErr(d.Validate())
}

func TestRejectedGenerators(t *testing.T) {
	is := is.New(t)
	d := newDiagram(t, DefaultConfig())
	mustAdd(t, d, segment(t, -0.5, 0, 0.5, 0), pt(0.2, 0.6))
	before := d.Stats()

	var tts = []struct {
		g    geom.Generator
		want error
	}{
		{segment(t, 0, -0.5, 0, 0.5), ErrIntersectingGenerators},
		{segment(t, 0.5, 0, 0.5, 0.5), ErrIntersectingGenerators}, // shares an endpoint
		{pt(0.2, 0.6), ErrDuplicateGenerator},
		{pt(0.1, 0), ErrIntersectingGenerators},
		{pt(2, 0), ErrOutOfBounds},
		{geom.Generator{Kind: geom.KindSegment, A: geom.Pt(0.3, 0.3), B: geom.Pt(0.3, 0.3)}, ErrInvalidGenerator},
	}
	for _, tt := range tts {
		_, err := d.AddGenerator(tt.g)
		is.True(errors.Is(err, tt.want))
		var dce *DiagramConstructionError
		is.True(errors.As(err, &dce))
		is.Equal(dce.Generator, tt.g)
	}
	is.Equal(d.Stats(), before)
	is.NoErr(d.Validate())
}

func TestRestoreUndoesInsertion(t *testing.T) {
	is := is.New(t)
	d := newDiagram(t, DefaultConfig())
	mustAdd(t, d, pt(-0.3, 0.1), pt(0.4, -0.2))
	before := d.Stats()

	snap := d.snapshot()
	d.gens = append(d.gens, segment(t, -0.2, 0.5, 0.3, 0.6))
	_, err := d.insertSites(d.gens[len(d.gens)-1], len(d.gens)-1)
	is.NoErr(err)
	is.True(d.Stats().Faces > before.Faces)
	d.restore(snap)

	is.Equal(d.Stats(), before)
	is.NoErr(d.Validate())
	_, ok := d.points[geom.Pt(-0.2, 0.5)]
	is.True(!ok)
	// the index forgot the removed sites
	is.Equal(d.sites[d.nearestSite(geom.Pt(0, 0.55))].gen, pt(-0.3, 0.1))
	mustAdd(t, d, segment(t, -0.2, 0.5, 0.3, 0.6))
	is.NoErr(d.Validate())
}

func TestRandomPointsKeepInvariants(t *testing.T) {
	is := is.New(t)
	d := newDiagram(t, DefaultConfig())
	rnd := rand.New(rand.NewSource(1))
	prev := d.Stats()
	for i := 0; i < 60; i++ {
		p := geom.Pt(rnd.Float64()*1.2-0.6, rnd.Float64()*1.2-0.6)
		_, err := d.AddGenerator(geom.NewPoint(p))
		is.NoErr(err)
		st := d.Stats()
		is.Equal(euler(st), 2)
		is.Equal(st.Faces, prev.Faces+1)
		is.True(st.Vertices > prev.Vertices)
		prev = st
	}
	is.NoErr(d.Validate())

	// every inner vertex is equidistant from its generators
	for _, v := range d.Vertices() {
		if d.VertexKind(v) == classify.VertexOuter {
			continue
		}
		x, r := d.VertexPosition(v), d.Clearance(v)
		for _, g := range d.VertexGenerators(v) {
			is.True(math.Abs(geom.Distance(x, g)-r) < 1e-6)
		}
	}
}

func TestBuildCollectsErrors(t *testing.T) {
	is := is.New(t)
	log := logger.New()
	d, err := CreateDiagram([]geom.Generator{pt(0.1, 0.1), pt(0.1, 0.1), pt(5, 5), pt(-0.4, 0.2)}, DefaultConfig(), log)
	is.Err(err)
	is.True(d != nil)
	is.Equal(len(multierr.Errors(err)), 2)
	is.True(errors.Is(err, ErrDuplicateGenerator))
	is.True(errors.Is(err, ErrOutOfBounds))
	is.Equal(d.Stats().Generators, 2)
	is.True(strings.Contains(log.String(), "[gvd-add]"))
	is.True(strings.Contains(log.String(), "[gvd-build] generator skipped"))
}

func TestOffsetPoints(t *testing.T) {
	is := is.New(t)
	d := newDiagram(t, DefaultConfig())
	mustAdd(t, d, pt(-0.5, 0), pt(0.5, 0))
	pts := d.OffsetPoints(0.6)
	is.Equal(len(pts), 2)
	for _, p := range pts {
		is.True(math.Abs(p.X) < 1e-9)
		is.True(math.Abs(math.Abs(p.Y)-math.Sqrt(0.11)) < 1e-9)
	}
	is.Equal(len(d.OffsetPoints(0.3)), 0)
}

func TestEdgePolyline(t *testing.T) {
	is := is.New(t)
	d := newDiagram(t, DefaultConfig())
	mustAdd(t, d, segment(t, -0.5, 0, 0.5, 0), pt(0, 0.5))
	for _, e := range d.Edges() {
		a, b := d.EdgeEndpoints(e)
		pl := d.EdgePolyline(e, 8)
		is.True(len(pl) >= 2)
		is.Equal(pl[0], d.VertexPosition(a))
		is.Equal(pl[len(pl)-1], d.VertexPosition(b))
		curve, s0, s1, ok := d.EdgeCurve(e)
		is.True(ok)
		is.True(curve.Point(s0).Near(d.VertexPosition(a), 1e-6))
		is.True(curve.Point(s1).Near(d.VertexPosition(b), 1e-6))
	}
}
