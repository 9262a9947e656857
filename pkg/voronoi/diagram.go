// Package voronoi builds generalized Voronoi diagrams of points, line
// segments and circular arcs by incremental insertion.
//
// A diagram starts from three far points around the configured circle and an
// outer face that closes the graph. Each insertion grows a tree of vertices
// that are closer to the new generator than to their own ones, replaces the
// tree by a new face and closes every touched face with a bisector edge.
// Segments and arcs enter the diagram as three sites: both endpoints first,
// then the open interior.
package voronoi

import (
	"math"
	"sync"

	"github.com/0x0FACED/go-gvd/pkg/bisector"
	"github.com/0x0FACED/go-gvd/pkg/classify"
	"github.com/0x0FACED/go-gvd/pkg/geom"
	"github.com/0x0FACED/go-gvd/pkg/halfedge"
	"github.com/0x0FACED/go-gvd/pkg/logger"
	"github.com/peterstace/simplefeatures/rtree"
	"go.uber.org/zap"
)

type vertexData struct {
	clearance float64
	outer     bool
}

// edgeData is shared by both halves of an edge; s0 is the curve parameter at
// the origin and s1 at the target.
type edgeData struct {
	kind   classify.EdgeKind
	curve  bisector.Bisector
	s0, s1 float64
}

type faceData struct {
	site  int
	outer bool
}

type graph = halfedge.Graph[vertexData, edgeData, faceData]

// site is one region of the diagram.
type site struct {
	gen   geom.Generator
	face  halfedge.FaceID
	far   bool
	owner int // index into Diagram.gens, -1 for far points
}

// farAngle turns the far points off the axes so that axis aligned input does
// not meet their bisectors head on.
const farAngle = 0.37

type Diagram struct {
	mu  sync.RWMutex
	cfg Config
	log *logger.ZapLogger

	g     *graph
	sites []site
	// point sites by position, curve endpoints included
	points map[geom.Point]int
	index  rtree.RTree
	outer  halfedge.FaceID

	gens         []geom.Generator
	degeneracies []*DegenerateConfiguration
}

// New returns a diagram holding only the three far points. A nil logger
// discards everything below warnings.
func New(cfg Config, log *logger.ZapLogger) (*Diagram, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewQuiet()
	}
	d := &Diagram{
		cfg:    cfg,
		log:    log,
		g:      halfedge.NewGraph[vertexData, edgeData, faceData](),
		points: make(map[geom.Point]int),
	}
	if err := d.bootstrap(); err != nil {
		return nil, err
	}
	log.Info("[gvd] diagram initialised",
		zap.Stringer("center", cfg.Center),
		zap.Float64("radius", cfg.Radius),
		zap.Float64("tolerance", cfg.Tolerance()))
	return d, nil
}

func polar(theta float64) geom.Point {
	s, c := math.Sincos(theta)
	return geom.Pt(c, s)
}

// bootstrap lays out far points g0, g1, g2 at 3R, the vertex at the center
// where their bisectors meet and three outer vertices at 12R on those
// bisectors. Rims between the outer vertices separate the far faces from the
// outer face.
func (d *Diagram) bootstrap() error {
	c, r := d.cfg.Center, d.cfg.Radius
	g := d.g

	var far [3]geom.Generator
	var faces [3]halfedge.FaceID
	for i := 0; i < 3; i++ {
		far[i] = geom.NewPoint(c.Add(polar(farAngle + 2*math.Pi*float64(i)/3).Scale(3 * r)))
		faces[i] = g.AddFace(halfedge.NonIncident)
		g.Face(faces[i]).Data = faceData{site: i}
		d.sites = append(d.sites, site{gen: far[i], face: faces[i], far: true, owner: -1})
		d.points[far[i].A] = i
		d.index.Insert(toBox(far[i].Bounds()), i)
	}
	d.outer = g.AddFace(halfedge.NonIncident)
	g.Face(d.outer).Data = faceData{site: -1, outer: true}

	center := g.AddVertex(c, halfedge.Undecided)
	g.Vertex(center).Data = vertexData{clearance: 3 * r}
	var rim [3]halfedge.VertexID
	for i := 0; i < 3; i++ {
		p := c.Add(polar(farAngle + 2*math.Pi*float64(i)/3 + math.Pi/3).Scale(12 * r))
		rim[i] = g.AddVertex(p, halfedge.Undecided)
		g.Vertex(rim[i]).Data = vertexData{clearance: p.Dist(far[i].A), outer: true}
	}

	// spoke i runs center -> rim i between far faces i (right) and i+1 (left)
	var spoke, spokeTwin [3]halfedge.EdgeID
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		spoke[i], spokeTwin[i] = g.AddEdgePair(center, rim[i], faces[j], faces[i])
		curve, err := bisector.New(far[i], far[j], c)
		if err != nil {
			return err
		}
		d.setCurve(spoke[i], classify.E1, curve, curve.Param(c), curve.Param(g.Vertex(rim[i]).Pos))
	}
	// rim edge i runs rim i-1 -> rim i with far face i inside
	var edge, edgeTwin [3]halfedge.EdgeID
	for i := 0; i < 3; i++ {
		prev := (i + 2) % 3
		a, b := g.Vertex(rim[prev]).Pos, g.Vertex(rim[i]).Pos
		edge[i], edgeTwin[i] = g.AddEdgePair(rim[prev], rim[i], faces[i], d.outer)
		d.setCurve(edge[i], classify.EdgeOuter, bisector.Straight(a, b), 0, a.Dist(b))
	}
	for i := 0; i < 3; i++ {
		prev := (i + 2) % 3
		for _, link := range [][2]halfedge.EdgeID{
			{spoke[prev], edge[i]},
			{edge[i], spokeTwin[i]},
			{spokeTwin[i], spoke[prev]},
			{edgeTwin[i], edgeTwin[prev]},
		} {
			if err := g.SetNext(link[0], link[1]); err != nil {
				return err
			}
		}
	}
	return g.Validate()
}

// setCurve stores the payload on e and the reversed one on its twin.
func (d *Diagram) setCurve(e halfedge.EdgeID, kind classify.EdgeKind, curve bisector.Bisector, s0, s1 float64) {
	d.g.Edge(e).Data = edgeData{kind: kind, curve: curve, s0: s0, s1: s1}
	d.g.Edge(d.g.Twin(e)).Data = edgeData{kind: kind, curve: curve, s0: s1, s1: s0}
}

func toBox(b geom.Box) rtree.Box {
	return rtree.Box{MinX: b.MinX, MinY: b.MinY, MaxX: b.MaxX, MaxY: b.MaxY}
}

func (d *Diagram) siteOf(f halfedge.FaceID) (site, bool) {
	if !d.g.IsFace(f) || d.g.Face(f).Data.outer {
		return site{}, false
	}
	return d.sites[d.g.Face(f).Data.site], true
}

// clearance is the distance from v to the generators around it.
func (d *Diagram) clearance(v halfedge.VertexID) float64 {
	pos := d.g.Vertex(v).Pos
	best := math.Inf(1)
	for _, f := range d.g.AdjacentFaces(v) {
		if s, ok := d.siteOf(f); ok {
			best = math.Min(best, geom.Distance(pos, s.gen))
		}
	}
	return best
}

// edgePoint evaluates e at fraction lambda of its parameter range.
func (d *Diagram) edgePoint(e halfedge.EdgeID, lambda float64) geom.Point {
	data := d.g.Edge(e).Data
	return data.curve.Point(data.s0 + lambda*(data.s1-data.s0))
}

// edgeClearance is the distance from x, a point of e, to the generators on
// either side.
func (d *Diagram) edgeClearance(e halfedge.EdgeID, x geom.Point) float64 {
	best := math.Inf(1)
	for _, f := range []halfedge.FaceID{d.g.FaceOf(e), d.g.FaceOf(d.g.Twin(e))} {
		if s, ok := d.siteOf(f); ok {
			best = math.Min(best, geom.Distance(x, s.gen))
		}
	}
	return best
}
