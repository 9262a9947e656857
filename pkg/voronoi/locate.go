package voronoi

import (
	"fmt"
	"math"

	"github.com/0x0FACED/go-gvd/pkg/geom"
	"github.com/0x0FACED/go-gvd/pkg/halfedge"
	"github.com/peterstace/simplefeatures/rtree"
	"go.uber.org/zap"
)

// nearestSite returns the site closest to p, or -1 for an empty index.
// Curve interiors only count inside their span.
func (d *Diagram) nearestSite(p geom.Point) int {
	best, bestDist := -1, math.Inf(1)
	_ = d.index.PrioritySearch(rtree.Box{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}, func(id int) error {
		s := d.sites[id]
		if s.gen.Bounds().DistToPoint(p) > bestDist {
			return rtree.Stop
		}
		if dist := geom.InteriorDistance(p, s.gen); dist < bestDist {
			best, bestDist = id, dist
		}
		return nil
	})
	return best
}

// seedFaces are the faces the conflict zone is looked for in first: the
// region holding the generator's anchor and, for curves, the regions of both
// endpoints.
func (ins *insertion) seedFaces() []halfedge.FaceID {
	d := ins.d
	var faces []halfedge.FaceID
	if id := d.nearestSite(ins.gen.Anchor()); id >= 0 {
		faces = append(faces, d.sites[id].face)
	}
	if ins.gen.IsCurve() {
		for _, p := range []geom.Point{ins.gen.A, ins.gen.B} {
			if id, ok := d.points[p]; ok {
				faces = append(faces, d.sites[id].face)
			}
		}
	}
	return faces
}

// locate finds the root of the conflict zone: the vertex with the most
// negative h around the seed faces, then anywhere in the diagram.
func (ins *insertion) locate() (halfedge.VertexID, error) {
	d := ins.d
	seeds := ins.seedFaces()

	best, bestH := halfedge.NoVertex, -ins.tol
	consider := func(v halfedge.VertexID) {
		if d.g.Vertex(v).Data.outer {
			return
		}
		if h := ins.h(v); h < bestH {
			best, bestH = v, h
		}
	}
	for _, f := range seeds {
		for _, v := range d.g.FaceVertices(f) {
			consider(v)
		}
	}
	if best == halfedge.NoVertex {
		d.log.Debug("[gvd-locate] seed faces hold no conflict, scanning all vertices", zap.Int("seeds", len(seeds)))
		for _, v := range d.g.Vertices() {
			consider(v)
		}
	}
	if best == halfedge.NoVertex {
		return halfedge.NoVertex, fmt.Errorf("%v: %w", ins.gen, ErrNoConflict)
	}
	d.log.Debug("[gvd-locate] root vertex",
		zap.Int("vertex", int(best)),
		zap.Stringer("pos", d.g.Vertex(best).Pos),
		zap.Float64("h", bestH))
	return best, nil
}
