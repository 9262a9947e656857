package voronoi

import (
	"fmt"
	"math"

	"github.com/0x0FACED/go-gvd/pkg/bisector"
	"github.com/0x0FACED/go-gvd/pkg/classify"
	"github.com/0x0FACED/go-gvd/pkg/geom"
	"github.com/0x0FACED/go-gvd/pkg/halfedge"
	"github.com/peterstace/simplefeatures/rtree"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// insertion carries the state of adding one site.
type insertion struct {
	d   *Diagram
	gen geom.Generator
	tol float64

	queued  map[halfedge.VertexID]bool
	inCount map[halfedge.FaceID]int
	in      []halfedge.VertexID
	touched []halfedge.VertexID
	faces   []halfedge.FaceID
	// degree-2 vertices put on edges by refine
	splits []halfedge.VertexID
	// vertices in conflict that could not join the zone yet
	held []candidate
}

// insertSite adds a single site: a point, or the interior of a curve whose
// endpoints are already in place.
func (d *Diagram) insertSite(g geom.Generator, owner int) (halfedge.FaceID, error) {
	ins := &insertion{
		d:       d,
		gen:     g,
		tol:     d.cfg.Tolerance(),
		queued:  make(map[halfedge.VertexID]bool),
		inCount: make(map[halfedge.FaceID]int),
	}
	defer ins.reset()

	// 1. cut edges so that each meets the conflict region in one piece
	if err := ins.refine(); err != nil {
		return halfedge.NoFace, invariant(err)
	}
	// 2. find the deepest vertex in conflict
	root, err := ins.locate()
	if err != nil {
		return halfedge.NoFace, err
	}
	// 3. grow the tree of In vertices around it
	if err := ins.grow(root); err != nil {
		return halfedge.NoFace, err
	}
	// 4. put a New vertex where every edge leaves the tree
	if err := ins.boundary(); err != nil {
		return halfedge.NoFace, invariant(err)
	}
	// 5. replace the tree by the new face
	face, err := ins.carve()
	if err != nil {
		return halfedge.NoFace, invariant(err)
	}
	// 6. drop the cuts of step 1 that stayed outside
	if err := ins.unsplit(); err != nil {
		return halfedge.NoFace, invariant(err)
	}

	id := len(d.sites)
	d.sites = append(d.sites, site{gen: g, face: face, owner: owner})
	d.index.Insert(toBox(g.Bounds()), id)
	if g.Kind == geom.KindPoint {
		d.points[g.A] = id
	}

	// 7. nothing may be left closer to the new site than to its own
	if d.cfg.Validate {
		if err := ins.verify(face); err != nil {
			return halfedge.NoFace, err
		}
	}
	return face, nil
}

func invariant(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvariant, err)
}

// h is how much closer v is to the new generator than to its own ones.
func (ins *insertion) h(v halfedge.VertexID) float64 {
	vx := ins.d.g.Vertex(v)
	return geom.InteriorDistance(vx.Pos, ins.gen) - vx.Data.clearance
}

func (ins *insertion) hEdge(e halfedge.EdgeID, lambda float64) float64 {
	x := ins.d.edgePoint(e, lambda)
	return geom.InteriorDistance(x, ins.gen) - ins.d.edgeClearance(e, x)
}

func (ins *insertion) touch(v halfedge.VertexID) {
	ins.touched = append(ins.touched, v)
}

func (ins *insertion) status(v halfedge.VertexID) halfedge.VertexStatus {
	return ins.d.g.Vertex(v).Status
}

// refine samples h along every edge. Where the samples change sign more than
// once, the edge is cut at the extreme sample of each inner run, so that
// afterwards the conflict region meets every edge in at most one piece and
// that piece contains a vertex.
func (ins *insertion) refine() error {
	d := ins.d
	n := d.cfg.Samples
	hs := make([]float64, n+1)
	for _, e := range d.edges() {
		if d.g.Edge(e).Data.kind == classify.EdgeOuter {
			continue
		}
		hs[0], hs[n] = ins.h(d.g.Origin(e)), ins.h(d.g.Target(e))
		for i := 1; i < n; i++ {
			hs[i] = ins.hEdge(e, float64(i)/float64(n))
		}
		cuts := ins.cuts(hs)
		if len(cuts) == 0 {
			continue
		}

		data := d.g.Edge(e).Data
		// from the far end, so that e keeps the start of its range
		for k := len(cuts) - 1; k >= 0; k-- {
			s := data.s0 + float64(cuts[k])/float64(n)*(data.s1-data.s0)
			v, err := d.split(e, s, halfedge.Undecided)
			if err != nil {
				return err
			}
			ins.touch(v)
			ins.splits = append(ins.splits, v)
		}
		d.log.Debug("[gvd-grow] edge refined", zap.Int("edge", int(e)), zap.Int("cuts", len(cuts)))
	}
	return nil
}

// cuts returns the sample indexes to split at: the minimum of every inner run
// of samples in conflict and the maximum of every inner run out of it.
func (ins *insertion) cuts(hs []float64) []int {
	neg := func(h float64) bool { return h < -ins.tol }
	var out []int
	start := 0
	for i := 1; i <= len(hs); i++ {
		if i < len(hs) && neg(hs[i]) == neg(hs[start]) {
			continue
		}
		// run [start, i)
		if start > 0 && i < len(hs) {
			best := start
			for j := start + 1; j < i; j++ {
				if neg(hs[start]) == (hs[j] < hs[best]) {
					best = j
				}
			}
			out = append(out, best)
		}
		start = i
	}
	return out
}

// verdict is what admissible decides for a candidate.
type verdict int

const (
	admit  verdict = iota
	reject         // not in conflict
	tie            // within tolerance of the new generator: kept out, recorded
	hold           // in conflict but joining now would break the tree
)

// grow extends the In tree from root, most negative h first. Candidates on
// hold are retried whenever the tree stops growing; any still held at the end
// make the insertion fail.
func (ins *insertion) grow(root halfedge.VertexID) error {
	d := ins.d
	var q queue
	ins.queued[root] = true
	ins.accept(root)
	ins.enqueue(&q, root)
	for {
		for q.len() > 0 {
			c, _ := q.pop()
			ins.decide(&q, c)
		}
		held := ins.held
		ins.held = nil
		for _, c := range held {
			ins.decide(&q, c)
		}
		if q.len() == 0 && len(ins.held) == len(held) {
			break
		}
	}
	d.log.Debug("[gvd-grow] conflict zone",
		zap.Int("in", len(ins.in)),
		zap.Int("faces", len(ins.faces)),
		zap.Int("held", len(ins.held)))

	if len(ins.held) > 0 {
		var errs error
		for _, c := range ins.held {
			_, reason := ins.admissible(c)
			errs = multierr.Append(errs, fmt.Errorf("vertex %d at %v (h=%.3g) cannot join the conflict zone: %s",
				c.v, d.g.Vertex(c.v).Pos, c.h, reason))
		}
		return invariant(errs)
	}
	return nil
}

// decide settles c, or holds it for later.
func (ins *insertion) decide(q *queue, c candidate) {
	v, reason := ins.admissible(c)
	switch v {
	case admit:
		ins.accept(c.v)
		ins.enqueue(q, c.v)
	case hold:
		ins.held = append(ins.held, c)
	case tie:
		ins.d.g.Vertex(c.v).Status = halfedge.Out
		ins.degenerate(c.v, c.h, reason)
	default:
		ins.d.g.Vertex(c.v).Status = halfedge.Out
	}
}

func (ins *insertion) accept(v halfedge.VertexID) {
	d := ins.d
	d.g.Vertex(v).Status = halfedge.In
	ins.touch(v)
	ins.in = append(ins.in, v)
	for _, f := range d.g.AdjacentFaces(v) {
		if ins.inCount[f] == 0 {
			d.g.Face(f).Status = halfedge.Incident
			ins.faces = append(ins.faces, f)
		}
		ins.inCount[f]++
	}
}

func (ins *insertion) enqueue(q *queue, v halfedge.VertexID) {
	d := ins.d
	for _, e := range d.g.OutEdges(v) {
		u := d.g.Target(e)
		if ins.queued[u] || ins.status(u) != halfedge.Undecided {
			continue
		}
		ins.queued[u] = true
		ins.touch(u)
		q.push(candidate{v: u, h: ins.h(u)})
	}
}

// admissible decides whether c may join the zone: it must be in conflict,
// touch the tree through exactly one edge that stays in conflict, and keep a
// single In run on every face around it without taking a whole face.
func (ins *insertion) admissible(c candidate) (verdict, string) {
	d := ins.d
	if d.g.Vertex(c.v).Data.outer {
		return reject, ""
	}
	if c.h >= -ins.tol {
		if c.h <= ins.tol {
			return tie, "clearance tie with the new generator"
		}
		return reject, ""
	}

	outs := d.g.OutEdges(c.v)
	link := halfedge.NoEdge
	for _, e := range outs {
		if ins.status(d.g.Target(e)) == halfedge.In {
			if link != halfedge.NoEdge {
				return hold, "joining would close a cycle of In vertices"
			}
			link = e
		}
	}
	if link == halfedge.NoEdge {
		return hold, "no In neighbour"
	}

	// in the face of outs[i] the neighbours are the targets of outs[i-1] and outs[i]
	for i, e := range outs {
		f := d.g.FaceOf(e)
		n := ins.inCount[f]
		if n == 0 {
			continue
		}
		prev := d.g.Target(outs[(i+len(outs)-1)%len(outs)])
		if ins.status(prev) != halfedge.In && ins.status(d.g.Target(e)) != halfedge.In {
			return hold, "joining would split the In run of a face"
		}
		if n+1 >= len(d.g.FaceBoundary(f)) {
			return hold, "joining would swallow a face"
		}
	}

	samples := d.cfg.Samples
	for i := 1; i < samples; i++ {
		if ins.hEdge(link, float64(i)/float64(samples)) >= -ins.tol {
			return hold, "edge into the zone leaves the conflict region"
		}
	}
	return admit, ""
}

func (ins *insertion) degenerate(v halfedge.VertexID, h float64, reason string) {
	d := ins.d
	dc := &DegenerateConfiguration{
		Generator: ins.gen,
		Vertex:    v,
		Pos:       d.g.Vertex(v).Pos,
		H:         h,
		Reason:    reason,
	}
	d.degeneracies = append(d.degeneracies, dc)
	d.log.Warn("[gvd-grow] degenerate configuration",
		zap.Int("vertex", int(v)),
		zap.Stringer("pos", dc.Pos),
		zap.Float64("h", h),
		zap.String("reason", reason))
}

// boundary puts a New vertex on every edge leaving the zone.
func (ins *insertion) boundary() error {
	d := ins.d
	var leaving []halfedge.EdgeID
	for _, v := range ins.in {
		for _, e := range d.g.OutEdges(v) {
			if ins.status(d.g.Target(e)) != halfedge.In {
				leaving = append(leaving, e)
			}
		}
	}
	for _, e := range leaving {
		v, err := d.splitAt(e, ins.crossing(e), halfedge.New)
		if err != nil {
			return err
		}
		ins.touch(v)
	}
	d.log.Debug("[gvd-grow] boundary placed", zap.Int("new", len(leaving)))
	return nil
}

// crossing is the fraction of e, counted from its In origin, where h reaches
// zero. The first sample at or above -tol brackets it and bisection narrows
// it down.
func (ins *insertion) crossing(e halfedge.EdgeID) float64 {
	n := ins.d.cfg.Samples
	lo, hi := float64(n-1)/float64(n), 1.0
	for i := 1; i <= n; i++ {
		l := float64(i) / float64(n)
		if ins.hEdge(e, l) >= -ins.tol {
			lo, hi = float64(i-1)/float64(n), l
			break
		}
	}
	for it := 0; it < 60; it++ {
		mid := (lo + hi) / 2
		if ins.hEdge(e, mid) < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return math.Max(1e-9, math.Min(1-1e-9, (lo+hi)/2))
}

// carve replaces the zone by the new face and gives each closing chord its
// kind and curve.
func (ins *insertion) carve() (halfedge.FaceID, error) {
	d := ins.d
	face := d.g.AddFace(halfedge.Incident)
	d.g.Face(face).Data = faceData{site: len(d.sites)}
	ins.faces = append(ins.faces, face)

	chords, err := d.g.CarveFace(face, ins.in)
	if err != nil {
		return halfedge.NoFace, err
	}
	for _, c := range chords {
		if err := ins.chord(c); err != nil {
			return halfedge.NoFace, err
		}
	}
	d.log.Debug("[gvd-carve] face carved",
		zap.Int("face", int(face)),
		zap.Int("removed", len(ins.in)),
		zap.Int("chords", len(chords)))
	return face, nil
}

// chord gives c the bisector of its face's generator and the new one.
func (ins *insertion) chord(c halfedge.Chord) error {
	d := ins.d
	s, ok := d.siteOf(c.Face)
	if !ok {
		return fmt.Errorf("edge %d closes face %d, which has no generator", c.Edge, c.Face)
	}
	from, to := d.g.Origin(c.Edge), d.g.Target(c.Edge)
	p1, p2 := d.g.Vertex(from).Pos, d.g.Vertex(to).Pos
	kind := classify.EdgeType(s.gen, ins.gen)

	curve, err := bisector.New(s.gen, ins.gen, p1)
	if err != nil {
		return fmt.Errorf("edge %d from %v to %v between %v and %v: %w", c.Edge, p1, p2, s.gen, ins.gen, err)
	}
	s0 := curve.Param(p1)
	d.setCurve(c.Edge, kind, curve, s0, unwrap(curve, s0, curve.Param(p2), s.gen, ins.gen))
	d.log.Debug("[gvd-carve] chord",
		zap.Int("edge", int(c.Edge)),
		zap.Stringer("kind", kind),
		zap.Stringer("curve", curve.Kind))
	return nil
}

// unwrap picks the ellipse parameter range running through the spans of
// both generators, the shorter one when both or neither do.
func unwrap(curve bisector.Bisector, s0, s1 float64, a, b geom.Generator) float64 {
	if curve.Kind != bisector.Ellipse {
		return s1
	}
	best, bestScore := s1, math.Inf(1)
	for _, c := range []float64{s1, s1 - 2*math.Pi, s1 + 2*math.Pi} {
		span := math.Abs(c - s0)
		if span >= 2*math.Pi {
			continue
		}
		score := span
		if mid := curve.Point((s0 + c) / 2); !a.InSpan(mid) || !b.InSpan(mid) {
			score += 4 * math.Pi
		}
		if score < bestScore {
			best, bestScore = c, score
		}
	}
	return best
}

// unsplit merges back the refine cuts that survived carving. They lie
// inside an old edge and are not vertices of the diagram.
func (ins *insertion) unsplit() error {
	d := ins.d
	merged := 0
	for _, v := range ins.splits {
		if !d.g.IsVertex(v) {
			continue
		}
		if err := d.merge(v); err != nil {
			return err
		}
		merged++
	}
	if merged > 0 {
		d.log.Debug("[gvd-carve] refine cuts merged", zap.Int("merged", merged))
	}
	return nil
}

// verify checks the carved diagram against the new site. Outside the new
// face no vertex and no edge sample may be closer to it than to their own
// generators; every edge of the new face must be equidistant from its two
// generators with no generator closer. Boundary placement is allowed an
// error of 100 tolerances.
func (ins *insertion) verify(face halfedge.FaceID) error {
	d := ins.d
	slack := 100 * ins.tol
	n := d.cfg.Samples
	var errs error
	for _, v := range d.g.Vertices() {
		if d.g.Vertex(v).Data.outer {
			continue
		}
		if h := ins.h(v); !(h >= -slack) {
			errs = multierr.Append(errs, fmt.Errorf("vertex %d at %v is %.3g closer to the new generator than to its own",
				v, d.g.Vertex(v).Pos, -h))
		}
	}
	for _, e := range d.edges() {
		if d.g.Edge(e).Data.kind == classify.EdgeOuter {
			continue
		}
		if d.g.FaceOf(e) == face || d.g.FaceOf(d.g.Twin(e)) == face {
			errs = multierr.Append(errs, d.checkEdge(e, n, slack))
			continue
		}
		for i := 1; i < n; i++ {
			if h := ins.hEdge(e, float64(i)/float64(n)); !(h >= -slack) {
				errs = multierr.Append(errs, fmt.Errorf("edge %d at %v is %.3g closer to the new generator than to its own",
					e, d.edgePoint(e, float64(i)/float64(n)), -h))
				break
			}
		}
	}
	if errs != nil {
		d.log.Warn("[gvd-carve] carved diagram rejected", zap.Error(errs))
		return invariant(errs)
	}
	return nil
}

// checkEdge samples e at n+1 points and reports the first where its two
// generators are not equally far, or where some generator is closer.
func (d *Diagram) checkEdge(e halfedge.EdgeID, n int, slack float64) error {
	a, okA := d.siteOf(d.g.FaceOf(e))
	b, okB := d.siteOf(d.g.FaceOf(d.g.Twin(e)))
	if !okA || !okB {
		return nil
	}
	for i := 0; i <= n; i++ {
		var x geom.Point
		switch i {
		case 0:
			x = d.g.Vertex(d.g.Origin(e)).Pos
		case n:
			x = d.g.Vertex(d.g.Target(e)).Pos
		default:
			x = d.edgePoint(e, float64(i)/float64(n))
		}
		da, db := geom.Distance(x, a.gen), geom.Distance(x, b.gen)
		if !(math.Abs(da-db) <= slack) {
			return fmt.Errorf("edge %d at %v: %.6g from %v but %.6g from %v", e, x, da, a.gen, db, b.gen)
		}
		if id := d.closerSite(x, math.Min(da, db)-slack); id >= 0 {
			return fmt.Errorf("edge %d at %v: %v is closer than %.6g", e, x, d.sites[id].gen, math.Min(da, db))
		}
	}
	return nil
}

// closerSite returns a site at distance below r from x, or -1.
func (d *Diagram) closerSite(x geom.Point, r float64) int {
	if r <= 0 {
		return -1
	}
	found := -1
	box := geom.Box{MinX: x.X - r, MinY: x.Y - r, MaxX: x.X + r, MaxY: x.Y + r}
	_ = d.index.RangeSearch(toBox(box), func(id int) error {
		if geom.Distance(x, d.sites[id].gen) < r {
			found = id
			return rtree.Stop
		}
		return nil
	})
	return found
}

// splitAt cuts e at fraction lambda of its parameter range.
func (d *Diagram) splitAt(e halfedge.EdgeID, lambda float64, status halfedge.VertexStatus) (halfedge.VertexID, error) {
	data := d.g.Edge(e).Data
	return d.split(e, data.s0+lambda*(data.s1-data.s0), status)
}

// split cuts e at curve parameter s and keeps the ranges of all four halves
// consistent.
func (d *Diagram) split(e halfedge.EdgeID, s float64, status halfedge.VertexStatus) (halfedge.VertexID, error) {
	data := d.g.Edge(e).Data
	t := d.g.Twin(e)
	v, err := d.g.SplitEdge(e, data.curve.Point(s))
	if err != nil {
		return halfedge.NoVertex, err
	}
	d.g.Edge(e).Data.s1 = s
	d.g.Edge(d.g.Next(e)).Data.s0 = s
	d.g.Edge(t).Data.s1 = s
	d.g.Edge(d.g.Next(t)).Data.s0 = s

	clearance := d.clearance(v)
	d.g.Vertex(v).Status = status
	d.g.Vertex(v).Data = vertexData{clearance: clearance}
	return v, nil
}

// merge removes the degree-2 vertex v, joining its two edges into one.
func (d *Diagram) merge(v halfedge.VertexID) error {
	ends := make(map[halfedge.VertexID]float64, 2)
	for _, e := range d.g.OutEdges(v) {
		ends[d.g.Target(e)] = d.g.Edge(e).Data.s1
	}
	kept, err := d.g.MergeVertex(v)
	if err != nil {
		return err
	}
	data := d.g.Edge(kept).Data
	s1, ok := ends[d.g.Target(kept)]
	if !ok {
		return fmt.Errorf("merged edge %d ends at unexpected vertex %d", kept, d.g.Target(kept))
	}
	d.setCurve(kept, data.kind, data.curve, data.s0, s1)
	return nil
}

func (ins *insertion) reset() {
	d := ins.d
	for _, v := range ins.touched {
		if d.g.IsVertex(v) {
			d.g.Vertex(v).Status = halfedge.Undecided
		}
	}
	for _, f := range ins.faces {
		if d.g.IsFace(f) {
			d.g.Face(f).Status = halfedge.NonIncident
		}
	}
}
