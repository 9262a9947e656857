package voronoi

import (
	"fmt"
	"maps"
	"math"

	"github.com/0x0FACED/go-gvd/pkg/geom"
	"github.com/0x0FACED/go-gvd/pkg/halfedge"
	"github.com/0x0FACED/go-gvd/pkg/logger"
	"github.com/peterstace/simplefeatures/rtree"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// CreateDiagram builds a diagram from gens in order. Generators that cannot
// be inserted are logged and skipped; their errors come back combined.
func CreateDiagram(gens []geom.Generator, cfg Config, log *logger.ZapLogger) (*Diagram, error) {
	d, err := New(cfg, log)
	if err != nil {
		return nil, err
	}
	return d, d.Build(gens)
}

// Build inserts gens one after another and keeps going past failures. The
// returned error combines every *DiagramConstructionError.
func (d *Diagram) Build(gens []geom.Generator) error {
	d.log.Info("[gvd-build] inserting generators", zap.Int("count", len(gens)))
	var errs error
	for i, g := range gens {
		if _, err := d.AddGenerator(g); err != nil {
			d.log.Error("[gvd-build] generator skipped", zap.Int("i", i), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}
	st := d.Stats()
	d.log.Info("[gvd-build] done",
		zap.Int("generators", st.Generators),
		zap.Int("vertices", st.Vertices),
		zap.Int("edges", st.Edges),
		zap.Int("faces", st.Faces))
	return errs
}

// AddGenerator inserts g and returns the face of its region (the interior
// face for segments and arcs). On failure the diagram is unchanged and the
// error is a *DiagramConstructionError.
func (d *Diagram) AddGenerator(g geom.Generator) (halfedge.FaceID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.log.Info("[gvd-add] inserting generator", zap.Stringer("generator", g), zap.Int("n", len(d.gens)))
	if err := d.check(g); err != nil {
		d.log.Error("[gvd-add] generator rejected", zap.Stringer("generator", g), zap.Error(err))
		return halfedge.NoFace, &DiagramConstructionError{Generator: g, Err: err}
	}

	snap := d.snapshot()
	owner := len(d.gens)
	d.gens = append(d.gens, g)
	face, err := d.insertSites(g, owner)
	if err == nil && d.cfg.Validate {
		if verr := d.g.Validate(); verr != nil {
			err = fmt.Errorf("%w: %w", ErrInvariant, verr)
		}
	}
	if err != nil {
		d.restore(snap)
		d.log.Error("[gvd-add] insertion rolled back", zap.Stringer("generator", g), zap.Error(err))
		return halfedge.NoFace, &DiagramConstructionError{Generator: g, Err: err}
	}
	d.log.Info("[gvd-add] generator inserted",
		zap.Int("face", int(face)),
		zap.Int("vertices", d.g.NumVertices()),
		zap.Int("edges", d.g.NumEdges()),
		zap.Int("faces", d.g.NumFaces()))
	return face, nil
}

func (d *Diagram) insertSites(g geom.Generator, owner int) (halfedge.FaceID, error) {
	if g.Kind == geom.KindPoint {
		return d.insertSite(g, owner)
	}
	a, b := g.Endpoints()
	for _, p := range []geom.Generator{a, b} {
		if id, ok := d.points[p.A]; ok {
			d.log.Debug("[gvd-add] endpoint reuses point site", zap.Stringer("point", p.A), zap.Int("site", id))
			continue
		}
		if _, err := d.insertSite(p, owner); err != nil {
			return halfedge.NoFace, fmt.Errorf("endpoint %v: %w", p.A, err)
		}
	}
	return d.insertSite(g, owner)
}

// check rejects generators the diagram cannot take: malformed ones, ones
// reaching outside the circle and ones touching what is already there.
func (d *Diagram) check(g geom.Generator) error {
	if err := validate(g); err != nil {
		return err
	}
	tol := d.cfg.Tolerance()
	if r := reach(g, d.cfg.Center); r > d.cfg.Radius+tol {
		return fmt.Errorf("%v reaches %.6g from %v, limit %.6g: %w", g, r, d.cfg.Center, d.cfg.Radius, ErrOutOfBounds)
	}
	if g.Kind == geom.KindPoint {
		if id, ok := d.points[g.A]; ok {
			return fmt.Errorf("%v already present as %v: %w", g, d.sites[id].gen, ErrDuplicateGenerator)
		}
	}

	box := g.Bounds()
	box.MinX, box.MinY, box.MaxX, box.MaxY = box.MinX-tol, box.MinY-tol, box.MaxX+tol, box.MaxY+tol
	var err error
	_ = d.index.RangeSearch(toBox(box), func(id int) error {
		other := d.sites[id].gen
		if d.sites[id].far {
			return nil
		}
		// an endpoint landing on a point site reuses that site
		if g.IsCurve() && other.Kind == geom.KindPoint && (other.A == g.A || other.A == g.B) {
			return nil
		}
		if geom.Separation(g, other) >= tol {
			return nil
		}
		sentinel := ErrIntersectingGenerators
		if g.Kind == geom.KindPoint && other.Kind == geom.KindPoint {
			sentinel = ErrDuplicateGenerator
		}
		err = fmt.Errorf("%v and %v: %w", g, other, sentinel)
		return rtree.Stop
	})
	return err
}

// validate repeats the constructor checks for generators built by hand.
func validate(g geom.Generator) error {
	var err error
	switch g.Kind {
	case geom.KindPoint:
		if !g.A.IsFinite() {
			err = fmt.Errorf("point %v: non-finite coordinate: %w", g.A, ErrInvalidGenerator)
		}
	case geom.KindSegment:
		_, err = geom.NewSegment(g.A, g.B)
	case geom.KindArc:
		var arc geom.Generator
		arc, err = geom.NewArc(g.A, g.B, g.Center, g.CCW)
		if err == nil && math.Abs(arc.Radius-g.Radius) > 1e-9*arc.Radius {
			err = fmt.Errorf("arc around %v: radius %g, endpoints at %g: %w", g.Center, g.Radius, arc.Radius, ErrInvalidGenerator)
		}
	default:
		err = fmt.Errorf("unknown generator kind %v: %w", g.Kind, ErrInvalidGenerator)
	}
	return err
}

// reach is the largest distance from c to a point of g.
func reach(g geom.Generator, c geom.Point) float64 {
	r := math.Max(g.A.Dist(c), g.B.Dist(c))
	if g.Kind == geom.KindArc {
		dir := g.Center.Sub(c).Unit()
		if dir == (geom.Point{}) {
			return g.Radius
		}
		if p := g.Center.Add(dir.Scale(g.Radius)); g.InSpan(p) {
			r = math.Max(r, p.Dist(c))
		}
	}
	return r
}

type snapshot struct {
	g            *graph
	sites        int
	points       map[geom.Point]int
	gens         int
	degeneracies int
}

func (d *Diagram) snapshot() snapshot {
	return snapshot{
		g:            d.g.Clone(),
		sites:        len(d.sites),
		points:       maps.Clone(d.points),
		gens:         len(d.gens),
		degeneracies: len(d.degeneracies),
	}
}

func (d *Diagram) restore(s snapshot) {
	for i := s.sites; i < len(d.sites); i++ {
		d.index.Delete(toBox(d.sites[i].gen.Bounds()), i)
	}
	d.g = s.g
	d.sites = d.sites[:s.sites]
	d.points = s.points
	d.gens = d.gens[:s.gens]
	d.degeneracies = d.degeneracies[:s.degeneracies]
}
