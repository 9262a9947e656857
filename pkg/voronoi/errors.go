package voronoi

import (
	"errors"
	"fmt"

	"github.com/0x0FACED/go-gvd/pkg/geom"
	"github.com/0x0FACED/go-gvd/pkg/halfedge"
)

var (
	// ErrOutOfBounds is returned for generators reaching outside the
	// configured circle.
	ErrOutOfBounds = errors.New("generator outside the diagram bounds")
	// ErrDuplicateGenerator is returned for a point already in the diagram.
	ErrDuplicateGenerator = errors.New("duplicate generator")
	// ErrIntersectingGenerators is returned when the new generator touches or
	// crosses an existing one.
	ErrIntersectingGenerators = errors.New("generators intersect")
	// ErrInvalidGenerator is the geometry package's sentinel, so either name
	// matches with errors.Is.
	ErrInvalidGenerator = geom.ErrInvalidGenerator
	// ErrNoConflict means no vertex or edge of the diagram is closer to the
	// new generator than to its own ones.
	ErrNoConflict = errors.New("no conflict found for generator")
	// ErrInvariant wraps the problems found by the post insertion check.
	ErrInvariant = errors.New("diagram invariant violated")
	ErrDegenerateConfiguration = errors.New("degenerate configuration")
)

// DiagramConstructionError reports a failed insertion. The diagram is left as
// it was before the call.
type DiagramConstructionError struct {
	Generator geom.Generator
	Err       error
}

func (e *DiagramConstructionError) Error() string {
	return fmt.Sprintf("insert %v: %v", e.Generator, e.Err)
}

func (e *DiagramConstructionError) Unwrap() error { return e.Err }

// DegenerateConfiguration records a near tie met while growing a conflict
// zone. The vertex was kept outside the zone and insertion went on.
type DegenerateConfiguration struct {
	Generator geom.Generator
	Vertex    halfedge.VertexID
	Pos       geom.Point
	H         float64
	Reason    string
}

func (e *DegenerateConfiguration) Error() string {
	return fmt.Sprintf("degenerate configuration at vertex %d %v while inserting %v: %s (h=%.3g)",
		e.Vertex, e.Pos, e.Generator, e.Reason, e.H)
}

func (e *DegenerateConfiguration) Unwrap() error { return ErrDegenerateConfiguration }
