package voronoi

import (
	"fmt"
	"math"

	"github.com/0x0FACED/go-gvd/pkg/geom"
)

// Config describes the region a diagram covers and its numeric tolerances.
// Every generator must lie inside the circle of radius Radius around Center.
type Config struct {
	Center geom.Point
	Radius float64
	// Epsilon is relative to Radius; see Tolerance.
	Epsilon float64
	// Samples is the number of points sampled along an edge when looking for
	// the point where it leaves the conflict zone.
	Samples int
	// Validate runs the full invariant check after every insertion.
	Validate bool
}

func DefaultConfig() Config {
	return Config{
		Center:   geom.Pt(0, 0),
		Radius:   1,
		Epsilon:  1e-9,
		Samples:  32,
		Validate: true,
	}
}

// Tolerance is the absolute distance below which two clearances are treated
// as equal.
func (c Config) Tolerance() float64 {
	return c.Epsilon * c.Radius
}

func (c Config) check() error {
	if !c.Center.IsFinite() {
		return fmt.Errorf("config: center %v is not finite", c.Center)
	}
	if !(c.Radius > 0) || math.IsInf(c.Radius, 1) {
		return fmt.Errorf("config: radius %g must be positive and finite", c.Radius)
	}
	if !(c.Epsilon > 0) || c.Epsilon >= 1 {
		return fmt.Errorf("config: epsilon %g must be in (0, 1)", c.Epsilon)
	}
	if c.Samples < 2 {
		return fmt.Errorf("config: need at least 2 samples per edge, got %d", c.Samples)
	}
	return nil
}
