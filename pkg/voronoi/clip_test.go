package voronoi

import (
	"testing"

	"github.com/0x0FACED/go-gvd/pkg/geom"
	"github.com/cheekybits/is"
)

func TestClipSegment(t *testing.T) {
	is := is.New(t)
	bbox := NewBoundingBox(0, 10, 0, 10)

	a, b, ok := clipSegment(geom.Pt(-5, 5), geom.Pt(15, 5), bbox)
	is.True(ok)
	is.Equal(a, geom.Pt(0, 5))
	is.Equal(b, geom.Pt(10, 5))

	a, b, ok = clipSegment(geom.Pt(2, 2), geom.Pt(3, 4), bbox)
	is.True(ok)
	is.Equal(a, geom.Pt(2, 2))
	is.Equal(b, geom.Pt(3, 4))

	_, _, ok = clipSegment(geom.Pt(-5, -5), geom.Pt(-1, 20), bbox)
	is.True(!ok)
	_, _, ok = clipSegment(geom.Pt(11, 0), geom.Pt(11, 10), bbox)
	is.True(!ok)
}

func TestClipPolyline(t *testing.T) {
	is := is.New(t)
	bbox := NewBoundingBox(0, 10, 0, 10)
	runs := bbox.Clip([]geom.Point{
		geom.Pt(-2, 2), geom.Pt(2, 2), geom.Pt(5, 2), geom.Pt(12, 2),
		geom.Pt(12, 8), geom.Pt(8, 8),
	})
	is.Equal(len(runs), 2)
	is.Equal(runs[0], []geom.Point{geom.Pt(0, 2), geom.Pt(2, 2), geom.Pt(5, 2), geom.Pt(10, 2)})
	is.Equal(runs[1], []geom.Point{geom.Pt(10, 8), geom.Pt(8, 8)})
}

func TestClippedEdgesStayInside(t *testing.T) {
	is := is.New(t)
	d := newDiagram(t, DefaultConfig())
	mustAdd(t, d, pt(-0.4, 0.1), pt(0.3, 0.5), pt(0.2, -0.6))
	bbox := NewBoundingBox(-1, 1, -1, 1)
	runs := d.ClippedEdges(bbox, 16)
	is.True(len(runs) > 0)
	for _, run := range runs {
		for _, p := range run {
			is.True(p.X >= -1-1e-9 && p.X <= 1+1e-9)
			is.True(p.Y >= -1-1e-9 && p.Y <= 1+1e-9)
		}
	}
}
