package main

import (
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/0x0FACED/go-gvd/pkg/geom"
	"github.com/0x0FACED/go-gvd/pkg/logger"
	"github.com/0x0FACED/go-gvd/pkg/voronoi"
	"github.com/0x0FACED/go-gvd/static"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// layout is what the form asks for.
type layout struct {
	width, height          int
	points, segments, arcs int
	random                 bool
}

func formInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.FormValue(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}

// generate puts one generator in each cell of a grid covering the page, so
// that no two of them touch. In random mode the cell centers are jittered and
// the shapes turned at random.
func generate(l layout, rnd *rand.Rand) []geom.Generator {
	n := l.points + l.segments + l.arcs
	if n == 0 {
		return nil
	}
	kinds := make([]geom.Kind, 0, n)
	for i := 0; i < n; i++ {
		switch {
		case i < l.points:
			kinds = append(kinds, geom.KindPoint)
		case i < l.points+l.segments:
			kinds = append(kinds, geom.KindSegment)
		default:
			kinds = append(kinds, geom.KindArc)
		}
	}
	if l.random {
		rnd.Shuffle(len(kinds), func(i, j int) { kinds[i], kinds[j] = kinds[j], kinds[i] })
	}

	rows := int(math.Sqrt(float64(n)))
	cols := (n + rows - 1) / rows
	xStep := float64(l.width) / float64(cols)
	yStep := float64(l.height) / float64(rows)
	size := 0.3 * math.Min(xStep, yStep)

	gens := make([]geom.Generator, 0, n)
	for i, kind := range kinds {
		c := geom.Pt(xStep/2+float64(i%cols)*xStep, yStep/2+float64(i/cols)*yStep)
		angle := math.Pi / 6 * float64(i)
		if l.random {
			c = c.Add(geom.Pt((rnd.Float64()-0.5)*0.3*xStep, (rnd.Float64()-0.5)*0.3*yStep))
			angle = rnd.Float64() * 2 * math.Pi
		}
		dir := geom.Pt(1, 0).Rotate(angle)

		var g geom.Generator
		var err error
		switch kind {
		case geom.KindPoint:
			g = geom.NewPoint(c)
		case geom.KindSegment:
			g, err = geom.NewSegment(c.Sub(dir.Scale(size)), c.Add(dir.Scale(size)))
		case geom.KindArc:
			sweep := math.Pi
			if l.random {
				sweep = (0.4 + rnd.Float64()) * math.Pi
			}
			g, err = geom.NewArc(c.Add(dir.Scale(size)), c.Add(dir.Rotate(sweep).Scale(size)), c, true)
		}
		if err != nil {
			continue
		}
		gens = append(gens, g)
	}
	return gens
}

func prepareScatter(scatter *charts.Scatter) {
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Height: "580px",
			Width:  "1020px",
		}),
		charts.WithLegendOpts(opts.Legend{
			TextStyle: &opts.TextStyle{
				Color: "white",
			},
			Right: "10%",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:                "Generalized Voronoi diagram",
			TitleBackgroundColor: "white",
			Left:                 "10%",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "value",
			Name: "Width",
			AxisLabel: &opts.AxisLabel{
				Color: "white",
			},
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(false),
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			Name: "Height",
			AxisLabel: &opts.AxisLabel{
				Color: "white",
			},
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(false),
			},
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			FilterMode: "none",
			Orient:     "horizontal",
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			FilterMode: "none",
			Orient:     "vertical",
		}),
	)
}

func lineOf(name, color string, width float32, pts []geom.Point) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Show: opts.Bool(true)}),
	)
	data := make([]opts.LineData, 0, len(pts))
	for _, p := range pts {
		data = append(data, opts.LineData{Value: []float64{p.X, p.Y}})
	}
	line.AddSeries(name, data).SetSeriesOptions(
		charts.WithLineStyleOpts(opts.LineStyle{
			Width: width,
			Color: color,
		}),
		charts.WithLineChartOpts(opts.LineChart{
			ShowSymbol: opts.Bool(false),
		}),
	)
	return line
}

// diagramToEcharts draws the generators and the diagram edges cut to bbox.
func diagramToEcharts(gens []geom.Generator, d *voronoi.Diagram, bbox voronoi.BoundingBox) *charts.Scatter {
	scatter := charts.NewScatter()
	prepareScatter(scatter)

	points := make([]opts.ScatterData, 0)
	for _, g := range gens {
		if g.Kind == geom.KindPoint {
			points = append(points, opts.ScatterData{Value: []float64{g.A.X, g.A.Y}})
		}
	}
	scatter.AddSeries("Points", points).
		SetSeriesOptions(
			charts.WithItemStyleOpts(opts.ItemStyle{
				Color: "lightgreen",
			}),
		)

	for _, g := range gens {
		if g.IsCurve() {
			scatter.Overlap(lineOf("Generators", "lightgreen", 3, g.Sample(24)))
		}
	}
	for _, pl := range d.ClippedEdges(bbox, 24) {
		scatter.Overlap(lineOf("Edges", "#5470c6", 1.5, pl))
	}
	return scatter
}

// diagramHandler serves the page with the form, the chart and the build log.
func diagramHandler(w http.ResponseWriter, r *http.Request) {
	l := layout{width: 1000, height: 1000, points: 8, segments: 3, arcs: 2}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		l.width = formInt(r, "width", l.width)
		l.height = formInt(r, "height", l.height)
		l.points = formInt(r, "points", l.points)
		l.segments = formInt(r, "segments", l.segments)
		l.arcs = formInt(r, "arcs", l.arcs)
		l.random = r.FormValue("random") == "true"
	}
	if l.width < 1 || l.height < 1 {
		http.Error(w, "width and height must be positive", http.StatusBadRequest)
		return
	}

	gens := generate(l, rand.New(rand.NewSource(time.Now().UnixNano())))

	log := logger.New()
	defer log.ClearLogs()

	cfg := voronoi.DefaultConfig()
	cfg.Center = geom.Pt(float64(l.width)/2, float64(l.height)/2)
	cfg.Radius = math.Hypot(float64(l.width), float64(l.height)) / 2

	d, err := voronoi.CreateDiagram(gens, cfg, log)
	if d == nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err != nil {
		log.Warn("[app] some generators were skipped: " + err.Error())
	}

	bbox := voronoi.NewBoundingBox(0, float64(l.width), 0, float64(l.height))
	scatter := diagramToEcharts(gens, d, bbox)

	fmt.Fprintln(w, static.Part1)

	if err := scatter.Render(w); err != nil {
		fmt.Println("chart render failed:", err)
	}

	fmt.Fprintln(w, static.Part2)
	fmt.Fprintln(w, log.HTML())
	fmt.Fprintln(w, static.Part3)
}

func main() {
	http.HandleFunc("/", diagramHandler)
	fmt.Println("Server listening on http://localhost:8080")
	err := http.ListenAndServe(":8080", nil)
	if err != nil {
		fmt.Println("Err ListenAndServe", err)
	}
}
