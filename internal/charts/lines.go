package charts

import (
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Dash patterns in pixels.
var (
	dashed = []float64{6, 4}
	dotted = []float64{2, 3}
)

// lineSeries returns a continuous series through the points whose x and y
// are both present. go-chart would draw NaN as a jump to the axis.
func lineSeries(name string, xs, ys []float64, c drawing.Color, dash []float64) chart.ContinuousSeries {
	s := chart.ContinuousSeries{
		Name: name,
		Style: chart.Style{
			StrokeColor:     c,
			StrokeWidth:     2,
			StrokeDashArray: dash,
			DotColor:        c,
			DotWidth:        3,
		},
	}
	for i := range xs {
		if i >= len(ys) || math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		s.XValues = append(s.XValues, xs[i])
		s.YValues = append(s.YValues, ys[i])
	}
	return s
}

// plainLine is lineSeries without point markers.
func plainLine(name string, xs, ys []float64, c drawing.Color, dash []float64) chart.ContinuousSeries {
	s := lineSeries(name, xs, ys, c, dash)
	s.Style.DotWidth = 0
	s.Style.DotColor = drawing.Color{}
	return s
}

// hline is a horizontal reference line at y spanning [x0, x1].
// An empty name keeps it out of the legend.
func hline(name string, y, x0, x1 float64, c drawing.Color, dash []float64) chart.ContinuousSeries {
	return plainLine(name, []float64{x0, x1}, []float64{y, y}, c, dash)
}

// vline is a vertical reference line at x spanning [y0, y1].
func vline(name string, x, y0, y1 float64, c drawing.Color, dash []float64) chart.ContinuousSeries {
	return plainLine(name, []float64{x, x}, []float64{y0, y1}, c, dash)
}
