package charts

import (
	"errors"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// barSeries draws one bar per category on a category axis.
// Categories sit at 0..n-1 on the category axis; Offset and Width are in
// category units, so grouped bars use the same series type with different
// offsets. NaN values draw neither bar nor label.
//
// barSeries does not implement chart.ValuesProvider, so the value range
// must be set on the axis (see valueTicks and decadeBounds).
type barSeries struct {
	Name  string
	Style chart.Style

	Values []float64

	// Colors overrides Style.FillColor per bar when set.
	Colors []drawing.Color

	Offset float64
	Width  float64

	// Horizontal puts categories on the y axis and values on the x axis.
	Horizontal bool

	// Label formats value labels. No labels are drawn when nil.
	Label func(float64) string
}

// barLabel is a value label of one drawn bar.
type barLabel struct {
	Index int
	Value float64
	Text  string
}

// GetName implements chart.Series.
func (bs barSeries) GetName() string {
	return bs.Name
}

// GetStyle implements chart.Series.
func (bs barSeries) GetStyle() chart.Style {
	return bs.Style
}

// GetYAxis implements chart.Series.
func (bs barSeries) GetYAxis() chart.YAxisType {
	return chart.YAxisPrimary
}

// Validate implements chart.Series.
func (bs barSeries) Validate() error {
	if bs.Width <= 0 {
		return errors.New("bar width must be positive")
	}
	return nil
}

// labels returns the value labels of the bars that are drawn.
func (bs barSeries) labels() []barLabel {
	if bs.Label == nil {
		return nil
	}
	var out []barLabel
	for i, v := range bs.Values {
		if math.IsNaN(v) {
			continue
		}
		out = append(out, barLabel{Index: i, Value: v, Text: bs.Label(v)})
	}
	return out
}

func (bs barSeries) colorAt(i int) drawing.Color {
	if i < len(bs.Colors) {
		return bs.Colors[i]
	}
	return bs.Style.FillColor
}

// Render implements chart.Series.
func (bs barSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	catRange, valRange := xrange, yrange
	if bs.Horizontal {
		catRange, valRange = yrange, xrange
	}
	base := 0.0
	if base < valRange.GetMin() {
		base = valRange.GetMin()
	}

	for i, v := range bs.Values {
		if math.IsNaN(v) {
			continue
		}
		lo := float64(i) + bs.Offset - bs.Width/2
		hi := lo + bs.Width
		c := bs.colorAt(i)
		style := chart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 1}
		chart.Draw.Box(r, bs.box(canvasBox, catRange, valRange, lo, hi, base, v), style)
	}

	labelStyle := chart.Style{
		Font:      defaults.Font,
		FontSize:  fontValue,
		FontColor: colorBlack,
	}
	const gap = 3
	for _, l := range bs.labels() {
		box := bs.box(canvasBox, catRange, valRange,
			float64(l.Index)+bs.Offset-bs.Width/2, float64(l.Index)+bs.Offset+bs.Width/2, base, l.Value)
		tb := chart.Draw.MeasureText(r, l.Text, labelStyle)
		if bs.Horizontal {
			y := (box.Top+box.Bottom)/2 + tb.Height()/2
			if l.Value >= base {
				chart.Draw.Text(r, l.Text, box.Right+gap, y, labelStyle)
			} else {
				chart.Draw.Text(r, l.Text, box.Left-gap-tb.Width(), y, labelStyle)
			}
			continue
		}
		x := (box.Left+box.Right)/2 - tb.Width()/2
		if l.Value >= base {
			chart.Draw.Text(r, l.Text, x, box.Top-gap, labelStyle)
		} else {
			chart.Draw.Text(r, l.Text, x, box.Bottom+gap+tb.Height(), labelStyle)
		}
	}
}

// box returns the pixel box of a bar spanning [lo, hi] on the category
// axis and [base, v] on the value axis.
func (bs barSeries) box(canvasBox chart.Box, catRange, valRange chart.Range, lo, hi, base, v float64) chart.Box {
	if bs.Horizontal {
		x0 := canvasBox.Left + valRange.Translate(base)
		x1 := canvasBox.Left + valRange.Translate(v)
		y0 := canvasBox.Bottom - catRange.Translate(lo)
		y1 := canvasBox.Bottom - catRange.Translate(hi)
		return chart.Box{Left: min(x0, x1), Right: max(x0, x1), Top: min(y0, y1), Bottom: max(y0, y1)}
	}
	x0 := canvasBox.Left + catRange.Translate(lo)
	x1 := canvasBox.Left + catRange.Translate(hi)
	y0 := canvasBox.Bottom - valRange.Translate(base)
	y1 := canvasBox.Bottom - valRange.Translate(v)
	return chart.Box{Left: min(x0, x1), Right: max(x0, x1), Top: min(y0, y1), Bottom: max(y0, y1)}
}

// groupedBars returns one barSeries per group member, side by side within
// each category slot. names, values and colors are indexed by member.
func groupedBars(names []string, values [][]float64, colors []drawing.Color, label func(float64) string) []chart.Series {
	n := len(values)
	if n == 0 {
		return nil
	}
	width := 0.8 / float64(n)
	series := make([]chart.Series, 0, n)
	for j := range values {
		c := pick(colors, j)
		series = append(series, barSeries{
			Name:   names[j],
			Style:  legendStyle(c),
			Values: values[j],
			Offset: (float64(j) - float64(n-1)/2) * width,
			Width:  width,
			Label:  label,
		})
	}
	return series
}

// legendStyle fills bars with c and draws a thick legend swatch.
func legendStyle(c drawing.Color) chart.Style {
	return chart.Style{
		FillColor:   c,
		StrokeColor: c,
		StrokeWidth: 8,
	}
}
