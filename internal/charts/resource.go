package charts

import (
	"fmt"
	"strconv"

	"github.com/eps-fdir/epsfdir/internal/dataset"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	colorCPUActive = drawing.ColorFromHex("e74c3c")
	colorCPUIdle   = drawing.ColorFromHex("ecf0f1")
)

// headroomPalette colors the headroom bars in order.
var headroomPalette = []drawing.Color{
	drawing.ColorFromHex("2ecc71"),
	drawing.ColorFromHex("e74c3c"),
}

func figureLabels(figs []dataset.Figure) []string {
	out := make([]string, len(figs))
	for i, f := range figs {
		out[i] = f.Label
	}
	return out
}

func figureValues(figs []dataset.Figure) []float64 {
	out := make([]float64, len(figs))
	for i, f := range figs {
		out[i] = f.Value
	}
	return out
}

// variantColors colors full models and pruned models apart.
func variantColors(figs []dataset.Figure) []drawing.Color {
	out := make([]drawing.Color, len(figs))
	for i, f := range figs {
		switch f.Variant {
		case dataset.VariantFull:
			out[i] = colorFull.WithAlpha(180)
		case dataset.VariantPruned:
			out[i] = colorPruned.WithAlpha(180)
		default:
			out[i] = colorSteelBlue.WithAlpha(180)
		}
	}
	return out
}

func paletteColors(palette []drawing.Color, n int) []drawing.Color {
	out := make([]drawing.Color, n)
	for i := range out {
		out[i] = pick(palette, i).WithAlpha(180)
	}
	return out
}

func suffixed(suffix string) func(float64) string {
	return func(v float64) string {
		return grouped(v) + suffix
	}
}

// ResourceRequirements renders the deployment resource dashboard from the
// illustrative dataset: model size against the flash budget, inference
// latency, RAM per component, CPU load and computational headroom.
func ResourceRequirements(res dataset.Resource, dpi float64) ([]byte, error) {
	headroom, err := headroomChart(res, dpi)
	if err != nil {
		return nil, err
	}
	return figure{
		Title:    res.Title,
		Footnote: illustrativeNote,
		DPI:      dpi,
		Width:    px(14, dpi),
		Height:   px(10, dpi),
		Rows:     3,
		Cols:     2,
		Cells: []cell{
			{Row: 0, Col: 0, Name: "model size", Plot: chartPlot(modelSizeChart(res, dpi))},
			{Row: 0, Col: 1, Name: "latency", Plot: chartPlotNoLegend(latencyChart(res, dpi))},
			{Row: 1, Col: 0, ColSpan: 2, Name: "ram", Plot: chartPlotNoLegend(ramChart(res, dpi))},
			{Row: 2, Col: 0, Name: "cpu load", Plot: piePlot(cpuChart(res.CPU, dpi))},
			{Row: 2, Col: 1, Name: "headroom", Plot: chartPlotNoLegend(headroom)},
		},
	}.render()
}

func modelSizeChart(res dataset.Resource, dpi float64) chart.Chart {
	figs := res.ModelSizeKB
	n := float64(len(figs))
	ch := newPlot("Model Size: Full vs Pruned", dpi,
		categoryXAxis("", figureLabels(figs)),
		linearYAxis("Size (KB)", valueTicks(figureValues(figs), []float64{res.SizeBudgetKB})))
	ch.Series = []chart.Series{
		barSeries{
			Values: figureValues(figs),
			Colors: variantColors(figs),
			Width:  0.6,
			Label:  suffixed(" KB"),
		},
		hline(res.SizeBudgetLabel, res.SizeBudgetKB, -0.5, n-0.5, colorRed, dashed),
	}
	return ch
}

func latencyChart(res dataset.Resource, dpi float64) chart.Chart {
	figs := res.LatencyUS
	ch := newPlot("Inference Time: Full vs Pruned", dpi,
		categoryXAxis("", figureLabels(figs)),
		linearYAxis("Inference Time (μs)", valueTicks(figureValues(figs))))
	ch.Series = []chart.Series{
		barSeries{
			Values: figureValues(figs),
			Colors: variantColors(figs),
			Width:  0.6,
			Label:  suffixed(" μs"),
		},
	}
	return ch
}

func ramChart(res dataset.Resource, dpi float64) chart.Chart {
	figs := res.RAMBytes
	ch := newPlot("RAM Footprint by Component (per panel)", dpi,
		categoryXAxis("", figureLabels(figs)),
		linearYAxis("RAM Usage (bytes)", valueTicks(figureValues(figs))))
	ch.Series = []chart.Series{
		barSeries{
			Values: figureValues(figs),
			Colors: paletteColors(ramPalette, len(figs)),
			Width:  0.6,
			Label:  suffixed("B"),
		},
	}
	return ch
}

func cpuChart(cpu dataset.CPULoad, dpi float64) chart.PieChart {
	title := fmt.Sprintf("CPU Load @ %s MHz (%d panels, %ss sampling)",
		strconv.FormatFloat(cpu.ClockMHz, 'f', -1, 64),
		cpu.Panels,
		strconv.FormatFloat(cpu.PeriodS, 'f', -1, 64))
	return chart.PieChart{
		Title:      title,
		TitleStyle: chart.Style{FontSize: fontTitle},
		DPI:        dpi,
		Background: chart.Style{Padding: chart.Box{Top: px(0.45, dpi), Bottom: px(0.1, dpi)}},
		Values: []chart.Value{
			{
				Label: fmt.Sprintf("%s (%.3f%%)", cpu.ActiveLabel, cpu.ActivePercent),
				Value: cpu.ActivePercent,
				Style: chart.Style{FillColor: colorCPUActive, StrokeColor: colorWhite, FontSize: fontValue},
			},
			{
				Label: fmt.Sprintf("%s (%.3f%%)", cpu.IdleLabel, cpu.IdlePercent),
				Value: cpu.IdlePercent,
				Style: chart.Style{FillColor: colorCPUIdle, StrokeColor: colorWhite, FontSize: fontValue},
			},
		},
	}
}

// headroomChart draws the throughput factors as horizontal bars on a
// log10 axis with one spare decade on the right for the labels.
func headroomChart(res dataset.Resource, dpi float64) (chart.Chart, error) {
	figs := res.Headroom
	values := figureValues(figs)
	lo, hi, err := decadeBounds(values)
	if err != nil {
		return chart.Chart{}, err
	}
	title := fmt.Sprintf("Computational Headroom (samples per %ss period)",
		strconv.FormatFloat(res.CPU.PeriodS, 'f', -1, 64))
	ch := newPlot(title, dpi,
		logXAxis("Throughput Factor", lo, hi+1),
		categoryYAxis("", figureLabels(figs)))
	ch.Series = []chart.Series{
		barSeries{
			Values:     values,
			Colors:     paletteColors(headroomPalette, len(figs)),
			Width:      0.6,
			Horizontal: true,
			Label:      suffixed("x"),
		},
	}
	return ch, nil
}
