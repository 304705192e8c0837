package charts

import (
	"fmt"
	"math"

	"github.com/eps-fdir/epsfdir/internal/dataset"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"
)

// convergence returns the simulated error of a corrected model per sample:
// a linear ramp from the uncorrected error to the warmup value over the
// warmup samples, then a linear convergence to the floor.
func convergence(m dataset.Metric, samples, warmup int) []float64 {
	ramp := floats.Span(make([]float64, warmup), m.Uncorrected, m.WarmupValue)
	settle := floats.Span(make([]float64, samples-warmup), m.WarmupValue, m.Floor)
	return append(ramp, settle...)
}

// sampleIndex returns 0..n-1 as floats.
func sampleIndex(n int) []float64 {
	return floats.Span(make([]float64, n), 0, float64(n-1))
}

// CrossDeployment renders the cross-deployment scenario from the
// illustrative dataset: one convergence chart per metric, the improvement
// from bias correction and a summary table.
func CrossDeployment(dep dataset.Deployment, dpi float64) ([]byte, error) {
	if dep.Warmup < 2 || dep.Samples-dep.Warmup < 2 {
		return nil, fmt.Errorf("%w: %d samples with %d warmup", ErrRender, dep.Samples, dep.Warmup)
	}
	if len(dep.Metrics) == 0 {
		return nil, fmt.Errorf("%w: no deployment metrics", ErrRender)
	}

	n := len(dep.Metrics) + 2
	f := figure{
		Title:    fmt.Sprintf("%s → %s Deployment Analysis", dep.Source, dep.Target),
		Footnote: illustrativeNote,
		DPI:      dpi,
		Width:    px(14, dpi),
		Height:   px(10, dpi),
		Rows:     (n + 1) / 2,
		Cols:     2,
	}
	for i, m := range dep.Metrics {
		f.Cells = append(f.Cells, cell{
			Row:  i / 2,
			Col:  i % 2,
			Name: m.Name + " convergence",
			Plot: chartPlot(convergenceChart(dep, m, dpi)),
		})
	}
	i := len(dep.Metrics)
	f.Cells = append(f.Cells,
		cell{Row: i / 2, Col: i % 2, Name: "improvement", Plot: chartPlotNoLegend(improvementChart(dep, dpi))},
		cell{Row: (i + 1) / 2, Col: (i + 1) % 2, Name: "summary", Plot: tablePlot(summaryTable(dep, dpi))},
	)
	return f.render()
}

func convergenceChart(dep dataset.Deployment, m dataset.Metric, dpi float64) chart.Chart {
	xs := sampleIndex(dep.Samples)
	corrected := convergence(m, dep.Samples, dep.Warmup)
	last := float64(dep.Samples - 1)

	lo := math.Min(floats.Min(corrected), math.Min(m.Uncorrected, m.SourceBaseline))
	hi := math.Max(floats.Max(corrected), math.Max(m.Uncorrected, m.SourceBaseline))
	pad := (hi - lo) * 0.08
	if pad == 0 {
		pad = math.Abs(hi)*0.1 + 1
	}
	yTicks := niceTicks(lo-pad, hi+pad, 6)
	yr := tickRange(yTicks)

	yName := m.Name + " MAE"
	if m.Unit != "" {
		yName += " (" + m.Unit + ")"
	}
	ch := newPlot(fmt.Sprintf("%s MAE Convergence on %s", m.Name, dep.Target), dpi,
		linearXAxis("Sample Index", niceTicks(0, last, 6)),
		linearYAxis(yName, yTicks))
	ch.Series = []chart.Series{
		hline("No Adaptation", m.Uncorrected, 0, last, colorRed.WithAlpha(180), dashed),
		plainLine("With Bias Correction", xs, corrected, colorGreen, nil),
		vline("Warmup End", float64(dep.Warmup), yr.Min, yr.Max, colorOrange, dashed),
		hline(dep.Source+" (baseline)", m.SourceBaseline, 0, last, colorBlue, dotted),
	}
	return ch
}

// improvementPalette colors the improvement bars in metric order.
var improvementPalette = []drawing.Color{colorSteelBlue, colorCoral, colorMediumSeaGreen, colorDarkOrange}

func improvementChart(dep dataset.Deployment, dpi float64) chart.Chart {
	names := make([]string, len(dep.Metrics))
	values := make([]float64, len(dep.Metrics))
	for i, m := range dep.Metrics {
		names[i] = m.Name
		values[i] = m.Improvement()
	}
	ch := newPlot("Bias Correction Improvement on "+dep.Target, dpi,
		categoryXAxis("", names),
		linearYAxis("Improvement (%)", valueTicks(values)))
	ch.Series = []chart.Series{
		barSeries{
			Values: values,
			Colors: paletteColors(improvementPalette, len(values)),
			Width:  0.6,
			Label:  percent,
		},
	}
	return ch
}

// summaryRows builds the summary table: the source baseline, the target
// without adaptation and the target with bias correction. The last column
// compares each row with the source baseline.
func summaryRows(dep dataset.Deployment) [][]string {
	header := []string{"Scenario"}
	source := []string{dep.Source + " (Test)"}
	uncorrected := []string{dep.Target + " (No Adapt)"}
	corrected := []string{dep.Target + " (Adapted)"}

	var regression, improvement []float64
	for _, m := range dep.Metrics {
		header = append(header, m.Name+" MAE")
		source = append(source, valueWithUnit(m.SourceBaseline, m.Unit))
		uncorrected = append(uncorrected, valueWithUnit(m.Uncorrected, m.Unit))
		corrected = append(corrected, valueWithUnit(m.Floor, m.Unit))
		if m.SourceBaseline != 0 {
			regression = append(regression, (m.Uncorrected-m.SourceBaseline)/m.SourceBaseline*100)
		}
		if imp := m.Improvement(); !math.IsNaN(imp) {
			improvement = append(improvement, imp)
		}
	}
	header = append(header, "vs "+dep.Source)
	source = append(source, "Baseline")
	uncorrected = append(uncorrected, signedPercentRange(regression))
	corrected = append(corrected, signedPercentRange(improvement))
	return [][]string{header, source, uncorrected, corrected}
}

func summaryTable(dep dataset.Deployment, dpi float64) tableChart {
	return tableChart{
		Title: "Cross-Satellite Performance Summary",
		DPI:   dpi,
		Rows:  summaryRows(dep),
		RowFills: map[int]drawing.Color{
			2: colorRegressionRow,
			3: colorImprovementRow,
		},
	}
}
