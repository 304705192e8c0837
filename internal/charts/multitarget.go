package charts

import (
	"fmt"
	"strings"

	"github.com/eps-fdir/epsfdir/internal/dataset"
	"github.com/wcharczuk/go-chart/v2"
)

// maeAxisNames label the MAE axis of known targets.
var maeAxisNames = map[string]string{
	"power":   "MAE (Power Units)",
	"voltage": "MAE (mV)",
	"current": "MAE (mA)",
}

func maeAxisName(target string) string {
	if name, ok := maeAxisNames[strings.ToLower(target)]; ok {
		return name
	}
	return "MAE"
}

// targetRows holds the multi-target rows of one target.
type targetRows struct {
	Target    string
	Panels    []string
	MAE       []float64
	Inference []float64
}

func loadTargetRows(tbl *dataset.Table, targets []string) ([]targetRows, error) {
	if !tbl.HasColumn(dataset.ColTarget) {
		_, err := tbl.Column(dataset.ColTarget)
		return nil, err
	}
	out := make([]targetRows, 0, len(targets))
	for _, target := range targets {
		rows, err := tbl.Filter(dataset.ColTarget, target)
		if err != nil {
			return nil, err
		}
		if rows.Len() == 0 {
			return nil, fmt.Errorf("%w: target %q in %s", ErrNoRows, target, tbl.Path())
		}
		panels, err := rows.Column(dataset.ColPanel)
		if err != nil {
			return nil, err
		}
		mae, err := floatsOf(rows, dataset.ColMAE)
		if err != nil {
			return nil, err
		}
		inference, err := floatsOf(rows, dataset.ColInferenceTimeUS)
		if err != nil {
			return nil, err
		}
		out = append(out, targetRows{
			Target:    target,
			Panels:    panels.Strings(),
			MAE:       mae,
			Inference: inference,
		})
	}
	return out, nil
}

func floatsOf(tbl *dataset.Table, name string) ([]float64, error) {
	col, err := tbl.Column(name)
	if err != nil {
		return nil, err
	}
	return col.Floats()
}

// MultiTarget renders one MAE-by-panel bar chart per target plus a line
// chart of inference time per panel with one line per target. The panels
// are laid out two per row. A target without rows returns ErrNoRows.
func MultiTarget(tbl *dataset.Table, targets []string, dpi float64) ([]byte, error) {
	rows, err := loadTargetRows(tbl, targets)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no targets configured", ErrRender)
	}

	n := len(rows)
	f := figure{
		DPI:    dpi,
		Width:  px(14, dpi),
		Height: px(10, dpi),
		Rows:   (n + 2) / 2,
		Cols:   2,
	}
	for i, r := range rows {
		f.Cells = append(f.Cells, cell{
			Row:  i / 2,
			Col:  i % 2,
			Name: r.Target,
			Plot: chartPlotNoLegend(targetMAEChart(r, i, dpi)),
		})
	}
	f.Cells = append(f.Cells, cell{
		Row:  n / 2,
		Col:  n % 2,
		Name: "inference time",
		Plot: chartPlot(inferenceChart(rows, dpi)),
	})
	return f.render()
}

func targetMAEChart(r targetRows, index int, dpi float64) chart.Chart {
	ch := newPlot(titleCase(r.Target)+" Prediction MAE by Panel", dpi,
		categoryXAxis("Panel", r.Panels),
		linearYAxis(maeAxisName(r.Target), valueTicks(r.MAE)))
	ch.Series = []chart.Series{
		barSeries{
			Name:   titleCase(r.Target),
			Style:  legendStyle(pick(targetPalette, index).WithAlpha(204)),
			Values: r.MAE,
			Width:  0.6,
		},
	}
	return ch
}

// inferenceChart plots inference time against panel. Panels are placed in
// order of first appearance across targets, so a target missing a panel
// leaves a gap rather than shifting its line.
func inferenceChart(rows []targetRows, dpi float64) chart.Chart {
	var panels []string
	index := make(map[string]int)
	for _, r := range rows {
		for _, p := range r.Panels {
			if _, ok := index[p]; !ok {
				index[p] = len(panels)
				panels = append(panels, p)
			}
		}
	}

	var all [][]float64
	var series []chart.Series
	for i, r := range rows {
		xs := make([]float64, len(r.Panels))
		for j, p := range r.Panels {
			xs[j] = float64(index[p])
		}
		all = append(all, r.Inference)
		series = append(series, lineSeries(titleCase(r.Target), xs, r.Inference, pick(targetPalette, i), nil))
	}

	ch := newPlot("Inference Time by Target and Panel", dpi,
		categoryXAxis("Panel", panels),
		linearYAxis("Inference Time (μs)", valueTicks(all...)))
	ch.Series = series
	return ch
}
