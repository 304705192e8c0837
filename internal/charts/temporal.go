package charts

import (
	"github.com/eps-fdir/epsfdir/internal/dataset"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const temporalTitle = "Temporal Generalization Analysis: Train vs Val vs Test (60/20/20 Chronological Split)"

// TemporalGeneralization renders train, validation and test MAE per panel
// on a log10 value axis. The axis spans the enclosing powers of ten of all
// values, so panels whose errors differ by orders of magnitude are all
// visible. A value <= 0 returns ErrRender.
func TemporalGeneralization(tbl *dataset.Table, dpi float64) ([]byte, error) {
	ch, err := temporalChart(tbl, dpi)
	if err != nil {
		return nil, err
	}
	return single(NameTemporalGeneralization, 12, 7, dpi, chartPlot(ch)).render()
}

func temporalChart(tbl *dataset.Table, dpi float64) (chart.Chart, error) {
	panels, err := tbl.Column(dataset.ColPanel)
	if err != nil {
		return chart.Chart{}, err
	}
	var splits [][]float64
	for _, name := range []string{dataset.ColTrainMAE, dataset.ColValMAE, dataset.ColTestMAE} {
		col, err := tbl.Column(name)
		if err != nil {
			return chart.Chart{}, err
		}
		vs, err := col.Floats()
		if err != nil {
			return chart.Chart{}, err
		}
		splits = append(splits, vs)
	}

	lo, hi, err := decadeBounds(splits...)
	if err != nil {
		return chart.Chart{}, err
	}

	ch := newPlot(temporalTitle, dpi,
		categoryXAxis("Panel", panels.Strings()),
		logYAxis("MAE", lo, hi))
	ch.Series = groupedBars(
		[]string{"Train", "Validation", "Test"},
		splits,
		[]drawing.Color{
			colorLightGreen.WithAlpha(204),
			colorOrange.WithAlpha(204),
			colorLightCoral.WithAlpha(204),
		},
		nil)
	return ch, nil
}
