package charts

import (
	"fmt"

	"github.com/eps-fdir/epsfdir/internal/dataset"
	"github.com/wcharczuk/go-chart/v2"
)

// stageProgressionTitle heads the stage progression chart.
const stageProgressionTitle = "Model Performance Across Feature Engineering Stages (Lower is Better)"

// StageProgression renders the average MAE of every model per feature
// stage as grouped bars. tbl has one row per model (row labels) and one
// column per stage. labels name the stages on the x axis; when their count
// differs from the stage columns, the column names are used instead.
func StageProgression(tbl *dataset.Table, labels []string, dpi float64) ([]byte, error) {
	ch, err := stageProgressionChart(tbl, labels, dpi)
	if err != nil {
		return nil, err
	}
	return single(NameStageProgression, 12, 6, dpi, chartPlot(ch)).render()
}

func stageProgressionChart(tbl *dataset.Table, labels []string, dpi float64) (chart.Chart, error) {
	stages := tbl.Columns()
	models := tbl.RowLabels()
	if len(stages) == 0 || len(models) == 0 {
		return chart.Chart{}, fmt.Errorf("%w: %s has no models or stages", ErrRender, tbl.Path())
	}

	// values[model][stage]
	values := make([][]float64, len(models))
	for i := range values {
		values[i] = make([]float64, len(stages))
	}
	for j, stage := range stages {
		col, err := tbl.Column(stage)
		if err != nil {
			return chart.Chart{}, err
		}
		vs, err := col.Floats()
		if err != nil {
			return chart.Chart{}, err
		}
		for i, v := range vs {
			values[i][j] = v
		}
	}

	ticks := stages
	if len(labels) == len(stages) {
		ticks = labels
	}

	ch := newPlot(stageProgressionTitle, dpi,
		categoryXAxis("Stage", ticks),
		linearYAxis("Average MAE", valueTicks(values...)))
	ch.Series = groupedBars(models, values, modelPalette, grouped)
	return ch, nil
}
