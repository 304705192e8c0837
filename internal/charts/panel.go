package charts

import (
	"fmt"

	"github.com/eps-fdir/epsfdir/internal/dataset"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// panelComparison pairs the stage 3 and stage 4 values of one model.
type panelComparison struct {
	Panels      []string
	Stage3      []float64
	Stage4      []float64
	Improvement []float64
}

// comparePanels matches the stage 4 rows to the stage 3 panels by name.
// A stage 3 panel without a stage 4 row returns ErrMissingPanel.
func comparePanels(stage3, stage4 *dataset.Table, model string) (*panelComparison, error) {
	panels3, values3, err := panelValues(stage3, model)
	if err != nil {
		return nil, err
	}
	panels4, values4, err := panelValues(stage4, model)
	if err != nil {
		return nil, err
	}
	byPanel := make(map[string]float64, len(panels4))
	for i, p := range panels4 {
		if _, dup := byPanel[p]; !dup {
			byPanel[p] = values4[i]
		}
	}

	pc := &panelComparison{
		Panels: panels3,
		Stage3: values3,
	}
	for i, p := range panels3 {
		v, ok := byPanel[p]
		if !ok {
			return nil, fmt.Errorf("%w: %q from %s not in %s", ErrMissingPanel, p, stage3.Path(), stage4.Path())
		}
		pc.Stage4 = append(pc.Stage4, v)
		pc.Improvement = append(pc.Improvement, dataset.Improvement(values3[i], v))
	}
	return pc, nil
}

func panelValues(tbl *dataset.Table, model string) ([]string, []float64, error) {
	panels, err := tbl.Column(dataset.ColPanel)
	if err != nil {
		return nil, nil, err
	}
	col, err := tbl.Column(model)
	if err != nil {
		return nil, nil, err
	}
	values, err := col.Floats()
	if err != nil {
		return nil, nil, err
	}
	return panels.Strings(), values, nil
}

// improvementColors colors improved panels green and regressed ones red.
func improvementColors(improvement []float64) []drawing.Color {
	colors := make([]drawing.Color, len(improvement))
	for i, v := range improvement {
		if dataset.Improved(v) {
			colors[i] = colorGreen.WithAlpha(200)
		} else {
			colors[i] = colorRed.WithAlpha(200)
		}
	}
	return colors
}

// PanelPerformance renders the stage 3 and stage 4 MAE of one model per
// panel next to the relative improvement of stage 4.
func PanelPerformance(stage3, stage4 *dataset.Table, model string, dpi float64) ([]byte, error) {
	pc, err := comparePanels(stage3, stage4, model)
	if err != nil {
		return nil, err
	}
	if len(pc.Panels) == 0 {
		return nil, fmt.Errorf("%w: %s has no panels", ErrRender, stage3.Path())
	}
	left, right := panelCharts(pc, model, dpi)
	return figure{
		DPI:    dpi,
		Width:  px(14, dpi),
		Height: px(6, dpi),
		Rows:   1,
		Cols:   2,
		Cells: []cell{
			{Row: 0, Col: 0, Name: "stage comparison", Plot: chartPlot(left)},
			{Row: 0, Col: 1, Name: "improvement", Plot: chartPlotNoLegend(right)},
		},
	}.render()
}

func panelCharts(pc *panelComparison, model string, dpi float64) (left, right chart.Chart) {
	left = newPlot(fmt.Sprintf("%s: Stage 3 vs Stage 4 Performance", model), dpi,
		categoryXAxis("Panel", pc.Panels),
		linearYAxis("MAE", valueTicks(pc.Stage3, pc.Stage4)))
	left.Series = groupedBars(
		[]string{"Stage 3", "Stage 4"},
		[][]float64{pc.Stage3, pc.Stage4},
		[]drawing.Color{colorSkyBlue.WithAlpha(204), colorCoral.WithAlpha(204)},
		nil)

	n := float64(len(pc.Panels))
	right = newPlot("Stage 4 Improvement over Stage 3", dpi,
		linearXAxis("Improvement (%)", valueTicks(pc.Improvement)),
		categoryYAxis("Panel", pc.Panels))
	right.Series = []chart.Series{
		barSeries{
			Values:     pc.Improvement,
			Colors:     improvementColors(pc.Improvement),
			Width:      0.6,
			Horizontal: true,
			Label:      percent,
		},
		vline("", 0, -0.5, n-0.5, colorBlack, dashed),
	}
	return left, right
}
