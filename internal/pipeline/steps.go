package pipeline

import (
	"context"

	"github.com/eps-fdir/epsfdir/internal/charts"
)

// ChartStep renders one chart definition from the shared inputs.
type ChartStep struct {
	def    charts.Definition
	inputs charts.Inputs
}

// NewChartStep creates a step for one chart.
func NewChartStep(def charts.Definition, inputs charts.Inputs) *ChartStep {
	return &ChartStep{def: def, inputs: inputs}
}

// NewChartSteps creates one step per chart in output order.
func NewChartSteps(inputs charts.Inputs) []Step {
	defs := charts.All()
	steps := make([]Step, 0, len(defs))
	for _, def := range defs {
		steps = append(steps, NewChartStep(def, inputs))
	}
	return steps
}

// Name returns the chart name.
func (s *ChartStep) Name() string {
	return s.def.Name
}

// Illustrative reports whether the chart is drawn from the illustrative
// dataset.
func (s *ChartStep) Illustrative() bool {
	return s.def.Illustrative
}

// Do renders the chart.
func (s *ChartStep) Do(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.def.Render(s.inputs)
}
