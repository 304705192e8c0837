package charts

import (
	"github.com/eps-fdir/epsfdir/internal/dataset"
)

// Chart names. The name is the output file name without extension.
const (
	NameStageProgression       = "stage_progression_comparison"
	NamePanelPerformance       = "panel_specific_performance"
	NameTemporalGeneralization = "temporal_generalization"
	NameMultiTarget            = "multitarget_performance"
	NameResourceRequirements   = "resource_requirements"
	NameCrossDeployment        = "cross_satellite_deployment"
)

// Inputs are the settings and sources every chart may draw from.
type Inputs struct {
	Sources     dataset.Sources
	DPI         float64
	ModelColumn string
	StageLabels []string
	Targets     []string

	// IllustrativeFile overrides the embedded illustrative dataset when set.
	IllustrativeFile string
}

// Definition describes one chart.
type Definition struct {
	Name string

	// Illustrative marks charts drawn from the illustrative dataset rather
	// than measured tables.
	Illustrative bool

	// Render loads the inputs the chart needs and returns PNG bytes.
	Render func(in Inputs) ([]byte, error)
}

// FileName returns the output file name of the chart.
func (d Definition) FileName() string {
	return d.Name + ".png"
}

// All returns the six charts in output order.
func All() []Definition {
	return []Definition{
		{Name: NameStageProgression, Render: renderStageProgression},
		{Name: NamePanelPerformance, Render: renderPanelPerformance},
		{Name: NameTemporalGeneralization, Render: renderTemporalGeneralization},
		{Name: NameMultiTarget, Render: renderMultiTarget},
		{Name: NameResourceRequirements, Illustrative: true, Render: renderResourceRequirements},
		{Name: NameCrossDeployment, Illustrative: true, Render: renderCrossDeployment},
	}
}

func renderStageProgression(in Inputs) ([]byte, error) {
	tbl, err := in.Sources.LoadStageComparison()
	if err != nil {
		return nil, err
	}
	return StageProgression(tbl, in.StageLabels, in.DPI)
}

func renderPanelPerformance(in Inputs) ([]byte, error) {
	stage3, err := in.Sources.LoadStage3()
	if err != nil {
		return nil, err
	}
	stage4, err := in.Sources.LoadStage4()
	if err != nil {
		return nil, err
	}
	return PanelPerformance(stage3, stage4, in.ModelColumn, in.DPI)
}

func renderTemporalGeneralization(in Inputs) ([]byte, error) {
	tbl, err := in.Sources.LoadTemporal()
	if err != nil {
		return nil, err
	}
	return TemporalGeneralization(tbl, in.DPI)
}

func renderMultiTarget(in Inputs) ([]byte, error) {
	tbl, err := in.Sources.LoadMultiTarget()
	if err != nil {
		return nil, err
	}
	return MultiTarget(tbl, in.Targets, in.DPI)
}

func renderResourceRequirements(in Inputs) ([]byte, error) {
	ds, err := dataset.LoadIllustrative(in.IllustrativeFile)
	if err != nil {
		return nil, err
	}
	return ResourceRequirements(ds.Resource, in.DPI)
}

func renderCrossDeployment(in Inputs) ([]byte, error) {
	ds, err := dataset.LoadIllustrative(in.IllustrativeFile)
	if err != nil {
		return nil, err
	}
	return CrossDeployment(ds.Deployment, in.DPI)
}
