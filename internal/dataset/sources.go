package dataset

// Sources holds the paths of the five measured result tables.
// Each chart loads only the tables it needs, so a missing or broken file
// fails only the charts that read it.
type Sources struct {
	// StageComparison has one row per model and one column per stage.
	// Its first column holds the model name.
	StageComparison string

	// Stage3 and Stage4 have a "panel" column and one column per model.
	Stage3 string
	Stage4 string

	// Temporal has panel, train_mae, val_mae and test_mae columns.
	Temporal string

	// MultiTarget has panel, target, mae and inference_time_us columns.
	MultiTarget string
}

// Column names of the measured tables.
const (
	ColPanel           = "panel"
	ColTarget          = "target"
	ColMAE             = "mae"
	ColInferenceTimeUS = "inference_time_us"
	ColTrainMAE        = "train_mae"
	ColValMAE          = "val_mae"
	ColTestMAE         = "test_mae"
)

// LoadStageComparison loads the stage comparison table with model names as
// row labels.
func (s Sources) LoadStageComparison() (*Table, error) {
	return LoadTable(s.StageComparison, WithRowLabels())
}

// LoadStage3 loads the per-panel stage 3 table.
func (s Sources) LoadStage3() (*Table, error) {
	return LoadTable(s.Stage3)
}

// LoadStage4 loads the per-panel stage 4 table.
func (s Sources) LoadStage4() (*Table, error) {
	return LoadTable(s.Stage4)
}

// LoadTemporal loads the temporal generalization table.
func (s Sources) LoadTemporal() (*Table, error) {
	return LoadTable(s.Temporal)
}

// LoadMultiTarget loads the multi-target table.
func (s Sources) LoadMultiTarget() (*Table, error) {
	return LoadTable(s.MultiTarget)
}
