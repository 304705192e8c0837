package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// Result tables shared by the command tests.
const (
	stageComparisonCSV = `,Stage1,Stage2,Stage3,Stage4
RandomForest,132000,101000,84000,71500
XGBoost,140500,,88000,76000
`
	stage3CSV = `panel,RandomForest,XGBoost
+X,100,110
-X,50,55
`
	stage4CSV = `panel,RandomForest,XGBoost
+X,75,90
-X,60,52
`
	temporalCSV = `panel,train_mae,val_mae,test_mae
+X,12.5,40.1,45.3
-X,3.2,9.9,11.0
`
	multiTargetCSV = `panel,target,mae,inference_time_us
+X,Power,70600,85
-X,Power,68000,86
+X,Voltage,146.46,72
-X,Voltage,150.2,70
+X,Current,12.1,64
-X,Current,13.4,66
`
)

// testModel is a two-tree forest over two features.
const testModel = `{
  "format": "epsfdir-forest",
  "version": 1,
  "estimator": "RandomForestRegressor",
  "n_features_in": 2,
  "feature_names": ["Volt_lag1", "Volt_lag2"],
  "trees": [
    {"nodes": [
      {"feature": 0, "threshold": 28.5, "left": 1, "right": 2},
      {"value": 27.9},
      {"value": 29.1}
    ]},
    {"nodes": [
      {"feature": 1, "threshold": 28.0, "left": 1, "right": 2},
      {"value": 27.7},
      {"value": 28.8}
    ]}
  ]
}`

// workspace is a temporary project directory with result tables, model
// artifacts and a configuration file pointing every path into it.
type workspace struct {
	root       string
	tables     string
	figures    string
	models     string
	cCode      string
	dbDir      string
	configPath string
}

// newWorkspace creates a workspace. The config file keeps the tests away
// from the user's configuration and history.
func newWorkspace(t *testing.T) *workspace {
	t.Helper()

	root := t.TempDir()
	ws := &workspace{
		root:       root,
		tables:     filepath.Join(root, "results"),
		figures:    filepath.Join(root, "figures", "synthesis"),
		models:     filepath.Join(root, "deploy", "models"),
		cCode:      filepath.Join(root, "deploy", "c_code"),
		dbDir:      filepath.Join(root, "history"),
		configPath: filepath.Join(root, ".epsfdir"),
	}

	writeFile(t, filepath.Join(ws.tables, "stage_comparison_avg_mae.csv"), stageComparisonCSV)
	writeFile(t, filepath.Join(ws.tables, "stage3_mae_by_panel_model.csv"), stage3CSV)
	writeFile(t, filepath.Join(ws.tables, "stage4_mae_by_panel_model.csv"), stage4CSV)
	writeFile(t, filepath.Join(ws.tables, "temporal_generalization_results.csv"), temporalCSV)
	writeFile(t, filepath.Join(ws.tables, "multitarget_prediction_results.csv"), multiTargetCSV)
	writeFile(t, filepath.Join(ws.models, "voltage_rf_pruned50_+X_20230101.json"), testModel)
	writeFile(t, filepath.Join(ws.models, "voltage_rf_pruned50_+X_20230215.json"), testModel)

	writeFile(t, ws.configPath, `charts:
  inputDir: `+ws.tables+`
  outputDir: `+ws.figures+`
  dpi: 40
export:
  artifactDir: `+ws.models+`
  cCodeDir: `+ws.cCode+`
history:
  dbDir: `+ws.dbDir+`
`)
	return ws
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

// run executes the root command with the workspace configuration and
// returns its stdout.
func (ws *workspace) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", ws.configPath}, args...))

	err := cmd.Execute()
	if stderr.Len() > 0 {
		t.Logf("stderr:\n%s", stderr.String())
	}
	return stdout.String(), err
}
