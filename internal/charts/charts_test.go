package charts

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/eps-fdir/epsfdir/internal/dataset"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// testDPI keeps rendered test images small.
const testDPI = 40

const (
	stageComparisonCSV = `,Stage1,Stage2,Stage3,Stage4
RandomForest,132000,101000,84000,71500
XGBoost,140500,,88000,76000
LinearRegression,190000,170000,165000,160000
`
	stage3CSV = `panel,RandomForest,XGBoost
+X,100,110
-X,50,55
+Y,0,12
-Y,80000,81000
`
	stage4CSV = `panel,RandomForest,XGBoost
-X,60,52
+X,75,90
+Y,10,11
-Y,,79000
`
	temporalCSV = `panel,train_mae,val_mae,test_mae
+X,12.5,40.1,45.3
-X,3.2,9.9,11.0
+Y,1500,42000,51000
`
	multiTargetCSV = `panel,target,mae,inference_time_us
+X,Power,70600,85
-X,Power,68000,86
+X,Voltage,146.46,72
-X,Voltage,150.2,
+X,Current,12.1,64
-X,Current,13.4,66
`
)

// writeFixtures writes a complete set of result tables and returns the
// chart inputs reading them.
func writeFixtures(t *testing.T) Inputs {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"stage_comparison_avg_mae.csv":        stageComparisonCSV,
		"stage3_mae_by_panel_model.csv":       stage3CSV,
		"stage4_mae_by_panel_model.csv":       stage4CSV,
		"temporal_generalization_results.csv": temporalCSV,
		"multitarget_prediction_results.csv":  multiTargetCSV,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return Inputs{
		Sources: dataset.Sources{
			StageComparison: filepath.Join(dir, "stage_comparison_avg_mae.csv"),
			Stage3:          filepath.Join(dir, "stage3_mae_by_panel_model.csv"),
			Stage4:          filepath.Join(dir, "stage4_mae_by_panel_model.csv"),
			Temporal:        filepath.Join(dir, "temporal_generalization_results.csv"),
			MultiTarget:     filepath.Join(dir, "multitarget_prediction_results.csv"),
		},
		DPI:         testDPI,
		ModelColumn: "RandomForest",
		StageLabels: []string{"Stage 1 (Power)", "Stage 2 (+V,I)", "Stage 3 (+Temp)", "Stage 4 (+Deriv)"},
		Targets:     []string{"Power", "Voltage", "Current"},
	}
}

func parseFixture(t *testing.T, content string, opts ...dataset.TableOption) *dataset.Table {
	t.Helper()
	tbl, err := dataset.ParseTable("fixture.csv", []byte(content), opts...)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

// TestAllCharts tests that every chart renders a decodable PNG of the
// expected size from well formed inputs.
func TestAllCharts(t *testing.T) {
	t.Parallel()

	in := writeFixtures(t)
	sizes := map[string][2]float64{
		NameStageProgression:       {12, 6},
		NamePanelPerformance:       {14, 6},
		NameTemporalGeneralization: {12, 7},
		NameMultiTarget:            {14, 10},
		NameResourceRequirements:   {14, 10},
		NameCrossDeployment:        {14, 10},
	}

	defs := All()
	if len(defs) != 6 {
		t.Fatalf("expected 6 charts, got %d", len(defs))
	}
	for _, def := range defs {
		t.Run(def.Name, func(t *testing.T) {
			t.Parallel()
			data, err := def.Render(in)
			if err != nil {
				t.Fatalf("render failed: %v", err)
			}
			if len(data) == 0 {
				t.Fatal("expected non-empty image")
			}
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			size := sizes[def.Name]
			b := img.Bounds()
			if b.Dx() != px(size[0], testDPI) || b.Dy() != px(size[1], testDPI) {
				t.Errorf("got %dx%d, want %dx%d", b.Dx(), b.Dy(), px(size[0], testDPI), px(size[1], testDPI))
			}
		})
	}
}

// TestAllOrder tests the fixed chart order and the illustrative flag.
func TestAllOrder(t *testing.T) {
	t.Parallel()

	var names []string
	var illustrative []string
	for _, def := range All() {
		names = append(names, def.Name)
		if def.Illustrative {
			illustrative = append(illustrative, def.Name)
		}
	}
	want := []string{
		"stage_progression_comparison",
		"panel_specific_performance",
		"temporal_generalization",
		"multitarget_performance",
		"resource_requirements",
		"cross_satellite_deployment",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("chart order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"resource_requirements", "cross_satellite_deployment"}, illustrative); diff != "" {
		t.Errorf("illustrative charts mismatch (-want +got):\n%s", diff)
	}
	if got := All()[0].FileName(); got != "stage_progression_comparison.png" {
		t.Errorf("unexpected file name %q", got)
	}
}

// TestRenderErrors tests that broken inputs fail the chart that reads them.
func TestRenderErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		in := writeFixtures(t)
		in.Sources.Temporal = filepath.Join(t.TempDir(), "absent.csv")
		_, err := renderTemporalGeneralization(in)
		if !errors.Is(err, dataset.ErrMissingFile) {
			t.Errorf("expected ErrMissingFile, got %v", err)
		}
	})

	t.Run("missing model column", func(t *testing.T) {
		t.Parallel()
		in := writeFixtures(t)
		in.ModelColumn = "GradientBoosting"
		_, err := renderPanelPerformance(in)
		if !errors.Is(err, dataset.ErrMissingColumn) {
			t.Errorf("expected ErrMissingColumn, got %v", err)
		}
	})

	t.Run("non-positive value on log axis", func(t *testing.T) {
		t.Parallel()
		tbl := parseFixture(t, "panel,train_mae,val_mae,test_mae\n+X,0,1,2\n")
		_, err := TemporalGeneralization(tbl, testDPI)
		if !errors.Is(err, ErrRender) {
			t.Errorf("expected ErrRender, got %v", err)
		}
	})

	t.Run("target without rows", func(t *testing.T) {
		t.Parallel()
		tbl := parseFixture(t, multiTargetCSV)
		_, err := MultiTarget(tbl, []string{"Power", "Temperature"}, testDPI)
		if !errors.Is(err, ErrNoRows) {
			t.Errorf("expected ErrNoRows, got %v", err)
		}
	})

	t.Run("invalid illustrative file", func(t *testing.T) {
		t.Parallel()
		in := writeFixtures(t)
		path := filepath.Join(t.TempDir(), "illustrative.yaml")
		if err := os.WriteFile(path, []byte("resource: {}\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		in.IllustrativeFile = path
		_, err := renderResourceRequirements(in)
		if !errors.Is(err, dataset.ErrInvalidIllustrative) {
			t.Errorf("expected ErrInvalidIllustrative, got %v", err)
		}
	})
}

// TestStageProgressionChart tests the grouped bars of the stage chart.
func TestStageProgressionChart(t *testing.T) {
	t.Parallel()

	tbl := parseFixture(t, stageComparisonCSV, dataset.WithRowLabels())

	t.Run("one series per model with stage labels", func(t *testing.T) {
		t.Parallel()
		labels := []string{"Stage 1 (Power)", "Stage 2 (+V,I)", "Stage 3 (+Temp)", "Stage 4 (+Deriv)"}
		ch, err := stageProgressionChart(tbl, labels, testDPI)
		if err != nil {
			t.Fatal(err)
		}
		if len(ch.Series) != 3 {
			t.Fatalf("expected 3 series, got %d", len(ch.Series))
		}
		if got := ch.Series[1].GetName(); got != "XGBoost" {
			t.Errorf("expected XGBoost, got %q", got)
		}
		if got := ch.XAxis.Ticks[1].Label; got != "Stage 1 (Power)" {
			t.Errorf("expected configured stage label, got %q", got)
		}
	})

	t.Run("missing value has no bar and no label", func(t *testing.T) {
		t.Parallel()
		ch, err := stageProgressionChart(tbl, nil, testDPI)
		if err != nil {
			t.Fatal(err)
		}
		bs, ok := ch.Series[1].(barSeries)
		if !ok {
			t.Fatalf("expected barSeries, got %T", ch.Series[1])
		}
		want := []barLabel{
			{Index: 0, Value: 140500, Text: "140,500"},
			{Index: 2, Value: 88000, Text: "88,000"},
			{Index: 3, Value: 76000, Text: "76,000"},
		}
		if diff := cmp.Diff(want, bs.labels()); diff != "" {
			t.Errorf("labels mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("label count mismatch falls back to column names", func(t *testing.T) {
		t.Parallel()
		ch, err := stageProgressionChart(tbl, []string{"only", "three", "labels"}, testDPI)
		if err != nil {
			t.Fatal(err)
		}
		if got := ch.XAxis.Ticks[1].Label; got != "Stage1" {
			t.Errorf("expected column name, got %q", got)
		}
	})
}

// TestComparePanels tests panel matching and the improvement values.
func TestComparePanels(t *testing.T) {
	t.Parallel()

	stage3 := parseFixture(t, stage3CSV)

	t.Run("matches panels by name", func(t *testing.T) {
		t.Parallel()
		pc, err := comparePanels(stage3, parseFixture(t, stage4CSV), "RandomForest")
		if err != nil {
			t.Fatal(err)
		}
		want := &panelComparison{
			Panels:      []string{"+X", "-X", "+Y", "-Y"},
			Stage3:      []float64{100, 50, 0, 80000},
			Stage4:      []float64{75, 60, 10, math.NaN()},
			Improvement: []float64{25, -20, math.NaN(), math.NaN()},
		}
		if diff := cmp.Diff(want, pc, cmpopts.EquateNaNs(), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Errorf("comparison mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("undefined improvement has no label", func(t *testing.T) {
		t.Parallel()
		pc, err := comparePanels(stage3, parseFixture(t, stage4CSV), "RandomForest")
		if err != nil {
			t.Fatal(err)
		}
		_, right := panelCharts(pc, "RandomForest", testDPI)
		bs, ok := right.Series[0].(barSeries)
		if !ok {
			t.Fatalf("expected barSeries, got %T", right.Series[0])
		}
		var texts []string
		for _, l := range bs.labels() {
			texts = append(texts, l.Text)
		}
		if diff := cmp.Diff([]string{"25.0%", "-20.0%"}, texts); diff != "" {
			t.Errorf("labels mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("improved and regressed colors", func(t *testing.T) {
		t.Parallel()
		colors := improvementColors([]float64{25, -20})
		if colors[0] != colorGreen.WithAlpha(200) {
			t.Errorf("expected green for improvement, got %v", colors[0])
		}
		if colors[1] != colorRed.WithAlpha(200) {
			t.Errorf("expected red for regression, got %v", colors[1])
		}
	})

	t.Run("panel missing from stage 4", func(t *testing.T) {
		t.Parallel()
		stage4 := parseFixture(t, "panel,RandomForest\n+X,75\n-X,60\n-Y,70000\n")
		_, err := comparePanels(stage3, stage4, "RandomForest")
		if !errors.Is(err, ErrMissingPanel) {
			t.Errorf("expected ErrMissingPanel, got %v", err)
		}
	})
}

// TestTemporalChart tests that the log axis covers every value.
func TestTemporalChart(t *testing.T) {
	t.Parallel()

	ch, err := temporalChart(parseFixture(t, temporalCSV), testDPI)
	if err != nil {
		t.Fatal(err)
	}
	r, ok := ch.YAxis.Range.(*logRange)
	if !ok {
		t.Fatalf("expected log range, got %T", ch.YAxis.Range)
	}
	if r.Min > 3.2 || r.Max < 51000 {
		t.Errorf("range [%g, %g] clips values between 3.2 and 51000", r.Min, r.Max)
	}
	if len(ch.Series) != 3 {
		t.Errorf("expected 3 series, got %d", len(ch.Series))
	}
}

// TestInferenceChart tests that panels are aligned across targets.
func TestInferenceChart(t *testing.T) {
	t.Parallel()

	rows, err := loadTargetRows(parseFixture(t, multiTargetCSV), []string{"Power", "Voltage"})
	if err != nil {
		t.Fatal(err)
	}
	ch := inferenceChart(rows, testDPI)
	if len(ch.Series) != 2 {
		t.Fatalf("expected 2 series, got %d", len(ch.Series))
	}
	if got := ch.XAxis.Ticks[2].Label; got != "-X" {
		t.Errorf("expected -X as second panel, got %q", got)
	}
}
