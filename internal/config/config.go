package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The file names and paths match the layout of the analysis workspace the
// result tables are produced in, so running from that directory needs no
// configuration at all.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "epsfdir"

	// DefaultInputDir is where the CSV result tables are read from.
	DefaultInputDir = "."

	// DefaultOutputDir is where the six chart images are written.
	DefaultOutputDir = "figures/synthesis"

	// DefaultDPI is the chart resolution. Figure sizes are given in inches,
	// so the pixel size of every chart is inches * DPI.
	DefaultDPI = 150.0

	// DefaultJobs renders charts one at a time.
	DefaultJobs = 1

	// DefaultModelColumn is the model column compared across stage 3 and 4.
	DefaultModelColumn = "RandomForest"

	// DefaultArtifactDir is the directory holding serialized model artifacts.
	DefaultArtifactDir = "deploy/models"

	// DefaultModelKind is the model-kind prefix of the exported artifact.
	DefaultModelKind = "voltage_rf"

	// DefaultPruning is the pruning tag appended to the model kind.
	DefaultPruning = "pruned50"

	// DefaultPanel is the panel identifier the artifact must contain.
	DefaultPanel = "+X"

	// DefaultCCodeDir is where generated C sources are written.
	DefaultCCodeDir = "deploy/c_code"

	// DefaultOutputFile is the generated C source file name.
	DefaultOutputFile = "voltage_model.c"

	// DefaultFunctionName is the scoring function emitted in the C source.
	DefaultFunctionName = "score_voltage"

	// DefaultPreviewLines is how many generated lines are echoed after export.
	DefaultPreviewLines = 20
)

// Default CSV file names of the measured result tables.
const (
	DefaultStageComparisonFile = "stage_comparison_avg_mae.csv"
	DefaultStage3File          = "stage3_mae_by_panel_model.csv"
	DefaultStage4File          = "stage4_mae_by_panel_model.csv"
	DefaultTemporalFile        = "temporal_generalization_results.csv"
	DefaultMultiTargetFile     = "multitarget_prediction_results.csv"
)

// DefaultStageLabels are the x-axis labels of the stage progression chart,
// one per stage column of the stage comparison table.
func DefaultStageLabels() []string {
	return []string{"Stage 1 (Power)", "Stage 2 (+V,I)", "Stage 3 (+Temp)", "Stage 4 (+Deriv)"}
}

// DefaultTargets are the target quantities of the multi-target table, in
// the order their subplots are drawn.
func DefaultTargets() []string {
	return []string{"Power", "Voltage", "Current"}
}

// cIdentifier matches a valid C identifier.
var cIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Tables holds the file names of the five measured result tables.
// Relative names are resolved against Config.InputDir.
type Tables struct {
	StageComparison string
	Stage3          string
	Stage4          string
	Temporal        string
	MultiTarget     string
}

// Config holds all configuration options for epsfdir.
// It is populated from defaults, then the configuration file, then CLI
// flags, and passed explicitly to the chart and export commands.
type Config struct {
	// InputDir is the directory the result tables are read from.
	InputDir string

	// Tables are the result table file names.
	Tables Tables

	// OutputDir is the chart output directory. It is created with its
	// parents when missing.
	OutputDir string

	// DPI is the rendering resolution of every chart.
	DPI float64

	// Jobs is the maximum number of charts rendered concurrently.
	Jobs int

	// FailFast stops chart generation at the first failing chart instead of
	// rendering the rest and reporting every failure at the end.
	FailFast bool

	// MarkdownSummary writes summary.md next to the charts.
	MarkdownSummary bool

	// ModelColumn is the model compared in the panel chart.
	ModelColumn string

	// StageLabels label the stage columns. When the count differs from the
	// number of stage columns the column names are used instead.
	StageLabels []string

	// Targets are the target quantities of the multi-target grid.
	Targets []string

	// IllustrativeFile is an optional YAML file replacing the embedded
	// illustrative dataset.
	IllustrativeFile string

	// ArtifactDir is the directory scanned for model artifacts.
	ArtifactDir string

	// ModelKind is the model-kind prefix every candidate must start with.
	ModelKind string

	// Pruning is appended to ModelKind with an underscore. Empty means the
	// kind alone is the required prefix.
	Pruning string

	// Panel is the panel identifier every candidate must contain.
	Panel string

	// CCodeDir is the directory generated sources are written to.
	CCodeDir string

	// OutputFile is the generated C source file name inside CCodeDir.
	OutputFile string

	// FunctionName is the scoring function name in the generated source.
	FunctionName string

	// PreviewLines is the number of generated lines echoed to stdout.
	PreviewLines int

	// WriteHeader also writes a header declaring the scoring function.
	WriteHeader bool

	// ExportSummary writes a Markdown export summary next to the source.
	ExportSummary bool

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the configuration file given with --config.
	ConfigFilePath string

	// SaveHistory records every run in the history database.
	SaveHistory bool

	// DBDir is the directory of the history database.
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		InputDir: DefaultInputDir,
		Tables: Tables{
			StageComparison: DefaultStageComparisonFile,
			Stage3:          DefaultStage3File,
			Stage4:          DefaultStage4File,
			Temporal:        DefaultTemporalFile,
			MultiTarget:     DefaultMultiTargetFile,
		},
		OutputDir:    DefaultOutputDir,
		DPI:          DefaultDPI,
		Jobs:         DefaultJobs,
		ModelColumn:  DefaultModelColumn,
		StageLabels:  DefaultStageLabels(),
		Targets:      DefaultTargets(),
		ArtifactDir:  DefaultArtifactDir,
		ModelKind:    DefaultModelKind,
		Pruning:      DefaultPruning,
		Panel:        DefaultPanel,
		CCodeDir:     DefaultCCodeDir,
		OutputFile:   DefaultOutputFile,
		FunctionName: DefaultFunctionName,
		PreviewLines: DefaultPreviewLines,
		WriteHeader:  true,
		SaveHistory:  true,
		DBDir:        XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for epsfdir.
// On Linux: ~/.local/share/epsfdir
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for epsfdir.
// On Linux: ~/.config/epsfdir
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// TablePath resolves a table file name against InputDir.
// Absolute names are returned unchanged.
func (c *Config) TablePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.InputDir, name)
}

// SourcePath returns the path of the generated C source.
func (c *Config) SourcePath() string {
	return filepath.Join(c.CCodeDir, c.OutputFile)
}

// HeaderPath returns the path of the generated header: the source path
// with its extension replaced by ".h".
func (c *Config) HeaderPath() string {
	src := c.SourcePath()
	return strings.TrimSuffix(src, filepath.Ext(src)) + ".h"
}

// ExportSummaryPath returns the path of the Markdown export summary: the
// source path with its extension replaced by ".md".
func (c *Config) ExportSummaryPath() string {
	src := c.SourcePath()
	return strings.TrimSuffix(src, filepath.Ext(src)) + ".md"
}

// ValidateCharts checks the options used by the chart generator.
// It returns the first problem found.
func (c *Config) ValidateCharts() error {
	if c.OutputDir == "" {
		return ErrEmptyOutputDir
	}
	if c.DPI <= 0 {
		return ErrInvalidDPI
	}
	if c.Jobs <= 0 {
		return ErrInvalidJobs
	}
	if c.ModelColumn == "" {
		return ErrEmptyModelColumn
	}
	if len(c.Targets) == 0 {
		return ErrNoTargets
	}
	return nil
}

// ValidateExport checks the options used by the model exporter.
// It returns the first problem found.
func (c *Config) ValidateExport() error {
	if c.ModelKind == "" {
		return ErrEmptyModelKind
	}
	if c.Panel == "" {
		return ErrEmptyPanel
	}
	if !cIdentifier.MatchString(c.FunctionName) {
		return ErrInvalidFunctionName
	}
	if c.PreviewLines < 0 {
		return ErrInvalidPreviewLines
	}
	if c.OutputFile == "" {
		return ErrEmptyOutputFile
	}
	if c.WriteHeader && c.HeaderPath() == c.SourcePath() {
		return fmt.Errorf("%w: %s", ErrOutputCollision, c.OutputFile)
	}
	if c.ExportSummary && c.ExportSummaryPath() == c.SourcePath() {
		return fmt.Errorf("%w: %s", ErrOutputCollision, c.OutputFile)
	}
	return nil
}
