package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".epsfdir"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// ChartsSection holds the charts settings of the configuration file.
type ChartsSection struct {
	// InputDir is the directory containing the result tables.
	InputDir string `yaml:"inputDir,omitempty"`

	// Tables overrides individual table file names.
	Tables TablesSection `yaml:"tables,omitempty"`

	// OutputDir is the chart output directory.
	OutputDir string `yaml:"outputDir,omitempty"`

	DPI  float64 `yaml:"dpi,omitempty"`
	Jobs int     `yaml:"jobs,omitempty"`

	// FailFast and Markdown are pointers so that an explicit false in the
	// file is distinguishable from an unset key.
	FailFast *bool `yaml:"failFast,omitempty"`
	Markdown *bool `yaml:"markdown,omitempty"`

	ModelColumn      string   `yaml:"modelColumn,omitempty"`
	StageLabels      []string `yaml:"stageLabels,omitempty"`
	Targets          []string `yaml:"targets,omitempty"`
	IllustrativeFile string   `yaml:"illustrativeFile,omitempty"`
}

// TablesSection holds per-table file name overrides.
type TablesSection struct {
	StageComparison string `yaml:"stageComparison,omitempty"`
	Stage3          string `yaml:"stage3,omitempty"`
	Stage4          string `yaml:"stage4,omitempty"`
	Temporal        string `yaml:"temporal,omitempty"`
	MultiTarget     string `yaml:"multiTarget,omitempty"`
}

// ExportSection holds the export settings of the configuration file.
type ExportSection struct {
	ArtifactDir  string  `yaml:"artifactDir,omitempty"`
	ModelKind    string  `yaml:"modelKind,omitempty"`
	Pruning      *string `yaml:"pruning,omitempty"`
	Panel        string  `yaml:"panel,omitempty"`
	CCodeDir     string  `yaml:"cCodeDir,omitempty"`
	OutputFile   string  `yaml:"outputFile,omitempty"`
	FunctionName string  `yaml:"functionName,omitempty"`
	PreviewLines *int    `yaml:"previewLines,omitempty"`
	Header       *bool   `yaml:"header,omitempty"`
	Markdown     *bool   `yaml:"markdown,omitempty"`
}

// HistorySection holds the run history settings of the configuration file.
type HistorySection struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	DBDir   string `yaml:"dbDir,omitempty"`
}

// File represents the structure of the .epsfdir configuration file.
// Every key is optional; unset keys keep the value already in Config.
type File struct {
	Charts  ChartsSection  `yaml:"charts,omitempty"`
	Export  ExportSection  `yaml:"export,omitempty"`
	History HistorySection `yaml:"history,omitempty"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// Apply overlays the values set in the file onto cfg.
func (cf *File) Apply(cfg *Config) {
	ch := cf.Charts
	setString(&cfg.InputDir, ch.InputDir)
	setString(&cfg.Tables.StageComparison, ch.Tables.StageComparison)
	setString(&cfg.Tables.Stage3, ch.Tables.Stage3)
	setString(&cfg.Tables.Stage4, ch.Tables.Stage4)
	setString(&cfg.Tables.Temporal, ch.Tables.Temporal)
	setString(&cfg.Tables.MultiTarget, ch.Tables.MultiTarget)
	setString(&cfg.OutputDir, ch.OutputDir)
	if ch.DPI != 0 {
		cfg.DPI = ch.DPI
	}
	if ch.Jobs != 0 {
		cfg.Jobs = ch.Jobs
	}
	if ch.FailFast != nil {
		cfg.FailFast = *ch.FailFast
	}
	if ch.Markdown != nil {
		cfg.MarkdownSummary = *ch.Markdown
	}
	setString(&cfg.ModelColumn, ch.ModelColumn)
	if len(ch.StageLabels) > 0 {
		cfg.StageLabels = ch.StageLabels
	}
	if len(ch.Targets) > 0 {
		cfg.Targets = ch.Targets
	}
	setString(&cfg.IllustrativeFile, ch.IllustrativeFile)

	ex := cf.Export
	setString(&cfg.ArtifactDir, ex.ArtifactDir)
	setString(&cfg.ModelKind, ex.ModelKind)
	if ex.Pruning != nil {
		cfg.Pruning = *ex.Pruning
	}
	setString(&cfg.Panel, ex.Panel)
	setString(&cfg.CCodeDir, ex.CCodeDir)
	setString(&cfg.OutputFile, ex.OutputFile)
	setString(&cfg.FunctionName, ex.FunctionName)
	if ex.PreviewLines != nil {
		cfg.PreviewLines = *ex.PreviewLines
	}
	if ex.Header != nil {
		cfg.WriteHeader = *ex.Header
	}
	if ex.Markdown != nil {
		cfg.ExportSummary = *ex.Markdown
	}

	if cf.History.Enabled != nil {
		cfg.SaveHistory = *cf.History.Enabled
	}
	setString(&cfg.DBDir, cf.History.DBDir)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .epsfdir in the current directory
// 3. Look for config.yaml in the XDG config directory
// 4. Look for .epsfdir in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
