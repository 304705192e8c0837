package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eps-fdir/epsfdir/internal/artifact"
	"github.com/eps-fdir/epsfdir/internal/codegen"
	"github.com/eps-fdir/epsfdir/internal/digest"
	"github.com/eps-fdir/epsfdir/internal/forest"
	"github.com/eps-fdir/epsfdir/internal/model"
)

// Options describe one export.
type Options struct {
	// ArtifactDir is scanned for model artifacts.
	ArtifactDir string

	// Filter selects the candidate artifacts.
	Filter artifact.Filter

	// CCodeDir receives the generated files. It is created when missing.
	CCodeDir string

	// OutputFile is the source file name inside CCodeDir.
	OutputFile string

	// FunctionName is the generated scoring function.
	FunctionName string

	// PreviewLines is the number of written lines echoed in the report.
	PreviewLines int

	// WriteHeader also writes a header next to the source.
	WriteHeader bool
}

// SourcePath returns the path of the generated source.
func (o Options) SourcePath() string {
	return filepath.Join(o.CCodeDir, o.OutputFile)
}

// HeaderPath returns the path of the generated header: the source path
// with its extension replaced by ".h".
func (o Options) HeaderPath() string {
	src := o.SourcePath()
	return strings.TrimSuffix(src, filepath.Ext(src)) + ".h"
}

// Exporter runs model exports.
type Exporter struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets a custom logger for the exporter.
// If not set, slog.Default is used.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		e.logger = logger
	}
}

// WithClock replaces time.Now for the ExportedAt timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		e.now = now
	}
}

// New creates an Exporter.
func New(opts ...Option) *Exporter {
	e := &Exporter{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Export selects, loads, translates and writes one model.
func (e *Exporter) Export(ctx context.Context, opts Options) (*model.ExportReport, error) {
	if opts.WriteHeader && filepath.Clean(opts.HeaderPath()) == filepath.Clean(opts.SourcePath()) {
		return nil, fmt.Errorf("%w: %s", ErrOutputCollision, opts.SourcePath())
	}

	selected, err := artifact.Select(opts.ArtifactDir, opts.Filter)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("artifact selected", "path", selected.Path, "timestamp", selected.Timestamp)

	m, err := forest.Load(selected.Path)
	if err != nil {
		return nil, err
	}
	sum, err := digest.File(selected.Path)
	if err != nil {
		return nil, err
	}
	depth := 0
	for _, t := range m.Trees {
		depth = max(depth, t.Depth())
	}
	e.logger.Debug("model loaded",
		"estimator", m.Estimator,
		"features", m.NFeatures,
		"trees", len(m.Trees),
		"nodes", m.NodeCount(),
		"max_depth", depth,
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source, header, err := Translate(m, selected, sum, opts)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.CCodeDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", opts.CCodeDir, err)
	}
	if err := writeFile(opts.SourcePath(), source); err != nil {
		return nil, err
	}
	report := &model.ExportReport{
		ArtifactPath:   selected.Path,
		ArtifactDigest: sum,
		Tag:            opts.Filter.Tag(),
		Panel:          opts.Filter.Panel,
		Estimator:      m.Estimator,
		Features:       m.NFeatures,
		Trees:          len(m.Trees),
		Signature:      codegen.Signature(opts.FunctionName),
		SourcePath:     opts.SourcePath(),
	}
	if opts.WriteHeader {
		if err := writeFile(opts.HeaderPath(), header); err != nil {
			return nil, err
		}
		report.HeaderPath = opts.HeaderPath()
	}
	e.logger.Debug("source written", "path", report.SourcePath, "header", report.HeaderPath)

	report.SourceBytes, err = FileSize(report.SourcePath)
	if err != nil {
		return nil, err
	}
	report.Preview, err = Preview(report.SourcePath, opts.PreviewLines)
	if err != nil {
		return nil, err
	}
	report.Checklist = Checklist(opts.FunctionName, report.SourcePath, report.HeaderPath)
	report.ExportedAt = e.now()
	return report, nil
}

// Translate returns the C source and header for m. The header is empty
// when opts.WriteHeader is false.
func Translate(m *forest.Model, selected artifact.Artifact, sum string, opts Options) (source, header string, err error) {
	translatorOpts := []codegen.Option{
		codegen.WithComment(
			"Generated by epsfdir from "+selected.Name+". Do not edit.",
			"Artifact SHA3-256: "+sum,
			fmt.Sprintf("%s, %d trees, %d features", m.Estimator, len(m.Trees), m.NFeatures),
		),
	}
	if opts.WriteHeader {
		translatorOpts = append(translatorOpts, codegen.WithInclude(filepath.Base(opts.HeaderPath())))
	}
	tr := codegen.New(translatorOpts...)

	source, err = tr.Translate(m, opts.FunctionName)
	if err != nil {
		return "", "", err
	}
	if opts.WriteHeader {
		header, err = tr.Header(m, opts.FunctionName, opts.HeaderPath())
		if err != nil {
			return "", "", err
		}
	}
	return source, header, nil
}

// writeFile writes text verbatim, replacing an existing file.
func writeFile(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil { //nolint:gosec // Generated sources are meant to be shared
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// FileSize returns the on-disk size of path.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return info.Size(), nil
}

// Preview returns up to n leading lines of the file at path.
func Preview(path string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // Reads back the file just written
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return lines, nil
}

// Checklist returns the manual steps that wire the generated function into
// the firmware. Nothing in the firmware is changed automatically.
func Checklist(function, source, header string) []string {
	steps := []string{
		fmt.Sprintf("Update eps_main_deployment.c: replace `return (float)features[0];` with `return (float)%s(features);`", function),
	}
	if header != "" {
		steps = append(steps, fmt.Sprintf("Add header: #include \"%s\"", filepath.Base(header)))
	} else {
		steps = append(steps, fmt.Sprintf("Declare the prototype: %s;", codegen.Signature(function)))
	}
	return append(steps,
		fmt.Sprintf("Add %s to the firmware build", filepath.Base(source)),
		"Recompile and test",
	)
}
