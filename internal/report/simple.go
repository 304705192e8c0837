package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/eps-fdir/epsfdir/internal/digest"
	"github.com/eps-fdir/epsfdir/internal/model"
)

const (
	// runRuleWidth is the width of the banners around a charts run.
	runRuleWidth = 70

	// exportRuleWidth is the width of the banner closing an export.
	exportRuleWidth = 60
)

// SimpleWriter outputs human-readable text reports.
// The charts run is written in three parts so that the command can print
// each chart line as soon as the chart is done: WriteRunHeader,
// WriteResult per chart and WriteRunFooter. WriteRun writes all three at once.
type SimpleWriter struct {
	baseWriter

	// verbose adds size, digest and duration to every saved chart.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteRun outputs the whole charts run.
func (w *SimpleWriter) WriteRun(report *model.RunReport) (int, error) {
	var sb strings.Builder

	w.writeRunHeader(&sb)
	for _, r := range report.Charts {
		w.writeResult(&sb, r)
	}
	w.writeRunFooter(&sb, report)

	return io.WriteString(w.output, sb.String())
}

// WriteRunHeader writes the opening banner of a charts run.
func (w *SimpleWriter) WriteRunHeader() (int, error) {
	var sb strings.Builder
	w.writeRunHeader(&sb)
	return io.WriteString(w.output, sb.String())
}

// WriteResult writes the line of one chart.
func (w *SimpleWriter) WriteResult(r model.ChartResult) (int, error) {
	var sb strings.Builder
	w.writeResult(&sb, r)
	return io.WriteString(w.output, sb.String())
}

// WriteRunFooter writes the closing banner of a charts run.
func (w *SimpleWriter) WriteRunFooter(report *model.RunReport) (int, error) {
	var sb strings.Builder
	w.writeRunFooter(&sb, report)
	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeRunHeader(sb *strings.Builder) {
	rule(sb, "=", runRuleWidth)
	sb.WriteString("GENERATING COMPREHENSIVE VISUALIZATIONS\n")
	rule(sb, "=", runRuleWidth)
}

func (w *SimpleWriter) writeResult(sb *strings.Builder, r model.ChartResult) {
	switch r.Status {
	case model.StatusSaved:
		fmt.Fprintf(sb, "✓ Saved: %s\n", r.Path)
		if w.verbose {
			fmt.Fprintf(sb, "    %s, sha3 %s, %s",
				humanize.IBytes(uint64(max(r.Bytes, 0))), digest.Short(r.Digest), r.Duration.Round(time.Millisecond))
			if r.Illustrative {
				sb.WriteString(", illustrative data")
			}
			sb.WriteString("\n")
		}
	case model.StatusCancelled:
		fmt.Fprintf(sb, "✗ Cancelled: %s: %s\n", r.Name, reason(r))
	default:
		fmt.Fprintf(sb, "✗ Failed: %s: %s\n", r.Name, reason(r))
	}
}

func (w *SimpleWriter) writeRunFooter(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString("\n")
	rule(sb, "=", runRuleWidth)
	if report.HasFailures() {
		fmt.Fprintf(sb, "VISUALIZATIONS INCOMPLETE: %d of %d not saved\n",
			len(report.Charts)-report.Count(model.StatusSaved), len(report.Charts))
	} else {
		sb.WriteString("ALL VISUALIZATIONS COMPLETE\n")
	}
	fmt.Fprintf(sb, "Output directory: %s\n", absPath(report.OutputDir))
	rule(sb, "=", runRuleWidth)
}

// WriteExport outputs the model export status and the integration checklist.
func (w *SimpleWriter) WriteExport(report *model.ExportReport) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Loading model artifact: %s\n", report.ArtifactPath)
	if report.ArtifactDigest != "" {
		fmt.Fprintf(&sb, "Artifact digest: %s\n", report.ArtifactDigest)
	}
	fmt.Fprintf(&sb, "Model loaded: %s (%d trees)\n", report.Estimator, report.Trees)
	fmt.Fprintf(&sb, "Model features: %d\n", report.Features)
	sb.WriteString("Generating C code...\n")

	fmt.Fprintf(&sb, "✓ C code generated: %s\n", report.SourcePath)
	if report.HeaderPath != "" {
		fmt.Fprintf(&sb, "✓ Header generated: %s\n", report.HeaderPath)
	}
	fmt.Fprintf(&sb, "✓ Function: %s\n", report.Signature)
	fmt.Fprintf(&sb, "✓ Input size: %d features\n", report.Features)
	fmt.Fprintf(&sb, "✓ File size: %s\n", humanize.IBytes(uint64(max(report.SourceBytes, 0))))

	if len(report.Preview) > 0 {
		fmt.Fprintf(&sb, "\nFirst %d lines of generated code:\n", len(report.Preview))
		for i, line := range report.Preview {
			fmt.Fprintf(&sb, "%3d: %s\n", i+1, line)
		}
	}

	sb.WriteString("\n")
	rule(&sb, "=", exportRuleWidth)
	sb.WriteString("SUCCESS! Model C code generated.\n")
	rule(&sb, "=", exportRuleWidth)

	if len(report.Checklist) > 0 {
		sb.WriteString("\nNext steps:\n")
		for i, step := range report.Checklist {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
		}
	}

	return io.WriteString(w.output, sb.String())
}

func rule(sb *strings.Builder, ch string, width int) {
	sb.WriteString(strings.Repeat(ch, width))
	sb.WriteString("\n")
}

// reason returns the failure cause of a result that was not saved.
func reason(r model.ChartResult) string {
	if r.Err == nil {
		return r.Status.String()
	}
	return r.Err.Error()
}

// absPath returns the absolute form of path, or path itself when it cannot
// be resolved.
func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
