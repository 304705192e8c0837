package report

import (
	"io"

	"github.com/eps-fdir/epsfdir/internal/model"
)

// Writer defines the interface for report output.
// Implementations write run and export results in various formats.
type Writer interface {
	// WriteRun outputs the result of a charts run.
	// Returns the number of bytes written and any error encountered.
	WriteRun(report *model.RunReport) (int, error)

	// WriteExport outputs the result of a model export.
	WriteExport(report *model.ExportReport) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
