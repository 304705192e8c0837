package model

import "time"

// ChartResult is the outcome of one chart.
type ChartResult struct {
	// Name is the chart name, which is also its file name without extension.
	Name string

	// Path is the written file. Set only when Status is StatusSaved.
	Path string

	// Bytes is the size of the written PNG.
	Bytes int64

	// Digest is the SHA3-256 digest of the written PNG.
	Digest string

	// Duration is the time spent loading, rendering and writing.
	Duration time.Duration

	// Illustrative marks charts drawn from representative estimates rather
	// than measured tables.
	Illustrative bool

	Status Status

	// Err is the failure cause for StatusFailed and StatusCancelled.
	Err error
}

// RunReport collects the chart results of one charts run in chart order.
type RunReport struct {
	OutputDir string
	StartedAt time.Time
	EndedAt   time.Time
	Charts    []ChartResult
}

// Count returns the number of charts with the given status.
func (r *RunReport) Count(s Status) int {
	n := 0
	for _, c := range r.Charts {
		if c.Status == s {
			n++
		}
	}
	return n
}

// HasFailures reports whether any chart was not saved.
func (r *RunReport) HasFailures() bool {
	return r.Count(StatusSaved) != len(r.Charts)
}

// Failures returns the charts that were not saved.
func (r *RunReport) Failures() []ChartResult {
	var out []ChartResult
	for _, c := range r.Charts {
		if c.Status != StatusSaved {
			out = append(out, c)
		}
	}
	return out
}

// ExportReport is the outcome of one model export.
type ExportReport struct {
	// ArtifactPath is the selected model artifact.
	ArtifactPath string

	// Tag and Panel are the selection filter the artifact matched.
	Tag   string
	Panel string

	// ArtifactDigest is the SHA3-256 digest of the artifact.
	ArtifactDigest string

	// Estimator is the model type recorded in the artifact.
	Estimator string

	// Features is the number of input features of the model.
	Features int

	// Trees is the number of trees in the ensemble.
	Trees int

	// Signature is the generated C prototype, e.g. "double score_voltage(double * input)".
	Signature string

	// SourcePath is the written C source file.
	SourcePath string

	// HeaderPath is the written header, empty when no header was requested.
	HeaderPath string

	// SourceBytes is the on-disk size of SourcePath.
	SourceBytes int64

	// Preview holds the first lines of the generated source.
	Preview []string

	// Checklist are the manual integration steps.
	Checklist []string

	ExportedAt time.Time
}
