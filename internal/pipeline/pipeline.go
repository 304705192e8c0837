package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/eps-fdir/epsfdir/internal/digest"
	"github.com/eps-fdir/epsfdir/internal/model"
)

// Step renders one artifact.
type Step interface {
	// Do renders the artifact and returns the encoded image.
	// The context is checked before rendering starts; a step that is
	// already rendering finishes.
	Do(ctx context.Context) ([]byte, error)

	// Name returns the artifact name, which is also its file name
	// without extension.
	Name() string
}

// illustrator is implemented by steps that can be drawn from estimates
// rather than measurements.
type illustrator interface {
	Illustrative() bool
}

func isIllustrative(step Step) bool {
	i, ok := step.(illustrator)
	return ok && i.Illustrative()
}

// Pipeline renders steps and writes their output to a directory.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// outputDir receives one file per step.
	outputDir string

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool

	// concurrency is the maximum number of steps rendering at once.
	concurrency int

	// progress is called once per step in step order.
	progress func(model.ChartResult)
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures whether the pipeline runs the remaining
// steps after one fails. The default is true: a broken input should cost
// only the chart that reads it.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// WithConcurrency sets the maximum number of steps rendering at once.
// Values below 1 are ignored; the default is 1.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithProgress registers a callback receiving each result as soon as it
// and every earlier step are done. Calls are made in step order and never
// concurrently.
func WithProgress(fn func(model.ChartResult)) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// New creates a Pipeline writing into outputDir.
func New(outputDir string, opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:           make([]Step, 0),
		outputDir:       outputDir,
		continueOnError: true,
		concurrency:     1,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are reported in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// Execute runs every step and writes its output.
//
// The report always holds one result per step in step order. When any
// step is not saved, Execute also returns a *RunError listing them. A
// failure to create the output directory is returned as a plain error
// before any step runs.
func (p *Pipeline) Execute(ctx context.Context) (*model.RunReport, error) {
	report := &model.RunReport{
		OutputDir: p.outputDir,
		StartedAt: time.Now(),
		Charts:    make([]model.ChartResult, len(p.steps)),
	}

	if err := os.MkdirAll(p.outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", p.outputDir, err)
	}

	p.logger.Info("starting run",
		"steps", p.StepNames(),
		"output_dir", p.outputDir,
		"concurrency", p.concurrency,
	)

	if p.concurrency > 1 && len(p.steps) > 1 {
		p.executeBatch(ctx, report)
	} else {
		p.executeSequential(ctx, report)
	}

	report.EndedAt = time.Now()
	p.logger.Info("run complete",
		"saved", report.Count(model.StatusSaved),
		"failed", report.Count(model.StatusFailed),
		"cancelled", report.Count(model.StatusCancelled),
		"elapsed", report.EndedAt.Sub(report.StartedAt),
	)

	if report.HasFailures() {
		return report, &RunError{Failures: report.Failures()}
	}
	return report, nil
}

func (p *Pipeline) executeSequential(ctx context.Context, report *model.RunReport) {
	var stopErr error
	for i, step := range p.steps {
		if stopErr == nil {
			stopErr = ctx.Err()
		}
		if stopErr != nil {
			report.Charts[i] = cancelled(step, stopErr)
			p.logger.Warn("step cancelled", "step", step.Name(), "reason", stopErr)
			p.emit(report.Charts[i])
			continue
		}

		report.Charts[i] = p.run(ctx, step)
		p.emit(report.Charts[i])
		if report.Charts[i].Status == model.StatusFailed && !p.continueOnError {
			stopErr = ErrSkipped
		}
	}
}

// run renders one step and writes its output.
func (p *Pipeline) run(ctx context.Context, step Step) model.ChartResult {
	start := time.Now()
	result := model.ChartResult{Name: step.Name(), Illustrative: isIllustrative(step)}

	p.logger.Debug("rendering", "step", step.Name())
	data, err := step.Do(ctx)
	if err == nil {
		result.Path, err = writeAtomic(p.outputDir, step.Name()+".png", data)
	}
	result.Duration = time.Since(start)

	if err != nil {
		result.Status = model.StatusFailed
		result.Err = err
		p.logger.Error("step failed", "step", step.Name(), "error", err)
		return result
	}

	result.Status = model.StatusSaved
	result.Bytes = int64(len(data))
	result.Digest = digest.Bytes(data)
	p.logger.Debug("step completed",
		"step", step.Name(),
		"path", result.Path,
		"bytes", result.Bytes,
		"elapsed", result.Duration,
	)
	return result
}

func (p *Pipeline) emit(r model.ChartResult) {
	if p.progress != nil {
		p.progress(r)
	}
}

func cancelled(step Step, reason error) model.ChartResult {
	return model.ChartResult{
		Name:         step.Name(),
		Status:       model.StatusCancelled,
		Err:          reason,
		Illustrative: isIllustrative(step),
	}
}

// writeAtomic writes data to dir/name through a temporary file in dir and
// a rename, replacing any existing file.
func writeAtomic(dir, name string, data []byte) (string, error) {
	path := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, "."+name+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()        //nolint:errcheck // Write error takes precedence
		_ = os.Remove(tmpName) //nolint:errcheck // Best-effort cleanup
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // Best-effort cleanup
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil { //nolint:gosec // Images are meant to be shared
		_ = os.Remove(tmpName) //nolint:errcheck // Best-effort cleanup
		return "", fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // Best-effort cleanup
		return "", fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return path, nil
}
