package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eps-fdir/epsfdir/internal/model"
)

// ErrSkipped is recorded for steps that did not run because an earlier
// step failed and the pipeline stops on error.
var ErrSkipped = errors.New("skipped after an earlier failure")

// RunError reports every artifact that was not saved.
// It unwraps to the individual causes, so errors.Is works on any of them.
type RunError struct {
	// Failures are the failed and cancelled results in step order.
	Failures []model.ChartResult
}

// Error lists every failure with its artifact name.
func (e *RunError) Error() string {
	names := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		names[i] = f.Name
	}
	return fmt.Sprintf("%d artifact(s) not saved (%s): %v",
		len(e.Failures), strings.Join(names, ", "), errors.Join(e.Unwrap()...))
}

// Unwrap returns the failure causes, each prefixed with the artifact name.
func (e *RunError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		cause := f.Err
		if cause == nil {
			cause = errors.New(f.Status.String())
		}
		errs = append(errs, fmt.Errorf("%s: %w", f.Name, cause))
	}
	return errs
}
