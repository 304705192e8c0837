package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/eps-fdir/epsfdir/internal/digest"
	"github.com/eps-fdir/epsfdir/internal/model"
	"github.com/google/go-cmp/cmp"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context) ([]byte, error)
	callCount atomic.Int32
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context) ([]byte, error) {
	m.callCount.Add(1)
	if m.doFunc != nil {
		return m.doFunc(ctx)
	}
	return []byte("image:" + m.name), nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func failingStep(name string, err error) *mockStep {
	return &mockStep{
		name: name,
		doFunc: func(_ context.Context) ([]byte, error) {
			return nil, err
		},
	}
}

func statuses(report *model.RunReport) []string {
	out := make([]string, len(report.Charts))
	for i, c := range report.Charts {
		out[i] = c.Name + "=" + c.Status.String()
	}
	return out
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New(t.TempDir())

		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if !p.continueOnError {
			t.Error("expected continueOnError to default to true")
		}
		if p.concurrency != 1 {
			t.Errorf("expected concurrency 1, got %d", p.concurrency)
		}
	})

	t.Run("applies options", func(t *testing.T) {
		t.Parallel()

		p := New(t.TempDir(), WithContinueOnError(false), WithConcurrency(4))

		if p.continueOnError {
			t.Error("expected continueOnError to be false")
		}
		if p.concurrency != 4 {
			t.Errorf("expected concurrency 4, got %d", p.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		p := New(t.TempDir(), WithConcurrency(0))

		if p.concurrency != 1 {
			t.Errorf("expected concurrency 1, got %d", p.concurrency)
		}
	})
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	p := New(t.TempDir())
	p.AddStep(&mockStep{name: "first"})
	p.AddSteps(&mockStep{name: "second"}, &mockStep{name: "third"})

	if p.StepCount() != 3 {
		t.Errorf("expected 3 steps, got %d", p.StepCount())
	}
	if diff := cmp.Diff([]string{"first", "second", "third"}, p.StepNames()); diff != "" {
		t.Errorf("step names mismatch (-want +got):\n%s", diff)
	}
}

// TestPipelineExecute tests pipeline execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("writes every artifact", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "figures", "synthesis")
		p := New(dir)
		p.AddSteps(&mockStep{name: "alpha"}, &mockStep{name: "beta"})

		report, err := p.Execute(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.Charts) != 2 {
			t.Fatalf("expected 2 results, got %d", len(report.Charts))
		}

		for _, c := range report.Charts {
			want := []byte("image:" + c.Name)
			if c.Status != model.StatusSaved {
				t.Errorf("%s: expected saved, got %s", c.Name, c.Status)
			}
			if c.Path != filepath.Join(dir, c.Name+".png") {
				t.Errorf("%s: unexpected path %s", c.Name, c.Path)
			}
			got, err := os.ReadFile(c.Path)
			if err != nil {
				t.Fatalf("%s: %v", c.Name, err)
			}
			if string(got) != string(want) {
				t.Errorf("%s: unexpected content %q", c.Name, got)
			}
			if c.Bytes != int64(len(want)) {
				t.Errorf("%s: expected %d bytes, got %d", c.Name, len(want), c.Bytes)
			}
			if c.Digest != digest.Bytes(want) {
				t.Errorf("%s: digest mismatch", c.Name)
			}
		}
		if report.EndedAt.Before(report.StartedAt) {
			t.Error("expected EndedAt after StartedAt")
		}
	})

	t.Run("overwrites and leaves no temporary files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "alpha.png"), []byte("stale"), 0o600); err != nil {
			t.Fatal(err)
		}
		p := New(dir)
		p.AddStep(&mockStep{name: "alpha"})

		if _, err := p.Execute(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 || entries[0].Name() != "alpha.png" {
			t.Errorf("unexpected directory contents: %v", entries)
		}
		got, err := os.ReadFile(filepath.Join(dir, "alpha.png"))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "image:alpha" {
			t.Errorf("expected overwritten file, got %q", got)
		}
	})

	t.Run("continues after a failure by default", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("column not found")
		after := &mockStep{name: "after"}
		p := New(t.TempDir())
		p.AddSteps(&mockStep{name: "before"}, failingStep("broken", cause), after)

		report, err := p.Execute(context.Background())

		if !errors.Is(err, cause) {
			t.Errorf("expected error wrapping cause, got %v", err)
		}
		var runErr *RunError
		if !errors.As(err, &runErr) {
			t.Fatalf("expected *RunError, got %T", err)
		}
		if len(runErr.Failures) != 1 || runErr.Failures[0].Name != "broken" {
			t.Errorf("unexpected failures: %+v", runErr.Failures)
		}
		want := []string{"before=saved", "broken=failed", "after=saved"}
		if diff := cmp.Diff(want, statuses(report)); diff != "" {
			t.Errorf("statuses mismatch (-want +got):\n%s", diff)
		}
		if after.callCount.Load() != 1 {
			t.Error("expected the step after the failure to run")
		}
	})

	t.Run("stops after a failure when configured", func(t *testing.T) {
		t.Parallel()

		after := &mockStep{name: "after"}
		p := New(t.TempDir(), WithContinueOnError(false))
		p.AddSteps(failingStep("broken", errors.New("render failed")), after)

		report, err := p.Execute(context.Background())

		if err == nil {
			t.Fatal("expected error")
		}
		if after.callCount.Load() != 0 {
			t.Error("expected the step after the failure not to run")
		}
		if report.Charts[1].Status != model.StatusCancelled {
			t.Errorf("expected cancelled, got %s", report.Charts[1].Status)
		}
		if !errors.Is(report.Charts[1].Err, ErrSkipped) {
			t.Errorf("expected ErrSkipped, got %v", report.Charts[1].Err)
		}
		if !errors.Is(err, ErrSkipped) {
			t.Errorf("expected run error to include ErrSkipped, got %v", err)
		}
	})

	t.Run("cancelled context skips every step", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "alpha"}
		p := New(t.TempDir())
		p.AddStep(step)

		report, err := p.Execute(ctx)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount.Load() != 0 {
			t.Error("expected step not to run")
		}
		if report.Count(model.StatusCancelled) != 1 {
			t.Errorf("expected 1 cancelled, got %d", report.Count(model.StatusCancelled))
		}
	})

	t.Run("output directory that cannot be created", func(t *testing.T) {
		t.Parallel()

		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, nil, 0o600); err != nil {
			t.Fatal(err)
		}
		p := New(filepath.Join(file, "sub"))
		p.AddStep(&mockStep{name: "alpha"})

		report, err := p.Execute(context.Background())
		if err == nil {
			t.Fatal("expected error")
		}
		if report != nil {
			t.Error("expected no report")
		}
		var runErr *RunError
		if errors.As(err, &runErr) {
			t.Error("expected a plain error, not *RunError")
		}
	})

	t.Run("progress is reported in step order", func(t *testing.T) {
		t.Parallel()

		var got []string
		p := New(t.TempDir(), WithProgress(func(r model.ChartResult) {
			got = append(got, r.Name+"="+r.Status.String())
		}))
		p.AddSteps(&mockStep{name: "a"}, failingStep("b", errors.New("boom")), &mockStep{name: "c"})

		_, _ = p.Execute(context.Background()) //nolint:errcheck // Statuses checked below

		if diff := cmp.Diff([]string{"a=saved", "b=failed", "c=saved"}, got); diff != "" {
			t.Errorf("progress mismatch (-want +got):\n%s", diff)
		}
	})
}

// TestRunError tests the aggregated failure error.
func TestRunError(t *testing.T) {
	t.Parallel()

	causeA := errors.New("input file not found")
	causeB := errors.New("render failed")
	err := &RunError{Failures: []model.ChartResult{
		{Name: "temporal_generalization", Status: model.StatusFailed, Err: causeA},
		{Name: "multitarget_performance", Status: model.StatusFailed, Err: causeB},
		{Name: "resource_requirements", Status: model.StatusCancelled},
	}}

	if !errors.Is(err, causeA) || !errors.Is(err, causeB) {
		t.Error("expected RunError to wrap every cause")
	}
	msg := err.Error()
	for _, want := range []string{"3 artifact(s) not saved", "temporal_generalization: input file not found", "resource_requirements: cancelled"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}
