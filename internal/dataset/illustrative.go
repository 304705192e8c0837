package dataset

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed illustrative.yaml
var defaultIllustrative []byte

// Variant distinguishes full and pruned model figures.
type Variant string

// Model variants.
const (
	VariantFull   Variant = "full"
	VariantPruned Variant = "pruned"
)

// Figure is one labelled value of a resource chart.
type Figure struct {
	Label   string  `yaml:"label"`
	Value   float64 `yaml:"value"`
	Variant Variant `yaml:"variant,omitempty"`
}

// CPULoad is the processor share of the detection workload.
type CPULoad struct {
	ActiveLabel   string  `yaml:"active_label"`
	IdleLabel     string  `yaml:"idle_label"`
	ActivePercent float64 `yaml:"active_percent"`
	IdlePercent   float64 `yaml:"idle_percent"`
	ClockMHz      float64 `yaml:"clock_mhz"`
	Panels        int     `yaml:"panels"`
	PeriodS       float64 `yaml:"period_s"`
}

// Resource holds the figures of the resource dashboard.
type Resource struct {
	ModelSizeKB     []Figure `yaml:"model_size_kb"`
	SizeBudgetKB    float64  `yaml:"size_budget_kb"`
	SizeBudgetLabel string   `yaml:"size_budget_label"`
	LatencyUS       []Figure `yaml:"latency_us"`
	RAMBytes        []Figure `yaml:"ram_bytes"`
	CPU             CPULoad  `yaml:"cpu"`
	Headroom        []Figure `yaml:"headroom"`
	Title           string   `yaml:"title"`
}

// Metric describes the simulated error of one quantity on the target
// system. Uncorrected is the flat error without adaptation; with
// correction the error ramps linearly to WarmupValue over the warmup
// samples and then converges linearly to Floor.
type Metric struct {
	Name           string  `yaml:"name"`
	Unit           string  `yaml:"unit"`
	Uncorrected    float64 `yaml:"uncorrected"`
	WarmupValue    float64 `yaml:"warmup_value"`
	Floor          float64 `yaml:"floor"`
	SourceBaseline float64 `yaml:"source_baseline"`
}

// Improvement returns the relative error reduction of the corrected model
// in percent.
func (m Metric) Improvement() float64 {
	return Improvement(m.Uncorrected, m.Floor)
}

// Deployment describes the cross-deployment scenario.
type Deployment struct {
	Source  string   `yaml:"source"`
	Target  string   `yaml:"target"`
	Samples int      `yaml:"samples"`
	Warmup  int      `yaml:"warmup"`
	Metrics []Metric `yaml:"metrics"`
}

// Illustrative is the hand-authored dataset behind the resource dashboard
// and the cross-deployment scenario.
type Illustrative struct {
	Resource   Resource   `yaml:"resource"`
	Deployment Deployment `yaml:"deployment"`
}

// DefaultIllustrative returns the embedded illustrative dataset.
func DefaultIllustrative() (*Illustrative, error) {
	return parseIllustrative("embedded illustrative dataset", defaultIllustrative)
}

// LoadIllustrative loads the illustrative dataset from a YAML file.
// An empty path returns the embedded dataset.
func LoadIllustrative(path string) (*Illustrative, error) {
	if path == "" {
		return DefaultIllustrative()
	}
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from user configuration
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parseIllustrative(path, data)
}

func parseIllustrative(name string, data []byte) (*Illustrative, error) {
	var ds Illustrative
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &ds, nil
}

// Validate checks that every chart drawn from the dataset has data.
func (ds *Illustrative) Validate() error {
	r := ds.Resource
	switch {
	case len(r.ModelSizeKB) == 0:
		return fmt.Errorf("%w: resource.model_size_kb is empty", ErrInvalidIllustrative)
	case len(r.LatencyUS) == 0:
		return fmt.Errorf("%w: resource.latency_us is empty", ErrInvalidIllustrative)
	case len(r.RAMBytes) == 0:
		return fmt.Errorf("%w: resource.ram_bytes is empty", ErrInvalidIllustrative)
	case len(r.Headroom) == 0:
		return fmt.Errorf("%w: resource.headroom is empty", ErrInvalidIllustrative)
	case r.CPU.ActivePercent < 0 || r.CPU.IdlePercent < 0 || r.CPU.ActivePercent+r.CPU.IdlePercent <= 0:
		return fmt.Errorf("%w: resource.cpu shares must be non-negative with a positive sum", ErrInvalidIllustrative)
	}

	d := ds.Deployment
	switch {
	case d.Warmup < 2:
		return fmt.Errorf("%w: deployment.warmup must be at least 2", ErrInvalidIllustrative)
	case d.Samples-d.Warmup < 2:
		return fmt.Errorf("%w: deployment.samples must exceed warmup by at least 2", ErrInvalidIllustrative)
	case len(d.Metrics) == 0:
		return fmt.Errorf("%w: deployment.metrics is empty", ErrInvalidIllustrative)
	}
	for _, m := range d.Metrics {
		if m.Uncorrected == 0 {
			return fmt.Errorf("%w: metric %q has zero uncorrected error", ErrInvalidIllustrative, m.Name)
		}
	}
	return nil
}
