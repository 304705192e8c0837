package forest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

const (
	// Format is the value of the "format" key of every model document.
	Format = "epsfdir-forest"

	// Version is the only supported document version.
	Version = 1
)

// Aggregation combines the outputs of the individual trees.
type Aggregation string

const (
	// AggregationMean averages the tree outputs, as random forests do.
	AggregationMean Aggregation = "mean"

	// AggregationSum adds the tree outputs, as gradient boosting does.
	AggregationSum Aggregation = "sum"
)

// Node is a split or a leaf of a tree.
type Node struct {
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      *int    `json:"left,omitempty"`
	Right     *int    `json:"right,omitempty"`
	Value     float64 `json:"value,omitempty"`
}

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Tree is one decision tree. Nodes[0] is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Depth returns the number of splits on the longest root-to-leaf path.
func (t Tree) Depth() int {
	return t.depth(0)
}

func (t Tree) depth(i int) int {
	n := t.Nodes[i]
	if n.IsLeaf() {
		return 0
	}
	return 1 + max(t.depth(*n.Left), t.depth(*n.Right))
}

// Model is a tree-ensemble regressor.
type Model struct {
	Format       string      `json:"format"`
	Version      int         `json:"version"`
	Estimator    string      `json:"estimator"`
	NFeatures    int         `json:"n_features_in"`
	FeatureNames []string    `json:"feature_names,omitempty"`
	Aggregation  Aggregation `json:"aggregation,omitempty"`
	BaseScore    float64     `json:"base_score,omitempty"`
	Trees        []Tree      `json:"trees"`
}

// Load reads and validates a model document.
// Every failure wraps ErrDecode and names the path.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Artifact path is selected from the configured directory
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrDecode, path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrDecode, path, err)
	}
	return m, nil
}

// Parse decodes and validates a model document.
func Parse(data []byte) (*Model, error) {
	var m Model
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after model document")
	}
	if m.Aggregation == "" {
		m.Aggregation = AggregationMean
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the structure of the model. It returns the first
// problem found.
func (m *Model) Validate() error {
	if m.Format != Format {
		return fmt.Errorf("unsupported format %q (want %q)", m.Format, Format)
	}
	if m.Version != Version {
		return fmt.Errorf("unsupported version %d (want %d)", m.Version, Version)
	}
	if m.NFeatures <= 0 {
		return fmt.Errorf("n_features_in must be positive, got %d", m.NFeatures)
	}
	if len(m.FeatureNames) > 0 && len(m.FeatureNames) != m.NFeatures {
		return fmt.Errorf("%d feature names for %d features", len(m.FeatureNames), m.NFeatures)
	}
	if m.Aggregation != AggregationMean && m.Aggregation != AggregationSum {
		return fmt.Errorf("unsupported aggregation %q", m.Aggregation)
	}
	if !finite(m.BaseScore) {
		return errors.New("base_score is not finite")
	}
	if len(m.Trees) == 0 {
		return errors.New("model has no trees")
	}
	for i, t := range m.Trees {
		if err := t.validate(m.NFeatures); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func (t Tree) validate(nFeatures int) error {
	if len(t.Nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, n := range t.Nodes {
		if n.IsLeaf() {
			if !finite(n.Value) {
				return fmt.Errorf("node %d: leaf value is not finite", i)
			}
			continue
		}
		if n.Left == nil || n.Right == nil {
			return fmt.Errorf("node %d: split needs both children", i)
		}
		for _, c := range []int{*n.Left, *n.Right} {
			if c <= i || c >= len(t.Nodes) {
				return fmt.Errorf("node %d: child index %d out of range", i, c)
			}
		}
		if n.Feature < 0 || n.Feature >= nFeatures {
			return fmt.Errorf("node %d: feature index %d out of range", i, n.Feature)
		}
		if !finite(n.Threshold) {
			return fmt.Errorf("node %d: threshold is not finite", i)
		}
	}
	return nil
}

// Predict evaluates the ensemble for one feature vector.
func (m *Model) Predict(x []float64) (float64, error) {
	if len(x) != m.NFeatures {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(x), m.NFeatures)
	}
	var sum float64
	for _, t := range m.Trees {
		sum += t.eval(x)
	}
	if m.Aggregation == AggregationMean {
		sum /= float64(len(m.Trees))
	}
	return m.BaseScore + sum, nil
}

func (t Tree) eval(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.IsLeaf() {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = *n.Left
		} else {
			i = *n.Right
		}
	}
}

// NodeCount returns the total number of nodes in the ensemble.
func (m *Model) NodeCount() int {
	n := 0
	for _, t := range m.Trees {
		n += len(t.Nodes)
	}
	return n
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
