package artifact

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// timestampLayouts are tried in order against the last name token.
var timestampLayouts = []string{
	"20060102T150405",
	"20060102-150405",
	"20060102150405",
	"20060102",
}

// pairLayout is a timestamp split over the last two tokens. It is tried
// first so that the time of day is not mistaken for a panel.
const pairLayout = "20060102_150405"

// Artifact is one candidate model file.
type Artifact struct {
	// Name is the base file name.
	Name string

	// Path is the file path, Name joined to the scanned directory.
	Path string

	// Tag is the name prefix before the panel, e.g. "voltage_rf_pruned50".
	Tag string

	// Panel is the panel identifier, e.g. "+X". Empty when the name has
	// too few parts to tell.
	Panel string

	// Timestamp is the training time recorded in the name. It is the zero
	// time when the name carries no parsable timestamp.
	Timestamp time.Time
}

// Parse splits an artifact file name into its parts.
// Parsing never fails: parts that cannot be recognized are left empty.
func Parse(name string) Artifact {
	a := Artifact{Name: name, Path: name}

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	tokens := strings.Split(stem, "_")

	rest := tokens
	if n := len(tokens); n >= 2 {
		if ts, err := time.Parse(pairLayout, tokens[n-2]+"_"+tokens[n-1]); err == nil {
			a.Timestamp = ts
			rest = tokens[:n-2]
		}
	}
	if a.Timestamp.IsZero() && len(tokens) >= 1 {
		last := tokens[len(tokens)-1]
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, last); err == nil {
				a.Timestamp = ts
				rest = tokens[:len(tokens)-1]
				break
			}
		}
	}

	if len(rest) >= 2 {
		a.Panel = rest[len(rest)-1]
		rest = rest[:len(rest)-1]
	}
	a.Tag = strings.Join(rest, "_")
	return a
}

// Filter selects the artifacts of one model kind and panel.
type Filter struct {
	// Kind is the model-kind prefix, e.g. "voltage_rf".
	Kind string

	// Pruning is appended to Kind with an underscore when not empty.
	Pruning string

	// Panel must occur somewhere in the file name.
	Panel string
}

// Tag returns the prefix every matching name starts with.
func (f Filter) Tag() string {
	if f.Pruning == "" {
		return f.Kind
	}
	return f.Kind + "_" + f.Pruning
}

// Matches reports whether a file name passes the filter.
func (f Filter) Matches(name string) bool {
	return strings.HasPrefix(name, f.Tag()) && strings.Contains(name, f.Panel)
}

// String describes the filter for error messages.
func (f Filter) String() string {
	return fmt.Sprintf("tag %q, panel %q", f.Tag(), f.Panel)
}

// List returns every regular file in dir matching f, oldest first.
// Hidden files and directories are ignored.
func List(dir string, f Filter) ([]Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact directory %s: %w", dir, err)
	}

	var out []Artifact
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !f.Matches(name) {
			continue
		}
		a := Parse(name)
		a.Path = filepath.Join(dir, name)
		out = append(out, a)
	}
	slices.SortFunc(out, Compare)
	return out, nil
}

// Select returns the newest artifact in dir matching f.
// It returns ErrNoArtifacts when nothing matches.
func Select(dir string, f Filter) (Artifact, error) {
	candidates, err := List(dir, f)
	if err != nil {
		return Artifact{}, err
	}
	if len(candidates) == 0 {
		return Artifact{}, fmt.Errorf("%w in %s (%s)", ErrNoArtifacts, dir, f)
	}
	return candidates[len(candidates)-1], nil
}

// Compare orders artifacts by timestamp and then by name.
func Compare(a, b Artifact) int {
	if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
		return c
	}
	return cmp.Compare(a.Name, b.Name)
}
