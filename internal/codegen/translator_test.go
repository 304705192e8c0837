package codegen

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/eps-fdir/epsfdir/internal/forest"
)

// testModel is a two-tree forest over two features.
const testModel = `{
  "format": "epsfdir-forest",
  "version": 1,
  "estimator": "RandomForestRegressor",
  "n_features_in": 2,
  "feature_names": ["Volt_lag1", "Volt_lag2"],
  "trees": [
    {"nodes": [
      {"feature": 0, "threshold": 1.5, "left": 1, "right": 2},
      {"value": 10},
      {"feature": 1, "threshold": -0.25, "left": 3, "right": 4},
      {"value": 20.125},
      {"value": 30}
    ]},
    {"nodes": [
      {"feature": 1, "threshold": 5, "left": 1, "right": 2},
      {"value": 0.1},
      {"value": 1e-7}
    ]}
  ]
}`

func parseModel(t *testing.T, doc string) *forest.Model {
	t.Helper()
	m, err := forest.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("failed to parse model: %v", err)
	}
	return m
}

// evalC interprets the function body emitted by Translate for one input.
// It understands exactly the statements the translator writes: block
// comments, "if (input[i] <= t) {", "} else {", "}", "sum += v;" and the
// final return.
func evalC(t *testing.T, src string, x []float64) float64 {
	t.Helper()

	lines := strings.Split(src, "\n")
	start := -1
	for i, l := range lines {
		if strings.HasSuffix(l, "double sum = 0.0;") {
			start = i + 1
			break
		}
	}
	if start < 0 {
		t.Fatal("no function body in generated source")
	}

	var sum float64
	// taken holds, per open if block, whether its then-branch was taken.
	// skip counts nested blocks inside a branch that is not taken.
	var taken []bool
	skip := 0
	for _, raw := range lines[start:] {
		l := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(l, "/*") || l == "":
			continue
		case strings.HasPrefix(l, "if (input["):
			if skip > 0 {
				skip++
				continue
			}
			inner := strings.TrimSuffix(strings.TrimPrefix(l, "if (input["), ") {")
			idxText, thrText, ok := strings.Cut(inner, "] <= ")
			if !ok {
				t.Fatalf("cannot parse %q", l)
			}
			idx, err := strconv.Atoi(idxText)
			if err != nil {
				t.Fatalf("cannot parse index in %q: %v", l, err)
			}
			thr, err := strconv.ParseFloat(thrText, 64)
			if err != nil {
				t.Fatalf("cannot parse threshold in %q: %v", l, err)
			}
			cond := x[idx] <= thr
			taken = append(taken, cond)
			if !cond {
				skip = 1
			}
		case l == "} else {":
			if skip > 1 {
				continue
			}
			cond := taken[len(taken)-1]
			if cond {
				skip = 1
			} else {
				skip = 0
			}
		case l == "}":
			if skip > 1 {
				skip--
				continue
			}
			skip = 0
			taken = taken[:len(taken)-1]
		case strings.HasPrefix(l, "sum += "):
			if skip > 0 {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimPrefix(l, "sum += "), ";"), 64)
			if err != nil {
				t.Fatalf("cannot parse %q: %v", l, err)
			}
			sum += v
		case strings.HasPrefix(l, "return "):
			return evalReturn(t, strings.TrimSuffix(strings.TrimPrefix(l, "return "), ";"), sum)
		default:
			t.Fatalf("unexpected statement %q", l)
		}
	}
	t.Fatal("no return statement")
	return 0
}

// evalReturn evaluates "[base + ]sum[ / n]".
func evalReturn(t *testing.T, expr string, sum float64) float64 {
	t.Helper()

	base := 0.0
	if before, after, ok := strings.Cut(expr, " + "); ok {
		v, err := strconv.ParseFloat(before, 64)
		if err != nil {
			t.Fatalf("cannot parse base in %q: %v", expr, err)
		}
		base, expr = v, after
	}
	if _, after, ok := strings.Cut(expr, " / "); ok {
		n, err := strconv.ParseFloat(after, 64)
		if err != nil {
			t.Fatalf("cannot parse divisor in %q: %v", expr, err)
		}
		sum /= n
	}
	return base + sum
}

// TestTranslate tests the structure of the generated source.
func TestTranslate(t *testing.T) {
	t.Parallel()

	m := parseModel(t, testModel)
	src, err := New(
		WithComment("Generated by epsfdir from voltage_rf_pruned50_+X_20230215.json", "Do not edit */ by hand"),
		WithInclude("voltage_model.h"),
	).Translate(m, "score_voltage")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"/*\n * Generated by epsfdir from voltage_rf_pruned50_+X_20230215.json\n * Do not edit * / by hand\n */\n\n",
		"#include \"voltage_model.h\"\n\n",
		" *   input[0] = Volt_lag1\n *   input[1] = Volt_lag2\n",
		"double score_voltage(double * input) {\n    double sum = 0.0;\n",
		"    /* tree 0 */\n    if (input[0] <= 1.5) {\n        sum += 10.0;\n    } else {\n",
		"        if (input[1] <= -0.25) {\n            sum += 20.125;\n",
		"sum += 1e-07;",
		"    return sum / 2.0;\n}\n",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("expected source to contain %q, got:\n%s", want, src)
		}
	}

	if got := strings.Count(src, "if (input["); got != 3 {
		t.Errorf("expected 3 splits, got %d", got)
	}
	if strings.Count(src, "{") != strings.Count(src, "}") {
		t.Error("unbalanced braces")
	}
	if !strings.HasPrefix(src, "/*") {
		t.Errorf("expected source to start with the comment, got %q", src[:20])
	}
}

// TestTranslateMatchesPredict tests that the generated function computes
// the same value as the model for inputs reaching every leaf.
func TestTranslateMatchesPredict(t *testing.T) {
	t.Parallel()

	boosted := strings.Replace(testModel, `"n_features_in": 2,`,
		`"n_features_in": 2, "aggregation": "sum", "base_score": 27.5,`, 1)

	for name, doc := range map[string]string{"mean": testModel, "sum with base score": boosted} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			m := parseModel(t, doc)
			src, err := New().Translate(m, "score")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			for _, x := range [][]float64{
				{1, 6}, {1.5, 5}, {2, -1}, {2, -0.25}, {2, 0}, {3, 100},
			} {
				want, err := m.Predict(x)
				if err != nil {
					t.Fatal(err)
				}
				if got := evalC(t, src, x); got != want {
					t.Errorf("input %v: generated code gives %v, model gives %v", x, got, want)
				}
			}
		})
	}
}

// TestTranslateSingleLeaf tests a tree without splits.
func TestTranslateSingleLeaf(t *testing.T) {
	t.Parallel()

	m := parseModel(t, `{"format": "epsfdir-forest", "version": 1, "n_features_in": 3, "trees": [{"nodes": [{"value": -4}]}]}`)
	src, err := New().Translate(m, "score_power")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "double score_power(double * input) {\n    double sum = 0.0;\n    /* tree 0 */\n    sum += -4.0;\n    return sum;\n}\n"
	if src != want {
		t.Errorf("unexpected source:\n%q\nwant:\n%q", src, want)
	}
}

// TestTranslateErrors tests rejected inputs.
func TestTranslateErrors(t *testing.T) {
	t.Parallel()

	t.Run("invalid function name", func(t *testing.T) {
		t.Parallel()

		m := parseModel(t, testModel)
		for _, name := range []string{"", "2score", "score-voltage", "score voltage"} {
			if _, err := New().Translate(m, name); !errors.Is(err, ErrInvalidName) {
				t.Errorf("Translate(%q): expected ErrInvalidName, got %v", name, err)
			}
		}
	})

	t.Run("invalid model", func(t *testing.T) {
		t.Parallel()

		m := parseModel(t, testModel)
		m.Trees = nil
		if _, err := New().Translate(m, "score"); !errors.Is(err, ErrInvalidModel) {
			t.Errorf("expected ErrInvalidModel, got %v", err)
		}
	})
}

// TestHeader tests the generated header.
func TestHeader(t *testing.T) {
	t.Parallel()

	m := parseModel(t, testModel)

	t.Run("declares the function and its input size", func(t *testing.T) {
		t.Parallel()

		h, err := New().Header(m, "score_voltage", "deploy/c_code/voltage_model.h")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "#ifndef VOLTAGE_MODEL_H\n" +
			"#define VOLTAGE_MODEL_H\n\n" +
			"#define SCORE_VOLTAGE_N_FEATURES 2\n\n" +
			"double score_voltage(double * input);\n\n" +
			"#endif /* VOLTAGE_MODEL_H */\n"
		if h != want {
			t.Errorf("unexpected header:\n%q\nwant:\n%q", h, want)
		}
	})

	t.Run("comment is repeated", func(t *testing.T) {
		t.Parallel()

		h, err := New(WithComment("Generated by epsfdir")).Header(m, "score_voltage", "voltage_model.h")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(h, "/*\n * Generated by epsfdir\n */\n\n#ifndef VOLTAGE_MODEL_H\n") {
			t.Errorf("unexpected header start:\n%s", h)
		}
	})

	t.Run("unusable file name", func(t *testing.T) {
		t.Parallel()

		if _, err := New().Header(m, "score_voltage", "1model.h"); !errors.Is(err, ErrInvalidName) {
			t.Errorf("expected ErrInvalidName, got %v", err)
		}
	})
}

// TestCFloat tests C literal formatting.
func TestCFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		v    float64
		want string
	}{
		{10, "10.0"},
		{-4, "-4.0"},
		{1.5, "1.5"},
		{0.1, "0.1"},
		{1e-7, "1e-07"},
		{1e21, "1e+21"},
		{0, "0.0"},
	}
	for _, tt := range tests {
		if got := cFloat(tt.v); got != tt.want {
			t.Errorf("cFloat(%v) = %q, want %q", tt.v, got, tt.want)
		}
		if back, err := strconv.ParseFloat(cFloat(tt.v), 64); err != nil || back != tt.v {
			t.Errorf("cFloat(%v) does not round-trip: %v, %v", tt.v, back, err)
		}
	}
}
