package codegen

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/eps-fdir/epsfdir/internal/forest"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// cIdentifier matches a valid C identifier.
var cIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// indent is one level of indentation in generated code.
const indent = "    "

// Translator converts models into C source.
// A Translator is immutable after New and safe for concurrent use.
type Translator struct {
	comment []string
	include string
}

// Option configures a Translator.
type Option func(*Translator)

// WithComment adds a block comment with the given lines at the top of
// generated files.
func WithComment(lines ...string) Option {
	return func(t *Translator) {
		t.comment = append(t.comment, lines...)
	}
}

// WithInclude makes the source include the named header.
func WithInclude(header string) Option {
	return func(t *Translator) {
		t.include = header
	}
}

// New creates a Translator.
func New(opts ...Option) *Translator {
	t := &Translator{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Signature returns the C prototype of the scoring function, without the
// trailing semicolon.
func Signature(function string) string {
	return "double " + function + "(double * input)"
}

type sourceData struct {
	Comment      []string
	Include      string
	FeatureNames []string
	Signature    string
	Indent       string
	Body         string
	Result       string
}

// Translate returns the C source of a function evaluating m.
func (t *Translator) Translate(m *forest.Model, function string) (string, error) {
	if !cIdentifier.MatchString(function) {
		return "", fmt.Errorf("%w: function name %q", ErrInvalidName, function)
	}
	if err := m.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	var body strings.Builder
	for i, tree := range m.Trees {
		fmt.Fprintf(&body, "%s/* tree %d */\n", indent, i)
		t.writeNode(&body, tree, 0, 1)
	}

	data := sourceData{
		Comment:      sanitize(t.comment),
		Include:      t.include,
		FeatureNames: sanitize(m.FeatureNames),
		Signature:    Signature(function),
		Indent:       indent,
		Body:         body.String(),
		Result:       result(m),
	}
	return execute("source.c.tmpl", data)
}

// writeNode emits node i of tree at the given block depth.
func (t *Translator) writeNode(sb *strings.Builder, tree forest.Tree, i, depth int) {
	pad := strings.Repeat(indent, depth)
	n := tree.Nodes[i]
	if n.IsLeaf() {
		fmt.Fprintf(sb, "%ssum += %s;\n", pad, cFloat(n.Value))
		return
	}
	fmt.Fprintf(sb, "%sif (input[%d] <= %s) {\n", pad, n.Feature, cFloat(n.Threshold))
	t.writeNode(sb, tree, *n.Left, depth+1)
	fmt.Fprintf(sb, "%s} else {\n", pad)
	t.writeNode(sb, tree, *n.Right, depth+1)
	fmt.Fprintf(sb, "%s}\n", pad)
}

// result is the returned expression. The operations and their order match
// forest.Model.Predict so both round identically.
func result(m *forest.Model) string {
	expr := "sum"
	if m.Aggregation == forest.AggregationMean && len(m.Trees) > 1 {
		expr = "sum / " + cFloat(float64(len(m.Trees)))
	}
	if m.BaseScore != 0 {
		expr = cFloat(m.BaseScore) + " + " + expr
	}
	return expr
}

type headerData struct {
	Comment      []string
	Guard        string
	FeatureMacro string
	Features     int
	Signature    string
}

// Header returns a header declaring the scoring function and its input
// size. The include guard is derived from the header file name.
func (t *Translator) Header(m *forest.Model, function, fileName string) (string, error) {
	if !cIdentifier.MatchString(function) {
		return "", fmt.Errorf("%w: function name %q", ErrInvalidName, function)
	}
	guard := macroName(filepath.Base(fileName))
	if !cIdentifier.MatchString(guard) {
		return "", fmt.Errorf("%w: header name %q", ErrInvalidName, fileName)
	}

	return execute("header.h.tmpl", headerData{
		Comment:      sanitize(t.comment),
		Guard:        guard,
		FeatureMacro: macroName(function) + "_N_FEATURES",
		Features:     m.NFeatures,
		Signature:    Signature(function),
	})
}

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// cFloat formats v as a C double literal that parses back to exactly v.
func cFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// macroName upper-cases name and replaces every character that cannot
// appear in a macro with an underscore, e.g. "voltage_model.h" becomes
// "VOLTAGE_MODEL_H".
func macroName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

// sanitize keeps comment text from closing the surrounding comment.
func sanitize(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.ReplaceAll(l, "*/", "* /")
	}
	return out
}
