package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// HomeMarker replaces the home directory prefix in logged paths.
const HomeMarker = "~"

// PathHandler wraps an slog.Handler and masks the home directory in string
// attribute values before passing records to the underlying handler.
type PathHandler struct {
	// handler is the underlying slog handler that receives masked records.
	handler slog.Handler

	// home is the cleaned home directory. Empty disables masking.
	home string
}

// NewPathHandler creates a new PathHandler wrapping the given handler.
// The home directory is taken from os.UserHomeDir. If handler is nil, the
// returned PathHandler uses slog.Default().Handler().
func NewPathHandler(handler slog.Handler) *PathHandler {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return newPathHandler(handler, home)
}

func newPathHandler(handler slog.Handler, home string) *PathHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	if home != "" {
		home = filepath.Clean(home)
		// Masking "/" would rewrite every absolute path.
		if home == string(filepath.Separator) {
			home = ""
		}
	}
	return &PathHandler{handler: handler, home: home}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *PathHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and passes it to the underlying handler.
func (h *PathHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, h.maskString(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(h.maskAttr(a))
		return true
	})
	return h.handler.Handle(ctx, masked)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are masked before being added.
func (h *PathHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	maskedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		maskedAttrs[i] = h.maskAttr(a)
	}
	return &PathHandler{handler: h.handler.WithAttrs(maskedAttrs), home: h.home}
}

// WithGroup returns a new handler with the given group name.
func (h *PathHandler) WithGroup(name string) slog.Handler {
	return &PathHandler{handler: h.handler.WithGroup(name), home: h.home}
}

// maskAttr masks a single attribute, recursively handling groups.
func (h *PathHandler) maskAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()
	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		maskedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			maskedAttrs[i] = h.maskAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(maskedAttrs...)}
	case slog.KindString:
		return slog.String(a.Key, h.maskString(a.Value.String()))
	case slog.KindAny:
		// Errors frequently carry the path of the file that failed.
		if err, ok := a.Value.Any().(error); ok {
			return slog.String(a.Key, h.maskString(err.Error()))
		}
	}
	return a
}

// maskString replaces every occurrence of the home directory that starts a
// path, i.e. is followed by a separator or ends the string.
func (h *PathHandler) maskString(s string) string {
	if h.home == "" || !strings.Contains(s, h.home) {
		return s
	}
	var b strings.Builder
	rest := s
	for {
		i := strings.Index(rest, h.home)
		if i < 0 {
			b.WriteString(rest)
			break
		}
		end := i + len(h.home)
		b.WriteString(rest[:i])
		if end == len(rest) || rest[end] == filepath.Separator || rest[end] == '/' {
			b.WriteString(HomeMarker)
		} else {
			b.WriteString(h.home)
		}
		rest = rest[end:]
	}
	return b.String()
}

// NewLogger creates a new slog.Logger writing text records through a
// PathHandler.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	return slog.New(NewPathHandler(textHandler))
}
