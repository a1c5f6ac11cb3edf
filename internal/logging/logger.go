package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"stockdesk/internal/config"
)

// Options describes logger construction parameters. Outputs lists sink
// paths; "stdout" and "stderr" are recognized as the process streams, any
// other value is opened as an append-mode file.
type Options struct {
	Level     string
	Format    string
	Outputs   []string
	AddSource bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))

	sink, err := openSinks(opts.Outputs)
	if err != nil {
		return nil, err
	}

	addSource := opts.AddSource || levelVar.Level() <= slog.LevelDebug

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		return slog.New(newJSONHandler(sink, levelVar, addSource)), nil
	case "console", "":
		return slog.New(newConsoleHandler(sink, levelVar, addSource)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig creates a logger that writes to stdout and, when a log
// directory is configured, appends to stockdesk.log inside it.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", Outputs: []string{"stdout"}})
	}

	outputs := []string{"stdout"}
	if cfg.Paths.LogDir != "" {
		if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, "stockdesk.log"))
	}

	return New(Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Outputs: outputs,
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openSinks(paths []string) (io.Writer, error) {
	if len(paths) == 0 {
		return os.Stdout, nil
	}

	var writers []io.Writer
	seen := map[string]struct{}{}
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}

		switch path {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if dir := filepath.Dir(path); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("ensure log directory: %w", err)
				}
			}
			file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", path, err)
			}
			writers = append(writers, file)
		}
	}

	switch len(writers) {
	case 0:
		return os.Stdout, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	})
}

// consoleHandler renders one-line human-readable records:
//
//	2024-01-02T03:04:05Z INFO organizer: organized outputs symbol=TCS files=2
//
// The component field, when present, becomes the message prefix instead of
// a trailing key=value pair.
type consoleHandler struct {
	mu        sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	addSource bool
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{writer: w, level: lvl, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	fields := make([]field, 0, record.NumAttrs()+len(h.attrs))
	for _, attr := range h.attrs {
		collectField(&fields, h.groups, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		collectField(&fields, h.groups, attr)
		return true
	})

	var component string
	kept := fields[:0]
	for _, f := range fields {
		if f.key == FieldComponent && component == "" {
			component = f.value.Resolve().String()
			continue
		}
		kept = append(kept, f)
	}
	fields = kept

	var line strings.Builder
	line.Grow(96 + len(fields)*24)

	line.WriteString(ts.UTC().Format(time.RFC3339))
	line.WriteByte(' ')
	line.WriteString(levelLabel(record.Level))
	line.WriteByte(' ')
	if component != "" {
		line.WriteString(component)
		line.WriteString(": ")
	}
	if msg := strings.TrimSpace(record.Message); msg != "" {
		line.WriteString(msg)
	} else {
		line.WriteString("(no message)")
	}

	if h.addSource {
		if record.PC != 0 {
			frames := runtime.CallersFrames([]uintptr{record.PC})
			frame, _ := frames.Next()
			fmt.Fprintf(&line, " [%s:%d]", filepath.Base(frame.File), frame.Line)
		}
	}

	for _, f := range fields {
		if f.key == "" {
			continue
		}
		line.WriteByte(' ')
		line.WriteString(f.key)
		line.WriteByte('=')
		line.WriteString(renderValue(f.value))
	}
	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, line.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	clone.attrs = append(clone.attrs, attrs...)
	return clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *consoleHandler) clone() *consoleHandler {
	return &consoleHandler{
		writer:    h.writer,
		level:     h.level,
		addSource: h.addSource,
		attrs:     append([]slog.Attr(nil), h.attrs...),
		groups:    append([]string(nil), h.groups...),
	}
}

type field struct {
	key   string
	value slog.Value
}

// collectField flattens attrs depth-first, joining group names with dots so
// grouped values stay addressable in the flat key=value output.
func collectField(dst *[]field, prefix []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = append(append([]string(nil), prefix...), attr.Key)
		}
		for _, member := range attr.Value.Group() {
			collectField(dst, next, member)
		}
		return
	}

	key := attr.Key
	if len(prefix) > 0 {
		if key != "" {
			key = strings.Join(prefix, ".") + "." + key
		} else {
			key = strings.Join(prefix, ".")
		}
	}
	*dst = append(*dst, field{key: key, value: attr.Value})
}

func renderValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	default:
		s := v.String()
		if v.Kind() == slog.KindAny {
			if err, ok := v.Any().(error); ok {
				s = err.Error()
			}
		}
		if s == "" || strings.ContainsAny(s, " =\"") || strings.ContainsFunc(s, func(r rune) bool { return r < ' ' }) {
			return strconv.Quote(s)
		}
		return s
	}
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
