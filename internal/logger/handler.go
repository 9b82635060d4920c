// Package logger wires the process-wide slog logger. Development output is a
// colorized single-line console format; everything else emits JSON for log
// shippers.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiPurple = "\033[35m"
	ansiCyan   = "\033[36m"
	ansiGray   = "\033[37m"
	ansiWhite  = "\033[97m"
)

// Setup installs the default logger for the given environment. Level accepts
// debug/info/warn/error and falls back to info.
func Setup(w io.Writer, environment string, level string) {
	lvl := parseLevel(level)

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(environment), "production") {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = NewConsoleHandler(w, &slog.HandlerOptions{Level: lvl})
	}

	slog.SetDefault(slog.New(handler))
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

// ConsoleHandler renders records as one colorized line per record, meant for
// a developer terminal rather than a log pipeline.
type ConsoleHandler struct {
	opts  slog.HandlerOptions
	w     io.Writer
	mu    *sync.Mutex
	attrs []slog.Attr
	group string
}

func NewConsoleHandler(w io.Writer, opts *slog.HandlerOptions) *ConsoleHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ConsoleHandler{
		opts: *opts,
		w:    w,
		mu:   &sync.Mutex{},
	}
}

func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var line strings.Builder

	fmt.Fprintf(&line, "%s%s%s ", ansiGray, r.Time.Format("15:04:05.000"), ansiReset)
	fmt.Fprintf(&line, "%s%-5s%s ", levelColor(r.Level), r.Level.String(), ansiReset)
	fmt.Fprintf(&line, "%s%s%s", ansiWhite, r.Message, ansiReset)

	for _, a := range h.attrs {
		h.appendAttr(&line, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&line, a)
		return true
	})
	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, line.String())
	return err
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed
	case level >= slog.LevelWarn:
		return ansiYellow
	case level >= slog.LevelInfo:
		return ansiGreen
	default:
		return ansiPurple
	}
}

func (h *ConsoleHandler) appendAttr(line *strings.Builder, a slog.Attr) {
	key := a.Key
	if h.group != "" {
		key = h.group + "." + key
	}

	value := a.Value.Resolve().Any()
	if t, ok := value.(time.Time); ok {
		value = t.Format(time.RFC3339)
	}

	fmt.Fprintf(line, " %s%s%s=%v", ansiCyan, key, ansiReset, value)
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)

	clone := *h
	clone.attrs = merged
	return &clone
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if h.group != "" {
		clone.group = h.group + "." + name
	} else {
		clone.group = name
	}
	return &clone
}
