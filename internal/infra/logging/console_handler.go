package logging

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[31m"
	ansiGreen = "\033[32m"
	ansiAmber = "\033[33m"
	ansiCyan  = "\033[36m"
	ansiGray  = "\033[90m"
)

// ConsoleHandler renders records as a single human-readable line:
//
//	15:04:05.000 INFO  message | key=value key=value (file.go:42)
type ConsoleHandler struct {
	out    io.Writer
	mu     *sync.Mutex
	level  slog.Leveler
	color  bool
	attrs  []slog.Attr
	prefix string
}

var _ slog.Handler = (*ConsoleHandler)(nil)

// NewConsoleHandler creates a ConsoleHandler writing to out.
func NewConsoleHandler(out io.Writer, level slog.Leveler, color bool) *ConsoleHandler {
	return &ConsoleHandler{
		out:   out,
		mu:    new(sync.Mutex),
		level: level,
		color: color,
	}
}

// Enabled implements slog.Handler.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var line strings.Builder

	line.WriteString(h.paint(ansiGray, r.Time.Format("15:04:05.000")))
	line.WriteByte(' ')
	line.WriteString(h.paint(levelColor(r.Level), padLevel(r.Level)))
	line.WriteByte(' ')
	line.WriteString(r.Message)

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, prefixAttr(h.prefix, a))

		return true
	})

	if len(attrs) > 0 {
		line.WriteString(h.paint(ansiGray, " |"))

		for _, attr := range attrs {
			h.writeAttr(&line, "", attr)
		}
	}

	if r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		file := frame.File[strings.LastIndexByte(frame.File, '/')+1:]
		line.WriteString(h.paint(ansiGray, " ("+file+":"+strconv.Itoa(frame.Line)+")"))
	}

	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := io.WriteString(h.out, line.String())

	return err //nolint:wrapcheck
}

// WithAttrs implements slog.Handler.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]slog.Attr(nil), h.attrs...)

	for _, a := range attrs {
		clone.attrs = append(clone.attrs, prefixAttr(h.prefix, a))
	}

	return &clone
}

// WithGroup implements slog.Handler.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	clone := *h
	clone.prefix = h.prefix + name + "."

	return &clone
}

func (h *ConsoleHandler) writeAttr(line *strings.Builder, prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()

	if attr.Value.Kind() == slog.KindGroup {
		for _, member := range attr.Value.Group() {
			h.writeAttr(line, prefix+attr.Key+".", member)
		}

		return
	}

	if attr.Equal(slog.Attr{}) {
		return
	}

	line.WriteByte(' ')
	line.WriteString(prefix + attr.Key)
	line.WriteByte('=')
	line.WriteString(h.paint(ansiCyan, attr.Value.String()))
}

func (h *ConsoleHandler) paint(code, s string) string {
	if !h.color {
		return s
	}

	return code + s + ansiReset
}

func prefixAttr(prefix string, a slog.Attr) slog.Attr {
	if prefix == "" {
		return a
	}

	a.Key = prefix + a.Key

	return a
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed
	case level >= slog.LevelWarn:
		return ansiAmber
	case level >= slog.LevelInfo:
		return ansiGreen
	default:
		return ansiGray
	}
}

func padLevel(level slog.Level) string {
	s := level.String()
	for len(s) < 5 {
		s += " "
	}

	return s
}
