package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler renders one human-readable line per record:
//
//	2026-08-24T10:00:00Z INFO monitor: new release discovered subject="Some Artist"
//
// The component attribute becomes the message prefix instead of a k=v field.
type consoleHandler struct {
	mu         sync.Mutex
	out        io.Writer
	minLevel   *slog.LevelVar
	withCaller bool

	bound []slog.Attr
	scope []string
}

func newConsoleHandler(out io.Writer, minLevel *slog.LevelVar, withCaller bool) slog.Handler {
	return &consoleHandler{out: out, minLevel: minLevel, withCaller: withCaller}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.minLevel.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := make([]field, 0, record.NumAttrs()+len(h.bound))
	for _, attr := range h.bound {
		fields = appendField(fields, h.scope, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendField(fields, h.scope, attr)
		return true
	})

	// Pull the component out of the field list; it prefixes the message.
	component := ""
	kept := fields[:0]
	for _, f := range fields {
		if f.key == FieldComponent && component == "" {
			component = f.value.Resolve().String()
			continue
		}
		kept = append(kept, f)
	}
	fields = kept

	when := record.Time
	if when.IsZero() {
		when = time.Now()
	}

	var line bytes.Buffer
	line.Grow(128 + len(fields)*24)
	line.WriteString(when.UTC().Format(time.RFC3339))
	line.WriteByte(' ')
	line.WriteString(levelTag(record.Level))
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
	if h.withCaller && record.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{record.PC})
		if frame, _ := frames.Next(); frame.File != "" {
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
	_, err := h.out.Write(line.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.fork()
	next.bound = append(next.bound, attrs...)
	return next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	next := h.fork()
	next.scope = append(next.scope, name)
	return next
}

func (h *consoleHandler) fork() *consoleHandler {
	next := &consoleHandler{out: h.out, minLevel: h.minLevel, withCaller: h.withCaller}
	next.bound = append(next.bound, h.bound...)
	next.scope = append(next.scope, h.scope...)
	return next
}

type field struct {
	key   string
	value slog.Value
}

// appendField flattens attr into dst, joining group scopes with dots so
// grouped attributes stay greppable on a single line.
func appendField(dst []field, scope []string, attr slog.Attr) []field {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		inner := scope
		if attr.Key != "" {
			inner = append(append([]string{}, scope...), attr.Key)
		}
		for _, member := range attr.Value.Group() {
			dst = appendField(dst, inner, member)
		}
		return dst
	}

	key := attr.Key
	if len(scope) > 0 && key != "" {
		key = strings.Join(scope, ".") + "." + key
	} else if len(scope) > 0 {
		key = strings.Join(scope, ".")
	}
	return append(dst, field{key: key, value: attr.Value})
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
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return quoteIfNeeded(err.Error())
		}
		return quoteIfNeeded(fmt.Sprint(v.Any()))
	default:
		return quoteIfNeeded(v.String())
	}
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return strconv.Quote(s)
		}
	}
	return s
}

func levelTag(level slog.Level) string {
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
