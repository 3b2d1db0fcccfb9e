package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler renders "TIMESTAMP LEVEL component: message key=value"
// lines. Attributes are rendered to text as they are attached, so Handle
// only assembles pre-formatted fields.
type consoleHandler struct {
	// mu is shared across clones: WithAttrs children write to the same sink.
	mu        *sync.Mutex
	out       io.Writer
	level     *slog.LevelVar
	addSource bool
	prefix    string
	fields    []field
}

type field struct {
	key  string
	text string
}

func newConsoleHandler(out io.Writer, level *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{mu: new(sync.Mutex), out: out, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	fields := make([]field, 0, len(h.fields)+record.NumAttrs())
	fields = append(fields, h.fields...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = collectFields(fields, h.prefix, attr)
		return true
	})

	// The component field becomes the message prefix instead of a key=value
	// pair; the first one attached wins.
	component := ""
	kept := fields[:0]
	for _, f := range fields {
		if f.key == FieldComponent {
			if component == "" {
				component = f.text
			}
			continue
		}
		kept = append(kept, f)
	}

	var line bytes.Buffer
	line.Grow(96 + len(kept)*24)

	line.WriteString(ts.UTC().Format(time.RFC3339))
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
	if h.addSource {
		if src := record.Source(); src != nil {
			fmt.Fprintf(&line, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	for _, f := range kept {
		line.WriteByte(' ')
		line.WriteString(f.key)
		line.WriteByte('=')
		line.WriteString(f.text)
	}
	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(line.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	for _, attr := range attrs {
		clone.fields = collectFields(clone.fields, clone.prefix, attr)
	}
	return clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	clone := h.clone()
	clone.prefix = joinKey(clone.prefix, name)
	return clone
}

func (h *consoleHandler) clone() *consoleHandler {
	fields := make([]field, len(h.fields), len(h.fields)+4)
	copy(fields, h.fields)
	return &consoleHandler{
		mu:        h.mu,
		out:       h.out,
		level:     h.level,
		addSource: h.addSource,
		prefix:    h.prefix,
		fields:    fields,
	}
}

func collectFields(dst []field, prefix string, attr slog.Attr) []field {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = joinKey(prefix, attr.Key)
		}
		for _, nested := range value.Group() {
			dst = collectFields(dst, next, nested)
		}
		return dst
	}
	key := joinKey(prefix, attr.Key)
	if key == "" {
		return dst
	}
	return append(dst, field{key: key, text: renderValue(value)})
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

// renderValue formats a resolved value, quoting strings that would be
// ambiguous in key=value form. Numeric kinds never need quoting.
func renderValue(v slog.Value) string {
	var raw string
	switch v.Kind() {
	case slog.KindString:
		raw = v.String()
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
			raw = err.Error()
		} else {
			raw = fmt.Sprint(v.Any())
		}
	default:
		raw = v.String()
	}
	if needsQuotes(raw) {
		return strconv.Quote(raw)
	}
	return raw
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsFunc(s, func(r rune) bool {
		return r <= ' ' || r == '=' || r == '"'
	})
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
