package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler writes one line per record:
//
//	<time> <LEVEL> <component>[<stage>]: <message> key=value ... (file:line)
//
// Component and stage move into the prefix; every other attribute follows
// the message in the order it was added. Groups flatten to dotted keys.
type consoleHandler struct {
	out       *syncWriter
	level     slog.Leveler
	addSource bool
	prefix    string
	bound     []consoleField
}

type consoleField struct {
	key   string
	value slog.Value
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) write(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.w.Write(p)
	return err
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) slog.Handler {
	return &consoleHandler{out: &syncWriter{w: w}, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	next.bound = appendConsoleFields(slices.Clip(h.bound), h.prefix, attrs...)
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := slices.Clone(h.bound)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendConsoleFields(fields, h.prefix, attr)
		return true
	})

	var component, stage string
	rest := fields[:0]
	for _, f := range fields {
		switch f.key {
		case FieldComponent:
			if component == "" {
				component = f.value.String()
			}
		case FieldStage:
			if stage == "" {
				stage = f.value.String()
			}
		default:
			rest = append(rest, f)
		}
	}

	at := record.Time
	if at.IsZero() {
		at = time.Now()
	}

	var line strings.Builder
	line.WriteString(at.UTC().Format(time.RFC3339))
	fmt.Fprintf(&line, " %-5s ", record.Level.String())
	if scope := consoleScope(component, stage); scope != "" {
		line.WriteString(scope)
		line.WriteString(": ")
	}
	if msg := strings.TrimSpace(record.Message); msg != "" {
		line.WriteString(msg)
	} else {
		line.WriteString("-")
	}
	for _, f := range rest {
		line.WriteByte(' ')
		line.WriteString(f.key)
		line.WriteByte('=')
		line.WriteString(consoleValue(f.value))
	}
	if h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			fmt.Fprintf(&line, " (%s:%d)", filepath.Base(src.File), src.Line)
		}
	}
	line.WriteByte('\n')
	return h.out.write([]byte(line.String()))
}

func consoleScope(component, stage string) string {
	switch {
	case component != "" && stage != "":
		return component + "[" + stage + "]"
	case stage != "":
		return "[" + stage + "]"
	default:
		return component
	}
}

func appendConsoleFields(dst []consoleField, prefix string, attrs ...slog.Attr) []consoleField {
	for _, attr := range attrs {
		value := attr.Value.Resolve()
		if value.Kind() == slog.KindGroup {
			groupPrefix := prefix
			if attr.Key != "" {
				groupPrefix += attr.Key + "."
			}
			dst = appendConsoleFields(dst, groupPrefix, value.Group()...)
			continue
		}
		if attr.Key == "" {
			continue
		}
		dst = append(dst, consoleField{key: prefix + attr.Key, value: value})
	}
	return dst
}

func consoleValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindTime:
		s = v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}
