// Package logger provides the engine's slog handler.
//
// Every record is one line:
//
//	2006-01-02T15:04:05.000Z [LEVEL] message | key=value, card.id=ep1, error="..."
//
// Values containing separators are quoted so lines stay splittable. Errors
// that carry a failure kind are logged with an extra <key>_kind attribute.
package logger

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/thereceipt/titlecard-engine/internal/failure"
)

const (
	LevelTrace slog.Level = -8
	LevelDebug slog.Level = slog.LevelDebug
	LevelInfo  slog.Level = slog.LevelInfo
	LevelWarn  slog.Level = slog.LevelWarn
	LevelError slog.Level = slog.LevelError
	LevelFail  slog.Level = 12
)

// levels is ordered from least to most severe
var levels = []struct {
	level slog.Level
	name  string
}{
	{LevelTrace, "TRACE"},
	{LevelDebug, "DEBUG"},
	{LevelInfo, "INFO"},
	{LevelWarn, "WARN"},
	{LevelError, "ERROR"},
	{LevelFail, "FAIL"},
}

func levelName(l slog.Level) string {
	for _, lv := range levels {
		if l <= lv.level {
			return lv.name
		}
	}
	return "FAIL"
}

// ParseLevel maps a configured level name to a slog.Level. Unknown names
// fall back to LevelInfo.
func ParseLevel(s string) slog.Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		return LevelWarn
	}
	for _, lv := range levels {
		if strings.EqualFold(s, lv.name) {
			return lv.level
		}
	}
	return LevelInfo
}

// Handler writes records as single lines. Attributes added through
// WithAttrs are rendered once, when they are added.
type Handler struct {
	w      io.Writer
	mu     *sync.Mutex
	level  slog.Level
	prefix string
	pre    []string
}

// NewHandler creates a Handler writing records at or above level to w
func NewHandler(w io.Writer, level slog.Level) *Handler {
	return &Handler{w: w, mu: &sync.Mutex{}, level: level}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]string, len(h.pre), len(h.pre)+r.NumAttrs())
	copy(fields, h.pre)
	r.Attrs(func(a slog.Attr) bool {
		fields = appendAttr(fields, h.prefix, a)
		return true
	})

	var b strings.Builder
	b.WriteString(r.Time.UTC().Format("2006-01-02T15:04:05.000Z"))
	b.WriteString(" [" + levelName(r.Level) + "] ")
	b.WriteString(r.Message)
	if len(fields) > 0 {
		b.WriteString(" | ")
		b.WriteString(strings.Join(fields, ", "))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	pre := append([]string(nil), h.pre...)
	for _, a := range attrs {
		pre = appendAttr(pre, h.prefix, a)
	}
	return &Handler{w: h.w, mu: h.mu, level: h.level, prefix: h.prefix, pre: pre}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &Handler{w: h.w, mu: h.mu, level: h.level, prefix: h.prefix + name + ".", pre: h.pre}
}

// appendAttr renders a as key=value pairs. Groups are flattened into
// dotted keys.
func appendAttr(fields []string, prefix string, a slog.Attr) []string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return fields
	}

	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			fields = appendAttr(fields, inner, ga)
		}
		return fields
	}

	key := prefix + a.Key
	if err, ok := a.Value.Any().(error); ok && a.Value.Kind() == slog.KindAny {
		fields = append(fields, key+"="+quote(err.Error()))
		if kind := failure.KindOf(err); kind != "" {
			fields = append(fields, key+"_kind="+string(kind))
		}
		return fields
	}
	return append(fields, key+"="+formatValue(a.Value))
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return quote(v.String())
	case slog.KindDuration:
		return v.Duration().Round(time.Microsecond).String()
	case slog.KindTime:
		return v.Time().UTC().Format("2006-01-02T15:04:05.000Z")
	default:
		return quote(v.String())
	}
}

// quote wraps s in quotes when it would otherwise break the line format
func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " ,=|\"\n\t") {
		return strconv.Quote(s)
	}
	return s
}

// New creates a logger writing to w
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(NewHandler(w, level))
}

// NewFileLogger creates a logger writing to a rotating log file.
// The returned io.Closer must be closed to flush pending writes.
func NewFileLogger(path string, level slog.Level, maxSizeMB int) (*slog.Logger, io.Closer) {
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: 3,
		MaxAge:     28,
	}
	return New(lj, level), lj
}

// ForCard scopes l to one card. Records carry card.id and card.variant.
func ForCard(l *slog.Logger, id, variant string) *slog.Logger {
	return l.With(slog.Group("card", slog.String("id", id), slog.String("variant", variant)))
}

// Trace logs per-call detail below debug
func Trace(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelTrace, msg, args...)
}

// Fail logs an unrecoverable error
func Fail(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelFail, msg, args...)
}
