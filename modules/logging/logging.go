// Package logging builds the process logger: a text or JSON slog handler
// whose records carry the active trace/span ids and any request scoped
// attributes registered through WithContextAttrs.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config is parsed under the LOG_ prefix.
type Config struct {
	// Empty picks a level from the environment name.
	Level  string `env:"LEVEL"`
	Format Format `env:"FORMAT" envDefault:"json"`
	// AddSource records file:line of the call site.
	AddSource bool `env:"ADD_SOURCE"`
}

// ContextAttrFunc extracts one attribute from a record's context.
type ContextAttrFunc func(ctx context.Context) (slog.Attr, bool)

type Option func(*options)

type options struct {
	writer   io.Writer
	ctxAttrs []ContextAttrFunc
}

func WithWriter(w io.Writer) Option {
	return func(o *options) { o.writer = w }
}

func WithContextAttrs(fns ...ContextAttrFunc) Option {
	return func(o *options) { o.ctxAttrs = append(o.ctxAttrs, fns...) }
}

// New builds a logger for env ("dev", "staging", "production", ...).
func New(env string, cfg Config, opts ...Option) (*slog.Logger, error) {
	o := options{writer: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	level, err := ParseLevel(env, cfg.Level)
	if err != nil {
		return nil, err
	}

	hopts := &slog.HandlerOptions{Level: level, AddSource: cfg.AddSource}

	var base slog.Handler
	switch Format(strings.ToLower(string(cfg.Format))) {
	case FormatText:
		base = slog.NewTextHandler(o.writer, hopts)
	case FormatJSON, "":
		base = slog.NewJSONHandler(o.writer, hopts)
	default:
		return nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}

	return slog.New(&contextHandler{Handler: base, ctxAttrs: o.ctxAttrs}), nil
}

// ParseLevel honours an explicit level and otherwise defaults by environment.
func ParseLevel(env, level string) (slog.Level, error) {
	if level != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(level)); err != nil {
			return 0, fmt.Errorf("logging: %w", err)
		}
		return l, nil
	}
	switch env {
	case "production", "staging":
		return slog.LevelInfo, nil
	default:
		return slog.LevelDebug, nil
	}
}

type contextHandler struct {
	slog.Handler
	ctxAttrs []ContextAttrFunc
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	for _, fn := range h.ctxAttrs {
		if a, ok := fn(ctx); ok {
			r.AddAttrs(a)
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), ctxAttrs: h.ctxAttrs}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name), ctxAttrs: h.ctxAttrs}
}
