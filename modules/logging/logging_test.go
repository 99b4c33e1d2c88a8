package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("production", "")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, l)

	l, err = ParseLevel("dev", "")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)

	l, err = ParseLevel("dev", "warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)

	_, err = ParseLevel("dev", "loud")
	assert.Error(t, err)
}

func TestNew_AddsTraceAndContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	type key struct{}
	logger, err := New("dev", Config{Format: FormatJSON},
		WithWriter(&buf),
		WithContextAttrs(func(ctx context.Context) (slog.Attr, bool) {
			v, ok := ctx.Value(key{}).(string)
			return slog.String("request_id", v), ok
		}),
	)
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = context.WithValue(ctx, key{}, "req-1")

	logger.With("component", "test").InfoContext(ctx, "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "test", rec["component"])
	assert.Equal(t, sc.TraceID().String(), rec["trace_id"])
	assert.Equal(t, sc.SpanID().String(), rec["span_id"])
	assert.Equal(t, "req-1", rec["request_id"])
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New("dev", Config{Format: "xml"})
	assert.Error(t, err)
}
