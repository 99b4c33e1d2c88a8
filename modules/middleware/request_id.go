package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gofrs/uuid/v5"
)

const (
	RequestIDHeader = "X-Request-ID"

	maxRequestIDLen = 128
)

type requestIDKey struct{}

// RequestID propagates the caller's X-Request-ID or mints a UUIDv7 one,
// echoes it on the response and stores it on the request context.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" || len(id) > maxRequestIDLen {
				id = newRequestID()
			}
			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
		})
	}
}

func newRequestID() string {
	u, err := uuid.NewV7()
	if err != nil {
		return uuid.Must(uuid.NewV4()).String()
	}
	return u.String()
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns "" when the request carried no id.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestIDAttr adapts the request id to a log attribute for context-aware handlers.
func RequestIDAttr(ctx context.Context) (slog.Attr, bool) {
	id := RequestIDFromContext(ctx)
	if id == "" {
		return slog.Attr{}, false
	}
	return slog.String("request_id", id), true
}
