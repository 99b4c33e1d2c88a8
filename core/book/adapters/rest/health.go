package rest

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"books/modules/api/serde"
	"books/modules/middleware/problem"
)

// HealthChecker is implemented by the postgres pool and the redis KV.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HealthResponse struct {
	Status string `json:"status"`
}

// Health answers GET /healthz by probing every dependency.
type Health struct {
	checks  map[string]HealthChecker
	timeout time.Duration
}

func NewHealth(timeout time.Duration, checks map[string]HealthChecker) *Health {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Health{checks: checks, timeout: timeout}
}

func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	failed := map[string]string{}
	for _, name := range names {
		if err := h.checks[name].HealthCheck(ctx); err != nil {
			slog.WarnContext(ctx, "health check failed", slog.String("dependency", name), slog.Any("error", err))
			failed[name] = "unavailable"
		}
	}

	if len(failed) > 0 {
		problem.Write(w, problem.ServiceUnavailable("dependencies unavailable",
			problem.WithInstance(r.URL.Path),
			problem.WithExtension("checks", failed),
		))
		return
	}
	serde.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Document serves a static OpenAPI document.
func Document(doc []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(doc)
	}
}
