package services

import (
	"net/http"
	"strings"
	"time"

	"books/core/book/adapters/rest"
	"books/modules/middleware/problem"
	"books/modules/server"
)

var _ server.RegistrableService = (*SystemService)(nil)

// SystemService serves the health probe and the raw OpenAPI document, and
// answers every unrouted request with a problem document.
type SystemService struct {
	health *rest.Health
	doc    []byte
}

func NewSystemService(healthTimeout time.Duration, checks map[string]rest.HealthChecker, doc []byte) *SystemService {
	return &SystemService{health: rest.NewHealth(healthTimeout, checks), doc: doc}
}

func (s *SystemService) Register(mux *http.ServeMux) {
	mux.Handle("GET /healthz", s.health)
	mux.HandleFunc("GET /openapi.yaml", rest.Document(s.doc))
	mux.Handle("/", notRouted(mux))
}

var routedMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete,
}

// notRouted replaces the mux's plain text 404 and 405 replies.
func notRouted(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var allowed []string
		for _, m := range routedMethods {
			if m == r.Method {
				continue
			}
			alt := r.Clone(r.Context())
			alt.Method = m
			if _, pattern := mux.Handler(alt); pattern != "" && pattern != "/" {
				allowed = append(allowed, m)
			}
		}

		if len(allowed) > 0 {
			w.Header().Set("Allow", strings.Join(allowed, ", "))
			problem.Write(w, problem.MethodNotAllowed("method not allowed", problem.WithInstance(r.URL.Path)))
			return
		}
		problem.Write(w, problem.NotFound("resource not found", problem.WithInstance(r.URL.Path)))
	})
}

func (s *SystemService) Middlewares() []func(http.Handler) http.Handler { return nil }
