package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	id, err := uuid.FromString(rec.Header().Get(RequestIDHeader))
	require.NoError(t, err)
	assert.Equal(t, id.String(), seen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "caller-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "caller-id", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "caller-id", seen)
}

func TestRecovery_WritesProblem(t *testing.T) {
	h := Recovery(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/books", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"type":"about:blank","title":"Internal Server Error","status":500,"detail":"internal server error","instance":"/api/v1/books"}`, rec.Body.String())
}

func TestRecovery_RepanicsAbortHandler(t *testing.T) {
	h := Recovery(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestServeMuxRoute(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/book/{key}", func(http.ResponseWriter, *http.Request) {})
	route := ServeMuxRoute(mux)

	assert.Equal(t, "GET /api/v1/book/{key}", route(httptest.NewRequest(http.MethodGet, "/api/v1/book/fiction", nil)))
	assert.Equal(t, UnmatchedRoute, route(httptest.NewRequest(http.MethodGet, "/nope", nil)))
}

func TestAccessLog_RecordsStatusAndRoute(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/book", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte("{}"))
	})
	h := AccessLog(logger, ServeMuxRoute(mux))(mux)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/book", nil))

	out := buf.String()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"route":"POST /api/v1/book"`)
	assert.Contains(t, out, `"status":409`)
	assert.Contains(t, out, `"bytes":2`)
}

func TestTelemetry_PassesThroughWithoutMetrics(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := Telemetry(nil, ServeMuxRoute(mux))(mux)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestResponseRecorder_ReusesOuterRecorder(t *testing.T) {
	outer := newResponseRecorder(httptest.NewRecorder())
	inner := newResponseRecorder(outer)
	inner.WriteHeader(http.StatusAccepted)
	assert.Same(t, outer, inner)
	assert.Equal(t, http.StatusAccepted, outer.statusCode)
}
