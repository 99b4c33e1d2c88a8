package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"books/modules/clock"
	"books/modules/middleware"
	rl "books/modules/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedMux(t *testing.T, cfg RestHTTPConfig) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/book", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /api/v1/book/{key}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	clk := clock.NewManualClock(time.Unix(10_020, 0))
	routeFn := MuxRouteInfo(middleware.ServeMuxRoute(mux))
	rtp, err := ParsePolicy(
		rl.SlidingWindowFactory(clk, rl.NewMemoryCounterStore(clk), cfg.KeyPrefix),
		&cfg,
		routeFn,
		DefaultKeyStrategies(routeFn),
	)
	require.NoError(t, err)
	return NewRateLimitMiddleware(rtp)(mux)
}

func testConfig() RestHTTPConfig {
	return RestHTTPConfig{
		KeyPrefix: "test",
		Routes: []Route{{
			Pattern: "/api/v1/book",
			EndpointRules: []EndpointRule{{
				Method: "post", Limit: 1, Window: time.Minute, KeyStrategy: RouteRemoteIpKeyStrategy,
			}},
		}},
		DefaultPolicy: EndpointRule{Limit: 100, Window: time.Minute, KeyStrategy: RemoteIpKeyStrategy},
	}
}

func do(h http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "10.0.0.1:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_ExplicitRoutePolicy(t *testing.T) {
	h := newLimitedMux(t, testConfig())

	first := do(h, http.MethodPost, "/api/v1/book")
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", first.Header().Get("X-RateLimit-Window-Seconds"))

	second := do(h, http.MethodPost, "/api/v1/book")
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "application/problem+json", second.Header().Get("Content-Type"))
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
}

func TestRateLimit_DefaultPolicyForOtherRoutes(t *testing.T) {
	h := newLimitedMux(t, testConfig())

	rec := do(h, http.MethodGet, "/api/v1/book/fiction")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "100", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "99", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestParsePolicy_Errors(t *testing.T) {
	routeFn := func(*http.Request) RouteInfo { return RouteInfo{} }
	factory := rl.SlidingWindowFactory(nil, nil, "")

	dup := testConfig()
	dup.Routes[0].EndpointRules = append(dup.Routes[0].EndpointRules, dup.Routes[0].EndpointRules[0])
	_, err := ParsePolicy(factory, &dup, routeFn, DefaultKeyStrategies(routeFn))
	assert.ErrorContains(t, err, "duplicate method")

	unknown := testConfig()
	unknown.Routes[0].EndpointRules[0].KeyStrategy = "api_key"
	_, err = ParsePolicy(factory, &unknown, routeFn, DefaultKeyStrategies(routeFn))
	assert.ErrorContains(t, err, "no such key strategy")
}

func TestRemoteIpKeyFunc(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:1234"
	assert.Equal(t, rl.Key("192.0.2.10"), RemoteIpKeyFunc(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 198.51.100.7")
	assert.Equal(t, rl.Key("198.51.100.7"), RemoteIpKeyFunc(req))
}

func TestRateLimit_NoPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultPolicy = EndpointRule{}

	cfg.AllowIfNoMatch = true
	rec := do(newLimitedMux(t, cfg), http.MethodGet, "/api/v1/book/fiction")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))

	cfg.AllowIfNoMatch = false
	rec = do(newLimitedMux(t, cfg), http.MethodGet, "/api/v1/book/fiction")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
