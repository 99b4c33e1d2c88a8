// Package ratelimit throttles HTTP requests per route pattern and method
// with limiters from books/modules/ratelimit.
package ratelimit

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"books/modules/middleware"
	"books/modules/middleware/problem"
	rl "books/modules/ratelimit"
)

type (
	// Pattern is the path part of a registered route, e.g. /api/v1/book/{key}.
	Pattern string
	method  string

	// KeyFunc derives the throttled subject from a request. An empty key
	// means the request carries no usable identifier.
	KeyFunc func(*http.Request) rl.Key

	RouteInfoFunc func(*http.Request) RouteInfo

	// RouteInfo is what the middleware knows about the matched route. An
	// empty ID means no route matched.
	RouteInfo struct {
		ID     Pattern
		Method string
		Path   string
	}

	Policy struct {
		Limiter rl.RateLimiter
		KeyFn   KeyFunc
	}

	// RuntimePolicy is the compiled form of RestHTTPConfig.
	RuntimePolicy struct {
		routes map[Pattern]map[method]Policy

		// fallbacks, most specific first
		methodDefaults map[method]Policy
		catchAll       *Policy

		AllowIfNoMatch      bool
		AllowIfNoIdentifier bool

		RouteInfoFn RouteInfoFunc
	}
)

func normalizeMethod(m string) method {
	return method(strings.ToUpper(m))
}

// lookup returns the policy for a route and whether it came from an
// explicit route rule.
func (p *RuntimePolicy) lookup(ri RouteInfo) (Policy, bool, bool) {
	m := normalizeMethod(ri.Method)
	if px, ok := p.routes[ri.ID][m]; ok {
		return px, true, true
	}
	if px, ok := p.methodDefaults[m]; ok && m != "" {
		return px, true, false
	}
	if p.catchAll != nil {
		return *p.catchAll, true, false
	}
	return Policy{}, false, false
}

// ParsePolicy compiles cfg. Route patterns must match the patterns the mux
// was registered with, minus the method.
func ParsePolicy(
	factory rl.LimiterFactory,
	cfg *RestHTTPConfig,
	routeFn RouteInfoFunc,
	keyStrategies map[KeyStrategyId]KeyFunc,
) (*RuntimePolicy, error) {
	compile := func(rule EndpointRule) (Policy, error) {
		keyFn, ok := keyStrategies[rule.KeyStrategy]
		if !ok {
			return Policy{}, fmt.Errorf("ratelimit parse policy: no such key strategy %q", rule.KeyStrategy)
		}
		return Policy{Limiter: factory(rule.Limit, rule.Window), KeyFn: keyFn}, nil
	}

	rtp := &RuntimePolicy{
		routes:              map[Pattern]map[method]Policy{},
		AllowIfNoMatch:      cfg.AllowIfNoMatch,
		AllowIfNoIdentifier: cfg.AllowIfNoIdentifier,
		RouteInfoFn:         routeFn,
	}

	// the default only counts as configured when it can actually limit
	if def := cfg.DefaultPolicy; def.Window > 0 && def.KeyStrategy != "" {
		px, err := compile(def)
		if err != nil {
			return nil, fmt.Errorf("default: %w", err)
		}
		if def.Method == "" {
			rtp.catchAll = &px
		} else {
			rtp.methodDefaults = map[method]Policy{normalizeMethod(def.Method): px}
		}
	}

	for _, route := range cfg.Routes {
		if route.Pattern == "" {
			return nil, errors.New("ratelimit parse policy: empty route pattern")
		}
		byMethod := rtp.routes[Pattern(route.Pattern)]
		if byMethod == nil {
			byMethod = map[method]Policy{}
			rtp.routes[Pattern(route.Pattern)] = byMethod
		}
		for _, rule := range route.EndpointRules {
			m := normalizeMethod(rule.Method)
			if _, dup := byMethod[m]; dup {
				return nil, fmt.Errorf("ratelimit parse policy: duplicate method %s on %s", m, route.Pattern)
			}
			if rule.Window <= 0 || rule.Limit < 0 {
				return nil, fmt.Errorf("ratelimit parse policy: invalid rule for %s %s", m, route.Pattern)
			}
			px, err := compile(rule)
			if err != nil {
				return nil, err
			}
			byMethod[m] = px
		}
	}
	return rtp, nil
}

func tooMany(w http.ResponseWriter) {
	problem.Write(w, problem.TooManyRequests(http.StatusText(http.StatusTooManyRequests)))
}

func NewRateLimitMiddleware(p *RuntimePolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ri := p.RouteInfoFn(r)
			log := slog.With(
				slog.String("middleware", "rate_limiter"),
				slog.String("url", r.URL.Path),
				slog.Any("route_info", ri),
			)

			if ri.Method == "" {
				log.ErrorContext(ctx, "no method found")
				problem.Write(w, problem.MethodNotAllowed("method not allowed"))
				return
			}

			px, found, explicit := p.lookup(ri)
			switch {
			case !found && p.AllowIfNoMatch:
				next.ServeHTTP(w, r)
				return
			case !found && ri.ID == "":
				problem.Write(w, problem.MethodNotAllowed("not allowed"))
				return
			case !found:
				log.WarnContext(ctx, "no rate limit policy found")
				tooMany(w)
				return
			case !explicit:
				log.DebugContext(ctx, "using default rate limit policy")
			}

			var key rl.Key
			if px.KeyFn != nil {
				key = px.KeyFn(r)
			}
			if key == "" {
				if p.AllowIfNoIdentifier {
					next.ServeHTTP(w, r)
					return
				}
				log.WarnContext(ctx, "request carries no rate limit key")
				tooMany(w)
				return
			}

			result, err := px.Limiter.Allow(ctx, key)
			if err != nil {
				// counter store unreachable
				log.ErrorContext(ctx, "rate limit error", slog.Any("error", err))
				problem.Write(w, problem.Internal(http.StatusText(http.StatusInternalServerError)))
				return
			}

			// handlers may reset headers, so they are applied when the response is committed
			w = &headerWriter{ResponseWriter: w, result: result}

			if !result.Allowed {
				log.DebugContext(ctx, "rate limited", slog.String("key", string(key)))
				w.Header().Set("Retry-After", strconv.FormatInt(ceilSeconds(result.RetryAfter.Seconds()), 10))
				problem.Write(w, problem.TooManyRequests("rate limit exceeded", problem.WithInstance(r.URL.Path)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type headerWriter struct {
	http.ResponseWriter
	result  rl.Result
	applied bool
}

func (w *headerWriter) apply() {
	if w.applied {
		return
	}
	w.applied = true
	h := w.ResponseWriter.Header()
	h.Set("X-RateLimit-Limit", strconv.FormatInt(w.result.Limit, 10))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(w.result.Remaining, 10))
	h.Set("X-RateLimit-Window-Seconds", strconv.FormatInt(int64(w.result.Window.Seconds()), 10))
	h.Set("X-RateLimit-Reset-Seconds", strconv.FormatInt(ceilSeconds(w.result.WindowResetIn.Seconds()), 10))
}

func (w *headerWriter) WriteHeader(code int) {
	w.apply()
	w.ResponseWriter.WriteHeader(code)
}

func (w *headerWriter) Write(b []byte) (int, error) {
	w.apply()
	return w.ResponseWriter.Write(b)
}

func (w *headerWriter) Flush() {
	w.apply()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *headerWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func ceilSeconds(s float64) int64 {
	return int64(math.Ceil(s))
}

// RemoteIpKeyFunc keys on the last X-Forwarded-For hop, the one appended by
// the nearest proxy, and falls back to the connection's remote host.
func RemoteIpKeyFunc(r *http.Request) rl.Key {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.LastIndexByte(xff, ','); i >= 0 {
			xff = xff[i+1:]
		}
		if hop := strings.TrimSpace(xff); hop != "" {
			return rl.Key(hop)
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return rl.Key(host)
	}
	return rl.Key(r.RemoteAddr)
}

// RouteRemoteIpKeyFunc keys on method, route pattern and remote ip.
func RouteRemoteIpKeyFunc(routeFn RouteInfoFunc) KeyFunc {
	return func(r *http.Request) rl.Key {
		ip := RemoteIpKeyFunc(r)
		if ip == "" {
			return ""
		}
		ri := routeFn(r)
		return rl.Key(fmt.Sprintf("%s %s|%s", ri.Method, ri.ID, ip))
	}
}

// DefaultKeyStrategies returns every built-in strategy keyed by its id.
func DefaultKeyStrategies(routeFn RouteInfoFunc) map[KeyStrategyId]KeyFunc {
	return map[KeyStrategyId]KeyFunc{
		RemoteIpKeyStrategy:      RemoteIpKeyFunc,
		RouteRemoteIpKeyStrategy: RouteRemoteIpKeyFunc(routeFn),
	}
}

// MuxRouteInfo adapts a ServeMux pattern resolver. The method part of a
// "GET /path" pattern is dropped so configured patterns are plain paths.
func MuxRouteInfo(route middleware.RouteFunc) RouteInfoFunc {
	return func(r *http.Request) RouteInfo {
		pattern := route(r)
		if pattern == middleware.UnmatchedRoute {
			pattern = ""
		}
		if _, path, ok := strings.Cut(pattern, " "); ok {
			pattern = path
		}
		return RouteInfo{
			ID:     Pattern(pattern),
			Method: r.Method,
			Path:   r.URL.Path,
		}
	}
}
