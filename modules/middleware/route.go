package middleware

import "net/http"

// UnmatchedRoute labels requests no registered pattern accepts.
const UnmatchedRoute = "unmatched"

// RouteFunc resolves the route pattern a request will be (or was) served by.
type RouteFunc func(*http.Request) string

// ServeMuxRoute resolves patterns through mux. Global middlewares run
// before the mux sets r.Pattern, so the lookup is done up front.
func ServeMuxRoute(mux *http.ServeMux) RouteFunc {
	return func(r *http.Request) string {
		if r.Pattern != "" {
			return r.Pattern
		}
		if _, pattern := mux.Handler(r); pattern != "" {
			return pattern
		}
		return UnmatchedRoute
	}
}
