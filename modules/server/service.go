package server

import "net/http"

// RegistrableService mounts its routes on the server mux and may contribute
// middlewares, which are appended to the global chain.
type RegistrableService interface {
	Register(mux *http.ServeMux)
	Middlewares() []func(http.Handler) http.Handler
}
