// Package pipeline is the request-handling core shared by every controller:
// an explicit route table, an ordered middleware chain run before each
// handler, and a single error boundary that renders typed errors.
package pipeline

import (
	"net/http"
)

// HandlerFunc handles a request that passed its middleware chain.
// A returned error is rendered by the error boundary.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Middleware is a pre-handler check. Returning an error halts the chain
// before any later middleware or the handler runs. The returned request
// carries context values for the steps that follow.
type Middleware interface {
	Execute(r *http.Request) (*http.Request, error)
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(r *http.Request) (*http.Request, error)

func (f MiddlewareFunc) Execute(r *http.Request) (*http.Request, error) {
	return f(r)
}

// Route is one entry of a controller's route table.
type Route struct {
	Path        string
	Method      string
	Handler     HandlerFunc
	Middlewares []Middleware
}

// ServeHTTP runs the middlewares in declaration order, then the handler.
func (rt Route) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for _, m := range rt.Middlewares {
		next, err := m.Execute(r)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		if next != nil {
			r = next
		}
	}
	if err := rt.Handler(w, r); err != nil {
		WriteError(w, r, err)
	}
}

// Global adapts a Middleware to wrap every matched route of a router.
func Global(m Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			enriched, err := m.Execute(r)
			if err != nil {
				WriteError(w, r, err)
				return
			}
			if enriched != nil {
				r = enriched
			}
			next.ServeHTTP(w, r)
		})
	}
}
