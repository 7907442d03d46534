package pipeline

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"what-to-watch/internal/errs"
)

// Mount registers every controller under base+prefix on router. Requests that
// match no route, or match a path under a different method, get a 404 in the
// uniform error format.
func Mount(router *mux.Router, base string, controllers ...Registrar) {
	for _, c := range controllers {
		sub := router.PathPrefix(base + c.Prefix()).Subrouter()
		for _, rt := range c.Routes() {
			sub.Handle(subPath(rt.Path), rt).Methods(rt.Method)
		}
	}
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(notFound)
}

// subPath maps the controller-root path "/" to the bare prefix, so POST /films
// does not require a trailing slash.
func subPath(p string) string {
	if p == "/" {
		return ""
	}
	return p
}

func notFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, errs.NewNotFoundError("Router", "Route "+r.Method+" "+r.URL.Path+" not found"))
}

// WriteError is the error boundary. Any error becomes a JSON body of the form
// {status, message, origin}; causes are logged but never sent.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	httpErr := errs.From(err)
	logger := zerolog.Ctx(r.Context())

	var event *zerolog.Event
	switch {
	case httpErr.Status >= http.StatusInternalServerError:
		event = logger.Error().Err(err)
	case httpErr.Status == http.StatusNotFound:
		event = logger.Debug()
	default:
		event = logger.Warn().Str("reason", err.Error())
	}
	event.
		Int("status", httpErr.Status).
		Str("origin", httpErr.Origin).
		Str("path", r.URL.Path).
		Msg(httpErr.Message)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(httpErr.Status)
	if encodeErr := json.NewEncoder(w).Encode(httpErr); encodeErr != nil {
		logger.Error().Err(encodeErr).Msg("Failed to encode error response")
	}
}
