package pipeline

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// Registrar is anything that exposes a prefixed route table.
type Registrar interface {
	Prefix() string
	Routes() []Route
}

// Controller holds the route table for one path prefix and the helpers
// handlers use to write responses.
type Controller struct {
	prefix string
	routes []Route
	seen   map[string]struct{}
	logger zerolog.Logger
}

func NewController(prefix string, logger zerolog.Logger) *Controller {
	return &Controller{
		prefix: prefix,
		seen:   make(map[string]struct{}),
		logger: logger,
	}
}

// AddRoute appends a route. A duplicate method+path is a wiring bug and panics.
func (c *Controller) AddRoute(route Route) {
	key := route.Method + " " + route.Path
	if _, dup := c.seen[key]; dup {
		panic(fmt.Sprintf("pipeline: duplicate route %s under %q", key, c.prefix))
	}
	if route.Handler == nil {
		panic(fmt.Sprintf("pipeline: nil handler for %s under %q", key, c.prefix))
	}
	c.seen[key] = struct{}{}
	c.routes = append(c.routes, route)
	c.logger.Debug().Str("method", route.Method).Str("path", c.prefix+route.Path).Msg("Route registered")
}

func (c *Controller) Prefix() string { return c.prefix }

// Routes returns a copy of the route table in registration order.
func (c *Controller) Routes() []Route {
	return append([]Route(nil), c.routes...)
}

// Logger returns the controller's logger.
func (c *Controller) Logger() *zerolog.Logger {
	return &c.logger
}

// Send writes body as JSON. Only json.Marshaler values are accepted, which
// in practice means shaped objects and lists.
func (c *Controller) Send(w http.ResponseWriter, r *http.Request, status int, body json.Marshaler) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return nil
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Failed to encode JSON response")
	}
	return nil
}

func (c *Controller) OK(w http.ResponseWriter, r *http.Request, body json.Marshaler) error {
	return c.Send(w, r, http.StatusOK, body)
}

func (c *Controller) Created(w http.ResponseWriter, r *http.Request, body json.Marshaler) error {
	return c.Send(w, r, http.StatusCreated, body)
}

func (c *Controller) NoContent(w http.ResponseWriter) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}
