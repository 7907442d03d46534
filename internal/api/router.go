// Package api exposes the catalog over HTTP: controllers with their route
// tables, the middlewares they compose, and the response shapes.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"what-to-watch/internal/pipeline"
	"what-to-watch/internal/service"
	"what-to-watch/internal/validation"
	"what-to-watch/pkg/auth"
)

// BasePath prefixes every API route.
const BasePath = "/api"

// RouterConfig carries what NewRouter needs beyond the services.
type RouterConfig struct {
	Logger         zerolog.Logger
	Tokens         auth.TokenManager
	Revoker        auth.Revoker
	Validator      *validation.Validator
	AllowedOrigins []string
}

// NewRouter builds every controller and wraps the router in the
// request-scoped middlewares.
func NewRouter(cfg RouterConfig, services *service.Services) http.Handler {
	logger := cfg.Logger.With().Str("component", "api").Logger()

	router := mux.NewRouter()
	router.Use(pipeline.Global(NewAuthenticate(cfg.Tokens, cfg.Revoker)))

	pipeline.Mount(router, BasePath,
		NewUserController(logger, cfg.Validator, services.Users, cfg.Tokens, cfg.Revoker),
		NewFilmController(logger, cfg.Validator, services.Films, services.Users, services.Comments, services.Favorites),
		NewCommentController(logger, cfg.Validator, services.Comments, services.Films, services.Users),
		NewFavoriteController(logger, services.Favorites, services.Films, services.Users),
	)

	var handler http.Handler = router
	handler = CORSMiddleware(cfg.AllowedOrigins)(handler)
	handler = RecoverMiddleware(handler)
	handler = LoggingMiddleware(cfg.Logger)(handler)
	handler = RequestIDMiddleware(handler)
	return handler
}
