// Package service holds the domain operations the controllers delegate to.
// Services take their collaborators through constructors and never touch
// HTTP concerns.
package service

import (
	"github.com/rs/zerolog"

	"what-to-watch/internal/store"
	"what-to-watch/pkg/auth"
)

// Services bundles every domain service.
type Services struct {
	Users     *UserService
	Films     *FilmService
	Comments  *CommentService
	Favorites *FavoriteService
}

// Options carries the tunables the services read from configuration.
type Options struct {
	PromoFilmID      string
	DefaultFilmLimit int
	CommentLimit     int
}

func New(stores *store.Stores, hasher auth.PasswordHasher, opts Options, logger zerolog.Logger) *Services {
	return &Services{
		Users:     NewUserService(stores.Users, hasher, logger),
		Films:     NewFilmService(stores.Films, opts.PromoFilmID, opts.DefaultFilmLimit, logger),
		Comments:  NewCommentService(stores.Comments, opts.CommentLimit, logger),
		Favorites: NewFavoriteService(stores.Favorites, logger),
	}
}
