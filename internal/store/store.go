// Package store is the persistence layer: one interface per entity, an
// in-memory implementation and a PostgreSQL implementation.
package store

import (
	"context"
	"errors"
	"math"

	"what-to-watch/internal/domain"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserAlreadyExists     = errors.New("user with this email already exists")
	ErrFilmNotFound          = errors.New("film not found")
	ErrFavoriteNotFound      = errors.New("favorite not found")
	ErrFavoriteAlreadyExists = errors.New("film is already a favorite")
)

// FilmListParams filters List. Zero values mean "no filter"; Limit 0 means no limit.
type FilmListParams struct {
	Genre domain.Genre
	IDs   []string
	Limit int
}

type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// FilmStore lists films newest first.
type FilmStore interface {
	Create(ctx context.Context, film *domain.Film) error
	GetByID(ctx context.Context, id string) (*domain.Film, error)
	List(ctx context.Context, params FilmListParams) ([]*domain.Film, error)
	Update(ctx context.Context, film *domain.Film) error
	Delete(ctx context.Context, id string) error
	// IncCommentCount adds one comment with the given rating to the film's
	// counters and returns the updated film.
	IncCommentCount(ctx context.Context, id string, rating int) (*domain.Film, error)
}

// CommentStore lists comments newest first.
type CommentStore interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByFilmID(ctx context.Context, filmID string, limit int) ([]*domain.Comment, error)
	DeleteByFilmID(ctx context.Context, filmID string) (int64, error)
}

type FavoriteStore interface {
	Add(ctx context.Context, fav *domain.Favorite) error
	Remove(ctx context.Context, userID, filmID string) error
	Exists(ctx context.Context, userID, filmID string) (bool, error)
	FilmIDsByUser(ctx context.Context, userID string) ([]string, error)
	DeleteByFilmID(ctx context.Context, filmID string) (int64, error)
}

// Stores bundles the four stores behind one connection lifecycle.
type Stores struct {
	Users     UserStore
	Films     FilmStore
	Comments  CommentStore
	Favorites FavoriteStore

	ping  func(ctx context.Context) error
	close func() error
}

// Ping checks the underlying connection.
func (s *Stores) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the underlying connection.
func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// roundRating keeps one decimal place, matching the SQL ROUND(..., 1).
func roundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

// nextRating folds one more rating into an average over count ratings.
func nextRating(current float64, count, rating int) float64 {
	return roundRating((current*float64(count) + float64(rating)) / float64(count+1))
}
