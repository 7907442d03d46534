package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"what-to-watch/internal/domain"
	"what-to-watch/internal/store"
)

const defaultFilmLimit = 60

type FilmService struct {
	films        store.FilmStore
	promoID      string
	defaultLimit int
	logger       zerolog.Logger
}

// NewFilmService uses promoID as the promo film when set; otherwise the
// newest film is promoted.
func NewFilmService(films store.FilmStore, promoID string, defaultLimit int, logger zerolog.Logger) *FilmService {
	if defaultLimit <= 0 {
		defaultLimit = defaultFilmLimit
	}
	return &FilmService{
		films:        films,
		promoID:      promoID,
		defaultLimit: defaultLimit,
		logger:       logger.With().Str("service", "films").Logger(),
	}
}

func (s *FilmService) Create(ctx context.Context, userID string, req domain.CreateFilmRequest) (*domain.Film, error) {
	film := &domain.Film{
		ID:               uuid.NewString(),
		Name:             req.Name,
		Description:      req.Description,
		Genre:            domain.Genre(req.Genre),
		Released:         req.Released,
		PreviewVideoLink: req.PreviewVideoLink,
		VideoLink:        req.VideoLink,
		Actors:           pq.StringArray(req.Actors),
		Producer:         req.Producer,
		RunTime:          req.RunTime,
		UserID:           userID,
		PosterImage:      req.PosterImage,
		BackgroundImage:  req.BackgroundImage,
		Color:            req.Color,
	}
	if err := s.films.Create(ctx, film); err != nil {
		return nil, fmt.Errorf("create film: %w", err)
	}
	s.logger.Info().Str("filmID", film.ID).Str("userID", userID).Msg("Film created")
	return film, nil
}

func (s *FilmService) FindByID(ctx context.Context, id string) (*domain.Film, error) {
	film, err := s.films.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find film %s: %w", id, err)
	}
	return film, nil
}

// Exists reports whether a film with id is stored.
func (s *FilmService) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.films.GetByID(ctx, id)
	if errors.Is(err, store.ErrFilmNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check film %s: %w", id, err)
	}
	return true, nil
}

// Find lists the newest films. A non-positive limit uses the default.
func (s *FilmService) Find(ctx context.Context, limit int) ([]*domain.Film, error) {
	return s.list(ctx, store.FilmListParams{Limit: s.limit(limit)})
}

func (s *FilmService) FindByGenre(ctx context.Context, genre domain.Genre, limit int) ([]*domain.Film, error) {
	return s.list(ctx, store.FilmListParams{Genre: genre, Limit: s.limit(limit)})
}

// FindByIDs returns the stored films among ids, newest first.
func (s *FilmService) FindByIDs(ctx context.Context, ids []string) ([]*domain.Film, error) {
	if ids == nil {
		ids = []string{}
	}
	return s.list(ctx, store.FilmListParams{IDs: ids})
}

// FindPromo returns the configured promo film, falling back to the newest
// film. It returns store.ErrFilmNotFound when the catalog is empty.
func (s *FilmService) FindPromo(ctx context.Context) (*domain.Film, error) {
	if s.promoID != "" {
		film, err := s.films.GetByID(ctx, s.promoID)
		if err == nil {
			return film, nil
		}
		if !errors.Is(err, store.ErrFilmNotFound) {
			return nil, fmt.Errorf("find promo film: %w", err)
		}
		s.logger.Warn().Str("filmID", s.promoID).Msg("Configured promo film not found, using newest film")
	}
	films, err := s.list(ctx, store.FilmListParams{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(films) == 0 {
		return nil, fmt.Errorf("find promo film: %w", store.ErrFilmNotFound)
	}
	return films[0], nil
}

// Update applies req to film and persists it.
func (s *FilmService) Update(ctx context.Context, film *domain.Film, req domain.UpdateFilmRequest) (*domain.Film, error) {
	updated := *film
	req.Apply(&updated)
	if err := s.films.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("update film %s: %w", film.ID, err)
	}
	s.logger.Info().Str("filmID", film.ID).Msg("Film updated")
	return &updated, nil
}

func (s *FilmService) Delete(ctx context.Context, id string) error {
	if err := s.films.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete film %s: %w", id, err)
	}
	s.logger.Info().Str("filmID", id).Msg("Film deleted")
	return nil
}

// IncCommentCount records one more comment with rating and recomputes the
// film's average rating.
func (s *FilmService) IncCommentCount(ctx context.Context, id string, rating int) (*domain.Film, error) {
	film, err := s.films.IncCommentCount(ctx, id, rating)
	if err != nil {
		return nil, fmt.Errorf("count comment for film %s: %w", id, err)
	}
	return film, nil
}

func (s *FilmService) limit(n int) int {
	if n <= 0 {
		return s.defaultLimit
	}
	return n
}

func (s *FilmService) list(ctx context.Context, params store.FilmListParams) ([]*domain.Film, error) {
	films, err := s.films.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}
	return films, nil
}
