package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"what-to-watch/internal/domain"
	"what-to-watch/internal/store"
)

// FavoriteService toggles favorite markers. Add and Remove are idempotent.
type FavoriteService struct {
	favorites store.FavoriteStore
	logger    zerolog.Logger
}

func NewFavoriteService(favorites store.FavoriteStore, logger zerolog.Logger) *FavoriteService {
	return &FavoriteService{
		favorites: favorites,
		logger:    logger.With().Str("service", "favorites").Logger(),
	}
}

func (s *FavoriteService) Add(ctx context.Context, userID, filmID string) error {
	err := s.favorites.Add(ctx, &domain.Favorite{UserID: userID, FilmID: filmID})
	if err != nil && !errors.Is(err, store.ErrFavoriteAlreadyExists) {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, filmID string) error {
	err := s.favorites.Remove(ctx, userID, filmID)
	if err != nil && !errors.Is(err, store.ErrFavoriteNotFound) {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

func (s *FavoriteService) IsFavorite(ctx context.Context, userID, filmID string) (bool, error) {
	ok, err := s.favorites.Exists(ctx, userID, filmID)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return ok, nil
}

// FilmIDs returns the user's favorite film IDs as a set.
func (s *FavoriteService) FilmIDs(ctx context.Context, userID string) (map[string]bool, error) {
	ids, err := s.favorites.FilmIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// List returns the user's favorite film IDs, most recently added first.
func (s *FavoriteService) List(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.favorites.FilmIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return ids, nil
}

func (s *FavoriteService) DeleteByFilmID(ctx context.Context, filmID string) (int64, error) {
	n, err := s.favorites.DeleteByFilmID(ctx, filmID)
	if err != nil {
		return 0, fmt.Errorf("delete favorites of film %s: %w", filmID, err)
	}
	return n, nil
}
