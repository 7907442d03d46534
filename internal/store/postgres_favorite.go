package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"what-to-watch/internal/domain"
)

type PostgresFavoriteStore struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

func NewPostgresFavoriteStore(db *sqlx.DB, logger zerolog.Logger) *PostgresFavoriteStore {
	return &PostgresFavoriteStore{db: db, logger: logger}
}

func (s *PostgresFavoriteStore) Add(ctx context.Context, fav *domain.Favorite) error {
	fav.CreatedAt = time.Now().UTC()
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO favorites (user_id, film_id, created_at) VALUES (:user_id, :film_id, :created_at)`, fav)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrFavoriteAlreadyExists
		}
		s.logger.Error().Err(err).Str("filmID", fav.FilmID).Msg("Failed to add favorite")
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

func (s *PostgresFavoriteStore) Remove(ctx context.Context, userID, filmID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = $1 AND film_id = $2`, userID, filmID)
	if err != nil {
		s.logger.Error().Err(err).Str("filmID", filmID).Msg("Failed to remove favorite")
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return requireRow(res, ErrFavoriteNotFound)
}

func (s *PostgresFavoriteStore) Exists(ctx context.Context, userID, filmID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND film_id = $2)`, userID, filmID)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return exists, nil
}

func (s *PostgresFavoriteStore) FilmIDsByUser(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := s.db.SelectContext(ctx, &ids,
		`SELECT film_id FROM favorites WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("userID", userID).Msg("Failed to list favorites")
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return ids, nil
}

func (s *PostgresFavoriteStore) DeleteByFilmID(ctx context.Context, filmID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE film_id = $1`, filmID)
	if err != nil {
		s.logger.Error().Err(err).Str("filmID", filmID).Msg("Failed to delete favorites")
		return 0, fmt.Errorf("failed to delete favorites: %w", err)
	}
	return res.RowsAffected()
}
