package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"what-to-watch/internal/domain"
)

type PostgresCommentStore struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

func NewPostgresCommentStore(db *sqlx.DB, logger zerolog.Logger) *PostgresCommentStore {
	return &PostgresCommentStore{db: db, logger: logger}
}

func (s *PostgresCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	query := `INSERT INTO comments (id, film_id, user_id, text, rating, created_at)
              VALUES (:id, :film_id, :user_id, :text, :rating, :created_at)`

	comment.CreatedAt = time.Now().UTC()
	if _, err := s.db.NamedExecContext(ctx, query, comment); err != nil {
		s.logger.Error().Err(err).Str("filmID", comment.FilmID).Msg("Failed to create comment")
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (s *PostgresCommentStore) ListByFilmID(ctx context.Context, filmID string, limit int) ([]*domain.Comment, error) {
	query := `SELECT id, film_id, user_id, text, rating, created_at
              FROM comments WHERE film_id = $1
              ORDER BY created_at DESC`
	args := []interface{}{filmID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	comments := []*domain.Comment{}
	if err := s.db.SelectContext(ctx, &comments, query, args...); err != nil {
		s.logger.Error().Err(err).Str("filmID", filmID).Msg("Failed to list comments")
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

func (s *PostgresCommentStore) DeleteByFilmID(ctx context.Context, filmID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE film_id = $1`, filmID)
	if err != nil {
		s.logger.Error().Err(err).Str("filmID", filmID).Msg("Failed to delete comments")
		return 0, fmt.Errorf("failed to delete comments: %w", err)
	}
	return res.RowsAffected()
}
