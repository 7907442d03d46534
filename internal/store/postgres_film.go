package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"what-to-watch/internal/domain"
)

const filmColumns = `id, name, description, genre, released, rating, preview_video_link, video_link,
       actors, producer, run_time, comment_count, user_id, poster_image, background_image, color,
       created_at, updated_at`

type PostgresFilmStore struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

func NewPostgresFilmStore(db *sqlx.DB, logger zerolog.Logger) *PostgresFilmStore {
	return &PostgresFilmStore{db: db, logger: logger}
}

func (s *PostgresFilmStore) Create(ctx context.Context, film *domain.Film) error {
	query := `INSERT INTO films (id, name, description, genre, released, rating, preview_video_link, video_link,
                                 actors, producer, run_time, comment_count, user_id, poster_image, background_image,
                                 color, created_at, updated_at)
              VALUES (:id, :name, :description, :genre, :released, :rating, :preview_video_link, :video_link,
                      :actors, :producer, :run_time, :comment_count, :user_id, :poster_image, :background_image,
                      :color, :created_at, :updated_at)`

	film.CreatedAt = time.Now().UTC()
	film.UpdatedAt = film.CreatedAt

	if _, err := s.db.NamedExecContext(ctx, query, film); err != nil {
		s.logger.Error().Err(err).Str("filmID", film.ID).Msg("Failed to create film")
		return fmt.Errorf("failed to create film: %w", err)
	}
	s.logger.Debug().Str("filmID", film.ID).Msg("Film created")
	return nil
}

func (s *PostgresFilmStore) GetByID(ctx context.Context, id string) (*domain.Film, error) {
	var film domain.Film
	if err := s.db.GetContext(ctx, &film, `SELECT `+filmColumns+` FROM films WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFilmNotFound
		}
		s.logger.Error().Err(err).Str("filmID", id).Msg("Failed to get film")
		return nil, fmt.Errorf("failed to get film by ID: %w", err)
	}
	return &film, nil
}

func (s *PostgresFilmStore) List(ctx context.Context, params FilmListParams) ([]*domain.Film, error) {
	if params.IDs != nil && len(params.IDs) == 0 {
		return []*domain.Film{}, nil
	}

	var conditions []string
	var args []interface{}
	if params.Genre != "" {
		args = append(args, params.Genre)
		conditions = append(conditions, fmt.Sprintf("genre = $%d", len(args)))
	}
	if params.IDs != nil {
		args = append(args, pq.Array(params.IDs))
		conditions = append(conditions, fmt.Sprintf("id = ANY($%d)", len(args)))
	}

	query := `SELECT ` + filmColumns + ` FROM films`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if params.Limit > 0 {
		args = append(args, params.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	films := []*domain.Film{}
	if err := s.db.SelectContext(ctx, &films, query, args...); err != nil {
		s.logger.Error().Err(err).Interface("params", params).Msg("Failed to list films")
		return nil, fmt.Errorf("failed to list films: %w", err)
	}
	return films, nil
}

func (s *PostgresFilmStore) Update(ctx context.Context, film *domain.Film) error {
	query := `UPDATE films SET name = :name, description = :description, genre = :genre, released = :released,
                  preview_video_link = :preview_video_link, video_link = :video_link, actors = :actors,
                  producer = :producer, run_time = :run_time, poster_image = :poster_image,
                  background_image = :background_image, color = :color, updated_at = :updated_at
              WHERE id = :id`

	film.UpdatedAt = time.Now().UTC()
	res, err := s.db.NamedExecContext(ctx, query, film)
	if err != nil {
		s.logger.Error().Err(err).Str("filmID", film.ID).Msg("Failed to update film")
		return fmt.Errorf("failed to update film: %w", err)
	}
	return requireRow(res, ErrFilmNotFound)
}

func (s *PostgresFilmStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM films WHERE id = $1`, id)
	if err != nil {
		s.logger.Error().Err(err).Str("filmID", id).Msg("Failed to delete film")
		return fmt.Errorf("failed to delete film: %w", err)
	}
	return requireRow(res, ErrFilmNotFound)
}

func (s *PostgresFilmStore) IncCommentCount(ctx context.Context, id string, rating int) (*domain.Film, error) {
	query := `UPDATE films
              SET rating = ROUND(((rating * comment_count + $2) / (comment_count + 1))::numeric, 1),
                  comment_count = comment_count + 1,
                  updated_at = $3
              WHERE id = $1
              RETURNING ` + filmColumns

	var film domain.Film
	if err := s.db.GetContext(ctx, &film, query, id, rating, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFilmNotFound
		}
		s.logger.Error().Err(err).Str("filmID", id).Msg("Failed to increment comment count")
		return nil, fmt.Errorf("failed to increment comment count: %w", err)
	}
	return &film, nil
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
