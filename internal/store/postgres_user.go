package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"what-to-watch/internal/domain"
)

const uniqueViolation = "23505"

type PostgresUserStore struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

func NewPostgresUserStore(db *sqlx.DB, logger zerolog.Logger) *PostgresUserStore {
	return &PostgresUserStore{db: db, logger: logger}
}

func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, name, email, avatar_path, password_hash, created_at, updated_at)
              VALUES (:id, :name, :email, :avatar_path, :password_hash, :created_at, :updated_at)`

	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	if _, err := s.db.NamedExecContext(ctx, query, user); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrUserAlreadyExists
		}
		s.logger.Error().Err(err).Str("userID", user.ID).Msg("Failed to create user")
		return fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Debug().Str("userID", user.ID).Msg("User created")
	return nil
}

func (s *PostgresUserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.getOne(ctx, `SELECT id, name, email, avatar_path, password_hash, created_at, updated_at FROM users WHERE id = $1`, id)
}

func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, `SELECT id, name, email, avatar_path, password_hash, created_at, updated_at FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

func (s *PostgresUserStore) getOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	var user domain.User
	if err := s.db.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		s.logger.Error().Err(err).Msg("Failed to get user")
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
