package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"what-to-watch/internal/domain"
	"what-to-watch/internal/store"
	"what-to-watch/pkg/auth"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type UserService struct {
	users  store.UserStore
	hasher auth.PasswordHasher
	logger zerolog.Logger
}

func NewUserService(users store.UserStore, hasher auth.PasswordHasher, logger zerolog.Logger) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
		logger: logger.With().Str("service", "users").Logger(),
	}
}

// Register creates a user with a hashed password. A taken email yields
// store.ErrUserAlreadyExists.
func (s *UserService) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		AvatarPath:   req.AvatarPath,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}
	s.logger.Info().Str("userID", user.ID).Msg("User registered")
	return user, nil
}

// Authenticate returns the user owning email when password matches.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if !s.hasher.Check(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) FindByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return user, nil
}
