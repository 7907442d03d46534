package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"what-to-watch/internal/domain"
	"what-to-watch/internal/store"
)

const defaultCommentLimit = 50

type CommentService struct {
	comments store.CommentStore
	limit    int
	logger   zerolog.Logger
}

func NewCommentService(comments store.CommentStore, limit int, logger zerolog.Logger) *CommentService {
	if limit <= 0 {
		limit = defaultCommentLimit
	}
	return &CommentService{
		comments: comments,
		limit:    limit,
		logger:   logger.With().Str("service", "comments").Logger(),
	}
}

func (s *CommentService) Create(ctx context.Context, filmID, userID string, req domain.CreateCommentRequest) (*domain.Comment, error) {
	comment := &domain.Comment{
		ID:     uuid.NewString(),
		FilmID: filmID,
		UserID: userID,
		Text:   req.Text,
		Rating: req.Rating,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	s.logger.Info().Str("commentID", comment.ID).Str("filmID", filmID).Msg("Comment created")
	return comment, nil
}

// FindByFilmID returns the newest comments of a film.
func (s *CommentService) FindByFilmID(ctx context.Context, filmID string) ([]*domain.Comment, error) {
	comments, err := s.comments.ListByFilmID(ctx, filmID, s.limit)
	if err != nil {
		return nil, fmt.Errorf("list comments of film %s: %w", filmID, err)
	}
	return comments, nil
}

func (s *CommentService) DeleteByFilmID(ctx context.Context, filmID string) (int64, error) {
	n, err := s.comments.DeleteByFilmID(ctx, filmID)
	if err != nil {
		return 0, fmt.Errorf("delete comments of film %s: %w", filmID, err)
	}
	s.logger.Debug().Str("filmID", filmID).Int64("deleted", n).Msg("Comments deleted")
	return n, nil
}
