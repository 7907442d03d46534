package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"what-to-watch/internal/domain"
	"what-to-watch/internal/errs"
	"what-to-watch/internal/pipeline"
	"what-to-watch/internal/service"
	"what-to-watch/internal/store"
	"what-to-watch/internal/validation"
)

const commentOrigin = "CommentController"

type CommentController struct {
	*pipeline.Controller
	comments *service.CommentService
	films    *service.FilmService
	users    *service.UserService
}

func NewCommentController(
	logger zerolog.Logger,
	v *validation.Validator,
	comments *service.CommentService,
	films *service.FilmService,
	users *service.UserService,
) *CommentController {
	c := &CommentController{
		Controller: pipeline.NewController("/comments", logger),
		comments:   comments,
		films:      films,
		users:      users,
	}
	c.Logger().Info().Msg("Register routes for CommentController")

	c.AddRoute(pipeline.Route{
		Path:    "/{filmId}",
		Method:  http.MethodGet,
		Handler: c.index,
		Middlewares: []pipeline.Middleware{
			ValidateObjectID{Param: "filmId"},
			DocumentExists{Checker: films, Entity: "Film", Param: "filmId"},
		},
	})
	c.AddRoute(pipeline.Route{
		Path:    "/{filmId}",
		Method:  http.MethodPost,
		Handler: c.create,
		Middlewares: []pipeline.Middleware{
			PrivateRoute{},
			ValidateObjectID{Param: "filmId"},
			NewValidateDTO[domain.CreateCommentRequest](v),
		},
	})
	return c
}

func (c *CommentController) index(w http.ResponseWriter, r *http.Request) error {
	comments, err := c.comments.FindByFilmID(r.Context(), mux.Vars(r)["filmId"])
	if err != nil {
		return errs.NewUpstreamError(commentOrigin, "Failed to list comments", err)
	}
	if len(comments) == 0 {
		return c.NoContent(w)
	}

	authors := make(map[string]*domain.User)
	views := make([]commentView, len(comments))
	for i, comment := range comments {
		author, seen := authors[comment.UserID]
		if !seen {
			author, err = c.author(r, comment.UserID)
			if err != nil {
				return err
			}
			authors[comment.UserID] = author
		}
		views[i] = commentView{Comment: comment, Author: author}
	}
	return c.OK(w, r, CommentShape.ApplyAll(views))
}

func (c *CommentController) create(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	filmID := mux.Vars(r)["filmId"]
	exists, err := c.films.Exists(ctx, filmID)
	if err != nil {
		return errs.NewUpstreamError(commentOrigin, "Failed to look up film", err)
	}
	if !exists {
		return errs.NewUnprocessableError(commentOrigin, fmt.Sprintf("Film with id «%s» not exists.", filmID))
	}

	identity, _ := IdentityFrom(ctx)
	req := DTO[domain.CreateCommentRequest](r)
	comment, err := c.comments.Create(ctx, filmID, identity.UserID, req)
	if err != nil {
		return errs.NewUpstreamError(commentOrigin, "Failed to create comment", err)
	}
	if _, err := c.films.IncCommentCount(ctx, filmID, req.Rating); err != nil {
		return errs.NewUpstreamError(commentOrigin, "Failed to update film rating", err)
	}

	author, err := c.author(r, identity.UserID)
	if err != nil {
		return err
	}
	return c.Created(w, r, CommentShape.Apply(commentView{Comment: comment, Author: author}))
}

func (c *CommentController) author(r *http.Request, userID string) (*domain.User, error) {
	user, err := c.users.FindByID(r.Context(), userID)
	if err != nil && !errors.Is(err, store.ErrUserNotFound) {
		return nil, errs.NewUpstreamError(commentOrigin, "Failed to load comment author", err)
	}
	return user, nil
}
