package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"what-to-watch/internal/domain"
	"what-to-watch/internal/errs"
	"what-to-watch/internal/pipeline"
	"what-to-watch/internal/service"
	"what-to-watch/internal/store"
)

const favoriteOrigin = "FavoriteController"

type FavoriteController struct {
	*pipeline.Controller
	favorites *service.FavoriteService
	films     *service.FilmService
	users     *service.UserService
}

func NewFavoriteController(
	logger zerolog.Logger,
	favorites *service.FavoriteService,
	films *service.FilmService,
	users *service.UserService,
) *FavoriteController {
	c := &FavoriteController{
		Controller: pipeline.NewController("/favorites", logger),
		favorites:  favorites,
		films:      films,
		users:      users,
	}
	c.Logger().Info().Msg("Register routes for FavoriteController")

	c.AddRoute(pipeline.Route{
		Path:        "/",
		Method:      http.MethodGet,
		Handler:     c.index,
		Middlewares: []pipeline.Middleware{PrivateRoute{}},
	})
	c.AddRoute(pipeline.Route{
		Path:    "/{filmId}/{status}",
		Method:  http.MethodPost,
		Handler: c.set,
		Middlewares: []pipeline.Middleware{
			PrivateRoute{},
			ValidateObjectID{Param: "filmId"},
			DocumentExists{Checker: films, Entity: "Film", Param: "filmId"},
		},
	})
	return c
}

func (c *FavoriteController) index(w http.ResponseWriter, r *http.Request) error {
	identity, _ := IdentityFrom(r.Context())
	ids, err := c.favorites.List(r.Context(), identity.UserID)
	if err != nil {
		return errs.NewUpstreamError(favoriteOrigin, "Failed to list favorites", err)
	}
	films, err := c.films.FindByIDs(r.Context(), ids)
	if err != nil {
		return errs.NewUpstreamError(favoriteOrigin, "Failed to load favorite films", err)
	}
	views, err := buildFilmViews(r.Context(), c.users, c.favorites, films)
	if err != nil {
		return err
	}
	return c.OK(w, r, FilmShape.ApplyAll(views))
}

// set marks (status 1) or unmarks (status 0) the film as a favorite.
func (c *FavoriteController) set(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	vars := mux.Vars(r)
	filmID := vars["filmId"]
	identity, _ := IdentityFrom(ctx)

	switch vars["status"] {
	case "1":
		err := c.favorites.Add(ctx, identity.UserID, filmID)
		if err != nil {
			return errs.NewUpstreamError(favoriteOrigin, "Failed to add favorite", err)
		}
	case "0":
		err := c.favorites.Remove(ctx, identity.UserID, filmID)
		if err != nil {
			return errs.NewUpstreamError(favoriteOrigin, "Failed to remove favorite", err)
		}
	default:
		return errs.NewBadRequestError(favoriteOrigin, "Status must be 0 or 1")
	}

	film, err := c.films.FindByID(ctx, filmID)
	if err != nil {
		if errors.Is(err, store.ErrFilmNotFound) {
			return errs.NewNotFoundError(favoriteOrigin, "Film with "+filmID+" not found.")
		}
		return errs.NewUpstreamError(favoriteOrigin, "Failed to load film", err)
	}
	views, err := buildFilmViews(ctx, c.users, c.favorites, []*domain.Film{film})
	if err != nil {
		return err
	}
	return c.OK(w, r, FilmDetailShape.Apply(views[0]))
}
