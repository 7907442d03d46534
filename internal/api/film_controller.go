package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"what-to-watch/internal/domain"
	"what-to-watch/internal/errs"
	"what-to-watch/internal/pipeline"
	"what-to-watch/internal/service"
	"what-to-watch/internal/store"
	"what-to-watch/internal/validation"
)

const filmOrigin = "FilmController"

type FilmController struct {
	*pipeline.Controller
	films     *service.FilmService
	users     *service.UserService
	comments  *service.CommentService
	favorites *service.FavoriteService
}

func NewFilmController(
	logger zerolog.Logger,
	v *validation.Validator,
	films *service.FilmService,
	users *service.UserService,
	comments *service.CommentService,
	favorites *service.FavoriteService,
) *FilmController {
	c := &FilmController{
		Controller: pipeline.NewController("/films", logger),
		films:      films,
		users:      users,
		comments:   comments,
		favorites:  favorites,
	}
	c.Logger().Info().Msg("Register routes for FilmController")

	filmExists := DocumentExists{Checker: films, Entity: "Film", Param: "id"}

	c.AddRoute(pipeline.Route{Path: "/", Method: http.MethodGet, Handler: c.index})
	c.AddRoute(pipeline.Route{
		Path:    "/",
		Method:  http.MethodPost,
		Handler: c.create,
		Middlewares: []pipeline.Middleware{
			PrivateRoute{},
			NewValidateDTO[domain.CreateFilmRequest](v),
		},
	})
	c.AddRoute(pipeline.Route{Path: "/promo", Method: http.MethodGet, Handler: c.promo})
	c.AddRoute(pipeline.Route{Path: "/genre/{genre}", Method: http.MethodGet, Handler: c.findByGenre})
	c.AddRoute(pipeline.Route{
		Path:    "/{id}",
		Method:  http.MethodGet,
		Handler: c.show,
		Middlewares: []pipeline.Middleware{
			ValidateObjectID{Param: "id"},
			filmExists,
		},
	})
	c.AddRoute(pipeline.Route{
		Path:    "/{id}",
		Method:  http.MethodPatch,
		Handler: c.update,
		Middlewares: []pipeline.Middleware{
			PrivateRoute{},
			ValidateObjectID{Param: "id"},
			NewValidateDTO[domain.UpdateFilmRequest](v),
			filmExists,
		},
	})
	c.AddRoute(pipeline.Route{
		Path:    "/{id}",
		Method:  http.MethodDelete,
		Handler: c.delete,
		Middlewares: []pipeline.Middleware{
			PrivateRoute{},
			ValidateObjectID{Param: "id"},
			filmExists,
		},
	})
	return c
}

func (c *FilmController) index(w http.ResponseWriter, r *http.Request) error {
	limit, err := limitParam(r)
	if err != nil {
		return err
	}
	films, err := c.films.Find(r.Context(), limit)
	if err != nil {
		return errs.NewUpstreamError(filmOrigin, "Failed to list films", err)
	}
	views, err := c.views(r.Context(), films)
	if err != nil {
		return err
	}
	return c.OK(w, r, FilmShape.ApplyAll(views))
}

func (c *FilmController) create(w http.ResponseWriter, r *http.Request) error {
	identity, _ := IdentityFrom(r.Context())
	film, err := c.films.Create(r.Context(), identity.UserID, DTO[domain.CreateFilmRequest](r))
	if err != nil {
		return errs.NewUpstreamError(filmOrigin, "Failed to create film", err)
	}
	view, err := c.view(r.Context(), film)
	if err != nil {
		return err
	}
	return c.Created(w, r, FilmDetailShape.Apply(view))
}

func (c *FilmController) promo(w http.ResponseWriter, r *http.Request) error {
	film, err := c.films.FindPromo(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrFilmNotFound) {
			return errs.NewNotFoundError(filmOrigin, "Promo film not found.")
		}
		return errs.NewUpstreamError(filmOrigin, "Failed to load promo film", err)
	}
	view, err := c.view(r.Context(), film)
	if err != nil {
		return err
	}
	return c.OK(w, r, FilmDetailShape.Apply(view))
}

func (c *FilmController) findByGenre(w http.ResponseWriter, r *http.Request) error {
	raw := mux.Vars(r)["genre"]
	genre, ok := domain.ParseGenre(raw)
	if !ok {
		names := make([]string, len(domain.Genres))
		for i, g := range domain.Genres {
			names[i] = string(g)
		}
		return errs.NewBadRequestError(filmOrigin,
			fmt.Sprintf("Genre %s is not supported, use one of: %s", raw, strings.Join(names, ", ")))
	}
	limit, err := limitParam(r)
	if err != nil {
		return err
	}

	films, err := c.films.FindByGenre(r.Context(), genre, limit)
	if err != nil {
		return errs.NewUpstreamError(filmOrigin, "Failed to list films", err)
	}
	views, err := c.views(r.Context(), films)
	if err != nil {
		return err
	}
	return c.OK(w, r, FilmShape.ApplyAll(views))
}

func (c *FilmController) show(w http.ResponseWriter, r *http.Request) error {
	film, err := c.load(r)
	if err != nil {
		return err
	}
	view, err := c.view(r.Context(), film)
	if err != nil {
		return err
	}
	return c.OK(w, r, FilmDetailShape.Apply(view))
}

func (c *FilmController) update(w http.ResponseWriter, r *http.Request) error {
	film, err := c.load(r)
	if err != nil {
		return err
	}
	identity, _ := IdentityFrom(r.Context())
	if film.UserID != identity.UserID {
		return errs.NewConflictError(filmOrigin, "Only the author can update a film")
	}

	updated, err := c.films.Update(r.Context(), film, DTO[domain.UpdateFilmRequest](r))
	if err != nil {
		return errs.NewUpstreamError(filmOrigin, "Failed to update film", err)
	}
	view, err := c.view(r.Context(), updated)
	if err != nil {
		return err
	}
	return c.OK(w, r, FilmDetailShape.Apply(view))
}

// delete removes the film's comments and favorite markers, then the film.
// The steps are not atomic.
func (c *FilmController) delete(w http.ResponseWriter, r *http.Request) error {
	film, err := c.load(r)
	if err != nil {
		return err
	}
	identity, _ := IdentityFrom(r.Context())
	if film.UserID != identity.UserID {
		return errs.NewConflictError(filmOrigin, "Only the author can delete a film")
	}

	ctx := r.Context()
	if _, err := c.comments.DeleteByFilmID(ctx, film.ID); err != nil {
		return errs.NewUpstreamError(filmOrigin, "Failed to delete film comments", err)
	}
	if _, err := c.favorites.DeleteByFilmID(ctx, film.ID); err != nil {
		return errs.NewUpstreamError(filmOrigin, "Failed to delete film favorites", err)
	}
	if err := c.films.Delete(ctx, film.ID); err != nil {
		return errs.NewUpstreamError(filmOrigin, "Failed to delete film", err)
	}

	view, err := c.view(ctx, film)
	if err != nil {
		return err
	}
	view.IsFavorite = false
	return c.OK(w, r, FilmShape.Apply(view))
}

func (c *FilmController) load(r *http.Request) (*domain.Film, error) {
	id := mux.Vars(r)["id"]
	film, err := c.films.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrFilmNotFound) {
			return nil, errs.NewNotFoundError(filmOrigin, fmt.Sprintf("Film with %s not found.", id))
		}
		return nil, errs.NewUpstreamError(filmOrigin, "Failed to load film", err)
	}
	return film, nil
}

func (c *FilmController) view(ctx context.Context, film *domain.Film) (filmView, error) {
	views, err := c.views(ctx, []*domain.Film{film})
	if err != nil {
		return filmView{}, err
	}
	return views[0], nil
}

// views resolves authors and, for an identified caller, favorite markers.
func (c *FilmController) views(ctx context.Context, films []*domain.Film) ([]filmView, error) {
	return buildFilmViews(ctx, c.users, c.favorites, films)
}

func buildFilmViews(
	ctx context.Context,
	users *service.UserService,
	favorites *service.FavoriteService,
	films []*domain.Film,
) ([]filmView, error) {
	var favoriteIDs map[string]bool
	if identity, ok := IdentityFrom(ctx); ok {
		ids, err := favoriteMarks(ctx, favorites, identity.UserID, films)
		if err != nil {
			return nil, errs.NewUpstreamError(filmOrigin, "Failed to load favorites", err)
		}
		favoriteIDs = ids
	}

	authors := make(map[string]*domain.User)
	views := make([]filmView, len(films))
	for i, film := range films {
		author, seen := authors[film.UserID]
		if !seen {
			u, err := users.FindByID(ctx, film.UserID)
			if err != nil && !errors.Is(err, store.ErrUserNotFound) {
				return nil, errs.NewUpstreamError(filmOrigin, "Failed to load film author", err)
			}
			author = u
			authors[film.UserID] = u
		}
		views[i] = filmView{Film: film, Author: author, IsFavorite: favoriteIDs[film.ID]}
	}
	return views, nil
}

// favoriteMarks returns which of films the user marked. A single film is
// checked directly instead of loading the whole favorite list.
func favoriteMarks(
	ctx context.Context,
	favorites *service.FavoriteService,
	userID string,
	films []*domain.Film,
) (map[string]bool, error) {
	if len(films) != 1 {
		return favorites.FilmIDs(ctx, userID)
	}
	ok, err := favorites.IsFavorite(ctx, userID, films[0].ID)
	if err != nil {
		return nil, err
	}
	return map[string]bool{films[0].ID: ok}, nil
}

// limitParam reads the optional ?limit= query parameter. Zero means the default.
func limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errs.NewBadRequestError(filmOrigin, "limit must be a positive integer")
	}
	return n, nil
}
