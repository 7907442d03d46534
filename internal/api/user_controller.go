package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"what-to-watch/internal/domain"
	"what-to-watch/internal/errs"
	"what-to-watch/internal/pipeline"
	"what-to-watch/internal/service"
	"what-to-watch/internal/store"
	"what-to-watch/internal/validation"
	"what-to-watch/pkg/auth"
)

const userOrigin = "UserController"

type UserController struct {
	*pipeline.Controller
	users   *service.UserService
	tokens  auth.TokenManager
	revoker auth.Revoker
}

func NewUserController(
	logger zerolog.Logger,
	v *validation.Validator,
	users *service.UserService,
	tokens auth.TokenManager,
	revoker auth.Revoker,
) *UserController {
	c := &UserController{
		Controller: pipeline.NewController("/users", logger),
		users:      users,
		tokens:     tokens,
		revoker:    revoker,
	}
	c.Logger().Info().Msg("Register routes for UserController")

	c.AddRoute(pipeline.Route{
		Path:        "/register",
		Method:      http.MethodPost,
		Handler:     c.register,
		Middlewares: []pipeline.Middleware{NewValidateDTO[domain.CreateUserRequest](v)},
	})
	c.AddRoute(pipeline.Route{
		Path:        "/login",
		Method:      http.MethodPost,
		Handler:     c.login,
		Middlewares: []pipeline.Middleware{NewValidateDTO[domain.LoginRequest](v)},
	})
	c.AddRoute(pipeline.Route{
		Path:        "/login",
		Method:      http.MethodGet,
		Handler:     c.checkAuth,
		Middlewares: []pipeline.Middleware{PrivateRoute{}},
	})
	c.AddRoute(pipeline.Route{
		Path:        "/logout",
		Method:      http.MethodPost,
		Handler:     c.logout,
		Middlewares: []pipeline.Middleware{PrivateRoute{}},
	})
	return c
}

func (c *UserController) register(w http.ResponseWriter, r *http.Request) error {
	req := DTO[domain.CreateUserRequest](r)
	user, err := c.users.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, store.ErrUserAlreadyExists) {
			return errs.NewConflictError(userOrigin, fmt.Sprintf("User with email «%s» exists.", req.Email))
		}
		return errs.NewUpstreamError(userOrigin, "Failed to register user", err)
	}
	return c.Created(w, r, UserShape.Apply(user))
}

func (c *UserController) login(w http.ResponseWriter, r *http.Request) error {
	req := DTO[domain.LoginRequest](r)
	user, err := c.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return errs.NewUnauthorizedError(userOrigin, "Incorrect email or password")
		}
		return errs.NewUpstreamError(userOrigin, "Failed to log in", err)
	}

	token, err := c.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return errs.NewUpstreamError(userOrigin, "Failed to issue token", err)
	}
	return c.OK(w, r, LoginShape.Apply(loginView{Token: token, User: user}))
}

func (c *UserController) checkAuth(w http.ResponseWriter, r *http.Request) error {
	identity, _ := IdentityFrom(r.Context())
	user, err := c.users.FindByID(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return errs.NewUnauthorizedError(userOrigin, "Unauthorized")
		}
		return errs.NewUpstreamError(userOrigin, "Failed to load user", err)
	}
	return c.OK(w, r, UserShape.Apply(user))
}

func (c *UserController) logout(w http.ResponseWriter, r *http.Request) error {
	identity, _ := IdentityFrom(r.Context())
	if err := c.revoker.Revoke(r.Context(), identity.TokenID, identity.ExpiresAt); err != nil {
		return errs.NewUpstreamError(userOrigin, "Failed to log out", err)
	}
	return c.NoContent(w)
}
