package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"what-to-watch/internal/errs"
	"what-to-watch/internal/validation"
	"what-to-watch/pkg/auth"
)

// Authenticate resolves the bearer token, if any, into an Identity. A request
// without an Authorization header stays anonymous; a bad or revoked token is
// rejected.
type Authenticate struct {
	tokens  auth.TokenManager
	revoker auth.Revoker
}

func NewAuthenticate(tokens auth.TokenManager, revoker auth.Revoker) *Authenticate {
	return &Authenticate{tokens: tokens, revoker: revoker}
}

func (m *Authenticate) Execute(r *http.Request) (*http.Request, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return r, nil
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, errs.NewUnauthorizedError("AuthenticateMiddleware", "Invalid Authorization header format")
	}

	claims, err := m.tokens.Validate(parts[1])
	if err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("Token rejected")
		return nil, errs.NewUnauthorizedError("AuthenticateMiddleware", "Invalid or expired token")
	}

	revoked, err := m.revoker.IsRevoked(r.Context(), claims.ID)
	if err != nil {
		return nil, errs.NewUpstreamError("AuthenticateMiddleware", "Failed to check token", err)
	}
	if revoked {
		return nil, errs.NewUnauthorizedError("AuthenticateMiddleware", "Token has been revoked")
	}

	identity := Identity{UserID: claims.UserID, Email: claims.Email, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return r.WithContext(withIdentity(r.Context(), identity)), nil
}

// PrivateRoute rejects anonymous requests.
type PrivateRoute struct{}

func (PrivateRoute) Execute(r *http.Request) (*http.Request, error) {
	if _, ok := IdentityFrom(r.Context()); !ok {
		return nil, errs.NewUnauthorizedError("PrivateRouteMiddleware", "Unauthorized")
	}
	return r, nil
}

// ValidateObjectID rejects a path parameter that is not an ID in its stored
// form: lowercase, dashed, no braces or urn prefix.
type ValidateObjectID struct {
	Param string
}

func (m ValidateObjectID) Execute(r *http.Request) (*http.Request, error) {
	value := mux.Vars(r)[m.Param]
	if id, err := uuid.Parse(value); err != nil || id.String() != value {
		return nil, errs.NewBadRequestError("ValidateObjectIDMiddleware", fmt.Sprintf("%s is invalid ObjectID", value))
	}
	return r, nil
}

// ValidateDTO decodes the JSON body into T and validates it. The result is
// available to later steps through DTO[T].
type ValidateDTO[T any] struct {
	validator *validation.Validator
}

func NewValidateDTO[T any](v *validation.Validator) ValidateDTO[T] {
	return ValidateDTO[T]{validator: v}
}

func (m ValidateDTO[T]) Execute(r *http.Request) (*http.Request, error) {
	var dto T
	if err := validation.Decode(r, &dto); err != nil {
		return nil, err
	}
	if err := m.validator.Struct(r.Context(), dto); err != nil {
		return nil, err
	}
	return r.WithContext(context.WithValue(r.Context(), DTOKey, dto)), nil
}

// ExistsChecker reports whether an entity with id exists.
type ExistsChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// DocumentExists answers 404 when the entity named by the path parameter is missing.
type DocumentExists struct {
	Checker ExistsChecker
	Entity  string
	Param   string
}

func (m DocumentExists) Execute(r *http.Request) (*http.Request, error) {
	id := mux.Vars(r)[m.Param]
	exists, err := m.Checker.Exists(r.Context(), id)
	if err != nil {
		return nil, errs.NewUpstreamError("DocumentExistsMiddleware", "Failed to look up "+m.Entity, err)
	}
	if !exists {
		return nil, errs.NewNotFoundError("DocumentExistsMiddleware", fmt.Sprintf("%s with %s not found.", m.Entity, id))
	}
	return r, nil
}
