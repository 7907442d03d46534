// Package validation decodes request bodies into DTOs and checks them
// against their `validate` tags.
//
// Violations are reported per field using the JSON name of the field, so a
// client sees the same key it sent. Unknown JSON fields are ignored.
package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"what-to-watch/internal/domain"
	"what-to-watch/internal/errs"
)

const origin = "ValidateDTO"

// MaxBodyBytes caps the size of a decoded request body.
const MaxBodyBytes int64 = 1 << 20

// Validator wraps a configured validator.Validate. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator that reports JSON field names and knows the
// project's custom tags.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("imagefile", isImageFile)
	_ = v.RegisterValidation("genre", isGenre)
	return &Validator{validate: v}
}

// Struct validates dto and returns a 400 *errs.HTTPError listing every violation.
func (v *Validator) Struct(ctx context.Context, dto any) error {
	err := v.validate.StructCtx(ctx, dto)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errs.NewBadRequestError(origin, "Validation failed: "+err.Error())
	}
	return errs.NewValidationError(origin, fieldErrors(validationErrors))
}

// Decode reads a JSON body of at most MaxBodyBytes into dst. Unknown fields
// are dropped.
func Decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return errs.NewBadRequestError(origin, "Request body is required")
	}
	body := http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errs.NewBadRequestError(origin, "Request body is required")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.NewRequestTooLargeError(origin, fmt.Sprintf("Request body must not exceed %d bytes", tooLarge.Limit))
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return errs.NewValidationError(origin, []errs.FieldError{{
				Field: typeErr.Field,
				Error: "must be of type " + typeErr.Type.String(),
			}})
		}
		return errs.NewBadRequestError(origin, "Invalid request payload").WithCause(err)
	}
	return nil
}

func fieldErrors(validationErrors validator.ValidationErrors) []errs.FieldError {
	fields := make([]errs.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, errs.FieldError{
			Field: fieldPath(fe),
			Error: message(fe),
		})
	}
	return fields
}

// fieldPath drops the root struct name from the namespace: CreateFilmRequest.actors[0] -> actors[0].
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "hexcolor":
		return "must be a hex color like #A6B5C1"
	case "imagefile":
		return "must be a .jpg file name"
	case "genre":
		names := make([]string, len(domain.Genres))
		for i, g := range domain.Genres {
			names[i] = string(g)
		}
		return "must be one of: " + strings.Join(names, ", ")
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
		}
		return "failed " + fe.Tag()
	}
}

func isImageFile(fl validator.FieldLevel) bool {
	return strings.ToLower(filepath.Ext(fl.Field().String())) == ".jpg"
}

func isGenre(fl validator.FieldLevel) bool {
	_, ok := domain.ParseGenre(fl.Field().String())
	return ok
}
