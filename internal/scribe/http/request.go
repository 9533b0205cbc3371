package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/aussiebroadwan/scribe/internal/scribe/domain"
	"github.com/aussiebroadwan/scribe/internal/scribe/service"
	"github.com/aussiebroadwan/scribe/pkg/httpx"
	"github.com/aussiebroadwan/scribe/pkg/scribesdk"
	"github.com/aussiebroadwan/scribe/pkg/slogx"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report the JSON name of a field rather than the Go one.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeRequest reads and validates a JSON body into dst. On failure it
// writes the error response and returns false.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		scribesdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			scribesdk.ErrInvalidRequest.WithDescription(describeValidation(verrs[0])).WriteError(w)
			return false
		}
		scribesdk.ErrInvalidRequest.WriteError(w)
		return false
	}
	return true
}

func describeValidation(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// callerID returns the authenticated user id. The authn middleware guarantees
// it for secured routes; a missing id is reported as an invalid token.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := httpx.UserIDFromContext(r.Context())
	if !ok {
		scribesdk.ErrInvalidToken.WriteError(w)
		return "", false
	}
	return id, true
}

// writeServiceError maps the service error taxonomy onto API errors.
// Anything outside it is logged and reported as a server error without
// detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	var fe *domain.FieldError
	switch {
	case errors.As(err, &fe):
		scribesdk.ErrInvalidValue.WithDescription(fe.Error()).WriteError(w)
	case errors.Is(err, service.ErrInvalidValue):
		scribesdk.ErrInvalidValue.WriteError(w)
	case errors.Is(err, service.ErrInvalidStep):
		scribesdk.ErrInvalidStep.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		scribesdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrDuplicateEmail):
		scribesdk.ErrDuplicateEmail.WriteError(w)
	case errors.Is(err, service.ErrInvalidToken):
		scribesdk.ErrInvalidToken.WriteError(w)
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		scribesdk.ErrInvalidOrExpiredToken.WriteError(w)
	case errors.Is(err, service.ErrInvalidOrExpiredInvite):
		scribesdk.ErrInvalidOrExpiredInvite.WriteError(w)
	case errors.Is(err, service.ErrForbidden):
		scribesdk.ErrForbidden.WriteError(w)
	case errors.Is(err, service.ErrNotFound):
		scribesdk.ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrAlreadyMember):
		scribesdk.ErrAlreadyMember.WriteError(w)
	case errors.Is(err, service.ErrAlreadyVerified):
		scribesdk.ErrAlreadyVerified.WriteError(w)
	case errors.Is(err, service.ErrNoPassword):
		scribesdk.ErrNoPassword.WriteError(w)
	case errors.Is(err, service.ErrOnboardingCompleted):
		scribesdk.ErrOnboardingCompleted.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "op", op, "err", err)
		scribesdk.ErrServerError.WriteError(w)
	}
}
