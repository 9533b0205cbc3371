package scribesdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/scribe/pkg/httpx"
)

// Error codes returned in ErrorResponse.Error.
const (
	ErrorCodeInvalidRequest          = "invalid_request"
	ErrorCodeInvalidValue            = "invalid_value"
	ErrorCodeInvalidStep             = "invalid_step"
	ErrorCodeInvalidCredentials      = "invalid_credentials"
	ErrorCodeDuplicateEmail          = "duplicate_email"
	ErrorCodeInvalidToken            = "invalid_token"
	ErrorCodeInvalidOrExpiredToken   = "invalid_or_expired_token"
	ErrorCodeInvalidOrExpiredInvite  = "invalid_or_expired_invite"
	ErrorCodeForbidden               = "forbidden"
	ErrorCodeNotFound                = "not_found"
	ErrorCodeAlreadyMember           = "already_member"
	ErrorCodeAlreadyVerified         = "already_verified"
	ErrorCodeNoPassword              = "no_password"
	ErrorCodeOnboardingCompleted     = "onboarding_completed"
	ErrorCodeEmailNotVerified        = "email_not_verified"
	ErrorCodeProviderNotConfigured   = "provider_not_configured"
	ErrorCodeServerError             = "server_error"
	ErrorCodeMethodNotAllowed        = "method_not_allowed"
	ErrorCodeUnsupportedMediaType    = "unsupported_media_type"
	ErrorCodeRequestEntityTooLarge   = "request_entity_too_large"
	ErrorCodeServiceUnavailable      = "service_unavailable"
	ErrorCodeInvalidOAuthState       = "invalid_oauth_state"
	ErrorCodeOAuthExchangeFailed     = "oauth_exchange_failed"
	ErrorCodeUnverifiedProviderEmail = "unverified_provider_email"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is the error type shared by the server (to write responses) and
// the client (to report them).
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the stable error code (e.g. "invalid_credentials")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches another *APIError by code, so errors.Is(err, ErrForbidden)
// works on errors decoded from a response.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WriteError writes this error to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:            e.Code,
		ErrorDescription: e.Description,
	})
}

// WithDescription returns a copy of e with a more specific description.
func (e *APIError) WithDescription(desc string) *APIError {
	c := *e
	c.Description = desc
	return &c
}

// NewAPIError creates an APIError with the given status, code and description.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required fields",
	}

	ErrInvalidValue = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidValue,
		Description: "a field has a value outside its allowed domain",
	}

	ErrInvalidStep = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidStep,
		Description: "onboarding step must be between 1 and 9",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "invalid email or password",
	}

	ErrDuplicateEmail = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeDuplicateEmail,
		Description: "an account with this email already exists",
	}

	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the token is missing, invalid or expired",
	}

	ErrInvalidCode = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidToken,
		Description: "the verification code is invalid or expired",
	}

	ErrInvalidOrExpiredToken = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidOrExpiredToken,
		Description: "the reset link is invalid or has expired",
	}

	ErrInvalidOrExpiredInvite = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeInvalidOrExpiredInvite,
		Description: "invalid or expired invitation",
	}

	ErrForbidden = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeForbidden,
		Description: "you do not have access to this resource",
	}

	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "resource not found",
	}

	ErrAlreadyMember = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeAlreadyMember,
		Description: "user is already a member of this workspace",
	}

	ErrAlreadyVerified = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeAlreadyVerified,
		Description: "email is already verified",
	}

	ErrNoPassword = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeNoPassword,
		Description: "account has no password; use the reset flow to set one",
	}

	ErrOnboardingCompleted = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeOnboardingCompleted,
		Description: "onboarding is already completed",
	}

	ErrEmailNotVerified = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeEmailNotVerified,
		Description: "please verify your email to access this resource",
	}

	ErrProviderNotConfigured = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeProviderNotConfigured,
		Description: "this sign-in provider is not enabled",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}

	ErrMethodNotAllowed = &APIError{
		StatusCode:  http.StatusMethodNotAllowed,
		Code:        ErrorCodeMethodNotAllowed,
		Description: "method not allowed",
	}
)

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	// Fallback: create generic error from status code
	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
