package service

import (
	"errors"

	"github.com/aussiebroadwan/scribe/internal/scribe/domain"
)

var (
	ErrInvalidCredentials     = errors.New("invalid_credentials")
	ErrDuplicateEmail         = errors.New("duplicate_email")
	ErrInvalidToken           = errors.New("invalid_token")
	ErrInvalidOrExpiredToken  = errors.New("invalid_or_expired_token")
	ErrInvalidOrExpiredInvite = errors.New("invalid_or_expired_invite")
	ErrForbidden              = errors.New("forbidden")
	ErrNotFound               = errors.New("not_found")
	ErrAlreadyMember          = errors.New("already_member")
	ErrAlreadyVerified        = errors.New("already_verified")
	ErrNoPassword             = errors.New("no_password")
	ErrOnboardingCompleted    = errors.New("onboarding_completed")

	// Validation failures carry a *domain.FieldError that unwraps to these.
	ErrInvalidValue = domain.ErrInvalidValue
	ErrInvalidStep  = domain.ErrInvalidStep
)
