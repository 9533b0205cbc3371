package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidValue = errors.New("invalid_value")
	ErrInvalidStep  = errors.New("invalid_step")
)

// FieldError names the field that failed validation. It unwraps to
// ErrInvalidValue so callers can match on the category alone.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInvalidValue }

func invalid(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}

// Invalid reports that field failed validation for reason.
func Invalid(field, reason string) error { return invalid(field, reason) }
