package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8
	MaxNameLength     = 100
)

// User is an account. Users are never hard deleted.
type User struct {
	ID           string
	Email        string // lowercase, unique
	FirstName    string
	LastName     string
	MobileNumber string

	// PasswordHash is an argon2id PHC string; empty for accounts created
	// through an external identity provider.
	PasswordHash string

	EmailVerified bool

	// One-time secrets are stored as fingerprints only.
	VerificationDigest    string
	VerificationExpiresAt *time.Time
	ResetDigest           string
	ResetExpiresAt        *time.Time

	OnboardingStatus OnboardingStatus
	OnboardingStep   int
	Onboarding       OnboardingData

	Preferences map[string]any

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewUser returns a user at the start of onboarding. Password hashing happens
// before this call; there are no persistence hooks.
func NewUser(id, firstName, lastName, email string, now time.Time) User {
	return User{
		ID:               id,
		Email:            NormalizeEmail(email),
		FirstName:        strings.TrimSpace(firstName),
		LastName:         strings.TrimSpace(lastName),
		OnboardingStatus: OnboardingIncomplete,
		OnboardingStep:   FirstOnboardingStep,
		Preferences:      map[string]any{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (u User) HasPassword() bool { return u.PasswordHash != "" }

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail lowercases and trims an address. Every lookup and insert
// goes through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePassword enforces the minimum length, counted in characters.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return invalid("password", "must be at least 8 characters")
	}
	return nil
}

// ValidateName trims and checks a first or last name.
func ValidateName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid(field, "is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", invalid(field, "is too long")
	}
	return name, nil
}

// ValidateMobileNumber accepts an empty value or an E.164-ish number.
func ValidateMobileNumber(mobile string) (string, error) {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return "", nil
	}
	if err := validate.Var(strings.ReplaceAll(mobile, " ", ""), "e164"); err != nil {
		return "", invalid("mobileNumber", "must be in international format, e.g. +4915112345678")
	}
	return strings.ReplaceAll(mobile, " ", ""), nil
}
