package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default lifetimes for the session token pair.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Purpose binds a token to the single operation it may be used for. A token
// minted for one purpose never verifies under another.
type Purpose string

const (
	PurposeAccess  Purpose = "access"
	PurposeRefresh Purpose = "refresh"
	PurposeReset   Purpose = "reset"
	PurposeVerify  Purpose = "verify"
	PurposeInvite  Purpose = "invite"
)

// Purposes lists every known purpose.
var Purposes = []Purpose{PurposeAccess, PurposeRefresh, PurposeReset, PurposeVerify, PurposeInvite}

// Valid reports whether p is one of the known purposes.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeAccess, PurposeRefresh, PurposeReset, PurposeVerify, PurposeInvite:
		return true
	}
	return false
}

// Claims are the claims carried by every token the service mints. The purpose
// is duplicated into the audience.
type Claims struct {
	jwt.RegisteredClaims

	Purpose Purpose `json:"purpose"`
}

// NewClaims builds claims for subject valid for ttl starting at now.
func NewClaims(subject string, purpose Purpose, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{string(purpose)},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Purpose: purpose,
	}
}

// NewJTI returns a random URL-safe identifier for the jti claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks iss; an empty expectation is not enforced.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected != "" && c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks that at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidatePurpose checks both the purpose claim and the audience.
func (c *Claims) ValidatePurpose(expected Purpose) error {
	if !expected.Valid() || c.Purpose != expected {
		return ErrPurpose
	}
	if err := c.ValidateAudience([]string{string(expected)}); err != nil {
		return ErrPurpose
	}
	return nil
}

// ValidateExpiry ensures now is inside [nbf, exp].
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryWithLeeway(0)
}

// ValidateExpiryWithLeeway is ValidateExpiry with tolerance for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt == nil || now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
