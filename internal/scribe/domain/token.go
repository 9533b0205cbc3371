package domain

import "time"

// TokenPair is the access and refresh token handed out on sign in.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	TokenType        string // always "Bearer"
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// ExpiresIn returns the access token lifetime in whole seconds from now.
func (p TokenPair) ExpiresIn(now time.Time) int {
	if d := p.AccessExpiresAt.Sub(now); d > 0 {
		return int(d.Seconds())
	}
	return 0
}

// OneTimeCode is a freshly generated single use secret. Code goes to the
// recipient; only Digest is persisted.
type OneTimeCode struct {
	Code      string
	Digest    string
	ExpiresAt time.Time
}
