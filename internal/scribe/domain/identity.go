package domain

import "time"

// Provider is an external identity provider.
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderLinkedIn Provider = "linkedin"
)

func (p Provider) Valid() bool {
	return p == ProviderGoogle || p == ProviderLinkedIn
}

// Identity links a provider scoped subject id to a user. A (provider,
// provider id) pair belongs to at most one user and a user has at most one
// link per provider.
type Identity struct {
	Provider   Provider
	ProviderID string
	UserID     string
	CreatedAt  time.Time
}

// ExternalProfile is what an identity provider tells us about a person after
// a successful sign in.
type ExternalProfile struct {
	Provider   Provider
	ProviderID string
	Email      string
	GivenName  string
	FamilyName string
}
