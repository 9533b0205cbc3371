// Package oauth performs the authorization code handshake with external
// identity providers and reduces the result to a domain.ExternalProfile.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/scribe/internal/scribe/domain"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const (
	GoogleIssuer   = "https://accounts.google.com"
	LinkedInIssuer = "https://www.linkedin.com/oauth"
)

var (
	ErrExchange        = errors.New("oauth: code exchange failed")
	ErrMissingIDToken  = errors.New("oauth: no id_token in token response")
	ErrIncompleteClaim = errors.New("oauth: provider did not return a subject and email")
	ErrUnverifiedEmail = errors.New("oauth: provider email is not verified")
)

// Provider is one configured identity provider.
type Provider interface {
	Name() domain.Provider
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (domain.ExternalProfile, error)
}

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func (c Config) Enabled() bool { return c.ClientID != "" && c.ClientSecret != "" }

// ProfileSource selects where the profile claims are read from after the
// code exchange.
type ProfileSource int

const (
	// FromIDToken verifies the id_token of the token response.
	FromIDToken ProfileSource = iota
	// FromUserInfo calls the userinfo endpoint with the access token.
	FromUserInfo
)

// OIDCProvider drives an OpenID Connect provider found by discovery.
type OIDCProvider struct {
	name     domain.Provider
	source   ProfileSource
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
	config   oauth2.Config
}

// NewGoogle discovers Google's endpoints. Profiles come from the id_token.
func NewGoogle(ctx context.Context, cfg Config) (*OIDCProvider, error) {
	return NewOIDCProvider(ctx, domain.ProviderGoogle, GoogleIssuer, FromIDToken, cfg)
}

// NewLinkedIn discovers LinkedIn's endpoints. Profiles come from userinfo.
func NewLinkedIn(ctx context.Context, cfg Config) (*OIDCProvider, error) {
	return NewOIDCProvider(ctx, domain.ProviderLinkedIn, LinkedInIssuer, FromUserInfo, cfg)
}

func NewOIDCProvider(ctx context.Context, name domain.Provider, issuer string, source ProfileSource, cfg Config) (*OIDCProvider, error) {
	if !name.Valid() {
		return nil, fmt.Errorf("oauth: unsupported provider %q", name)
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oauth: discover %s: %w", name, err)
	}

	return &OIDCProvider{
		name:     name,
		source:   source,
		provider: provider,
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

func (p *OIDCProvider) Name() domain.Provider { return p.name }

func (p *OIDCProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type profileClaims struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

// Exchange trades the authorization code for tokens and reads the profile.
// Profiles with an email the provider reports as unverified are rejected.
func (p *OIDCProvider) Exchange(ctx context.Context, code string) (domain.ExternalProfile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return domain.ExternalProfile{}, fmt.Errorf("%w: %w", ErrExchange, err)
	}

	var claims profileClaims
	switch p.source {
	case FromUserInfo:
		info, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(token))
		if err != nil {
			return domain.ExternalProfile{}, fmt.Errorf("oauth: %s userinfo: %w", p.name, err)
		}
		if err := info.Claims(&claims); err != nil {
			return domain.ExternalProfile{}, fmt.Errorf("oauth: %s userinfo claims: %w", p.name, err)
		}
	default:
		raw, ok := token.Extra("id_token").(string)
		if !ok || raw == "" {
			return domain.ExternalProfile{}, ErrMissingIDToken
		}
		idToken, err := p.verifier.Verify(ctx, raw)
		if err != nil {
			return domain.ExternalProfile{}, fmt.Errorf("oauth: %s id_token: %w", p.name, err)
		}
		if err := idToken.Claims(&claims); err != nil {
			return domain.ExternalProfile{}, fmt.Errorf("oauth: %s id_token claims: %w", p.name, err)
		}
	}

	return p.profile(claims)
}

func (p *OIDCProvider) profile(c profileClaims) (domain.ExternalProfile, error) {
	email := domain.NormalizeEmail(c.Email)
	if c.Subject == "" || email == "" {
		return domain.ExternalProfile{}, ErrIncompleteClaim
	}
	if c.EmailVerified != nil && !*c.EmailVerified {
		return domain.ExternalProfile{}, ErrUnverifiedEmail
	}

	return domain.ExternalProfile{
		Provider:   p.name,
		ProviderID: c.Subject,
		Email:      email,
		GivenName:  strings.TrimSpace(c.GivenName),
		FamilyName: strings.TrimSpace(c.FamilyName),
	}, nil
}

// Registry holds the enabled providers by name.
type Registry map[domain.Provider]Provider

func (r Registry) Get(name domain.Provider) (Provider, bool) {
	p, ok := r[name]
	return p, ok
}
