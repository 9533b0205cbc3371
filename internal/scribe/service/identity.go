package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/scribe/internal/scribe/domain"
	"github.com/aussiebroadwan/scribe/internal/scribe/mail"
	"github.com/aussiebroadwan/scribe/internal/scribe/store"
	"github.com/aussiebroadwan/scribe/pkg/cryptox"
	"github.com/aussiebroadwan/scribe/pkg/idx"
	"github.com/aussiebroadwan/scribe/pkg/jwtx"
	"github.com/aussiebroadwan/scribe/pkg/slogx"
)

// IdentityService resolves credentials and external identities to users.
type IdentityService struct {
	Store       store.Store
	Tokens      *TokenService
	Mail        mail.Sender
	FrontendURL string
	Clock       Clock
}

// AuthResult is returned by every sign-in flow.
type AuthResult struct {
	User   domain.User
	Tokens domain.TokenPair

	// VerificationSent is only meaningful after Register.
	VerificationSent bool

	// Created is set when an OAuth sign in created the account.
	Created bool
}

// dummyHash is verified against when the email is unknown so a miss costs
// the same as a wrong password.
var dummyHash = sync.OnceValues(func() (string, error) {
	return cryptox.HashPassword("scribe-timing-equaliser")
})

// Register creates a password account and sends a verification code.
func (s *IdentityService) Register(ctx context.Context, firstName, lastName, email, password string) (AuthResult, error) {
	log := slogx.FromContext(ctx)
	now := s.Clock.now()

	first, err := domain.ValidateName("firstName", firstName)
	if err != nil {
		return AuthResult{}, err
	}
	last, err := domain.ValidateName("lastName", lastName)
	if err != nil {
		return AuthResult{}, err
	}
	email = domain.NormalizeEmail(email)
	if err := domain.ValidateEmail(email); err != nil {
		return AuthResult{}, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return AuthResult{}, err
	}

	if _, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
		return AuthResult{}, ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return AuthResult{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	code, err := s.Tokens.IssueOneTimeCode(jwtx.PurposeVerify)
	if err != nil {
		return AuthResult{}, fmt.Errorf("verification code: %w", err)
	}

	user := domain.NewUser(idx.NewAt(now).String(), first, last, email, now)
	user.PasswordHash = hash
	user.VerificationDigest = code.Digest
	user.VerificationExpiresAt = &code.ExpiresAt

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		_, err := tx.Members().BindEmail(ctx, user.Email, user.ID, now)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return AuthResult{}, ErrDuplicateEmail
		}
		log.Error("failed to create user", slog.Any("error", err))
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.Tokens.IssuePair(user)
	if err != nil {
		return AuthResult{}, err
	}

	sent := deliver(ctx, s.Mail, mail.Message{
		Kind: mail.KindVerifyEmail,
		To:   user.Email,
		Data: mail.VerifyEmail{Name: user.FirstName, Code: code.Code, ExpiresIn: VerificationCodeTTL},
	})

	log.Info("user registered",
		slog.String("user_id", user.ID),
		slog.Bool("verification_sent", sent),
	)
	return AuthResult{User: user, Tokens: pair, VerificationSent: sent, Created: true}, nil
}

// Login checks an email and password. Unknown emails, accounts without a
// password and wrong passwords are indistinguishable to the caller.
func (s *IdentityService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	log := slogx.FromContext(ctx)
	now := s.Clock.now()
	email = domain.NormalizeEmail(email)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return AuthResult{}, fmt.Errorf("lookup email: %w", err)
		}
		if hash, herr := dummyHash(); herr == nil {
			_ = cryptox.VerifyPassword(password, hash)
		}
		log.Info("login failed", slog.String("reason", "unknown_email"))
		return AuthResult{}, ErrInvalidCredentials
	}

	if !user.HasPassword() {
		log.Info("login failed", slog.String("reason", "no_password"), slog.String("user_id", user.ID))
		return AuthResult{}, ErrInvalidCredentials
	}
	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		log.Info("login failed", slog.String("reason", "bad_password"), slog.String("user_id", user.ID))
		return AuthResult{}, ErrInvalidCredentials
	}

	if err := s.Store.Users().UpdateLastLogin(ctx, user.ID, now); err != nil {
		return AuthResult{}, fmt.Errorf("update last login: %w", err)
	}
	user.LastLoginAt = &now

	pair, err := s.Tokens.IssuePair(user)
	if err != nil {
		return AuthResult{}, err
	}

	log.Info("user logged in", slog.String("user_id", user.ID))
	return AuthResult{User: user, Tokens: pair}, nil
}

// OAuthLogin resolves a provider profile to exactly one user. The provider
// link wins over the email. An email match is linked to the provider unless
// the user already has a link there, which is kept. An unknown profile
// becomes a new verified account without a password.
func (s *IdentityService) OAuthLogin(ctx context.Context, profile domain.ExternalProfile) (AuthResult, error) {
	if !profile.Provider.Valid() || profile.ProviderID == "" {
		return AuthResult{}, ErrInvalidCredentials
	}
	profile.Email = domain.NormalizeEmail(profile.Email)
	if err := domain.ValidateEmail(profile.Email); err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	// A concurrent first sign in for the same profile can win the insert;
	// the next attempt then finds the account.
	var err error
	for range oauthLoginAttempts {
		var res AuthResult
		res, err = s.oauthLogin(ctx, profile)
		if !errors.Is(err, store.ErrAlreadyExists) {
			return res, err
		}
	}
	slogx.FromContext(ctx).Error("oauth login kept losing insert race",
		slog.String("provider", string(profile.Provider)),
		slog.String("provider_id", profile.ProviderID),
		slog.Any("error", err),
	)
	return AuthResult{}, fmt.Errorf("oauth login: %w", err)
}

const oauthLoginAttempts = 3

func (s *IdentityService) oauthLogin(ctx context.Context, profile domain.ExternalProfile) (AuthResult, error) {
	log := slogx.FromContext(ctx).With(
		slog.String("provider", string(profile.Provider)),
		slog.String("provider_id", profile.ProviderID),
	)
	now := s.Clock.now()

	var (
		user    domain.User
		created bool
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		ident, err := tx.Identities().GetIdentity(ctx, profile.Provider, profile.ProviderID)
		switch {
		case err == nil:
			user, err = tx.Users().GetUserByID(ctx, ident.UserID)
			return err
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		link := domain.Identity{
			Provider:   profile.Provider,
			ProviderID: profile.ProviderID,
			CreatedAt:  now,
		}

		user, err = tx.Users().GetUserByEmail(ctx, profile.Email)
		switch {
		case err == nil:
			linked, err := hasProviderLink(ctx, tx, user.ID, profile.Provider)
			if err != nil {
				return err
			}
			if linked {
				// The stored id at this provider is never replaced.
				log.Info("oauth email matches account linked to another provider id",
					slog.String("user_id", user.ID),
				)
				return nil
			}

			link.UserID = user.ID
			if err := tx.Identities().LinkIdentity(ctx, link); err != nil {
				return err
			}
			if !user.EmailVerified {
				// A password set before anyone proved the address is not trusted.
				if err := tx.Users().ClearPassword(ctx, user.ID, now); err != nil {
					return err
				}
				if err := tx.Users().MarkEmailVerified(ctx, user.ID, now); err != nil {
					return err
				}
				user.EmailVerified = true
				user.VerificationDigest = ""
				user.VerificationExpiresAt = nil
				user.PasswordHash = ""
				user.ResetDigest = ""
				user.ResetExpiresAt = nil
				log.Info("cleared unverified password on provider link", slog.String("user_id", user.ID))
			}
			log.Info("linked provider to existing account", slog.String("user_id", user.ID))
			return nil
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		user = domain.NewUser(idx.NewAt(now).String(), profile.GivenName, profile.FamilyName, profile.Email, now)
		user.EmailVerified = true
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		link.UserID = user.ID
		if err := tx.Identities().LinkIdentity(ctx, link); err != nil {
			return err
		}
		if _, err := tx.Members().BindEmail(ctx, user.Email, user.ID, now); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return AuthResult{}, err
		}
		log.Error("oauth login failed", slog.Any("error", err))
		return AuthResult{}, fmt.Errorf("oauth login: %w", err)
	}

	if err := s.Store.Users().UpdateLastLogin(ctx, user.ID, now); err != nil {
		return AuthResult{}, fmt.Errorf("update last login: %w", err)
	}
	user.LastLoginAt = &now

	pair, err := s.Tokens.IssuePair(user)
	if err != nil {
		return AuthResult{}, err
	}

	if created {
		log.Info("user created from provider profile", slog.String("user_id", user.ID))
	}
	return AuthResult{User: user, Tokens: pair, Created: created}, nil
}

func hasProviderLink(ctx context.Context, tx store.Tx, userID string, provider domain.Provider) (bool, error) {
	links, err := tx.Identities().ListIdentitiesForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, l := range links {
		if l.Provider == provider {
			return true, nil
		}
	}
	return false, nil
}
