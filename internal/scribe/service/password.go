package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/scribe/internal/scribe/domain"
	"github.com/aussiebroadwan/scribe/internal/scribe/mail"
	"github.com/aussiebroadwan/scribe/internal/scribe/store"
	"github.com/aussiebroadwan/scribe/pkg/cryptox"
	"github.com/aussiebroadwan/scribe/pkg/jwtx"
	"github.com/aussiebroadwan/scribe/pkg/slogx"
)

// ForgotPassword stores a reset token for email and mails the reset link.
// It reports nothing about whether the email belongs to an account; only
// store failures are returned.
func (s *IdentityService) ForgotPassword(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)
	now := s.Clock.now()

	user, err := s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("lookup email: %w", err)
	}

	token, err := s.Tokens.IssueOneTimeCode(jwtx.PurposeReset)
	if err != nil {
		return fmt.Errorf("reset token: %w", err)
	}
	if err := s.Store.Users().SetResetToken(ctx, user.ID, token.Digest, token.ExpiresAt, now); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	sent := deliver(ctx, s.Mail, mail.Message{
		Kind: mail.KindResetPassword,
		To:   user.Email,
		Data: mail.ResetPassword{
			Name:      user.FirstName,
			Link:      frontendLink(s.FrontendURL, "reset-password", token.Code),
			ExpiresIn: ResetTokenTTL,
		},
	})

	log.Info("password reset requested",
		slog.String("user_id", user.ID),
		slog.Bool("email_sent", sent),
	)
	return nil
}

// ResetPassword sets a new password using a reset token. The token is
// consumed in the same statement that swaps the hash, so it works once.
func (s *IdentityService) ResetPassword(ctx context.Context, token, newPassword string) error {
	log := slogx.FromContext(ctx)
	now := s.Clock.now()

	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidOrExpiredToken
	}
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.Store.Users().ConsumeResetToken(ctx, cryptox.FingerprintToken(token), hash, now)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("reset token rejected")
			return ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	log.Info("password reset", slog.String("user_id", userID))
	return nil
}

// ChangePassword replaces the password of a signed in user after checking
// the current one. Accounts created through a provider have no password to
// change and must use the reset flow.
func (s *IdentityService) ChangePassword(ctx context.Context, userID, current, next string) error {
	log := slogx.FromContext(ctx)
	now := s.Clock.now()

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}
	if !user.HasPassword() {
		return ErrNoPassword
	}
	if err := cryptox.VerifyPassword(current, user.PasswordHash); err != nil {
		log.Info("password change rejected", slog.String("user_id", userID))
		return ErrInvalidCredentials
	}
	if err := domain.ValidatePassword(next); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash, now); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	log.Info("password changed", slog.String("user_id", userID))
	return nil
}
