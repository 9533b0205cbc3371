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

// VerifyEmail consumes the verification code of userID. A wrong, expired or
// already used code is ErrInvalidToken.
func (s *IdentityService) VerifyEmail(ctx context.Context, userID, code string) (domain.User, error) {
	log := slogx.FromContext(ctx)
	now := s.Clock.now()

	code = strings.TrimSpace(code)
	if code == "" {
		return domain.User{}, ErrInvalidToken
	}

	err := s.Store.Users().ConsumeVerificationCode(ctx, userID, cryptox.FingerprintToken(code), now)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("verification code rejected", slog.String("user_id", userID))
			return domain.User{}, ErrInvalidToken
		}
		return domain.User{}, fmt.Errorf("consume verification code: %w", err)
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}

	log.Info("email verified", slog.String("user_id", userID))
	return user, nil
}

// ResendVerification rotates the verification code and mails it again. The
// boolean reports whether the mail went out.
func (s *IdentityService) ResendVerification(ctx context.Context, userID string) (bool, error) {
	now := s.Clock.now()

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("load user: %w", err)
	}
	if user.EmailVerified {
		return false, ErrAlreadyVerified
	}

	code, err := s.Tokens.IssueOneTimeCode(jwtx.PurposeVerify)
	if err != nil {
		return false, fmt.Errorf("verification code: %w", err)
	}
	if err := s.Store.Users().SetVerificationCode(ctx, user.ID, code.Digest, code.ExpiresAt, now); err != nil {
		return false, fmt.Errorf("store verification code: %w", err)
	}

	return deliver(ctx, s.Mail, mail.Message{
		Kind: mail.KindVerifyEmail,
		To:   user.Email,
		Data: mail.VerifyEmail{Name: user.FirstName, Code: code.Code, ExpiresIn: VerificationCodeTTL},
	}), nil
}
