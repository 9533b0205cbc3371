package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/scribe/internal/scribe/domain"
	"github.com/aussiebroadwan/scribe/internal/scribe/store"
	"github.com/aussiebroadwan/scribe/pkg/cryptox"
	"github.com/aussiebroadwan/scribe/pkg/jwtx"
	"github.com/aussiebroadwan/scribe/pkg/slogx"
)

// Lifetimes of the one-time secrets.
const (
	VerificationCodeTTL    = 30 * time.Minute
	VerificationCodeDigits = 6
	ResetTokenTTL          = time.Hour
)

// TokenService mints and checks purpose-scoped tokens and one-time codes.
type TokenService struct {
	Keys       map[jwtx.Purpose]*jwtx.KeyManager
	Store      store.Store
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Clock      Clock
}

func (s *TokenService) keyFor(purpose jwtx.Purpose) (*jwtx.KeyManager, error) {
	km, ok := s.Keys[purpose]
	if !ok || km == nil {
		return nil, fmt.Errorf("no key manager for purpose %q", purpose)
	}
	return km, nil
}

// Issue signs a token binding purpose to subjectID for ttl.
func (s *TokenService) Issue(purpose jwtx.Purpose, subjectID string, ttl time.Duration) (string, jwtx.Claims, error) {
	km, err := s.keyFor(purpose)
	if err != nil {
		return "", jwtx.Claims{}, err
	}
	return km.Issue(subjectID, ttl, s.Clock.now())
}

// Verify returns the subject of token when it is valid for purpose. Every
// failure, including an unconfigured purpose, is ErrInvalidToken.
func (s *TokenService) Verify(token string, purpose jwtx.Purpose) (string, error) {
	km, err := s.keyFor(purpose)
	if err != nil {
		return "", ErrInvalidToken
	}
	claims, err := km.Verify(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims.Subject, nil
}

func (s *TokenService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *TokenService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

// IssuePair mints an access and refresh token for user.
func (s *TokenService) IssuePair(user domain.User) (domain.TokenPair, error) {
	access, accessClaims, err := s.Issue(jwtx.PurposeAccess, user.ID, s.accessTTL())
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, refreshClaims, err := s.Issue(jwtx.PurposeRefresh, user.ID, s.refreshTTL())
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		AccessExpiresAt:  accessClaims.ExpiresAt.Time,
		RefreshExpiresAt: refreshClaims.ExpiresAt.Time,
	}, nil
}

// Refresh exchanges a refresh token for a new access token. The refresh token
// itself is returned unchanged and keeps its original expiry.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	log := slogx.FromContext(ctx)

	km, err := s.keyFor(jwtx.PurposeRefresh)
	if err != nil {
		return domain.TokenPair{}, ErrInvalidToken
	}
	claims, err := km.Verify(refreshToken)
	if err != nil {
		log.Info("refresh token rejected", slog.Any("error", err))
		return domain.TokenPair{}, ErrInvalidToken
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("refresh token for unknown user", slog.String("user_id", claims.Subject))
			return domain.TokenPair{}, ErrInvalidToken
		}
		return domain.TokenPair{}, fmt.Errorf("load user: %w", err)
	}

	access, accessClaims, err := s.Issue(jwtx.PurposeAccess, user.ID, s.accessTTL())
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refreshToken,
		TokenType:        "Bearer",
		AccessExpiresAt:  accessClaims.ExpiresAt.Time,
		RefreshExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// IssueOneTimeCode generates a single use secret for purpose. Verification
// codes are six decimal digits; reset and invite tokens are 256-bit
// base64url strings.
func (s *TokenService) IssueOneTimeCode(purpose jwtx.Purpose) (domain.OneTimeCode, error) {
	var (
		code string
		ttl  time.Duration
		err  error
	)
	switch purpose {
	case jwtx.PurposeVerify:
		code, err = cryptox.GenerateNumericCode(VerificationCodeDigits)
		ttl = VerificationCodeTTL
	case jwtx.PurposeReset:
		code, err = cryptox.GenerateToken(cryptox.TokenSize256)
		ttl = ResetTokenTTL
	case jwtx.PurposeInvite:
		code, err = cryptox.GenerateToken(cryptox.TokenSize256)
		ttl = domain.InviteTTL
	default:
		return domain.OneTimeCode{}, fmt.Errorf("no one-time code for purpose %q", purpose)
	}
	if err != nil {
		return domain.OneTimeCode{}, err
	}

	return domain.OneTimeCode{
		Code:      code,
		Digest:    cryptox.FingerprintToken(code),
		ExpiresAt: s.Clock.now().Add(ttl),
	}, nil
}
