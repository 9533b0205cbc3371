package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/scribe/internal/scribe/domain"
	"github.com/aussiebroadwan/scribe/internal/scribe/mail"
	"github.com/aussiebroadwan/scribe/internal/scribe/store"
	"github.com/aussiebroadwan/scribe/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestRegister_VerifyEmailScenario(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)

	res, err := e.identity.Register(ctx, "Alice", "Smith", "alice@x.com", "pw12345678")
	require.NoError(t, err)
	require.True(t, res.VerificationSent)
	require.False(t, res.User.EmailVerified)
	require.Equal(t, domain.OnboardingIncomplete, res.User.OnboardingStatus)
	require.Equal(t, 1, res.User.OnboardingStep)

	sub, err := e.tokens.Verify(res.Tokens.AccessToken, jwtx.PurposeAccess)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, sub)

	code := e.verificationCode(t, "alice@x.com")
	require.Len(t, code, 6)

	user, err := e.identity.VerifyEmail(ctx, res.User.ID, code)
	require.NoError(t, err)
	require.True(t, user.EmailVerified)

	_, err = e.identity.VerifyEmail(ctx, res.User.ID, code)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = e.identity.ResendVerification(ctx, res.User.ID)
	require.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	e.register(t, "Alice", "alice@x.com", "pw12345678")

	tests := []struct {
		name                          string
		first, last, email, password string
		wantErr                       error
	}{
		{"duplicate email", "A", "B", "alice@x.com", "pw12345678", ErrDuplicateEmail},
		{"duplicate email other case", "A", "B", " ALICE@X.com ", "pw12345678", ErrDuplicateEmail},
		{"short password", "A", "B", "new@x.com", "short", ErrInvalidValue},
		{"bad email", "A", "B", "not-an-email", "pw12345678", ErrInvalidValue},
		{"missing first name", " ", "B", "new@x.com", "pw12345678", ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.identity.Register(ctx, tt.first, tt.last, tt.email, tt.password)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegister_MailFailureDoesNotFailRegistration(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	e.mail.SetErr(errors.New("smtp down"))

	res, err := e.identity.Register(ctx, "Bob", "Jones", "bob@x.com", "pw12345678")
	require.NoError(t, err)
	require.False(t, res.VerificationSent)
	require.NotEmpty(t, res.Tokens.AccessToken)

	// The code was still stored and can be used once mail recovers.
	code := e.verificationCode(t, "bob@x.com")
	_, err = e.identity.VerifyEmail(ctx, res.User.ID, code)
	require.NoError(t, err)
}

func TestVerifyEmail_ExpiredAndRotated(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	user := e.register(t, "Carol", "carol@x.com", "pw12345678")
	first := e.verificationCode(t, "carol@x.com")

	e.clock.Advance(VerificationCodeTTL + time.Second)
	_, err := e.identity.VerifyEmail(ctx, user.ID, first)
	require.ErrorIs(t, err, ErrInvalidToken)

	sent, err := e.identity.ResendVerification(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, sent)
	second := e.verificationCode(t, "carol@x.com")

	if first != second {
		_, err = e.identity.VerifyEmail(ctx, user.ID, first)
		require.ErrorIs(t, err, ErrInvalidToken)
	}
	_, err = e.identity.VerifyEmail(ctx, user.ID, second)
	require.NoError(t, err)

	_, err = e.identity.ResendVerification(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	user := e.register(t, "Dave", "dave@x.com", "pw12345678")

	res, err := e.identity.Login(ctx, "  DAVE@x.com", "pw12345678")
	require.NoError(t, err)
	require.Equal(t, user.ID, res.User.ID)
	require.NotNil(t, res.User.LastLoginAt)

	stored, err := e.users.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)

	_, err = e.identity.Login(ctx, "dave@x.com", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.identity.Login(ctx, "nobody@x.com", "pw12345678")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = e.identity.OAuthLogin(ctx, domain.ExternalProfile{
		Provider: domain.ProviderGoogle, ProviderID: "g-oauth-only", Email: "oauth@x.com",
	})
	require.NoError(t, err)
	_, err = e.identity.Login(ctx, "oauth@x.com", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestOAuthLogin_CreatesThenReusesUser(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	profile := domain.ExternalProfile{
		Provider:   domain.ProviderGoogle,
		ProviderID: "google-42",
		Email:      "bob@x.com",
		GivenName:  "Bob",
		FamilyName: "Builder",
	}

	first, err := e.identity.OAuthLogin(ctx, profile)
	require.NoError(t, err)
	require.True(t, first.Created)
	require.True(t, first.User.EmailVerified)
	require.False(t, first.User.HasPassword())
	require.Equal(t, domain.OnboardingIncomplete, first.User.OnboardingStatus)
	require.Equal(t, 1, first.User.OnboardingStep)

	// A changed email at the provider still resolves through the link.
	profile.Email = "bob.builder@x.com"
	second, err := e.identity.OAuthLogin(ctx, profile)
	require.NoError(t, err)
	require.False(t, second.Created)
	require.Equal(t, first.User.ID, second.User.ID)
}

func TestOAuthLogin_LinksExistingEmailAccount(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	user := e.register(t, "Erin", "erin@x.com", "pw12345678")
	_, err := e.identity.VerifyEmail(ctx, user.ID, e.verificationCode(t, "erin@x.com"))
	require.NoError(t, err)

	res, err := e.identity.OAuthLogin(ctx, domain.ExternalProfile{
		Provider: domain.ProviderLinkedIn, ProviderID: "li-1", Email: "Erin@X.com",
	})
	require.NoError(t, err)
	require.False(t, res.Created)
	require.Equal(t, user.ID, res.User.ID)
	require.True(t, res.User.EmailVerified)
	require.True(t, res.User.HasPassword())

	links, err := e.store.Identities().ListIdentitiesForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)

	// A second LinkedIn account with the same email signs in to the same
	// user and never replaces the link.
	res, err = e.identity.OAuthLogin(ctx, domain.ExternalProfile{
		Provider: domain.ProviderLinkedIn, ProviderID: "li-2", Email: "erin@x.com",
	})
	require.NoError(t, err)
	require.False(t, res.Created)
	require.Equal(t, user.ID, res.User.ID)

	links, err = e.store.Identities().ListIdentitiesForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, "li-1", links[0].ProviderID)
	_, err = e.store.Identities().GetIdentity(ctx, domain.ProviderLinkedIn, "li-2")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = e.identity.Login(ctx, "erin@x.com", "pw12345678")
	require.NoError(t, err)

	// Google is a different provider and links alongside.
	_, err = e.identity.OAuthLogin(ctx, domain.ExternalProfile{
		Provider: domain.ProviderGoogle, ProviderID: "g-1", Email: "erin@x.com",
	})
	require.NoError(t, err)
	links, err = e.store.Identities().ListIdentitiesForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)
}

func TestOAuthLogin_UnverifiedAccountLosesPassword(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	squatter := e.register(t, "Mallory", "olga@x.com", "squatter-pw")
	require.False(t, squatter.EmailVerified)
	require.NoError(t, e.identity.ForgotPassword(ctx, "olga@x.com"))
	token := e.resetToken(t, "olga@x.com")

	res, err := e.identity.OAuthLogin(ctx, domain.ExternalProfile{
		Provider: domain.ProviderGoogle, ProviderID: "g-olga", Email: "olga@x.com",
	})
	require.NoError(t, err)
	require.Equal(t, squatter.ID, res.User.ID)
	require.True(t, res.User.EmailVerified)
	require.False(t, res.User.HasPassword())

	stored, err := e.store.Users().GetUserByID(ctx, squatter.ID)
	require.NoError(t, err)
	require.True(t, stored.EmailVerified)
	require.False(t, stored.HasPassword())
	require.Empty(t, stored.ResetDigest)

	_, err = e.identity.Login(ctx, "olga@x.com", "squatter-pw")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.ErrorIs(t, e.identity.ResetPassword(ctx, token, "taken-back-1"), ErrInvalidOrExpiredToken)

	// The provider-backed owner can still set a password of their own.
	require.NoError(t, e.identity.ForgotPassword(ctx, "olga@x.com"))
	require.NoError(t, e.identity.ResetPassword(ctx, e.resetToken(t, "olga@x.com"), "owner-pw-123"))
	_, err = e.identity.Login(ctx, "olga@x.com", "owner-pw-123")
	require.NoError(t, err)
}

// losingStore makes every identity insert look like a lost race.
type losingStore struct{ store.Store }

func (s losingStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error { return fn(losingTx{tx}) })
}

type losingTx struct{ store.Tx }

func (t losingTx) Identities() store.Identities { return losingIdentities{t.Tx.Identities()} }

type losingIdentities struct{ store.Identities }

func (losingIdentities) LinkIdentity(context.Context, domain.Identity) error {
	return store.ErrAlreadyExists
}

func TestOAuthLogin_PersistentInsertRaceIsInternal(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	svc := *e.identity
	svc.Store = losingStore{e.store}

	_, err := svc.OAuthLogin(ctx, domain.ExternalProfile{
		Provider: domain.ProviderGoogle, ProviderID: "g-lost", Email: "lost@x.com",
	})
	require.Error(t, err)
	require.ErrorContains(t, err, "oauth login")
	require.NotErrorIs(t, err, ErrInvalidCredentials)

	// Every attempt rolled back.
	_, err = e.store.Users().GetUserByEmail(ctx, "lost@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestOAuthLogin_ConcurrentFirstSignIn(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	profile := domain.ExternalProfile{Provider: domain.ProviderGoogle, ProviderID: "g-race", Email: "race@x.com"}

	const workers = 4
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[string]int{}
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.identity.OAuthLogin(ctx, profile)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ids[res.User.ID]++
			}
		}()
	}
	wg.Wait()

	require.Len(t, ids, 1)
	for _, n := range ids {
		require.Equal(t, workers, n)
	}
}

func TestOAuthLogin_RejectsIncompleteProfile(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)

	_, err := e.identity.OAuthLogin(ctx, domain.ExternalProfile{Provider: domain.ProviderGoogle, Email: "x@x.com"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.identity.OAuthLogin(ctx, domain.ExternalProfile{Provider: "github", ProviderID: "1", Email: "x@x.com"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.identity.OAuthLogin(ctx, domain.ExternalProfile{Provider: domain.ProviderGoogle, ProviderID: "1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	e.register(t, "Frank", "frank@x.com", "pw12345678")

	require.NoError(t, e.identity.ForgotPassword(ctx, "unknown@x.com"))
	_, ok := e.mail.Last(mail.KindResetPassword, "unknown@x.com")
	require.False(t, ok)

	require.NoError(t, e.identity.ForgotPassword(ctx, "FRANK@x.com"))
	token := e.resetToken(t, "frank@x.com")

	require.ErrorIs(t, e.identity.ResetPassword(ctx, token, "short"), ErrInvalidValue)
	require.NoError(t, e.identity.ResetPassword(ctx, token, "new-password-1"))
	require.ErrorIs(t, e.identity.ResetPassword(ctx, token, "new-password-2"), ErrInvalidOrExpiredToken)

	_, err := e.identity.Login(ctx, "frank@x.com", "pw12345678")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.identity.Login(ctx, "frank@x.com", "new-password-1")
	require.NoError(t, err)
}

func TestPasswordReset_Expired(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	e.register(t, "Gina", "gina@x.com", "pw12345678")

	require.NoError(t, e.identity.ForgotPassword(ctx, "gina@x.com"))
	token := e.resetToken(t, "gina@x.com")

	e.clock.Advance(ResetTokenTTL + time.Second)
	require.ErrorIs(t, e.identity.ResetPassword(ctx, token, "new-password-1"), ErrInvalidOrExpiredToken)
	require.ErrorIs(t, e.identity.ResetPassword(ctx, "", "new-password-1"), ErrInvalidOrExpiredToken)
}

func TestPasswordReset_ConcurrentConsumeSucceedsOnce(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	e.register(t, "Hank", "hank@x.com", "pw12345678")
	require.NoError(t, e.identity.ForgotPassword(ctx, "hank@x.com"))
	token := e.resetToken(t, "hank@x.com")

	const workers = 4
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := e.identity.ResetPassword(ctx, token, "racing-password")
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	}
	require.Equal(t, 1, ok)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	user := e.register(t, "Ivy", "ivy@x.com", "pw12345678")

	require.ErrorIs(t, e.identity.ChangePassword(ctx, user.ID, "wrong", "another-pass"), ErrInvalidCredentials)
	require.ErrorIs(t, e.identity.ChangePassword(ctx, user.ID, "pw12345678", "short"), ErrInvalidValue)
	require.NoError(t, e.identity.ChangePassword(ctx, user.ID, "pw12345678", "another-pass"))

	_, err := e.identity.Login(ctx, "ivy@x.com", "another-pass")
	require.NoError(t, err)

	res, err := e.identity.OAuthLogin(ctx, domain.ExternalProfile{
		Provider: domain.ProviderGoogle, ProviderID: "g-ivy2", Email: "ivy2@x.com",
	})
	require.NoError(t, err)
	require.ErrorIs(t, e.identity.ChangePassword(ctx, res.User.ID, "", "another-pass"), ErrNoPassword)
	require.ErrorIs(t, e.identity.ChangePassword(ctx, "missing", "", "x"), ErrNotFound)
}

func TestUserService_ProfileAndPreferences(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	user := e.register(t, "Jack", "jack@x.com", "pw12345678")

	updated, err := e.users.UpdateProfile(ctx, user.ID, " Jacob ", "Black", "+49 151 12345678")
	require.NoError(t, err)
	require.Equal(t, "Jacob", updated.FirstName)
	require.Equal(t, "+4915112345678", updated.MobileNumber)

	_, err = e.users.UpdateProfile(ctx, user.ID, "Jacob", "Black", "call me")
	require.ErrorIs(t, err, ErrInvalidValue)
	_, err = e.users.UpdateProfile(ctx, "missing", "A", "B", "")
	require.ErrorIs(t, err, ErrNotFound)

	updated, err = e.users.UpdatePreferences(ctx, user.ID, map[string]any{"digest": "weekly", "beta": true})
	require.NoError(t, err)
	require.Equal(t, "weekly", updated.Preferences["digest"])
	require.Equal(t, true, updated.Preferences["beta"])
}
