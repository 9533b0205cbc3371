package scribe_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/scribe/pkg/scribesdk"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginAndMe(t *testing.T) {
	baseURL, cleanup := setupScribeContainer(t)
	defer cleanup()

	client := scribesdk.NewSDKClient(baseURL)
	email := uniqueEmail(t, "Alice")

	session, reg := registerUser(t, client, "Alice", email)
	require.NotNil(t, reg.VerificationSent)
	require.False(t, reg.User.EmailVerified)
	require.True(t, reg.User.HasPassword)
	require.Equal(t, "incomplete", reg.User.OnboardingStatus)
	require.Equal(t, 1, reg.User.OnboardingStep)

	me, err := session.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, me.ID)
	require.Equal(t, reg.User.Email, me.Email)

	// Login is case insensitive on the email.
	login, err := client.AuthenticateWithPassword(t.Context(), email, testPassword)
	require.NoError(t, err)
	me, err = login.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, me.ID)
	require.NotNil(t, me.LastLoginAt)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	baseURL, cleanup := setupScribeContainer(t)
	defer cleanup()

	client := scribesdk.NewSDKClient(baseURL)
	email := uniqueEmail(t, "dup")
	registerUser(t, client, "First", email)

	_, err := client.Register(t.Context(), scribesdk.RegisterRequest{
		FirstName: "Second",
		LastName:  "Tester",
		Email:     email,
		Password:  testPassword,
	})
	assertAPIError(t, err, scribesdk.ErrDuplicateEmail)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	baseURL, cleanup := setupScribeContainer(t)
	defer cleanup()

	client := scribesdk.NewSDKClient(baseURL)
	email := uniqueEmail(t, "login")
	registerUser(t, client, "Login", email)

	_, err := client.Login(t.Context(), scribesdk.LoginRequest{Email: email, Password: "wrong-password"})
	assertAPIError(t, err, scribesdk.ErrInvalidCredentials)

	_, err = client.Login(t.Context(), scribesdk.LoginRequest{Email: uniqueEmail(t, "nobody"), Password: testPassword})
	assertAPIError(t, err, scribesdk.ErrInvalidCredentials)
}

func TestRefreshKeepsRefreshToken(t *testing.T) {
	baseURL, cleanup := setupScribeContainer(t)
	defer cleanup()

	client := scribesdk.NewSDKClient(baseURL)
	_, reg := registerUser(t, client, "Refresh", uniqueEmail(t, "refresh"))

	refreshed, err := client.Refresh(t.Context(), reg.RefreshToken)
	require.NoError(t, err)
	assertTokenResponse(t, &refreshed.TokenResponse)
	require.Equal(t, reg.RefreshToken, refreshed.RefreshToken)
	require.Equal(t, reg.User.ID, refreshed.User.ID)

	// An access token is not a refresh token.
	_, err = client.Refresh(t.Context(), reg.AccessToken)
	assertAPIError(t, err, scribesdk.ErrInvalidToken)
}

func TestSecuredRoutesRequireToken(t *testing.T) {
	baseURL, cleanup := setupScribeContainer(t)
	defer cleanup()

	client := scribesdk.NewSDKClient(baseURL)
	_, reg := registerUser(t, client, "Bearer", uniqueEmail(t, "bearer"))

	anonymous := client.NewSessionFromTokens("not-a-jwt", "", 3600)
	_, err := anonymous.Me(t.Context())
	assertAPIError(t, err, scribesdk.ErrInvalidToken)

	// A refresh token must not open secured routes.
	wrongPurpose := client.NewSessionFromTokens(reg.RefreshToken, "", 3600)
	_, err = wrongPurpose.Me(t.Context())
	assertAPIError(t, err, scribesdk.ErrInvalidToken)
}

func TestForgotPasswordIsUniform(t *testing.T) {
	baseURL, cleanup := setupScribeContainer(t)
	defer cleanup()

	client := scribesdk.NewSDKClient(baseURL)
	email := uniqueEmail(t, "forgot")
	registerUser(t, client, "Forgot", email)

	known, err := client.ForgotPassword(t.Context(), email)
	require.NoError(t, err)
	unknown, err := client.ForgotPassword(t.Context(), uniqueEmail(t, "unknown"))
	require.NoError(t, err)
	require.Equal(t, known.Message, unknown.Message)

	_, err = client.ResetPassword(t.Context(), "made-up-token", "N3w-password!")
	assertAPIError(t, err, scribesdk.ErrInvalidOrExpiredToken)
}

func TestProfilePreferencesAndPassword(t *testing.T) {
	baseURL, cleanup := setupScribeContainer(t)
	defer cleanup()

	client := scribesdk.NewSDKClient(baseURL)
	email := uniqueEmail(t, "profile")
	session, _ := registerUser(t, client, "Profile", email)

	user, err := session.UpdateProfile(t.Context(), scribesdk.UpdateProfileRequest{
		FirstName:    "Renamed",
		LastName:     "Person",
		MobileNumber: "+49 151 12345678",
	})
	require.NoError(t, err)
	require.Equal(t, "Renamed", user.FirstName)
	require.Equal(t, "+4915112345678", user.MobileNumber)

	user, err = session.UpdatePreferences(t.Context(), map[string]any{"digest": "weekly"})
	require.NoError(t, err)
	require.Equal(t, "weekly", user.Preferences["digest"])

	err = session.ChangePassword(t.Context(), "not-my-password", "N3w-password!")
	assertAPIError(t, err, scribesdk.ErrInvalidCredentials)

	err = session.ChangePassword(t.Context(), testPassword, "N3w-password!")
	require.NoError(t, err)

	_, err = client.AuthenticateWithPassword(t.Context(), email, "N3w-password!")
	require.NoError(t, err)
}

func TestVerifyEmailRejectsWrongCode(t *testing.T) {
	baseURL, cleanup := setupScribeContainer(t)
	defer cleanup()

	client := scribesdk.NewSDKClient(baseURL)
	session, _ := registerUser(t, client, "Verify", uniqueEmail(t, "verify"))

	_, err := session.VerifyEmail(t.Context(), "000000")
	var apiErr *scribesdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	resend, err := session.ResendVerification(t.Context())
	require.NoError(t, err)
	require.True(t, resend.Sent)
}

func TestUnconfiguredProviderIsNotFound(t *testing.T) {
	baseURL, cleanup := setupScribeContainer(t)
	defer cleanup()

	client := scribesdk.NewSDKClient(baseURL)
	noRedirect := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	resp, err := noRedirect.Get(client.OAuthStartURL("google"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
