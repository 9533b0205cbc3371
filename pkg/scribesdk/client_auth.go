package scribesdk

import (
	"context"
	"net/http"
	"net/url"
)

// Register creates a password account. The returned tokens are usable right
// away; the email still has to be verified with the mailed code.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	return call[AuthResponse](ctx, c, http.MethodPost, "/v1/auth/register", req, http.StatusCreated)
}

// Login exchanges an email and password for a token pair.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	return call[AuthResponse](ctx, c, http.MethodPost, "/v1/auth/login", req, http.StatusOK)
}

// Refresh exchanges a refresh token for a new access token. The refresh
// token in the response is the one that was sent.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	return call[AuthResponse](ctx, c, http.MethodPost, "/v1/auth/refresh",
		RefreshRequest{RefreshToken: refreshToken}, http.StatusOK)
}

// ForgotPassword asks for a reset link. The response is the same whether or
// not the email belongs to an account.
func (c *SDKClient) ForgotPassword(ctx context.Context, email string) (*MessageResponse, error) {
	return call[MessageResponse](ctx, c, http.MethodPost, "/v1/auth/forgot-password",
		ForgotPasswordRequest{Email: email}, http.StatusOK)
}

// ResetPassword sets a new password with the token from the reset link.
func (c *SDKClient) ResetPassword(ctx context.Context, token, password string) (*MessageResponse, error) {
	return call[MessageResponse](ctx, c, http.MethodPost, "/v1/auth/reset-password/"+url.PathEscape(token),
		ResetPasswordRequest{Password: password}, http.StatusOK)
}

// AcceptInvitation redeems an invitation without signing in. The membership
// is bound to the account once one registers with the invited email.
func (c *SDKClient) AcceptInvitation(ctx context.Context, token string) (*AcceptInvitationResponse, error) {
	return call[AcceptInvitationResponse](ctx, c, http.MethodPost,
		"/v1/invitations/"+url.PathEscape(token)+"/accept", nil, http.StatusOK)
}

// OAuthStartURL is where a browser is sent to sign in with provider
// ("google" or "linkedin").
func (c *SDKClient) OAuthStartURL(provider string) string {
	return c.url("/v1/auth/" + url.PathEscape(provider))
}
