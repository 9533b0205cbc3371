package scribesdk

import (
	"context"
	"net/http"
)

// ============================================================================
// Account
// ============================================================================

// Me returns the signed in user.
func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	return authCall[UserResponse](ctx, s, http.MethodGet, "/v1/users/me", nil, http.StatusOK)
}

// UpdateProfile replaces the name and mobile number.
func (s *Session) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*UserResponse, error) {
	return authCall[UserResponse](ctx, s, http.MethodPut, "/v1/users/me/profile", req, http.StatusOK)
}

// UpdatePreferences replaces the preferences map.
func (s *Session) UpdatePreferences(ctx context.Context, prefs map[string]any) (*UserResponse, error) {
	return authCall[UserResponse](ctx, s, http.MethodPut, "/v1/users/me/preferences",
		UpdatePreferencesRequest{Preferences: prefs}, http.StatusOK)
}

// ChangePassword replaces the password after checking the current one.
func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	return authExec(ctx, s, http.MethodPut, "/v1/users/me/password",
		ChangePasswordRequest{CurrentPassword: current, NewPassword: next}, http.StatusNoContent, nil)
}

// ============================================================================
// Email Verification
// ============================================================================

// VerifyEmail submits the six digit code from the verification mail.
func (s *Session) VerifyEmail(ctx context.Context, code string) (*UserResponse, error) {
	return authCall[UserResponse](ctx, s, http.MethodPost, "/v1/auth/verify-email",
		VerifyEmailRequest{Code: code}, http.StatusOK)
}

// ResendVerification mails a fresh verification code.
func (s *Session) ResendVerification(ctx context.Context) (*ResendVerificationResponse, error) {
	return authCall[ResendVerificationResponse](ctx, s, http.MethodPost, "/v1/auth/resend-verification",
		nil, http.StatusOK)
}
