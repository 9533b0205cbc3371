package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/scribe/internal/scribe/service"
	"github.com/aussiebroadwan/scribe/pkg/httpx"
	"github.com/aussiebroadwan/scribe/pkg/jwtx"
	"github.com/aussiebroadwan/scribe/pkg/scribesdk"
	"github.com/aussiebroadwan/scribe/pkg/slogx"
)

// forgotPasswordMessage is returned whether or not the email is registered.
const forgotPasswordMessage = "If an account exists for that email, a password reset link has been sent."

type AuthHandler struct {
	Identity *service.IdentityService
	Tokens   *service.TokenService
	Users    *service.UserService
	Clock    func() time.Time
}

func (h *AuthHandler) now() time.Time {
	if h.Clock == nil {
		return time.Now()
	}
	return h.Clock()
}

func (h *AuthHandler) writeAuth(w http.ResponseWriter, status int, res service.AuthResult, sent *bool) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, status, scribesdk.AuthResponse{
		TokenResponse:    toTokenResponse(res.Tokens, h.now()),
		User:             toUserResponse(res.User),
		VerificationSent: sent,
	})
}

// Register creates a password account.
//
//	@Summary		Register with email and password
//	@Description	Creates an account, sends a six digit verification code and signs the user in.
//	@Description	The account can be used before the email is verified.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		scribesdk.RegisterRequest	true	"Account details"
//	@Success		201		{object}	scribesdk.AuthResponse
//	@Failure		400		{object}	scribesdk.ErrorResponse	"Invalid request or value"
//	@Failure		409		{object}	scribesdk.ErrorResponse	"Email already registered"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req scribesdk.RegisterRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	res, err := h.Identity.Register(r.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "register")
		return
	}

	sent := res.VerificationSent
	h.writeAuth(w, http.StatusCreated, res, &sent)
}

// Login signs in with email and password.
//
//	@Summary		Log in with email and password
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		scribesdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	scribesdk.AuthResponse
//	@Failure		400		{object}	scribesdk.ErrorResponse	"Invalid request"
//	@Failure		401		{object}	scribesdk.ErrorResponse	"Invalid credentials"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req scribesdk.LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	res, err := h.Identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "login")
		return
	}
	h.writeAuth(w, http.StatusOK, res, nil)
}

// Refresh exchanges a refresh token for a new access token.
//
//	@Summary		Refresh the access token
//	@Description	The refresh token is returned unchanged and keeps its original expiry.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		scribesdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	scribesdk.AuthResponse
//	@Failure		401		{object}	scribesdk.ErrorResponse	"Invalid refresh token"
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req scribesdk.RefreshRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	pair, err := h.Tokens.Refresh(ctx, req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err, "refresh")
		return
	}

	userID, err := h.Tokens.Verify(pair.AccessToken, jwtx.PurposeAccess)
	if err != nil {
		writeServiceError(w, r, err, "refresh")
		return
	}
	user, err := h.Users.GetUserByID(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err, "refresh")
		return
	}

	h.writeAuth(w, http.StatusOK, service.AuthResult{User: user, Tokens: pair}, nil)
}

// ForgotPassword mails a reset link when the email is registered.
//
//	@Summary		Request a password reset
//	@Description	Always answers with the same message so the endpoint cannot be used to probe for accounts.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		scribesdk.ForgotPasswordRequest	true	"Email"
//	@Success		200		{object}	scribesdk.MessageResponse
//	@Failure		400		{object}	scribesdk.ErrorResponse	"Invalid request"
//	@Router			/v1/auth/forgot-password [post].
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req scribesdk.ForgotPasswordRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.Identity.ForgotPassword(r.Context(), req.Email); err != nil {
		slogx.FromContext(r.Context()).Error("forgot password failed", "err", err)
	}
	httpx.WriteJSON(w, http.StatusOK, scribesdk.MessageResponse{Message: forgotPasswordMessage})
}

// ResetPassword sets a new password using a reset token.
//
//	@Summary		Reset the password
//	@Description	The token is single use and expires one hour after it was issued.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			token	path		string							true	"Reset token"
//	@Param			body	body		scribesdk.ResetPasswordRequest	true	"New password"
//	@Success		200		{object}	scribesdk.MessageResponse
//	@Failure		400		{object}	scribesdk.ErrorResponse	"Invalid or expired token"
//	@Router			/v1/auth/reset-password/{token} [post].
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req scribesdk.ResetPasswordRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.Identity.ResetPassword(r.Context(), r.PathValue("token"), req.Password); err != nil {
		writeServiceError(w, r, err, "reset password")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, scribesdk.MessageResponse{Message: "Password has been reset."})
}

// VerifyEmail confirms the caller's email with the mailed code.
//
//	@Summary		Verify email address
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		scribesdk.VerifyEmailRequest	true	"Six digit code"
//	@Success		200		{object}	scribesdk.UserResponse
//	@Failure		400		{object}	scribesdk.ErrorResponse	"Invalid or expired code"
//	@Failure		401		{object}	scribesdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		409		{object}	scribesdk.ErrorResponse	"Already verified"
//	@Router			/v1/auth/verify-email [post].
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req scribesdk.VerifyEmailRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user, err := h.Identity.VerifyEmail(r.Context(), userID, req.Code)
	if err != nil {
		// A wrong code is reported as 400 rather than 401.
		if errors.Is(err, service.ErrInvalidToken) {
			scribesdk.ErrInvalidCode.WriteError(w)
			return
		}
		writeServiceError(w, r, err, "verify email")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// ResendVerification issues a fresh verification code.
//
//	@Summary		Resend the verification code
//	@Description	Any earlier code stops working.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	scribesdk.ResendVerificationResponse
//	@Failure		401	{object}	scribesdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		409	{object}	scribesdk.ErrorResponse	"Already verified"
//	@Router			/v1/auth/resend-verification [post].
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	sent, err := h.Identity.ResendVerification(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, "resend verification")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, scribesdk.ResendVerificationResponse{Sent: sent})
}
