package http

import (
	"net/http"

	"github.com/aussiebroadwan/scribe/internal/scribe/service"
	"github.com/aussiebroadwan/scribe/pkg/httpx"
	"github.com/aussiebroadwan/scribe/pkg/scribesdk"
)

type UserHandler struct {
	Users    *service.UserService
	Identity *service.IdentityService
}

// Me returns the authenticated user.
//
//	@Summary		Get the current user
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	scribesdk.UserResponse
//	@Failure		401	{object}	scribesdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		404	{object}	scribesdk.ErrorResponse	"User not found"
//	@Router			/v1/users/me [get].
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	user, err := h.Users.GetUserByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, "get user")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateProfile replaces the caller's name and mobile number.
//
//	@Summary		Update profile
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		scribesdk.UpdateProfileRequest	true	"Profile"
//	@Success		200		{object}	scribesdk.UserResponse
//	@Failure		400		{object}	scribesdk.ErrorResponse	"Invalid request or value"
//	@Failure		401		{object}	scribesdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/users/me/profile [put].
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req scribesdk.UpdateProfileRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user, err := h.Users.UpdateProfile(r.Context(), userID, req.FirstName, req.LastName, req.MobileNumber)
	if err != nil {
		writeServiceError(w, r, err, "update profile")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdatePreferences replaces the caller's free-form preferences.
//
//	@Summary		Update preferences
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		scribesdk.UpdatePreferencesRequest	true	"Preferences"
//	@Success		200		{object}	scribesdk.UserResponse
//	@Failure		400		{object}	scribesdk.ErrorResponse	"Invalid request or value"
//	@Failure		401		{object}	scribesdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/users/me/preferences [put].
func (h *UserHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req scribesdk.UpdatePreferencesRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user, err := h.Users.UpdatePreferences(r.Context(), userID, req.Preferences)
	if err != nil {
		writeServiceError(w, r, err, "update preferences")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// ChangePassword replaces the password after checking the current one.
//
//	@Summary		Change password
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Param			body	body	scribesdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		204
//	@Failure		400	{object}	scribesdk.ErrorResponse	"Invalid request or value"
//	@Failure		401	{object}	scribesdk.ErrorResponse	"Wrong current password"
//	@Failure		409	{object}	scribesdk.ErrorResponse	"Account has no password"
//	@Router			/v1/users/me/password [put].
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req scribesdk.ChangePasswordRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.Identity.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err, "change password")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
