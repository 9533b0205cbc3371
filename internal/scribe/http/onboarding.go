package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/scribe/internal/scribe/domain"
	"github.com/aussiebroadwan/scribe/internal/scribe/service"
	"github.com/aussiebroadwan/scribe/pkg/httpx"
	"github.com/aussiebroadwan/scribe/pkg/scribesdk"
)

type OnboardingHandler struct {
	Onboarding *service.OnboardingService
}

// respond writes the onboarding status produced by op.
func (h *OnboardingHandler) respond(w http.ResponseWriter, r *http.Request, name string, op func(ctx context.Context, userID string) (domain.User, error)) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	user, err := op(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, name)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOnboardingStatus(user))
}

// Status returns the onboarding progress.
//
//	@Summary		Get onboarding status
//	@Tags			Onboarding
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	scribesdk.OnboardingStatusResponse
//	@Failure		401	{object}	scribesdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/onboarding/status [get].
func (h *OnboardingHandler) Status(w http.ResponseWriter, r *http.Request) {
	httpx.NoCache(w)
	h.respond(w, r, "onboarding status", h.Onboarding.Status)
}

// UpdateStep moves to any step between 1 and 9.
//
//	@Summary		Set the current step
//	@Tags			Onboarding
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		scribesdk.UpdateStepRequest	true	"Step"
//	@Success		200		{object}	scribesdk.OnboardingStatusResponse
//	@Failure		400		{object}	scribesdk.ErrorResponse	"Step out of range"
//	@Router			/v1/onboarding/step [put].
func (h *OnboardingHandler) UpdateStep(w http.ResponseWriter, r *http.Request) {
	var req scribesdk.UpdateStepRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	h.respond(w, r, "update onboarding step", func(ctx context.Context, userID string) (domain.User, error) {
		return h.Onboarding.UpdateStep(ctx, userID, *req.Step)
	})
}

// SetValue records one of the enumerated answers. The path segment selects
// which one.
//
//	@Summary		Record an enumerated answer
//	@Tags			Onboarding
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			field	path		string							true	"Answer"	Enums(workspace-type, preferred-theme, post-style, language)
//	@Param			body	body		scribesdk.OnboardingValueRequest	true	"Value"
//	@Success		200		{object}	scribesdk.OnboardingStatusResponse
//	@Failure		400		{object}	scribesdk.ErrorResponse	"Invalid value"
//	@Router			/v1/onboarding/{field} [put].
func (h *OnboardingHandler) SetValue(set func(context.Context, string, string) (domain.User, error), name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scribesdk.OnboardingValueRequest
		if !decodeRequest(w, r, &req) {
			return
		}
		h.respond(w, r, name, func(ctx context.Context, userID string) (domain.User, error) {
			return set(ctx, userID, req.Value)
		})
	}
}

// SetPostFrequency records the number of posts per month.
//
//	@Summary		Record post frequency
//	@Tags			Onboarding
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		scribesdk.PostFrequencyRequest	true	"Posts per month, 1 to 30"
//	@Success		200		{object}	scribesdk.OnboardingStatusResponse
//	@Failure		400		{object}	scribesdk.ErrorResponse	"Invalid value"
//	@Router			/v1/onboarding/post-frequency [put].
func (h *OnboardingHandler) SetPostFrequency(w http.ResponseWriter, r *http.Request) {
	var req scribesdk.PostFrequencyRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	h.respond(w, r, "set post frequency", func(ctx context.Context, userID string) (domain.User, error) {
		return h.Onboarding.SetPostFrequency(ctx, userID, req.PostFrequency)
	})
}

// SetWebsiteLink records the website link. An empty link clears it.
//
//	@Summary		Record website link
//	@Tags			Onboarding
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		scribesdk.WebsiteLinkRequest	true	"Absolute http or https URL"
//	@Success		200		{object}	scribesdk.OnboardingStatusResponse
//	@Failure		400		{object}	scribesdk.ErrorResponse	"Invalid value"
//	@Router			/v1/onboarding/website-link [put].
func (h *OnboardingHandler) SetWebsiteLink(w http.ResponseWriter, r *http.Request) {
	var req scribesdk.WebsiteLinkRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	h.respond(w, r, "set website link", func(ctx context.Context, userID string) (domain.User, error) {
		return h.Onboarding.SetWebsiteLink(ctx, userID, req.WebsiteLink)
	})
}

// SetInspirationProfiles replaces the list of inspiration profiles.
//
//	@Summary		Record inspiration profiles
//	@Tags			Onboarding
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		scribesdk.InspirationProfilesRequest	true	"Up to 10 profiles"
//	@Success		200		{object}	scribesdk.OnboardingStatusResponse
//	@Failure		400		{object}	scribesdk.ErrorResponse	"Invalid value"
//	@Router			/v1/onboarding/inspiration-profiles [put].
func (h *OnboardingHandler) SetInspirationProfiles(w http.ResponseWriter, r *http.Request) {
	var req scribesdk.InspirationProfilesRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	h.respond(w, r, "set inspiration profiles", func(ctx context.Context, userID string) (domain.User, error) {
		return h.Onboarding.SetInspirationProfiles(ctx, userID, req.Profiles)
	})
}

// SetUserInfo records the name and mobile number step.
//
//	@Summary		Record user info
//	@Tags			Onboarding
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		scribesdk.UpdateProfileRequest	true	"Name and mobile number"
//	@Success		200		{object}	scribesdk.OnboardingStatusResponse
//	@Failure		400		{object}	scribesdk.ErrorResponse	"Invalid value"
//	@Router			/v1/onboarding/user-info [put].
func (h *OnboardingHandler) SetUserInfo(w http.ResponseWriter, r *http.Request) {
	var req scribesdk.UpdateProfileRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	h.respond(w, r, "set user info", func(ctx context.Context, userID string) (domain.User, error) {
		return h.Onboarding.SetUserInfo(ctx, userID, req.FirstName, req.LastName, req.MobileNumber)
	})
}

// Complete creates the workspace described by the answers.
//
//	@Summary		Complete onboarding
//	@Description	Creates the user's first workspace from the recorded answers. Allowed once.
//	@Tags			Onboarding
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		scribesdk.CompleteOnboardingRequest	true	"Workspace name"
//	@Success		201		{object}	scribesdk.CompleteOnboardingResponse
//	@Failure		400		{object}	scribesdk.ErrorResponse	"Workspace type not chosen or invalid name"
//	@Failure		409		{object}	scribesdk.ErrorResponse	"Onboarding already completed"
//	@Router			/v1/onboarding/complete [post].
func (h *OnboardingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req scribesdk.CompleteOnboardingRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user, ws, err := h.Onboarding.Complete(r.Context(), userID, req.WorkspaceName)
	if err != nil {
		writeServiceError(w, r, err, "complete onboarding")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, scribesdk.CompleteOnboardingResponse{
		User:      toUserResponse(user),
		Workspace: toWorkspaceResponse(ws, userID),
	})
}
