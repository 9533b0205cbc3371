package http

import (
	"net/http"

	"github.com/aussiebroadwan/scribe/internal/scribe/service"
	"github.com/aussiebroadwan/scribe/pkg/httpx"
	"github.com/aussiebroadwan/scribe/pkg/scribesdk"
)

type InvitationHandler struct {
	Workspaces *service.WorkspaceService
}

// Accept redeems an invitation token.
//
//	@Summary		Accept an invitation
//	@Description	Works with or without an access token. A signed in caller is bound to the invitation;
//	@Description	an anonymous acceptance is bound when the invitee registers with the invited email.
//	@Tags			Invitations
//	@Security		BearerAuth
//	@Produce		json
//	@Param			token	path		string	true	"Invitation token"
//	@Success		200		{object}	scribesdk.AcceptInvitationResponse
//	@Failure		404		{object}	scribesdk.ErrorResponse	"Invalid or expired invitation"
//	@Failure		409		{object}	scribesdk.ErrorResponse	"Already a member"
//	@Router			/v1/invitations/{token}/accept [post].
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	caller, _ := httpx.UserIDFromContext(r.Context())

	m, err := h.Workspaces.AcceptInvitation(r.Context(), r.PathValue("token"), caller)
	if err != nil {
		writeServiceError(w, r, err, "accept invitation")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, scribesdk.AcceptInvitationResponse{
		WorkspaceID: m.WorkspaceID,
		Member:      toMemberResponse(m),
	})
}
