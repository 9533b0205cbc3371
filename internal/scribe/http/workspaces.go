package http

import (
	"net/http"

	"github.com/aussiebroadwan/scribe/internal/scribe/domain"
	"github.com/aussiebroadwan/scribe/internal/scribe/service"
	"github.com/aussiebroadwan/scribe/pkg/httpx"
	"github.com/aussiebroadwan/scribe/pkg/scribesdk"
)

type WorkspaceHandler struct {
	Workspaces *service.WorkspaceService
}

// settingsFromRequest fills fields missing from s with the defaults.
func settingsFromRequest(s *scribesdk.WorkspaceSettings) *domain.WorkspaceSettings {
	if s == nil {
		return nil
	}
	out := domain.DefaultWorkspaceSettings()
	if s.PreferredTheme != "" {
		out.Theme = domain.Theme(s.PreferredTheme)
	}
	if s.DefaultPostStyle != "" {
		out.PostStyle = domain.PostStyle(s.DefaultPostStyle)
	}
	if s.DefaultLanguage != "" {
		out.Language = domain.Language(s.DefaultLanguage)
	}
	return &out
}

// Create makes a workspace owned by the caller.
//
//	@Summary		Create a workspace
//	@Description	Team workspaces start with the owner as an admin member. Missing settings take their defaults.
//	@Tags			Workspaces
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		scribesdk.CreateWorkspaceRequest	true	"Workspace"
//	@Success		201		{object}	scribesdk.WorkspaceResponse
//	@Failure		400		{object}	scribesdk.ErrorResponse	"Invalid request or value"
//	@Failure		403		{object}	scribesdk.ErrorResponse	"Email not verified"
//	@Router			/v1/workspaces [post].
func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req scribesdk.CreateWorkspaceRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	ws, err := h.Workspaces.Create(r.Context(), userID, req.Name, domain.WorkspaceType(req.Type), settingsFromRequest(req.Settings))
	if err != nil {
		writeServiceError(w, r, err, "create workspace")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toWorkspaceResponse(ws, userID))
}

// List returns the workspaces the caller owns or belongs to.
//
//	@Summary		List workspaces
//	@Tags			Workspaces
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	scribesdk.ListWorkspacesResponse
//	@Failure		401	{object}	scribesdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/workspaces [get].
func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	list, err := h.Workspaces.ListForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, "list workspaces")
		return
	}

	resp := scribesdk.ListWorkspacesResponse{Workspaces: make([]scribesdk.WorkspaceResponse, 0, len(list))}
	for _, ws := range list {
		resp.Workspaces = append(resp.Workspaces, toWorkspaceResponse(ws, userID))
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// Get returns one workspace.
//
//	@Summary		Get a workspace
//	@Description	Pending invitations are only listed for the owner and admins.
//	@Tags			Workspaces
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Workspace ID"
//	@Success		200	{object}	scribesdk.WorkspaceResponse
//	@Failure		403	{object}	scribesdk.ErrorResponse	"No access"
//	@Failure		404	{object}	scribesdk.ErrorResponse	"Workspace not found"
//	@Router			/v1/workspaces/{id} [get].
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	ws, _, err := h.Workspaces.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "get workspace")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toWorkspaceResponse(ws, userID))
}

// Update renames a workspace or changes its settings.
//
//	@Summary		Update a workspace
//	@Description	Owner or admin. Absent fields are left unchanged.
//	@Tags			Workspaces
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Workspace ID"
//	@Param			body	body		scribesdk.UpdateWorkspaceRequest	true	"Changes"
//	@Success		200		{object}	scribesdk.WorkspaceResponse
//	@Failure		400		{object}	scribesdk.ErrorResponse	"Invalid value"
//	@Failure		403		{object}	scribesdk.ErrorResponse	"Not an owner or admin"
//	@Failure		404		{object}	scribesdk.ErrorResponse	"Workspace not found"
//	@Router			/v1/workspaces/{id} [put].
func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req scribesdk.UpdateWorkspaceRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	ws, err := h.Workspaces.Update(r.Context(), userID, r.PathValue("id"), service.WorkspacePatch{
		Name:      req.Name,
		Theme:     req.PreferredTheme,
		PostStyle: req.DefaultPostStyle,
		Language:  req.DefaultLanguage,
	})
	if err != nil {
		writeServiceError(w, r, err, "update workspace")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toWorkspaceResponse(ws, userID))
}

// Delete removes a workspace and all its memberships.
//
//	@Summary		Delete a workspace
//	@Tags			Workspaces
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Workspace ID"
//	@Success		204
//	@Failure		403	{object}	scribesdk.ErrorResponse	"Not the owner"
//	@Failure		404	{object}	scribesdk.ErrorResponse	"Workspace not found"
//	@Router			/v1/workspaces/{id} [delete].
func (h *WorkspaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := h.Workspaces.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err, "delete workspace")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Invite adds a pending member and mails the invitation link.
//
//	@Summary		Invite a member
//	@Description	Team workspaces only. Re-inviting a pending email issues a fresh link.
//	@Tags			Workspaces
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Workspace ID"
//	@Param			body	body		scribesdk.InviteRequest	true	"Invitee"
//	@Success		201		{object}	scribesdk.InviteResponse
//	@Failure		400		{object}	scribesdk.ErrorResponse	"Invalid value"
//	@Failure		403		{object}	scribesdk.ErrorResponse	"Not an owner or admin, or not a team workspace"
//	@Failure		409		{object}	scribesdk.ErrorResponse	"Already a member"
//	@Router			/v1/workspaces/{id}/members [post].
func (h *WorkspaceHandler) Invite(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req scribesdk.InviteRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	res, err := h.Workspaces.Invite(r.Context(), userID, r.PathValue("id"), req.Email, domain.Role(req.Role))
	if err != nil {
		writeServiceError(w, r, err, "invite member")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, scribesdk.InviteResponse{
		Member:    toMemberResponse(res.Member),
		EmailSent: res.EmailSent,
	})
}

// RemoveMember deletes a membership or pending invitation.
//
//	@Summary		Remove a member
//	@Description	The target is a member id or a user id. The owner cannot be removed.
//	@Tags			Workspaces
//	@Security		BearerAuth
//	@Param			id		path	string	true	"Workspace ID"
//	@Param			member	path	string	true	"Member or user ID"
//	@Success		204
//	@Failure		403	{object}	scribesdk.ErrorResponse	"Not an owner or admin"
//	@Failure		404	{object}	scribesdk.ErrorResponse	"Member not found"
//	@Router			/v1/workspaces/{id}/members/{member} [delete].
func (h *WorkspaceHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := h.Workspaces.RemoveMember(r.Context(), userID, r.PathValue("id"), r.PathValue("member")); err != nil {
		writeServiceError(w, r, err, "remove member")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
