package scribesdk

import (
	"context"
	"net/http"
	"net/url"
)

func workspacePath(id string, rest ...string) string {
	p := "/v1/workspaces/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}

// ============================================================================
// Workspaces
// ============================================================================

func (s *Session) CreateWorkspace(ctx context.Context, req CreateWorkspaceRequest) (*WorkspaceResponse, error) {
	return authCall[WorkspaceResponse](ctx, s, http.MethodPost, "/v1/workspaces", req, http.StatusCreated)
}

// ListWorkspaces returns the workspaces the caller owns or is an accepted
// member of.
func (s *Session) ListWorkspaces(ctx context.Context) (*ListWorkspacesResponse, error) {
	return authCall[ListWorkspacesResponse](ctx, s, http.MethodGet, "/v1/workspaces", nil, http.StatusOK)
}

func (s *Session) GetWorkspace(ctx context.Context, id string) (*WorkspaceResponse, error) {
	return authCall[WorkspaceResponse](ctx, s, http.MethodGet, workspacePath(id), nil, http.StatusOK)
}

// UpdateWorkspace requires owner or admin access.
func (s *Session) UpdateWorkspace(ctx context.Context, id string, req UpdateWorkspaceRequest) (*WorkspaceResponse, error) {
	return authCall[WorkspaceResponse](ctx, s, http.MethodPut, workspacePath(id), req, http.StatusOK)
}

// DeleteWorkspace is reserved to the owner.
func (s *Session) DeleteWorkspace(ctx context.Context, id string) error {
	return authExec(ctx, s, http.MethodDelete, workspacePath(id), nil, http.StatusNoContent, nil)
}

// ============================================================================
// Members & Invitations
// ============================================================================

// InviteMember mails an invitation to email. Re-inviting a pending email
// replaces the previous invitation.
func (s *Session) InviteMember(ctx context.Context, workspaceID string, req InviteRequest) (*InviteResponse, error) {
	return authCall[InviteResponse](ctx, s, http.MethodPost, workspacePath(workspaceID, "members"), req, http.StatusCreated)
}

// RemoveMember deletes a member entry by member id or user id.
func (s *Session) RemoveMember(ctx context.Context, workspaceID, target string) error {
	return authExec(ctx, s, http.MethodDelete, workspacePath(workspaceID, "members", target), nil, http.StatusNoContent, nil)
}

// AcceptInvitation redeems an invitation as the signed in user.
func (s *Session) AcceptInvitation(ctx context.Context, token string) (*AcceptInvitationResponse, error) {
	return authCall[AcceptInvitationResponse](ctx, s, http.MethodPost,
		"/v1/invitations/"+url.PathEscape(token)+"/accept", nil, http.StatusOK)
}
