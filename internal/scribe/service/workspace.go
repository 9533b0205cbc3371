package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/scribe/internal/scribe/domain"
	"github.com/aussiebroadwan/scribe/internal/scribe/mail"
	"github.com/aussiebroadwan/scribe/internal/scribe/store"
	"github.com/aussiebroadwan/scribe/pkg/idx"
	"github.com/aussiebroadwan/scribe/pkg/slogx"
)

// WorkspaceService applies the workspace role matrix: members view, the
// owner and accepted admins manage, only the owner deletes.
type WorkspaceService struct {
	Store       store.Store
	Tokens      *TokenService
	Mail        mail.Sender
	FrontendURL string
	Clock       Clock
}

// WorkspacePatch holds the optional fields of an update. Nil fields are left
// unchanged.
type WorkspacePatch struct {
	Name      *string
	Theme     *string
	PostStyle *string
	Language  *string
}

// Create makes a workspace owned by userID. Settings default when nil.
func (s *WorkspaceService) Create(ctx context.Context, userID, name string, typ domain.WorkspaceType, settings *domain.WorkspaceSettings) (domain.Workspace, error) {
	now := s.Clock.now()

	owner, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Workspace{}, ErrNotFound
		}
		return domain.Workspace{}, fmt.Errorf("load owner: %w", err)
	}

	cfg := domain.DefaultWorkspaceSettings()
	if settings != nil {
		cfg = *settings
	}

	w, err := domain.NewWorkspace(idx.NewAt(now).String(), idx.NewAt(now).String(), name, typ, owner, cfg, now)
	if err != nil {
		return domain.Workspace{}, err
	}

	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Workspaces().CreateWorkspace(ctx, w)
	}); err != nil {
		return domain.Workspace{}, fmt.Errorf("create workspace: %w", err)
	}

	slogx.FromContext(ctx).Info("workspace created",
		slog.String("workspace_id", w.ID),
		slog.String("type", string(w.Type)),
	)
	return w, nil
}

// ListForUser returns the workspaces userID owns or is an accepted member of.
func (s *WorkspaceService) ListForUser(ctx context.Context, userID string) ([]domain.Workspace, error) {
	list, err := s.Store.Workspaces().ListWorkspacesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	return list, nil
}

// Get returns a workspace the caller can view together with the caller's
// access level.
func (s *WorkspaceService) Get(ctx context.Context, userID, workspaceID string) (domain.Workspace, domain.AccessLevel, error) {
	w, access, err := s.load(ctx, userID, workspaceID)
	if err != nil {
		return domain.Workspace{}, domain.AccessNone, err
	}
	if !access.CanView() {
		return domain.Workspace{}, access, ErrForbidden
	}
	return w, access, nil
}

// Update renames the workspace or changes its settings. Owner or admin.
func (s *WorkspaceService) Update(ctx context.Context, userID, workspaceID string, patch WorkspacePatch) (domain.Workspace, error) {
	w, access, err := s.load(ctx, userID, workspaceID)
	if err != nil {
		return domain.Workspace{}, err
	}
	if !access.CanManage() {
		return domain.Workspace{}, ErrForbidden
	}

	name := w.Name
	if patch.Name != nil {
		if name, err = domain.ValidateWorkspaceName(*patch.Name); err != nil {
			return domain.Workspace{}, err
		}
	}
	settings := w.Settings
	if patch.Theme != nil {
		if settings.Theme, err = domain.ParseTheme(*patch.Theme); err != nil {
			return domain.Workspace{}, err
		}
	}
	if patch.PostStyle != nil {
		if settings.PostStyle, err = domain.ParsePostStyle(*patch.PostStyle); err != nil {
			return domain.Workspace{}, err
		}
	}
	if patch.Language != nil {
		if settings.Language, err = domain.ParseLanguage(*patch.Language); err != nil {
			return domain.Workspace{}, err
		}
	}

	now := s.Clock.now()
	if err := s.Store.Workspaces().UpdateWorkspace(ctx, w.ID, name, settings, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Workspace{}, ErrNotFound
		}
		return domain.Workspace{}, fmt.Errorf("update workspace: %w", err)
	}

	w.Name = name
	w.Settings = settings
	w.UpdatedAt = now
	return w, nil
}

// Delete removes the workspace and all of its members. Owner only.
func (s *WorkspaceService) Delete(ctx context.Context, userID, workspaceID string) error {
	w, access, err := s.load(ctx, userID, workspaceID)
	if err != nil {
		return err
	}
	if !access.CanDelete() {
		return ErrForbidden
	}

	if err := s.Store.Workspaces().DeleteWorkspace(ctx, w.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete workspace: %w", err)
	}

	slogx.FromContext(ctx).Info("workspace deleted", slog.String("workspace_id", w.ID))
	return nil
}

// RemoveMember deletes a member entry, addressed by member id or by the id of
// the user it is bound to. The owner can never be removed.
func (s *WorkspaceService) RemoveMember(ctx context.Context, userID, workspaceID, target string) error {
	w, access, err := s.load(ctx, userID, workspaceID)
	if err != nil {
		return err
	}
	if !access.CanManage() {
		return ErrForbidden
	}
	if target == w.OwnerID {
		return ErrForbidden
	}

	m, ok := w.Member(target)
	if !ok {
		m, ok = w.AcceptedMember(target)
	}
	if !ok {
		return ErrNotFound
	}
	if m.UserID != "" && m.UserID == w.OwnerID {
		return ErrForbidden
	}

	if err := s.Store.Members().RemoveMember(ctx, w.ID, m.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("remove member: %w", err)
	}

	slogx.FromContext(ctx).Info("member removed",
		slog.String("workspace_id", w.ID),
		slog.String("member_id", m.ID),
	)
	return nil
}

// load fetches a workspace and resolves the caller's access to it.
func (s *WorkspaceService) load(ctx context.Context, userID, workspaceID string) (domain.Workspace, domain.AccessLevel, error) {
	w, err := s.Store.Workspaces().GetWorkspace(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Workspace{}, domain.AccessNone, ErrNotFound
		}
		return domain.Workspace{}, domain.AccessNone, fmt.Errorf("load workspace: %w", err)
	}
	return w, domain.ResolveAccess(w, userID), nil
}
