package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/scribe/internal/scribe/domain"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// teamWithMembers creates a team workspace owned by owner with an accepted
// admin, writer and viewer.
func (e *testEnv) teamWithMembers(t *testing.T) (domain.Workspace, map[string]domain.User) {
	t.Helper()
	ctx := context.Background()

	users := map[string]domain.User{
		"owner":  e.register(t, "Olive", "owner@x.com", "pw12345678"),
		"admin":  e.register(t, "Adam", "admin@x.com", "pw12345678"),
		"writer": e.register(t, "Wendy", "writer@x.com", "pw12345678"),
		"viewer": e.register(t, "Victor", "viewer@x.com", "pw12345678"),
		"other":  e.register(t, "Oscar", "other@x.com", "pw12345678"),
	}

	w, err := e.workspaces.Create(ctx, users["owner"].ID, "Acme", domain.WorkspaceTeam, nil)
	require.NoError(t, err)

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleWriter, domain.RoleViewer} {
		u := users[string(role)]
		res, err := e.workspaces.Invite(ctx, users["owner"].ID, w.ID, u.Email, role)
		require.NoError(t, err)
		_, err = e.workspaces.AcceptInvitation(ctx, res.Token, u.ID)
		require.NoError(t, err)
	}
	return w, users
}

func TestWorkspace_CreateDefaults(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	owner := e.register(t, "Alice", "alice@x.com", "pw12345678")

	team, err := e.workspaces.Create(ctx, owner.ID, "  Team A ", domain.WorkspaceTeam, nil)
	require.NoError(t, err)
	require.Equal(t, "Team A", team.Name)
	require.Equal(t, domain.DefaultWorkspaceSettings(), team.Settings)
	require.Len(t, team.Members, 1)
	require.Equal(t, domain.RoleAdmin, team.Members[0].Role)
	require.True(t, team.Members[0].Accepted)

	solo, err := e.workspaces.Create(ctx, owner.ID, "Solo", domain.WorkspaceIndividual,
		&domain.WorkspaceSettings{Theme: domain.ThemeDark, PostStyle: domain.PostStyleShort, Language: domain.LanguageGerman})
	require.NoError(t, err)
	require.Empty(t, solo.Members)
	require.Equal(t, domain.ThemeDark, solo.Settings.Theme)

	_, err = e.workspaces.Create(ctx, owner.ID, "", domain.WorkspaceTeam, nil)
	require.ErrorIs(t, err, ErrInvalidValue)
	_, err = e.workspaces.Create(ctx, owner.ID, "X", "club", nil)
	require.ErrorIs(t, err, ErrInvalidValue)
	_, err = e.workspaces.Create(ctx, "missing", "X", domain.WorkspaceTeam, nil)
	require.ErrorIs(t, err, ErrNotFound)

	list, err := e.workspaces.ListForUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestWorkspace_RoleMatrix(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	w, users := e.teamWithMembers(t)

	tests := []struct {
		user                      string
		canView, canUpdate, canDel bool
	}{
		{"owner", true, true, true},
		{"admin", true, true, false},
		{"writer", true, false, false},
		{"viewer", true, false, false},
		{"other", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			id := users[tt.user].ID

			_, _, err := e.workspaces.Get(ctx, id, w.ID)
			if tt.canView {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrForbidden)
			}

			_, err = e.workspaces.Update(ctx, id, w.ID, WorkspacePatch{Name: strPtr("Renamed by " + tt.user)})
			if tt.canUpdate {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrForbidden)
			}

			_, err = e.workspaces.Invite(ctx, id, w.ID, "someone-"+tt.user+"@x.com", domain.RoleViewer)
			if tt.canUpdate {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrForbidden)
			}
		})
	}

	// Deletion last so the other checks still see the workspace.
	for _, who := range []string{"admin", "writer", "viewer", "other"} {
		require.ErrorIs(t, e.workspaces.Delete(ctx, users[who].ID, w.ID), ErrForbidden, who)
	}
	require.NoError(t, e.workspaces.Delete(ctx, users["owner"].ID, w.ID))

	_, _, err := e.workspaces.Get(ctx, users["owner"].ID, w.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestWorkspace_GetReportsAccessLevel(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	w, users := e.teamWithMembers(t)

	_, access, err := e.workspaces.Get(ctx, users["owner"].ID, w.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AccessOwner, access)

	got, access, err := e.workspaces.Get(ctx, users["viewer"].ID, w.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AccessMember, access)
	require.Len(t, got.Members, 4)
}

func TestWorkspace_UpdateSettings(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	owner := e.register(t, "Alice", "alice@x.com", "pw12345678")
	w, err := e.workspaces.Create(ctx, owner.ID, "Acme", domain.WorkspaceIndividual, nil)
	require.NoError(t, err)

	e.clock.Advance(time.Minute)
	updated, err := e.workspaces.Update(ctx, owner.ID, w.ID, WorkspacePatch{
		Theme:    strPtr("dark"),
		Language: strPtr("german"),
	})
	require.NoError(t, err)
	require.Equal(t, "Acme", updated.Name)
	require.Equal(t, domain.ThemeDark, updated.Settings.Theme)
	require.Equal(t, domain.PostStyleStandard, updated.Settings.PostStyle)
	require.Equal(t, domain.LanguageGerman, updated.Settings.Language)
	require.True(t, updated.UpdatedAt.After(w.UpdatedAt))

	_, err = e.workspaces.Update(ctx, owner.ID, w.ID, WorkspacePatch{PostStyle: strPtr("loud")})
	require.ErrorIs(t, err, ErrInvalidValue)

	got, _, err := e.workspaces.Get(ctx, owner.ID, w.ID)
	require.NoError(t, err)
	require.Equal(t, updated.Settings, got.Settings)
}

func TestInvite_UnregisteredInviteeScenario(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	alice := e.register(t, "Alice", "alice@x.com", "pw12345678")
	w, err := e.workspaces.Create(ctx, alice.ID, "Team", domain.WorkspaceTeam, nil)
	require.NoError(t, err)

	res, err := e.workspaces.Invite(ctx, alice.ID, w.ID, "Carol@X.com", domain.RoleWriter)
	require.NoError(t, err)
	require.True(t, res.EmailSent)
	require.Empty(t, res.Member.UserID)
	require.Equal(t, "carol@x.com", res.Member.Email)
	require.Equal(t, res.Token, e.inviteToken(t, "carol@x.com"))

	carol := e.register(t, "Carol", "carol@x.com", "pw12345678")

	// Registration bound the pending entry, but it grants nothing yet.
	got, access, err := e.workspaces.Get(ctx, alice.ID, w.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AccessOwner, access)
	pending, ok := got.MemberByEmail("carol@x.com")
	require.True(t, ok)
	require.Equal(t, carol.ID, pending.UserID)
	_, _, err = e.workspaces.Get(ctx, carol.ID, w.ID)
	require.ErrorIs(t, err, ErrForbidden)

	m, err := e.workspaces.AcceptInvitation(ctx, res.Token, carol.ID)
	require.NoError(t, err)
	require.True(t, m.Accepted)
	require.Equal(t, carol.ID, m.UserID)
	require.Equal(t, domain.RoleWriter, m.Role)

	_, access, err = e.workspaces.Get(ctx, carol.ID, w.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AccessMember, access)

	_, err = e.workspaces.Update(ctx, carol.ID, w.ID, WorkspacePatch{Name: strPtr("Mine")})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = e.workspaces.AcceptInvitation(ctx, res.Token, carol.ID)
	require.ErrorIs(t, err, ErrInvalidOrExpiredInvite)

	list, err := e.workspaces.ListForUser(ctx, carol.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, w.ID, list[0].ID)
}

func TestInvite_ConcurrentAcceptSucceedsOnce(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	alice := e.register(t, "Alice", "alice@x.com", "pw12345678")
	carol := e.register(t, "Carol", "carol@x.com", "pw12345678")
	w, err := e.workspaces.Create(ctx, alice.ID, "Team", domain.WorkspaceTeam, nil)
	require.NoError(t, err)
	res, err := e.workspaces.Invite(ctx, alice.ID, w.ID, "carol@x.com", domain.RoleWriter)
	require.NoError(t, err)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.workspaces.AcceptInvitation(ctx, res.Token, carol.ID)
		}()
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, ErrInvalidOrExpiredInvite)
	}
	require.Equal(t, 1, ok)

	got, access, err := e.workspaces.Get(ctx, carol.ID, w.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AccessMember, access)
	role, found := domain.RoleFor(got, carol.ID)
	require.True(t, found)
	require.Equal(t, domain.RoleWriter, role)
}

func TestInvite_AnonymousAcceptThenRegister(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	alice := e.register(t, "Alice", "alice@x.com", "pw12345678")
	w, err := e.workspaces.Create(ctx, alice.ID, "Team", domain.WorkspaceTeam, nil)
	require.NoError(t, err)

	res, err := e.workspaces.Invite(ctx, alice.ID, w.ID, "dan@x.com", domain.RoleViewer)
	require.NoError(t, err)

	m, err := e.workspaces.AcceptInvitation(ctx, res.Token, "")
	require.NoError(t, err)
	require.True(t, m.Accepted)
	require.Empty(t, m.UserID)

	dan := e.register(t, "Dan", "dan@x.com", "pw12345678")
	_, access, err := e.workspaces.Get(ctx, dan.ID, w.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AccessMember, access)
}

func TestInvite_ExpiredAndReissued(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	alice := e.register(t, "Alice", "alice@x.com", "pw12345678")
	w, err := e.workspaces.Create(ctx, alice.ID, "Team", domain.WorkspaceTeam, nil)
	require.NoError(t, err)

	first, err := e.workspaces.Invite(ctx, alice.ID, w.ID, "erin@x.com", domain.RoleViewer)
	require.NoError(t, err)

	e.clock.Advance(domain.InviteTTL + time.Minute)
	_, err = e.workspaces.AcceptInvitation(ctx, first.Token, "")
	require.ErrorIs(t, err, ErrInvalidOrExpiredInvite)

	second, err := e.workspaces.Invite(ctx, alice.ID, w.ID, "erin@x.com", domain.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, first.Member.ID, second.Member.ID)
	require.NotEqual(t, first.Token, second.Token)

	got, _, err := e.workspaces.Get(ctx, alice.ID, w.ID)
	require.NoError(t, err)
	require.Len(t, got.Members, 2)

	_, err = e.workspaces.AcceptInvitation(ctx, first.Token, "")
	require.ErrorIs(t, err, ErrInvalidOrExpiredInvite)
	m, err := e.workspaces.AcceptInvitation(ctx, second.Token, "")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, m.Role)
}

func TestInvite_Rejections(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	w, users := e.teamWithMembers(t)

	_, err := e.workspaces.Invite(ctx, users["owner"].ID, w.ID, "writer@x.com", domain.RoleAdmin)
	require.ErrorIs(t, err, ErrAlreadyMember)
	_, err = e.workspaces.Invite(ctx, users["admin"].ID, w.ID, "owner@x.com", domain.RoleViewer)
	require.ErrorIs(t, err, ErrAlreadyMember)
	_, err = e.workspaces.Invite(ctx, users["owner"].ID, w.ID, "not-an-email", domain.RoleViewer)
	require.ErrorIs(t, err, ErrInvalidValue)
	_, err = e.workspaces.Invite(ctx, users["owner"].ID, w.ID, "new@x.com", "editor")
	require.ErrorIs(t, err, ErrInvalidValue)
	_, err = e.workspaces.Invite(ctx, users["owner"].ID, "missing", "new@x.com", domain.RoleViewer)
	require.ErrorIs(t, err, ErrNotFound)

	solo, err := e.workspaces.Create(ctx, users["owner"].ID, "Solo", domain.WorkspaceIndividual, nil)
	require.NoError(t, err)
	_, err = e.workspaces.Invite(ctx, users["owner"].ID, solo.ID, "new@x.com", domain.RoleViewer)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = e.workspaces.AcceptInvitation(ctx, "", "")
	require.ErrorIs(t, err, ErrInvalidOrExpiredInvite)
	_, err = e.workspaces.AcceptInvitation(ctx, "never-issued", "")
	require.ErrorIs(t, err, ErrInvalidOrExpiredInvite)
}

func TestInvite_MailFailureStillStoresInvitation(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	alice := e.register(t, "Alice", "alice@x.com", "pw12345678")
	w, err := e.workspaces.Create(ctx, alice.ID, "Team", domain.WorkspaceTeam, nil)
	require.NoError(t, err)

	e.mail.SetErr(errors.New("smtp down"))
	res, err := e.workspaces.Invite(ctx, alice.ID, w.ID, "fay@x.com", domain.RoleWriter)
	require.NoError(t, err)
	require.False(t, res.EmailSent)
	require.NotEmpty(t, res.Token)

	_, err = e.workspaces.AcceptInvitation(ctx, res.Token, "")
	require.NoError(t, err)
}

func TestInvite_AcceptByExistingMemberConflicts(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	w, users := e.teamWithMembers(t)

	res, err := e.workspaces.Invite(ctx, users["owner"].ID, w.ID, "alias@x.com", domain.RoleAdmin)
	require.NoError(t, err)

	_, err = e.workspaces.AcceptInvitation(ctx, res.Token, users["viewer"].ID)
	require.ErrorIs(t, err, ErrAlreadyMember)

	// The failed accept left the invitation redeemable.
	_, err = e.workspaces.AcceptInvitation(ctx, res.Token, "")
	require.NoError(t, err)
}

func TestRemoveMember(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	w, users := e.teamWithMembers(t)

	require.ErrorIs(t, e.workspaces.RemoveMember(ctx, users["writer"].ID, w.ID, users["viewer"].ID), ErrForbidden)
	require.ErrorIs(t, e.workspaces.RemoveMember(ctx, users["admin"].ID, w.ID, users["owner"].ID), ErrForbidden)

	got, _, err := e.workspaces.Get(ctx, users["owner"].ID, w.ID)
	require.NoError(t, err)
	ownerEntry, ok := got.AcceptedMember(users["owner"].ID)
	require.True(t, ok)
	require.ErrorIs(t, e.workspaces.RemoveMember(ctx, users["admin"].ID, w.ID, ownerEntry.ID), ErrForbidden)

	// By user id.
	require.NoError(t, e.workspaces.RemoveMember(ctx, users["admin"].ID, w.ID, users["viewer"].ID))
	_, _, err = e.workspaces.Get(ctx, users["viewer"].ID, w.ID)
	require.ErrorIs(t, err, ErrForbidden)

	// By member id.
	writerEntry, ok := got.AcceptedMember(users["writer"].ID)
	require.True(t, ok)
	require.NoError(t, e.workspaces.RemoveMember(ctx, users["owner"].ID, w.ID, writerEntry.ID))
	require.ErrorIs(t, e.workspaces.RemoveMember(ctx, users["owner"].ID, w.ID, writerEntry.ID), ErrNotFound)
}
