package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func teamWorkspace(t *testing.T) Workspace {
	t.Helper()
	owner := NewUser("owner", "Olive", "Owner", "owner@example.com", time.Now())
	w, err := NewWorkspace("ws", "m-owner", "Acme", WorkspaceTeam, owner, DefaultWorkspaceSettings(), time.Now())
	require.NoError(t, err)

	w.Members = append(w.Members,
		Member{ID: "m-admin", UserID: "admin", Email: "admin@example.com", Role: RoleAdmin, Accepted: true},
		Member{ID: "m-writer", UserID: "writer", Email: "writer@example.com", Role: RoleWriter, Accepted: true},
		Member{ID: "m-viewer", UserID: "viewer", Email: "viewer@example.com", Role: RoleViewer, Accepted: true},
		Member{ID: "m-pending", UserID: "pending", Email: "pending@example.com", Role: RoleAdmin},
		Member{ID: "m-unbound", Email: "new@example.com", Role: RoleWriter},
	)
	return w
}

func TestResolveAccess_Team(t *testing.T) {
	w := teamWorkspace(t)

	tests := []struct {
		user string
		want AccessLevel
	}{
		{"owner", AccessOwner},
		{"admin", AccessAdmin},
		{"writer", AccessMember},
		{"viewer", AccessMember},
		{"pending", AccessPending},
		{"stranger", AccessNone},
		{"", AccessNone},
	}

	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			require.Equal(t, tt.want, ResolveAccess(w, tt.user))
		})
	}
}

func TestResolveAccess_PermissionMatrix(t *testing.T) {
	w := teamWorkspace(t)

	owner := ResolveAccess(w, "owner")
	require.True(t, owner.CanView())
	require.True(t, owner.CanManage())
	require.True(t, owner.CanDelete())

	admin := ResolveAccess(w, "admin")
	require.True(t, admin.CanView())
	require.True(t, admin.CanManage())
	require.False(t, admin.CanDelete())

	writer := ResolveAccess(w, "writer")
	require.True(t, writer.CanView())
	require.False(t, writer.CanManage())

	pending := ResolveAccess(w, "pending")
	require.False(t, pending.CanView())
}

func TestResolveAccess_IndividualOnlyOwner(t *testing.T) {
	owner := NewUser("owner", "Solo", "Writer", "solo@example.com", time.Now())
	w, err := NewWorkspace("ws", "unused", "Solo", WorkspaceIndividual, owner, DefaultWorkspaceSettings(), time.Now())
	require.NoError(t, err)
	require.Empty(t, w.Members)

	// A stray row must not grant access.
	w.Members = append(w.Members, Member{UserID: "intruder", Role: RoleAdmin, Accepted: true})

	require.Equal(t, AccessOwner, ResolveAccess(w, "owner"))
	require.Equal(t, AccessNone, ResolveAccess(w, "intruder"))
}

func TestRoleFor(t *testing.T) {
	w := teamWorkspace(t)

	role, ok := RoleFor(w, "owner")
	require.True(t, ok)
	require.Equal(t, RoleAdmin, role)

	role, ok = RoleFor(w, "viewer")
	require.True(t, ok)
	require.Equal(t, RoleViewer, role)

	_, ok = RoleFor(w, "pending")
	require.False(t, ok)
}
