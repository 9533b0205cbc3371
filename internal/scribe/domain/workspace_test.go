package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewWorkspace(t *testing.T) {
	now := time.Now()
	owner := NewUser("u1", "Ada", "Lovelace", "Ada@Example.com", now)

	t.Run("team adds owner as accepted admin", func(t *testing.T) {
		w, err := NewWorkspace("w1", "m1", "  Analytical  ", WorkspaceTeam, owner, DefaultWorkspaceSettings(), now)
		require.NoError(t, err)
		require.Equal(t, "Analytical", w.Name)
		require.Len(t, w.Members, 1)

		m := w.Members[0]
		require.Equal(t, "m1", m.ID)
		require.Equal(t, "u1", m.UserID)
		require.Equal(t, "ada@example.com", m.Email)
		require.Equal(t, RoleAdmin, m.Role)
		require.True(t, m.Accepted)
		require.Empty(t, m.InviteDigest)
	})

	t.Run("individual has no members", func(t *testing.T) {
		w, err := NewWorkspace("w2", "m2", "Mine", WorkspaceIndividual, owner, DefaultWorkspaceSettings(), now)
		require.NoError(t, err)
		require.Empty(t, w.Members)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := NewWorkspace("w3", "m3", "   ", WorkspaceTeam, owner, DefaultWorkspaceSettings(), now)
		require.ErrorIs(t, err, ErrInvalidValue)

		_, err = NewWorkspace("w3", "m3", strings.Repeat("n", 101), WorkspaceTeam, owner, DefaultWorkspaceSettings(), now)
		require.ErrorIs(t, err, ErrInvalidValue)

		_, err = NewWorkspace("w3", "m3", "ok", "company", owner, DefaultWorkspaceSettings(), now)
		require.ErrorIs(t, err, ErrInvalidValue)

		bad := DefaultWorkspaceSettings()
		bad.Theme = "sepia"
		_, err = NewWorkspace("w3", "m3", "ok", WorkspaceTeam, owner, bad, now)
		require.ErrorIs(t, err, ErrInvalidValue)
	})
}

func TestParseRole(t *testing.T) {
	for _, r := range []string{"admin", "writer", "viewer"} {
		got, err := ParseRole(r)
		require.NoError(t, err)
		require.Equal(t, Role(r), got)
	}

	_, err := ParseRole("owner")
	require.ErrorIs(t, err, ErrInvalidValue)

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "role", fe.Field)
}
