package sqlite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/scribe/internal/scribe/domain"
	"github.com/aussiebroadwan/scribe/internal/scribe/store"
	"github.com/aussiebroadwan/scribe/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedUser(t *testing.T, s *Store, email string, now time.Time) domain.User {
	t.Helper()

	u := domain.NewUser(idx.New().String(), "Test", "User", email, now)
	u.PasswordHash = "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func seedTeam(t *testing.T, s *Store, owner domain.User, now time.Time) domain.Workspace {
	t.Helper()

	w, err := domain.NewWorkspace(idx.New().String(), idx.New().String(), "Acme", domain.WorkspaceTeam, owner, domain.DefaultWorkspaceSettings(), now)
	require.NoError(t, err)
	require.NoError(t, s.WithTx(context.Background(), func(tx store.Tx) error {
		return tx.Workspaces().CreateWorkspace(context.Background(), w)
	}))
	return w
}

func pendingMember(w domain.Workspace, email, digest string, inviter string, expires time.Time) domain.Member {
	return domain.Member{
		ID:              idx.New().String(),
		WorkspaceID:     w.ID,
		Email:           email,
		Role:            domain.RoleWriter,
		InviteDigest:    digest,
		InviteExpiresAt: &expires,
		InvitedBy:       inviter,
		CreatedAt:       expires.Add(-domain.InviteTTL),
		UpdatedAt:       expires.Add(-domain.InviteTTL),
	}
}

func TestUsers_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Millisecond)

	u := seedUser(t, s, "Alice@Example.com", now)

	got, err := s.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, domain.OnboardingIncomplete, got.OnboardingStatus)
	require.Equal(t, domain.FirstOnboardingStep, got.OnboardingStep)
	require.False(t, got.EmailVerified)
	require.True(t, got.HasPassword())
	require.True(t, now.Equal(got.CreatedAt))
	require.NotNil(t, got.Preferences)

	dup := domain.NewUser(idx.New().String(), "Other", "Alice", "alice@example.com", now)
	require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	_, err = s.Users().GetUserByID(ctx, idx.New().String())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers_VerificationCodeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()
	u := seedUser(t, s, "bob@example.com", now)

	require.NoError(t, s.Users().SetVerificationCode(ctx, u.ID, "digest-1", now.Add(30*time.Minute), now))

	require.ErrorIs(t, s.Users().ConsumeVerificationCode(ctx, u.ID, "wrong", now), store.ErrNotFound)
	require.NoError(t, s.Users().ConsumeVerificationCode(ctx, u.ID, "digest-1", now))
	require.ErrorIs(t, s.Users().ConsumeVerificationCode(ctx, u.ID, "digest-1", now), store.ErrNotFound)

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, got.EmailVerified)
	require.Empty(t, got.VerificationDigest)
	require.Nil(t, got.VerificationExpiresAt)
}

func TestUsers_ExpiredVerificationCodeRejected(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()
	u := seedUser(t, s, "carol@example.com", now)

	require.NoError(t, s.Users().SetVerificationCode(ctx, u.ID, "digest", now.Add(time.Minute), now))
	require.ErrorIs(t, s.Users().ConsumeVerificationCode(ctx, u.ID, "digest", now.Add(2*time.Minute)), store.ErrNotFound)
}

func TestUsers_ResetTokenConcurrentConsume(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()
	u := seedUser(t, s, "dave@example.com", now)

	require.NoError(t, s.Users().SetResetToken(ctx, u.ID, "reset-digest", now.Add(time.Hour), now))

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []string
		losers  []error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.Users().ConsumeResetToken(ctx, "reset-digest", "new-hash", now)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				losers = append(losers, err)
				return
			}
			winners = append(winners, id)
		}()
	}
	wg.Wait()
	require.Equal(t, []string{u.ID}, winners)
	for _, err := range losers {
		require.ErrorIs(t, err, store.ErrNotFound)
	}

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", got.PasswordHash)
	require.Empty(t, got.ResetDigest)
}

func TestUsers_OnboardingFieldsAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()
	u := seedUser(t, s, "erin@example.com", now)
	users := s.Users()

	require.NoError(t, users.SetOnboardingField(ctx, u.ID, store.FieldWorkspaceType, domain.WorkspaceTeam, now))
	require.NoError(t, users.SetOnboardingField(ctx, u.ID, store.FieldTheme, domain.ThemeDark, now))
	require.NoError(t, users.SetOnboardingField(ctx, u.ID, store.FieldPostFrequency, 12, now))
	require.NoError(t, users.SetOnboardingField(ctx, u.ID, store.FieldInspirationProfiles, []string{"a", "b"}, now))
	require.NoError(t, users.UpdateOnboardingStep(ctx, u.ID, 4, now))

	got, err := users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 4, got.OnboardingStep)
	require.Equal(t, domain.OnboardingData{
		WorkspaceType:       domain.WorkspaceTeam,
		Theme:               domain.ThemeDark,
		PostFrequency:       12,
		InspirationProfiles: []string{"a", "b"},
	}, got.Onboarding)

	require.Error(t, users.SetOnboardingField(ctx, u.ID, store.OnboardingField("bio"), "x", now))

	require.NoError(t, users.CompleteOnboarding(ctx, u.ID, now))
	require.ErrorIs(t, users.CompleteOnboarding(ctx, u.ID, now), store.ErrNotFound)
}

func TestUsers_ClearExpiredSecrets(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	a := seedUser(t, s, "a@example.com", now)
	b := seedUser(t, s, "b@example.com", now)
	require.NoError(t, s.Users().SetVerificationCode(ctx, a.ID, "va", now.Add(-time.Minute), now))
	require.NoError(t, s.Users().SetResetToken(ctx, a.ID, "ra", now.Add(-time.Minute), now))
	require.NoError(t, s.Users().SetVerificationCode(ctx, b.ID, "vb", now.Add(time.Hour), now))

	n, err := s.Users().ClearExpiredSecrets(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	got, err := s.Users().GetUserByID(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, "vb", got.VerificationDigest)
}

func TestIdentities_LinkIsInsertOnly(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()
	u := seedUser(t, s, "frank@example.com", now)
	v := seedUser(t, s, "grace@example.com", now)

	link := domain.Identity{Provider: domain.ProviderGoogle, ProviderID: "g-1", UserID: u.ID, CreatedAt: now}
	require.NoError(t, s.Identities().LinkIdentity(ctx, link))

	// Same provider id for someone else.
	require.ErrorIs(t, s.Identities().LinkIdentity(ctx, domain.Identity{
		Provider: domain.ProviderGoogle, ProviderID: "g-1", UserID: v.ID, CreatedAt: now,
	}), store.ErrAlreadyExists)

	// Second google id for the same user.
	require.ErrorIs(t, s.Identities().LinkIdentity(ctx, domain.Identity{
		Provider: domain.ProviderGoogle, ProviderID: "g-2", UserID: u.ID, CreatedAt: now,
	}), store.ErrAlreadyExists)

	got, err := s.Identities().GetIdentity(ctx, domain.ProviderGoogle, "g-1")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.UserID)

	_, err = s.Identities().GetIdentity(ctx, domain.ProviderLinkedIn, "g-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	list, err := s.Identities().ListIdentitiesForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestWorkspaces_CreateListUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()
	owner := seedUser(t, s, "owner@example.com", now)
	other := seedUser(t, s, "other@example.com", now)

	w := seedTeam(t, s, owner, now)

	got, err := s.Workspaces().GetWorkspace(ctx, w.ID)
	require.NoError(t, err)
	require.Equal(t, "Acme", got.Name)
	require.Len(t, got.Members, 1)
	require.True(t, got.Members[0].Accepted)
	require.Equal(t, domain.RoleAdmin, got.Members[0].Role)

	list, err := s.Workspaces().ListWorkspacesForUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].Members, 1)

	list, err = s.Workspaces().ListWorkspacesForUser(ctx, other.ID)
	require.NoError(t, err)
	require.Empty(t, list)

	settings := domain.WorkspaceSettings{Theme: domain.ThemeDark, PostStyle: domain.PostStyleChunky, Language: domain.LanguageGerman}
	require.NoError(t, s.Workspaces().UpdateWorkspace(ctx, w.ID, "Acme GmbH", settings, now))

	got, err = s.Workspaces().GetWorkspace(ctx, w.ID)
	require.NoError(t, err)
	require.Equal(t, "Acme GmbH", got.Name)
	require.Equal(t, settings, got.Settings)

	require.NoError(t, s.Workspaces().DeleteWorkspace(ctx, w.ID))
	_, err = s.Workspaces().GetWorkspace(ctx, w.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	members, err := s.Members().ListMembers(ctx, w.ID)
	require.NoError(t, err)
	require.Empty(t, members)
}

func TestMembers_AcceptInviteOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()
	owner := seedUser(t, s, "owner@example.com", now)
	carol := seedUser(t, s, "carol@example.com", now)
	w := seedTeam(t, s, owner, now)

	m := pendingMember(w, carol.Email, "invite-digest", owner.ID, now.Add(domain.InviteTTL))
	require.NoError(t, s.Members().AddMember(ctx, m))

	accepted, err := s.Members().AcceptInvite(ctx, "invite-digest", carol.ID, now)
	require.NoError(t, err)
	require.True(t, accepted.Accepted)
	require.Equal(t, carol.ID, accepted.UserID)
	require.Empty(t, accepted.InviteDigest)

	_, err = s.Members().AcceptInvite(ctx, "invite-digest", carol.ID, now)
	require.ErrorIs(t, err, store.ErrNotFound)

	list, err := s.Workspaces().ListWorkspacesForUser(ctx, carol.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestMembers_AcceptInviteConcurrent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()
	owner := seedUser(t, s, "owner@example.com", now)
	carol := seedUser(t, s, "carol@example.com", now)
	w := seedTeam(t, s, owner, now)

	m := pendingMember(w, carol.Email, "race-digest", owner.ID, now.Add(domain.InviteTTL))
	require.NoError(t, s.Members().AddMember(ctx, m))

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []domain.Member
		losers  []error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Members().AcceptInvite(ctx, "race-digest", carol.ID, now)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				losers = append(losers, err)
				return
			}
			winners = append(winners, got)
		}()
	}
	wg.Wait()

	require.Len(t, winners, 1)
	require.Equal(t, carol.ID, winners[0].UserID)
	require.Len(t, losers, workers-1)
	for _, err := range losers {
		require.ErrorIs(t, err, store.ErrNotFound)
	}

	got, err := s.Workspaces().GetWorkspace(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, got.Members, 2)
	member, ok := got.AcceptedMember(carol.ID)
	require.True(t, ok)
	require.Equal(t, domain.RoleWriter, member.Role)
	require.Empty(t, member.InviteDigest)
}

func TestMembers_AcceptInviteRejectsExpired(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()
	owner := seedUser(t, s, "owner@example.com", now)
	w := seedTeam(t, s, owner, now)

	m := pendingMember(w, "late@example.com", "old-digest", owner.ID, now.Add(-time.Second))
	require.NoError(t, s.Members().AddMember(ctx, m))

	_, err := s.Members().AcceptInvite(ctx, "old-digest", "", now)
	require.ErrorIs(t, err, store.ErrNotFound)

	n, err := s.Members().DeleteExpiredInvites(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestMembers_SecondAcceptedEntryForUserConflicts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()
	owner := seedUser(t, s, "owner@example.com", now)
	w := seedTeam(t, s, owner, now)

	m := pendingMember(w, "someone@example.com", "dup-digest", owner.ID, now.Add(domain.InviteTTL))
	require.NoError(t, s.Members().AddMember(ctx, m))

	// The owner already holds an accepted admin entry.
	_, err := s.Members().AcceptInvite(ctx, "dup-digest", owner.ID, now)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestMembers_BindEmailAndReissue(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()
	owner := seedUser(t, s, "owner@example.com", now)
	w := seedTeam(t, s, owner, now)

	m := pendingMember(w, "newbie@example.com", "first", owner.ID, now.Add(domain.InviteTTL))
	require.NoError(t, s.Members().AddMember(ctx, m))

	m.Role = domain.RoleViewer
	m.InviteDigest = "second"
	m.UpdatedAt = now
	require.NoError(t, s.Members().ReissueInvite(ctx, m))

	_, err := s.Members().AcceptInvite(ctx, "first", "", now)
	require.ErrorIs(t, err, store.ErrNotFound)

	newbie := seedUser(t, s, "newbie@example.com", now)
	n, err := s.Members().BindEmail(ctx, newbie.Email, newbie.ID, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	accepted, err := s.Members().AcceptInvite(ctx, "second", "", now)
	require.NoError(t, err)
	require.Equal(t, newbie.ID, accepted.UserID)
	require.Equal(t, domain.RoleViewer, accepted.Role)

	require.NoError(t, s.Members().RemoveMember(ctx, w.ID, accepted.ID))
	require.ErrorIs(t, s.Members().RemoveMember(ctx, w.ID, accepted.ID), store.ErrNotFound)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()
	owner := seedUser(t, s, "owner@example.com", now)

	w, err := domain.NewWorkspace(idx.New().String(), idx.New().String(), "Doomed", domain.WorkspaceTeam, owner, domain.DefaultWorkspaceSettings(), now)
	require.NoError(t, err)

	boom := context.Canceled
	err = s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Workspaces().CreateWorkspace(ctx, w); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Workspaces().GetWorkspace(ctx, w.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}
