package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/scribe/internal/scribe/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Drivers implement it and expose
// one sub-repository per aggregate. A Tx is itself a Store, which keeps
// transactional code identical to non-transactional code while refusing
// nested transactions.
type Store interface {
	Users() Users
	Identities() Identities
	Workspaces() Workspaces
	Members() Members

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// OnboardingField names a single answer inside the onboarding data document.
type OnboardingField string

const (
	FieldWorkspaceType       OnboardingField = "workspaceType"
	FieldTheme               OnboardingField = "preferredTheme"
	FieldPostStyle           OnboardingField = "postStyle"
	FieldPostFrequency       OnboardingField = "postFrequency"
	FieldLanguage            OnboardingField = "language"
	FieldWebsiteLink         OnboardingField = "websiteLink"
	FieldInspirationProfiles OnboardingField = "inspirationProfiles"
)

func (f OnboardingField) Valid() bool {
	switch f {
	case FieldWorkspaceType, FieldTheme, FieldPostStyle, FieldPostFrequency,
		FieldLanguage, FieldWebsiteLink, FieldInspirationProfiles:
		return true
	}
	return false
}

type Users interface {
	// CreateUser inserts u. A taken email yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail expects an already normalized email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	UpdateProfile(ctx context.Context, userID, firstName, lastName, mobile string, now time.Time) error
	UpdatePasswordHash(ctx context.Context, userID, hash string, now time.Time) error

	// ClearPassword drops the password hash and any outstanding reset token.
	ClearPassword(ctx context.Context, userID string, now time.Time) error
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
	UpdatePreferences(ctx context.Context, userID string, prefs map[string]any, now time.Time) error

	// SetVerificationCode replaces any outstanding verification code.
	SetVerificationCode(ctx context.Context, userID, digest string, expiresAt, now time.Time) error

	// ConsumeVerificationCode marks the email verified and clears the code in
	// one conditional statement. It returns ErrNotFound when the digest does
	// not match an unexpired code of that user.
	ConsumeVerificationCode(ctx context.Context, userID, digest string, now time.Time) error

	// MarkEmailVerified is used when a provider vouches for the address.
	MarkEmailVerified(ctx context.Context, userID string, now time.Time) error

	SetResetToken(ctx context.Context, userID, digest string, expiresAt, now time.Time) error

	// ConsumeResetToken swaps in newHash and clears the reset digest in one
	// conditional statement, returning the affected user id. ErrNotFound means
	// no unexpired token matched.
	ConsumeResetToken(ctx context.Context, digest, newHash string, now time.Time) (string, error)

	UpdateOnboardingStep(ctx context.Context, userID string, step int, now time.Time) error

	// SetOnboardingField writes one answer without touching the others.
	SetOnboardingField(ctx context.Context, userID string, field OnboardingField, value any, now time.Time) error

	// CompleteOnboarding flips status to completed only if it is still
	// incomplete. ErrNotFound means there was nothing to flip.
	CompleteOnboarding(ctx context.Context, userID string, now time.Time) error

	// ClearExpiredSecrets drops verification and reset digests past expiry.
	ClearExpiredSecrets(ctx context.Context, now time.Time) (int64, error)
}

type Identities interface {
	// LinkIdentity inserts a link. ErrAlreadyExists is returned when the
	// provider id is linked already or the user has a different id for the
	// same provider.
	LinkIdentity(ctx context.Context, ident domain.Identity) error

	GetIdentity(ctx context.Context, provider domain.Provider, providerID string) (domain.Identity, error)
	ListIdentitiesForUser(ctx context.Context, userID string) ([]domain.Identity, error)
}

type Workspaces interface {
	// CreateWorkspace inserts the workspace and its initial members. Call it
	// inside a transaction.
	CreateWorkspace(ctx context.Context, w domain.Workspace) error

	// GetWorkspace returns the workspace with its members.
	GetWorkspace(ctx context.Context, id string) (domain.Workspace, error)

	// ListWorkspacesForUser returns workspaces the user owns or is an
	// accepted member of, with members loaded.
	ListWorkspacesForUser(ctx context.Context, userID string) ([]domain.Workspace, error)

	UpdateWorkspace(ctx context.Context, id, name string, settings domain.WorkspaceSettings, now time.Time) error

	// DeleteWorkspace cascades to members.
	DeleteWorkspace(ctx context.Context, id string) error
}

type Members interface {
	AddMember(ctx context.Context, m domain.Member) error

	// ReissueInvite rotates the token, role and expiry of a pending entry.
	ReissueInvite(ctx context.Context, m domain.Member) error

	// AcceptInvite accepts the unaccepted, unexpired entry whose digest
	// matches, clears the digest and binds userID when the entry is unbound.
	// ErrNotFound means no entry matched; ErrAlreadyExists means the user is
	// already an accepted member of that workspace.
	AcceptInvite(ctx context.Context, digest, userID string, now time.Time) (domain.Member, error)

	// BindEmail attaches unbound entries for email to userID.
	BindEmail(ctx context.Context, email, userID string, now time.Time) (int64, error)

	RemoveMember(ctx context.Context, workspaceID, memberID string) error
	ListMembers(ctx context.Context, workspaceID string) ([]domain.Member, error)

	// DeleteExpiredInvites removes pending entries whose invite expired.
	DeleteExpiredInvites(ctx context.Context, now time.Time) (int64, error)
}
