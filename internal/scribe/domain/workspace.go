package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

type WorkspaceType string

const (
	WorkspaceTeam       WorkspaceType = "team"
	WorkspaceIndividual WorkspaceType = "individual"
)

func ParseWorkspaceType(s string) (WorkspaceType, error) {
	switch t := WorkspaceType(s); t {
	case WorkspaceTeam, WorkspaceIndividual:
		return t, nil
	}
	return "", invalid("workspaceType", "must be team or individual")
}

const MaxWorkspaceNameLength = 100

// InviteTTL is how long an invitation link stays redeemable.
const InviteTTL = 7 * 24 * time.Hour

type WorkspaceSettings struct {
	Theme     Theme     `json:"preferredTheme"`
	PostStyle PostStyle `json:"defaultPostStyle"`
	Language  Language  `json:"defaultLanguage"`
}

func DefaultWorkspaceSettings() WorkspaceSettings {
	return WorkspaceSettings{
		Theme:     ThemeLight,
		PostStyle: PostStyleStandard,
		Language:  LanguageEnglish,
	}
}

func (s WorkspaceSettings) Validate() error {
	if _, err := ParseTheme(string(s.Theme)); err != nil {
		return err
	}
	if _, err := ParsePostStyle(string(s.PostStyle)); err != nil {
		return err
	}
	if _, err := ParseLanguage(string(s.Language)); err != nil {
		return err
	}
	return nil
}

// Workspace is a tenant. OwnerID never changes after creation.
type Workspace struct {
	ID        string
	Name      string
	Type      WorkspaceType
	OwnerID   string
	Settings  WorkspaceSettings
	Members   []Member
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member is a membership entry. Until an invitation is accepted UserID may be
// empty and InviteDigest holds the fingerprint of the invitation token.
type Member struct {
	ID              string
	WorkspaceID     string
	UserID          string
	Email           string
	Role            Role
	Accepted        bool
	InviteDigest    string
	InviteExpiresAt *time.Time
	InvitedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Pending reports whether the entry is an outstanding invitation.
func (m Member) Pending() bool { return !m.Accepted }

// NewWorkspace builds a workspace. Team workspaces start with the owner as an
// accepted admin member; individual workspaces never have members.
func NewWorkspace(id, memberID, name string, typ WorkspaceType, owner User, settings WorkspaceSettings, now time.Time) (Workspace, error) {
	name, err := ValidateWorkspaceName(name)
	if err != nil {
		return Workspace{}, err
	}
	if _, err := ParseWorkspaceType(string(typ)); err != nil {
		return Workspace{}, err
	}
	if err := settings.Validate(); err != nil {
		return Workspace{}, err
	}

	w := Workspace{
		ID:        id,
		Name:      name,
		Type:      typ,
		OwnerID:   owner.ID,
		Settings:  settings,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if typ == WorkspaceTeam {
		w.Members = []Member{{
			ID:          memberID,
			WorkspaceID: id,
			UserID:      owner.ID,
			Email:       owner.Email,
			Role:        RoleAdmin,
			Accepted:    true,
			InvitedBy:   owner.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}}
	}
	return w, nil
}

func ValidateWorkspaceName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", "is required")
	}
	if utf8.RuneCountInString(name) > MaxWorkspaceNameLength {
		return "", invalid("name", "is too long")
	}
	return name, nil
}

// AcceptedMember returns the accepted entry bound to userID.
func (w Workspace) AcceptedMember(userID string) (Member, bool) {
	for _, m := range w.Members {
		if m.Accepted && m.UserID == userID {
			return m, true
		}
	}
	return Member{}, false
}

// MemberByEmail returns the first entry for a normalized email, accepted or not.
func (w Workspace) MemberByEmail(email string) (Member, bool) {
	for _, m := range w.Members {
		if m.Email == email {
			return m, true
		}
	}
	return Member{}, false
}

// Member returns the entry with the given member id.
func (w Workspace) Member(memberID string) (Member, bool) {
	for _, m := range w.Members {
		if m.ID == memberID {
			return m, true
		}
	}
	return Member{}, false
}
