package http

import (
	"time"

	"github.com/aussiebroadwan/scribe/internal/scribe/domain"
	"github.com/aussiebroadwan/scribe/pkg/scribesdk"
)

func toTokenResponse(p domain.TokenPair, now time.Time) scribesdk.TokenResponse {
	return scribesdk.TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		ExpiresIn:    p.ExpiresIn(now),
	}
}

func toOnboardingData(d domain.OnboardingData) scribesdk.OnboardingData {
	return scribesdk.OnboardingData{
		WorkspaceType:       string(d.WorkspaceType),
		PreferredTheme:      string(d.Theme),
		PostStyle:           string(d.PostStyle),
		PostFrequency:       d.PostFrequency,
		Language:            string(d.Language),
		WebsiteLink:         d.WebsiteLink,
		InspirationProfiles: d.InspirationProfiles,
	}
}

func toUserResponse(u domain.User) scribesdk.UserResponse {
	prefs := u.Preferences
	if prefs == nil {
		prefs = map[string]any{}
	}
	return scribesdk.UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		MobileNumber:     u.MobileNumber,
		EmailVerified:    u.EmailVerified,
		HasPassword:      u.HasPassword(),
		OnboardingStatus: string(u.OnboardingStatus),
		OnboardingStep:   u.OnboardingStep,
		Onboarding:       toOnboardingData(u.Onboarding),
		Preferences:      prefs,
		LastLoginAt:      u.LastLoginAt,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func toOnboardingStatus(u domain.User) scribesdk.OnboardingStatusResponse {
	return scribesdk.OnboardingStatusResponse{
		Status: string(u.OnboardingStatus),
		Step:   u.OnboardingStep,
		Data:   toOnboardingData(u.Onboarding),
	}
}

func toMemberResponse(m domain.Member) scribesdk.MemberResponse {
	return scribesdk.MemberResponse{
		ID:              m.ID,
		UserID:          m.UserID,
		Email:           m.Email,
		Role:            string(m.Role),
		Accepted:        m.Accepted,
		InvitedBy:       m.InvitedBy,
		InviteExpiresAt: m.InviteExpiresAt,
		CreatedAt:       m.CreatedAt,
	}
}

func toWorkspaceSettings(s domain.WorkspaceSettings) scribesdk.WorkspaceSettings {
	return scribesdk.WorkspaceSettings{
		PreferredTheme:   string(s.Theme),
		DefaultPostStyle: string(s.PostStyle),
		DefaultLanguage:  string(s.Language),
	}
}

// toWorkspaceResponse renders w as seen by callerID. Only those who manage
// the workspace see pending invitations.
func toWorkspaceResponse(w domain.Workspace, callerID string) scribesdk.WorkspaceResponse {
	access := domain.ResolveAccess(w, callerID)
	members := make([]scribesdk.MemberResponse, 0, len(w.Members))
	for _, m := range w.Members {
		if !m.Accepted && !access.CanManage() {
			continue
		}
		members = append(members, toMemberResponse(m))
	}

	resp := scribesdk.WorkspaceResponse{
		ID:        w.ID,
		Name:      w.Name,
		Type:      string(w.Type),
		OwnerID:   w.OwnerID,
		Settings:  toWorkspaceSettings(w.Settings),
		Members:   members,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
	if access.CanView() {
		resp.Access = access.String()
	}
	if role, ok := domain.RoleFor(w, callerID); ok {
		resp.Role = string(role)
	}
	return resp
}
