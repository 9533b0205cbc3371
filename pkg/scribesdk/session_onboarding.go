package scribesdk

import (
	"context"
	"net/http"
)

// OnboardingStatus returns the current step, status and answers.
func (s *Session) OnboardingStatus(ctx context.Context) (*OnboardingStatusResponse, error) {
	return authCall[OnboardingStatusResponse](ctx, s, http.MethodGet, "/v1/onboarding/status", nil, http.StatusOK)
}

// UpdateOnboardingStep moves to any step between 1 and 9.
func (s *Session) UpdateOnboardingStep(ctx context.Context, step int) (*OnboardingStatusResponse, error) {
	return authCall[OnboardingStatusResponse](ctx, s, http.MethodPut, "/v1/onboarding/step",
		UpdateStepRequest{Step: &step}, http.StatusOK)
}

func (s *Session) setOnboardingValue(ctx context.Context, field, value string) (*OnboardingStatusResponse, error) {
	return authCall[OnboardingStatusResponse](ctx, s, http.MethodPut, "/v1/onboarding/"+field,
		OnboardingValueRequest{Value: value}, http.StatusOK)
}

// SetWorkspaceType records "team" or "individual".
func (s *Session) SetWorkspaceType(ctx context.Context, value string) (*OnboardingStatusResponse, error) {
	return s.setOnboardingValue(ctx, "workspace-type", value)
}

// SetPreferredTheme records "light" or "dark".
func (s *Session) SetPreferredTheme(ctx context.Context, value string) (*OnboardingStatusResponse, error) {
	return s.setOnboardingValue(ctx, "preferred-theme", value)
}

func (s *Session) SetPostStyle(ctx context.Context, value string) (*OnboardingStatusResponse, error) {
	return s.setOnboardingValue(ctx, "post-style", value)
}

func (s *Session) SetLanguage(ctx context.Context, value string) (*OnboardingStatusResponse, error) {
	return s.setOnboardingValue(ctx, "language", value)
}

// SetPostFrequency records posts per month, 1 to 30.
func (s *Session) SetPostFrequency(ctx context.Context, perMonth int) (*OnboardingStatusResponse, error) {
	return authCall[OnboardingStatusResponse](ctx, s, http.MethodPut, "/v1/onboarding/post-frequency",
		PostFrequencyRequest{PostFrequency: perMonth}, http.StatusOK)
}

// SetWebsiteLink records an http(s) URL; an empty link clears it.
func (s *Session) SetWebsiteLink(ctx context.Context, link string) (*OnboardingStatusResponse, error) {
	return authCall[OnboardingStatusResponse](ctx, s, http.MethodPut, "/v1/onboarding/website-link",
		WebsiteLinkRequest{WebsiteLink: link}, http.StatusOK)
}

func (s *Session) SetInspirationProfiles(ctx context.Context, profiles []string) (*OnboardingStatusResponse, error) {
	return authCall[OnboardingStatusResponse](ctx, s, http.MethodPut, "/v1/onboarding/inspiration-profiles",
		InspirationProfilesRequest{Profiles: profiles}, http.StatusOK)
}

// SetUserInfo records the name and mobile number on the account.
func (s *Session) SetUserInfo(ctx context.Context, req UpdateProfileRequest) (*OnboardingStatusResponse, error) {
	return authCall[OnboardingStatusResponse](ctx, s, http.MethodPut, "/v1/onboarding/user-info", req, http.StatusOK)
}

// CompleteOnboarding creates the first workspace from the recorded answers.
func (s *Session) CompleteOnboarding(ctx context.Context, workspaceName string) (*CompleteOnboardingResponse, error) {
	return authCall[CompleteOnboardingResponse](ctx, s, http.MethodPost, "/v1/onboarding/complete",
		CompleteOnboardingRequest{WorkspaceName: workspaceName}, http.StatusCreated)
}
