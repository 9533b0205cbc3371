package scribesdk

import "time"

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	// Error is a stable machine readable code (e.g. "invalid_credentials")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// MessageResponse is returned by endpoints that only acknowledge a request.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Token Types
// ============================================================================

// TokenResponse carries an access and refresh token pair.
type TokenResponse struct {
	// AccessToken is the JWT sent as "Authorization: Bearer {token}"
	AccessToken string `json:"access_token"`

	// RefreshToken is exchanged at /v1/auth/refresh for a new access token
	RefreshToken string `json:"refresh_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`
}

// ============================================================================
// Authentication
// ============================================================================

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=256"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is returned by register, login, refresh and the OAuth
// callback exchange.
type AuthResponse struct {
	TokenResponse

	User UserResponse `json:"user"`

	// VerificationSent reports whether the verification mail went out.
	// Only set by register.
	VerificationSent *bool `json:"verification_sent,omitempty"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=256"`
}

type VerifyEmailRequest struct {
	Code string `json:"code" validate:"required,numeric,len=6"`
}

type ResendVerificationResponse struct {
	Sent bool `json:"sent"`
}

// ============================================================================
// Users
// ============================================================================

// UserResponse is the public view of an account. Secrets and digests never
// leave the service.
type UserResponse struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	FirstName        string         `json:"first_name"`
	LastName         string         `json:"last_name"`
	MobileNumber     string         `json:"mobile_number,omitempty"`
	EmailVerified    bool           `json:"email_verified"`
	HasPassword      bool           `json:"has_password"`
	OnboardingStatus string         `json:"onboarding_status"`
	OnboardingStep   int            `json:"onboarding_step"`
	Onboarding       OnboardingData `json:"onboarding"`
	Preferences      map[string]any `json:"preferences"`
	LastLoginAt      *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

type UpdateProfileRequest struct {
	FirstName    string `json:"first_name" validate:"required,max=100"`
	LastName     string `json:"last_name" validate:"required,max=100"`
	MobileNumber string `json:"mobile_number,omitempty" validate:"omitempty,max=32"`
}

type UpdatePreferencesRequest struct {
	Preferences map[string]any `json:"preferences" validate:"required,max=50"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=256"`
}

// ============================================================================
// Onboarding
// ============================================================================

// OnboardingData holds the answers recorded so far. Empty fields are
// unanswered.
type OnboardingData struct {
	WorkspaceType       string   `json:"workspace_type,omitempty"`
	PreferredTheme      string   `json:"preferred_theme,omitempty"`
	PostStyle           string   `json:"post_style,omitempty"`
	PostFrequency       int      `json:"post_frequency,omitempty"`
	Language            string   `json:"language,omitempty"`
	WebsiteLink         string   `json:"website_link,omitempty"`
	InspirationProfiles []string `json:"inspiration_profiles,omitempty"`
}

type OnboardingStatusResponse struct {
	Status string         `json:"status"`
	Step   int            `json:"step"`
	Data   OnboardingData `json:"data"`
}

type UpdateStepRequest struct {
	Step *int `json:"step" validate:"required"`
}

// OnboardingValueRequest sets a single enumerated answer.
type OnboardingValueRequest struct {
	Value string `json:"value" validate:"required"`
}

type PostFrequencyRequest struct {
	PostFrequency int `json:"post_frequency" validate:"required"`
}

// WebsiteLinkRequest accepts an empty link, which clears the answer.
type WebsiteLinkRequest struct {
	WebsiteLink string `json:"website_link"`
}

type InspirationProfilesRequest struct {
	Profiles []string `json:"profiles" validate:"required"`
}

type CompleteOnboardingRequest struct {
	WorkspaceName string `json:"workspace_name" validate:"required,max=100"`
}

type CompleteOnboardingResponse struct {
	User      UserResponse      `json:"user"`
	Workspace WorkspaceResponse `json:"workspace"`
}

// ============================================================================
// Workspaces
// ============================================================================

type WorkspaceSettings struct {
	PreferredTheme   string `json:"preferred_theme"`
	DefaultPostStyle string `json:"default_post_style"`
	DefaultLanguage  string `json:"default_language"`
}

type CreateWorkspaceRequest struct {
	Name     string             `json:"name" validate:"required,max=100"`
	Type     string             `json:"type" validate:"required,oneof=team individual"`
	Settings *WorkspaceSettings `json:"settings,omitempty"`
}

// UpdateWorkspaceRequest changes only the fields that are present.
type UpdateWorkspaceRequest struct {
	Name             *string `json:"name,omitempty" validate:"omitempty,max=100"`
	PreferredTheme   *string `json:"preferred_theme,omitempty"`
	DefaultPostStyle *string `json:"default_post_style,omitempty"`
	DefaultLanguage  *string `json:"default_language,omitempty"`
}

type MemberResponse struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id,omitempty"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	Accepted        bool       `json:"accepted"`
	InvitedBy       string     `json:"invited_by,omitempty"`
	InviteExpiresAt *time.Time `json:"invite_expires_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type WorkspaceResponse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	OwnerID  string            `json:"owner_id"`
	Settings WorkspaceSettings `json:"settings"`

	// Access is the caller's access level: owner, admin or member.
	Access string `json:"access,omitempty"`

	// Role is the caller's effective role. The owner reports admin.
	Role string `json:"role,omitempty"`

	Members   []MemberResponse `json:"members"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type ListWorkspacesResponse struct {
	Workspaces []WorkspaceResponse `json:"workspaces"`
}

type InviteRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Role  string `json:"role" validate:"required,oneof=admin writer viewer"`
}

type InviteResponse struct {
	Member    MemberResponse `json:"member"`
	EmailSent bool           `json:"email_sent"`
}

type AcceptInvitationResponse struct {
	WorkspaceID string         `json:"workspace_id"`
	Member      MemberResponse `json:"member"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Status is "ok" or "degraded"
	Status string `json:"status"`

	// Uptime is the duration since the service started
	Uptime string `json:"uptime,omitempty"`

	// Version is the build version
	Version string `json:"version,omitempty"`

	// Checks contains the readiness of critical dependencies
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents individual component health checks.
type HealthChecks struct {
	// Database is "ok" or an error message
	Database string `json:"database"`

	// Signer is "ok" or an error message
	Signer string `json:"signer"`
}
