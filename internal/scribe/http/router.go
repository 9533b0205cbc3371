package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/scribe/internal/scribe/oauth"
	"github.com/aussiebroadwan/scribe/internal/scribe/service"
	"github.com/aussiebroadwan/scribe/internal/scribe/store"
	"github.com/aussiebroadwan/scribe/pkg/httpx"
	"github.com/aussiebroadwan/scribe/pkg/jwtx"
	"github.com/aussiebroadwan/scribe/pkg/slogx"

	_ "github.com/aussiebroadwan/scribe/api/scribe" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         map[jwtx.Purpose]*jwtx.KeyManager
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	TokenService      *service.TokenService
	IdentityService   *service.IdentityService
	UserService       *service.UserService
	OnboardingService *service.OnboardingService
	WorkspaceService  *service.WorkspaceService

	// Providers lists the external identity providers that are configured.
	Providers   oauth.Registry
	FrontendURL string

	// RequireVerifiedEmail gates the workspace routes on a verified email.
	RequireVerifiedEmail bool
	SecureCookies        bool
}

// NewRouter builds a router whose secured routes accept access tokens of the
// given key set.
func NewRouter(
	keys map[jwtx.Purpose]*jwtx.KeyManager,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}
	if km := keys[jwtx.PurposeAccess]; km != nil {
		r.verifier = km
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerOAuth()
	r.registerUsers()
	r.registerOnboarding()
	r.registerWorkspaces()
	r.registerInvitations()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Scribe Identity API
//	@version		0.1.0
//	@description	Accounts, sign in, onboarding and workspace membership for Scribe.
//	@description
//	@description				Access tokens are short lived JWTs. Exchange the refresh token at /v1/auth/refresh for a new one.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/scribe
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured requires a valid access token.
func (r *Router) secured(h http.HandlerFunc, extra ...httpx.Middleware) http.Handler {
	mws := append([]httpx.Middleware{httpx.AuthnMiddleware(r.verifier)}, extra...)
	return httpx.Chain(h, mws...)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Identity: r.IdentityService,
		Tokens:   r.TokenService,
		Users:    r.UserService,
	}

	r.Mux.HandleFunc("POST /v1/auth/register", h.Register)
	r.Mux.HandleFunc("POST /v1/auth/login", h.Login)
	r.Mux.HandleFunc("POST /v1/auth/refresh", h.Refresh)
	r.Mux.HandleFunc("POST /v1/auth/forgot-password", h.ForgotPassword)
	r.Mux.HandleFunc("POST /v1/auth/reset-password/{token}", h.ResetPassword)

	r.Mux.Handle("POST /v1/auth/verify-email", r.secured(h.VerifyEmail))
	r.Mux.Handle("POST /v1/auth/resend-verification", r.secured(h.ResendVerification))
}

func (r *Router) registerOAuth() {
	h := &OAuthHandler{
		Providers:   r.Providers,
		Identity:    r.IdentityService,
		FrontendURL: r.FrontendURL,
		Secure:      r.SecureCookies,
	}

	r.Mux.HandleFunc("GET /v1/auth/{provider}", h.Start)
	r.Mux.HandleFunc("GET /v1/auth/{provider}/callback", h.Callback)
}

func (r *Router) registerUsers() {
	h := &UserHandler{
		Users:    r.UserService,
		Identity: r.IdentityService,
	}

	r.Mux.Handle("GET /v1/users/me", r.secured(h.Me))
	r.Mux.Handle("PUT /v1/users/me/profile", r.secured(h.UpdateProfile))
	r.Mux.Handle("PUT /v1/users/me/preferences", r.secured(h.UpdatePreferences))
	r.Mux.Handle("PUT /v1/users/me/password", r.secured(h.ChangePassword))
}

func (r *Router) registerOnboarding() {
	h := &OnboardingHandler{Onboarding: r.OnboardingService}
	o := r.OnboardingService

	r.Mux.Handle("GET /v1/onboarding/status", r.secured(h.Status))
	r.Mux.Handle("PUT /v1/onboarding/step", r.secured(h.UpdateStep))
	r.Mux.Handle("PUT /v1/onboarding/workspace-type", r.secured(h.SetValue(o.SetWorkspaceType, "set workspace type")))
	r.Mux.Handle("PUT /v1/onboarding/preferred-theme", r.secured(h.SetValue(o.SetTheme, "set theme")))
	r.Mux.Handle("PUT /v1/onboarding/post-style", r.secured(h.SetValue(o.SetPostStyle, "set post style")))
	r.Mux.Handle("PUT /v1/onboarding/language", r.secured(h.SetValue(o.SetLanguage, "set language")))
	r.Mux.Handle("PUT /v1/onboarding/post-frequency", r.secured(h.SetPostFrequency))
	r.Mux.Handle("PUT /v1/onboarding/website-link", r.secured(h.SetWebsiteLink))
	r.Mux.Handle("PUT /v1/onboarding/inspiration-profiles", r.secured(h.SetInspirationProfiles))
	r.Mux.Handle("PUT /v1/onboarding/user-info", r.secured(h.SetUserInfo))
	r.Mux.Handle("POST /v1/onboarding/complete", r.secured(h.Complete))
}

func (r *Router) registerWorkspaces() {
	h := &WorkspaceHandler{Workspaces: r.WorkspaceService}

	var gate []httpx.Middleware
	if r.RequireVerifiedEmail {
		gate = append(gate, RequireVerifiedEmail(r.UserService))
	}

	r.Mux.Handle("POST /v1/workspaces", r.secured(h.Create, gate...))
	r.Mux.Handle("GET /v1/workspaces", r.secured(h.List, gate...))
	r.Mux.Handle("GET /v1/workspaces/{id}", r.secured(h.Get, gate...))
	r.Mux.Handle("PUT /v1/workspaces/{id}", r.secured(h.Update, gate...))
	r.Mux.Handle("DELETE /v1/workspaces/{id}", r.secured(h.Delete, gate...))
	r.Mux.Handle("POST /v1/workspaces/{id}/members", r.secured(h.Invite, gate...))
	r.Mux.Handle("DELETE /v1/workspaces/{id}/members/{member}", r.secured(h.RemoveMember, gate...))
}

func (r *Router) registerInvitations() {
	h := &InvitationHandler{Workspaces: r.WorkspaceService}

	r.Mux.Handle("POST /v1/invitations/{token}/accept",
		httpx.Chain(http.HandlerFunc(h.Accept), httpx.OptionalAuthnMiddleware(r.verifier)),
	)
}

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.HandleFunc("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys))
}
