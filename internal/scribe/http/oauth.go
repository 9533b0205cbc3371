package http

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aussiebroadwan/scribe/internal/scribe/domain"
	"github.com/aussiebroadwan/scribe/internal/scribe/oauth"
	"github.com/aussiebroadwan/scribe/internal/scribe/service"
	"github.com/aussiebroadwan/scribe/pkg/cryptox"
	"github.com/aussiebroadwan/scribe/pkg/scribesdk"
	"github.com/aussiebroadwan/scribe/pkg/slogx"
)

const (
	stateCookieName = "scribe_oauth_state"
	stateCookieTTL  = 10 * time.Minute
)

// Error codes placed in the login redirect after a failed sign in.
const (
	oauthErrDenied     = "oauth_denied"
	oauthErrState      = "invalid_state"
	oauthErrUnverified = "unverified_email"
	oauthErrFailed     = "oauth_failed"
)

// OAuthHandler runs the browser side of the external sign in. Both endpoints
// end in a redirect; the frontend never sees provider tokens.
type OAuthHandler struct {
	Providers   oauth.Registry
	Identity    *service.IdentityService
	FrontendURL string
	Secure      bool
	Clock       func() time.Time
}

func (h *OAuthHandler) now() time.Time {
	if h.Clock == nil {
		return time.Now()
	}
	return h.Clock()
}

func (h *OAuthHandler) provider(w http.ResponseWriter, r *http.Request) (oauth.Provider, bool) {
	p, ok := h.Providers.Get(domain.Provider(r.PathValue("provider")))
	if !ok {
		scribesdk.ErrProviderNotConfigured.WriteError(w)
		return nil, false
	}
	return p, true
}

// Start redirects the browser to the provider's consent page.
//
//	@Summary		Start an external sign in
//	@Description	Sets a short lived state cookie and redirects to the provider.
//	@Tags			Auth
//	@Param			provider	path	string	true	"Identity provider"	Enums(google, linkedin)
//	@Success		302
//	@Failure		404	{object}	scribesdk.ErrorResponse	"Provider not configured"
//	@Router			/v1/auth/{provider} [get].
func (h *OAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	p, ok := h.provider(w, r)
	if !ok {
		return
	}

	state, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		slogx.FromContext(r.Context()).Error("failed to generate oauth state", "err", err)
		scribesdk.ErrServerError.WriteError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/v1/auth/",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, p.AuthCodeURL(state), http.StatusFound)
}

// Callback completes the sign in and hands the token pair to the frontend in
// the URL fragment.
//
//	@Summary		Complete an external sign in
//	@Description	On success redirects to {frontend}/oauth-callback#access_token=..&refresh_token=..&expires_in=..
//	@Description	On failure redirects to {frontend}/login?error={code}.
//	@Tags			Auth
//	@Param			provider	path	string	true	"Identity provider"	Enums(google, linkedin)
//	@Param			code		query	string	false	"Authorization code"
//	@Param			state		query	string	false	"State echoed by the provider"
//	@Success		302
//	@Failure		404	{object}	scribesdk.ErrorResponse	"Provider not configured"
//	@Router			/v1/auth/{provider}/callback [get].
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	p, ok := h.provider(w, r)
	if !ok {
		return
	}
	log = log.With("provider", string(p.Name()))

	// The state cookie is single use.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/v1/auth/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		log.Info("provider denied sign in", "reason", reason)
		h.fail(w, r, oauthErrDenied)
		return
	}

	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" || q.Get("state") == "" ||
		subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(q.Get("state"))) != 1 {
		log.Warn("oauth state mismatch")
		h.fail(w, r, oauthErrState)
		return
	}

	code := q.Get("code")
	if code == "" {
		h.fail(w, r, oauthErrFailed)
		return
	}

	profile, err := p.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, oauth.ErrUnverifiedEmail) {
			log.Info("provider email not verified")
			h.fail(w, r, oauthErrUnverified)
			return
		}
		log.Warn("oauth exchange failed", "err", err)
		h.fail(w, r, oauthErrFailed)
		return
	}

	res, err := h.Identity.OAuthLogin(ctx, profile)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Warn("provider profile incomplete")
			h.fail(w, r, oauthErrFailed)
			return
		}
		log.Error("oauth sign in failed", "err", err)
		h.fail(w, r, oauthErrFailed)
		return
	}

	fragment := url.Values{}
	fragment.Set("access_token", res.Tokens.AccessToken)
	fragment.Set("refresh_token", res.Tokens.RefreshToken)
	fragment.Set("token_type", res.Tokens.TokenType)
	fragment.Set("expires_in", strconv.Itoa(res.Tokens.ExpiresIn(h.now())))

	target := frontendURL(h.FrontendURL, "oauth-callback")
	target.Fragment = fragment.Encode()

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, target.String(), http.StatusFound)
}

func (h *OAuthHandler) fail(w http.ResponseWriter, r *http.Request, code string) {
	target := frontendURL(h.FrontendURL, "login")
	target.RawQuery = url.Values{"error": {code}}.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}

func frontendURL(base, path string) *url.URL {
	u, err := url.Parse(base)
	if err != nil {
		u = &url.URL{Path: "/"}
	}
	return u.JoinPath(path)
}
