package http

import (
	"net/http"

	"github.com/aussiebroadwan/scribe/internal/scribe/service"
	"github.com/aussiebroadwan/scribe/pkg/httpx"
	"github.com/aussiebroadwan/scribe/pkg/scribesdk"
)

// RequireVerifiedEmail rejects authenticated callers whose email is not yet
// verified. It must run after AuthnMiddleware.
func RequireVerifiedEmail(users *service.UserService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := callerID(w, r)
			if !ok {
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				writeServiceError(w, r, err, "load caller")
				return
			}
			if !user.EmailVerified {
				scribesdk.ErrEmailNotVerified.WriteError(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
