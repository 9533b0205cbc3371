package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/scribe/internal/scribe/store"
	"github.com/aussiebroadwan/scribe/pkg/httpx"
	"github.com/aussiebroadwan/scribe/pkg/jwtx"
	"github.com/aussiebroadwan/scribe/pkg/scribesdk"
)

func healthResponse(startTime time.Time, version, status string) scribesdk.HealthResponse {
	return scribesdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(startTime).Round(time.Second).String(),
		Version: version,
	}
}

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Returns 200 while the process is serving requests
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	scribesdk.HealthResponse
//	@Router			/livez [get]
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, healthResponse(startTime, version, "ok"))
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Checks the database and that every token purpose has a signing key loaded
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	scribesdk.HealthResponse
//	@Failure		503	{object}	scribesdk.HealthResponse
//	@Router			/readyz [get]
func ReadyzHandler(startTime time.Time, version string, st store.Store, keys map[jwtx.Purpose]*jwtx.KeyManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &scribesdk.HealthChecks{Database: "ok", Signer: "ok"}

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
		}
		for _, purpose := range jwtx.Purposes {
			if km := keys[purpose]; km == nil || !km.IsReady() {
				checks.Signer = "error: no " + string(purpose) + " key loaded"
				break
			}
		}

		resp := healthResponse(startTime, version, "ok")
		resp.Checks = checks
		code := http.StatusOK
		if checks.Database != "ok" || checks.Signer != "ok" {
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
		httpx.WriteJSON(w, code, resp)
	}
}
