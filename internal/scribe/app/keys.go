package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/scribe/pkg/jwtx"
)

// InitKeys creates one key manager per token purpose. Access and refresh
// tokens use the configured HS256 secrets when present; the other purposes
// always get an ephemeral key.
func InitKeys(cfg Config, logger *slog.Logger) (map[jwtx.Purpose]*jwtx.KeyManager, error) {
	secrets := map[jwtx.Purpose]string{
		jwtx.PurposeAccess:  cfg.AccessTokenSecret,
		jwtx.PurposeRefresh: cfg.RefreshTokenSecret,
	}

	keys := make(map[jwtx.Purpose]*jwtx.KeyManager)
	for _, purpose := range jwtx.Purposes {
		km, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{
			Purpose: purpose,
			Issuer:  cfg.Issuer,
			Secret:  []byte(secrets[purpose]),
		})
		if err != nil {
			return nil, fmt.Errorf("init %s key: %w", purpose, err)
		}
		keys[purpose] = km

		logger.Info("signing key ready",
			"purpose", purpose,
			"algorithm", km.Algorithm(),
		)
	}

	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		logger.Warn("no token secrets configured, tokens will not survive a restart")
	}
	return keys, nil
}
