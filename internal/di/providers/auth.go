package providers

import (
	"github.com/samber/do/v2"

	"github.com/staybook/staybook-server/internal/auth"
	"github.com/staybook/staybook-server/internal/config"
	"github.com/staybook/staybook-server/internal/logger"
)

// AuthKey wraps the token signing key bytes.
type AuthKey []byte

// ProvideAuthKey uses the configured secret or loads (and on first run
// generates) the key file under the data path.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.ResolveSecret(cfg.Auth.Secret, cfg.App.DataPath)
	if err != nil {
		return nil, err
	}

	log.Info("Authentication key loaded",
		"from_config", cfg.Auth.Secret != "",
		"token_format", cfg.Auth.TokenFormat,
		"token_ttl", cfg.Auth.TokenTTL,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the JWT or PASETO token service.
func ProvideTokenService(i do.Injector) (auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService(cfg.Auth.TokenFormat, []byte(key), cfg.Auth.TokenTTL)
}
