package app

import (
	"fmt"
	"net/url"
	"time"

	"github.com/aussiebroadwan/scribe/internal/scribe/mail"
	"github.com/aussiebroadwan/scribe/internal/scribe/oauth"
	"github.com/aussiebroadwan/scribe/pkg/jwtx"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Issuer string `env:"SCRIBE_ISSUER" envDefault:"scribe"`

	// Secrets select HS256 and let replicas share tokens. When empty an
	// ephemeral Ed25519 key is generated and tokens die with the process.
	AccessTokenSecret  string `env:"SCRIBE_ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret string `env:"SCRIBE_REFRESH_TOKEN_SECRET"`

	AccessTokenTTL  time.Duration `env:"SCRIBE_ACCESS_TOKEN_TTL"`
	RefreshTokenTTL time.Duration `env:"SCRIBE_REFRESH_TOKEN_TTL"`

	// FrontendURL is the base of every link put in mail and of the OAuth
	// redirects.
	FrontendURL string `env:"SCRIBE_FRONTEND_URL" envDefault:"http://localhost:3000"`

	// RequireVerifiedEmail gates the workspace routes on a verified email.
	RequireVerifiedEmail bool `env:"SCRIBE_REQUIRE_VERIFIED_EMAIL" envDefault:"true"`

	DatabaseFile         string        `env:"SCRIBE_DATABASE_FILE" envDefault:"scribe.db"`
	PepperFile           string        `env:"SCRIBE_PEPPER_FILE" envDefault:"pepper"`
	Env                  string        `env:"ENV" envDefault:"dev"`
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat            string        `env:"LOG_FORMAT" envDefault:"json"`
	Port                 int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`

	SMTP     SMTPConfig  `envPrefix:"SMTP_"`
	Google   OAuthConfig `envPrefix:"GOOGLE_"`
	LinkedIn OAuthConfig `envPrefix:"LINKEDIN_"`
}

// SMTPConfig enables mail delivery when Host is set. Without it mail is
// rendered and logged only.
type SMTPConfig struct {
	Host        string `env:"HOST"`
	Port        int    `env:"PORT" envDefault:"587"`
	Username    string `env:"USERNAME"`
	Password    string `env:"PASSWORD"`
	From        string `env:"FROM" envDefault:"Scribe <no-reply@localhost>"`
	ImplicitTLS bool   `env:"IMPLICIT_TLS"`
}

func (c SMTPConfig) Enabled() bool { return c.Host != "" }

func (c SMTPConfig) mail() mail.SMTPConfig {
	return mail.SMTPConfig{
		Host:        c.Host,
		Port:        c.Port,
		Username:    c.Username,
		Password:    c.Password,
		From:        c.From,
		ImplicitTLS: c.ImplicitTLS,
	}
}

// OAuthConfig enables a provider when both client id and secret are set.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"`
}

func (c OAuthConfig) oauth() oauth.Config {
	return oauth.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
	}
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	u, err := url.Parse(c.FrontendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("SCRIBE_FRONTEND_URL must be an absolute http(s) URL, got %q", c.FrontendURL)
	}

	for name, secret := range map[string]string{
		"SCRIBE_ACCESS_TOKEN_SECRET":  c.AccessTokenSecret,
		"SCRIBE_REFRESH_TOKEN_SECRET": c.RefreshTokenSecret,
	} {
		if secret != "" && len(secret) < jwtx.MinHS256SecretSize {
			return fmt.Errorf("%s must be at least %d bytes", name, jwtx.MinHS256SecretSize)
		}
	}
	if c.AccessTokenSecret != "" && c.AccessTokenSecret == c.RefreshTokenSecret {
		return fmt.Errorf("access and refresh token secrets must differ")
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	return nil
}

// SecureCookies reports whether cookies should carry the Secure flag.
func (c Config) SecureCookies() bool {
	u, err := url.Parse(c.FrontendURL)
	return err == nil && u.Scheme == "https"
}
