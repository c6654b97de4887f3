package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	// IdentityDatabaseURL points at the external mock identity store.
	// Identity routes are not registered when it is empty.
	IdentityDatabaseURL string `env:"IDENTITY_DATABASE_URL"`

	// RedisURL is optional; the consumed-code cache falls back to an
	// in-memory implementation when it is empty.
	RedisURL string `env:"REDIS_URL"`

	// OIDC token exchange. Exchange routes are registered only when
	// issuer, client id, redirect URI and private key are all set.
	OIDCIssuer             string `env:"OIDC_ISSUER"`
	OIDCClientID           string `env:"OIDC_CLIENT_ID"`
	OIDCRedirectURI        string `env:"OIDC_REDIRECT_URI"`
	OIDCPrivateKey         string `env:"OIDC_PRIVATE_KEY"`
	OIDCHTTPTimeoutSeconds int    `env:"OIDC_HTTP_TIMEOUT_SECONDS" envDefault:"10"`

	// SessionSecret selects the session strategy: signed stateless tokens
	// when set, an in-memory table of opaque tokens when empty.
	SessionSecret     string `env:"SESSION_SECRET"`
	SessionTTLMinutes int    `env:"SESSION_TTL_MINUTES" envDefault:"30"`

	AdminUsername     string `env:"ADMIN_USERNAME" envDefault:"Admin"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c *Config) OIDCHTTPTimeout() time.Duration {
	return time.Duration(c.OIDCHTTPTimeoutSeconds) * time.Second
}

func (c *Config) OIDCConfigured() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != "" &&
		c.OIDCRedirectURI != "" && c.OIDCPrivateKey != ""
}

func (c *Config) IdentityStoreConfigured() bool {
	return c.IdentityDatabaseURL != ""
}

func (c *Config) Validate(isProduction bool) error {
	if c.AdminPasswordHash != "" {
		if !strings.HasPrefix(c.AdminPasswordHash, "$2a$") &&
			!strings.HasPrefix(c.AdminPasswordHash, "$2b$") &&
			!strings.HasPrefix(c.AdminPasswordHash, "$2y$") {
			return fmt.Errorf("ADMIN_PASSWORD_HASH must be a bcrypt hash (generate with: go run scripts/hash-password.go <password>)")
		}
	}

	if c.SessionTTLMinutes <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive")
	}

	if isProduction {
		if c.SessionSecret != "" {
			if err := validateSecret("SESSION_SECRET", c.SessionSecret); err != nil {
				return err
			}
		} else {
			log.Warn().Msg("SESSION_SECRET is empty in production: sessions are held in memory and lost on restart")
		}
		if c.AdminPasswordHash == "" {
			log.Warn().Msg("ADMIN_PASSWORD_HASH is empty in production: admin login disabled unless a user row already exists")
		}
	}

	if !c.OIDCConfigured() {
		log.Warn().Msg("OIDC not fully configured: token exchange routes disabled")
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
