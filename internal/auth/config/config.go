// Package config resolves the service configuration from the environment
// once at startup.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"

	"github.com/hail-faro/public-backend/internal/auth/domain"
)

var (
	ErrEnvNotFound = errors.New("config: environment variable not set")
	ErrEnvInvalid  = errors.New("config: environment variable invalid")
)

type Config struct {
	// User pool.
	Secret     string          `env:"COGNITO_SECRET"`
	ClientID   string          `env:"APP_CLIENT_ID"`
	UserPoolID string          `env:"USER_POOL_ID"`
	Region     string          `env:"COGNITO_REGION"`
	AWSRegion  string          `env:"AWS_REGION"` // fallback for Region
	Flow       domain.FlowType `env:"AUTH_FLOW" envDefault:"ADMIN_USER_PASSWORD_AUTH"`

	// Session cookies.
	CookieDomain string `env:"COOKIE_DOMAIN"` // empty: request host
	CookieSecure bool   `env:"COOKIE_SECURE" envDefault:"true"`

	// Key set cache.
	JWKSCacheTTL        time.Duration `env:"JWKS_CACHE_TTL" envDefault:"1h"`
	JWKSRefreshInterval time.Duration `env:"JWKS_REFRESH_INTERVAL" envDefault:"30m"` // 0 disables
	JWKSIssuerURL       string        `env:"JWKS_ISSUER_URL"`                         // local stacks only

	Env                 string        `env:"ENV" envDefault:"dev"`
	LogLevel            string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat           string        `env:"LOG_FORMAT" envDefault:"json"`
	Port                int           `env:"PORT" envDefault:"8000"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
	_ = godotenv.Load() // a missing .env is normal outside local dev
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrEnvInvalid, err)
	}
	if cfg.Region == "" {
		cfg.Region = cfg.AWSRegion
	}
	return cfg, nil
}

// Validate reports every missing user pool setting. The service still starts
// without them; logins fail at the step that needs the value.
func (c Config) Validate() error {
	var result *multierror.Error
	for _, v := range []struct{ name, value string }{
		{"COGNITO_SECRET", c.Secret},
		{"APP_CLIENT_ID", c.ClientID},
		{"USER_POOL_ID", c.UserPoolID},
		{"COGNITO_REGION", c.Region},
	} {
		if v.value == "" {
			result = multierror.Append(result, fmt.Errorf("%w: %s", ErrEnvNotFound, v.name))
		}
	}
	return result.ErrorOrNil()
}

// Credentials is the per-attempt client configuration handed to the core.
func (c Config) Credentials() domain.Credentials {
	return domain.Credentials{
		Secret:     c.Secret,
		ClientID:   c.ClientID,
		UserPoolID: c.UserPoolID,
		Flow:       c.Flow,
	}
}

// Addr is the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
