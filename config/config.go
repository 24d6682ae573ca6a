package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// InstallState: зарезервированное значение state для установки приложения без контекста пользователя.
const InstallState = "hello"

// SwitScopes is the scope set requested from Swit, both on install and on user sign-in.
var SwitScopes = []string{
	"app:install",
	"channel:write",
	"channel:read",
	"message:read",
	"message:write",
	"project:read",
	"project:write",
	"task:read",
	"task:write",
}

// Config holds everything the service reads from the environment. It is built
// once at startup and passed by pointer into every constructor.
type Config struct {
	Port       string `env:"PORT" envDefault:"8282"`
	ActionPath string `env:"ACTION_PATH" envDefault:"/app/asana"`
	AppName    string `env:"APP_NAME" envDefault:"asana_sarah"`

	SigningKey        string        `env:"SWIT_SIGNING_KEY,required,notEmpty"`
	SignatureMaxDelay time.Duration `env:"SIGNATURE_MAX_DELAY" envDefault:"5m"`

	SwitAppID        string `env:"SWIT_APP_ID"`
	SwitClientID     string `env:"SWIT_CLIENT_ID"`
	SwitClientSecret string `env:"SWIT_CLIENT_SECRET"`
	SwitRedirectURI  string `env:"SWIT_REDIRECT_URI"`
	SwitAPIURL       string `env:"SWIT_API_URL" envDefault:"https://openapi.swit.io/"`

	AsanaClientID     string `env:"ASANA_CLIENT_ID"`
	AsanaClientSecret string `env:"ASANA_CLIENT_SECRET"`
	AsanaRedirectURI  string `env:"ASANA_REDIRECT_URI"`
	AsanaAuthURL      string `env:"ASANA_AUTH_URL" envDefault:"https://app.asana.com/-/oauth_authorize"`
	AsanaTokenURL     string `env:"ASANA_TOKEN_URL" envDefault:"https://app.asana.com/-/oauth_token"`
	AsanaAPIURL       string `env:"ASANA_API_URL" envDefault:"https://app.asana.com/api/1.0/"`

	DBDriver   string `env:"DB_DRIVER" envDefault:"postgres"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"asana.db"`

	TokenEncryptionKey string `env:"TOKEN_ENCRYPTION_KEY"`

	SessionKey          string        `env:"SESSION_KEY"`
	SessionCookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"true"`
	SessionMaxAge       time.Duration `env:"SESSION_MAX_AGE" envDefault:"15m"`

	HTTPClientTimeout time.Duration `env:"HTTP_CLIENT_TIMEOUT" envDefault:"10s"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	CORSDebug          bool     `env:"CORS_DEBUG" envDefault:"false"`

	OTelEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"asana-swit-backend"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that env tags cannot express.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.ActionPath, "/") {
		return fmt.Errorf("ACTION_PATH must start with /: %q", c.ActionPath)
	}
	if c.SignatureMaxDelay <= 0 {
		return errors.New("SIGNATURE_MAX_DELAY must be positive")
	}
	if c.SessionMaxAge <= 0 {
		return errors.New("SESSION_MAX_AGE must be positive")
	}
	if c.HTTPClientTimeout <= 0 {
		return errors.New("HTTP_CLIENT_TIMEOUT must be positive")
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

// SwitEndpoint joins a relative path onto SWIT_API_URL.
func (c *Config) SwitEndpoint(path string) string {
	return strings.TrimRight(c.SwitAPIURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// AsanaEndpoint joins a relative path onto ASANA_API_URL.
func (c *Config) AsanaEndpoint(path string) string {
	return strings.TrimRight(c.AsanaAPIURL, "/") + "/" + strings.TrimLeft(path, "/")
}
