// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Sensible defaults are provided for development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration. Populated from environment
// variables (and an optional .env file) at startup and passed to other
// packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string `env:"ENV" envDefault:"development"`

	// Host is the HTTP listen address.
	Host string `env:"HOST" envDefault:"127.0.0.1"`

	// Port is the HTTP listen port.
	Port int `env:"PORT" envDefault:"9001"`

	// ProfilesFile is the path of the JSON file holding SMTP profiles.
	ProfilesFile string `env:"PROFILES_FILE" envDefault:"profiles.json"`

	// SMTPTimeout bounds the dial and TLS handshake of one send attempt.
	SMTPTimeout time.Duration `env:"SMTP_TIMEOUT" envDefault:"10s"`

	// SendRateLimit is the max send requests per client IP per window.
	SendRateLimit int `env:"SEND_RATE_LIMIT" envDefault:"30"`

	// SendRateWindow is the rate limit window duration.
	SendRateWindow time.Duration `env:"SEND_RATE_WINDOW" envDefault:"1m"`

	// DefaultProfile holds the profile auto-registered at startup.
	DefaultProfile DefaultProfileConfig
}

// DefaultProfileConfig holds the SMTP profile registered into the store
// before the server accepts traffic. It is only applied when ID, Host,
// User and Password are all non-empty.
type DefaultProfileConfig struct {
	// ID is the profile_id the default profile is stored under. Send
	// requests that omit an explicit profile fall back to this id.
	ID string `env:"DEFAULT_PROFILE_ID"`

	// Host is the SMTP server hostname.
	Host string `env:"SMTP_HOST"`

	// Port is the SMTP server port. The port decides the transport
	// security mode: 465 implicit TLS, 587 STARTTLS, anything else
	// unencrypted.
	Port int `env:"SMTP_PORT" envDefault:"587"`

	// User is the SMTP username.
	User string `env:"SMTP_USER"`

	// Password is the SMTP password or app password.
	Password string `env:"SMTP_PASSWORD"`

	// FromEmail is the default sender address. Falls back to User when empty.
	FromEmail string `env:"FROM_EMAIL"`

	// FromName is the default sender display name.
	FromName string `env:"FROM_NAME" envDefault:"Email Service"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win
// over .env entries.
func Load() (*Config, error) {
	// A missing .env is the normal case in production.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

// HasDefaultProfile reports whether the default profile is fully specified
// and should be auto-registered at startup.
func (c *Config) HasDefaultProfile() bool {
	d := c.DefaultProfile
	return d.ID != "" && d.Host != "" && d.User != "" && d.Password != ""
}

// ListenAddr returns the host:port pair the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
