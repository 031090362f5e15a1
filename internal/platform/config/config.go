package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures process-level configuration.
type Server struct {
	Addr            string        `env:"PORTAL_ADDR" envDefault:":8080"`
	LogLevel        string        `env:"PORTAL_LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"PORTAL_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowedOrigin   string        `env:"PORTAL_ALLOWED_ORIGIN" envDefault:"*"`

	Backend      Backend      `envPrefix:"PORTAL_BACKEND_"`
	Registration Registration `envPrefix:"PORTAL_REGISTRATION_"`
	Session      Session      `envPrefix:"PORTAL_SESSION_"`
	Redis        RedisConfig  `envPrefix:"PORTAL_REDIS_"`
}

// Backend describes the marketplace REST API.
type Backend struct {
	BaseURL string        `env:"URL" envDefault:"http://localhost:5000"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`

	// Consecutive failures before calls fail fast, and the wait between probes.
	BreakerThreshold int           `env:"BREAKER_THRESHOLD" envDefault:"5"`
	BreakerCooldown  time.Duration `env:"BREAKER_COOLDOWN" envDefault:"30s"`
}

// Registration tunes the draft registry.
type Registration struct {
	DraftTTL        time.Duration `env:"DRAFT_TTL" envDefault:"2h"`
	JanitorInterval time.Duration `env:"JANITOR_INTERVAL" envDefault:"1m"`
	MaxUploadBytes  int64         `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	// MaxDocuments caps staged attachments per draft; 0 means no cap.
	MaxDocuments int `env:"MAX_DOCUMENTS" envDefault:"10"`
}

// Session controls how long login handoffs are kept.
type Session struct {
	// DefaultTTL applies when the backend token carries no expiry.
	DefaultTTL time.Duration `env:"DEFAULT_TTL" envDefault:"24h"`
}

// RedisConfig enables the Redis session store when URL is set.
type RedisConfig struct {
	URL          string        `env:"URL"`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c Server) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend URL %q", c.Backend.BaseURL)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive")
	}
	if c.Registration.DraftTTL <= 0 || c.Registration.JanitorInterval <= 0 {
		return fmt.Errorf("draft TTL and janitor interval must be positive")
	}
	if c.Session.DefaultTTL <= 0 {
		return fmt.Errorf("session default TTL must be positive")
	}
	if c.Registration.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}
	if c.Registration.MaxDocuments < 0 {
		return fmt.Errorf("max documents must not be negative")
	}
	return nil
}
