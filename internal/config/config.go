package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Shell     ShellConfig
	Site      SiteConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	// AllowOrigins is the CORS origin list for the API routes.
	AllowOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// ShellConfig holds terminal session configuration.
type ShellConfig struct {
	IdleTimeout time.Duration `envconfig:"SHELL_IDLE_TIMEOUT" default:"30m"`
	MaxSessions int           `envconfig:"SHELL_MAX_SESSIONS" default:"1000"`
	Hostname    string        `envconfig:"SHELL_HOSTNAME" default:"scorchOS"`
	// ConnectRPS and ConnectBurst cap how fast new sessions are opened
	// across all clients.
	ConnectRPS   int `envconfig:"SHELL_CONNECT_RPS" default:"20"`
	ConnectBurst int `envconfig:"SHELL_CONNECT_BURST" default:"40"`
}

// SiteConfig holds page rendering configuration.
type SiteConfig struct {
	Name string `envconfig:"SITE_NAME" default:"Daniel Schmier"`
	Gzip bool   `envconfig:"SITE_GZIP" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	if c.Shell.MaxSessions <= 0 {
		return fmt.Errorf("invalid config: SHELL_MAX_SESSIONS must be positive, got %d", c.Shell.MaxSessions)
	}
	if c.Shell.IdleTimeout <= 0 {
		return fmt.Errorf("invalid config: SHELL_IDLE_TIMEOUT must be positive, got %s", c.Shell.IdleTimeout)
	}
	if c.Shell.ConnectRPS <= 0 {
		return fmt.Errorf("invalid config: SHELL_CONNECT_RPS must be positive, got %d", c.Shell.ConnectRPS)
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("invalid config: RATE_LIMIT_RPS must be positive, got %d", c.RateLimit.RequestsPerSecond)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8000",
			Host:         "0.0.0.0",
			AllowOrigins: []string{"*"},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Shell: ShellConfig{
			IdleTimeout:  30 * time.Minute,
			MaxSessions:  1000,
			Hostname:     "scorchOS",
			ConnectRPS:   20,
			ConnectBurst: 40,
		},
		Site: SiteConfig{
			Name: "Daniel Schmier",
			Gzip: true,
		},
	}
}
