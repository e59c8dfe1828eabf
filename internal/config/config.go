// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the server.
type Config struct {
	Port          int
	DBPath        string
	JWTSecret     string
	TokenDuration time.Duration
	LogLevel      string

	RateLimitPerMinute float64
	RateLimitBurst     int

	DispatchInterval    time.Duration
	DispatchBatchSize   int
	DispatchMaxAttempts int
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present; real environment
// variables take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	p := parser{getenv: getenv}
	cfg := &Config{
		Port:                p.int("PORT", 8080),
		DBPath:              p.string("DB_PATH", "./data/settle.db"),
		JWTSecret:           getenv("JWT_SECRET"),
		TokenDuration:       p.duration("TOKEN_DURATION", 24*time.Hour),
		LogLevel:            p.string("LOG_LEVEL", "info"),
		RateLimitPerMinute:  p.float("RATE_LIMIT_PER_MINUTE", 120),
		RateLimitBurst:      p.int("RATE_LIMIT_BURST", 20),
		DispatchInterval:    p.duration("DISPATCH_INTERVAL", 5*time.Second),
		DispatchBatchSize:   p.int("DISPATCH_BATCH_SIZE", 50),
		DispatchMaxAttempts: p.int("DISPATCH_MAX_ATTEMPTS", 5),
	}

	// Validate required configuration.
	if err := cfg.validate(p.errs); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present and sane.
func (c *Config) validate(errs []string) error {
	if c.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.DBPath == "" {
		errs = append(errs, "DB_PATH must not be empty")
	}
	if c.TokenDuration <= 0 {
		errs = append(errs, "TOKEN_DURATION must be positive")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel))
	}
	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.RateLimitBurst <= 0 {
		errs = append(errs, "RATE_LIMIT_BURST must be positive")
	}
	if c.DispatchInterval <= 0 {
		errs = append(errs, "DISPATCH_INTERVAL must be positive")
	}
	if c.DispatchBatchSize <= 0 {
		errs = append(errs, "DISPATCH_BATCH_SIZE must be positive")
	}
	if c.DispatchMaxAttempts <= 0 {
		errs = append(errs, "DISPATCH_MAX_ATTEMPTS must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// parser reads typed values and collects malformed ones.
type parser struct {
	getenv func(string) string
	errs   []string
}

func (p *parser) string(key, fallback string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (p *parser) int(key string, fallback int) int {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Sprintf("%s must be an integer, got %q", key, v))
		return fallback
	}
	return n
}

func (p *parser) float(key string, fallback float64) float64 {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Sprintf("%s must be a number, got %q", key, v))
		return fallback
	}
	return f
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Sprintf("%s must be a duration like 30s or 24h, got %q", key, v))
		return fallback
	}
	return d
}
