// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// minProductionSecretLen is the shortest JWT secret accepted in production.
const minProductionSecretLen = 32

// # Configuration Schema

// Config holds all runtime configuration for the Digital Hub API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// TrustProxy enables X-Forwarded-For / X-Real-IP client IP resolution.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Token signing
	JWTAccessSecret  string `env:"JWT_ACCESS_SECRET,required,notEmpty"`
	JWTRefreshSecret string `env:"JWT_REFRESH_SECRET,required,notEmpty"`
	JWTIssuer        string `env:"JWT_ISSUER" envDefault:"digitalhub.api"`

	// Password hashing
	BcryptCost  int `env:"BCRYPT_COST"  envDefault:"12"`
	HashWorkers int `env:"HASH_WORKERS" envDefault:"0"`

	// Cross-Origin Resource Sharing
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	// Rate limiting
	RateLimitWindow  time.Duration `env:"RATE_LIMIT_WINDOW"   envDefault:"15m"`
	RateLimitMax     int           `env:"RATE_LIMIT_MAX"      envDefault:"100"`
	AuthRateLimitMax int           `env:"AUTH_RATE_LIMIT_MAX" envDefault:"5"`

	// Cache lifetimes
	CacheTTL     time.Duration `env:"CACHE_TTL"      envDefault:"300s"`
	NewsCacheTTL time.Duration `env:"CACHE_TTL_NEWS" envDefault:"300s"`

	// Outgoing mail (password reset)
	EmailHost        string `env:"EMAIL_HOST"`
	EmailPort        int    `env:"EMAIL_PORT"     envDefault:"587"`
	EmailUser        string `env:"EMAIL_USER"`
	EmailPassword    string `env:"EMAIL_PASSWORD"`
	EmailFrom        string `env:"EMAIL_FROM"     envDefault:"noreply@digitalhub.bi"`
	PasswordResetURL string `env:"PASSWORD_RESET_URL" envDefault:"http://localhost:3000/reset-password"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	if c.JWTAccessSecret == c.JWTRefreshSecret {
		return fmt.Errorf("config: JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	if c.IsProduction() && (len(c.JWTAccessSecret) < minProductionSecretLen || len(c.JWTRefreshSecret) < minProductionSecretLen) {
		return fmt.Errorf("config: JWT secrets must be at least %d bytes in production", minProductionSecretLen)
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("config: BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	if c.RateLimitMax <= 0 || c.AuthRateLimitMax <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("config: rate limits and window must be positive")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// MailEnabled reports whether an SMTP relay is configured.
func (c *Config) MailEnabled() bool {
	return c.EmailHost != ""
}
