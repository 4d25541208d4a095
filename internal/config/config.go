// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// Environment names recognised in APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// AppConfig holds process-wide settings read from the environment.
type AppConfig struct {
	Port int    `env:"PORT" envDefault:"8080"`
	Env  string `env:"APP_ENV" envDefault:"production"`

	DatabaseURL  string `env:"DATABASE_URL"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`

	FreeRewriteLimit   int    `env:"FREE_REWRITE_LIMIT" envDefault:"4"`
	UsageResetSchedule string `env:"USAGE_RESET_SCHEDULE" envDefault:"0 0 1 * *"` // cron spec; empty disables resets

	RulesFile     string        `env:"RULES_FILE"` // optional YAML rule table
	MaxPostLength int           `env:"MAX_POST_LENGTH" envDefault:"5000"`
	LLMTimeout    time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
}

// Load parses AppConfig from the process environment.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges. Collaborator credentials are checked by RequireServer.
func (c *AppConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: PORT out of range: %d", c.Port)
	}
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return fmt.Errorf("config error: APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env)
	}
	if c.FreeRewriteLimit < 0 {
		return fmt.Errorf("config error: FREE_REWRITE_LIMIT must be non-negative")
	}
	if c.MaxPostLength < 1 {
		return fmt.Errorf("config error: MAX_POST_LENGTH must be positive")
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("config error: LLM_TIMEOUT must be positive")
	}
	return nil
}

// RequireServer checks the settings the HTTP server cannot start without.
func (c *AppConfig) RequireServer() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	return nil
}

// IsDevelopment reports whether auth and quota checks may be bypassed.
func (c *AppConfig) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// BillingEnabled reports whether the Stripe webhook can be served.
func (c *AppConfig) BillingEnabled() bool {
	return c.StripeWebhookSecret != ""
}
