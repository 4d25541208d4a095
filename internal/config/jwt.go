// Package config provides JWT configuration functionality.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// JWTConfig holds configuration for validating access tokens issued by the identity provider.
type JWTConfig struct {
	Secret          string
	Audience        string // expected "aud" claim; empty skips the check
	ExpirationHours int    // lifetime of tokens minted locally (development and tests)
}

// NewJWTConfig creates a new JWT configuration from environment variables.
// It reads SUPABASE_JWT_SECRET (falling back to JWT_SECRET), JWT_AUDIENCE
// (default: authenticated) and JWT_EXPIRATION_HOURS (default: 24).
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("SUPABASE_JWT_SECRET")
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if secret == "" {
		return nil, fmt.Errorf("SUPABASE_JWT_SECRET is required but not set")
	}

	audience, ok := os.LookupEnv("JWT_AUDIENCE")
	if !ok {
		audience = "authenticated"
	}

	expirationStr := os.Getenv("JWT_EXPIRATION_HOURS")
	if expirationStr == "" {
		expirationStr = "24" // default
	}

	expirationHours, err := strconv.Atoi(expirationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
	}

	config := &JWTConfig{
		Secret:          secret,
		Audience:        audience,
		ExpirationHours: expirationHours,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT secret cannot be empty")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
