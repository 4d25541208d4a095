package ratelimit

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration // buckets unused this long are dropped
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

type envConfig struct {
	Enabled         bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	DefaultLimit    int           `env:"RATE_LIMIT_DEFAULT_LIMIT" envDefault:"300"`
	DefaultWindow   time.Duration `env:"RATE_LIMIT_DEFAULT_WINDOW" envDefault:"1m"`
	CleanupInterval time.Duration `env:"RATE_LIMIT_CLEANUP_INTERVAL" envDefault:"5m"`
	IdleTTL         time.Duration `env:"RATE_LIMIT_IDLE_TTL" envDefault:"1h"`
	RewriteLimit    int           `env:"RATE_LIMIT_REWRITE_PER_HOUR" envDefault:"30"`
	Whitelist       []string      `env:"RATE_LIMIT_WHITELIST" envSeparator:","`
	Blacklist       []string      `env:"RATE_LIMIT_BLACKLIST" envSeparator:","`
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() (*Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse rate limit config: %w", err)
	}
	if !raw.Enabled {
		return &Config{Enabled: false}, nil
	}
	if raw.DefaultLimit < 0 || raw.RewriteLimit < 0 {
		return nil, fmt.Errorf("rate limits must not be negative")
	}
	if raw.DefaultWindow <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_DEFAULT_WINDOW must be positive")
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    raw.DefaultLimit,
		DefaultWindow:   raw.DefaultWindow,
		CleanupInterval: raw.CleanupInterval,
		IdleTTL:         raw.IdleTTL,
		Whitelist:       toSet(raw.Whitelist),
		Blacklist:       toSet(raw.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(raw.RewriteLimit),
	}, nil
}

// DefaultEndpointConfigs returns the endpoint tiers. LLM-backed routes share
// rewriteLimit per hour; scoring and history are cheaper.
func DefaultEndpointConfigs(rewriteLimit int) []EndpointConfig {
	burst := max(rewriteLimit/10, 1)
	return []EndpointConfig{
		// Tier 1: LLM calls
		{Path: "/api/rewrite", Method: "POST", Limit: rewriteLimit, Window: time.Hour, Burst: burst},
		{Path: "/api/rewrite/all", Method: "POST", Limit: rewriteLimit, Window: time.Hour, Burst: burst},
		{Path: "/api/analyze/deep", Method: "POST", Limit: rewriteLimit, Window: time.Hour, Burst: burst},

		// Tier 2: local scoring and writes
		{Path: "/api/analyze", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/api/export", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/api/history", Method: "DELETE", Limit: 60, Window: time.Minute, Burst: 10},

		// Webhooks and reads use the default limit; health and metrics are unlimited
	}
}

func toSet(values []string) map[string]bool {
	result := make(map[string]bool, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			result[v] = true
		}
	}
	return result
}
