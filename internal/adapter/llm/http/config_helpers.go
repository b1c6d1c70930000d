package http

import (
	"time"

	"github.com/juspay/yama-sub000/internal/config"
)

// ParseTimeout parses a configured timeout with a safe fallback. Negative
// durations are rejected (would cause runtime panic in http.Client.Timeout).
func ParseTimeout(configured string, defaultVal time.Duration) time.Duration {
	if configured != "" {
		if d, err := time.ParseDuration(configured); err == nil && d >= 0 {
			return d
		}
	}

	if defaultVal < 0 {
		return 60 * time.Second
	}
	return defaultVal
}

// BuildRetryConfig creates a RetryConfig from the retry section of the
// application config, falling back to defaults for unset or invalid values.
func BuildRetryConfig(cfg config.RetryConfig) RetryConfig {
	defaults := DefaultRetryConfig()

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaults.MaxRetries
	}

	multiplier := cfg.BackoffMultiplier
	if multiplier <= 1 {
		multiplier = defaults.Multiplier
	}

	return RetryConfig{
		MaxRetries:     maxRetries,
		InitialBackoff: parseDuration(cfg.InitialBackoff, defaults.InitialBackoff),
		MaxBackoff:     parseDuration(cfg.MaxBackoff, defaults.MaxBackoff),
		Multiplier:     multiplier,
	}
}

// parseDuration parses a duration string, rejecting negatives to prevent
// invalid backoff values.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	if s != "" {
		if d, err := time.ParseDuration(s); err == nil && d >= 0 {
			return d
		}
	}

	if defaultVal < 0 {
		return 2 * time.Second
	}
	return defaultVal
}
