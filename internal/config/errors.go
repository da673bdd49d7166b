package config

import "errors"

// Sentinel errors for configuration validation.
// These are exported so callers can test for specific failures with
// errors.Is rather than matching message strings.
var (
	// ErrInvalidTimeout indicates a zero or negative request timeout.
	ErrInvalidTimeout = errors.New("timeout must be positive")

	// ErrInvalidMaxDegrees indicates a degree cap below one hop.
	ErrInvalidMaxDegrees = errors.New("max degrees must be at least 1")

	// ErrInvalidEndAttempts indicates fewer than one end attempt per start.
	ErrInvalidEndAttempts = errors.New("end attempts per start must be at least 1")

	// ErrInvalidSafetyLimit indicates a safety limit below one iteration.
	ErrInvalidSafetyLimit = errors.New("safety limit must be at least 1")

	// ErrInvalidCacheSize indicates a content cache capacity below one entry.
	ErrInvalidCacheSize = errors.New("cache size must be at least 1")

	// ErrInvalidMaxBodySize indicates a negative response body limit.
	ErrInvalidMaxBodySize = errors.New("max body size must not be negative")
)
