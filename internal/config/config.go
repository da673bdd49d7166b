package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The gameplay defaults mirror the tuning of the original browser game;
// the network defaults reflect the Wikipedia API's public rate expectations.
const (
	// DefaultListenAddr is where the API server listens.
	DefaultListenAddr = ":8080"

	// DefaultWikipediaAPI is the English Wikipedia action API endpoint.
	// All article, random-page, and imageinfo requests go through it.
	DefaultWikipediaAPI = "https://en.wikipedia.org/w/api.php"

	// DefaultSixDegreesAPI is the shortest-path oracle. It answers
	// POST /paths with the chain of articles connecting two titles.
	DefaultSixDegreesAPI = "https://api.sixdegreesofwikipedia.com"

	// DefaultTimeout is the per-request timeout for upstream calls.
	// Wikipedia parse responses for large articles can take several
	// seconds; 30 seconds leaves headroom without hanging the game.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxDegrees caps the accepted path length (hops) between
	// start and end pages. Ten keeps games winnable while still
	// accepting most randomly sampled pairs.
	DefaultMaxDegrees = 10

	// DefaultEndAttemptsPerStart is how many end candidates are tried
	// against one start page before sampling a fresh start. Two keeps
	// the pairing search cheap: a start that fails twice is usually an
	// obscure page that will keep failing.
	DefaultEndAttemptsPerStart = 2

	// DefaultSafetyLimit bounds the outer pairing loop. In practice a
	// pair is found within a handful of iterations; the limit exists so
	// a broken upstream can never spin the search forever.
	DefaultSafetyLimit = 10000

	// DefaultCacheSize is the maximum number of sanitized articles kept
	// in memory. Forty covers a full game with backtracking.
	DefaultCacheSize = 40

	// DefaultUserAgent identifies Wiki Race in upstream requests.
	// The Wikimedia API etiquette asks for a descriptive User-Agent.
	DefaultUserAgent = "WikiRace/1.0 (+https://github.com/wikiracer/wikirace)"

	// DefaultMaxBodySize limits upstream response bodies. Wikipedia
	// parse payloads for the largest articles stay under 4MB; 8MB
	// prevents memory exhaustion from a misbehaving upstream.
	DefaultMaxBodySize = 8 * 1024 * 1024

	// AppName is the application name used for XDG directory paths.
	AppName = "wikirace"
)

// Config holds all configuration options for Wiki Race.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., GameConfig, ServerConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// ListenAddr is the address the API server binds to, "host:port" or ":port".
	ListenAddr string

	// WikipediaAPI is the base URL of the Wikipedia action API.
	WikipediaAPI string

	// SixDegreesAPI is the base URL of the shortest-path service.
	SixDegreesAPI string

	// Timeout is the per-request timeout for upstream HTTP calls.
	Timeout time.Duration

	// MaxDegrees is the maximum accepted number of hops between the
	// start and end page of a pairing.
	MaxDegrees int

	// EndAttemptsPerStart is the number of end candidates tried per
	// start page before the start page is replaced.
	EndAttemptsPerStart int

	// SafetyLimit bounds the outer pairing-search loop. When reached,
	// the search fails with an exhaustion error.
	SafetyLimit int

	// ValidatePath enables hop-by-hop validation of candidate paths
	// against live article content. Guarantees every generated game is
	// playable, at the cost of extra article fetches per candidate.
	ValidatePath bool

	// CacheSize is the sanitized-content cache capacity in entries.
	CacheSize int

	// UserAgent is sent with all upstream requests.
	UserAgent string

	// MaxBodySize is the maximum upstream response body size in bytes.
	MaxBodySize int64

	// DBDir is the directory holding the SQLite database.
	// Defaults to the XDG data directory.
	DBDir string

	// AuthTokens maps bearer tokens to player IDs. Loaded from the
	// config file; the server rejects requests it cannot resolve.
	AuthTokens map[string]string

	// Verbose enables debug-level logging.
	Verbose bool

	// ConfigFilePath is an explicit config file path. When empty, the
	// loader searches for .wikirace in the current and home directories.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (timeouts, limits).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		ListenAddr:          DefaultListenAddr,
		WikipediaAPI:        DefaultWikipediaAPI,
		SixDegreesAPI:       DefaultSixDegreesAPI,
		Timeout:             DefaultTimeout,
		MaxDegrees:          DefaultMaxDegrees,
		EndAttemptsPerStart: DefaultEndAttemptsPerStart,
		SafetyLimit:         DefaultSafetyLimit,
		CacheSize:           DefaultCacheSize,
		UserAgent:           DefaultUserAgent,
		MaxBodySize:         DefaultMaxBodySize,
		DBDir:               XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for Wiki Race.
// On Linux: ~/.local/share/wikirace
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for Wiki Race.
// On Linux: ~/.config/wikirace
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// We return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxDegrees < 1 {
		return ErrInvalidMaxDegrees
	}
	if c.EndAttemptsPerStart < 1 {
		return ErrInvalidEndAttempts
	}
	if c.SafetyLimit < 1 {
		return ErrInvalidSafetyLimit
	}
	if c.CacheSize < 1 {
		return ErrInvalidCacheSize
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}
