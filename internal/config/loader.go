package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".wikirace"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the on-disk YAML configuration.
//
// Example:
//
//	listen: ":8080"
//	max_degrees: 6
//	validate_path: true
//	auth_tokens:
//	  s3cr3t-token: player-1
type File struct {
	// Listen overrides the server listen address.
	Listen string `yaml:"listen"`

	// DBDir overrides the database directory.
	DBDir string `yaml:"db_dir"`

	// MaxDegrees overrides the accepted hop cap.
	MaxDegrees int `yaml:"max_degrees"`

	// EndAttemptsPerStart overrides the per-start end-candidate budget.
	EndAttemptsPerStart int `yaml:"end_attempts_per_start"`

	// SafetyLimit overrides the outer pairing-loop bound.
	SafetyLimit int `yaml:"safety_limit"`

	// ValidatePath enables hop-by-hop path validation.
	ValidatePath bool `yaml:"validate_path"`

	// CacheSize overrides the sanitized-content cache capacity.
	CacheSize int `yaml:"cache_size"`

	// Timeout overrides the upstream request timeout.
	Timeout time.Duration `yaml:"timeout"`

	// WikipediaAPI and SixDegreesAPI override the upstream endpoints.
	// Mainly useful for pointing the game at test doubles.
	WikipediaAPI  string `yaml:"wikipedia_api"`
	SixDegreesAPI string `yaml:"six_degrees_api"`

	// AuthTokens maps bearer tokens to player IDs.
	AuthTokens map[string]string `yaml:"auth_tokens"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers decide
// whether that is fatal based on whether the path was user-supplied.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// Apply overlays the file's non-zero settings onto the config.
func (f *File) Apply(c *Config) {
	if f.Listen != "" {
		c.ListenAddr = f.Listen
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
	if f.MaxDegrees > 0 {
		c.MaxDegrees = f.MaxDegrees
	}
	if f.EndAttemptsPerStart > 0 {
		c.EndAttemptsPerStart = f.EndAttemptsPerStart
	}
	if f.SafetyLimit > 0 {
		c.SafetyLimit = f.SafetyLimit
	}
	if f.ValidatePath {
		c.ValidatePath = true
	}
	if f.CacheSize > 0 {
		c.CacheSize = f.CacheSize
	}
	if f.Timeout > 0 {
		c.Timeout = f.Timeout
	}
	if f.WikipediaAPI != "" {
		c.WikipediaAPI = f.WikipediaAPI
	}
	if f.SixDegreesAPI != "" {
		c.SixDegreesAPI = f.SixDegreesAPI
	}
	if len(f.AuthTokens) > 0 {
		if c.AuthTokens == nil {
			c.AuthTokens = make(map[string]string)
		}
		for token, user := range f.AuthTokens {
			c.AuthTokens[token] = user
		}
	}
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .wikirace in the current directory
//  3. Look for .wikirace in the user's home directory
//
// Returns the path to the configuration file, or "" if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
