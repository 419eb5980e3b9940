package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/nikbrunner/bmlinks/internal/checker"
)

// Storage backends accepted in Config.Storage.
const (
	BackendAuto   = "auto"
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

var (
	ErrInvalidTimeout      = errors.New("check timeout must be positive")
	ErrInvalidMaxRedirects = errors.New("max redirects must not be negative")
	ErrInvalidRateLimit    = errors.New("rate limit must not be negative")
	ErrUnknownStorage      = errors.New("unknown storage backend")
)

// Duration is a time.Duration written as a string such as "10s".
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config holds application configuration.
type Config struct {
	// Storage selects the backend. "auto" uses SQLite when the database exists.
	Storage string `json:"storage" yaml:"storage"`
	// DataPath overrides the directory holding bookmarks.json / bookmarks.db.
	DataPath string `json:"dataPath,omitempty" yaml:"dataPath,omitempty"`

	CheckTimeout   Duration `json:"checkTimeout" yaml:"checkTimeout"`
	MaxRedirects   int      `json:"maxRedirects" yaml:"maxRedirects"`
	RateLimit      float64  `json:"rateLimit" yaml:"rateLimit"` // requests per second, 0 = unlimited
	UserAgent      string   `json:"userAgent" yaml:"userAgent"`
	PrivateDomains []string `json:"privateDomains" yaml:"privateDomains"`
	IncludeNonHTTP bool     `json:"includeNonHttp" yaml:"includeNonHttp"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Storage:        BackendAuto,
		CheckTimeout:   Duration(checker.DefaultTimeout),
		MaxRedirects:   checker.DefaultMaxRedirects,
		UserAgent:      checker.DefaultUserAgent,
		PrivateDomains: []string{},
	}
}

// Timeout returns CheckTimeout as a time.Duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.CheckTimeout)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.CheckTimeout <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.Timeout())
	}
	if c.MaxRedirects < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxRedirects, c.MaxRedirects)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: %g", ErrInvalidRateLimit, c.RateLimit)
	}
	switch c.Storage {
	case BackendAuto, BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorage, c.Storage)
	}
	return nil
}

// DataDir returns the directory holding the bookmark files.
func (c *Config) DataDir() string {
	if c.DataPath != "" {
		return c.DataPath
	}
	return filepath.Join(xdg.DataHome, "bmlinks")
}

// JSONPath returns the path of the JSON bookmark file.
func (c *Config) JSONPath() string {
	return filepath.Join(c.DataDir(), "bookmarks.json")
}

// SQLitePath returns the path of the SQLite bookmark database.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir(), "bookmarks.db")
}

// LoadConfig reads config from path, as YAML for .yaml/.yml files and JSON
// otherwise. Creates the file with defaults if it doesn't exist. Fields
// missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Non-fatal: return defaults even if save fails
			_ = SaveConfig(path, &config)
			return &config, nil
		}
		return nil, err
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, &config)
	} else {
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	defaults := DefaultConfig()
	if config.Storage == "" {
		config.Storage = defaults.Storage
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}
	if config.PrivateDomains == nil {
		config.PrivateDomains = defaults.PrivateDomains
	}

	return &config, nil
}

// SaveConfig writes config to path in the format its extension selects.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfigFilePath returns $XDG_CONFIG_HOME/bmlinks/config.json.
func DefaultConfigFilePath() string {
	return filepath.Join(xdg.ConfigHome, "bmlinks", "config.json")
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
