package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the koduck command-line tools.
type Config struct {
	API     API     `yaml:"api"`
	State   State   `yaml:"state"`
	Cache   Cache   `yaml:"cache"`
	Logging Logging `yaml:"logging"`
	Watch   Watch   `yaml:"watch"`
}

// API locates the koduck backend.
type API struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// State selects where the session and UI preferences are persisted.
type State struct {
	Driver string `yaml:"driver"` // "json" or "sqlite"
	Path   string `yaml:"path"`
}

// Cache holds the local kline cache location.
type Cache struct {
	Dir string `yaml:"dir"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Watch configures the terminal watchlist viewer.
type Watch struct {
	Refresh time.Duration `yaml:"refresh"`
	Sort    string        `yaml:"sort"`
}

// ---------------------------------------------------------------------------
// Defaults
// ---------------------------------------------------------------------------

const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultTimeout = 10 * time.Second
	DefaultRefresh = 5 * time.Second
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// DefaultDir returns the per-user directory holding state and cache.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "koduck")
	}
	return ".koduck"
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, and then applies environment variable overrides and
// defaults. A missing file is not an error. An empty path means the
// KODUCK_CONFIG environment variable, then <DefaultDir>/config.yaml.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("KODUCK_CONFIG")
	}
	if path == "" {
		path = filepath.Join(DefaultDir(), "config.yaml")
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KODUCK_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}

	if v := os.Getenv("KODUCK_STATE_DRIVER"); v != "" {
		cfg.State.Driver = v
	}

	if v := os.Getenv("KODUCK_STATE_PATH"); v != "" {
		cfg.State.Path = v
	}

	if v := os.Getenv("KODUCK_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// applyDefaults fills every field left empty by the file and environment.
func applyDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = DefaultTimeout
	}
	if cfg.State.Driver == "" {
		cfg.State.Driver = "json"
	}
	if cfg.State.Path == "" {
		name := "state.json"
		if cfg.State.Driver == "sqlite" {
			name = "state.db"
		}
		cfg.State.Path = filepath.Join(DefaultDir(), name)
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = filepath.Join(DefaultDir(), "cache")
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Watch.Refresh <= 0 {
		cfg.Watch.Refresh = DefaultRefresh
	}
	if cfg.Watch.Sort == "" {
		cfg.Watch.Sort = "custom"
	}
}
