package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvAPIURL = "FEEDDASH_API_URL"
	EnvAPIKey = "FEEDDASH_API_KEY"
)

type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	UI      UIConfig      `yaml:"ui"`
	Feeds   FeedsConfig   `yaml:"feeds"`
	Log     LogConfig     `yaml:"log"`

	// APIKey comes from the environment only and is never written back.
	APIKey string `yaml:"-"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

type UIConfig struct {
	CellWidthPx     int           `yaml:"cell_width_px"`
	SearchDebounce  time.Duration `yaml:"search_debounce"`
	ToastDuration   time.Duration `yaml:"toast_duration"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

type FeedsConfig struct {
	VerifyOnCreate *bool         `yaml:"verify_on_create"`
	ReaderTimeout  time.Duration `yaml:"reader_timeout"`
}

type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// ShouldVerify reports whether feed URLs are probed before creation.
func (f FeedsConfig) ShouldVerify() bool {
	return f.VerifyOnCreate == nil || *f.VerifyOnCreate
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads configuration from file. A missing file yields defaults.
// Environment variables (optionally from a .env file) override the file.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyDefaults(&cfg)
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8080/v1"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = filepath.Join(dataDir(), "state.db")
	}
	cfg.Storage.Path = expandPath(cfg.Storage.Path)
	if cfg.UI.CellWidthPx == 0 {
		cfg.UI.CellWidthPx = 8
	}
	if cfg.UI.SearchDebounce == 0 {
		cfg.UI.SearchDebounce = 500 * time.Millisecond
	}
	if cfg.UI.ToastDuration == 0 {
		cfg.UI.ToastDuration = 5 * time.Second
	}
	if cfg.UI.RefreshInterval == 0 {
		cfg.UI.RefreshInterval = 15 * time.Minute
	}
	if cfg.Feeds.ReaderTimeout == 0 {
		cfg.Feeds.ReaderTimeout = 20 * time.Second
	}
	if cfg.Log.Path == "" {
		cfg.Log.Path = filepath.Join(dataDir(), "feeddash.log")
	}
	cfg.Log.Path = expandPath(cfg.Log.Path)
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func applyEnv(cfg *Config) error {
	// A missing .env is the normal case.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.API.BaseURL = v
	}
	cfg.APIKey = os.Getenv(EnvAPIKey)
	return nil
}

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid api.base_url %q: %w", c.API.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q: must be an http(s) URL", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("invalid api.timeout %s: must not be negative", c.API.Timeout)
	}
	if c.UI.CellWidthPx < 1 {
		return fmt.Errorf("invalid ui.cell_width_px %d: must be >= 1", c.UI.CellWidthPx)
	}
	if c.UI.SearchDebounce < 0 || c.UI.ToastDuration < 0 {
		return errors.New("ui durations must not be negative")
	}
	return nil
}

// Save writes configuration to file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func dataDir() string {
	return filepath.Join("~", ".local", "share", "feeddash")
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "feeddash", "config.yaml")
}
