// Package config loads the dashboard configuration.
//
// Precedence, lowest to highest: built-in defaults, the YAML file, .env
// files, process environment. .env files never override variables that
// are already set.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the persistent application configuration
type Config struct {
	Sources SourcesConfig `yaml:"sources"`
	UI      UIConfig      `yaml:"ui"`
	Proxy   ProxyConfig   `yaml:"proxy"`
	Redis   RedisConfig   `yaml:"redis"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// SourcesConfig controls the source adapters.
type SourcesConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	SocialFetchDelay  time.Duration `yaml:"social_fetch_delay"`
	SocialSearchDelay time.Duration `yaml:"social_search_delay"`
}

// UIConfig holds UI timing
type UIConfig struct {
	SearchDebounce  time.Duration `yaml:"search_debounce"`
	RefreshInterval time.Duration `yaml:"refresh_interval"` // auto-refresh period
}

// ProxyConfig configures `dashboard serve`.
type ProxyConfig struct {
	Addr        string        `yaml:"addr"`
	NewsAPIKey  string        `yaml:"news_api_key,omitempty"`
	TMDBAPIKey  string        `yaml:"tmdb_api_key,omitempty"`
	NewsAPIBase string        `yaml:"news_api_base"`
	TMDBBase    string        `yaml:"tmdb_base"`
	NewsRSSURL  string        `yaml:"news_rss_url,omitempty"` // used when no NewsAPI key
	CacheTTL    time.Duration `yaml:"cache_ttl"`
}

// RedisConfig enables the proxy response cache when Address is set.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds the log level and the TUI log directory.
type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := Dir()
	return &Config{
		Sources: SourcesConfig{
			BaseURL:           "http://localhost:8080",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 3,
			SocialFetchDelay:  800 * time.Millisecond,
			SocialSearchDelay: 600 * time.Millisecond,
		},
		UI: UIConfig{
			SearchDebounce:  300 * time.Millisecond,
			RefreshInterval: 5 * time.Minute,
		},
		Proxy: ProxyConfig{
			Addr:        ":8080",
			NewsAPIBase: "https://newsapi.org/v2",
			TMDBBase:    "https://api.themoviedb.org/3",
			CacheTTL:    5 * time.Minute,
		},
		Storage: StorageConfig{
			Path: filepath.Join(dir, "dashboard.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   filepath.Join(dir, "logs"),
		},
	}
}

// Dir returns ~/.dashboard.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".dashboard")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads config from path (ConfigPath when empty), or returns defaults
// when the file does not exist. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("load environment files: %w", err)
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to path (ConfigPath when empty).
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600) // Restrictive permissions for API keys
}

// loadEnvFiles loads ENV_FILE if set, otherwise .env.local then .env.
// Missing files are ignored.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		return nil
	}
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv fills in settings from environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		c.Proxy.NewsAPIKey = v
	}
	// The public key name is accepted for parity with browser deployments.
	if v := os.Getenv("NEXT_PUBLIC_TMDB_API_KEY"); v != "" {
		c.Proxy.TMDBAPIKey = v
	}
	if v := os.Getenv("TMDB_API_KEY"); v != "" {
		c.Proxy.TMDBAPIKey = v
	}
	if v := os.Getenv("DASHBOARD_SOURCE_URL"); v != "" {
		c.Sources.BaseURL = v
	}
	if v := os.Getenv("DASHBOARD_ADDR"); v != "" {
		c.Proxy.Addr = v
	}
	if v := os.Getenv("DASHBOARD_DB"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("DASHBOARD_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("REDIS_ADDRESS"); v != "" {
		c.Redis.Address = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
}

// ValidationError reports an invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Sources.BaseURL) == "":
		return &ValidationError{Field: "sources.base_url", Message: "is required"}
	case c.Sources.Timeout <= 0:
		return &ValidationError{Field: "sources.timeout", Message: "must be positive"}
	case c.Sources.RequestsPerSecond < 0:
		return &ValidationError{Field: "sources.requests_per_second", Message: "must not be negative"}
	case c.UI.SearchDebounce < 0:
		return &ValidationError{Field: "ui.search_debounce", Message: "must not be negative"}
	case c.Proxy.CacheTTL < 0:
		return &ValidationError{Field: "proxy.cache_ttl", Message: "must not be negative"}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	return nil
}
