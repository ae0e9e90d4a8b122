// Package config loads the service configuration from a TOML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	DataDir  string         `toml:"data_dir"`
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	AI       AIConfig       `toml:"ai"`
	Backend  BackendConfig  `toml:"backend"`
	Search   SearchConfig   `toml:"search"`
	Security SecurityConfig `toml:"security"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// DatabaseConfig holds SQLite settings. An empty path resolves to
// <data_dir>/creatorpilot.db.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// AIConfig tunes calls to user-configured providers.
type AIConfig struct {
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
}

// BackendConfig selects the built-in service used when the user has not
// configured a provider. An empty API key disables it.
type BackendConfig struct {
	APIKey     string `toml:"api_key"`
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	ImageModel string `toml:"image_model"`
}

// SearchConfig lists the RSS search feeds used for trend search. Each feed
// is a URL template containing {query}.
type SearchConfig struct {
	Feeds          []string `toml:"feeds"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// SecurityConfig holds the passphrase API keys are sealed with. When empty a
// random key is generated in the data directory.
type SecurityConfig struct {
	SecretKey string `toml:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// DatabasePath returns the SQLite file path, defaulting to a file in the
// data directory.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.DataDir, "creatorpilot.db")
}

// RequestTimeout returns the provider call timeout.
func (c AIConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the per-feed search timeout.
func (c SearchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SlogLevel maps the configured level name to a slog.Level.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const defaultConfigContent = `data_dir = "data"

[server]
host = "127.0.0.1"
port = 8080
cors_origins = ["http://localhost:3000"]

[database]
path = ""                         # defaults to <data_dir>/creatorpilot.db

[ai]
request_timeout_seconds = 60

[backend]
api_key = ""                      # or set BACKEND_API_KEY / OPENAI_API_KEY
base_url = "https://api.openai.com/v1"
model = "gpt-4o-mini"
image_model = "dall-e-3"

[search]
timeout_seconds = 15
# feeds = ["https://news.google.com/rss/search?q={query}&hl=zh-CN&gl=CN&ceid=CN:zh-Hans"]

[security]
secret_key = ""                   # or set CREATOR_SECRET_KEY

[log]
level = "info"                    # debug, info, warn, error
`

// Load reads and parses the TOML config from the given path. If the file does
// not exist, it creates a default config file at that path. Environment
// variables override values from the file with highest priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		slog.Warn("unknown config keys ignored", "keys", fmt.Sprint(undecoded))
	}

	// Validate explicitly-set values before applying defaults, so that
	// explicitly writing "port = 0" is an error rather than silently
	// being replaced with the default.
	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("server", "port") {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
		}
	}
	if md.IsDefined("ai", "request_timeout_seconds") && cfg.AI.RequestTimeoutSeconds < 1 {
		return fmt.Errorf("invalid ai.request_timeout_seconds %d: must be >= 1", cfg.AI.RequestTimeoutSeconds)
	}
	if md.IsDefined("search", "timeout_seconds") && cfg.Search.TimeoutSeconds < 1 {
		return fmt.Errorf("invalid search.timeout_seconds %d: must be >= 1", cfg.Search.TimeoutSeconds)
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields.
func applyDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.AI.RequestTimeoutSeconds == 0 {
		cfg.AI.RequestTimeoutSeconds = 60
	}
	if cfg.Backend.Model == "" {
		cfg.Backend.Model = "gpt-4o-mini"
	}
	if cfg.Backend.ImageModel == "" {
		cfg.Backend.ImageModel = "dall-e-3"
	}
	if cfg.Search.TimeoutSeconds == 0 {
		cfg.Search.TimeoutSeconds = 15
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
//
// Priority for backend.api_key:
//  1. BACKEND_API_KEY (highest)
//  2. OPENAI_API_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Backend.APIKey = v
	}
	if v := os.Getenv("BACKEND_API_KEY"); v != "" {
		cfg.Backend.APIKey = v
	}
	if v := os.Getenv("CREATOR_SECRET_KEY"); v != "" {
		cfg.Security.SecretKey = v
	}
	if v := os.Getenv("CREATOR_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
}

// validate checks that configuration values are within acceptable ranges.
func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q: must be debug, info, warn or error", cfg.Log.Level)
	}

	for _, feed := range cfg.Search.Feeds {
		if !strings.Contains(feed, "{query}") {
			return fmt.Errorf("invalid search feed %q: must contain {query}", feed)
		}
	}

	if cfg.Backend.APIKey == "" {
		slog.Warn("backend.api_key is empty: requests fail unless a provider is configured in settings")
	}

	return nil
}
