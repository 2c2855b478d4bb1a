package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort       = 8080
	DefaultSessionTTL     = 30 * time.Minute
	DefaultMaxInputLength = 16
	DefaultHistoryLimit   = 100
	DefaultNotesDir       = "data"
	DefaultAutosaveDelay  = time.Second
	DefaultAuthHeader     = "X-API-Key"
	DefaultLogLevel       = "info"
)

// Config is the top-level configuration of quickcalc-server.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Calculator CalculatorConfig `yaml:"calculator"`
	Notes      NotesConfig      `yaml:"notes"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig holds the HTTP listener and session settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API and WebSocket hub listen on (default 8080).
	HTTPPort int `yaml:"http_port"`

	// Auth configures how the server authenticates REST and WebSocket clients.
	Auth AuthConfig `yaml:"auth"`

	// SessionTTL is how long an idle calculator session is kept before it is
	// evicted. Default: 30m.
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// AuthConfig controls client authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the expected API key.
	// Used when Mode == "apikey".
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header name to read the key from.
	// Defaults to "X-API-Key" if empty.
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "X-API-Key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return DefaultAuthHeader
}

// CalculatorConfig tunes every calculator session created by the server.
type CalculatorConfig struct {
	// MaxInputLength caps the characters of the number being typed (default 16).
	MaxInputLength int `yaml:"max_input_length"`

	// HistoryLimit caps the calculation history per session (default 100).
	HistoryLimit int `yaml:"history_limit"`
}

// NotesConfig configures note persistence.
type NotesConfig struct {
	// Dir is the directory of the file-backed key-value store (default "data").
	Dir string `yaml:"dir"`

	// AutosaveDelay is the quiet period after the last edit before an
	// auto-save runs. Default: 1s.
	AutosaveDelay time.Duration `yaml:"autosave_delay"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	// Level is one of: debug | info | warn | error.
	Level string `yaml:"level"`
}

// SlogLevel converts Level to a slog.Level. Unknown values map to Info;
// validate rejects them before this is reached.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
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

// Load reads and parses the config file at path.
// Missing fields are filled with sensible defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return defaults()
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:   DefaultHTTPPort,
			SessionTTL: DefaultSessionTTL,
		},
		Calculator: CalculatorConfig{
			MaxInputLength: DefaultMaxInputLength,
			HistoryLimit:   DefaultHistoryLimit,
		},
		Notes: NotesConfig{
			Dir:           DefaultNotesDir,
			AutosaveDelay: DefaultAutosaveDelay,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	switch cfg.Server.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", cfg.Server.Auth.Mode)
	}
	if cfg.Server.SessionTTL <= 0 {
		return fmt.Errorf("server.session_ttl must be positive")
	}
	if cfg.Calculator.MaxInputLength <= 0 {
		return fmt.Errorf("calculator.max_input_length must be positive")
	}
	if cfg.Calculator.HistoryLimit <= 0 {
		return fmt.Errorf("calculator.history_limit must be positive")
	}
	if cfg.Notes.Dir == "" {
		return fmt.Errorf("notes.dir is required")
	}
	if cfg.Notes.AutosaveDelay < 0 {
		return fmt.Errorf("notes.autosave_delay must not be negative")
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q unknown: want debug|info|warn|error", cfg.Log.Level)
	}
	return nil
}
