// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// the server, the chat engine, the optional LLM providers, and the
// optional chat-log archive.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Profile Configuration
	ProfilePath string // Path to the profile JSON document

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string // CORS origins for the web widget ("*" allows all)

	// Data Configuration
	DataDir          string        // Data directory for the SQLite chat log
	ChatLogEnabled   bool          // Record finished turns to SQLite
	ChatLogRetention time.Duration // Prune chat-log rows older than this

	// Session Configuration
	SessionTTL time.Duration // Evict idle sessions after this duration

	// LLM Configuration (optional reply polish)
	GeminiAPIKey   string
	GroqAPIKey     string
	CerebrasAPIKey string
	LLMProviders   []string // Ordered provider chain, e.g. ["gemini", "groq"]
	GeminiModel    string
	GroqModel      string
	CerebrasModel  string

	// Archive Configuration (optional S3-compatible transcript export)
	ArchiveEndpoint    string
	ArchiveAccessKeyID string
	ArchiveSecretKey   string
	ArchiveBucket      string
	ArchivePrefix      string
	ArchiveInterval    time.Duration

	// Observability
	SentryDSN        string
	BetterstackToken string
	MetricsUsername  string // Username for /metrics Basic Auth
	MetricsPassword  string // Password for /metrics Basic Auth (empty = no auth)

	// Engine Configuration (embedded)
	Engine EngineConfig
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		ProfilePath: getEnv("PROFILE_PATH", "assets/profile.json"),

		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),
		AllowedOrigins:  getListEnv("ALLOWED_ORIGINS", []string{"*"}),

		DataDir:          getEnv("DATA_DIR", defaultDataDir()),
		ChatLogEnabled:   getBoolEnv("CHATLOG_ENABLED", true),
		ChatLogRetention: getDurationEnv("CHATLOG_RETENTION", 90*24*time.Hour),

		SessionTTL: getDurationEnv("SESSION_TTL", 30*time.Minute),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GroqAPIKey:     getEnv("GROQ_API_KEY", ""),
		CerebrasAPIKey: getEnv("CEREBRAS_API_KEY", ""),
		LLMProviders:   getListEnv("LLM_PROVIDERS", []string{"gemini", "groq"}),
		GeminiModel:    getEnv("GEMINI_MODEL", ""),
		GroqModel:      getEnv("GROQ_MODEL", ""),
		CerebrasModel:  getEnv("CEREBRAS_MODEL", ""),

		ArchiveEndpoint:    getEnv("ARCHIVE_ENDPOINT", ""),
		ArchiveAccessKeyID: getEnv("ARCHIVE_ACCESS_KEY_ID", ""),
		ArchiveSecretKey:   getEnv("ARCHIVE_SECRET_ACCESS_KEY", ""),
		ArchiveBucket:      getEnv("ARCHIVE_BUCKET", ""),
		ArchivePrefix:      getEnv("ARCHIVE_PREFIX", "chatlog"),
		ArchiveInterval:    getDurationEnv("ARCHIVE_INTERVAL", time.Hour),

		SentryDSN:        getEnv("SENTRY_DSN", ""),
		BetterstackToken: getEnv("BETTERSTACK_TOKEN", ""),
		MetricsUsername:  getEnv("METRICS_USERNAME", "prometheus"),
		MetricsPassword:  getEnv("METRICS_PASSWORD", ""),

		Engine: LoadEngineConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.ProfilePath == "" {
		errs = append(errs, errors.New("PROFILE_PATH is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR is required"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %v", c.SessionTTL))
	}
	if c.ArchiveConfigured() && c.ArchiveInterval <= 0 {
		errs = append(errs, fmt.Errorf("ARCHIVE_INTERVAL must be positive, got %v", c.ArchiveInterval))
	}
	if err := c.Engine.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("engine config: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SQLitePath returns the chat-log database path under the data directory.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "chatlog.db")
}

// ArchiveConfigured reports whether all archive credentials are present.
func (c *Config) ArchiveConfigured() bool {
	return c.ArchiveEndpoint != "" && c.ArchiveAccessKeyID != "" &&
		c.ArchiveSecretKey != "" && c.ArchiveBucket != ""
}

// LLMConfigured reports whether at least one provider has an API key.
func (c *Config) LLMConfigured() bool {
	return c.GeminiAPIKey != "" || c.GroqAPIKey != "" || c.CerebrasAPIKey != ""
}

func defaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "portfolio-chatbot")
	}
	return "data"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getListEnv(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
