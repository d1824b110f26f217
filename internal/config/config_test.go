package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Port != "8080" {
		t.Errorf("Expected default port '8080', got '%s'", cfg.Port)
	}
	if cfg.ProfilePath != "assets/profile.json" {
		t.Errorf("Expected default profile path 'assets/profile.json', got '%s'", cfg.ProfilePath)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("Expected default session TTL 30m, got %v", cfg.SessionTTL)
	}
	if !cfg.ChatLogEnabled {
		t.Error("Expected chat log enabled by default")
	}
	if cfg.Engine.ConfidenceThreshold != 0.62 {
		t.Errorf("Expected default confidence threshold 0.62, got %v", cfg.Engine.ConfidenceThreshold)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	_ = os.Setenv("PORT", "9090")
	_ = os.Setenv("ENGINE_SPELLING_SENSITIVITY", "0.8")
	_ = os.Setenv("LLM_PROVIDERS", "groq, cerebras")
	defer func() {
		_ = os.Unsetenv("PORT")
		_ = os.Unsetenv("ENGINE_SPELLING_SENSITIVITY")
		_ = os.Unsetenv("LLM_PROVIDERS")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
	if cfg.Engine.SpellingSensitivity != 0.8 {
		t.Errorf("Expected spelling sensitivity 0.8, got %v", cfg.Engine.SpellingSensitivity)
	}
	if len(cfg.LLMProviders) != 2 || cfg.LLMProviders[0] != "groq" || cfg.LLMProviders[1] != "cerebras" {
		t.Errorf("Expected providers [groq cerebras], got %v", cfg.LLMProviders)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ProfilePath: "assets/profile.json",
			Port:        "8080",
			DataDir:     "/tmp/data",
			SessionTTL:  30 * time.Minute,
			Engine:      DefaultEngineConfig(),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing port",
			mutate:  func(c *Config) { c.Port = "" },
			wantErr: true,
		},
		{
			name:    "missing profile path",
			mutate:  func(c *Config) { c.ProfilePath = "" },
			wantErr: true,
		},
		{
			name:    "zero session TTL",
			mutate:  func(c *Config) { c.SessionTTL = 0 },
			wantErr: true,
		},
		{
			name: "archive configured without interval",
			mutate: func(c *Config) {
				c.ArchiveEndpoint = "https://example.r2.cloudflarestorage.com"
				c.ArchiveAccessKeyID = "key"
				c.ArchiveSecretKey = "secret"
				c.ArchiveBucket = "bucket"
				c.ArchiveInterval = 0
			},
			wantErr: true,
		},
		{
			name:    "bad engine threshold",
			mutate:  func(c *Config) { c.Engine.ConfidenceThreshold = 1.5 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEngineConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*EngineConfig)
		wantErr     bool
		errContains string
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*EngineConfig) {},
			wantErr: false,
		},
		{
			name:        "spelling sensitivity too low",
			mutate:      func(c *EngineConfig) { c.SpellingSensitivity = 0.3 },
			wantErr:     true,
			errContains: "spelling sensitivity",
		},
		{
			name:        "confidence threshold above one",
			mutate:      func(c *EngineConfig) { c.ConfidenceThreshold = 1.1 },
			wantErr:     true,
			errContains: "confidence threshold",
		},
		{
			name:        "odd history window",
			mutate:      func(c *EngineConfig) { c.HistoryWindow = 41 },
			wantErr:     true,
			errContains: "even",
		},
		{
			name:        "negative daily limit",
			mutate:      func(c *EngineConfig) { c.LLMDailyLimit = -1 },
			wantErr:     true,
			errContains: "daily limit",
		},
		{
			name:        "zero llm timeout",
			mutate:      func(c *EngineConfig) { c.LLMTimeout = 0 },
			wantErr:     true,
			errContains: "llm timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultEngineConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != nil && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.errContains)
			}
		})
	}
}

func TestSQLitePath(t *testing.T) {
	cfg := &Config{DataDir: "/var/lib/chatbot"}
	if got := cfg.SQLitePath(); !strings.HasSuffix(got, "chatlog.db") {
		t.Errorf("SQLitePath() = %q, want chatlog.db under data dir", got)
	}
}

func TestArchiveConfigured(t *testing.T) {
	cfg := &Config{}
	if cfg.ArchiveConfigured() {
		t.Error("Empty archive config should not be configured")
	}

	cfg.ArchiveEndpoint = "https://example.r2.cloudflarestorage.com"
	cfg.ArchiveAccessKeyID = "key"
	cfg.ArchiveSecretKey = "secret"
	if cfg.ArchiveConfigured() {
		t.Error("Archive without bucket should not be configured")
	}

	cfg.ArchiveBucket = "bucket"
	if !cfg.ArchiveConfigured() {
		t.Error("Complete archive config should be configured")
	}
}

func TestGetListEnv(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback []string
		want     []string
	}{
		{
			name:     "unset returns fallback",
			value:    "",
			fallback: []string{"a"},
			want:     []string{"a"},
		},
		{
			name:     "splits and trims",
			value:    " x , y ,z",
			fallback: []string{"a"},
			want:     []string{"x", "y", "z"},
		},
		{
			name:     "only separators returns fallback",
			value:    " , ,",
			fallback: []string{"a"},
			want:     []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				_ = os.Setenv("TEST_LIST", tt.value)
				defer func() { _ = os.Unsetenv("TEST_LIST") }()
			}

			got := getListEnv("TEST_LIST", tt.fallback)
			if len(got) != len(tt.want) {
				t.Fatalf("getListEnv() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("getListEnv()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
