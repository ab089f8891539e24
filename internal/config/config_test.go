package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"LLM_PROVIDER", "LLM_MODEL", "LLM_API_KEY", "ANTHROPIC_API_KEY", "STORE_BACKEND", "WORKER_COUNT", "LOG_LEVEL", "PORT", "SESSION_TTL", "DATABASE_DRIVER"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.LLMProvider != "anthropic" || cfg.LLMModel != "claude-sonnet-4-5-20250929" {
		t.Errorf("unexpected llm defaults %q %q", cfg.LLMProvider, cfg.LLMModel)
	}
	if cfg.StoreBackend != "sql" || cfg.DatabaseDriver != "sqlite" {
		t.Errorf("unexpected store defaults %q %q", cfg.StoreBackend, cfg.DatabaseDriver)
	}
	if cfg.WorkerCount != 4 || cfg.SessionTTL != 30*time.Minute || cfg.LogLevel != slog.LevelInfo {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("WORKER_COUNT", "-1")
	t.Setenv("SUGGEST_STRUCTURED", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("JOB_TTL", "bogus")

	cfg := Load()
	if cfg.LLMProvider != "openai" || cfg.LLMAPIKey != "sk-test" || cfg.LLMModel != "gpt-4o-mini" {
		t.Errorf("unexpected llm config %q %q %q", cfg.LLMProvider, cfg.LLMAPIKey, cfg.LLMModel)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected invalid worker count to fall back, got %d", cfg.WorkerCount)
	}
	if !cfg.SuggestStructured || cfg.LogLevel != slog.LevelDebug || cfg.JobTTL != time.Hour {
		t.Errorf("unexpected overrides %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		APIKey:         "k",
		LLMProvider:    "anthropic",
		LLMAPIKey:      "a",
		StoreBackend:   "sql",
		DatabaseDriver: "sqlite",
		DatabaseURL:    "x.db",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"api key", func(c *Config) { c.APIKey = "" }, "JOBDESC_API_KEY"},
		{"provider", func(c *Config) { c.LLMProvider = "llama" }, "LLM_PROVIDER"},
		{"llm key", func(c *Config) { c.LLMAPIKey = "" }, "ANTHROPIC_API_KEY"},
		{"driver", func(c *Config) { c.DatabaseDriver = "mysql" }, "DATABASE_DRIVER"},
		{"pathstore key", func(c *Config) { c.StoreBackend = "pathstore" }, "PATHSTORE_API_KEY"},
		{"backend", func(c *Config) { c.StoreBackend = "s3" }, "STORE_BACKEND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}

	none := valid
	none.StoreBackend = "none"
	none.DatabaseDriver = ""
	if err := none.Validate(); err != nil {
		t.Errorf("expected store backend none to be valid, got %v", err)
	}
}
