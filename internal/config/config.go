package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port     string
	LogLevel slog.Level

	// Auth
	APIKey string

	// LLM
	LLMProvider string
	LLMAPIKey   string
	LLMModel    string
	LLMBaseURL  string
	LLMTimeout  time.Duration

	// Suggestions
	SuggestStructured bool
	SuggestMaxItems   int
	SuggestTimeout    time.Duration

	// Description store: "sql", "pathstore" or "none"
	StoreBackend   string
	DatabaseDriver string
	DatabaseURL    string

	// Pathstore connection
	PathstoreURL    string
	PathstoreAPIKey string
	PathstorePrefix string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Job and session state
	JobTTL     time.Duration
	SessionTTL time.Duration

	// Request limits
	MaxBodyBytes int64
}

// defaultModels holds the model used when LLM_MODEL is unset.
var defaultModels = map[string]string{
	"anthropic": "claude-sonnet-4-5-20250929",
	"openai":    "gpt-4o-mini",
	"gemini":    "gemini-2.0-flash",
}

// apiKeyVars lists the provider-specific key variables read when LLM_API_KEY
// is unset.
var apiKeyVars = map[string]string{
	"anthropic": "ANTHROPIC_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

func Load() Config {
	provider := strings.ToLower(envOr("LLM_PROVIDER", "anthropic"))
	cfg := Config{
		Port:     envOr("PORT", "8090"),
		LogLevel: envLevel("LOG_LEVEL", slog.LevelInfo),

		APIKey: os.Getenv("JOBDESC_API_KEY"),

		LLMProvider: provider,
		LLMAPIKey:   envOr("LLM_API_KEY", os.Getenv(apiKeyVars[provider])),
		LLMModel:    envOr("LLM_MODEL", defaultModels[provider]),
		LLMBaseURL:  os.Getenv("LLM_BASE_URL"),
		LLMTimeout:  envDuration("LLM_TIMEOUT", 120*time.Second),

		SuggestStructured: envBool("SUGGEST_STRUCTURED", false),
		SuggestMaxItems:   envInt("SUGGEST_MAX_ITEMS", 8),
		SuggestTimeout:    envDuration("SUGGEST_TIMEOUT", 15*time.Second),

		StoreBackend:   strings.ToLower(envOr("STORE_BACKEND", "sql")),
		DatabaseDriver: strings.ToLower(envOr("DATABASE_DRIVER", "sqlite")),
		DatabaseURL:    envOr("DATABASE_URL", "jobdesc.db"),

		PathstoreURL:    envOr("PATHSTORE_URL", "http://localhost:8080"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),
		PathstorePrefix: envOr("PATHSTORE_PREFIX", "jobs"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		JobTTL:     envDuration("JOB_TTL", 1*time.Hour),
		SessionTTL: envDuration("SESSION_TTL", 30*time.Minute),

		MaxBodyBytes: envInt64("MAX_BODY_BYTES", 1<<20), // 1MB
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.SuggestMaxItems <= 0 {
		cfg.SuggestMaxItems = 8
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("JOBDESC_API_KEY is required")
	}
	if _, ok := apiKeyVars[c.LLMProvider]; !ok {
		return fmt.Errorf("LLM_PROVIDER %q is not one of anthropic, openai, gemini", c.LLMProvider)
	}
	if c.LLMAPIKey == "" {
		return fmt.Errorf("LLM_API_KEY or %s is required", apiKeyVars[c.LLMProvider])
	}
	switch c.StoreBackend {
	case "sql":
		if c.DatabaseDriver != "postgres" && c.DatabaseDriver != "sqlite" {
			return fmt.Errorf("DATABASE_DRIVER %q is not one of postgres, sqlite", c.DatabaseDriver)
		}
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case "pathstore":
		if c.PathstoreAPIKey == "" {
			return fmt.Errorf("PATHSTORE_API_KEY is required")
		}
	case "none":
	default:
		return fmt.Errorf("STORE_BACKEND %q is not one of sql, pathstore, none", c.StoreBackend)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			return l
		}
	}
	return fallback
}
