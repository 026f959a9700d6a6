package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	LogLevel         string
	HTTPListenAddr   string
	LLMBaseURL       string
	LLMAPIKey        string
	LLMModel         string
	LLMTimeout       time.Duration
	LLMMaxTokens     int
	TranscribeModel  string
	MaxHistory       int
	IntentClassifier string
	SessionBackend   string
	SessionTTL       time.Duration
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RedisTLS         bool
	ArchiveBackend   string
	DatabaseURL      string
	SQLitePath       string
	MetricsNamespace string
	AudioRateLimit   int64
	AudioRateWindow  time.Duration
}

// Load returns configuration populated from environment variables with fallbacks.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:           getenvDefault("APP_ENV", "development"),
		LogLevel:         getenvDefault("LOG_LEVEL", "info"),
		HTTPListenAddr:   getenvDefault("HTTP_LISTEN_ADDR", ":8080"),
		LLMBaseURL:       getenvDefault("LLM_BASE_URL", "http://localhost:1234"),
		LLMAPIKey:        trimmedEnv("LLM_API_KEY"),
		LLMModel:         getenvDefault("LLM_MODEL", "hermes-llama"),
		TranscribeModel:  getenvDefault("TRANSCRIBE_MODEL", "whisper-1"),
		IntentClassifier: getenvDefault("INTENT_CLASSIFIER", "keyword"),
		SessionBackend:   getenvDefault("SESSION_BACKEND", "memory"),
		RedisAddr:        getenvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    trimmedEnv("REDIS_PASSWORD"),
		ArchiveBackend:   getenvDefault("ARCHIVE_BACKEND", "none"),
		DatabaseURL:      trimmedEnv("DATABASE_URL"),
		SQLitePath:       getenvDefault("SQLITE_PATH", "data/complaints.db"),
		MetricsNamespace: getenvDefault("METRICS_NAMESPACE", "complibot"),
	}

	var err error

	llmTimeoutStr := getenvDefault("LLM_TIMEOUT", "30s")
	if cfg.LLMTimeout, err = time.ParseDuration(llmTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid LLM_TIMEOUT duration: %w", err)
	}

	sessionTTLStr := getenvDefault("SESSION_TTL", "1h")
	if cfg.SessionTTL, err = time.ParseDuration(sessionTTLStr); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL duration: %w", err)
	}

	audioWindowStr := getenvDefault("AUDIO_RATE_WINDOW", "10m")
	if cfg.AudioRateWindow, err = time.ParseDuration(audioWindowStr); err != nil {
		return nil, fmt.Errorf("invalid AUDIO_RATE_WINDOW duration: %w", err)
	}

	if maxTokensStr := getenvDefault("LLM_MAX_TOKENS", "512"); maxTokensStr != "" {
		maxTokens, convErr := strconv.Atoi(strings.TrimSpace(maxTokensStr))
		if convErr != nil {
			return nil, fmt.Errorf("invalid LLM_MAX_TOKENS value: %w", convErr)
		}
		if maxTokens <= 0 {
			maxTokens = 512
		}
		cfg.LLMMaxTokens = maxTokens
	}

	if maxHistoryStr := getenvDefault("MAX_HISTORY", "20"); maxHistoryStr != "" {
		maxHistory, convErr := strconv.Atoi(strings.TrimSpace(maxHistoryStr))
		if convErr != nil {
			return nil, fmt.Errorf("invalid MAX_HISTORY value: %w", convErr)
		}
		if maxHistory <= 0 {
			maxHistory = 20
		}
		cfg.MaxHistory = maxHistory
	}

	if audioLimitStr := getenvDefault("AUDIO_RATE_LIMIT", "5"); audioLimitStr != "" {
		limit, convErr := strconv.ParseInt(strings.TrimSpace(audioLimitStr), 10, 64)
		if convErr != nil {
			return nil, fmt.Errorf("invalid AUDIO_RATE_LIMIT value: %w", convErr)
		}
		if limit < 0 {
			limit = 0
		}
		cfg.AudioRateLimit = limit
	}

	if redisDBStr := getenvDefault("REDIS_DB", "0"); redisDBStr != "" {
		db, convErr := strconv.Atoi(redisDBStr)
		if convErr != nil {
			return nil, fmt.Errorf("invalid REDIS_DB value: %w", convErr)
		}
		cfg.RedisDB = db
	}

	cfg.RedisTLS = strings.EqualFold(getenvDefault("REDIS_TLS", "false"), "true")

	switch cfg.SessionBackend {
	case "memory", "redis":
	default:
		return nil, fmt.Errorf("invalid SESSION_BACKEND %q (want memory or redis)", cfg.SessionBackend)
	}

	switch cfg.ArchiveBackend {
	case "none", "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("invalid ARCHIVE_BACKEND %q (want none, sqlite or postgres)", cfg.ArchiveBackend)
	}
	if cfg.ArchiveBackend == "postgres" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ARCHIVE_BACKEND=postgres")
	}

	switch cfg.IntentClassifier {
	case "keyword", "model":
	default:
		return nil, fmt.Errorf("invalid INTENT_CLASSIFIER %q (want keyword or model)", cfg.IntentClassifier)
	}

	cfg.LLMBaseURL = strings.TrimRight(cfg.LLMBaseURL, "/")

	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		if trimmed := strings.TrimSpace(val); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func trimmedEnv(key string) string {
	if val, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(val)
	}
	return ""
}
