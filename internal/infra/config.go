package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Credit store backends selectable through CREDITS_STORE.
const (
	CreditsStoreFile     = "file"
	CreditsStorePostgres = "postgres"
	CreditsStoreRedis    = "redis"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	CreditsStore    string
	CreditsFilePath string
	CreditsAccount  string
	DatabaseURL     string
	RedisURL        string

	StoragePath string

	GeminiAPIKey     string
	GeminiImageModel string
	GeminiVideoModel string
	GeminiBaseURL    string
	VideoPollEvery   time.Duration

	NotifyAMQPURL  string
	NotifyExchange string

	StepDelay time.Duration

	AllowedOrigins  []string
	RateLimitPerMin int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		CreditsStore:     getEnv("CREDITS_STORE", CreditsStoreFile),
		CreditsFilePath:  getEnv("CREDITS_FILE_PATH", "data/credits.json"),
		CreditsAccount:   getEnv("CREDITS_ACCOUNT", "studio"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		StoragePath:      getEnv("STORAGE_PATH", "data/archive"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		GeminiVideoModel: getEnv("GEMINI_VIDEO_MODEL", "veo-3.1-fast-generate-preview"),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		VideoPollEvery:   time.Second * time.Duration(getEnvInt("VIDEO_POLL_SECONDS", 10)),
		NotifyAMQPURL:    os.Getenv("NOTIFY_AMQP_URL"),
		NotifyExchange:   getEnv("NOTIFY_EXCHANGE", "luxelens.events"),
		StepDelay:        time.Millisecond * time.Duration(getEnvInt("STEP_DELAY_MILLIS", 300)),
		AllowedOrigins:   splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	switch cfg.CreditsStore {
	case CreditsStoreFile:
		if cfg.CreditsFilePath == "" {
			return nil, fmt.Errorf("CREDITS_FILE_PATH is required for the file credit store")
		}
	case CreditsStorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres credit store")
		}
	case CreditsStoreRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required for the redis credit store")
		}
	default:
		return nil, fmt.Errorf("unknown CREDITS_STORE %q", cfg.CreditsStore)
	}

	return cfg, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
