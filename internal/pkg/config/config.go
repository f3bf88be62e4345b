package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
	Redis    RedisConfig
}

type StorageConfig struct {
	Bucket    string
	CDNDomain string
}

type AIConfig struct {
	GeminiAPIKey string
	Model        string
}

type AuthConfig struct {
	JWTSecret      string
	SessionSecret  string
	SecureCookies  bool
	AllowedOrigins []string
}

type PlannerConfig struct {
	DraftTTL time.Duration
}

type Config struct {
	Repositories RepositoriesConfig
	Storage      StorageConfig
	AI           AIConfig
	Auth         AuthConfig
	Planner      PlannerConfig
	ServerPort   string
	MetricsAddr  string
	OTLPEndpoint string
	PprofAddr    string
	LogLevel     string
}

func Load() (*Config, error) {
	cfg := &Config{
		Repositories: RepositoriesConfig{
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5454"),
				DB:       getEnvOrDefault("POSTGRES_DB", "backpackor"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: int32(getEnvIntOrDefault("POSTGRES_MAX_CONNS", 30)),
				MinConns: int32(getEnvIntOrDefault("POSTGRES_MIN_CONNS", 5)),
			},
			Redis: RedisConfig{
				Addr:     getEnvOrDefault("REDIS_ADDR", ""),
				Password: getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:       getEnvIntOrDefault("REDIS_DB", 0),
			},
		},
		Storage: StorageConfig{
			Bucket:    getEnvOrDefault("GCS_BUCKET_NAME", ""),
			CDNDomain: getEnvOrDefault("GCS_CDN_DOMAIN", ""),
		},
		AI: AIConfig{
			GeminiAPIKey: getEnvOrDefault("GEMINI_API_KEY", ""),
			Model:        getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnvOrDefault("JWT_SECRET_KEY", ""),
			SessionSecret:  getEnvOrDefault("SESSION_SECRET", ""),
			SecureCookies:  getEnvOrDefault("SECURE_COOKIES", "false") == "true",
			AllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "")),
		},
		Planner: PlannerConfig{
			DraftTTL: getEnvDurationOrDefault("PLANNER_DRAFT_TTL", 24*time.Hour),
		},
		ServerPort:   getEnvOrDefault("SERVER_PORT", "8091"),
		MetricsAddr:  getEnvOrDefault("METRICS_ADDR", ":9092"),
		OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		PprofAddr:    getEnvOrDefault("PPROF_ADDR", ":6060"),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if cfg.Repositories.Postgres.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD environment variable is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is required")
	}
	if cfg.Auth.SessionSecret == "" {
		cfg.Auth.SessionSecret = cfg.Auth.JWTSecret
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
