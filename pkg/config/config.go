package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Cache backends accepted by CACHE_BACKEND
const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
	CacheBackendNone   = "none"
)

// Store backends accepted by STORE_BACKEND
const (
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"
)

// Config holds the application configuration
type Config struct {
	Environment        string
	ServerPort         int
	LogLevel           string
	CORSAllowedOrigins []string
	Database           DatabaseConfig
	Cache              CacheConfig
	Auth               AuthConfig
	SMTP               SMTPConfig
	Tracing            TracingConfig
	NotifyTimeout      time.Duration
}

// TracingConfig configures the OTLP exporter. An empty Endpoint disables tracing.
type TracingConfig struct {
	Endpoint    string
	SampleRatio float64
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Backend  string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// CacheConfig selects and tunes the cache-aside backend
type CacheConfig struct {
	Backend       string
	RedisURL      string
	TTL           time.Duration
	SweepInterval time.Duration
}

// AuthConfig holds token and login throttling settings
type AuthConfig struct {
	JWTSecret          string
	TokenTTL           time.Duration
	LoginRatePerMinute int
	// BootstrapAdminEmail and BootstrapAdminPassword create the first admin
	// account at startup when no account uses that email yet
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

// SMTPConfig holds mail transport settings. An empty Host disables delivery.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	cacheTTL, err := strconv.Atoi(getEnv("CACHE_TTL_SECONDS", "300"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL_SECONDS: %w", err)
	}
	if cacheTTL <= 0 {
		return nil, fmt.Errorf("CACHE_TTL_SECONDS must be positive")
	}

	sweepInterval, err := strconv.Atoi(getEnv("CACHE_SWEEP_INTERVAL_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_SWEEP_INTERVAL_SECONDS: %w", err)
	}

	tokenTTL, err := strconv.Atoi(getEnv("JWT_TTL_MINUTES", "120"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL_MINUTES: %w", err)
	}

	loginRate, err := strconv.Atoi(getEnv("LOGIN_RATE_PER_MINUTE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_PER_MINUTE: %w", err)
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "465"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	notifyTimeout, err := strconv.Atoi(getEnv("NOTIFY_TIMEOUT_SECONDS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_TIMEOUT_SECONDS: %w", err)
	}

	sampleRatio, err := strconv.ParseFloat(getEnv("OTEL_TRACES_SAMPLE_RATIO", "1"), 64)
	if err != nil || sampleRatio < 0 || sampleRatio > 1 {
		return nil, fmt.Errorf("invalid OTEL_TRACES_SAMPLE_RATIO %q", os.Getenv("OTEL_TRACES_SAMPLE_RATIO"))
	}

	backend := strings.ToLower(getEnv("CACHE_BACKEND", CacheBackendRedis))
	switch backend {
	case CacheBackendRedis, CacheBackendMemory, CacheBackendNone:
	default:
		return nil, fmt.Errorf("invalid CACHE_BACKEND %q", backend)
	}

	store := strings.ToLower(getEnv("STORE_BACKEND", StoreBackendPostgres))
	if store != StoreBackendPostgres && store != StoreBackendMemory {
		return nil, fmt.Errorf("invalid STORE_BACKEND %q", store)
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  port,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
		Database: DatabaseConfig{
			Backend:  store,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "citas"),
			Password: getEnv("DB_PASSWORD", "dev"),
			Name:     getEnv("DB_NAME", "citas"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Cache: CacheConfig{
			Backend:       backend,
			RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			TTL:           time.Duration(cacheTTL) * time.Second,
			SweepInterval: time.Duration(sweepInterval) * time.Second,
		},
		Auth: AuthConfig{
			JWTSecret:          os.Getenv("JWT_SECRET"),
			TokenTTL:           time.Duration(tokenTTL) * time.Minute,
			LoginRatePerMinute: loginRate,

			BootstrapAdminEmail:    os.Getenv("ADMIN_EMAIL"),
			BootstrapAdminPassword: os.Getenv("ADMIN_PASSWORD"),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     smtpPort,
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", os.Getenv("SMTP_USERNAME")),
		},
		Tracing: TracingConfig{
			Endpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			SampleRatio: sampleRatio,
		},
		NotifyTimeout: time.Duration(notifyTimeout) * time.Second,
	}

	if cfg.Auth.JWTSecret == "" && cfg.Environment == "production" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
