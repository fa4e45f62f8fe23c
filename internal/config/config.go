package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/benvon/questlog/internal/models"
)

// Config holds application configuration
type Config struct {
	ServerPort       string
	FrontendURL      string
	RedisURL         string
	RedisKeyPrefix   string
	DatabaseURL      string
	RabbitMQURL      string
	RabbitMQPrefetch int
	RateLimit        string
	MaxRequestBytes  int64
	RequestTimeout   time.Duration
	EnableHSTS       bool
	WorkerDebugMode  bool
	ServerDebugMode  bool
	OTELEnabled      bool
	OTELEndpoint     string
	ReminderEnabled  bool
	ReminderTime     models.TimeOfDay
	SyncInterval     time.Duration
	Location         *time.Location
	TitleTheme       string
	DLQRetention     time.Duration
	DLQGCInterval    time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:3000"),
		RedisURL:         getEnv("REDIS_URL", ""),
		RedisKeyPrefix:   getEnv("REDIS_KEY_PREFIX", "questlog"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch: getEnvInt("RABBITMQ_PREFETCH", 1),
		RateLimit:        getEnv("RATE_LIMIT", "100-M"),
		MaxRequestBytes:  int64(getEnvInt("MAX_REQUEST_BYTES", 1<<20)),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		EnableHSTS:       getEnvBool("ENABLE_HSTS", false),
		WorkerDebugMode:  getEnvBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode:  getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:      getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ReminderEnabled:  getEnvBool("REMINDER_ENABLED", true),
		SyncInterval:     getEnvDuration("SYNC_INTERVAL", 15*time.Minute),
		TitleTheme:       getEnv("TITLE_THEME", ""),
		DLQRetention:     getEnvDuration("DLQ_RETENTION", 7*24*time.Hour),
		DLQGCInterval:    getEnvDuration("DLQ_GC_INTERVAL", time.Hour),
	}

	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	reminder, err := models.ParseTimeOfDay(getEnv("REMINDER_TIME", "20:00"))
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_TIME: %w", err)
	}
	cfg.ReminderTime = reminder

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if cfg.SyncInterval < 0 {
		return nil, fmt.Errorf("SYNC_INTERVAL must not be negative")
	}

	return cfg, nil
}

// LoadWorker loads configuration for the sync worker, which needs the queue and the mirror
func LoadWorker() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the sync worker")
	}
	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required for the sync worker")
	}
	return cfg, nil
}

// DefaultPreferences are used until the user stores their own
func (c *Config) DefaultPreferences() models.Preferences {
	return models.Preferences{
		ReminderEnabled:     c.ReminderEnabled,
		ReminderTime:        c.ReminderTime,
		SyncIntervalMinutes: int(c.SyncInterval / time.Minute),
		TitleTheme:          c.TitleTheme,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
