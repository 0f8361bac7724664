package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Log     LogConfig
	Store   StoreConfig
	Queue   QueueConfig
	Extract ExtractConfig
}

// LogConfig controls the slog handler built by the CLI
type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // text | json
}

// StoreConfig holds result-store configuration
type StoreConfig struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// QueueConfig holds worker pool configuration
type QueueConfig struct {
	Workers        int
	Size           int
	ProcessTimeout time.Duration
}

// ExtractConfig holds limits for the built-in extractor
type ExtractConfig struct {
	MaxDocumentBytes int64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Store: StoreConfig{
			DSN:             getEnv("STORE_DSN", "file:attachments.db"),
			MaxConns:        getEnvAsInt32("STORE_MAX_CONNS", 10),
			MaxConnLifetime: getEnvAsDuration("STORE_MAX_CONN_LIFETIME", 30*time.Minute),
			DialTimeout:     getEnvAsDuration("STORE_DIAL_TIMEOUT", 3*time.Second),
		},
		Queue: QueueConfig{
			Workers:        getEnvAsInt("WORKERS", 4),
			Size:           getEnvAsInt("QUEUE_SIZE", 256),
			ProcessTimeout: getEnvAsDuration("PROCESS_TIMEOUT", 2*time.Minute),
		},
		Extract: ExtractConfig{
			MaxDocumentBytes: getEnvAsInt64("MAX_DOCUMENT_BYTES", 100*1024*1024),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// SlogLevel maps Log.Level to a slog level, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const maxWorkers = 256

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("STORE_DSN", c.Store.DSN, Required).
		Field("LOG_LEVEL", c.Log.Level, OneOf("debug", "info", "warn", "warning", "error")).
		Field("LOG_FORMAT", c.Log.Format, OneOf("text", "json")).
		Field("WORKERS", c.Queue.Workers, Positive, AtMost(maxWorkers)).
		Field("QUEUE_SIZE", c.Queue.Size, Positive).
		Field("PROCESS_TIMEOUT", c.Queue.ProcessTimeout, Positive).
		Field("MAX_DOCUMENT_BYTES", c.Extract.MaxDocumentBytes, Positive)
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
