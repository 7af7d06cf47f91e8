package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	CORS    CORSConfig
	Heureka HeurekaConfig
	Cache   CacheConfig
	Range   RangeConfig
	Session SessionConfig
	Log     LogConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string `validate:"required"`
	Host string
	Addr string // Combined host:port for convenience
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string `validate:"dive,required"`
}

// HeurekaConfig holds settings for the upstream reports API.
// An empty APIKey is allowed; fetches then fail with 401.
type HeurekaConfig struct {
	BaseURL string        `validate:"required,url"`
	APIKey  string
	Timeout time.Duration `validate:"gt=0"`
}

// CacheConfig holds settings for the per-day cache.
type CacheConfig struct {
	TTL           time.Duration `validate:"gt=0"`
	Capacity      int           `validate:"min=0"`
	PurgeSchedule string        // cron spec; empty disables scheduled purging
}

// RangeConfig bounds range queries.
type RangeConfig struct {
	MaxDays int `validate:"min=1"`
}

// SessionConfig holds settings for the login gate.
// An empty Password disables the gate.
type SessionConfig struct {
	Password string
	Key      string // base64 fernet key; generated at startup when empty
	TTL      time.Duration `validate:"gt=0"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `validate:"oneof=debug info warn error"`
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	timeout, err := getEnvDuration("HEUREKA_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getEnvDuration("CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	capacity, err := getEnvInt("CACHE_CAPACITY", 0)
	if err != nil {
		return nil, err
	}
	maxDays, err := getEnvInt("MAX_RANGE_DAYS", 366)
	if err != nil {
		return nil, err
	}
	sessionTTL, err := getEnvDuration("SESSION_TTL", 12*time.Hour)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5000"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Heureka: HeurekaConfig{
			BaseURL: getEnv("HEUREKA_API_BASE", "https://api.heureka.group"),
			APIKey:  os.Getenv("HEUREKA_API_KEY"),
			Timeout: timeout,
		},
		Cache: CacheConfig{
			TTL:           cacheTTL,
			Capacity:      capacity,
			PurgeSchedule: getEnvAllowEmpty("CACHE_PURGE_SCHEDULE", "@every 10m"),
		},
		Range: RangeConfig{
			MaxDays: maxDays,
		},
		Session: SessionConfig{
			Password: os.Getenv("ACCESS_PASSWORD"),
			Key:      os.Getenv("SESSION_KEY"),
			TTL:      sessionTTL,
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAllowEmpty is like getEnv but keeps an explicitly set empty value.
func getEnvAllowEmpty(key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	return strings.TrimSpace(value)
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, value)
	}
	return n, nil
}

// getEnvDuration accepts Go durations ("30s", "10m") or a plain number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, value)
	}
	return d, nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
