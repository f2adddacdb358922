package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the process-wide settings. Every field is env-driven with a
// development-friendly default.
type Config struct {
	Port   string
	DBPath string

	RedisAddr     string
	RedisDB       int
	RedisPassword string

	// CacheTTL is the default TTL applied whenever a caller omits an
	// explicit one.
	CacheTTL time.Duration

	LogLevel  string
	LogPretty bool
}

// Load reads configuration from the environment.
func Load() Config {
	return Config{
		Port:          getEnv("PORT", ":8008"),
		DBPath:        getEnv("DB_PATH", "job-board.db"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CacheTTL:      getEnvDuration("CACHE_DEFAULT_TTL", 5*time.Minute),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPretty:     getEnvBool("LOG_PRETTY", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
