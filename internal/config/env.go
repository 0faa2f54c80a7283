package config

import (
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// GetEnv returns an environment variable value or a default
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetDurationEnv returns a duration from environment variable or a default
func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		log.Warn().
			Str("key", key).
			Str("value", value).
			Dur("default", defaultValue).
			Msg("Invalid duration, using default")
		return defaultValue
	}

	return duration
}
