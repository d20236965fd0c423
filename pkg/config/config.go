// Package config loads simulator configuration from environment variables.
package config

import (
	"log/slog"
	"os"
	"strconv"
)

// GetString retrieves an environment variable or returns a fallback when unset.
func GetString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetInt retrieves an environment variable as an integer, falling back on
// unset or unparseable values.
func GetInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer in environment", "key", key, "error", err)
		return fallback
	}
	return parsed
}

// GetBool retrieves an environment variable as a bool, falling back on unset
// or unparseable values.
func GetBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("invalid boolean in environment", "key", key, "error", err)
		return fallback
	}
	return parsed
}
