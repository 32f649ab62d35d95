// Package config loads process configuration from .env files and the environment.
// Flags are parsed by each binary with these values as defaults.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadEnvFile loads KEY=VALUE lines from path into the environment.
// Existing variables are not overridden. A missing file is not an error.
func LoadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		// Don't override existing env vars
		if _, ok := os.LookupEnv(key); !ok {
			os.Setenv(key, value)
		}
	}
	return nil
}

// Env returns the value of key, or fallback when unset or empty.
func Env(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// EnvInt returns key parsed as an int, or fallback when unset or invalid.
func EnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// EnvBool returns key parsed as a bool, or fallback when unset or invalid.
func EnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// EnvDuration returns key parsed as a duration, or fallback when unset or invalid.
func EnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
