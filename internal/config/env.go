package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnv returns the value of key, or fallback when unset or empty.
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetIntEnv parses key as an integer. Unset values fall back silently;
// unparsable ones fall back with a warning so a typoed knob is visible.
func GetIntEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("Ignoring unparsable integer env value", "key", key, "value", raw)
		return fallback
	}
	return value
}

// GetDurationEnv parses key in time.ParseDuration syntax ("3s", "250ms").
// Unset values fall back silently; unparsable ones fall back with a
// warning.
func GetDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("Ignoring unparsable duration env value", "key", key, "value", raw)
		return fallback
	}
	return value
}

// GetSecretFile reads a token from path and trims surrounding
// whitespace. Suits Docker and Kubernetes secret mounts. An empty path
// or unreadable file yields an empty string, which disables whatever
// the secret guards (API auth, backend tokens).
func GetSecretFile(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("Failed to read secret file", "path", path, "error", err)
		return ""
	}
	return strings.TrimSpace(string(data))
}
