// Package config loads client configuration from environment variables.
package config

import (
	"strconv"
	"strings"
	"time"
)

// DefaultServerURL is where the backend listens when nothing is configured:
// the API runs on a fixed port next to the UI.
const DefaultServerURL = "http://127.0.0.1:8000"

// Config holds all client configuration. The API base URL is resolved once
// here and injected into the client; nothing reads it from ambient state
// afterwards.
type Config struct {
	ServerURL string
	Timeout   time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables with defaults.
// Command-line flags may override individual fields afterwards.
func Load(getenv func(string) string) *Config {
	return &Config{
		ServerURL: normalizeServerURL(envOr(getenv, "SETU_SERVER", DefaultServerURL)),
		Timeout:   envDuration(getenv, "SETU_TIMEOUT", 30*time.Second),
		LogLevel:  envOr(getenv, "SETU_LOG_LEVEL", "info"),
		LogFormat: envOr(getenv, "SETU_LOG_FORMAT", "console"),
	}
}

// SetServerURL overrides the API base, normalizing scheme and trailing
// slash. An empty value keeps the current one.
func (c *Config) SetServerURL(u string) {
	if strings.TrimSpace(u) == "" {
		return
	}
	c.ServerURL = normalizeServerURL(u)
}

func normalizeServerURL(u string) string {
	u = strings.TrimSpace(u)
	if !strings.Contains(u, "://") {
		u = "http://" + u
	}
	return strings.TrimSuffix(u, "/")
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(getenv func(string) string, key string, fallback time.Duration) time.Duration {
	v := getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
