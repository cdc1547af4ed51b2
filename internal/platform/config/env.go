package config

import (
	"errors"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Legacy environment variables read by the original client builds.
const (
	EnvBaseURL    = "BASE_URL"
	EnvAPITimeout = "API_TIMEOUT"
)

// loadDotEnv reads path into the process environment. A missing file is not
// an error, and variables that are already set keep their values.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

// legacyEnv maps BASE_URL and API_TIMEOUT onto config keys.
// Only variables that are present produce keys.
func legacyEnv(lookup func(string) (string, bool)) map[string]any {
	out := map[string]any{}

	if raw, ok := lookup(EnvBaseURL); ok && strings.TrimSpace(raw) != "" {
		out["services.quote.base_url"] = strings.TrimSpace(raw)
	}

	if raw, ok := lookup(EnvAPITimeout); ok {
		out["client.timeout"] = ParseAPITimeout(raw).String()
	}

	return out
}

// ParseAPITimeout parses a millisecond timeout. Empty, non-numeric and
// non-positive values yield DefaultClientTimeout.
func ParseAPITimeout(raw string) time.Duration {
	ms, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || ms <= 0 {
		return DefaultClientTimeout
	}

	return time.Duration(ms) * time.Millisecond
}
