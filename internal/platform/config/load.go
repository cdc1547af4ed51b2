package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables that override config keys.
const EnvPrefix = "APP_"

// configDir holds base.yaml and one file per profile.
const configDir = "configs"

func defaults() map[string]any {
	return map[string]any{
		"app.name":        "shrutam",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "shrutam",
		"telemetry.sampling_rate": 1.0,

		"client.timeout":                           DefaultClientTimeout.String(),
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       DefaultTransportIdleConnTimeout.String(),

		"services.quote.base_url": "http://localhost:3000/api",
		"services.quote.name":     "quote-service",

		"store.driver":     StoreDriverFile,
		"store.path":       "./data",
		"store.redis_url":  "",
		"store.key_prefix": "shrutam:",

		"cache.recent_capacity": DefaultRecentCapacity,

		"refresh.enabled": true,
		"refresh.hour":    DefaultRefreshHour,
		"refresh.minute":  DefaultRefreshMinute,
	}
}

// Load builds the configuration for profile. Later layers win:
//
//	defaults < configs/base.yaml < configs/{profile}.yaml < APP_* < BASE_URL, API_TIMEOUT
//
// A .env file in the working directory is applied to the process
// environment first without overriding variables that are already set.
func Load(profile string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	base := defaults()
	k := koanf.New(".")

	layers := []struct {
		name string
		load func() error
	}{
		{"defaults", func() error { return k.Load(confmap.Provider(base, "."), nil) }},
		{"base config", func() error { return loadOptionalFile(k, filepath.Join(configDir, "base.yaml")) }},
		{"profile config", func() error {
			if profile == "" {
				return nil
			}

			return loadOptionalFile(k, filepath.Join(configDir, profile+".yaml"))
		}},
		{"env vars", func() error { return k.Load(env.Provider(EnvPrefix, ".", envKeyMapper(base)), nil) }},
		{"legacy env vars", func() error { return k.Load(confmap.Provider(legacyEnv(os.LookupEnv), "."), nil) }},
	}

	for _, l := range layers {
		if err := l.load(); err != nil {
			return nil, fmt.Errorf("loading %s: %w", l.name, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

func loadOptionalFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}

// envKeyMapper turns APP_STORE_REDIS_URL into store.redis_url. Underscores
// are ambiguous, so the variable is matched against the known keys first;
// unknown variables fall back to treating every underscore as a separator.
func envKeyMapper(known map[string]any) func(string) string {
	flat := make(map[string]string, len(known))
	for key := range known {
		flat[strings.NewReplacer(".", "_").Replace(key)] = key
	}

	return func(v string) string {
		name := strings.ToLower(strings.TrimPrefix(v, EnvPrefix))
		if key, ok := flat[name]; ok {
			return key
		}

		return strings.ReplaceAll(name, "_", ".")
	}
}
