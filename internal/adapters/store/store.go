// Package store provides durable key-value backends for the quote caches.
// Every backend survives process restarts except Memory, which exists for
// tests and throwaway runs.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/shrutam/internal/domain"
	"github.com/jsamuelsen/shrutam/internal/platform/config"
	"github.com/jsamuelsen/shrutam/internal/ports"
)

// ErrInvalidKey is returned for keys a backend cannot address.
var ErrInvalidKey = errors.New("invalid store key")

// Store is a key-value backend that can also report its own health.
type Store interface {
	ports.KeyValueStore
	ports.HealthChecker
}

// New opens the backend selected by cfg.Driver.
func New(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "store"), slog.String("driver", cfg.Driver))

	var (
		s   Store
		err error
	)

	switch cfg.Driver {
	case config.StoreDriverFile:
		s, err = NewFile(cfg.Path)
	case config.StoreDriverSQLite:
		s, err = OpenSQLite(ctx, cfg.Path)
	case config.StoreDriverRedis:
		s, err = NewRedis(ctx, RedisConfig{URL: cfg.RedisURL, KeyPrefix: cfg.KeyPrefix})
	case config.StoreDriverMemory:
		s = NewMemory()
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Driver, err)
	}

	logger.Info("store opened")

	return s, nil
}

// validateKey rejects keys no backend should accept.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}

	return nil
}

// notFound is the error every backend returns for a missing key.
func notFound(key string) error {
	return domain.NewNotFoundError("store key", key)
}

// cloneBytes copies b so callers never share a backend's buffer.
func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}

	out := make([]byte, len(b))
	copy(out, b)

	return out
}
