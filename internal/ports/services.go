// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (RemoteError, ErrNotFound, etc.)
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"

	"github.com/jsamuelsen/shrutam/internal/domain"
)

// QuoteSource is the remote read capability the sync core consumes.
//
// Key considerations:
//   - Exactly one network attempt per call; retry policy lives in the caller
//   - Every failure is a *domain.RemoteError (status code 0 when no response arrived)
//   - Payloads are validated before domain quotes are returned
type QuoteSource interface {
	// FetchToday reads the single quote of the day.
	FetchToday(ctx context.Context) (*domain.Quote, error)

	// FetchRecent reads the bounded list of recent quotes, newest first.
	FetchRecent(ctx context.Context) ([]*domain.Quote, error)
}

// KeyValueStore is a durable byte store keyed by string that survives
// process restarts. The sync core treats it as an opaque capability.
// Implementations may use a directory of files, SQLite, or Redis.
type KeyValueStore interface {
	// Get retrieves the value stored under key.
	// Returns domain.ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Does not return an error if the key does not exist.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}
