// Package cache holds the two offline caches of the sync core: the
// single-slot daily quote and the bounded list of recent quotes.
//
// Both caches are best-effort. A failed read is treated as an empty cache and
// a failed write never fails the caller; it is logged and reported as a
// Degraded PersistResult instead.
package cache

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store keys. Each cache is the only writer of its key.
const (
	KeyDaily  = "todaysQuote"
	KeyRecent = "cachedQuotes"
)

const (
	cacheNameDaily  = "daily"
	cacheNameRecent = "recent"
)

var persistTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "shrutam_cache_persist_total",
		Help: "Cache writes by cache and outcome (ok, degraded).",
	},
	[]string{"cache", "status"},
)

// PersistStatus is the outcome of a cache write.
type PersistStatus int

const (
	// PersistOK means the value reached the store.
	PersistOK PersistStatus = iota

	// PersistDegraded means the write was dropped. The in-memory result the
	// caller holds is still valid; only durability was lost.
	PersistDegraded
)

// String returns the metric label for the status.
func (s PersistStatus) String() string {
	if s == PersistDegraded {
		return "degraded"
	}

	return "ok"
}

// PersistResult reports whether a cache write was persisted.
type PersistResult struct {
	Status PersistStatus
	Reason string
	Err    error
}

// OK reports whether the write was persisted.
func (r PersistResult) OK() bool {
	return r.Status == PersistOK
}

func persisted(cache string) PersistResult {
	persistTotal.WithLabelValues(cache, PersistOK.String()).Inc()

	return PersistResult{Status: PersistOK}
}

func degraded(cache, reason string, err error) PersistResult {
	persistTotal.WithLabelValues(cache, PersistDegraded.String()).Inc()

	return PersistResult{Status: PersistDegraded, Reason: reason, Err: err}
}

// logDegraded records a swallowed write failure.
func logDegraded(ctx context.Context, logger *slog.Logger, key string, r PersistResult) {
	logger.WarnContext(ctx, "cache write dropped",
		slog.String("key", key),
		slog.String("reason", r.Reason),
		slog.Any("error", r.Err),
	)
}
