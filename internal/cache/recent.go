package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jsamuelsen/shrutam/internal/domain"
	"github.com/jsamuelsen/shrutam/internal/ports"
)

// MaxRecent is the hard cap on the recent list.
const MaxRecent = 30

// RecentQuoteCache owns the bounded, deduplicated list of recently seen
// quotes, most recently cached first.
//
// MergeAndStore is a read-modify-write of one store key; calls on the same
// RecentQuoteCache are serialized so overlapping refreshes cannot lose each
// other's quotes.
type RecentQuoteCache struct {
	mu       sync.Mutex
	store    ports.KeyValueStore
	capacity int
	logger   *slog.Logger
}

// NewRecentQuoteCache creates a recent cache over store. A capacity outside
// 1..MaxRecent is clamped to MaxRecent.
func NewRecentQuoteCache(store ports.KeyValueStore, capacity int, logger *slog.Logger) *RecentQuoteCache {
	if capacity <= 0 || capacity > MaxRecent {
		capacity = MaxRecent
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &RecentQuoteCache{
		store:    store,
		capacity: capacity,
		logger:   logger.With(slog.String("component", "cache.Recent")),
	}
}

// Capacity returns the configured cap.
func (c *RecentQuoteCache) Capacity() int {
	return c.capacity
}

// ReadAll returns the persisted list. A missing or corrupt value reads as an
// empty list.
func (c *RecentQuoteCache) ReadAll(ctx context.Context) []*domain.Quote {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.readLocked(ctx)
}

// Find returns the cached quote with id.
func (c *RecentQuoteCache) Find(ctx context.Context, id string) (*domain.Quote, bool) {
	for _, q := range c.ReadAll(ctx) {
		if q.ID == id {
			return q, true
		}
	}

	return nil, false
}

// MergeAndStore puts incoming in front of the cached entries it does not
// supersede, truncates to capacity and persists the result. The merged list
// is returned even when persisting it failed.
func (c *RecentQuoteCache) MergeAndStore(ctx context.Context, incoming []*domain.Quote) ([]*domain.Quote, PersistResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	valid := make([]*domain.Quote, 0, len(incoming))
	for _, q := range incoming {
		if err := q.Validate(); err != nil {
			c.logger.WarnContext(ctx, "skipping invalid quote", slog.Any("error", err))
			continue
		}

		valid = append(valid, q)
	}

	merged := Merge(valid, c.readLocked(ctx), c.capacity)

	data, err := encodeList(merged)
	if err != nil {
		r := degraded(cacheNameRecent, "encode failed", err)
		logDegraded(ctx, c.logger, KeyRecent, r)

		return merged, r
	}

	if err := c.store.Set(ctx, KeyRecent, data); err != nil {
		r := degraded(cacheNameRecent, "store write failed", err)
		logDegraded(ctx, c.logger, KeyRecent, r)

		return merged, r
	}

	c.logger.DebugContext(ctx, "recent quotes cached",
		slog.Int("incoming", len(valid)),
		slog.Int("size", len(merged)),
	)

	return merged, persisted(cacheNameRecent)
}

// MergeSingleAndStore is MergeAndStore with a single incoming quote.
func (c *RecentQuoteCache) MergeSingleAndStore(ctx context.Context, q *domain.Quote) ([]*domain.Quote, PersistResult) {
	return c.MergeAndStore(ctx, []*domain.Quote{q})
}

func (c *RecentQuoteCache) readLocked(ctx context.Context) []*domain.Quote {
	data, err := c.store.Get(ctx, KeyRecent)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			c.logger.WarnContext(ctx, "recent cache read failed", slog.Any("error", err))
		}

		return []*domain.Quote{}
	}

	quotes, dropped, err := decodeList(data)
	if err != nil {
		c.logger.WarnContext(ctx, "recent cache unreadable, treating as empty", slog.Any("error", err))
		return []*domain.Quote{}
	}

	for _, d := range dropped {
		c.logger.WarnContext(ctx, "dropping unreadable recent cache record", slog.Any("error", d))
	}

	if len(quotes) > c.capacity {
		quotes = quotes[:c.capacity]
	}

	return quotes
}

// Merge returns incoming followed by the cached quotes whose id is not in
// incoming, truncated to capacity. Duplicate ids within incoming keep their
// first occurrence. Neither input is modified.
func Merge(incoming, cached []*domain.Quote, capacity int) []*domain.Quote {
	if capacity <= 0 {
		return []*domain.Quote{}
	}

	out := make([]*domain.Quote, 0, min(len(incoming)+len(cached), capacity))
	seen := make(map[string]struct{}, len(incoming)+len(cached))

	for _, list := range [][]*domain.Quote{incoming, cached} {
		for _, q := range list {
			if len(out) == capacity {
				return out
			}

			if _, dup := seen[q.ID]; dup {
				continue
			}

			seen[q.ID] = struct{}{}
			out = append(out, q)
		}
	}

	return out
}
