package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/jsamuelsen/shrutam/internal/domain"
	"github.com/jsamuelsen/shrutam/internal/ports"
)

// DailyQuoteCache owns the single "quote of today" slot. An entry is tagged
// with the local calendar date it was cached on and is only served back on
// that same date.
type DailyQuoteCache struct {
	store  ports.KeyValueStore
	logger *slog.Logger
}

// NewDailyQuoteCache creates a daily cache over store.
func NewDailyQuoteCache(store ports.KeyValueStore, logger *slog.Logger) *DailyQuoteCache {
	if logger == nil {
		logger = slog.Default()
	}

	return &DailyQuoteCache{
		store:  store,
		logger: logger.With(slog.String("component", "cache.Daily")),
	}
}

// Store overwrites the slot with q tagged as of asOf. It never fails; a
// write that does not reach the store is logged and reported as degraded.
func (c *DailyQuoteCache) Store(ctx context.Context, q *domain.Quote, asOf domain.CalendarDate) PersistResult {
	if err := q.Validate(); err != nil {
		r := degraded(cacheNameDaily, "invalid quote", err)
		logDegraded(ctx, c.logger, KeyDaily, r)

		return r
	}

	rec := toRecord(q)

	data, err := json.Marshal(dailyRecord{Data: &rec, Date: asOf.String()})
	if err != nil {
		r := degraded(cacheNameDaily, "encode failed", err)
		logDegraded(ctx, c.logger, KeyDaily, r)

		return r
	}

	if err := c.store.Set(ctx, KeyDaily, data); err != nil {
		r := degraded(cacheNameDaily, "store write failed", err)
		logDegraded(ctx, c.logger, KeyDaily, r)

		return r
	}

	c.logger.DebugContext(ctx, "daily quote cached",
		slog.String("quote_id", q.ID),
		slog.String("date", asOf.String()),
	)

	return persisted(cacheNameDaily)
}

// RetrieveIfFresh returns the cached quote only when it was cached on today.
// A missing, corrupt or stale entry reads as absent.
func (c *DailyQuoteCache) RetrieveIfFresh(ctx context.Context, today domain.CalendarDate) (*domain.Quote, bool) {
	data, err := c.store.Get(ctx, KeyDaily)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			c.logger.WarnContext(ctx, "daily cache read failed", slog.Any("error", err))
		}

		return nil, false
	}

	var rec dailyRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		c.logger.WarnContext(ctx, "daily cache entry unreadable, ignoring", slog.Any("error", err))
		return nil, false
	}

	if err := validate.Struct(&rec); err != nil {
		c.logger.WarnContext(ctx, "daily cache entry invalid, ignoring", slog.Any("error", err))
		return nil, false
	}

	cachedOn, err := domain.ParseCalendarDate(rec.Date)
	if err != nil {
		c.logger.WarnContext(ctx, "daily cache date tag unreadable, ignoring",
			slog.String("date", rec.Date),
			slog.Any("error", err),
		)

		return nil, false
	}

	if cachedOn != today {
		c.logger.DebugContext(ctx, "daily cache entry is stale",
			slog.String("cached_on", cachedOn.String()),
			slog.String("today", today.String()),
		)

		return nil, false
	}

	q, err := rec.Data.toQuote()
	if err != nil {
		c.logger.WarnContext(ctx, "daily cache quote invalid, ignoring", slog.Any("error", err))
		return nil, false
	}

	return q, true
}
