// Package app contains application services that orchestrate use cases.
// This is the application layer: it coordinates the remote quote source and
// the offline caches through ports, and owns the fallback policy between them.
package app

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/jsamuelsen/shrutam/internal/cache"
	"github.com/jsamuelsen/shrutam/internal/domain"
	"github.com/jsamuelsen/shrutam/internal/platform/logging"
	"github.com/jsamuelsen/shrutam/internal/ports"
)

// Operation names, used for logs, metrics and SyncError.Operation.
const (
	OpFetchToday  = "fetch_today"
	OpFetchRecent = "fetch_recent"
)

var syncOutcomes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "shrutam_sync_outcomes_total",
		Help: "Sync operations by operation and terminal state.",
	},
	[]string{"operation", "state"},
)

// Outcome is the terminal state of one sync call.
type Outcome int

const (
	// OutcomeSucceeded means fresh remote data was returned.
	OutcomeSucceeded Outcome = iota + 1

	// OutcomeFallenBack means the remote read failed and cached data was returned.
	OutcomeFallenBack

	// OutcomeFailed means neither the remote nor the cache had usable data.
	OutcomeFailed
)

// String returns the metric label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFallenBack:
		return "fallen_back"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SyncService is the offline-first orchestrator. Each call tries the remote
// source once and falls back to the matching cache only when that fails.
//
// Overlapping calls to the same operation share one remote read, and a call
// is not abandoned when its caller's context is cancelled; the remote client
// timeout bounds it instead.
//
// The shared read keeps the values of the context that started it: its
// logger, its request and correlation IDs and the trace it belongs to. Log
// lines and forwarded headers from that read name the first caller only.
// Callers that joined it log a "joined in-flight sync" line under their own
// IDs.
type SyncService struct {
	source ports.QuoteSource
	daily  *cache.DailyQuoteCache
	recent *cache.RecentQuoteCache
	exec   *Executor
	group  singleflight.Group
	now    func() time.Time
	loc    *time.Location
	logger *slog.Logger
}

// SyncServiceConfig contains the dependencies of the sync service.
type SyncServiceConfig struct {
	Source ports.QuoteSource
	Daily  *cache.DailyQuoteCache
	Recent *cache.RecentQuoteCache
	Logger *slog.Logger

	// Now returns the current instant (defaults to time.Now).
	Now func() time.Time

	// Location decides what "today" means (defaults to time.Local).
	Location *time.Location
}

// NewSyncService creates a sync service. It panics when a required
// dependency is missing, since that is a wiring bug.
func NewSyncService(cfg SyncServiceConfig) *SyncService {
	if cfg.Source == nil || cfg.Daily == nil || cfg.Recent == nil {
		panic("app: SyncService requires Source, Daily and Recent")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	logger = logger.With(slog.String("component", "app.SyncService"))

	return &SyncService{
		source: cfg.Source,
		daily:  cfg.Daily,
		recent: cfg.Recent,
		exec:   NewExecutor(logger),
		now:    now,
		loc:    loc,
		logger: logger,
	}
}

// Today returns the local calendar date the daily cache is scoped to.
func (s *SyncService) Today() domain.CalendarDate {
	return domain.DateOf(s.now().In(s.loc))
}

// FetchToday returns today's quote, from the remote source when reachable
// and from a same-day cache entry otherwise. It fails with a *domain.SyncError
// only when neither has one.
func (s *SyncService) FetchToday(ctx context.Context) (*domain.Quote, error) {
	q, _, err := s.SyncToday(ctx)
	return q, err
}

// FetchRecent returns the recent quotes, fresh and merged into the cache when
// the remote source is reachable and the cached list otherwise. It fails with
// a *domain.SyncError only when the remote read fails and the cache is empty.
func (s *SyncService) FetchRecent(ctx context.Context) ([]*domain.Quote, error) {
	quotes, _, err := s.SyncRecent(ctx)
	return quotes, err
}

type todayResult struct {
	quote   *domain.Quote
	outcome Outcome
}

// SyncToday is FetchToday that also reports the terminal state.
func (s *SyncService) SyncToday(ctx context.Context) (*domain.Quote, Outcome, error) {
	v, err, shared := s.group.Do(OpFetchToday, func() (any, error) {
		q, outcome, err := s.syncToday(context.WithoutCancel(ctx))
		return todayResult{quote: q, outcome: outcome}, err
	})

	res := v.(todayResult)
	if shared {
		logging.FromContextOr(ctx, s.logger).DebugContext(ctx, "joined in-flight sync", slog.String("operation", OpFetchToday))
	}

	return res.quote, res.outcome, err
}

type recentResult struct {
	quotes  []*domain.Quote
	outcome Outcome
}

// SyncRecent is FetchRecent that also reports the terminal state.
func (s *SyncService) SyncRecent(ctx context.Context) ([]*domain.Quote, Outcome, error) {
	v, err, shared := s.group.Do(OpFetchRecent, func() (any, error) {
		quotes, outcome, err := s.syncRecent(context.WithoutCancel(ctx))
		return recentResult{quotes: quotes, outcome: outcome}, err
	})

	res := v.(recentResult)
	if shared {
		logging.FromContextOr(ctx, s.logger).DebugContext(ctx, "joined in-flight sync", slog.String("operation", OpFetchRecent))
	}

	// Callers that shared a flight must not share a backing array.
	return slices.Clone(res.quotes), res.outcome, err
}

func (s *SyncService) syncToday(ctx context.Context) (*domain.Quote, Outcome, error) {
	logger := logging.FromContextOr(ctx, s.logger)
	today := s.Today()

	q, err := Execute(ctx, s.exec, Operation[*domain.Quote, *domain.Quote, *domain.Quote]{
		Name:   OpFetchToday,
		Fetch:  s.source.FetchToday,
		Verify: verifyQuote,
		Persist: func(ctx context.Context, q *domain.Quote) []cache.PersistResult {
			_, recent := s.recent.MergeSingleAndStore(ctx, q)
			return []cache.PersistResult{s.daily.Store(ctx, q, today), recent}
		},
	})
	if err == nil {
		return q, s.record(OpFetchToday, OutcomeSucceeded), nil
	}

	cause := remoteCause(err)

	cached, ok := s.daily.RetrieveIfFresh(ctx, today)
	if ok {
		logger.InfoContext(ctx, "serving cached quote of the day",
			slog.String("quote_id", cached.ID),
			slog.String("cause", cause.Message),
		)

		return cached, s.record(OpFetchToday, OutcomeFallenBack), nil
	}

	logger.ErrorContext(ctx, "no quote of the day available",
		slog.String("date", today.String()),
		slog.Any("error", cause),
	)

	return nil, s.record(OpFetchToday, OutcomeFailed), domain.NewSyncError(OpFetchToday, cause)
}

func (s *SyncService) syncRecent(ctx context.Context) ([]*domain.Quote, Outcome, error) {
	logger := logging.FromContextOr(ctx, s.logger)

	var merged []*domain.Quote

	quotes, err := Execute(ctx, s.exec, Operation[[]*domain.Quote, []*domain.Quote, []*domain.Quote]{
		Name:   OpFetchRecent,
		Fetch:  s.source.FetchRecent,
		Verify: verifyQuotes,
		Persist: func(ctx context.Context, quotes []*domain.Quote) []cache.PersistResult {
			var r cache.PersistResult
			merged, r = s.recent.MergeAndStore(ctx, quotes)
			return []cache.PersistResult{r}
		},
		Respond: func(context.Context, []*domain.Quote) ([]*domain.Quote, error) {
			return SortNewestFirst(merged), nil
		},
	})
	if err == nil {
		return quotes, s.record(OpFetchRecent, OutcomeSucceeded), nil
	}

	cause := remoteCause(err)

	cached := s.recent.ReadAll(ctx)
	if len(cached) > 0 {
		logger.InfoContext(ctx, "serving cached recent quotes",
			slog.Int("count", len(cached)),
			slog.String("cause", cause.Message),
		)

		return cached, s.record(OpFetchRecent, OutcomeFallenBack), nil
	}

	logger.ErrorContext(ctx, "no recent quotes available", slog.Any("error", cause))

	return nil, s.record(OpFetchRecent, OutcomeFailed), domain.NewSyncError(OpFetchRecent, cause)
}

func (s *SyncService) record(op string, outcome Outcome) Outcome {
	syncOutcomes.WithLabelValues(op, outcome.String()).Inc()
	return outcome
}

// SortNewestFirst returns a copy of quotes ordered by CreatedAt descending.
// Quotes with equal timestamps keep their relative order.
func SortNewestFirst(quotes []*domain.Quote) []*domain.Quote {
	out := slices.Clone(quotes)
	slices.SortStableFunc(out, func(a, b *domain.Quote) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return out
}

func verifyQuote(_ context.Context, q *domain.Quote) (*domain.Quote, error) {
	if err := q.Validate(); err != nil {
		return nil, domain.NewRemoteError("invalid quote in response", err)
	}

	return q, nil
}

func verifyQuotes(ctx context.Context, quotes []*domain.Quote) ([]*domain.Quote, error) {
	for _, q := range quotes {
		if _, err := verifyQuote(ctx, q); err != nil {
			return nil, err
		}
	}

	return quotes, nil
}

// remoteCause digs the remote failure out of a pipeline error.
func remoteCause(err error) *domain.RemoteError {
	var execErr *ExecutionError
	if errors.As(err, &execErr) && execErr.Cause != nil {
		return domain.AsRemoteError(execErr.Cause)
	}

	return domain.AsRemoteError(err)
}
