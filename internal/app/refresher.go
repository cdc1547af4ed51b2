package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jsamuelsen/shrutam/internal/domain"
)

// Refresher prefetches both sync operations once a day so the caches are
// warm before the first reader of the day shows up.
type Refresher struct {
	sync   *SyncService
	hour   int
	minute int
	now    func() time.Time
	after  func(time.Duration) <-chan time.Time
	loc    *time.Location
	logger *slog.Logger
}

// RefresherConfig configures a Refresher.
type RefresherConfig struct {
	Sync *SyncService

	// Hour and Minute are the local time of the daily run.
	Hour   int
	Minute int

	Logger   *slog.Logger
	Location *time.Location
	Now      func() time.Time

	// After replaces time.After in tests.
	After func(time.Duration) <-chan time.Time
}

// RefreshReport summarizes one refresh run.
type RefreshReport struct {
	Date        domain.CalendarDate
	StartedAt   time.Time
	Duration    time.Duration
	Today       Outcome
	TodayErr    error
	Recent      Outcome
	RecentCount int
	RecentErr   error
}

// OK reports whether both operations produced data.
func (r RefreshReport) OK() bool {
	return r.TodayErr == nil && r.RecentErr == nil
}

// NewRefresher creates a refresher for cfg.Sync.
func NewRefresher(cfg RefresherConfig) *Refresher {
	if cfg.Sync == nil {
		panic("app: Refresher requires Sync")
	}

	r := &Refresher{
		sync:   cfg.Sync,
		hour:   cfg.Hour,
		minute: cfg.Minute,
		now:    cfg.Now,
		after:  cfg.After,
		loc:    cfg.Location,
		logger: cfg.Logger,
	}

	if r.now == nil {
		r.now = time.Now
	}

	if r.after == nil {
		r.after = time.After
	}

	if r.loc == nil {
		r.loc = time.Local
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	r.logger = r.logger.With(slog.String("component", "app.Refresher"))

	return r
}

// NextRun returns the first hour:minute in now's location strictly after now.
func NextRun(now time.Time, hour, minute int) time.Time {
	y, m, d := now.Date()

	next := time.Date(y, m, d, hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(y, m, d+1, hour, minute, 0, 0, now.Location())
	}

	return next
}

// Run refreshes once a day until ctx is canceled.
func (r *Refresher) Run(ctx context.Context) error {
	for {
		now := r.now().In(r.loc)
		next := NextRun(now, r.hour, r.minute)

		r.logger.InfoContext(ctx, "next refresh scheduled", slog.Time("at", next))

		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "refresher stopped")
			return nil
		case <-r.after(next.Sub(now)):
			r.RunOnce(ctx)
		}
	}
}

// RunOnce runs both sync operations concurrently and reports how each ended.
func (r *Refresher) RunOnce(ctx context.Context) RefreshReport {
	start := r.now()

	report := RefreshReport{
		Date:      r.sync.Today(),
		StartedAt: start,
	}

	// Failures are carried in the report, never as errors.
	today, recent, _ := bothOf(ctx,
		func(ctx context.Context) (RefreshReport, error) {
			_, outcome, err := r.sync.SyncToday(ctx)
			return RefreshReport{Today: outcome, TodayErr: err}, nil
		},
		func(ctx context.Context) (RefreshReport, error) {
			quotes, outcome, err := r.sync.SyncRecent(ctx)
			return RefreshReport{Recent: outcome, RecentCount: len(quotes), RecentErr: err}, nil
		},
	)

	report.Today, report.TodayErr = today.Today, today.TodayErr
	report.Recent, report.RecentCount, report.RecentErr = recent.Recent, recent.RecentCount, recent.RecentErr
	report.Duration = r.now().Sub(start)

	level := slog.LevelInfo
	if !report.OK() {
		level = slog.LevelWarn
	}

	r.logger.Log(ctx, level, "refresh finished",
		slog.String("date", report.Date.String()),
		slog.String("today", report.Today.String()),
		slog.String("recent", report.Recent.String()),
		slog.Int("recent_count", report.RecentCount),
		slog.Duration("duration", report.Duration),
	)

	return report
}
