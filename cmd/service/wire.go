package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/shrutam/internal/adapters/clients"
	"github.com/jsamuelsen/shrutam/internal/adapters/clients/acl"
	"github.com/jsamuelsen/shrutam/internal/adapters/store"
	"github.com/jsamuelsen/shrutam/internal/app"
	"github.com/jsamuelsen/shrutam/internal/cache"
	"github.com/jsamuelsen/shrutam/internal/platform/config"
	"github.com/jsamuelsen/shrutam/internal/platform/telemetry"
	"github.com/jsamuelsen/shrutam/internal/ports"
)

// components is everything the HTTP layer and the refresher need.
type components struct {
	sync      *app.SyncService
	recent    *cache.RecentQuoteCache
	refresher *app.Refresher
	health    ports.HealthRegistry

	closers []func(context.Context) error
	logger  *slog.Logger
}

// close releases resources in reverse order of acquisition.
func (a *components) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Error("release failed", slog.Any("error", err))
		}
	}
}

// assemble opens telemetry and the store, then builds the sync core on top
// of the quote API client. On error anything already opened is released.
func assemble(ctx context.Context, cfg *config.Config, logger *slog.Logger) (a *components, err error) {
	a = &components{logger: logger}
	defer func() {
		if err != nil {
			a.close(context.WithoutCancel(ctx))
		}
	}()

	tel, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	a.closers = append(a.closers, tel.Shutdown)

	kv, err := store.New(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return kv.Close() })

	api, err := clients.New(&clients.Config{
		BaseURL:     cfg.Services.Quote.BaseURL,
		ServiceName: cfg.Services.Quote.Name,
		Timeout:     cfg.Client.Timeout,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("quote api client: %w", err)
	}

	source := acl.NewQuoteClient(acl.QuoteClientConfig{Client: api, Logger: logger})

	// The store is critical; a failing quote API only degrades readiness.
	a.health = ports.NewHealthRegistry()
	for _, checker := range []ports.HealthChecker{kv, source} {
		if err := a.health.Register(checker); err != nil {
			return nil, fmt.Errorf("health check %s: %w", checker.Name(), err)
		}
	}

	a.recent = cache.NewRecentQuoteCache(kv, cfg.Cache.RecentCapacity, logger)
	a.sync = app.NewSyncService(app.SyncServiceConfig{
		Source: source,
		Daily:  cache.NewDailyQuoteCache(kv, logger),
		Recent: a.recent,
		Logger: logger,
	})
	a.refresher = app.NewRefresher(app.RefresherConfig{
		Sync:   a.sync,
		Hour:   cfg.Refresh.Hour,
		Minute: cfg.Refresh.Minute,
		Logger: logger,
	})

	return a, nil
}
