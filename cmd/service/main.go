// Command service runs the quote sync API: it serves today's quote and the
// recent history, falling back to the offline cache when the quote API is
// unreachable.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jsamuelsen/shrutam/internal/adapters/http"
	"github.com/jsamuelsen/shrutam/internal/adapters/http/handlers"
	"github.com/jsamuelsen/shrutam/internal/platform/config"
	"github.com/jsamuelsen/shrutam/internal/platform/logging"
)

// Stamped with -ldflags "-X main.Version=... -X main.Commit=... -X main.BuildTime=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "shrutam: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("store", cfg.Store.Driver),
	)

	app, err := assemble(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.close(context.WithoutCancel(ctx))

	if cfg.Refresh.Enabled {
		go func() {
			if err := app.refresher.Run(ctx); err != nil {
				logger.Error("refresher stopped", slog.Any("error", err))
			}
		}()
	}

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:         logger,
		ServiceName:    cfg.App.Name,
		HealthHandler:  handlers.NewHealthHandler(app.health, handlers.NewBuildInfo(Version, Commit, BuildTime)),
		QuoteHandler:   handlers.NewQuoteHandler(app.sync, app.recent),
		RefreshHandler: handlers.NewRefreshHandler(app.refresher),
		Timeout:        http.DefaultRequestTimeout,
	})

	return serve(ctx, logger, server, cfg.Server.ShutdownTimeout)
}

// loadConfig reads the profile named by APP_ENVIRONMENT, "local" by default.
func loadConfig() (*config.Config, error) {
	profile := os.Getenv(config.EnvPrefix + "ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	f := cfg.Log.File

	return logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    f.Enabled,
			Path:       f.Path,
			MaxSizeMB:  f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAgeDays: f.MaxAgeDays,
			Compress:   f.Compress,
		},
	})
}

// serve runs server until a signal arrives or it fails, then drains
// in-flight requests within drain.
func serve(ctx context.Context, logger *slog.Logger, server *http.Server, drain time.Duration) error {
	failed := server.Start()

	select {
	case err, ok := <-failed:
		if ok && err != nil {
			return fmt.Errorf("server: %w", err)
		}

		return errors.New("server stopped unexpectedly")
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("drain", drain))

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drain)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
