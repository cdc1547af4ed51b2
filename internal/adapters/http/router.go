package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/shrutam/internal/adapters/http/handlers"
	"github.com/jsamuelsen/shrutam/internal/adapters/http/middleware"
	"github.com/jsamuelsen/shrutam/internal/platform/telemetry"
)

// DefaultRequestTimeout is the deadline on /api/v1 requests.
const DefaultRequestTimeout = 30 * time.Second

// opsPrefix groups probes, build info, metrics and the manual refresh.
// Requests under it are not access-logged.
const opsPrefix = "/-"

// RouterConfig wires handlers into the engine. Nil handlers leave their
// routes unmounted.
type RouterConfig struct {
	Logger      *slog.Logger
	ServiceName string

	HealthHandler  *handlers.HealthHandler
	QuoteHandler   *handlers.QuoteHandler
	RefreshHandler *handlers.RefreshHandler

	Timeout time.Duration
}

// SetupRouter installs the middleware chain and mounts the routes.
//
// The chain runs outermost first: panic recovery, request logger seeding,
// request and correlation IDs, tracing and metrics, then access logging.
// The request deadline applies under /api/v1 only.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	chain := []gin.HandlerFunc{
		middleware.Recovery(),
		middleware.ContextLogger(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	}
	chain = append(chain, telemetry.Middleware(cfg.ServiceName)...)
	chain = append(chain, middleware.Logging(cfg.Logger, opsPrefix+"/"))

	engine.Use(chain...)

	ops := engine.Group(opsPrefix)
	if h := cfg.HealthHandler; h != nil {
		h.RegisterHealthRoutes(ops)
	}

	if h := cfg.RefreshHandler; h != nil {
		h.RegisterRefreshRoutes(ops)
	}

	api := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		api.Use(middleware.Timeout(cfg.Timeout))
	}

	if h := cfg.QuoteHandler; h != nil {
		h.RegisterQuoteRoutes(api)
	}
}
