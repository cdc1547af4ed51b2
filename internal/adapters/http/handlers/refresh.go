package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/shrutam/internal/app"
)

// Refresher runs one prefetch of today's and recent quotes.
type Refresher interface {
	RunOnce(ctx context.Context) app.RefreshReport
}

// RefreshHandler exposes an on-demand prefetch under /-/.
type RefreshHandler struct {
	refresher Refresher
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(refresher Refresher) *RefreshHandler {
	return &RefreshHandler{refresher: refresher}
}

type operationReport struct {
	Outcome string `json:"outcome"`
	Count   int    `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

type refreshResponse struct {
	Date       string          `json:"date"`
	StartedAt  time.Time       `json:"startedAt"`
	DurationMS int64           `json:"durationMs"`
	Today      operationReport `json:"today"`
	Recent     operationReport `json:"recent"`
}

// Refresh handles POST /-/refresh.
// Returns 200 when at least one operation produced data, 503 otherwise.
func (h *RefreshHandler) Refresh(c *gin.Context) {
	report := h.refresher.RunOnce(c.Request.Context())

	resp := refreshResponse{
		Date:       report.Date.String(),
		StartedAt:  report.StartedAt,
		DurationMS: report.Duration.Milliseconds(),
		Today:      newOperationReport(report.Today, 0, report.TodayErr),
		Recent:     newOperationReport(report.Recent, report.RecentCount, report.RecentErr),
	}

	status := http.StatusOK
	if report.TodayErr != nil && report.RecentErr != nil {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, resp)
}

// RegisterRefreshRoutes registers POST /refresh on the given group.
func (h *RefreshHandler) RegisterRefreshRoutes(rg *gin.RouterGroup) {
	rg.POST("/refresh", h.Refresh)
}

func newOperationReport(outcome app.Outcome, count int, err error) operationReport {
	r := operationReport{Outcome: outcome.String(), Count: count}
	if err != nil {
		r.Error = err.Error()
	}

	return r
}
