package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/shrutam/internal/platform/logging"
)

// Timeout puts a deadline of d on the request context. The handler keeps
// running on the request goroutine, so one that ignores the deadline still
// finishes; the overrun is logged at WARN.
//
// Quote fetches detach from this deadline, so a slow quote API still
// refreshes the offline cache after the caller gives up.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return
		}

		logging.FromContext(ctx).Warn("request overran its deadline",
			slog.String("method", c.Request.Method),
			slog.String("route", c.FullPath()),
			slog.Duration("deadline", d),
			slog.Int("status", c.Writer.Status()),
		)
	}
}
