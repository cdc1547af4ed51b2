package telemetry

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/shrutam/internal/platform/logging"
)

const meterScope = "github.com/jsamuelsen/shrutam/telemetry"

// HeaderTraceID returns the trace ID to the caller so support requests can
// quote it.
const HeaderTraceID = "X-Trace-ID"

// Metrics are the inbound HTTP instruments.
type Metrics struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
	inFlight metric.Int64UpDownCounter
}

// NewMetrics registers the inbound HTTP instruments on the global meter.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterScope)

	var (
		m   Metrics
		err error
	)

	if m.duration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("http.server.request.duration: %w", err)
	}

	if m.total, err = meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, fmt.Errorf("http.server.request.total: %w", err)
	}

	if m.inFlight, err = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
	); err != nil {
		return nil, fmt.Errorf("http.server.active_requests: %w", err)
	}

	return &m, nil
}

// Middleware returns the request tracing chain: otelgin opens the server
// span, then the second handler tags the response and request logger with
// the trace ID and records metrics. Use with engine.Use(Middleware(name)...).
func Middleware(serviceName string) []gin.HandlerFunc {
	m, err := NewMetrics()
	if err != nil {
		otel.Handle(err)
	}

	return []gin.HandlerFunc{otelgin.Middleware(serviceName), m.observe}
}

// observe is safe on a nil *Metrics; it then only propagates the trace ID.
func (m *Metrics) observe(c *gin.Context) {
	start := time.Now()
	ctx := c.Request.Context()

	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		id := sc.TraceID().String()
		c.Header(HeaderTraceID, id)

		ctx = logging.WithTraceID(ctx, id)
		c.Request = c.Request.WithContext(ctx)
	}

	if m == nil {
		c.Next()
		return
	}

	base := []attribute.KeyValue{
		attribute.String("http.method", c.Request.Method),
		attribute.String("http.route", c.FullPath()),
	}

	m.inFlight.Add(ctx, 1, metric.WithAttributes(base...))
	defer m.inFlight.Add(ctx, -1, metric.WithAttributes(base...))

	c.Next()

	done := metric.WithAttributes(append(base, attribute.Int("http.status_code", c.Writer.Status()))...)
	m.duration.Record(ctx, time.Since(start).Seconds(), done)
	m.total.Add(ctx, 1, done)
}
