package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/shrutam/internal/adapters/http/middleware"
	"github.com/jsamuelsen/shrutam/internal/platform/config"
	"github.com/jsamuelsen/shrutam/internal/platform/logging"
)

const (
	scope = "github.com/jsamuelsen/shrutam/internal/adapters/clients"

	// defaultTimeout applies when Config.Timeout is unset.
	defaultTimeout = 10 * time.Second
)

// Config configures a Client.
type Config struct {
	// BaseURL is prefixed to every request path, e.g. "http://host/api".
	BaseURL string

	// ServiceName names the downstream in logs, spans and metrics.
	ServiceName string

	// Timeout bounds each attempt including reading response headers.
	Timeout time.Duration

	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	Logger *slog.Logger
}

// Client calls one downstream HTTP service. Each request is attempted once;
// fallback policy belongs to the caller. Calls pass through a circuit
// breaker and are traced, measured and logged.
type Client struct {
	http        *http.Client
	baseURL     string
	serviceName string
	logger      *slog.Logger
	breaker     *CircuitBreaker
	tracer      trace.Tracer
	inst        instruments
}

type instruments struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
}

func newInstruments() (instruments, error) {
	meter := otel.Meter(scope)

	duration, err := meter.Float64Histogram("http.client.request.duration",
		metric.WithDescription("Duration of HTTP client requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return instruments{}, fmt.Errorf("creating duration metric: %w", err)
	}

	total, err := meter.Int64Counter("http.client.request.total",
		metric.WithDescription("Total number of HTTP client requests"),
	)
	if err != nil {
		return instruments{}, fmt.Errorf("creating request counter: %w", err)
	}

	return instruments{duration: duration, total: total}, nil
}

// New builds a Client. ServiceName is required.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(
		slog.String("component", "clients.Client"),
		slog.String("downstream", cfg.ServiceName),
	)

	inst, err := newInstruments()
	if err != nil {
		return nil, err
	}

	breaker := NewCircuitBreaker(cfg.ServiceName, CircuitBreakerConfig{
		MaxFailures:   cfg.Circuit.MaxFailures,
		Timeout:       cfg.Circuit.Timeout,
		HalfOpenLimit: cfg.Circuit.HalfOpenLimit,
	}, func(from, to State) {
		logger.Warn("circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	return &Client{
		http:        &http.Client{Timeout: timeout, Transport: newTransport(cfg.Transport)},
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		serviceName: cfg.ServiceName,
		logger:      logger,
		breaker:     breaker,
		tracer:      otel.Tracer(scope),
		inst:        inst,
	}, nil
}

// Get issues a GET for path, which is resolved against the base URL.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(path), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	return c.Do(ctx, req)
}

// Do sends req once. Responses of any status are returned to the caller;
// only 5xx responses and transport failures count against the breaker.
// Transport failures are wrapped in ErrTransport, and a refused call
// returns ErrCircuitOpen without touching the network.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	log := logging.FromContext(ctx).With(
		slog.String("downstream", c.serviceName),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	forwardIDs(ctx, req)

	ctx, span := c.tracer.Start(ctx, "HTTP "+req.Method+" "+c.serviceName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.String()),
			attribute.String("peer.service", c.serviceName),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.http.Do(req.WithContext(ctx))
	})
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, ErrCircuitOpen):
		span.SetStatus(codes.Error, err.Error())
		c.record(ctx, req.Method, 0, elapsed, "circuit_open")
		log.Warn("request blocked by circuit breaker")

		return nil, err

	case err != nil:
		span.SetStatus(codes.Error, err.Error())
		c.record(ctx, req.Method, 0, elapsed, failureResult(err))
		log.Warn("request failed", slog.Duration("duration", elapsed), slog.Any("error", err))

		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	code := resp.StatusCode

	span.SetAttributes(attribute.Int("http.status_code", code))
	if code >= http.StatusBadRequest {
		span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(code))
	}

	c.record(ctx, req.Method, code, elapsed, strconv.Itoa(code/100)+"xx")
	log.Debug("request completed", slog.Int("status", code), slog.Duration("duration", elapsed))

	return resp, nil
}

// CircuitState returns the breaker's current state.
func (c *Client) CircuitState() State {
	return c.breaker.State()
}

// CircuitSnapshot returns a point-in-time view of the breaker.
func (c *Client) CircuitSnapshot() Snapshot {
	return c.breaker.Snapshot()
}

// ServiceName returns the downstream service name.
func (c *Client) ServiceName() string {
	return c.serviceName
}

func (c *Client) resolve(path string) string {
	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}

func (c *Client) record(ctx context.Context, method string, status int, elapsed time.Duration, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", c.serviceName),
		attribute.String("result", result),
	}

	if status > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", status))
	}

	set := metric.WithAttributes(attrs...)
	c.inst.duration.Record(ctx, elapsed.Seconds(), set)
	c.inst.total.Add(ctx, 1, set)
}

// forwardIDs copies the inbound request and correlation IDs onto req.
func forwardIDs(ctx context.Context, req *http.Request) {
	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderRequestID, id)
	}

	if id := middleware.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderCorrelationID, id)
	}
}

func failureResult(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "context_canceled"
	case IsTimeout(err):
		return "timeout"
	default:
		return "error"
	}
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
