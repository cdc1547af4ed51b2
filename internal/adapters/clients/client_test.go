package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/shrutam/internal/adapters/http/middleware"
	"github.com/jsamuelsen/shrutam/internal/platform/config"
)

// quoteAPI is an httptest backend that counts the calls it receives.
type quoteAPI struct {
	*httptest.Server
	hits atomic.Int32
}

func startQuoteAPI(t *testing.T, h http.HandlerFunc) *quoteAPI {
	t.Helper()

	api := &quoteAPI{}
	api.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.hits.Add(1)
		h(w, r)
	}))
	t.Cleanup(api.Close)

	return api
}

func status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(code) }
}

// clientFor builds a Client against baseURL; tweak adjusts the config first.
func clientFor(t *testing.T, baseURL string, tweak ...func(*Config)) *Client {
	t.Helper()

	cfg := &Config{
		BaseURL:     baseURL,
		ServiceName: "quote-api",
		Timeout:     5 * time.Second,
		Circuit:     config.CircuitBreakerConfig{MaxFailures: 5, Timeout: time.Second, HalfOpenLimit: 2},
	}
	for _, fn := range tweak {
		fn(cfg)
	}

	c, err := New(cfg)
	require.NoError(t, err)

	return c
}

func drain(t *testing.T, resp *http.Response) {
	t.Helper()
	require.NoError(t, resp.Body.Close())
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	require.ErrorContains(t, err, "config is required")

	_, err = New(&Config{BaseURL: "http://localhost"})
	require.ErrorContains(t, err, "service name is required")
}

func TestNew_Defaults(t *testing.T) {
	c := clientFor(t, "http://localhost", func(cfg *Config) { cfg.Timeout = 0 })
	assert.Equal(t, defaultTimeout, c.http.Timeout)
	assert.Equal(t, "quote-api", c.ServiceName())

	tr := newTransport(config.TransportConfig{MaxIdleConns: 7})
	assert.Equal(t, 7, tr.MaxIdleConns)
	assert.Equal(t, transportMaxIdleConnsPerHost, tr.MaxIdleConnsPerHost)
	assert.Equal(t, transportIdleConnTimeout, tr.IdleConnTimeout)
}

func TestClient_ForwardsIDs(t *testing.T) {
	var got http.Header

	api := startQuoteAPI(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	})

	ctx := middleware.ContextWithCorrelationID(
		middleware.ContextWithRequestID(context.Background(), "req-1"),
		"corr-1",
	)

	resp, err := clientFor(t, api.URL).Get(ctx, "/quote/today")
	require.NoError(t, err)
	drain(t, resp)

	assert.Equal(t, "req-1", got.Get(middleware.HeaderRequestID))
	assert.Equal(t, "corr-1", got.Get(middleware.HeaderCorrelationID))
	assert.Equal(t, "application/json", got.Get("Accept"))
}

func TestClient_NoRetry(t *testing.T) {
	for _, code := range []int{http.StatusInternalServerError, http.StatusNotFound} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			api := startQuoteAPI(t, status(code))

			resp, err := clientFor(t, api.URL).Get(context.Background(), "/quote/today")
			require.NoError(t, err, "status responses reach the caller")
			drain(t, resp)

			assert.Equal(t, code, resp.StatusCode)
			assert.Equal(t, int32(1), api.hits.Load())
		})
	}
}

func TestClient_BreakerTripsOnServerErrors(t *testing.T) {
	api := startQuoteAPI(t, status(http.StatusServiceUnavailable))
	c := clientFor(t, api.URL, func(cfg *Config) { cfg.Circuit.MaxFailures = 2 })

	for range 2 {
		resp, err := c.Get(context.Background(), "/quote/recent")
		require.NoError(t, err)
		drain(t, resp)
	}

	require.Equal(t, StateOpen, c.CircuitState())
	assert.False(t, c.CircuitSnapshot().RetryAt.IsZero())

	_, err := c.Get(context.Background(), "/quote/recent")
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), api.hits.Load(), "open circuit short-circuits")
}

func TestClient_NotFoundKeepsBreakerClosed(t *testing.T) {
	api := startQuoteAPI(t, status(http.StatusNotFound))
	c := clientFor(t, api.URL, func(cfg *Config) { cfg.Circuit.MaxFailures = 1 })

	for range 3 {
		resp, err := c.Get(context.Background(), "/quote/today")
		require.NoError(t, err)
		drain(t, resp)
	}

	assert.Equal(t, StateClosed, c.CircuitState())
}

func TestClient_TransportFailures(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		api := startQuoteAPI(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
		t.Cleanup(func() { close(release) })

		c := clientFor(t, api.URL, func(cfg *Config) { cfg.Timeout = 50 * time.Millisecond })

		_, err := c.Get(context.Background(), "/quote/today")
		require.ErrorIs(t, err, ErrTransport)
		assert.True(t, IsTimeout(err))
	})

	t.Run("refused", func(t *testing.T) {
		dead := httptest.NewServer(http.NotFoundHandler())
		dead.Close()

		_, err := clientFor(t, dead.URL).Get(context.Background(), "/quote/today")
		require.ErrorIs(t, err, ErrTransport)
		assert.False(t, IsTimeout(err))
	})

	t.Run("caller deadline", func(t *testing.T) {
		api := startQuoteAPI(t, func(_ http.ResponseWriter, r *http.Request) { <-r.Context().Done() })

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := clientFor(t, api.URL).Get(ctx, "/quote/today")
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestClient_Resolve(t *testing.T) {
	for _, base := range []string{"https://quotes.test", "https://quotes.test/"} {
		c := clientFor(t, base)

		assert.Equal(t, "https://quotes.test/quote/today", c.resolve("/quote/today"), base)
		assert.Equal(t, "https://quotes.test/quote/today", c.resolve("quote/today"), base)
	}
}

type fakeNetErr bool

func (e fakeNetErr) Error() string   { return "net error" }
func (e fakeNetErr) Timeout() bool   { return bool(e) }
func (e fakeNetErr) Temporary() bool { return false }

func TestFailureResult(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"canceled":    {context.Canceled, "context_canceled"},
		"deadline":    {context.DeadlineExceeded, "timeout"},
		"net timeout": {fakeNetErr(true), "timeout"},
		"net error":   {fakeNetErr(false), "error"},
		"other":       {errors.New("boom"), "error"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, failureResult(tc.err))
		})
	}
}
