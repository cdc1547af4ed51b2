package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/shrutam/internal/adapters/http/dto"
	"github.com/jsamuelsen/shrutam/internal/adapters/http/handlers"
	"github.com/jsamuelsen/shrutam/internal/adapters/http/middleware"
	"github.com/jsamuelsen/shrutam/internal/adapters/store"
	"github.com/jsamuelsen/shrutam/internal/app"
	"github.com/jsamuelsen/shrutam/internal/cache"
	"github.com/jsamuelsen/shrutam/internal/domain"
	"github.com/jsamuelsen/shrutam/internal/mocks"
	"github.com/jsamuelsen/shrutam/internal/platform/config"
	"github.com/jsamuelsen/shrutam/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var now = time.Date(2024, time.March, 2, 8, 0, 0, 0, time.UTC)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func quote(id string, day int) *domain.Quote {
	return &domain.Quote{
		ID:          id,
		Text:        "text " + id,
		SourceLabel: "Rigveda",
		Category:    "Wisdom",
		CreatedAt:   time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC),
	}
}

type testAPI struct {
	engine *gin.Engine
	source *mocks.MockQuoteSource
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	logger := discard()
	source := mocks.NewMockQuoteSource(t)
	mem := store.NewMemory()
	recent := cache.NewRecentQuoteCache(mem, cache.MaxRecent, logger)

	svc := app.NewSyncService(app.SyncServiceConfig{
		Source:   source,
		Daily:    cache.NewDailyQuoteCache(mem, logger),
		Recent:   recent,
		Logger:   logger,
		Now:      func() time.Time { return now },
		Location: time.UTC,
	})

	registry := ports.NewHealthRegistry()
	require.NoError(t, registry.Register(mem))

	engine := gin.New()
	SetupRouter(engine, RouterConfig{
		Logger:         logger,
		ServiceName:    "shrutam-test",
		HealthHandler:  handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "abc", "now")),
		QuoteHandler:   handlers.NewQuoteHandler(svc, recent),
		RefreshHandler: handlers.NewRefreshHandler(app.NewRefresher(app.RefresherConfig{Sync: svc, Logger: logger, Location: time.UTC})),
		Timeout:        DefaultRequestTimeout,
	})

	return &testAPI{engine: engine, source: source}
}

func (a *testAPI) do(method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))

	return w
}

func TestRouter_ServesCacheWhenOffline(t *testing.T) {
	api := newTestAPI(t)
	offline := domain.NewRemoteError("network unreachable", nil)

	api.source.EXPECT().FetchToday(mock.Anything).Return(quote("q2", 2), nil).Once()
	api.source.EXPECT().FetchToday(mock.Anything).Return(nil, offline)
	api.source.EXPECT().FetchRecent(mock.Anything).Return(nil, offline)

	w := api.do(http.MethodGet, "/api/v1/quotes/today")
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/api/v1/quotes/today")
	require.Equal(t, http.StatusOK, w.Code, "today's cached quote while offline")

	var today dto.TodayResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &today))
	assert.Equal(t, "q2", today.Quote.ID)

	w = api.do(http.MethodGet, "/api/v1/quotes/recent")
	require.Equal(t, http.StatusOK, w.Code, "recent cache holds today's quote")
	assert.Contains(t, w.Body.String(), `"id":"q2"`)

	w = api.do(http.MethodGet, "/api/v1/quotes/q2/share")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Shared from Shrutam")
}

func TestRouter_NoDataAnywhere(t *testing.T) {
	api := newTestAPI(t)
	api.source.EXPECT().FetchToday(mock.Anything).Return(nil, domain.NewRemoteStatusError("Internal Server Error", 500, nil))

	w := api.do(http.MethodGet, "/api/v1/quotes/today")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}

func TestRouter_Refresh(t *testing.T) {
	api := newTestAPI(t)
	api.source.EXPECT().FetchToday(mock.Anything).Return(quote("q2", 2), nil)
	api.source.EXPECT().FetchRecent(mock.Anything).Return([]*domain.Quote{quote("q2", 2), quote("q1", 1)}, nil)

	w := api.do(http.MethodPost, "/-/refresh")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)
}

func TestRouter_Probes(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/-/live", "/-/ready", "/-/build", "/-/metrics"} {
		w := api.do(http.MethodGet, path)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/v1/unknown").Code)
}

func TestSetupRouter_NilHandlers(t *testing.T) {
	engine := gin.New()
	SetupRouter(engine, RouterConfig{Logger: discard(), ServiceName: "x"})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/live", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func testServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            18080,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		IdleTimeout:     30 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		MaxRequestSize:  16,
	}
}

func TestServer_New(t *testing.T) {
	srv := New(testServerConfig(), discard())

	assert.Equal(t, "127.0.0.1:18080", srv.Addr())
	assert.NotNil(t, srv.Engine())
}

func TestServer_StartShutdown(t *testing.T) {
	cfg := testServerConfig()
	cfg.Port = 0

	srv := New(cfg, discard())
	errCh := srv.Start()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + srv.Addr() + "/missing")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()

		return resp.StatusCode == http.StatusNotFound
	}, 2*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, srv.Shutdown(ctx))

	_, open := <-errCh
	assert.False(t, open)
	assert.NotEqual(t, "127.0.0.1:0", srv.Addr(), "reports the bound port")
}

func TestServer_StartReportsBindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	cfg := testServerConfig()
	cfg.Port = ln.Addr().(*net.TCPAddr).Port

	err = <-New(cfg, discard()).Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}

func TestLimitBody(t *testing.T) {
	srv := New(testServerConfig(), discard())

	var readErr error
	srv.Engine().POST("/echo", func(c *gin.Context) {
		_, readErr = io.ReadAll(c.Request.Body)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64))))

	require.Error(t, readErr)
	assert.Contains(t, readErr.Error(), "request body too large")
}
