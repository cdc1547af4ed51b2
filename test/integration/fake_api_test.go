//go:build integration

package integration

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/shrutam/internal/adapters/clients"
	"github.com/jsamuelsen/shrutam/internal/adapters/clients/acl"
	"github.com/jsamuelsen/shrutam/internal/app"
	"github.com/jsamuelsen/shrutam/internal/cache"
	"github.com/jsamuelsen/shrutam/internal/domain"
	"github.com/jsamuelsen/shrutam/internal/platform/config"
	"github.com/jsamuelsen/shrutam/internal/ports"
)

// wireQuote is the quote shape the backend sends.
type wireQuote struct {
	ID             string `json:"id"`
	Shlok          string `json:"shlok"`
	Source         string `json:"source,omitempty"`
	Category       string `json:"category,omitempty"`
	CreatedAt      string `json:"created_at"`
	MeaningHindi   string `json:"meaning_hindi,omitempty"`
	MeaningEnglish string `json:"meaning_english,omitempty"`
}

func newWireQuote(id string, day int) wireQuote {
	return wireQuote{
		ID:             id,
		Shlok:          "shlok " + id,
		Source:         "Bhagavad Gita",
		Category:       "Karma",
		CreatedAt:      time.Date(2024, time.March, day, 6, 0, 0, 0, time.UTC).Format(time.RFC3339),
		MeaningEnglish: "meaning " + id,
	}
}

// fakeQuoteAPI is an in-process quote backend that can be taken offline.
type fakeQuoteAPI struct {
	*httptest.Server

	mu     sync.Mutex
	today  *wireQuote
	recent []wireQuote
	down   bool
	delay  time.Duration

	todayHits  atomic.Int32
	recentHits atomic.Int32
}

func newFakeQuoteAPI(t *testing.T) *fakeQuoteAPI {
	t.Helper()

	api := &fakeQuoteAPI{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/quote/today", func(w http.ResponseWriter, _ *http.Request) {
		api.todayHits.Add(1)
		api.serve(w, func() (any, bool) {
			if api.today == nil {
				return nil, false
			}
			return api.today, true
		})
	})
	mux.HandleFunc("GET /api/quote/recent", func(w http.ResponseWriter, _ *http.Request) {
		api.recentHits.Add(1)
		api.serve(w, func() (any, bool) {
			return map[string]any{"quotes": api.recent, "count": len(api.recent)}, true
		})
	})

	api.Server = httptest.NewServer(mux)
	t.Cleanup(api.Close)

	return api
}

func (a *fakeQuoteAPI) serve(w http.ResponseWriter, payload func() (any, bool)) {
	a.mu.Lock()
	down, delay := a.down, a.delay
	data, ok := payload()
	a.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	w.Header().Set("Content-Type", "application/json")

	switch {
	case down:
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"success":false,"message":"Internal Server Error"}`)
	case !ok:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"success":false,"message":"No quote found for today"}`)
	default:
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
	}
}

func (a *fakeQuoteAPI) SetToday(q wireQuote) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.today = &q
}

func (a *fakeQuoteAPI) SetRecent(qs ...wireQuote) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recent = qs
}

func (a *fakeQuoteAPI) SetDown(down bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.down = down
}

func (a *fakeQuoteAPI) SetDelay(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.delay = d
}

// BaseURL is the API root the quote client is configured with.
func (a *fakeQuoteAPI) BaseURL() string {
	return a.URL + "/api"
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newQuoteClient(t *testing.T, baseURL string, timeout time.Duration) *acl.QuoteClient {
	t.Helper()

	client, err := clients.New(&clients.Config{
		ServiceName: "quote-service",
		BaseURL:     baseURL,
		Timeout:     timeout,
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   100,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
		Logger: discardLogger(),
	})
	require.NoError(t, err)

	return acl.NewQuoteClient(acl.QuoteClientConfig{Client: client, Logger: discardLogger()})
}

// stack is the sync core wired over a real quote client and a store.
type stack struct {
	sync   *app.SyncService
	recent *cache.RecentQuoteCache
}

func newStack(source ports.QuoteSource, kv ports.KeyValueStore, now time.Time) *stack {
	logger := discardLogger()
	recent := cache.NewRecentQuoteCache(kv, cache.MaxRecent, logger)

	return &stack{
		recent: recent,
		sync: app.NewSyncService(app.SyncServiceConfig{
			Source:   source,
			Daily:    cache.NewDailyQuoteCache(kv, logger),
			Recent:   recent,
			Logger:   logger,
			Now:      func() time.Time { return now },
			Location: time.UTC,
		}),
	}
}

func quoteIDs(quotes []*domain.Quote) []string {
	out := make([]string, len(quotes))
	for i, q := range quotes {
		out[i] = q.ID
	}

	return out
}
