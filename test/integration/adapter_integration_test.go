//go:build integration

package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/shrutam/internal/adapters/store"
	"github.com/jsamuelsen/shrutam/internal/platform/config"
)

// storeConfigs returns one config per durable driver, rooted in dir.
func storeConfigs(dir string) map[string]config.StoreConfig {
	return map[string]config.StoreConfig{
		config.StoreDriverFile:   {Driver: config.StoreDriverFile, Path: filepath.Join(dir, "kv")},
		config.StoreDriverSQLite: {Driver: config.StoreDriverSQLite, Path: filepath.Join(dir, "shrutam.db")},
	}
}

// TestStore_CachesSurviveRestart writes through the sync core, closes the
// store, reopens it and reads with the backend offline.
func TestStore_CachesSurviveRestart(t *testing.T) {
	for driver, cfg := range storeConfigs(t.TempDir()) {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()

			api := newFakeQuoteAPI(t)
			api.SetToday(newWireQuote("q3", 2))
			api.SetRecent(newWireQuote("q2", 1), newWireQuote("q1", 1))

			client := newQuoteClient(t, api.BaseURL(), 2*time.Second)

			kv, err := store.New(ctx, cfg, discardLogger())
			require.NoError(t, err)

			first := newStack(client, kv, march2)
			_, err = first.sync.FetchToday(ctx)
			require.NoError(t, err)
			_, err = first.sync.FetchRecent(ctx)
			require.NoError(t, err)
			require.NoError(t, kv.Close())

			api.SetDown(true)

			kv, err = store.New(ctx, cfg, discardLogger())
			require.NoError(t, err)
			t.Cleanup(func() { _ = kv.Close() })

			require.NoError(t, kv.Check(ctx))

			second := newStack(client, kv, march2.Add(time.Hour))

			today, err := second.sync.FetchToday(ctx)
			require.NoError(t, err)
			assert.Equal(t, "q3", today.ID)
			assert.Equal(t, "meaning q3", today.MeaningSecondary)
			assert.True(t, today.CreatedAt.Equal(time.Date(2024, time.March, 2, 6, 0, 0, 0, time.UTC)))

			recent, err := second.sync.FetchRecent(ctx)
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"q3", "q2", "q1"}, quoteIDs(recent))

			q, ok := second.recent.Find(ctx, "q2")
			require.True(t, ok)
			assert.Equal(t, "shlok q2", q.Text)
		})
	}
}

// TestStore_CorruptBlobReadsAsEmpty overwrites the persisted list with junk
// and checks the next successful read repairs it.
func TestStore_CorruptBlobReadsAsEmpty(t *testing.T) {
	for driver, cfg := range storeConfigs(t.TempDir()) {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()

			kv, err := store.New(ctx, cfg, discardLogger())
			require.NoError(t, err)
			t.Cleanup(func() { _ = kv.Close() })

			require.NoError(t, kv.Set(ctx, "cachedQuotes", []byte("{not json")))

			api := newFakeQuoteAPI(t)
			api.SetDown(true)

			s := newStack(newQuoteClient(t, api.BaseURL(), 2*time.Second), kv, march2)
			assert.Empty(t, s.recent.ReadAll(ctx))

			api.SetDown(false)
			api.SetRecent(newWireQuote("q1", 1))

			recent, err := s.sync.FetchRecent(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"q1"}, quoteIDs(recent))

			raw, err := kv.Get(ctx, "cachedQuotes")
			require.NoError(t, err)
			assert.Contains(t, string(raw), `"id":"q1"`)
		})
	}
}
