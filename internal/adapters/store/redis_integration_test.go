//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startRedis runs a throwaway Redis container and returns its URL.
func startRedis(t *testing.T) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := testcontainers.Run(ctx, "redis:7-alpine",
		testcontainers.WithExposedPorts("6379/tcp"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").WithStartupTimeout(time.Minute),
		),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	endpoint, err := ctr.PortEndpoint(ctx, "6379/tcp", "redis")
	require.NoError(t, err)

	return endpoint + "/0"
}

func TestRedis_Contract(t *testing.T) {
	url := startRedis(t)

	n := 0
	runStoreContract(t, func(t *testing.T) Store {
		n++
		s, err := NewRedis(context.Background(), RedisConfig{
			URL:       url,
			KeyPrefix: "test" + string(rune('a'+n)) + ":",
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestRedis_KeyPrefix(t *testing.T) {
	url := startRedis(t)
	ctx := context.Background()

	a, err := NewRedis(ctx, RedisConfig{URL: url, KeyPrefix: "device-a:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	b, err := NewRedis(ctx, RedisConfig{URL: url, KeyPrefix: "device-b:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	require.NoError(t, a.Set(ctx, "todaysQuote", []byte("a")))

	_, err = b.Get(ctx, "todaysQuote")
	require.Error(t, err)

	raw, err := a.client.Get(ctx, "device-a:todaysQuote").Result()
	require.NoError(t, err)
	assert.Equal(t, "a", raw)

	ttl, err := a.client.TTL(ctx, "device-a:todaysQuote").Result()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl, "values never expire")
}

func TestNewRedis_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := NewRedis(ctx, RedisConfig{URL: "redis://127.0.0.1:1/0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}
