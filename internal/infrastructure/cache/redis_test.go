package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dealfinder/backend/internal/domain"
)

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "not-a-redis-url", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid redis URL")
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisCache(ctx, "redis://127.0.0.1:1/0", "")
	assert.ErrorIs(t, err, domain.ErrCacheUnavailable)
}

// TestRedisCache_Integration runs against a real Redis container.
// Set DEALFINDER_INTEGRATION=1 to enable it.
func TestRedisCache_Integration(t *testing.T) {
	if os.Getenv("DEALFINDER_INTEGRATION") != "1" {
		t.Skip("set DEALFINDER_INTEGRATION=1 to run Redis integration tests")
	}
	ctx := context.Background()

	container, err := tcredis.Run(ctx,
		"redis:7.4-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	redisURL, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	cache, err := NewRedisCache(ctx, redisURL, "test:")
	require.NoError(t, err)
	defer cache.Close()

	t.Run("miss", func(t *testing.T) {
		_, err := cache.Get(ctx, "absent")
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("set get delete", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "k", []byte(`[{"title":"Case"}]`), time.Minute))

		got, err := cache.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, `[{"title":"Case"}]`, string(got))

		exists, err := cache.Exists(ctx, "k")
		require.NoError(t, err)
		assert.True(t, exists)

		require.NoError(t, cache.Delete(ctx, "k"))
		exists, err = cache.Exists(ctx, "k")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("ttl expiry", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "short", []byte("v"), 1*time.Second))
		assert.Eventually(t, func() bool {
			_, err := cache.Get(ctx, "short")
			return err == domain.ErrCacheMiss
		}, 5*time.Second, 100*time.Millisecond)
	})
}
