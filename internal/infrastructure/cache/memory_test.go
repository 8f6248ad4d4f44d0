package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealfinder/backend/internal/domain"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value []byte
		ttl   time.Duration
	}{
		{"store and retrieve text", "test-key-1", []byte("test-value"), time.Minute},
		{"store and retrieve json", "test-key-2", []byte(`[{"title":"Case","score":0.5}]`), time.Minute},
		{"store empty payload", "test-key-3", []byte{}, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, cache.Set(ctx, tt.key, tt.value, tt.ttl))

			got, err := cache.Get(ctx, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", []byte("v"), time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	_, err := cache.Get(ctx, "short")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	exists, err := cache.Exists(ctx, "short")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()

	_, err := cache.Get(context.Background(), "non-existent-key")
	assert.True(t, errors.Is(err, domain.ErrCacheMiss))
}

func TestMemoryCache_StoresCopies(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	value := []byte("original")
	require.NoError(t, cache.Set(ctx, "k", value, time.Minute))
	value[0] = 'X'

	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))

	got[0] = 'Y'
	again, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "original", string(again))
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "delete-test", []byte("value"), time.Minute))
	require.NoError(t, cache.Delete(ctx, "delete-test"))

	_, err := cache.Get(ctx, "delete-test")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestMemoryCache_Exists(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	exists, err := cache.Exists(ctx, "exists-test")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, cache.Set(ctx, "exists-test", []byte("value"), time.Minute))

	exists, err = cache.Exists(ctx, "exists-test")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryCache_SizeAndClear(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	assert.Equal(t, 0, cache.Size())

	for i := 0; i < 5; i++ {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Minute))
	}
	assert.Equal(t, 5, cache.Size())

	require.NoError(t, cache.Delete(ctx, "k0"))
	assert.Equal(t, 4, cache.Size())

	cache.Clear()
	assert.Equal(t, 0, cache.Size())
}

func TestMemoryCache_CleanupRemovesExpired(t *testing.T) {
	cache := newMemoryCache(5 * time.Millisecond)
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "gone", []byte("v"), time.Millisecond))
	require.NoError(t, cache.Set(ctx, "kept", []byte("v"), time.Hour))

	assert.Eventually(t, func() bool { return cache.Size() == 1 }, time.Second, 5*time.Millisecond)

	exists, err := cache.Exists(ctx, "kept")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	cache := NewMemoryCache()
	assert.NoError(t, cache.Close())
	assert.NoError(t, cache.Close())
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", id)
			if err := cache.Set(ctx, key, []byte("v"), time.Minute); err != nil {
				t.Errorf("Concurrent Set() error = %v", err)
			}
			if _, err := cache.Get(ctx, key); err != nil {
				t.Errorf("Concurrent Get() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, cache.Size())
}
