package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*miniredis.Miniredis, *IdempotencyCache) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	return s, NewIdempotencyCache(client)
}

func TestIdempotencyCache_SetAndGet(t *testing.T) {
	_, cache := newTestCache(t)
	ctx := context.Background()

	key := "deposit:w1:req-001"
	value := []byte(`{"id":7,"kind":"DEPOSIT","amount":"100"}`)

	// Get before set => nil
	result, err := cache.Get(ctx, key)
	assert.NoError(t, err)
	assert.Nil(t, result)

	err = cache.Set(ctx, key, value, 24*time.Hour)
	require.NoError(t, err)

	result, err = cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, value, result)
}

func TestIdempotencyCache_TTLExpiry(t *testing.T) {
	s, cache := newTestCache(t)
	ctx := context.Background()

	key := "withdraw:w1:req-002"
	value := []byte(`{"id":8}`)

	err := cache.Set(ctx, key, value, 1*time.Second)
	require.NoError(t, err)

	// Fast-forward time in miniredis
	s.FastForward(2 * time.Second)

	result, err := cache.Get(ctx, key)
	assert.NoError(t, err)
	assert.Nil(t, result, "expired key should return nil")
}

func TestIdempotencyCache_KeysAreNamespaced(t *testing.T) {
	s, cache := newTestCache(t)
	ctx := context.Background()

	err := cache.Set(ctx, "transfer:alice:req-003", []byte(`{"id":5}`), time.Hour)
	require.NoError(t, err)

	assert.True(t, s.Exists("ledger:idem:transfer:alice:req-003"))
	assert.False(t, s.Exists("transfer:alice:req-003"))
}

func TestHealthCheck_Ping(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	hc := NewHealthCheck(client)

	assert.NoError(t, hc.Ping(context.Background()))
	assert.Equal(t, "redis", hc.Name())

	s.Close()
	assert.Error(t, hc.Ping(context.Background()))
}
