package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenugui-collection/tenugui-api/internal/ports"
	"github.com/tenugui-collection/tenugui-api/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func TestKVStore_SetAndGet(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewKVStore(client)
	ctx := context.Background()

	err := store.Set(ctx, "kv-1", []byte(`{"id":"kv-1"}`), 30*time.Minute)
	require.NoError(t, err)

	got, err := store.Get(ctx, "kv-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"kv-1"}`, string(got))

	ttl := client.TTL(ctx, "kv-1").Val()
	assert.Greater(t, ttl, 29*time.Minute)
}

func TestKVStore_GetNonExistent(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewKVStore(client)

	_, err := store.Get(context.Background(), "non-existent")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)
}

func TestKVStore_Delete(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewKVStore(client)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "kv-delete", []byte("v"), time.Minute))
	require.NoError(t, store.Delete(ctx, "kv-delete"))

	_, err := store.Get(ctx, "kv-delete")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)

	// Deleting again is a no-op.
	require.NoError(t, store.Delete(ctx, "kv-delete"))
}

func TestKVStore_TTLExpiration(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewKVStore(client)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "kv-ttl", []byte("v"), 100*time.Millisecond))

	time.Sleep(200 * time.Millisecond)

	_, err := store.Get(ctx, "kv-ttl")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)
}

func TestKVStore_CustomPrefix(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewKVStoreWithPrefix(client, "test-prefix:")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "prefix-test", []byte("v"), time.Minute))

	exists := client.Exists(ctx, "test-prefix:prefix-test").Val()
	assert.Equal(t, int64(1), exists)

	got, err := store.Get(ctx, "prefix-test")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestKVStore_RejectsInvalidWrites(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewKVStore(client)
	ctx := context.Background()

	err := store.Set(ctx, "", []byte("v"), time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key cannot be empty")

	err = store.Set(ctx, "expired", []byte("v"), -time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ttl must be positive")

	_, err = store.Get(ctx, "")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)
}
