// internal/engine/memory/redis_test.go
package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"segment-insights/internal/common/errors"
)

func setupStore(t *testing.T, maxTurns int, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, maxTurns, ttl), mr
}

func TestRedisStore_AppendAndLoad(t *testing.T) {
	store, _ := setupStore(t, 10, 0)
	ctx := context.Background()

	require.NoError(t, store.AppendExchange(ctx, "s1", "hello", "hi there"))

	turns, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, RoleUser, turns[0].Role)
	assert.Equal(t, "hello", turns[0].Content)
	assert.Equal(t, "hi there", turns[1].Content)
}

func TestRedisStore_TrimsToBound(t *testing.T) {
	store, _ := setupStore(t, 2, 0)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.AppendExchange(ctx, "s1", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)))
	}

	turns, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, 4)
	assert.Equal(t, "q3", turns[0].Content)
	assert.Equal(t, "a4", turns[3].Content)
}

func TestRedisStore_SessionsAreIsolated(t *testing.T) {
	store, _ := setupStore(t, 10, 0)
	ctx := context.Background()

	require.NoError(t, store.AppendExchange(ctx, "s1", "one", "1"))
	require.NoError(t, store.AppendExchange(ctx, "s2", "two", "2"))

	turns, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "one", turns[0].Content)
}

func TestRedisStore_TTL(t *testing.T) {
	store, mr := setupStore(t, 10, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.AppendExchange(ctx, "s1", "q", "a"))
	assert.Equal(t, time.Hour, mr.TTL("chat:session:s1:turns"))
}

func TestRedisStore_Clear(t *testing.T) {
	store, _ := setupStore(t, 10, 0)
	ctx := context.Background()

	require.NoError(t, store.AppendExchange(ctx, "s1", "q", "a"))
	require.NoError(t, store.Clear(ctx, "s1"))

	turns, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestRedisStore_DownstreamFailure(t *testing.T) {
	store, mr := setupStore(t, 10, 0)
	ctx := context.Background()

	mr.Close()

	err := store.AppendExchange(ctx, "s1", "q", "a")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeSessionStoreFailed, errors.CodeOf(err))
}
