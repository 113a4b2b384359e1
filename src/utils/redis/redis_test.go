package redis_utils_test

import (
	"context"
	"os"
	"testing"
	"time"

	redis_utils "investmentapp/src/utils/redis"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUUID(t *testing.T) {
	a := redis_utils.GenerateUUID("portfolio", "jane@example.com")
	b := redis_utils.GenerateUUID("portfolio", "jane@example.com")
	assert.Equal(t, a, b)

	_, err := uuid.Parse(a)
	assert.NoError(t, err)

	assert.NotEqual(t, redis_utils.GenerateUUID("ab", "c"), redis_utils.GenerateUUID("a", "bc"))
}

// setupRedis connects to TEST_REDIS_ADDR and skips the test when it is unset.
func setupRedis(t *testing.T) *redis_utils.RedisHandler {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())

	handler := redis_utils.NewRedisHandlerFromClient(client)
	t.Cleanup(func() { _ = handler.Close() })
	return handler
}

func TestSetIfVersion(t *testing.T) {
	handler := setupRedis(t)
	ctx := context.Background()
	suffix := uuid.NewString()
	versionKey, key := "test:version:"+suffix, "test:value:"+suffix
	t.Cleanup(func() {
		_ = handler.Delete(ctx, versionKey)
		_ = handler.Delete(ctx, key)
	})

	version, err := handler.Version(ctx, versionKey)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)

	require.NoError(t, handler.BumpVersion(ctx, versionKey, key))

	stored, err := handler.SetIfVersion(ctx, versionKey, version, key, []int{1}, time.Minute)
	require.NoError(t, err)
	assert.False(t, stored)
	var got []int
	assert.ErrorIs(t, handler.Get(ctx, key, &got), redis_utils.ErrCacheMiss)

	version, err = handler.Version(ctx, versionKey)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	stored, err = handler.SetIfVersion(ctx, versionKey, version, key, []int{2}, time.Minute)
	require.NoError(t, err)
	assert.True(t, stored)
	require.NoError(t, handler.Get(ctx, key, &got))
	assert.Equal(t, []int{2}, got)

	require.NoError(t, handler.BumpVersion(ctx, versionKey, key))
	assert.ErrorIs(t, handler.Get(ctx, key, &got), redis_utils.ErrCacheMiss)
}
