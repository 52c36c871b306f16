package dedup

import (
	"context"
	"testing"
	"time"

	"autoassign-worker/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_TryAcquire(t *testing.T) {
	t.Run("first claim wins, second is rejected", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()

		guard := NewGuard(client, time.Hour, logger.NewTestLogger(t))

		assert.True(t, guard.TryAcquire(context.Background(), "videos/clip.mp4"))
		assert.False(t, guard.TryAcquire(context.Background(), "videos/clip.mp4"))
		assert.True(t, guard.TryAcquire(context.Background(), "videos/other.mp4"))
	})

	t.Run("marker expires after ttl", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()

		guard := NewGuard(client, time.Minute, logger.NewTestLogger(t))

		require.True(t, guard.TryAcquire(context.Background(), "videos/clip.mp4"))
		mr.FastForward(2 * time.Minute)
		assert.True(t, guard.TryAcquire(context.Background(), "videos/clip.mp4"))
	})

	t.Run("release frees the key", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()

		guard := NewGuard(client, time.Hour, logger.NewTestLogger(t))

		require.True(t, guard.TryAcquire(context.Background(), "videos/clip.mp4"))
		guard.Release(context.Background(), "videos/clip.mp4")
		assert.True(t, guard.TryAcquire(context.Background(), "videos/clip.mp4"))
	})

	t.Run("redis failure degrades open", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.Regexp().ExpectSetNX("autoassign:processed:videos/clip.mp4", `.*`, time.Hour).
			SetErr(assert.AnError)

		guard := NewGuard(client, time.Hour, logger.NewNoOpLogger())
		assert.True(t, guard.TryAcquire(context.Background(), "videos/clip.mp4"))
	})

	t.Run("nil guard always allows", func(t *testing.T) {
		var guard *Guard
		assert.True(t, guard.TryAcquire(context.Background(), "videos/clip.mp4"))
		assert.NotPanics(t, func() {
			guard.Release(context.Background(), "videos/clip.mp4")
		})
	})
}
