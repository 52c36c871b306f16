// Package dedup guards against redelivered events. The queue retries by
// redelivery, so a run that already assigned a vendor must not run again for
// the same source key.
package dedup

import (
	"context"
	"time"

	"autoassign-worker/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "autoassign:processed:"

// Guard marks processed source keys in redis.
type Guard struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewGuard(client *redis.Client, ttl time.Duration, log logger.Logger) *Guard {
	return &Guard{client: client, ttl: ttl, logger: log}
}

// TryAcquire atomically claims a source key. It returns false when another
// run already claimed it. Redis failures degrade open: the run proceeds, and
// double assignment is left to the downstream status checks.
func (g *Guard) TryAcquire(ctx context.Context, sourceKey string) bool {
	if g == nil || g.client == nil {
		return true
	}

	ok, err := g.client.SetNX(ctx, keyPrefix+sourceKey, time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		g.logger.Warn("dedup check failed, proceeding without guard", map[string]interface{}{
			"key":   sourceKey,
			"error": err.Error(),
		})
		return true
	}

	if !ok {
		g.logger.Info("event already processed, skipping", map[string]interface{}{"key": sourceKey})
	}
	return ok
}

// Release drops the marker so a failed run can be redelivered and retried.
func (g *Guard) Release(ctx context.Context, sourceKey string) {
	if g == nil || g.client == nil {
		return
	}

	if err := g.client.Del(ctx, keyPrefix+sourceKey).Err(); err != nil {
		g.logger.Warn("failed to release dedup marker", map[string]interface{}{
			"key":   sourceKey,
			"error": err.Error(),
		})
	}
}
