package friends

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/circles/backend/internal/metrics"
)

const redisKeyPrefix = "circles:friend-requests:"

// RedisLimiter keeps a sliding-window log per sender in a sorted set scored by
// attempt time. Every admitted attempt is logged, including sends that found
// an existing request. The check and the insert are separate round trips, so
// concurrent attempts may briefly exceed the limit.
type RedisLimiter struct {
	client redis.Cmdable
	limit  int
	window time.Duration
}

// NewRedisLimiter builds a redis-backed limiter. Non-positive values fall back
// to the defaults.
func NewRedisLimiter(client redis.Cmdable, limit int, window time.Duration) *RedisLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &RedisLimiter{client: client, limit: limit, window: window}
}

// Admit trims entries older than the window and logs the attempt when the
// remaining count is below the limit. Scores are microseconds since the epoch.
func (l *RedisLimiter) Admit(ctx context.Context, sender string, now time.Time) (bool, error) {
	key := redisKeyPrefix + sender
	cutoff := now.Add(-l.window).UnixMicro()

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(cutoff, 10))
	card := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("read rate window: %w", err)
	}

	if card.Val() >= int64(l.limit) {
		metrics.RecordRateLimit("redis", false)
		return false, nil
	}

	pipe = l.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMicro()),
		Member: strconv.FormatInt(now.UnixNano(), 10) + ":" + uuid.NewString(),
	})
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("record rate window attempt: %w", err)
	}

	metrics.RecordRateLimit("redis", true)
	return true, nil
}
