package friends

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterStub struct {
	count int
	err   error
	since time.Time
}

func (c *counterStub) CountRecent(_ context.Context, _ string, since time.Time) (int, error) {
	c.since = since
	return c.count, c.err
}

func TestStoreLimiterThreshold(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		count int
		want  bool
	}{
		{count: 0, want: true},
		{count: 2, want: true},
		{count: 3, want: false},
		{count: 7, want: false},
	}

	for _, tc := range tests {
		counter := &counterStub{count: tc.count}
		limiter := NewStoreLimiter(counter, 3, time.Minute)

		admitted, err := limiter.Admit(context.Background(), "sam", now)
		require.NoError(t, err)
		assert.Equal(t, tc.want, admitted, "count %d", tc.count)
		assert.Equal(t, now.Add(-time.Minute), counter.since)
	}
}

func TestStoreLimiterDefaultsAndErrors(t *testing.T) {
	limiter := NewStoreLimiter(&counterStub{}, 0, 0)
	assert.Equal(t, DefaultLimit, limiter.limit)
	assert.Equal(t, DefaultWindow, limiter.window)

	boom := errors.New("db down")
	limiter = NewStoreLimiter(&counterStub{err: boom}, 3, time.Minute)
	admitted, err := limiter.Admit(context.Background(), "sam", time.Now())
	assert.False(t, admitted)
	assert.ErrorIs(t, err, boom)
}

func newRedisLimiter(t *testing.T) (*RedisLimiter, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLimiter(client, 3, time.Minute), mr, client
}

func TestRedisLimiterSlidingWindow(t *testing.T) {
	limiter, mr, _ := newRedisLimiter(t)
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		admitted, err := limiter.Admit(ctx, "sam", start.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		require.True(t, admitted, "attempt %d", i)
	}

	admitted, err := limiter.Admit(ctx, "sam", start.Add(30*time.Second))
	require.NoError(t, err)
	assert.False(t, admitted)

	members, err := mr.ZMembers(redisKeyPrefix + "sam")
	require.NoError(t, err)
	assert.Len(t, members, 3, "denied attempts are not logged")

	admitted, err = limiter.Admit(ctx, "sam", start.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, admitted, "oldest attempt is still inside the window")

	admitted, err = limiter.Admit(ctx, "sam", start.Add(time.Minute+time.Millisecond))
	require.NoError(t, err)
	assert.True(t, admitted)

	admitted, err = limiter.Admit(ctx, "tom", start.Add(30*time.Second))
	require.NoError(t, err)
	assert.True(t, admitted, "windows are per sender")
}

func TestRedisLimiterSetsExpiry(t *testing.T) {
	limiter, mr, _ := newRedisLimiter(t)

	_, err := limiter.Admit(context.Background(), "sam", time.Now())
	require.NoError(t, err)

	assert.Equal(t, time.Minute, mr.TTL(redisKeyPrefix+"sam"))
}

func TestRedisLimiterUnavailable(t *testing.T) {
	limiter, mr, _ := newRedisLimiter(t)
	mr.Close()

	admitted, err := limiter.Admit(context.Background(), "sam", time.Now())
	assert.Error(t, err)
	assert.False(t, admitted)
}
