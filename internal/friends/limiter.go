package friends

import (
	"context"
	"fmt"
	"time"

	"github.com/circles/backend/internal/metrics"
)

const (
	// DefaultLimit is the number of requests a sender may create per window.
	DefaultLimit = 3
	// DefaultWindow is the trailing window the limit applies to.
	DefaultWindow = time.Minute
)

// RequestCounter counts requests a sender created at or after since.
type RequestCounter interface {
	CountRecent(ctx context.Context, fromUser string, since time.Time) (int, error)
}

// StoreLimiter derives the sender's window from stored request timestamps.
// It has no state of its own, so requests that were accepted or rejected no
// longer count.
type StoreLimiter struct {
	counter RequestCounter
	limit   int
	window  time.Duration
}

// NewStoreLimiter builds a limiter admitting fewer than limit requests per window.
// Non-positive values fall back to the defaults.
func NewStoreLimiter(counter RequestCounter, limit int, window time.Duration) *StoreLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &StoreLimiter{counter: counter, limit: limit, window: window}
}

// Admit reports whether sender has fewer than limit requests in the window ending at now.
func (l *StoreLimiter) Admit(ctx context.Context, sender string, now time.Time) (bool, error) {
	count, err := l.counter.CountRecent(ctx, sender, now.Add(-l.window))
	if err != nil {
		return false, fmt.Errorf("count recent requests: %w", err)
	}

	admitted := count < l.limit
	metrics.RecordRateLimit("store", admitted)
	return admitted, nil
}
