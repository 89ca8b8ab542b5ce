package claude

import (
	"context"
	"time"

	"medclarify/domain"
)

// RetryPolicy bounds the retries of transient failures. MaxRetries is a
// single budget shared by every failure class within one Send call.
type RetryPolicy struct {
	MaxRetries     int
	RateLimitDelay time.Duration
	NetworkDelay   time.Duration
}

// DefaultRetryPolicy allows two retries: 2s after a 429, 1s after a
// transport failure.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     2,
		RateLimitDelay: 2 * time.Second,
		NetworkDelay:   time.Second,
	}
}

// Delay returns how long to wait before retrying after err, and false when
// err is not retryable.
func (p RetryPolicy) Delay(err error) (time.Duration, bool) {
	switch domain.TypeOf(err) {
	case domain.ErrorTypeRateLimited:
		return p.RateLimitDelay, true
	case domain.ErrorTypeNetwork:
		return p.NetworkDelay, true
	default:
		return 0, false
	}
}

// ShouldRetry reports whether another attempt is allowed after the given
// 1-based attempt failed with err.
func (p RetryPolicy) ShouldRetry(attempt int, err error) (time.Duration, bool) {
	if attempt > p.MaxRetries {
		return 0, false
	}
	return p.Delay(err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
