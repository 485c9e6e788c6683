package llm

import (
	"context"
	"time"
)

// RetryPolicy bounds how often and how long a provider call may run.
// Delay grows linearly with the attempt number (BaseDelay, 2*BaseDelay, ...).
type RetryPolicy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	AttemptTimeout time.Duration
}

// DefaultRetryPolicy is a single attempt with a hard per-call ceiling.
// Generation components absorb failures with fallback content, so they
// do not retry on their own.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    1,
		BaseDelay:      3 * time.Second,
		AttemptTimeout: 120 * time.Second,
	}
}

// Do runs fn under the policy, returning the last error once attempts
// are exhausted. The parent context cancels the whole loop.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if p.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
		}

		err := fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * p.BaseDelay):
		}
	}

	return lastErr
}
