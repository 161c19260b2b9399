package intent

import (
	"context"
	"strings"
	"time"
)

// RetryPolicy controls how the model call in [Classifier] is paced and
// retried. Attempts are sequential: a fixed anti-burst delay precedes every
// attempt, a rate-limit error triggers an exponentially growing backoff
// before the next attempt, and any other error aborts immediately.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// AttemptDelay is waited before every attempt.
	AttemptDelay time.Duration

	// BackoffBase is the backoff after the first rate-limited attempt.
	BackoffBase time.Duration

	// BackoffFactor multiplies the backoff after each rate-limited attempt.
	BackoffFactor int

	// Sleep is the wait primitive, overridable in tests. When nil,
	// [SleepContext] is used.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy matches the pacing the external model is known to
// tolerate: 3 attempts, 2s pacing, and 5s/10s/20s rate-limit backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   3,
		AttemptDelay:  2 * time.Second,
		BackoffBase:   5 * time.Second,
		BackoffFactor: 2,
	}
}

// SleepContext blocks for d or until ctx is cancelled, returning ctx.Err()
// in the latter case.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs call under the policy and returns its first successful result.
// Rate-limited attempts back off and retry; any other error is returned at
// once. When every attempt is rate-limited, the last error is returned.
func (p RetryPolicy) Do(ctx context.Context, call func(ctx context.Context) (string, error)) (string, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	backoff := p.BackoffBase
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if err := sleep(ctx, p.AttemptDelay); err != nil {
			return "", err
		}

		out, err := call(ctx)
		if err == nil {
			return out, nil
		}
		if !IsRateLimit(err) {
			return "", err
		}

		lastErr = err
		if attempt == p.MaxAttempts-1 {
			break
		}
		if err := sleep(ctx, backoff); err != nil {
			return "", err
		}
		backoff *= time.Duration(p.BackoffFactor)
	}
	return "", lastErr
}

// IsRateLimit reports whether err looks like a rate-limit rejection. The
// upstream SDKs do not expose a typed error for this, so detection is by
// message content.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(strings.ToLower(msg), "rate")
}
