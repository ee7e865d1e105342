package adldap

import (
	"context"
	"time"
)

// retryPolicy bounds retries of raw (pre-translation) LDAP operations,
// generalizing the teacher's withRetry/isRetryableError. spec.md §7 says
// the Client does not retry translated, final errors — this operates one
// layer below that, on the raw go-ldap error, before wrapLDAP runs.
type retryPolicy struct {
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	backoffFactor  float64
}

var defaultRetryPolicy = retryPolicy{
	maxRetries:     3,
	initialBackoff: 500 * time.Millisecond,
	maxBackoff:     10 * time.Second,
	backoffFactor:  2.0,
}

// withRetry runs op, retrying with exponential backoff while isRetryable
// says the raw error is transient, up to maxRetries additional attempts.
func withRetry(ctx context.Context, op func() error) error {
	p := defaultRetryPolicy
	backoff := p.initialBackoff
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		lastErr = op()
		if lastErr == nil || !isRetryable(lastErr) {
			return lastErr
		}
		if attempt == p.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			backoff = min(time.Duration(float64(backoff)*p.backoffFactor), p.maxBackoff)
		}
	}
	return lastErr
}
