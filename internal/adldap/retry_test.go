package adldap

import (
	"context"
	"errors"
	"testing"
)

func TestWithRetrySucceedsImmediately(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 call, got %d", calls)
	}
}

func TestWithRetryDoesNotRetryNonRetryableError(t *testing.T) {
	calls := 0
	wantErr := errors.New("permanent failure")
	err := withRetry(context.Background(), func() error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected permanent error back, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 call for a non-retryable error, got %d", calls)
	}
}

func TestWithRetryRetriesTransientErrorThenSucceeds(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errNetworkTransient
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls (2 failures + 1 success), got %d", calls)
	}
}

func TestWithRetryAbortsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := withRetry(ctx, func() error {
		calls++
		return errNetworkTransient
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected op to run once before the cancellation check, got %d", calls)
	}
}

func TestWithRetryExhaustsRetriesAndReturnsLastError(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), func() error {
		calls++
		return errNetworkTransient
	})
	if !errors.Is(err, errNetworkTransient) {
		t.Fatalf("expected final transient error back, got %v", err)
	}
	if calls != defaultRetryPolicy.maxRetries+1 {
		t.Errorf("expected %d calls (1 initial + %d retries), got %d", defaultRetryPolicy.maxRetries+1, defaultRetryPolicy.maxRetries, calls)
	}
}
