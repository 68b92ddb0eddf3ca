package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/madecentro/cartera-bfa-go/internal/infra/resilience"
)

var errRetryable = errors.New("retryable")
var errFatal = errors.New("fatal")

func isRetryable(err error) bool { return errors.Is(err, errRetryable) }

func TestRetryPolicy_SecondAttemptSucceeds(t *testing.T) {
	policy := resilience.RetryPolicy{
		MaxAttempts: 2,
		Backoff:     time.Millisecond,
		ShouldRetry: isRetryable,
	}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		if calls == 1 {
			return errRetryable
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestRetryPolicy_NonRetryableNotRetried(t *testing.T) {
	policy := resilience.RetryPolicy{
		MaxAttempts: 2,
		Backoff:     time.Millisecond,
		ShouldRetry: isRetryable,
	}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return errFatal
	})

	if !errors.Is(err, errFatal) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetryPolicy_ExactlyOneRetry(t *testing.T) {
	retries := 0
	policy := resilience.RetryPolicy{
		MaxAttempts: 2,
		Backoff:     time.Millisecond,
		ShouldRetry: isRetryable,
		OnRetry:     func(int, error) { retries++ },
	}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return errRetryable
	})

	if !errors.Is(err, errRetryable) {
		t.Fatalf("expected retryable error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
	if retries != 1 {
		t.Errorf("expected exactly 1 retry, got %d", retries)
	}
}

func TestRetryPolicy_ContextCancelled(t *testing.T) {
	policy := resilience.RetryPolicy{
		MaxAttempts: 2,
		Backoff:     time.Second,
		ShouldRetry: isRetryable,
	}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := policy.Do(ctx, func() error {
		calls++
		return errRetryable
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestBulkhead_LimitsConcurrency(t *testing.T) {
	b := resilience.NewBulkhead(1)

	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := b.Acquire(ctx); err == nil {
		t.Fatal("expected second acquire to block until timeout")
	}

	b.Release()
	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
}
