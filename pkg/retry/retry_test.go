package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(max int) Config {
	return Config{
		MaxAttempts: max,
		InitialWait: time.Millisecond,
		MaxWait:     time.Millisecond,
		Multiplier:  1.0,
	}
}

func TestDo_SucceedsAfterRetryableFailures(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastConfig(5), func() error {
		attempts++
		if attempts < 3 {
			return Retryable(errors.New("transient"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	attempts := 0
	permanent := errors.New("bad request")
	err := Do(context.Background(), fastConfig(5), func() error {
		attempts++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", attempts)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastConfig(3), func() error {
		attempts++
		return Retryable(errors.New("still down"))
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, fastConfig(0), func() error {
		return Retryable(errors.New("transient"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRetryable_PreservesWrappedError(t *testing.T) {
	inner := errors.New("connection refused")
	wrapped := Retryable(inner)
	if !IsRetryable(wrapped) {
		t.Error("wrapped error should be retryable")
	}
	if !errors.Is(wrapped, inner) {
		t.Error("wrapped error should unwrap to the original")
	}
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
}

func TestSingle_OneAttempt(t *testing.T) {
	attempts := 0
	Do(context.Background(), Single(), func() error {
		attempts++
		return Retryable(errors.New("transient"))
	})
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}
