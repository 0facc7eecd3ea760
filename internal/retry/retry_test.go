package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func fastConfig(attempts int) Config {
	return Config{
		Attempts:  attempts,
		BaseDelay: time.Millisecond,
		MaxDelay:  2 * time.Millisecond,
		Jitter:    time.Millisecond,
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func() error {
		calls++
		if calls < 3 {
			return errors.New("busy")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDoWrapsLastError(t *testing.T) {
	busy := errors.New("busy")
	calls := 0
	err := Do(context.Background(), fastConfig(2), func() error {
		calls++
		return busy
	})
	if !errors.Is(err, busy) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(5), func() error {
		calls++
		return fmt.Errorf("bad table: %w", ErrPermanent)
	})
	if !errors.Is(err, ErrPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestDoUsesCustomPredicate(t *testing.T) {
	calls := 0
	cfg := fastConfig(5)
	cfg.Retryable = func(err error) bool { return err.Error() == "again" }
	err := Do(context.Background(), cfg, func() error {
		calls++
		if calls == 1 {
			return errors.New("again")
		}
		return errors.New("stop")
	})
	if err == nil || err.Error() != "stop" {
		t.Fatalf("expected unwrapped stop error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestDoHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig(5)
	cfg.BaseDelay = time.Second
	cfg.MaxDelay = time.Second
	calls := 0
	err := Do(ctx, cfg, func() error {
		calls++
		cancel()
		return errors.New("busy")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}
