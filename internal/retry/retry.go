// Package retry runs an operation with capped exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// ErrPermanent marks an error that should not be retried.
var ErrPermanent = errors.New("permanent failure")

type Config struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Jitter    time.Duration
	// Retryable reports whether err is worth another attempt. Nil retries
	// everything except errors wrapping ErrPermanent or a context error.
	Retryable func(error) bool
	Logger    *slog.Logger
	// Name labels log lines.
	Name string
}

func (c Config) withDefaults() Config {
	if c.Attempts <= 0 {
		c.Attempts = 1
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 200 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 2 * time.Second
	}
	if c.Jitter <= 0 {
		c.Jitter = 100 * time.Millisecond
	}
	if c.Retryable == nil {
		c.Retryable = defaultRetryable
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Name == "" {
		c.Name = "operation"
	}
	return c
}

func defaultRetryable(err error) bool {
	return !errors.Is(err, ErrPermanent) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// Do calls fn until it succeeds, returns a non-retryable error, runs out of
// attempts or ctx ends.
func Do(ctx context.Context, config Config, fn func() error) error {
	config = config.withDefaults()

	var lastErr error
	delay := config.BaseDelay
	for attempt := 1; attempt <= config.Attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !config.Retryable(err) {
			return err
		}
		if attempt == config.Attempts {
			break
		}

		sleep := delay + time.Duration(rand.Int63n(int64(config.Jitter)))
		if sleep > config.MaxDelay {
			sleep = config.MaxDelay
		}
		config.Logger.Warn("retrying after failure",
			"name", config.Name,
			"attempt", attempt,
			"of", config.Attempts,
			"delay", sleep,
			"error", err,
		)
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
		if delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", config.Name, config.Attempts, lastErr)
}
