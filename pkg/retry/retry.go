// Package retry runs an operation with exponential backoff until it succeeds,
// fails permanently, runs out of attempts or its context is done.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Config controls the backoff schedule.
type Config struct {
	Attempts   int           // 0 means 100
	Initial    time.Duration // delay after the first failure
	Max        time.Duration // delay cap
	Multiplier float64
	Jitter     bool // add up to 25% to each delay

	// OnRetry, when set, is called after every failed attempt that will be
	// retried.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// Default suits connecting to a service that may still be starting.
func Default() Config {
	return Config{
		Attempts:   10,
		Initial:    500 * time.Millisecond,
		Max:        15 * time.Second,
		Multiplier: 2,
		Jitter:     true,
	}
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err so that Do stops retrying and returns it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls fn until it returns nil. The last error is returned when attempts
// run out.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 100
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}

	delay := cfg.Initial
	var err error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		var p *permanentError
		if errors.As(err, &p) {
			return p.err
		}
		if attempt == cfg.Attempts {
			break
		}

		wait := delay
		if cfg.Jitter && wait > 4 {
			wait += time.Duration(rand.Int63n(int64(wait / 4)))
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if cfg.Max > 0 && delay > cfg.Max {
			delay = cfg.Max
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", cfg.Attempts, err)
}
