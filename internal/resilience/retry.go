package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Backoff configures RetryWithBackoff.
type Backoff struct {
	MaxRetries     int           `mapstructure:"max_retries"`     // retries after the first attempt
	InitialDelay   time.Duration `mapstructure:"initial_delay"`   // delay after the first failed attempt
	MaxDelay       time.Duration `mapstructure:"max_delay"`       // cap for a single delay
	Multiplier     float64       `mapstructure:"multiplier"`      // growth factor between delays
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"` // per-attempt deadline, 0 disables it
}

// DefaultBackoff returns 3 retries, 1s initial delay, 10s cap, multiplier 2.
func DefaultBackoff() Backoff {
	return Backoff{MaxRetries: 3, InitialDelay: time.Second, MaxDelay: 10 * time.Second, Multiplier: 2}
}

// Delay returns the pause after the zero-based attempt: min(initial * multiplier^attempt, max).
func (b Backoff) Delay(attempt int) time.Duration {
	d := float64(b.InitialDelay) * math.Pow(b.Multiplier, float64(attempt))
	if b.MaxDelay > 0 && d > float64(b.MaxDelay) {
		return b.MaxDelay
	}
	return time.Duration(d)
}

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying. RetryWithBackoff returns the wrapped error at once.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// RetryWithBackoff invokes op up to MaxRetries+1 times, sleeping Delay(i) after failed attempt i.
// The last error is returned once attempts are exhausted; there is no sleep after the final attempt.
//
// Run it inside Breakers.Execute so that an exhausted retry loop counts as one breaker failure.
func RetryWithBackoff[T any](ctx context.Context, b Backoff, op func(context.Context) (T, error)) (T, error) {
	return retry(ctx, b, sleep, op)
}

// Call runs op with retries inside the named circuit.
func Call[T any](ctx context.Context, breakers *Breakers, name string, b Backoff, op func(context.Context) (T, error)) (T, error) {
	return Execute(ctx, breakers, name, func(ctx context.Context) (T, error) {
		return RetryWithBackoff(ctx, b, op)
	})
}

type sleeper func(ctx context.Context, d time.Duration) error

func retry[T any](ctx context.Context, b Backoff, sleepFn sleeper, op func(context.Context) (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)

	attempts := b.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		res, err := attempt(ctx, b.AttemptTimeout, op)
		if err == nil {
			return res, nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}

		lastErr = err
		if i == attempts-1 {
			break
		}

		if err := sleepFn(ctx, b.Delay(i)); err != nil {
			return zero, fmt.Errorf("retry aborted after %d attempts: %w", i+1, errors.Join(err, lastErr))
		}
	}

	return zero, lastErr
}

func attempt[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return op(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return op(ctx)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
