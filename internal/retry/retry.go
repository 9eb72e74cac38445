// Package retry wraps a fallible operation with exponential backoff.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultMaxRetries is the retry cap used when none is configured.
const DefaultMaxRetries = 3

// ErrNoOperation is returned when Do is called without an operation.
var ErrNoOperation = errors.New("retry: no operation")

// Sleeper waits between attempts. Tests substitute a recording fake.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep calls f(ctx, d).
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// TimerSleeper blocks on a timer and returns early when ctx is done.
type TimerSleeper struct{}

// Sleep waits for d or the context, whichever comes first.
func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Describer is implemented by errors that carry remote API details.
type Describer interface {
	APIStatus() int
	APIKind() string
	APIMessage() string
}

// Policy configures Do.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	Sleeper    Sleeper
	Logger     *slog.Logger
	Operation  string
}

// DefaultPolicy retries three times with 1s, 2s and 4s delays.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  time.Second,
		Sleeper:    TimerSleeper{},
	}
}

// Backoff returns base * 2^attempt.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		attempt = 30
	}
	return base << uint(attempt)
}

// Do runs op until it succeeds or MaxRetries retries have been spent. The last
// error is returned unchanged so callers can still inspect it.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if op == nil {
		return zero, ErrNoOperation
	}

	sleeper := p.Sleeper
	if sleeper == nil {
		sleeper = TimerSleeper{}
	}
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}

	for attempt := 0; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		p.logFailure(ctx, attempt, err)

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		if ctx.Err() != nil || attempt >= p.MaxRetries {
			return zero, err
		}

		delay := Backoff(base, attempt)
		p.warn(ctx, "retrying request",
			"delay", delay,
			"retries_left", p.MaxRetries-attempt,
		)
		if sleepErr := sleeper.Sleep(ctx, delay); sleepErr != nil {
			return zero, sleepErr
		}
	}
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }

func (p *permanentError) Unwrap() error { return p.err }

func (p Policy) logFailure(ctx context.Context, attempt int, err error) {
	args := []any{"attempt", attempt + 1, "error", err}
	var described Describer
	if errors.As(err, &described) {
		args = append(args,
			"status", described.APIStatus(),
			"kind", described.APIKind(),
			"message", described.APIMessage(),
		)
	}
	p.warn(ctx, "request failed", args...)
}

func (p Policy) warn(ctx context.Context, msg string, args ...any) {
	if p.Logger == nil {
		return
	}
	if p.Operation != "" {
		args = append(args, "operation", p.Operation)
	}
	p.Logger.WarnContext(ctx, msg, args...)
}
