package retry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

type fakeAPIError struct {
	status int
}

func (f *fakeAPIError) Error() string      { return fmt.Sprintf("api status %d", f.status) }
func (f *fakeAPIError) APIStatus() int     { return f.status }
func (f *fakeAPIError) APIKind() string    { return "rate_limit_exceeded" }
func (f *fakeAPIError) APIMessage() string { return "slow down" }

func TestDoSucceedsAfterFailures(t *testing.T) {
	t.Parallel()

	sleeper := &recordingSleeper{}
	policy := DefaultPolicy()
	policy.Sleeper = sleeper

	calls := 0
	got, err := Do(context.Background(), policy, func(context.Context) (string, error) {
		calls++
		if calls <= 3 {
			return "", errors.New("boom")
		}
		return "YES", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "YES", got)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, sleeper.delays)
}

func TestDoExhaustsRetries(t *testing.T) {
	t.Parallel()

	for _, maxRetries := range []int{0, 1, 3, 5} {
		t.Run(fmt.Sprintf("cap=%d", maxRetries), func(t *testing.T) {
			t.Parallel()

			sleeper := &recordingSleeper{}
			final := errors.New("still failing")
			calls := 0

			_, err := Do(context.Background(), Policy{MaxRetries: maxRetries, BaseDelay: time.Second, Sleeper: sleeper},
				func(context.Context) (int, error) {
					calls++
					return 0, final
				})

			require.ErrorIs(t, err, final)
			assert.Equal(t, maxRetries+1, calls)
			assert.Len(t, sleeper.delays, maxRetries)
		})
	}
}

func TestDoPermanentErrorStopsImmediately(t *testing.T) {
	t.Parallel()

	sleeper := &recordingSleeper{}
	cause := errors.New("bad request")
	calls := 0

	_, err := Do(context.Background(), Policy{MaxRetries: 3, Sleeper: sleeper}, func(context.Context) (int, error) {
		calls++
		return 0, Permanent(cause)
	})

	assert.Equal(t, cause, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeper.delays)
}

func TestDoStopsOnCancelledSleep(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	sleeper := SleeperFunc(func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	})

	calls := 0
	_, err := Do(ctx, Policy{MaxRetries: 3, Sleeper: sleeper}, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("boom")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDoLogsAPIErrorFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	policy := Policy{MaxRetries: 1, Sleeper: &recordingSleeper{}, Logger: logger, Operation: "chat"}

	_, err := Do(context.Background(), policy, func(context.Context) (int, error) {
		return 0, fmt.Errorf("complete: %w", &fakeAPIError{status: 429})
	})

	require.Error(t, err)
	out := buf.String()
	assert.Contains(t, out, "status=429")
	assert.Contains(t, out, "kind=rate_limit_exceeded")
	assert.Contains(t, out, `message="slow down"`)
	assert.Contains(t, out, "retries_left=1")
	assert.Contains(t, out, "operation=chat")
}

func TestDoWithoutOperation(t *testing.T) {
	t.Parallel()

	_, err := Do[int](context.Background(), DefaultPolicy(), nil)
	assert.ErrorIs(t, err, ErrNoOperation)
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Second, Backoff(time.Second, 0))
	assert.Equal(t, 2*time.Second, Backoff(time.Second, 1))
	assert.Equal(t, 8*time.Second, Backoff(time.Second, 3))
	assert.Equal(t, 500*time.Millisecond, Backoff(500*time.Millisecond, -1))
}
