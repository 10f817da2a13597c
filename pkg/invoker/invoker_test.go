package invoker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/forager/pkg/domain"
)

func noSleep(context.Context, time.Duration) error { return nil }

func TestInvoker_Success(t *testing.T) {
	inv := New("echo", func(ctx context.Context, payload map[string]any) (any, error) {
		return payload["v"], nil
	}, NewBreaker(5, time.Second))

	res := inv.Invoke(context.Background(), map[string]any{"v": 42})
	require.True(t, res.Success)
	assert.Equal(t, 42, res.Data)
	assert.Equal(t, 1, res.Attempts)
	assert.Nil(t, res.Err)
}

func TestInvoker_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	inv := New("flaky", func(ctx context.Context, payload map[string]any) (any, error) {
		if calls.Add(1) < 3 {
			return nil, Transient(errors.New("connection reset"))
		}
		return "ok", nil
	}, NewBreaker(5, time.Second), WithMaxRetries(2))
	inv.sleep = noSleep

	res := inv.Invoke(context.Background(), nil)
	require.True(t, res.Success)
	assert.Equal(t, 3, res.Attempts)
}

func TestInvoker_DoesNotRetryValidation(t *testing.T) {
	var calls atomic.Int32
	inv := New("strict", func(ctx context.Context, payload map[string]any) (any, error) {
		calls.Add(1)
		return nil, Validation(errors.New("missing query"))
	}, NewBreaker(5, time.Second), WithMaxRetries(3))
	inv.sleep = noSleep

	res := inv.Invoke(context.Background(), nil)
	require.False(t, res.Success)
	assert.Equal(t, domain.ErrKindValidation, res.ErrKind())
	assert.Equal(t, int32(1), calls.Load(), "validation errors are never retried")
}

func TestInvoker_AttemptTimeout(t *testing.T) {
	inv := New("slow", func(ctx context.Context, payload map[string]any) (any, error) {
		select {
		case <-time.After(5 * time.Second):
			return "late", nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}, NewBreaker(5, time.Second), WithTimeout(10*time.Millisecond), WithMaxRetries(1))
	inv.sleep = noSleep

	res := inv.Invoke(context.Background(), nil)
	require.False(t, res.Success)
	assert.Equal(t, domain.ErrKindTimeout, res.ErrKind())
	assert.Equal(t, 2, res.Attempts, "timeouts are transient and retried")
}

func TestInvoker_DiscardsLateResultAfterTimeout(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	inv := New("laggy", func(ctx context.Context, payload map[string]any) (any, error) {
		if calls.Add(1) == 1 {
			// Ignore ctx on purpose and return well past the attempt
			// deadline. This stale value must never surface.
			<-release
			return "stale", nil
		}
		return "fresh", nil
	}, NewBreaker(5, time.Second), WithTimeout(10*time.Millisecond), WithMaxRetries(1))
	inv.sleep = noSleep

	res := inv.Invoke(context.Background(), nil)
	close(release)

	require.True(t, res.Success)
	assert.Equal(t, "fresh", res.Data, "a result arriving after the attempt deadline is dropped")
	assert.Equal(t, 2, res.Attempts)
}

func TestInvoker_CircuitOpenShortCircuits(t *testing.T) {
	var calls atomic.Int32
	breaker := NewBreaker(2, time.Minute)
	inv := New("down", func(ctx context.Context, payload map[string]any) (any, error) {
		calls.Add(1)
		return nil, Transient(errors.New("refused"))
	}, breaker, WithMaxRetries(0))
	inv.sleep = noSleep

	// Two failed calls trip the breaker.
	inv.Invoke(context.Background(), nil)
	inv.Invoke(context.Background(), nil)
	before := calls.Load()

	res := inv.Invoke(context.Background(), nil)
	require.False(t, res.Success)
	assert.True(t, res.CircuitOpen)
	assert.Equal(t, domain.ErrKindCircuitOpen, res.ErrKind())
	assert.Equal(t, 0, res.Attempts)
	assert.Equal(t, before, calls.Load(), "the underlying operation must not run while open")
}

func TestInvoker_CancelledContextStopsRetrying(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	inv := New("cancel", func(ctx context.Context, payload map[string]any) (any, error) {
		calls.Add(1)
		cancel()
		return nil, Transient(errors.New("broken pipe"))
	}, NewBreaker(5, time.Second), WithMaxRetries(3))
	inv.sleep = noSleep

	res := inv.Invoke(ctx, nil)
	require.False(t, res.Success)
	assert.Equal(t, domain.ErrKindCanceled, res.ErrKind())
	assert.Equal(t, int32(1), calls.Load(), "a cancelled tool call does not retry")
}

func TestInvoker_PanicBecomesInternalError(t *testing.T) {
	inv := New("boom", func(ctx context.Context, payload map[string]any) (any, error) {
		panic("unexpected")
	}, NewBreaker(5, time.Second), WithMaxRetries(1))
	inv.sleep = noSleep

	res := inv.Invoke(context.Background(), nil)
	require.False(t, res.Success)
	assert.Equal(t, domain.ErrKindInternal, res.ErrKind())
	assert.Equal(t, 1, res.Attempts)
}
