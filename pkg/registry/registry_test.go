package registry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/forager/pkg/domain"
	"github.com/aretw0/forager/pkg/invoker"
)

func TestRegistry_RegisterDuplicateFails(t *testing.T) {
	r := New()
	fn := func(ctx context.Context, payload map[string]any) (any, error) { return nil, nil }

	require.NoError(t, r.Register("fetch_offers", fn))
	err := r.Register("fetch_offers", fn)
	assert.ErrorIs(t, err, domain.ErrToolRegistered)
}

func TestRegistry_CallUnknownTool(t *testing.T) {
	r := New()
	_, err := r.Call(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, domain.ErrToolNotFound)
}

func TestRegistry_CallReturnsEnvelope(t *testing.T) {
	r := New()
	r.MustRegister("echo", func(ctx context.Context, payload map[string]any) (any, error) {
		return payload["q"], nil
	})

	res, err := r.Call(context.Background(), "echo", map[string]any{"q": "phone"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "phone", res.Data)
}

func TestRegistry_FailureStaysInsideEnvelope(t *testing.T) {
	r := New()
	r.MustRegister("bad", func(ctx context.Context, payload map[string]any) (any, error) {
		return nil, errors.New("adapter exploded")
	}, invoker.WithMaxRetries(0))

	res, err := r.Call(context.Background(), "bad", nil)
	require.NoError(t, err, "runtime failures never surface as errors")
	assert.False(t, res.Success)
	assert.Equal(t, domain.ErrKindInternal, res.ErrKind())
}

func TestRegistry_BreakerSharedAcrossCalls(t *testing.T) {
	var calls atomic.Int32
	r := New(WithBreaker(2, time.Minute))
	r.MustRegister("down", func(ctx context.Context, payload map[string]any) (any, error) {
		calls.Add(1)
		return nil, invoker.Transient(errors.New("refused"))
	}, invoker.WithMaxRetries(0), invoker.WithBaseDelay(time.Millisecond))

	// Simulate two independent requests hitting the same tool.
	for i := 0; i < 2; i++ {
		res, err := r.Call(context.Background(), "down", nil)
		require.NoError(t, err)
		require.False(t, res.Success)
	}
	require.True(t, r.BreakerOpen("down"))

	before := calls.Load()
	res, err := r.Call(context.Background(), "down", nil)
	require.NoError(t, err)
	assert.True(t, res.CircuitOpen)
	assert.Equal(t, before, calls.Load())
}

func TestRegistry_HooksFire(t *testing.T) {
	var called, returned atomic.Int32
	r := New(WithHooks(domain.LifecycleHooks{
		OnToolCall:   func(ctx context.Context, e *domain.ToolEvent) { called.Add(1) },
		OnToolReturn: func(ctx context.Context, e *domain.ToolEvent) { returned.Add(1) },
	}))
	r.MustRegister("echo", func(ctx context.Context, payload map[string]any) (any, error) {
		return nil, nil
	})

	_, err := r.Call(context.Background(), "echo", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), called.Load())
	assert.Equal(t, int32(1), returned.Load())
}
