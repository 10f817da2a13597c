// Package invoker wraps a single named side-effecting operation with a
// per-attempt timeout, retry with exponential backoff and a shared
// circuit breaker. Whatever happens, Invoke returns a stable
// domain.ToolResult; no error or panic escapes its boundary.
package invoker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/aretw0/forager/pkg/domain"
)

// Defaults match the tuning of the production data-source adapters.
const (
	DefaultTimeout    = 8 * time.Second
	DefaultMaxRetries = 2
	DefaultBaseDelay  = 500 * time.Millisecond
)

// transientError marks an error as retryable.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient wraps err so the invoker will retry it. Adapters use this
// to flag connection-class failures the stdlib does not classify.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// Validation wraps err as a validation failure: never retried.
func Validation(err error) error {
	if err == nil {
		return nil
	}
	return &domain.ToolError{Kind: domain.ErrKindValidation, Message: err.Error()}
}

// Invoker protects one named operation. Construct via New; zero value
// is not usable.
type Invoker struct {
	name       string
	fn         domain.ToolFunc
	breaker    *Breaker
	timeout    time.Duration
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger

	sleep func(context.Context, time.Duration) error // test hook
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithTimeout bounds each individual attempt.
func WithTimeout(d time.Duration) Option {
	return func(i *Invoker) { i.timeout = d }
}

// WithMaxRetries sets the number of additional attempts after the
// first failure.
func WithMaxRetries(n int) Option {
	return func(i *Invoker) { i.maxRetries = n }
}

// WithBaseDelay sets the initial backoff; the delay doubles each
// retry.
func WithBaseDelay(d time.Duration) Option {
	return func(i *Invoker) { i.baseDelay = d }
}

// WithLogger sets the structured logger. Nil means no-op.
func WithLogger(l *slog.Logger) Option {
	return func(i *Invoker) { i.logger = l }
}

// New creates an invoker for one named operation. The breaker is owned
// by the registry and shared across requests for the same tool name.
func New(name string, fn domain.ToolFunc, breaker *Breaker, opts ...Option) *Invoker {
	inv := &Invoker{
		name:       name,
		fn:         fn,
		breaker:    breaker,
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		baseDelay:  DefaultBaseDelay,
		sleep:      sleepCtx,
	}
	for _, opt := range opts {
		opt(inv)
	}
	if inv.logger == nil {
		inv.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return inv
}

// Name returns the wrapped operation's name.
func (i *Invoker) Name() string { return i.name }

// Invoke runs the operation with all guardrails applied. It always
// returns a ToolResult; callers only need the Success flag and, for
// metadata, the error kind.
func (i *Invoker) Invoke(ctx context.Context, payload map[string]any) domain.ToolResult {
	start := time.Now()

	if i.breaker != nil && !i.breaker.Allow() {
		i.logger.Warn("circuit open, skipping call", "tool", i.name)
		return domain.ToolResult{
			Err:         &domain.ToolError{Kind: domain.ErrKindCircuitOpen, Message: "circuit open"},
			LatencyMS:   time.Since(start).Milliseconds(),
			CircuitOpen: true,
		}
	}

	var lastErr *domain.ToolError
	attempts := 0
	for attempt := 0; attempt <= i.maxRetries; attempt++ {
		if attempt > 0 {
			delay := i.baseDelay * time.Duration(1<<(attempt-1))
			if err := i.sleep(ctx, delay); err != nil {
				lastErr = &domain.ToolError{Kind: domain.ErrKindCanceled, Message: err.Error()}
				break
			}
		}
		attempts++

		data, err := i.attempt(ctx, payload)
		if err == nil {
			if i.breaker != nil {
				i.breaker.Success()
			}
			return domain.ToolResult{
				Success:   true,
				Data:      data,
				LatencyMS: time.Since(start).Milliseconds(),
				Attempts:  attempts,
			}
		}

		lastErr = classify(err)
		i.logger.Warn("tool attempt failed",
			"tool", i.name, "attempt", attempts, "kind", string(lastErr.Kind), "err", lastErr.Message)

		// A cancelled parent context never retries: the deadline race
		// was lost and any late result must be discarded, not re-run.
		if ctx.Err() != nil {
			lastErr = &domain.ToolError{Kind: domain.ErrKindCanceled, Message: ctx.Err().Error()}
			break
		}
		if !retryable(lastErr.Kind) {
			break
		}
	}

	if i.breaker != nil {
		i.breaker.Failure()
	}
	return domain.ToolResult{
		Err:       lastErr,
		LatencyMS: time.Since(start).Milliseconds(),
		Attempts:  attempts,
	}
}

// attempt runs one bounded call. The operation runs in its own
// goroutine writing to a buffered channel: if the attempt times out
// first, the late result is dropped on the floor instead of mutating
// anything after the fact.
func (i *Invoker) attempt(ctx context.Context, payload map[string]any) (any, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	type outcome struct {
		data any
		err  error
	}
	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("tool panic: %v", r)}
			}
		}()
		data, err := i.fn(attemptCtx, payload)
		ch <- outcome{data: data, err: err}
	}()

	select {
	case out := <-ch:
		return out.data, out.err
	case <-attemptCtx.Done():
		return nil, attemptCtx.Err()
	}
}

func classify(err error) *domain.ToolError {
	var te *domain.ToolError
	if errors.As(err, &te) {
		return te
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.ToolError{Kind: domain.ErrKindTimeout, Message: err.Error()}
	}
	if errors.Is(err, context.Canceled) {
		return &domain.ToolError{Kind: domain.ErrKindCanceled, Message: err.Error()}
	}
	var tr *transientError
	if errors.As(err, &tr) {
		return &domain.ToolError{Kind: domain.ErrKindConnection, Message: err.Error()}
	}
	var ne net.Error
	if errors.As(err, &ne) {
		kind := domain.ErrKindConnection
		if ne.Timeout() {
			kind = domain.ErrKindTimeout
		}
		return &domain.ToolError{Kind: kind, Message: err.Error()}
	}
	return &domain.ToolError{Kind: domain.ErrKindInternal, Message: err.Error()}
}

// retryable reports whether a failure class is transient. Validation
// and programmer errors are never retried.
func retryable(kind domain.ErrorKind) bool {
	return kind == domain.ErrKindTimeout || kind == domain.ErrKindConnection
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
