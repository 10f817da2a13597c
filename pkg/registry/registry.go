// Package registry maps tool names to their protected invokers. It is
// the sole seam through which pipeline stages reach external systems,
// which is what makes the engine fully testable with fake tools.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/forager/pkg/domain"
	"github.com/aretw0/forager/pkg/invoker"
)

// Breaker defaults shared by every tool unless overridden at
// registration time.
const (
	DefaultBreakerThreshold = 5
	DefaultBreakerCooldown  = 30 * time.Second
)

// Registry manages the available tools and owns one circuit breaker
// per tool name, shared across all requests that invoke that tool.
type Registry struct {
	mu       sync.RWMutex
	invokers map[string]*invoker.Invoker
	breakers map[string]*invoker.Breaker

	threshold int
	cooldown  time.Duration
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
}

// Option configures the registry.
type Option func(*Registry)

// WithBreaker tunes the breaker created for each registered tool.
func WithBreaker(threshold int, cooldown time.Duration) Option {
	return func(r *Registry) {
		r.threshold = threshold
		r.cooldown = cooldown
	}
}

// WithLogger sets the structured logger passed to each invoker.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithHooks registers observability callbacks fired around every call.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Registry) { r.hooks = hooks }
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		invokers:  make(map[string]*invoker.Invoker),
		breakers:  make(map[string]*invoker.Breaker),
		threshold: DefaultBreakerThreshold,
		cooldown:  DefaultBreakerCooldown,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a tool under name. Registering the same name twice is
// a wiring bug and returns domain.ErrToolRegistered.
func (r *Registry) Register(name string, fn domain.ToolFunc, opts ...invoker.Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.invokers[name]; exists {
		return fmt.Errorf("%w: %s", domain.ErrToolRegistered, name)
	}

	breaker := invoker.NewBreaker(r.threshold, r.cooldown)
	r.breakers[name] = breaker

	all := append([]invoker.Option{invoker.WithLogger(r.logger)}, opts...)
	r.invokers[name] = invoker.New(name, fn, breaker, all...)
	return nil
}

// MustRegister is Register for static wiring at startup; it panics on
// duplicate names.
func (r *Registry) MustRegister(name string, fn domain.ToolFunc, opts ...invoker.Option) {
	if err := r.Register(name, fn, opts...); err != nil {
		panic(err)
	}
}

// Call invokes a tool by name. The returned error is non-nil only for
// domain.ErrToolNotFound; every runtime failure is reported inside the
// ToolResult envelope.
func (r *Registry) Call(ctx context.Context, name string, payload map[string]any) (domain.ToolResult, error) {
	r.mu.RLock()
	inv, ok := r.invokers[name]
	r.mu.RUnlock()

	if !ok {
		return domain.ToolResult{}, fmt.Errorf("%w: %s", domain.ErrToolNotFound, name)
	}

	if r.hooks.OnToolCall != nil {
		r.hooks.OnToolCall(ctx, &domain.ToolEvent{
			Timestamp: time.Now(),
			Type:      domain.EventToolCall,
			Tool:      name,
		})
	}

	res := inv.Invoke(ctx, payload)

	if r.hooks.OnToolReturn != nil {
		r.hooks.OnToolReturn(ctx, &domain.ToolEvent{
			Timestamp:   time.Now(),
			Type:        domain.EventToolReturn,
			Tool:        name,
			Attempts:    res.Attempts,
			CircuitOpen: res.CircuitOpen,
			IsError:     !res.Success,
			ErrorKind:   res.ErrKind(),
			LatencyMS:   res.LatencyMS,
		})
	}
	return res, nil
}

// Has reports whether a tool name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.invokers[name]
	return ok
}

// Names returns the registered tool names in unspecified order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.invokers))
	for name := range r.invokers {
		names = append(names, name)
	}
	return names
}

// BreakerOpen reports whether the named tool's circuit is currently
// open. Unknown names report false.
func (r *Registry) BreakerOpen(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.breakers[name]
	return ok && b.Open()
}
