package invoker

import (
	"sync"
	"time"
)

// Breaker is a per-tool circuit breaker. It counts consecutive
// failures; at the threshold the circuit opens for a cooldown window
// during which calls short-circuit. After the cooldown a single probe
// is allowed (half-open); its success closes the circuit, its failure
// reopens it.
//
// Breaker state is a property of the tool, not of a request: the
// registry shares one Breaker per tool name across all concurrent
// requests, so every transition is mutex-protected.
type Breaker struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	failures  int
	openUntil time.Time
	halfOpen  bool

	now func() time.Time // test hook
}

// NewBreaker creates a breaker that opens after threshold consecutive
// failures and stays open for cooldown.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	return &Breaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Allow reports whether a call may proceed. While open it returns
// false; once the cooldown has elapsed it lets a single probe through.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.openUntil.IsZero() {
		return true
	}
	if b.now().Before(b.openUntil) {
		return false
	}
	if b.halfOpen {
		// A probe is already in flight; hold further calls back.
		return false
	}
	b.halfOpen = true
	return true
}

// Success records a successful call, closing the circuit and resetting
// the failure counter.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.openUntil = time.Time{}
	b.halfOpen = false
}

// Failure records a failed call. At the threshold (or during half-open)
// the circuit opens for the cooldown window.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.halfOpen || b.failures >= b.threshold {
		b.openUntil = b.now().Add(b.cooldown)
		b.halfOpen = false
	}
}

// Open reports whether the circuit is currently open.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.openUntil.IsZero() && b.now().Before(b.openUntil)
}
