package domain

import (
	"errors"
	"fmt"
)

// ErrToolNotFound is returned by the registry when a stage asks for an
// unregistered tool name. This indicates a wiring bug, not a runtime
// condition, and is the one failure a stage is allowed to surface hard.
var ErrToolNotFound = errors.New("tool not found")

// ErrToolRegistered is returned when a tool name is registered twice.
var ErrToolRegistered = errors.New("tool already registered")

// ErrSessionNotFound is returned when a session ID cannot be found in
// the store.
var ErrSessionNotFound = errors.New("session not found")

// InvariantError reports a correctness bug inside the engine (negative
// weight, NaN score, non-monotonic spend). Unlike environmental
// failures it must never be swallowed by the fail-soft stage wrapper.
type InvariantError struct {
	Check  string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated (%s): %s", e.Check, e.Detail)
}

// Invariantf builds an InvariantError with a formatted detail.
func Invariantf(check, format string, args ...any) *InvariantError {
	return &InvariantError{Check: check, Detail: fmt.Sprintf(format, args...)}
}

// IsInvariant reports whether err is (or wraps) an InvariantError.
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}
