package domain

import (
	"context"
	"fmt"
)

// ErrorKind classifies tool failures. Stages treat every kind
// identically (no data, continue fail-soft); the kind exists for
// metadata and metrics.
type ErrorKind string

const (
	ErrKindTimeout     ErrorKind = "timeout"
	ErrKindConnection  ErrorKind = "connection"
	ErrKindValidation  ErrorKind = "validation"
	ErrKindCircuitOpen ErrorKind = "circuit_open"
	ErrKindCanceled    ErrorKind = "canceled"
	ErrKindInternal    ErrorKind = "internal"
)

// ToolError carries the failure classification inside a ToolResult.
type ToolError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// ToolFunc is the signature every registered tool implements.
type ToolFunc func(ctx context.Context, payload map[string]any) (any, error)

// ToolResult is the stable envelope returned by every tool invocation.
// It is always returned, never replaced by a panic or error escaping
// the invoker; this is the stability contract the pipeline depends on.
type ToolResult struct {
	Success     bool       `json:"success"`
	Data        any        `json:"data,omitempty"`
	Err         *ToolError `json:"error,omitempty"`
	LatencyMS   int64      `json:"latency_ms"`
	Attempts    int        `json:"attempts"`
	CircuitOpen bool       `json:"circuit_open"`
}

// ErrKind returns the failure kind, or the empty string on success.
func (r ToolResult) ErrKind() ErrorKind {
	if r.Err == nil {
		return ""
	}
	return r.Err.Kind
}
