package domain

import (
	"context"
	"time"
)

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventStageEnter EventType = "stage_enter"
	EventStageLeave EventType = "stage_leave"
	EventToolCall   EventType = "tool_call"
	EventToolReturn EventType = "tool_return"
)

// StageEvent describes entry into or exit from a pipeline stage.
type StageEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Stage     string    `json:"stage"`
	StepIndex int       `json:"step_index"`
	Error     string    `json:"error,omitempty"`
	LatencyMS int64     `json:"latency_ms,omitempty"`
}

// ToolEvent describes a tool invocation through the registry.
type ToolEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Type        EventType `json:"type"`
	Tool        string    `json:"tool"`
	Attempts    int       `json:"attempts,omitempty"`
	CircuitOpen bool      `json:"circuit_open,omitempty"`
	IsError     bool      `json:"is_error,omitempty"`
	ErrorKind   ErrorKind `json:"error_kind,omitempty"`
	LatencyMS   int64     `json:"latency_ms,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability. Any field
// may be nil. Hooks run synchronously on the request path and must be
// fast.
type LifecycleHooks struct {
	OnStageEnter func(context.Context, *StageEvent)
	OnStageLeave func(context.Context, *StageEvent)
	OnToolCall   func(context.Context, *ToolEvent)
	OnToolReturn func(context.Context, *ToolEvent)
}

// Merge layers other on top of h, calling both where both are set.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStageEnter: chainStage(h.OnStageEnter, other.OnStageEnter),
		OnStageLeave: chainStage(h.OnStageLeave, other.OnStageLeave),
		OnToolCall:   chainTool(h.OnToolCall, other.OnToolCall),
		OnToolReturn: chainTool(h.OnToolReturn, other.OnToolReturn),
	}
}

func chainStage(a, b func(context.Context, *StageEvent)) func(context.Context, *StageEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *StageEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainTool(a, b func(context.Context, *ToolEvent)) func(context.Context, *ToolEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *ToolEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
