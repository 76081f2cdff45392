package domain

import (
	"context"
	"time"
)

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventDecisionApplied  EventType = "decision_applied"
	EventCommandHandled   EventType = "command_handled"
	EventSessionSuspended EventType = "session_suspended"
	EventSessionResumed   EventType = "session_resumed"
	EventSessionEvicted   EventType = "session_evicted"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// DecisionEvent is reported after an Applier ran.
type DecisionEvent struct {
	EventBase
	Kind     DecisionKind `json:"kind"`
	OriginID string       `json:"origin_id,omitempty"`
	Timing   Timing       `json:"timing"`
	Effects  int          `json:"effects"`
	Version  uint64       `json:"version"`
}

// CommandEvent is reported when a Handle or Resume call returns.
type CommandEvent struct {
	EventBase
	CommandType CommandType   `json:"command_type"`
	SessionID   string        `json:"session_id,omitempty"`
	Status      ResultStatus  `json:"status"`
	Duration    time.Duration `json:"duration"`
}

// SessionEvent is reported when a session suspends, resumes or is evicted.
type SessionEvent struct {
	EventBase
	SessionID string `json:"session_id"`
	NodeID    string `json:"node_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// LifecycleHooks defines callbacks for kernel observability.
// Every hook is optional.
type LifecycleHooks struct {
	OnDecisionApplied  func(context.Context, *DecisionEvent)
	OnCommandHandled   func(context.Context, *CommandEvent)
	OnSessionSuspended func(context.Context, *SessionEvent)
	OnSessionResumed   func(context.Context, *SessionEvent)
	OnSessionEvicted   func(context.Context, *SessionEvent)
}

// ComposeHooks returns hooks that call every non-nil hook of each set, in order.
func ComposeHooks(sets ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, h := range sets {
		h := h
		out.OnDecisionApplied = chain(out.OnDecisionApplied, h.OnDecisionApplied)
		out.OnCommandHandled = chain(out.OnCommandHandled, h.OnCommandHandled)
		out.OnSessionSuspended = chain(out.OnSessionSuspended, h.OnSessionSuspended)
		out.OnSessionResumed = chain(out.OnSessionResumed, h.OnSessionResumed)
		out.OnSessionEvicted = chain(out.OnSessionEvicted, h.OnSessionEvicted)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
