package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/gambit/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one structured record per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDecisionApplied: func(ctx context.Context, e *domain.DecisionEvent) {
			logger.DebugContext(ctx, "decision_applied",
				"kind", e.Kind,
				"origin", e.OriginID,
				"when", e.Timing.When,
				"phase", e.Timing.Phase,
				"version", e.Version,
			)
		},
		OnCommandHandled: func(ctx context.Context, e *domain.CommandEvent) {
			logger.InfoContext(ctx, "command_handled",
				"type", e.CommandType,
				"session_id", e.SessionID,
				"status", e.Status,
				"duration", e.Duration,
			)
		},
		OnSessionSuspended: func(ctx context.Context, e *domain.SessionEvent) {
			logger.InfoContext(ctx, "session_suspended", "session_id", e.SessionID, "resume_at", e.NodeID)
		},
		OnSessionResumed: func(ctx context.Context, e *domain.SessionEvent) {
			logger.InfoContext(ctx, "session_resumed", "session_id", e.SessionID, "node_id", e.NodeID)
		},
		OnSessionEvicted: func(ctx context.Context, e *domain.SessionEvent) {
			logger.InfoContext(ctx, "session_evicted", "session_id", e.SessionID, "reason", e.Reason)
		},
	}
}
