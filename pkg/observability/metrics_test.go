package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/observability"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnDecisionApplied(ctx, &domain.DecisionEvent{Kind: domain.KindAdjustStat, Version: 7})
	hooks.OnDecisionApplied(ctx, &domain.DecisionEvent{Kind: domain.KindAdjustStat, Version: 8})
	hooks.OnCommandHandled(ctx, &domain.CommandEvent{CommandType: "attack", Status: domain.StatusSuspended, Duration: time.Millisecond})
	hooks.OnSessionSuspended(ctx, &domain.SessionEvent{SessionID: "s"})
	hooks.OnSessionResumed(ctx, &domain.SessionEvent{SessionID: "s"})
	hooks.OnSessionEvicted(ctx, &domain.SessionEvent{SessionID: "s", Reason: "expired"})

	families, err := m.Registry().Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `gambit_decisions_applied_total{kind="adjust_stat"} 2`)
	assert.Contains(t, body, `gambit_commands_total{status="suspended",type="attack"} 1`)
	assert.Contains(t, body, "gambit_sessions_suspended_total 1")
	assert.Contains(t, body, "gambit_sessions_resumed_total 1")
	assert.Contains(t, body, `gambit_sessions_evicted_total{reason="expired"} 1`)
	assert.Contains(t, body, "gambit_state_version 8")
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hooks := domain.ComposeHooks(observability.LogHooks(logger))

	hooks.OnCommandHandled(context.Background(), &domain.CommandEvent{CommandType: "move", Status: domain.StatusOK})
	hooks.OnSessionEvicted(context.Background(), &domain.SessionEvent{SessionID: "s-1", Reason: "cancelled"})

	out := buf.String()
	assert.Contains(t, out, "command_handled")
	assert.Contains(t, out, "type=move")
	assert.Contains(t, out, "reason=cancelled")
}
