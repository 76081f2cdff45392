package actions_test

import (
	"testing"
	"time"

	"github.com/aretw0/gambit/pkg/actions"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func duel() domain.State {
	return domain.NewState(actions.PhaseMain).
		WithBoard(domain.NewBoard("duel", "x", "y").Connect("x", "y")).
		WithEntity(domain.Entity{ID: "a", Tile: "x", Components: map[string]domain.Component{
			domain.ComponentActionPoints: {domain.FieldCurrent: 1, domain.FieldMax: 3},
		}}).
		WithEntity(domain.Entity{ID: "b", Tile: "y", Components: map[string]domain.Component{
			domain.ComponentHealth: {domain.FieldCurrent: 2, domain.FieldMax: 2},
		}})
}

func session(cmd domain.Command) *domain.SessionContext {
	return domain.NewSessionContext("s1", cmd, duel(), time.Unix(0, 0))
}

func TestRules_NextPhase(t *testing.T) {
	r := actions.DefaultRules()
	assert.Equal(t, actions.PhaseMain, r.NextPhase(actions.PhaseUpkeep))
	assert.Equal(t, actions.PhaseUpkeep, r.NextPhase(actions.PhaseMain))
	assert.Equal(t, actions.PhaseUpkeep, r.NextPhase("setup"))

	assert.Equal(t, "x", actions.Rules{}.NextPhase("x"))
}

func TestCatalog(t *testing.T) {
	c, err := actions.Catalog(actions.DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, []domain.CommandType{actions.Attack, actions.EndTurn, actions.Fortify, actions.Move}, c.Types())
}

func TestAttack_DefaultDamage(t *testing.T) {
	p := actions.DefaultRules().AttackPipeline()
	sc := session(domain.Command{ID: "c1", Type: actions.Attack, ActorID: "a", TargetID: "b"})

	res := p.Execute(sc)
	require.Equal(t, pipeline.Suspended, res.Status)
	assert.Equal(t, "s1", res.Request.SessionID)

	sc.Set(actions.VarRoll, "6")
	res = p.Execute(sc)
	require.Equal(t, pipeline.Completed, res.Status)
	require.Len(t, res.Decisions, 2)

	hit, ok := res.Decisions[0].(domain.AdjustStat)
	require.True(t, ok)
	assert.Equal(t, -1, hit.Delta, "no attack component means 1 damage")
	assert.Equal(t, "c1", hit.Origin())
	assert.True(t, hit.Timing().IsImmediate())
}

func TestAttack_Aborts(t *testing.T) {
	p := actions.DefaultRules().AttackPipeline()
	tests := []struct {
		name   string
		target domain.EntityID
		reason string
	}{
		{"no target", "", "requires a target"},
		{"self", "a", "cannot attack itself"},
		{"missing", "zz", "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Execute(session(domain.Command{Type: actions.Attack, ActorID: "a", TargetID: tt.target}))
			assert.Equal(t, pipeline.Failed, res.Status)
			assert.Contains(t, res.Reason, tt.reason)
		})
	}
}

func TestAttack_ResumeWithoutRoll(t *testing.T) {
	p := actions.DefaultRules().AttackPipeline()
	sc := session(domain.Command{Type: actions.Attack, ActorID: "a", TargetID: "b"})
	require.Equal(t, pipeline.Suspended, p.Execute(sc).Status)

	res := p.Execute(sc)
	assert.Equal(t, pipeline.Failed, res.Status)
	assert.Equal(t, "no roll was provided", res.Reason)
}

func TestAttack_RulesIgnoreInjectedVariables(t *testing.T) {
	p := actions.DefaultRules().AttackPipeline()
	sc := session(domain.Command{Type: actions.Attack, ActorID: "a", TargetID: "b"})
	require.Equal(t, pipeline.Suspended, p.Execute(sc).Status)

	sc.Set(actions.VarRoll, 1)
	sc.Set("threshold", 0)
	sc.Set("damage", 99)
	res := p.Execute(sc)

	require.Equal(t, pipeline.Completed, res.Status)
	assert.Empty(t, res.Decisions)
	assert.Equal(t, "miss", sc.Variables[domain.VarOutcome])
	assert.Equal(t, "rolled 1, needed 4+", sc.Variables[domain.VarExplanation])
}

func TestAttack_InvalidRolls(t *testing.T) {
	p := actions.DefaultRules().AttackPipeline()
	for _, roll := range []any{3.9, "four", true} {
		sc := session(domain.Command{Type: actions.Attack, ActorID: "a", TargetID: "b"})
		require.Equal(t, pipeline.Suspended, p.Execute(sc).Status)

		sc.Set(actions.VarRoll, roll)
		res := p.Execute(sc)
		assert.Equal(t, pipeline.Failed, res.Status, "roll %v", roll)
		assert.Contains(t, res.Reason, "invalid roll")
	}
}

func TestAttack_TargetGoneWhileSuspended(t *testing.T) {
	p := actions.DefaultRules().AttackPipeline()
	sc := session(domain.Command{Type: actions.Attack, ActorID: "a", TargetID: "b"})
	require.Equal(t, pipeline.Suspended, p.Execute(sc).Status)

	moved := duel().WithEntities(duel().Entities.Delete("b"))
	sc.Snapshot = &moved
	sc.Set(actions.VarRoll, 6)

	res := p.Execute(sc)
	assert.Equal(t, pipeline.Failed, res.Status)
	assert.Contains(t, res.Reason, "target b not found")
	assert.Empty(t, res.Decisions)
}

func TestEndTurn_SchedulesRefill(t *testing.T) {
	res := actions.DefaultRules().EndTurnPipeline().Execute(session(domain.Command{Type: actions.EndTurn, ActorID: "a"}))
	require.Equal(t, pipeline.Completed, res.Status)
	require.Len(t, res.Decisions, 2)

	phase, ok := res.Decisions[0].(domain.SetPhase)
	require.True(t, ok)
	assert.Equal(t, actions.PhaseUpkeep, phase.Phase)

	refill := res.Decisions[1]
	assert.Equal(t, domain.At(actions.PhaseUpkeep, domain.OnStateStart, domain.Single), refill.Timing())
	assert.Equal(t, 3, refill.(domain.AdjustStat).Delta)
}

func TestEndTurn_NoActionPoints(t *testing.T) {
	res := actions.DefaultRules().EndTurnPipeline().Execute(session(domain.Command{Type: actions.EndTurn, ActorID: "b"}))
	require.Equal(t, pipeline.Completed, res.Status)
	assert.Len(t, res.Decisions, 1)
}

func TestMove_InvalidDestination(t *testing.T) {
	p := actions.DefaultRules().MovePipeline()

	res := p.Execute(session(domain.Command{Type: actions.Move, ActorID: "a"}))
	assert.Contains(t, res.Reason, "requires a destination")

	res = p.Execute(session(domain.Command{Type: actions.Move, ActorID: "a", Payload: map[string]any{"to": "nowhere"}}))
	assert.Contains(t, res.Reason, "does not exist")
}
