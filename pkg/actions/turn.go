package actions

import (
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/pipeline"
	"github.com/aretw0/gambit/pkg/query"
)

// Step ids of the turn pipelines.
const (
	StepEndTurn = "end_turn"
	StepFortify = "fortify"
)

// EndTurnPipeline moves to the next phase and schedules an action point refill
// for the actor at the start of that phase.
func (r Rules) EndTurnPipeline() *pipeline.Pipeline {
	return pipeline.New(string(EndTurn)).
		Step(StepEndTurn, r.endTurn).
		MustBuild()
}

func (r Rules) endTurn(sc *domain.SessionContext) pipeline.StepOutcome {
	next := r.NextPhase(sc.Snapshot.PhaseID)
	o := origin(sc)
	decisions := []domain.Decision{
		domain.SetPhase{DecisionBase: domain.Now(o), Phase: next},
	}

	if refill, ok := query.Of(sc).Field(sc.Command.ActorID, domain.ComponentActionPoints, domain.FieldMax); ok {
		decisions = append(decisions, domain.AdjustStat{
			DecisionBase: domain.Later(o, domain.At(next, domain.OnStateStart, domain.Single)),
			EntityID:     sc.Command.ActorID,
			Component:    domain.ComponentActionPoints,
			Field:        domain.FieldCurrent,
			Delta:        refill,
		})
	}
	return pipeline.CommitWith(decisions...)
}

// FortifyPipeline schedules a permanent heal of 1 for the actor at the start of
// every FortifyPhase.
func (r Rules) FortifyPipeline() *pipeline.Pipeline {
	return pipeline.New(string(Fortify)).
		Step(StepFortify, r.fortify).
		MustBuild()
}

func (r Rules) fortify(sc *domain.SessionContext) pipeline.StepOutcome {
	actor := sc.Command.ActorID
	for _, s := range query.Of(sc).Pending(r.FortifyPhase, domain.OnStateStart) {
		if t, ok := s.Decision.(domain.Targeted); ok && t.Target() == actor && s.Decision.Timing().Frequency == domain.Permanent {
			return pipeline.Abort("already fortified")
		}
	}
	o := origin(sc)
	return pipeline.CommitWith(
		domain.AdjustStat{
			DecisionBase: domain.Later(o, domain.At(r.FortifyPhase, domain.OnStateStart, domain.Permanent)),
			EntityID:     actor,
			Component:    domain.ComponentHealth,
			Field:        domain.FieldCurrent,
			Delta:        1,
		},
		spendActionPoint(o, actor),
	)
}
