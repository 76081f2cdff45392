package actions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/pipeline"
	"github.com/aretw0/gambit/pkg/query"
)

// Step ids of the attack pipeline.
const (
	StepValidateRange = "validate_range"
	StepRequestToHit  = "request_to_hit"
	StepResolveHit    = "resolve_hit"
)

// VarRoll is the session variable holding the to-hit roll.
const VarRoll = "roll"

// AttackPipeline resolves an attack: range check, a suspended to-hit roll, then
// damage on a hit.
func (r Rules) AttackPipeline() *pipeline.Pipeline {
	return pipeline.New(string(Attack)).
		Step(StepValidateRange, r.validateRange).
		Step(StepRequestToHit, r.requestToHit).
		Step(StepResolveHit, r.resolveHit).
		Start(StepValidateRange).
		MustBuild()
}

func (r Rules) validateRange(sc *domain.SessionContext) pipeline.StepOutcome {
	q := query.Of(sc)
	actor, target := sc.Command.ActorID, sc.Command.TargetID
	if target == "" {
		return pipeline.Abort("attack requires a target")
	}
	if target == actor {
		return pipeline.Abort("an entity cannot attack itself")
	}
	if reason, ok := r.reachable(q, actor, target); !ok {
		return pipeline.Abort(reason)
	}

	sc.Set("damage", damage(q, actor))
	sc.Set("threshold", r.ToHitThreshold)
	return pipeline.Continue(StepRequestToHit)
}

// reachable checks the target against the snapshot the session runs on. It is
// run again after the roll because the board may have changed meanwhile.
func (r Rules) reachable(q query.Service, actor, target domain.EntityID) (string, bool) {
	if !q.Alive(target) {
		return fmt.Sprintf("target %s not found", target), false
	}
	if !q.InRange(actor, target, r.AttackRange) {
		return fmt.Sprintf("target %s is out of range", target), false
	}
	return "", true
}

func damage(q query.Service, actor domain.EntityID) int {
	if v, ok := q.Field(actor, domain.ComponentAttack, domain.FieldValue); ok && v > 0 {
		return v
	}
	return 1
}

func (r Rules) requestToHit(sc *domain.SessionContext) pipeline.StepOutcome {
	return pipeline.SuspendFor(domain.InteractionRequest{
		Type:   domain.InteractionDiceRoll,
		Prompt: fmt.Sprintf("Roll to hit (%s, need %d+)", r.ToHitNotation, r.ToHitThreshold),
		Metadata: map[string]string{
			domain.MetaNotation:  r.ToHitNotation,
			domain.MetaThreshold: itoa(r.ToHitThreshold),
			domain.MetaVariable:  VarRoll,
		},
	}, StepResolveHit)
}

// resolveHit trusts only the roll from the session variables; threshold and
// damage come from the rules and the current snapshot.
func (r Rules) resolveHit(sc *domain.SessionContext) pipeline.StepOutcome {
	if !sc.Has(VarRoll) {
		return pipeline.Abort("no roll was provided")
	}
	roll, ok := sc.Int(VarRoll)
	if text, isText := sc.String(VarRoll); isText {
		n, err := strconv.Atoi(strings.TrimSpace(text))
		roll, ok = n, err == nil
	}
	if !ok {
		return pipeline.Abort(fmt.Sprintf("invalid roll %v", sc.Variables[VarRoll]))
	}

	q := query.Of(sc)
	actor, target := sc.Command.ActorID, sc.Command.TargetID
	if _, err := q.Entity(actor); err != nil {
		return pipeline.Abort(fmt.Sprintf("actor %s not found", actor))
	}
	if reason, ok := r.reachable(q, actor, target); !ok {
		return pipeline.Abort(reason)
	}

	if roll < r.ToHitThreshold {
		return missf(sc, "rolled %d, needed %d+", roll, r.ToHitThreshold)
	}

	sc.Set(domain.VarOutcome, "hit")
	o := origin(sc)
	return pipeline.CommitWith(
		domain.AdjustStat{
			DecisionBase: domain.Now(o),
			EntityID:     sc.Command.TargetID,
			Component:    domain.ComponentHealth,
			Field:        domain.FieldCurrent,
			Delta:        -damage(q, actor),
		},
		spendActionPoint(o, sc.Command.ActorID),
	)
}
