package actions

import (
	"fmt"
	"strconv"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/pipeline"
	"github.com/aretw0/gambit/pkg/registry"
)

// Command types resolved by this package.
const (
	Attack  domain.CommandType = "attack"
	Move    domain.CommandType = "move"
	EndTurn domain.CommandType = "end_turn"
	Fortify domain.CommandType = "fortify"
)

// Phases of the default turn cycle.
const (
	PhaseUpkeep = "upkeep"
	PhaseMain   = "main"
)

// Rules holds the tunables of the reference rule set.
type Rules struct {
	// Phases is the turn cycle end_turn walks through.
	Phases []string
	// ToHitNotation is the dice rolled to hit.
	ToHitNotation string
	// ToHitThreshold is the minimum roll that hits.
	ToHitThreshold int
	// AttackRange is the maximum tile distance between attacker and target.
	AttackRange int
	// FortifyPhase is the phase whose start heals a fortified entity.
	FortifyPhase string
}

// DefaultRules returns the reference tunables.
func DefaultRules() Rules {
	return Rules{
		Phases:         []string{PhaseUpkeep, PhaseMain},
		ToHitNotation:  "1d6",
		ToHitThreshold: 4,
		AttackRange:    1,
		FortifyPhase:   PhaseUpkeep,
	}
}

// NextPhase returns the phase following current in the cycle.
// An unknown phase restarts the cycle.
func (r Rules) NextPhase(current string) string {
	if len(r.Phases) == 0 {
		return current
	}
	for i, p := range r.Phases {
		if p == current {
			return r.Phases[(i+1)%len(r.Phases)]
		}
	}
	return r.Phases[0]
}

// Entries returns the catalog entries of the reference rules.
func (r Rules) Entries() []registry.Entry {
	return []registry.Entry{
		{Type: Attack, Pipeline: r.AttackPipeline()},
		{Type: Move, Pipeline: r.MovePipeline()},
		{Type: EndTurn, Pipeline: r.EndTurnPipeline()},
		{Type: Fortify, Pipeline: r.FortifyPipeline()},
	}
}

// Catalog builds a catalog with the reference rules.
func Catalog(r Rules) (*registry.Catalog, error) {
	return registry.NewCatalog(r.Entries()...)
}

// MustCatalog is like Catalog but panics on error.
func MustCatalog(r Rules) *registry.Catalog {
	c, err := Catalog(r)
	if err != nil {
		panic(err)
	}
	return c
}

func spendActionPoint(origin string, actor domain.EntityID) domain.Decision {
	return domain.AdjustStat{
		DecisionBase: domain.Now(origin),
		EntityID:     actor,
		Component:    domain.ComponentActionPoints,
		Field:        domain.FieldCurrent,
		Delta:        -1,
	}
}

func origin(sc *domain.SessionContext) string {
	if sc.Command.ID != "" {
		return sc.Command.ID
	}
	return sc.SessionID
}

func itoa(n int) string { return strconv.Itoa(n) }

func missf(sc *domain.SessionContext, format string, args ...any) pipeline.StepOutcome {
	sc.Set(domain.VarOutcome, "miss")
	sc.Set(domain.VarExplanation, fmt.Sprintf(format, args...))
	return pipeline.End()
}
