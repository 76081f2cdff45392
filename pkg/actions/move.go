package actions

import (
	"fmt"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/pipeline"
)

// StepValidateMove is the only step of the move pipeline.
const StepValidateMove = "validate_move"

type moveArgs struct {
	To string `mapstructure:"to"`
}

// MovePipeline moves the actor to an adjacent tile given in payload "to".
func (r Rules) MovePipeline() *pipeline.Pipeline {
	return pipeline.New(string(Move)).
		Step(StepValidateMove, r.validateMove).
		MustBuild()
}

func (r Rules) validateMove(sc *domain.SessionContext) pipeline.StepOutcome {
	var args moveArgs
	if err := pipeline.DecodePayload(sc.Command, &args); err != nil {
		return pipeline.Abort(fmt.Sprintf("invalid move: %v", err))
	}
	if args.To == "" {
		return pipeline.Abort("move requires a destination tile")
	}

	actor, ok := sc.Snapshot.Entity(sc.Command.ActorID)
	if !ok {
		return pipeline.Abort(fmt.Sprintf("actor %s not found", sc.Command.ActorID))
	}
	to := domain.TileID(args.To)
	if !sc.Snapshot.Board.Has(to) {
		return pipeline.Abort(fmt.Sprintf("tile %s does not exist", to))
	}
	if !sc.Snapshot.Board.Adjacent(actor.Tile, to) {
		return pipeline.Abort(fmt.Sprintf("tile %s is not adjacent to %s", to, actor.Tile))
	}

	o := origin(sc)
	return pipeline.CommitWith(
		domain.MoveEntity{DecisionBase: domain.Now(o), EntityID: actor.ID, To: to},
		spendActionPoint(o, actor.ID),
	)
}
