package gambit_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/gambit"
	"github.com/aretw0/gambit/pkg/actions"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/runner"
)

// ExampleNew shows an attack resolved through the runner with a scripted die.
func ExampleNew() {
	ctx := context.Background()

	k, err := gambit.New(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := k.Setup(ctx, actions.Skirmish()...); err != nil {
		log.Fatal(err)
	}

	// The to-hit roll is answered with a 5.
	r := runner.NewRunner(runner.WithProvider(runner.NewScriptedProvider(5)))
	res, err := r.Run(ctx, k, domain.Command{
		Type:             actions.Attack,
		ActorID:          "knight",
		TargetID:         "goblin",
		ConsumesResource: true,
	})
	if err != nil {
		log.Fatal(err)
	}

	health, _ := k.Query().Field("goblin", domain.ComponentHealth, domain.FieldCurrent)
	ap, _ := k.Query().Field("knight", domain.ComponentActionPoints, domain.FieldCurrent)
	fmt.Println(res.Status, res.Variables[domain.VarOutcome])
	fmt.Println("goblin health:", health)
	fmt.Println("knight action points:", ap)
	// Output:
	// ok hit
	// goblin health: 4
	// knight action points: 1
}
