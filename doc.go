/*
Package gambit is a turn-based rules transaction kernel.

It resolves player Commands into Decisions through declarative pipelines,
applies them atomically to an immutable game State, and pauses resolution
whenever a rule needs outside input (a dice roll, a confirmation) until an
InteractionResponse resumes it.

# Concept

The kernel splits a turn into three layers:

  - Pipelines (pkg/pipeline) read a snapshot of the State and decide what
    should happen. They never mutate anything.
  - The Orchestrator (pkg/orchestrator) is the only writer. It applies each
    Decision through its registered Applier inside a transaction, and keeps
    timed Decisions in a scheduler until their phase boundary fires.
  - The Handler (pkg/handler) drives one Command through its pipeline,
    suspends and resumes sessions, and commits the outcome.

Adapters plug the kernel into the outside world: session stores (memory,
file, sqlite, redis), an HTTP server, and an interactive runner.

# Usage

	k, err := gambit.New(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := k.Setup(ctx, actions.Skirmish()...); err != nil {
		log.Fatal(err)
	}

	r := runner.NewRunner(runner.WithProvider(runner.NewDiceProvider(roller)))
	res, err := r.Run(ctx, k, domain.Command{
		Type:             actions.Attack,
		ActorID:          "knight",
		TargetID:         "goblin",
		ConsumesResource: true,
	})

Handle and Resume can also be called directly when the host owns the
interaction loop, e.g. behind HTTP.
*/
package gambit
