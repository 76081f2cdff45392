/*
Package runner implements the host loop around a CommandProcessor.

A command is handled; while the result is suspended, the runner asks an
InteractionProvider for a response and resumes the session. The loop ends on an
Ok or Fail result, a provider error, or context cancellation. On cancellation
the runner sends a cancelled response so the suspended session is evicted.

# Key Components

  - Runner: the loop itself.
  - InteractionProvider: answers an InteractionRequest (dice, scripted, text, JSON lines).
  - Middleware: wraps providers (logging, echoing prompts).

# Usage

	roller, _ := dice.NewRandomRoller()
	r := runner.NewRunner(
		runner.WithProvider(runner.NewDiceProvider(roller)),
		runner.WithLogger(logger),
	)

	res, err := r.Run(ctx, kernel, cmd)
*/
package runner
