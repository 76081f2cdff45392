/*
Package pipeline implements suspendable, multi-step command resolution.

A Pipeline is a directed graph of named steps. Each step reads and writes the
SessionContext and returns a StepOutcome:

  - Continue(next) moves to another step in the same call.
  - SuspendFor(request, resumeAt) stops and hands an InteractionRequest to the host.
    The next Execute call on the same context starts at resumeAt; steps that
    already ran are never repeated.
  - CommitWith(decisions...) finishes with decisions for the Orchestrator.
  - End() finishes without decisions.
  - Abort(reason) rejects the command.

Pipelines are declared with the fluent Builder:

	p, err := pipeline.New("attack").
		Step("validate_range", validateRange).
		Step("request_to_hit", requestToHit).
		Step("resolve_hit", resolveHit).
		Build()

The first declared step is the start step unless Start is called.
*/
package pipeline
