/*
Package domain contains the core domain models of the gambit rules kernel.

It defines the values that flow through the kernel: Commands and their
CommandResults, Decisions with their scheduling Timing, the persistent State
snapshot, and the SessionContext that carries a suspended Action Pipeline
between an InteractionRequest and its InteractionResponse. This package is kept
pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Command: an immutable intent (type tag, acting entity, resource flag).
  - Decision: an immutable description of a state mutation, tagged with a Kind.
  - Scheduler: a persistent queue of Decisions waiting for a phase trigger.
  - State: an immutable snapshot (board, entities, metadata, phase, pending queue).
  - SessionContext: the resumable record of an in-flight multi-step action.
  - Effect: an immutable record of what happened, for observers only.
*/
package domain
