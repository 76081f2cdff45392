/*
Package ports defines the driven ports (interfaces) of the gambit kernel.

These interfaces decouple the kernel from external implementations, allowing it
to work with various storage backends, effect observers and randomness sources.

# Key Interfaces

  - StateRepository: loads and saves the authoritative State snapshot.
  - SessionStore: persists suspended SessionContexts between suspend and resume.
  - DistributedLocker: coordinates exclusive access to a session across replicas.
  - EffectSink: fire-and-forget publication of Effects.
  - DiceRoller: resolves dice notation for interaction providers.
  - CommandProcessor: the driving port adapters (HTTP, runner) call into.
*/
package ports
