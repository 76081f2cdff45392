/*
Package handler is the glue between a Command and the kernel.

Handle validates a command, checks actor preconditions against the current
State, looks up the command's pipeline and drives it. The pipeline's outcome is
turned into a uniform CommandResult:

  - Completed: decisions are committed through the Orchestrator, decisions
    scheduled for OnCommandExecutionEnd fire, the State is saved and effects
    are emitted. The result is Ok.
  - Suspended: the SessionContext is registered and the result is Suspended,
    carrying an InteractionRequest whose SessionID correlates the later Resume.
  - Failed: the result is Fail with the reason.

Resume continues a suspended session from its resume step. A cancelled response
evicts the session and returns Ok tagged "cancelled".

Validation failures become Fail results. Wiring faults do not: an unknown
session, a storage error or an Applier error is returned as a Go error, and a
missing Applier or a malformed pipeline panics.
*/
package handler
