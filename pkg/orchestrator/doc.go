// Package orchestrator owns the authoritative game State.
//
// Every mutation goes through an Applier looked up by the decision's Kind in an
// explicit Registry. Decisions may be applied now (Apply, Commit) or queued on
// the State's Scheduler until a phase trigger fires (Enqueue, ExecuteScheduled,
// AdvancePhase).
//
// Each operation is a transaction: it runs against a working copy of the State
// and publishes the result only when every Applier succeeded.
package orchestrator
