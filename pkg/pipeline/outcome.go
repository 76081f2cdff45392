package pipeline

import "github.com/aretw0/gambit/pkg/domain"

// OutcomeKind discriminates what a step asks the driver to do next.
type OutcomeKind int

const (
	outcomeInvalid OutcomeKind = iota
	OutcomeContinue
	OutcomeSuspend
	OutcomeCommit
	OutcomeEnd
	OutcomeAbort
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeContinue:
		return "continue"
	case OutcomeSuspend:
		return "suspend"
	case OutcomeCommit:
		return "commit"
	case OutcomeEnd:
		return "end"
	case OutcomeAbort:
		return "abort"
	}
	return "invalid"
}

// StepOutcome is the value returned by one step.
type StepOutcome struct {
	Kind      OutcomeKind
	Next      string
	Request   *domain.InteractionRequest
	Decisions []domain.Decision
	Reason    string
}

// Continue moves to next within the same Execute call.
func Continue(next string) StepOutcome {
	return StepOutcome{Kind: OutcomeContinue, Next: next}
}

// SuspendFor pauses the session until the host answers req; execution resumes at resumeAt.
func SuspendFor(req domain.InteractionRequest, resumeAt string) StepOutcome {
	return StepOutcome{Kind: OutcomeSuspend, Next: resumeAt, Request: &req}
}

// CommitWith finishes the pipeline with decisions to apply.
func CommitWith(decisions ...domain.Decision) StepOutcome {
	return StepOutcome{Kind: OutcomeCommit, Decisions: decisions}
}

// End finishes the pipeline without decisions.
func End() StepOutcome {
	return StepOutcome{Kind: OutcomeEnd}
}

// Abort rejects the command with a validation reason.
func Abort(reason string) StepOutcome {
	return StepOutcome{Kind: OutcomeAbort, Reason: reason}
}
