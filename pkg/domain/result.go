package domain

// ResultStatus discriminates the three outcomes of handling a Command.
type ResultStatus string

const (
	StatusOK        ResultStatus = "ok"
	StatusSuspended ResultStatus = "suspended"
	StatusFailed    ResultStatus = "failed"
)

// CommandResult is the immutable outcome of handling (or resuming) a Command.
type CommandResult struct {
	Status ResultStatus `json:"status"`

	// Decisions are the decisions committed by the pipeline (Ok only).
	Decisions []Decision `json:"-"`
	// Tags are free-form labels describing the outcome (e.g. "cancelled").
	Tags []string `json:"tags,omitempty"`
	// Effects are the effects produced while applying Decisions.
	Effects []Effect `json:"effects,omitempty"`

	// Request is set when Status == StatusSuspended.
	Request *InteractionRequest `json:"request,omitempty"`

	// Reason is set when Status == StatusFailed.
	Reason string `json:"reason,omitempty"`

	// Variables exposes the final session variables (e.g. a miss explanation).
	Variables map[string]any `json:"variables,omitempty"`
}

// Ok builds a successful result.
func Ok(decisions []Decision, tags ...string) CommandResult {
	return CommandResult{Status: StatusOK, Decisions: decisions, Tags: tags}
}

// Suspended builds a result that hands an InteractionRequest to the caller.
func Suspended(req InteractionRequest) CommandResult {
	return CommandResult{Status: StatusSuspended, Request: &req}
}

// Fail builds a validation failure result.
func Fail(reason string) CommandResult {
	return CommandResult{Status: StatusFailed, Reason: reason}
}

// IsOK reports whether the command completed.
func (r CommandResult) IsOK() bool { return r.Status == StatusOK }

// IsSuspended reports whether the command is waiting for external input.
func (r CommandResult) IsSuspended() bool { return r.Status == StatusSuspended }

// IsFailed reports whether the command was rejected.
func (r CommandResult) IsFailed() bool { return r.Status == StatusFailed }

// HasTag reports whether the result carries the given tag.
func (r CommandResult) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
