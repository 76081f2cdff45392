package domain

// Trigger defines when a scheduled Decision fires relative to a phase.
type Trigger string

const (
	OnStateStart          Trigger = "on_state_start"
	OnStateEnd            Trigger = "on_state_end"
	OnCommandExecutionEnd Trigger = "on_command_execution_end"
)

// Frequency defines whether a scheduled Decision fires once or on every match.
type Frequency string

const (
	Single    Frequency = "single"
	Permanent Frequency = "permanent"
)

// Timing tags a Decision with when it should be applied.
// An empty Phase means "no phase".
type Timing struct {
	When      Trigger   `json:"when"`
	Phase     string    `json:"phase,omitempty"`
	Frequency Frequency `json:"frequency"`
}

// Immediate is the timing of decisions applied at the end of the command that produced them.
func Immediate() Timing {
	return Timing{When: OnCommandExecutionEnd, Frequency: Single}
}

// At builds a Timing for a phase trigger.
func At(phase string, when Trigger, freq Frequency) Timing {
	return Timing{When: when, Phase: phase, Frequency: freq}
}

// IsImmediate reports whether the timing equals Immediate().
func (t Timing) IsImmediate() bool {
	return t.When == OnCommandExecutionEnd && t.Phase == "" && t.Frequency == Single
}

// Matches reports whether the timing fires for the given trigger.
func (t Timing) Matches(phase string, when Trigger) bool {
	return t.Phase == phase && t.When == when
}

// DecisionKind is the stable discriminant used to route a Decision to its Applier.
type DecisionKind string

// Decision is an immutable data description of a state mutation.
// Concrete variants embed DecisionBase and return a unique Kind.
type Decision interface {
	Kind() DecisionKind
	Timing() Timing
	Origin() string
}

// DecisionBase carries the fields shared by every Decision variant.
type DecisionBase struct {
	Schedule Timing `json:"timing"`
	// OriginID records provenance (the command or session that produced the decision).
	OriginID string `json:"origin_id,omitempty"`
}

// Timing returns when the decision fires.
func (b DecisionBase) Timing() Timing { return b.Schedule }

// Origin returns the provenance id.
func (b DecisionBase) Origin() string { return b.OriginID }

// Now returns a base for an immediate decision originating from originID.
func Now(originID string) DecisionBase {
	return DecisionBase{Schedule: Immediate(), OriginID: originID}
}

// Later returns a base for a scheduled decision originating from originID.
func Later(originID string, timing Timing) DecisionBase {
	return DecisionBase{Schedule: timing, OriginID: originID}
}
