package domain

// Well-known component names used by the reference rules and the handler's
// precondition checks.
const (
	ComponentHealth       = "health"
	ComponentActionPoints = "action_points"
	ComponentAttack       = "attack"
)

// Well-known component fields.
const (
	FieldCurrent = "current"
	FieldMax     = "max"
	FieldValue   = "value"
)

// Metadata keys carried by an InteractionRequest.
const (
	// MetaNotation holds the dice notation the provider should roll (e.g. "1d6").
	MetaNotation = "notation"
	// MetaThreshold holds the minimum roll that counts as a success.
	MetaThreshold = "threshold"
	// MetaVariable names the session variable the response value is stored under.
	MetaVariable = "variable"
)

// Variable keys written by the kernel into a SessionContext.
const (
	VarOutcome     = "outcome"
	VarExplanation = "explanation"
	VarCancelled   = "cancelled"
)

// Result tags attached to CommandResult.Tags.
const (
	TagCancelled = "cancelled"
	TagNoChange  = "no_change"
	TagScheduled = "scheduled"
)
