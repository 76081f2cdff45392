package orchestrator

import (
	"fmt"

	"github.com/aretw0/gambit/pkg/domain"
)

// UnregisteredApplierError is the panic value raised when a Decision has no Applier.
// It signals a wiring bug and is never converted into a failed command result.
type UnregisteredApplierError struct {
	Kind domain.DecisionKind
}

func (e *UnregisteredApplierError) Error() string {
	return fmt.Sprintf("no applier registered for decision kind %q", e.Kind)
}

// ApplyError reports an Applier that rejected its Decision.
type ApplyError struct {
	Kind     domain.DecisionKind
	OriginID string
	Err      error
}

func (e *ApplyError) Error() string {
	if e.OriginID != "" {
		return fmt.Sprintf("apply %s (origin %s): %v", e.Kind, e.OriginID, e.Err)
	}
	return fmt.Sprintf("apply %s: %v", e.Kind, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }
