package ports

import (
	"context"

	"github.com/aretw0/gambit/pkg/domain"
)

// CommandProcessor is the driving port used by adapters (HTTP, runner, CLI).
type CommandProcessor interface {
	// Handle resolves a new Command.
	Handle(ctx context.Context, cmd domain.Command) (domain.CommandResult, error)

	// Resume continues a suspended session with an interaction response.
	Resume(ctx context.Context, resp domain.InteractionResponse) (domain.CommandResult, error)

	// State returns the current authoritative State.
	State() domain.State
}
