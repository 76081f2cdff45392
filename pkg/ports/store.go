package ports

import (
	"context"

	"github.com/aretw0/gambit/pkg/domain"
)

// StateRepository loads and saves the authoritative State.
// No transactional guarantees are assumed; the handler treats each call as a
// single atomic step bracketing command handling.
type StateRepository interface {
	// LoadState returns the latest saved State.
	// Returns domain.ErrStateNotFound if nothing was saved yet.
	LoadState(ctx context.Context) (domain.State, error)

	// SaveState persists a State snapshot.
	SaveState(ctx context.Context, state domain.State) error
}

// SessionStore persists suspended sessions, enabling "Suspend & Resume" across processes.
type SessionStore interface {
	// Save persists the context under its SessionID.
	Save(ctx context.Context, session *domain.SessionContext) error

	// Load retrieves a session.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.SessionContext, error)

	// Delete removes a session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the ids of the stored sessions.
	List(ctx context.Context) ([]string, error)
}
