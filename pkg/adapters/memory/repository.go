package memory

import (
	"context"
	"sync"

	"github.com/aretw0/gambit/pkg/domain"
)

// Repository implements ports.StateRepository in memory.
// States are immutable values, so no copy is needed on save or load.
type Repository struct {
	mu    sync.RWMutex
	state *domain.State
	saves int
}

// NewRepository creates an empty repository.
func NewRepository() *Repository {
	return &Repository{}
}

// NewRepositoryWith creates a repository that already holds s.
func NewRepositoryWith(s domain.State) *Repository {
	return &Repository{state: &s}
}

// LoadState returns the last saved State.
func (r *Repository) LoadState(ctx context.Context) (domain.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state == nil {
		return domain.State{}, domain.ErrStateNotFound
	}
	return *r.state, nil
}

// SaveState replaces the stored State.
func (r *Repository) SaveState(ctx context.Context, s domain.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = &s
	r.saves++
	return nil
}

// Saves reports how many times SaveState was called.
func (r *Repository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}
