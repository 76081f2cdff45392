package orchestrator

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/gambit/pkg/domain"
)

// Applier turns a Decision and a State into the next State plus the effects it caused.
// It must be deterministic and must not touch anything besides its return values.
type Applier func(d domain.Decision, s domain.State) (domain.State, []domain.Effect, error)

// Registration binds one Applier to one DecisionKind.
type Registration struct {
	Kind  domain.DecisionKind
	Apply Applier
}

var (
	// ErrDuplicateApplier is returned when a kind is registered twice.
	ErrDuplicateApplier = errors.New("applier already registered")
	// ErrDecisionType is returned when an Applier receives a variant it was not written for.
	ErrDecisionType = errors.New("unexpected decision type")
)

// Bind adapts a typed applier function into a Registration for its variant.
func Bind[D domain.Decision](fn func(D, domain.State) (domain.State, []domain.Effect, error)) Registration {
	var zero D
	return Registration{
		Kind: zero.Kind(),
		Apply: func(d domain.Decision, s domain.State) (domain.State, []domain.Effect, error) {
			typed, ok := d.(D)
			if !ok {
				return s, nil, fmt.Errorf("%w: want %T, got %T", ErrDecisionType, zero, d)
			}
			return fn(typed, s)
		},
	}
}

// Registry maps decision kinds to Appliers.
type Registry struct {
	mu       sync.RWMutex
	appliers map[domain.DecisionKind]Applier
}

// NewRegistry builds a registry from an explicit registration list.
func NewRegistry(regs ...Registration) (*Registry, error) {
	r := &Registry{appliers: make(map[domain.DecisionKind]Applier, len(regs))}
	for _, reg := range regs {
		if err := r.Register(reg); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on error.
func MustNewRegistry(regs ...Registration) *Registry {
	r, err := NewRegistry(regs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds one Applier. Registering a kind twice is an error.
func (r *Registry) Register(reg Registration) error {
	if reg.Kind == "" || reg.Apply == nil {
		return fmt.Errorf("invalid registration for kind %q", reg.Kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.appliers[reg.Kind]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateApplier, reg.Kind)
	}
	r.appliers[reg.Kind] = reg.Apply
	return nil
}

// Lookup returns the Applier for a kind.
func (r *Registry) Lookup(kind domain.DecisionKind) (Applier, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.appliers[kind]
	return fn, ok
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []domain.DecisionKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]domain.DecisionKind, 0, len(r.appliers))
	for k := range r.appliers {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
