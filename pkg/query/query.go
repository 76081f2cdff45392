// Package query answers read-only questions about a State snapshot.
// Pipelines use it for precondition checks; adapters use it to render state.
package query

import (
	"fmt"

	"github.com/aretw0/gambit/pkg/domain"
)

// Service wraps one immutable State.
type Service struct {
	state domain.State
}

// New creates a query service over s.
func New(s domain.State) Service {
	return Service{state: s}
}

// Of is a shorthand for New(*sc.Snapshot). A session without snapshot yields an empty state.
func Of(sc *domain.SessionContext) Service {
	if sc == nil || sc.Snapshot == nil {
		return New(domain.NewState(""))
	}
	return New(*sc.Snapshot)
}

// State returns the underlying snapshot.
func (q Service) State() domain.State { return q.state }

// Phase returns the current phase id.
func (q Service) Phase() string { return q.state.PhaseID }

// Entity returns an entity or ErrEntityNotFound.
func (q Service) Entity(id domain.EntityID) (domain.Entity, error) {
	e, ok := q.state.Entity(id)
	if !ok {
		return domain.Entity{}, fmt.Errorf("%w: %s", domain.ErrEntityNotFound, id)
	}
	return e, nil
}

// Component returns one component of an entity.
func (q Service) Component(id domain.EntityID, name string) (domain.Component, bool) {
	e, ok := q.state.Entity(id)
	if !ok {
		return nil, false
	}
	return e.Component(name)
}

// Field returns one field of one component of an entity.
func (q Service) Field(id domain.EntityID, component, field string) (int, bool) {
	e, ok := q.state.Entity(id)
	if !ok {
		return 0, false
	}
	return e.Field(component, field)
}

// Distance returns the tile distance between two entities, or -1 if either is
// missing or unreachable.
func (q Service) Distance(a, b domain.EntityID) int {
	ea, ok := q.state.Entity(a)
	if !ok {
		return -1
	}
	eb, ok := q.state.Entity(b)
	if !ok {
		return -1
	}
	return q.state.Board.Distance(ea.Tile, eb.Tile)
}

// InRange reports whether b is within r tiles of a.
func (q Service) InRange(a, b domain.EntityID, r int) bool {
	d := q.Distance(a, b)
	return d >= 0 && d <= r
}

// HasResource reports whether an entity has at least amount left in component.current.
func (q Service) HasResource(id domain.EntityID, component string, amount int) bool {
	v, ok := q.Field(id, component, domain.FieldCurrent)
	return ok && v >= amount
}

// Alive reports whether an entity exists and has health left.
// Entities without a health component count as alive.
func (q Service) Alive(id domain.EntityID) bool {
	e, ok := q.state.Entity(id)
	if !ok {
		return false
	}
	hp, ok := e.Field(domain.ComponentHealth, domain.FieldCurrent)
	return !ok || hp > 0
}

// EntitiesOn returns the entities standing on a tile.
func (q Service) EntitiesOn(tile domain.TileID) []domain.Entity {
	return q.state.Entities.OnTile(tile)
}

// Pending returns the scheduled entries matching (phase, when).
func (q Service) Pending(phase string, when domain.Trigger) []domain.Scheduled {
	return q.state.Pending.Query(phase, when)
}
