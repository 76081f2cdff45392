// Package appliers implements the Appliers for the built-in Decision variants.
// Every function here is pure: it reads the decision and the state and returns
// a new state without touching the input.
package appliers

import (
	"fmt"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/orchestrator"
)

// Defaults returns one Registration per built-in Decision variant.
func Defaults() []orchestrator.Registration {
	return []orchestrator.Registration{
		orchestrator.Bind(InitializeBoard),
		orchestrator.Bind(SpawnEntity),
		orchestrator.Bind(RemoveEntity),
		orchestrator.Bind(UpdateComponents),
		orchestrator.Bind(AdjustStat),
		orchestrator.Bind(MoveEntity),
		orchestrator.Bind(SetPhase),
	}
}

// InitializeBoard installs the board.
func InitializeBoard(d domain.InitializeBoard, s domain.State) (domain.State, []domain.Effect, error) {
	return s.WithBoard(d.Board), []domain.Effect{{
		Kind:        domain.EffectBoardInitialized,
		Description: fmt.Sprintf("board %s initialized with %d tiles", d.Board.ID, len(d.Board.Tiles)),
	}}, nil
}

// SpawnEntity adds a new entity. The id must be free and the tile, when set, must exist.
func SpawnEntity(d domain.SpawnEntity, s domain.State) (domain.State, []domain.Effect, error) {
	e := d.Entity
	if e.ID == "" {
		return s, nil, fmt.Errorf("spawn: empty entity id")
	}
	if s.Entities.Has(e.ID) {
		return s, nil, fmt.Errorf("%w: %s", domain.ErrEntityExists, e.ID)
	}
	if err := checkTile(s.Board, e.Tile); err != nil {
		return s, nil, err
	}
	return s.WithEntity(e), []domain.Effect{{
		Kind:        domain.EffectEntitySpawned,
		EntityID:    e.ID,
		Description: fmt.Sprintf("%s spawned at %s", e.ID, e.Tile),
	}}, nil
}

// RemoveEntity deletes an entity and drops every pending decision that targets it.
func RemoveEntity(d domain.RemoveEntity, s domain.State) (domain.State, []domain.Effect, error) {
	if !s.Entities.Has(d.EntityID) {
		return s, nil, fmt.Errorf("%w: %s", domain.ErrEntityNotFound, d.EntityID)
	}

	pending := s.Pending
	orphans := pending.Filter(func(p domain.Decision) bool {
		t, ok := p.(domain.Targeted)
		return ok && t.Target() == d.EntityID
	})
	for _, o := range orphans {
		pending = pending.Remove(o.Seq)
	}

	desc := fmt.Sprintf("%s removed", d.EntityID)
	if len(orphans) > 0 {
		desc = fmt.Sprintf("%s removed, %d pending decisions dropped", d.EntityID, len(orphans))
	}
	return s.WithEntities(s.Entities.Delete(d.EntityID)).WithPending(pending), []domain.Effect{{
		Kind:        domain.EffectEntityRemoved,
		EntityID:    d.EntityID,
		Description: desc,
	}}, nil
}

// UpdateComponents replaces the named components of one entity.
func UpdateComponents(d domain.UpdateComponents, s domain.State) (domain.State, []domain.Effect, error) {
	e, ok := s.Entity(d.EntityID)
	if !ok {
		return s, nil, fmt.Errorf("%w: %s", domain.ErrEntityNotFound, d.EntityID)
	}
	for name, c := range d.Components {
		e = e.WithComponent(name, c.Clone())
	}
	return s.WithEntity(e), []domain.Effect{{
		Kind:        domain.EffectComponentsUpdated,
		EntityID:    d.EntityID,
		Description: fmt.Sprintf("%s: %d components updated", d.EntityID, len(d.Components)),
	}}, nil
}

// AdjustStat adds Delta to a component field, clamped to [0, max] when the
// component carries a "max" field and to a floor of 0 otherwise.
func AdjustStat(d domain.AdjustStat, s domain.State) (domain.State, []domain.Effect, error) {
	e, ok := s.Entity(d.EntityID)
	if !ok {
		return s, nil, fmt.Errorf("%w: %s", domain.ErrEntityNotFound, d.EntityID)
	}

	comp, _ := e.Component(d.Component)
	before := comp[d.Field]
	after := before + d.Delta
	if ceiling, ok := comp[domain.FieldMax]; ok && d.Field != domain.FieldMax && after > ceiling {
		after = ceiling
	}
	if after < 0 {
		after = 0
	}

	e = e.WithComponent(d.Component, comp.With(d.Field, after))
	return s.WithEntity(e), []domain.Effect{{
		Kind:        domain.EffectStatAdjusted,
		EntityID:    d.EntityID,
		Description: fmt.Sprintf("%s %s.%s %d -> %d", d.EntityID, d.Component, d.Field, before, after),
	}}, nil
}

// MoveEntity places an entity on another tile.
func MoveEntity(d domain.MoveEntity, s domain.State) (domain.State, []domain.Effect, error) {
	e, ok := s.Entity(d.EntityID)
	if !ok {
		return s, nil, fmt.Errorf("%w: %s", domain.ErrEntityNotFound, d.EntityID)
	}
	if err := checkTile(s.Board, d.To); err != nil {
		return s, nil, err
	}
	from := e.Tile
	return s.WithEntity(e.WithTile(d.To)), []domain.Effect{{
		Kind:        domain.EffectEntityMoved,
		EntityID:    d.EntityID,
		Description: fmt.Sprintf("%s moved %s -> %s", d.EntityID, from, d.To),
	}}, nil
}

// SetPhase switches the current phase.
func SetPhase(d domain.SetPhase, s domain.State) (domain.State, []domain.Effect, error) {
	from := s.PhaseID
	return s.WithPhase(d.Phase), []domain.Effect{{
		Kind:        domain.EffectPhaseChanged,
		Description: fmt.Sprintf("phase %q -> %q", from, d.Phase),
	}}, nil
}

// checkTile accepts any tile on a board without tiles, so entities can be staged
// before the board is initialized.
func checkTile(b domain.Board, t domain.TileID) error {
	if t == "" || len(b.Tiles) == 0 || b.Has(t) {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrTileNotFound, t)
}
