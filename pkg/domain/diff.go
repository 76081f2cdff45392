package domain

import (
	"reflect"
)

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for partial updates on a client.
type StateDiff struct {
	Version uint64 `json:"version"`

	// Phase is set when the phase changed.
	Phase *string `json:"phase,omitempty"`

	// Entities contains added or modified entities.
	Entities []Entity `json:"entities,omitempty"`

	// Removed contains the ids of deleted entities.
	Removed []EntityID `json:"removed,omitempty"`

	// Pending is set when the number of scheduled decisions changed.
	Pending *int `json:"pending,omitempty"`

	// Board is set when the board changed.
	Board *Board `json:"board,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed besides the version.
func Diff(oldState *State, newState State) *StateDiff {
	diff := &StateDiff{Version: newState.Version}

	if oldState == nil || oldState.PhaseID != newState.PhaseID {
		phase := newState.PhaseID
		diff.Phase = &phase
	}
	if oldState == nil || oldState.Pending.Len() != newState.Pending.Len() {
		n := newState.Pending.Len()
		diff.Pending = &n
	}
	if oldState == nil || !reflect.DeepEqual(oldState.Board, newState.Board) {
		b := newState.Board
		diff.Board = &b
	}

	diff.Entities, diff.Removed = diffEntities(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffEntities(old *State, new State) ([]Entity, []EntityID) {
	if old == nil {
		return new.Entities.All(), nil
	}

	var changed []Entity
	for _, e := range new.Entities.All() {
		prev, exists := old.Entities.Get(e.ID)
		if !exists || !reflect.DeepEqual(prev, e) {
			changed = append(changed, e)
		}
	}

	var removed []EntityID
	for _, id := range old.Entities.IDs() {
		if !new.Entities.Has(id) {
			removed = append(removed, id)
		}
	}
	return changed, removed
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Phase == nil &&
		d.Pending == nil &&
		d.Board == nil &&
		len(d.Entities) == 0 &&
		len(d.Removed) == 0
}
