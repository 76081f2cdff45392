package domain

// State is the immutable snapshot of the game.
// Every mutation produces a new State value; only the Orchestrator replaces the
// authoritative reference, and only with a value returned by an Applier.
type State struct {
	// Version increases by one for every applied Decision.
	Version uint64

	Board    Board
	Entities EntityMap

	// Metadata holds free-form labels (mission id, turn number, ...).
	Metadata map[string]string

	// PhaseID is the id of the current phase.
	PhaseID string

	// Pending holds scheduled decisions waiting for a phase trigger.
	Pending Scheduler
}

// NewState creates an empty state in the given phase.
func NewState(phase string) State {
	return State{
		Entities: NewEntityMap(),
		Metadata: map[string]string{},
		PhaseID:  phase,
	}
}

// Entity returns an entity by id.
func (s State) Entity(id EntityID) (Entity, bool) {
	return s.Entities.Get(id)
}

// WithBoard returns a copy with the board replaced.
func (s State) WithBoard(b Board) State {
	s.Board = b
	return s
}

// WithEntities returns a copy with the entity collection replaced.
func (s State) WithEntities(m EntityMap) State {
	s.Entities = m
	return s
}

// WithEntity returns a copy with one entity inserted or replaced.
func (s State) WithEntity(e Entity) State {
	s.Entities = s.Entities.Set(e)
	return s
}

// WithPhase returns a copy in another phase.
func (s State) WithPhase(phase string) State {
	s.PhaseID = phase
	return s
}

// WithPending returns a copy with the scheduler replaced.
func (s State) WithPending(p Scheduler) State {
	s.Pending = p
	return s
}

// WithMetadata returns a copy with one metadata key set.
func (s State) WithMetadata(key, value string) State {
	next := make(map[string]string, len(s.Metadata)+1)
	for k, v := range s.Metadata {
		next[k] = v
	}
	next[key] = value
	s.Metadata = next
	return s
}

// Bump returns a copy with the version incremented.
func (s State) Bump() State {
	s.Version++
	return s
}
