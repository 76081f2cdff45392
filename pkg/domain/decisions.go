package domain

// Kinds of the built-in Decision variants.
const (
	KindInitializeBoard  DecisionKind = "initialize_board"
	KindSpawnEntity      DecisionKind = "spawn_entity"
	KindRemoveEntity     DecisionKind = "remove_entity"
	KindUpdateComponents DecisionKind = "update_components"
	KindAdjustStat       DecisionKind = "adjust_stat"
	KindMoveEntity       DecisionKind = "move_entity"
	KindSetPhase         DecisionKind = "set_phase"
)

// InitializeBoard installs the initialized board.
type InitializeBoard struct {
	DecisionBase
	Board Board `json:"board"`
}

func (InitializeBoard) Kind() DecisionKind { return KindInitializeBoard }

// SpawnEntity adds an entity to the collection.
type SpawnEntity struct {
	DecisionBase
	Entity Entity `json:"entity"`
}

func (SpawnEntity) Kind() DecisionKind { return KindSpawnEntity }

// RemoveEntity deletes an entity from the collection.
type RemoveEntity struct {
	DecisionBase
	EntityID EntityID `json:"entity_id"`
}

func (RemoveEntity) Kind() DecisionKind { return KindRemoveEntity }

// UpdateComponents replaces the named components on one entity.
type UpdateComponents struct {
	DecisionBase
	EntityID   EntityID             `json:"entity_id"`
	Components map[string]Component `json:"components"`
}

func (UpdateComponents) Kind() DecisionKind { return KindUpdateComponents }

// AdjustStat adds Delta to one field of one component.
// The result is clamped to [0, max] where max is the component's "max" field, when present.
type AdjustStat struct {
	DecisionBase
	EntityID  EntityID `json:"entity_id"`
	Component string   `json:"component"`
	Field     string   `json:"field"`
	Delta     int      `json:"delta"`
}

func (AdjustStat) Kind() DecisionKind { return KindAdjustStat }

// MoveEntity places an entity on another tile.
type MoveEntity struct {
	DecisionBase
	EntityID EntityID `json:"entity_id"`
	To       TileID   `json:"to"`
}

func (MoveEntity) Kind() DecisionKind { return KindMoveEntity }

// SetPhase changes the current phase id.
type SetPhase struct {
	DecisionBase
	Phase string `json:"phase"`
}

func (SetPhase) Kind() DecisionKind { return KindSetPhase }

// Targeted is implemented by decisions that act on a single entity.
type Targeted interface {
	Target() EntityID
}

func (d RemoveEntity) Target() EntityID     { return d.EntityID }
func (d UpdateComponents) Target() EntityID { return d.EntityID }
func (d AdjustStat) Target() EntityID       { return d.EntityID }
func (d MoveEntity) Target() EntityID       { return d.EntityID }
