package domain

import "time"

// EffectKind categorises an Effect for projections.
type EffectKind string

const (
	EffectBoardInitialized  EffectKind = "board_initialized"
	EffectEntitySpawned     EffectKind = "entity_spawned"
	EffectEntityRemoved     EffectKind = "entity_removed"
	EffectComponentsUpdated EffectKind = "components_updated"
	EffectStatAdjusted      EffectKind = "stat_adjusted"
	EffectEntityMoved       EffectKind = "entity_moved"
	EffectPhaseChanged      EffectKind = "phase_changed"
)

// Effect is an immutable record of what happened, emitted for logging and UI
// projection. The kernel itself never consumes effects.
type Effect struct {
	OriginID    string     `json:"origin_id,omitempty"`
	Kind        EffectKind `json:"kind"`
	EntityID    EntityID   `json:"entity_id,omitempty"`
	Description string     `json:"description"`
	Timestamp   time.Time  `json:"timestamp"`
}
