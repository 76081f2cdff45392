package domain

import (
	"fmt"
	"strings"
)

// CommandType is the logical type tag of a Command. Pipelines are looked up by it.
type CommandType string

// Command is an immutable intent submitted by a player or the system.
// It is consumed exactly once per Handle call; on resume the same value is
// replayed from the SessionContext.
type Command struct {
	ID       string      `json:"id"`
	Type     CommandType `json:"type"`
	ActorID  EntityID    `json:"actor_id"`
	TargetID EntityID    `json:"target_id,omitempty"`

	// ConsumesResource marks commands that spend the actor's action points.
	ConsumesResource bool `json:"consumes_resource,omitempty"`

	// Payload carries command-specific arguments (e.g. a destination tile).
	Payload map[string]any `json:"payload,omitempty"`
}

// Validate checks the structural invariants of a Command.
func (c Command) Validate() error {
	if strings.TrimSpace(string(c.Type)) == "" {
		return fmt.Errorf("%w: type is required", ErrInvalidCommand)
	}
	if strings.TrimSpace(string(c.ActorID)) == "" {
		return fmt.Errorf("%w: actor id is required", ErrInvalidCommand)
	}
	return nil
}

// Arg returns a payload argument.
func (c Command) Arg(key string) (any, bool) {
	if c.Payload == nil {
		return nil, false
	}
	v, ok := c.Payload[key]
	return v, ok
}

// StringArg returns a payload argument as a string.
func (c Command) StringArg(key string) (string, bool) {
	v, ok := c.Arg(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
