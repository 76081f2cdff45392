package domain

import (
	"encoding/json"
	"sort"
)

// EntityID identifies an entity on the board.
type EntityID string

// Component is a named bag of integer attributes (e.g. health: current/max).
// Components are treated as immutable; use Clone before changing a field.
type Component map[string]int

// Clone returns an independent copy.
func (c Component) Clone() Component {
	if c == nil {
		return nil
	}
	out := make(Component, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// With returns a copy of the component with one field set.
func (c Component) With(field string, value int) Component {
	out := c.Clone()
	if out == nil {
		out = make(Component, 1)
	}
	out[field] = value
	return out
}

// Entity is an immutable game object. "Updating" an entity returns a new value.
type Entity struct {
	ID         EntityID             `json:"id"`
	Kind       string               `json:"kind,omitempty"`
	Tile       TileID               `json:"tile,omitempty"`
	Components map[string]Component `json:"components,omitempty"`
}

// Component returns a named component.
func (e Entity) Component(name string) (Component, bool) {
	c, ok := e.Components[name]
	return c, ok
}

// Field returns one field of one component.
func (e Entity) Field(component, field string) (int, bool) {
	c, ok := e.Components[component]
	if !ok {
		return 0, false
	}
	v, ok := c[field]
	return v, ok
}

// WithComponent returns a copy of the entity with the named component replaced.
func (e Entity) WithComponent(name string, c Component) Entity {
	next := e
	next.Components = make(map[string]Component, len(e.Components)+1)
	for k, v := range e.Components {
		next.Components[k] = v
	}
	next.Components[name] = c
	return next
}

// WithTile returns a copy of the entity placed on another tile.
func (e Entity) WithTile(tile TileID) Entity {
	next := e
	next.Tile = tile
	return next
}

// EntityMap is a persistent map of entities keyed by id.
// Set and Delete copy the underlying map and return a new EntityMap, leaving
// the receiver (and every State that references it) untouched.
type EntityMap struct {
	items map[EntityID]Entity
}

// NewEntityMap builds a map from the given entities.
func NewEntityMap(entities ...Entity) EntityMap {
	items := make(map[EntityID]Entity, len(entities))
	for _, e := range entities {
		items[e.ID] = e
	}
	return EntityMap{items: items}
}

// Get returns the entity with the given id.
func (m EntityMap) Get(id EntityID) (Entity, bool) {
	e, ok := m.items[id]
	return e, ok
}

// Has reports whether the entity exists.
func (m EntityMap) Has(id EntityID) bool {
	_, ok := m.items[id]
	return ok
}

// Set returns a new map containing e.
func (m EntityMap) Set(e Entity) EntityMap {
	next := make(map[EntityID]Entity, len(m.items)+1)
	for k, v := range m.items {
		next[k] = v
	}
	next[e.ID] = e
	return EntityMap{items: next}
}

// Delete returns a new map without the entity.
func (m EntityMap) Delete(id EntityID) EntityMap {
	if !m.Has(id) {
		return m
	}
	next := make(map[EntityID]Entity, len(m.items))
	for k, v := range m.items {
		if k != id {
			next[k] = v
		}
	}
	return EntityMap{items: next}
}

// Len returns the number of entities.
func (m EntityMap) Len() int { return len(m.items) }

// IDs returns the entity ids in sorted order.
func (m EntityMap) IDs() []EntityID {
	ids := make([]EntityID, 0, len(m.items))
	for id := range m.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// All returns the entities sorted by id.
func (m EntityMap) All() []Entity {
	out := make([]Entity, 0, len(m.items))
	for _, id := range m.IDs() {
		out = append(out, m.items[id])
	}
	return out
}

// OnTile returns the entities standing on a tile, sorted by id.
func (m EntityMap) OnTile(tile TileID) []Entity {
	var out []Entity
	for _, e := range m.All() {
		if e.Tile == tile {
			out = append(out, e)
		}
	}
	return out
}

// MarshalJSON encodes the map as a sorted array for stable output.
func (m EntityMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.All())
}

// UnmarshalJSON decodes an array of entities.
func (m *EntityMap) UnmarshalJSON(data []byte) error {
	var list []Entity
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*m = NewEntityMap(list...)
	return nil
}
