package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityMap_IsPersistent(t *testing.T) {
	base := domain.NewEntityMap(domain.Entity{ID: "a"})
	added := base.Set(domain.Entity{ID: "b"})
	deleted := added.Delete("a")

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, added.Len())
	assert.Equal(t, []domain.EntityID{"b"}, deleted.IDs())
	assert.True(t, added.Has("a"), "Delete must not touch the receiver")
}

func TestEntity_WithComponentCopies(t *testing.T) {
	e := domain.Entity{ID: "hero", Components: map[string]domain.Component{
		domain.ComponentHealth: {domain.FieldCurrent: 5},
	}}
	next := e.WithComponent(domain.ComponentHealth, e.Components[domain.ComponentHealth].With(domain.FieldCurrent, 2))

	v, _ := e.Field(domain.ComponentHealth, domain.FieldCurrent)
	assert.Equal(t, 5, v)
	v, _ = next.Field(domain.ComponentHealth, domain.FieldCurrent)
	assert.Equal(t, 2, v)
}

func TestEntityMap_JSONRoundTrip(t *testing.T) {
	m := domain.NewEntityMap(domain.Entity{ID: "b", Tile: "t2"}, domain.Entity{ID: "a", Tile: "t1"})
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a","tile":"t1"},{"id":"b","tile":"t2"}]`, string(data))

	var back domain.EntityMap
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []domain.EntityID{"a", "b"}, back.IDs())
}

func TestBoard_Distance(t *testing.T) {
	b := domain.NewBoard("b", "a", "b", "c", "island").Connect("a", "b").Connect("b", "c")

	assert.Equal(t, 0, b.Distance("a", "a"))
	assert.Equal(t, 1, b.Distance("a", "b"))
	assert.Equal(t, 2, b.Distance("a", "c"))
	assert.Equal(t, -1, b.Distance("a", "island"))
	assert.Equal(t, -1, b.Distance("a", "missing"))
	assert.True(t, b.Adjacent("b", "c"))
}

func TestSessionContext_IntAcceptsJSONNumbers(t *testing.T) {
	c := domain.NewSessionContext("s", domain.Command{}, domain.NewState("p"), time.Time{})
	c.Set("a", 4)
	c.Set("b", float64(5))
	c.Set("c", json.Number("6"))
	c.Set("d", "seven")

	for key, want := range map[string]int{"a": 4, "b": 5, "c": 6} {
		got, ok := c.Int(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}
	_, ok := c.Int("d")
	assert.False(t, ok)
}

func TestSessionContext_CloneIsolatesVariables(t *testing.T) {
	c := domain.NewSessionContext("s", domain.Command{}, domain.NewState("p"), time.Time{})
	c.Set("x", 1)
	c.Trail = []string{"start"}

	cp := c.Clone()
	cp.Set("x", 2)
	cp.Trail = append(cp.Trail, "next")

	v, _ := c.Int("x")
	assert.Equal(t, 1, v)
	assert.Equal(t, []string{"start"}, c.Trail)
	assert.Same(t, c.Snapshot, cp.Snapshot)
}

func TestCommand_Validate(t *testing.T) {
	assert.NoError(t, domain.Command{Type: "attack", ActorID: "hero"}.Validate())
	assert.ErrorIs(t, domain.Command{ActorID: "hero"}.Validate(), domain.ErrInvalidCommand)
	assert.ErrorIs(t, domain.Command{Type: "attack"}.Validate(), domain.ErrInvalidCommand)
}
