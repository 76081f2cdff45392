package query_test

import (
	"testing"
	"time"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func world() domain.State {
	board := domain.NewBoard("line", "t1", "t2", "t3", "island").
		Connect("t1", "t2").
		Connect("t2", "t3")
	return domain.NewState("main").
		WithBoard(board).
		WithEntity(domain.Entity{ID: "hero", Tile: "t1", Components: map[string]domain.Component{
			domain.ComponentHealth:       {domain.FieldCurrent: 5, domain.FieldMax: 5},
			domain.ComponentActionPoints: {domain.FieldCurrent: 1, domain.FieldMax: 2},
		}}).
		WithEntity(domain.Entity{ID: "goblin", Tile: "t2", Components: map[string]domain.Component{
			domain.ComponentHealth: {domain.FieldCurrent: 0, domain.FieldMax: 3},
		}}).
		WithEntity(domain.Entity{ID: "archer", Tile: "t3"}).
		WithEntity(domain.Entity{ID: "hermit", Tile: "island"})
}

func TestService_Entity(t *testing.T) {
	q := query.New(world())
	e, err := q.Entity("hero")
	require.NoError(t, err)
	assert.Equal(t, domain.TileID("t1"), e.Tile)

	_, err = q.Entity("dragon")
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)

	c, ok := q.Component("hero", domain.ComponentHealth)
	require.True(t, ok)
	assert.Equal(t, 5, c[domain.FieldMax])

	_, ok = q.Component("dragon", domain.ComponentHealth)
	assert.False(t, ok)
}

func TestService_Range(t *testing.T) {
	q := query.New(world())

	assert.Equal(t, 0, q.Distance("hero", "hero"))
	assert.Equal(t, 1, q.Distance("hero", "goblin"))
	assert.Equal(t, 2, q.Distance("hero", "archer"))
	assert.Equal(t, -1, q.Distance("hero", "hermit"))
	assert.Equal(t, -1, q.Distance("hero", "dragon"))

	assert.True(t, q.InRange("hero", "goblin", 1))
	assert.False(t, q.InRange("hero", "archer", 1))
	assert.False(t, q.InRange("hero", "hermit", 99))
}

func TestService_Resources(t *testing.T) {
	q := query.New(world())
	assert.True(t, q.HasResource("hero", domain.ComponentActionPoints, 1))
	assert.False(t, q.HasResource("hero", domain.ComponentActionPoints, 2))
	assert.False(t, q.HasResource("archer", domain.ComponentActionPoints, 1))

	assert.True(t, q.Alive("hero"))
	assert.False(t, q.Alive("goblin"))
	assert.True(t, q.Alive("archer"))
	assert.False(t, q.Alive("dragon"))
}

func TestOf(t *testing.T) {
	sc := domain.NewSessionContext("s", domain.Command{}, world(), time.Now())
	assert.Equal(t, "main", query.Of(sc).Phase())
	assert.Len(t, query.Of(sc).EntitiesOn("t2"), 1)

	assert.Equal(t, 0, query.Of(nil).State().Entities.Len())
}
