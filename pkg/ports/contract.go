package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	newSession := func(id string) *domain.SessionContext {
		cmd := domain.Command{ID: "cmd-1", Type: "attack", ActorID: "hero", TargetID: "goblin"}
		s := domain.NewSessionContext(id, cmd, domain.NewState("main"), time.Now().UTC())
		s.CurrentNodeID = "resolve_hit"
		return s
	}

	t.Run("Save and Load", func(t *testing.T) {
		session := newSession(sessionID)
		session.Set("threshold", 4)
		session.Set("note", "pending roll")
		session.Trail = []string{"validate_range", "request_to_hit"}

		err := store.Save(ctx, session)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, session.CurrentNodeID, loaded.CurrentNodeID)
		assert.Equal(t, session.Command.Type, loaded.Command.Type)
		assert.Equal(t, session.Trail, loaded.Trail)
		assert.Equal(t, "pending roll", loaded.Variables["note"])
		// JSON persistence converts ints to float64; Int() hides that.
		threshold, ok := loaded.Int("threshold")
		assert.True(t, ok)
		assert.Equal(t, 4, threshold)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, newSession(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "Delete of a missing session is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, newSession(id1))
		_ = store.Save(ctx, newSession(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunStateRepositoryContract verifies that a StateRepository round-trips every
// part of a State, including the pending decision queue.
func RunStateRepositoryContract(t *testing.T, repo StateRepository) {
	ctx := context.Background()

	t.Run("Load Before Save", func(t *testing.T) {
		_, err := repo.LoadState(ctx)
		assert.ErrorIs(t, err, domain.ErrStateNotFound)
	})

	t.Run("Save and Load", func(t *testing.T) {
		board := domain.NewBoard("arena", "a1", "a2").Connect("a1", "a2")
		state := domain.NewState("main").
			WithBoard(board).
			WithEntity(domain.Entity{ID: "hero", Kind: "unit", Tile: "a1", Components: map[string]domain.Component{
				domain.ComponentHealth: {domain.FieldCurrent: 5, domain.FieldMax: 5},
			}}).
			WithMetadata("mission", "m1")
		state = state.WithPending(state.Pending.Add(
			domain.AdjustStat{
				DecisionBase: domain.Later("cmd-1", domain.At("upkeep", domain.OnStateStart, domain.Permanent)),
				EntityID:     "hero",
				Component:    domain.ComponentHealth,
				Field:        domain.FieldCurrent,
				Delta:        1,
			},
		))
		state.Version = 3

		require.NoError(t, repo.SaveState(ctx, state))

		loaded, err := repo.LoadState(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), loaded.Version)
		assert.Equal(t, "main", loaded.PhaseID)
		assert.Equal(t, "m1", loaded.Metadata["mission"])
		assert.True(t, loaded.Board.Adjacent("a1", "a2"))

		hero, ok := loaded.Entity("hero")
		require.True(t, ok)
		assert.Equal(t, domain.TileID("a1"), hero.Tile)
		hp, _ := hero.Field(domain.ComponentHealth, domain.FieldCurrent)
		assert.Equal(t, 5, hp)

		require.Equal(t, 1, loaded.Pending.Len())
		pending := loaded.Pending.Entries()[0]
		adjust, ok := pending.Decision.(domain.AdjustStat)
		require.True(t, ok, "pending decision must keep its concrete variant, got %T", pending.Decision)
		assert.Equal(t, 1, adjust.Delta)
		assert.Equal(t, domain.Permanent, adjust.Timing().Frequency)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		state := domain.NewState("end")
		state.Version = 9
		require.NoError(t, repo.SaveState(ctx, state))

		loaded, err := repo.LoadState(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(9), loaded.Version)
		assert.Equal(t, "end", loaded.PhaseID)
		assert.Equal(t, 0, loaded.Entities.Len())
	})
}
