package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/gambit/pkg/adapters/sqlite"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "gambit.db"), sqlite.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Contracts(t *testing.T) {
	ports.RunSessionStoreContract(t, openStore(t))
	ports.RunStateRepositoryContract(t, openStore(t))
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := sqlite.Open("  ")
	assert.Error(t, err)
}

func TestSQLiteStore_Versions(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for v := uint64(1); v <= 4; v++ {
		s := domain.NewState("main")
		if v%2 == 0 {
			s = s.WithPhase("upkeep")
		}
		s.Version = v
		require.NoError(t, store.SaveState(ctx, s))
	}

	latest, err := store.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), latest.Version)

	old, err := store.LoadVersion(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "main", old.PhaseID)

	_, err = store.LoadVersion(ctx, 99)
	assert.ErrorIs(t, err, sqlite.ErrVersionNotFound)

	snaps, err := store.Versions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, uint64(4), snaps[0].Version)
	assert.Equal(t, "upkeep", snaps[0].Phase)
	assert.Equal(t, uint64(3), snaps[1].Version)

	n, err := store.Prune(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	snaps, err = store.Versions(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gambit.db")
	ctx := context.Background()

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	s := domain.NewState("main")
	s.Version = 5
	require.NoError(t, store.SaveState(ctx, s))
	require.NoError(t, store.Close())

	store, err = sqlite.Open(path)
	require.NoError(t, err)
	defer store.Close()
	loaded, err := store.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), loaded.Version)
}
