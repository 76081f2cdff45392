package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/gambit/pkg/adapters/file"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, file.NewStore(t.TempDir()))
}

func TestFileRepository_Contract(t *testing.T) {
	ports.RunStateRepositoryContract(t, file.NewRepository(t.TempDir(), nil))
}

func TestFileStore_ListMissingDirectory(t *testing.T) {
	store := file.NewStore(filepath.Join(t.TempDir(), "missing"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFileStore_RejectsPathEscape(t *testing.T) {
	store := file.NewStore(t.TempDir())
	ctx := context.Background()

	sc := domain.NewSessionContext("../evil", domain.Command{Type: "attack", ActorID: "a"}, domain.NewState("main"), time.Now())
	assert.ErrorIs(t, store.Save(ctx, sc), file.ErrInvalidSessionID)

	_, err := store.Load(ctx, "")
	assert.ErrorIs(t, err, file.ErrInvalidSessionID)
}

func TestFileStore_IgnoresStrayFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.NewStore(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewSessionContext("s1", domain.Command{Type: "move", ActorID: "a"}, domain.NewState("main"), time.Now())))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-s2-123.json"), []byte("{}"), 0o644))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
}

func TestFileRepository_Overwrite(t *testing.T) {
	dir := t.TempDir()
	repo := file.NewRepository(dir, nil)
	ctx := context.Background()

	s := domain.NewState("main")
	s.Version = 1
	require.NoError(t, repo.SaveState(ctx, s))
	s.Version = 2
	require.NoError(t, repo.SaveState(ctx, s))

	loaded, err := repo.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), loaded.Version)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
