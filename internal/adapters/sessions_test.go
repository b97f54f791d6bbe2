package adapters_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/viben/internal/adapters"
	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/playback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore(t *testing.T) {
	dir := t.TempDir()
	store := adapters.NewSessionStore(dir)
	ctx := context.Background()

	t.Run("LoadMissing", func(t *testing.T) {
		_, err := store.Load(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("SaveAndLoad", func(t *testing.T) {
		st := playback.State{
			Index:   3,
			Answers: map[int]int{2: 1},
			Choices: map[string]string{"path": "backend"},
			Pending: &playback.Pending{Step: 3, Seq: 1},
			Seq:     1,
		}
		require.NoError(t, store.Save(ctx, "morning", "cursor-agent-mode", st))

		saved, err := store.Load(ctx, "morning")
		require.NoError(t, err)
		assert.Equal(t, "cursor-agent-mode", saved.TutorialID)
		assert.Equal(t, 3, saved.State.Index)
		assert.Equal(t, 1, saved.State.Answers[2])
		assert.Equal(t, "backend", saved.State.Choices["path"])
		assert.Nil(t, saved.State.Pending, "pending advances are not persisted")
		assert.False(t, saved.UpdatedAt.IsZero())
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "alpha", "t1", playback.State{}))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "morning"}, names)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "alpha"))
		require.NoError(t, store.Delete(ctx, "alpha"))
		_, err := store.Load(ctx, "alpha")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("BadName", func(t *testing.T) {
		err := store.Save(ctx, "../..", "t1", playback.State{})
		assert.ErrorIs(t, err, domain.ErrShape)
	})
}

func TestSessionStore_ListMissingDir(t *testing.T) {
	store := adapters.NewSessionStore(filepath.Join(t.TempDir(), "absent"))
	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}
