// Package storetest checks that a core.SnapshotStore behaves like the others.
package storetest

import (
	"context"
	"testing"

	"InkBoard/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises the SnapshotStore contract against stores made by newStore.
// Each subtest gets a fresh store.
func Run(t *testing.T, newStore func(t *testing.T) core.SnapshotStore) {
	t.Run("SaveAssignsID", func(t *testing.T) {
		store := newStore(t)
		rec := &core.Record{Name: "first", Data: []byte(`{"version":1}`)}

		id, err := store.Save(context.Background(), rec)
		require.NoError(t, err)
		assert.Len(t, id, 26, "ULID")
		assert.Equal(t, id, rec.ID)
		assert.False(t, rec.CreatedAt.IsZero())
	})

	t.Run("LoadReturnsData", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		id, err := store.Save(ctx, &core.Record{Name: "board", Data: []byte("payload")})
		require.NoError(t, err)

		got, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "board", got.Name)
		assert.Equal(t, []byte("payload"), got.Data)
	})

	t.Run("SaveReplacesExisting", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		rec := &core.Record{ID: "board-1", Name: "v1", Data: []byte("one")}
		_, err := store.Save(ctx, rec)
		require.NoError(t, err)
		created := rec.CreatedAt

		rec2 := &core.Record{ID: "board-1", Name: "v2", Data: []byte("two")}
		id, err := store.Save(ctx, rec2)
		require.NoError(t, err)
		assert.Equal(t, "board-1", id)

		got, err := store.Load(ctx, "board-1")
		require.NoError(t, err)
		assert.Equal(t, "v2", got.Name)
		assert.Equal(t, []byte("two"), got.Data)
		assert.True(t, got.CreatedAt.Equal(created), "created %v, want %v", got.CreatedAt, created)

		list, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("LoadMissing", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Load(context.Background(), "nope")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("ListOmitsData", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		for _, name := range []string{"a", "b", "c"} {
			_, err := store.Save(ctx, &core.Record{Name: name, Data: []byte(name)})
			require.NoError(t, err)
		}

		list, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)

		names := make([]string, 0, len(list))
		for _, rec := range list {
			assert.Empty(t, rec.Data)
			assert.NotEmpty(t, rec.ID)
			names = append(names, rec.Name)
		}
		assert.ElementsMatch(t, []string{"a", "b", "c"}, names)
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		id, err := store.Save(ctx, &core.Record{Data: []byte("x")})
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, id))
		_, err = store.Load(ctx, id)
		assert.ErrorIs(t, err, core.ErrNotFound)

		assert.NoError(t, store.Delete(ctx, id), "deleting twice")
	})

	t.Run("RejectsPathIDs", func(t *testing.T) {
		store := newStore(t)
		for _, id := range []string{"../escape", "a/b", ".."} {
			_, err := store.Save(context.Background(), &core.Record{ID: id})
			assert.Error(t, err, "id %q", id)
		}
	})
}
