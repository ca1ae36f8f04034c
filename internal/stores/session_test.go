package stores

import (
	"context"
	"testing"

	"InkBoard/internal/core"
	"InkBoard/internal/state"
	"InkBoard/internal/stores/memory"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drawLine(s *state.Session, from, to fyne.Position) {
	s.Frame(state.Pointer{Pos: from, Present: true, Dragging: true})
	s.Frame(state.Pointer{Pos: to, Present: true, Dragging: true})
	s.Frame(state.Pointer{Present: true, DragStopped: true})
}

func TestSaveAndLoadSession(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	src := state.NewSession(fyne.NewSize(100, 100))
	drawLine(src, fyne.NewPos(1, 1), fyne.NewPos(9, 9))
	drawLine(src, fyne.NewPos(20, 20), fyne.NewPos(30, 20))
	require.True(t, src.Undo())

	id, err := SaveSession(ctx, store, src, "", "sketch")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	dst := state.NewSession(fyne.NewSize(10, 10))
	require.NoError(t, LoadSession(ctx, store, dst, id))

	dst.View(func(c *state.Canvas) {
		assert.Equal(t, 1, c.Len())
		assert.Equal(t, float32(100), c.Area().Width())
	})
	assert.True(t, dst.CanUndo())
	assert.True(t, dst.CanRedo(), "history travels with the snapshot")
	assert.Greater(t, dst.Revision(), src.Revision())

	require.True(t, dst.Redo())
	dst.View(func(c *state.Canvas) { assert.Equal(t, 2, c.Len()) })
}

func TestSaveSessionReusesID(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	s := state.NewSession(fyne.NewSize(50, 50))

	id, err := SaveSession(ctx, store, s, s.ID(), "board")
	require.NoError(t, err)
	assert.Equal(t, s.ID(), id)

	drawLine(s, fyne.NewPos(1, 1), fyne.NewPos(2, 2))
	_, err = SaveSession(ctx, store, s, id, "board")
	require.NoError(t, err)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestLoadSessionErrors(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	s := state.NewSession(fyne.NewSize(50, 50))

	assert.ErrorIs(t, LoadSession(ctx, store, s, "missing"), core.ErrNotFound)

	id, err := store.Save(ctx, &core.Record{Data: []byte(`{"version":99}`)})
	require.NoError(t, err)
	assert.ErrorIs(t, LoadSession(ctx, store, s, id), state.ErrBadSnapshot)
}
