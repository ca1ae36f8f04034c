package state

import (
	"sync"
	"testing"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drawLine(s *Session, from, to fyne.Position) {
	for _, p := range drag(from, to) {
		s.Frame(p)
	}
}

func sessionStrokes(s *Session) []Stroke {
	var out []Stroke
	s.View(func(c *Canvas) { out = strokesOf(c) })
	return out
}

func TestSessionPenAndUndo(t *testing.T) {
	s := NewSession(fyne.NewSize(100, 100))
	var revs []uint64
	s.OnChange(func(rev uint64) { revs = append(revs, rev) })

	drawLine(s, pt(10, 10), pt(20, 10))
	drawLine(s, pt(10, 30), pt(20, 30))
	require.Len(t, sessionStrokes(s), 2)

	require.True(t, s.Undo())
	require.Len(t, sessionStrokes(s), 1)
	require.True(t, s.Redo())
	require.Len(t, sessionStrokes(s), 2)

	assert.Equal(t, []uint64{1, 2, 3, 4}, revs)
	assert.Equal(t, uint64(4), s.Revision())
}

func TestSessionEraseUsesStyleWidth(t *testing.T) {
	s := NewSession(fyne.NewSize(100, 100))
	drawLine(s, pt(0, 50), pt(100, 50))

	s.SetTool(ToolErase)
	s.SetStyle(StrokeStyle{Color: black2.Color, Width: 4})

	assert.Equal(t, 0, s.Frame(Pointer{Pos: pt(50, 45), Present: true, Dragging: true}))
	assert.Equal(t, 1, s.Frame(Pointer{Pos: pt(50, 47), Present: true, Dragging: true}))
	assert.True(t, sessionStrokes(s)[0].Empty())
}

func TestSessionSetToolCommitsPendingStroke(t *testing.T) {
	s := NewSession(fyne.NewSize(100, 100))
	s.Frame(Pointer{Pos: pt(0, 0), Present: true, Dragging: true})
	s.Frame(Pointer{Pos: pt(5, 5), Present: true, Dragging: true})

	s.SetTool(ToolErase)
	assert.Equal(t, ToolErase, s.Tool())
	assert.Len(t, sessionStrokes(s), 1)
}

func TestSessionClearIsUndoable(t *testing.T) {
	s := NewSession(fyne.NewSize(100, 100))
	drawLine(s, pt(10, 10), pt(20, 10))
	drawLine(s, pt(10, 30), pt(20, 30))
	drawLine(s, pt(10, 50), pt(20, 50))
	before := sessionStrokes(s)

	assert.Equal(t, 3, s.Clear())
	assert.Empty(t, sessionStrokes(s))

	for s.CanUndo() {
		s.Undo()
		if len(sessionStrokes(s)) == 3 {
			break
		}
	}
	diff(t, before, sessionStrokes(s))
}

func TestSessionSnapshotIsDetached(t *testing.T) {
	s := NewSession(fyne.NewSize(100, 100))
	drawLine(s, pt(10, 10), pt(20, 10))

	snap := s.Snapshot(true)
	drawLine(s, pt(10, 30), pt(20, 30))

	assert.Equal(t, 1, snap.Canvas.Len())
	assert.Len(t, snap.History.UndoStack(), 1)
	assert.Equal(t, s.ID(), snap.SessionID)
}

func TestSessionRestore(t *testing.T) {
	src := NewSession(fyne.NewSize(300, 200))
	drawLine(src, pt(10, 10), pt(20, 10))
	drawLine(src, pt(10, 30), pt(20, 30))
	src.SetZoom(2)
	snap := src.Snapshot(true)

	dst := NewSession(fyne.NewSize(50, 50))
	dst.Restore(snap)

	diff(t, sessionStrokes(src), sessionStrokes(dst))
	dst.View(func(c *Canvas) {
		assert.InDelta(t, 2, c.Zoom(), 1e-5)
		assert.Equal(t, fyne.NewSize(300, 200), c.Area().Size())
	})
	assert.Greater(t, dst.Revision(), snap.Revision)

	// Restored history is usable.
	require.True(t, dst.Undo())
	assert.Len(t, sessionStrokes(dst), 1)
}

func TestSessionConcurrentReaders(t *testing.T) {
	s := NewSession(fyne.NewSize(100, 100))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = s.Snapshot(false)
		}
	}()
	for i := 0; i < 100; i++ {
		drawLine(s, pt(0, float32(i)), pt(10, float32(i)))
	}
	wg.Wait()
	assert.Len(t, sessionStrokes(s), 100)
}
