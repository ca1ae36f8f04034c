package state

import (
	"sync"

	"InkBoard/internal/geom"

	"fyne.io/fyne/v2"
	"github.com/sirupsen/logrus"
)

// Tool selects what a drag does on the canvas.
type Tool int

const (
	ToolPen Tool = iota
	ToolErase
)

func (t Tool) String() string {
	switch t {
	case ToolPen:
		return "pen"
	case ToolErase:
		return "erase"
	default:
		return "unknown"
	}
}

// Session owns one Canvas and its History. Every call is serialised, so a
// session may be read from other goroutines (the mirror) while the UI
// drives it.
type Session struct {
	mu      sync.Mutex
	id      string
	canvas  *Canvas
	history *History
	style   StrokeStyle
	tool    Tool
	clock   Clock

	lmu       sync.Mutex
	listeners []func(rev uint64)

	log *logrus.Entry
}

// NewSession starts a session on an empty canvas of the given size.
func NewSession(size fyne.Size) *Session {
	id := newID()
	return &Session{
		id:      id,
		canvas:  NewCanvas(size),
		history: NewHistory(),
		style:   DefaultStyle,
		tool:    ToolPen,
		log:     logrus.WithField("session_id", id),
	}
}

func (s *Session) ID() string { return s.id }

// Revision returns the number of mutations applied so far.
func (s *Session) Revision() uint64 { return s.clock.Now() }

func (s *Session) Style() StrokeStyle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.style
}

func (s *Session) SetStyle(style StrokeStyle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.style = style
}

func (s *Session) Tool() Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tool
}

// SetTool switches tools. A pen stroke in progress is committed first so
// that switching never loses ink.
func (s *Session) SetTool(t Tool) {
	s.mu.Lock()
	changed := false
	if s.tool == ToolPen && t != ToolPen {
		if a := s.canvas.CapturePen(Pointer{DragStopped: true}, s.style); a != nil {
			s.run(a)
			changed = true
		}
	}
	s.tool = t
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// Frame feeds one frame of pointer input to the active tool and runs the
// resulting actions. It returns the number of actions run.
func (s *Session) Frame(p Pointer) int {
	s.mu.Lock()
	var actions []Action
	switch s.tool {
	case ToolPen:
		if a := s.canvas.CapturePen(p, s.style); a != nil {
			actions = append(actions, a)
		}
	case ToolErase:
		actions = s.canvas.CaptureErase(p, s.style.Width)
	}
	for _, a := range actions {
		s.run(a)
	}
	s.mu.Unlock()

	if len(actions) > 0 {
		s.notify()
	}
	return len(actions)
}

// Run applies an externally built action through the history.
func (s *Session) Run(a Action) {
	s.mu.Lock()
	s.run(a)
	s.mu.Unlock()
	s.notify()
}

func (s *Session) run(a Action) {
	s.history.Run(a, s.canvas)
	rev := s.clock.Tick()
	s.log.WithFields(logrus.Fields{
		"kind":     a.Kind(),
		"revision": rev,
		"strokes":  s.canvas.Len(),
	}).Debug("Action applied")
}

// Undo reverses the last action. It reports false if there was none.
func (s *Session) Undo() bool {
	return s.step("Undo", s.history.Undo)
}

// Redo reapplies the last undone action. It reports false if there was none.
func (s *Session) Redo() bool {
	return s.step("Redo", s.history.Redo)
}

func (s *Session) step(name string, fn func(*Canvas) bool) bool {
	s.mu.Lock()
	ok := fn(s.canvas)
	var rev uint64
	if ok {
		rev = s.clock.Tick()
	}
	s.mu.Unlock()

	if !ok {
		s.log.Debugf("%s: nothing to do", name)
		return false
	}
	s.log.WithField("revision", rev).Debug(name)
	s.notify()
	return true
}

// Clear removes every stroke, one undoable RemoveStroke per stroke, last
// stroke first so that indices stay valid.
func (s *Session) Clear() int {
	s.mu.Lock()
	n := s.canvas.Len()
	for i := n - 1; i >= 0; i-- {
		s.run(RemoveStroke{Stroke: s.canvas.Stroke(i).Clone(), Index: i})
	}
	s.mu.Unlock()

	if n > 0 {
		s.notify()
	}
	return n
}

// SetZoom sets the zoom level and recenters the viewport.
func (s *Session) SetZoom(z float32) {
	s.mu.Lock()
	s.canvas.SetZoom(z)
	s.clock.Tick()
	s.mu.Unlock()
	s.notify()
}

// Pan moves the viewport by (dx, dy) logical units.
func (s *Session) Pan(dx, dy float32) {
	s.mu.Lock()
	s.canvas.Pan(dx, dy)
	s.clock.Tick()
	s.mu.Unlock()
	s.notify()
}

// SetViewport replaces the viewport and recomputes zoom from it.
func (s *Session) SetViewport(r geom.Rect) {
	s.mu.Lock()
	s.canvas.SetViewport(r)
	s.clock.Tick()
	s.mu.Unlock()
	s.notify()
}

// View calls fn with the canvas while holding the session lock. fn must not
// keep the canvas or call back into the session.
func (s *Session) View(fn func(c *Canvas)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.canvas)
}

// CanUndo and CanRedo report whether Undo and Redo would do anything.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// Snapshot returns a deep copy of the canvas. The history is included when
// withHistory is set.
func (s *Session) Snapshot(withHistory bool) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Version:   SnapshotVersion,
		SessionID: s.id,
		Revision:  s.clock.Now(),
		Canvas:    s.canvas.Clone(),
	}
	if withHistory {
		snap.History = &History{
			undo: s.history.UndoStack(),
			redo: s.history.RedoStack(),
		}
	}
	return snap
}

// Restore replaces the canvas with the snapshot's. The history is taken from
// the snapshot too, or reset when the snapshot has none. Any stroke in
// progress is dropped.
func (s *Session) Restore(snap Snapshot) {
	s.mu.Lock()
	s.canvas = snap.Canvas.Clone()
	if snap.History != nil {
		s.history = &History{
			undo: snap.History.UndoStack(),
			redo: snap.History.RedoStack(),
		}
	} else {
		s.history = NewHistory()
	}
	s.clock.Observe(snap.Revision)
	rev := s.clock.Tick()
	n := s.canvas.Len()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"from_session": snap.SessionID,
		"strokes":      n,
		"revision":     rev,
	}).Info("Session restored from snapshot")
	s.notify()
}

// OnChange registers fn to be called after every mutation with the new
// revision. Listeners run outside the session lock, in registration order.
func (s *Session) OnChange(fn func(rev uint64)) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Session) notify() {
	s.lmu.Lock()
	listeners := s.listeners
	s.lmu.Unlock()

	rev := s.clock.Now()
	for _, fn := range listeners {
		fn(rev)
	}
}
