package state

import "slices"

// ActionKind names an Action variant on the wire and in logs.
type ActionKind string

const (
	KindAddStroke    ActionKind = "add_stroke"
	KindRemoveStroke ActionKind = "remove_stroke"
	KindModifyStroke ActionKind = "modify_stroke"
)

// Action is a reversible canvas mutation. It carries everything needed to
// apply and reverse itself. The set of actions is closed: AddStroke,
// RemoveStroke and ModifyStroke.
//
// Indices are only meaningful against the stroke list the action was built
// for. Applying an action whose index is out of range panics, since it means
// the linear history was broken.
type Action interface {
	Kind() ActionKind
	Execute(c *Canvas)
	Undo(c *Canvas)

	isAction()
}

// AddStroke appends a stroke. Undo drops the last stroke.
type AddStroke struct {
	Stroke Stroke
}

// RemoveStroke deletes the stroke at Index. Stroke holds the removed value
// so that Undo can put it back.
type RemoveStroke struct {
	Stroke Stroke
	Index  int
}

// ModifyStroke replaces the stroke at Index. A nil After makes Execute a
// no-op and a nil Before makes Undo a no-op.
type ModifyStroke struct {
	Before *Stroke
	After  *Stroke
	Index  int
}

func (AddStroke) Kind() ActionKind    { return KindAddStroke }
func (RemoveStroke) Kind() ActionKind { return KindRemoveStroke }
func (ModifyStroke) Kind() ActionKind { return KindModifyStroke }

func (AddStroke) isAction()    {}
func (RemoveStroke) isAction() {}
func (ModifyStroke) isAction() {}

func (a AddStroke) Execute(c *Canvas) {
	c.strokes = append(c.strokes, a.Stroke.Clone())
}

func (a AddStroke) Undo(c *Canvas) {
	c.checkIndex(len(c.strokes)-1, "undo add_stroke")
	c.strokes[len(c.strokes)-1] = Stroke{}
	c.strokes = c.strokes[:len(c.strokes)-1]
}

func (a RemoveStroke) Execute(c *Canvas) {
	c.checkIndex(a.Index, "remove_stroke")
	c.strokes = slices.Delete(c.strokes, a.Index, a.Index+1)
}

func (a RemoveStroke) Undo(c *Canvas) {
	// Index == len re-appends at the tail.
	if a.Index != len(c.strokes) {
		c.checkIndex(a.Index, "undo remove_stroke")
	}
	c.strokes = slices.Insert(c.strokes, a.Index, a.Stroke.Clone())
}

func (a ModifyStroke) Execute(c *Canvas) {
	c.checkIndex(a.Index, "modify_stroke")
	if a.After != nil {
		c.strokes[a.Index] = a.After.Clone()
	}
}

func (a ModifyStroke) Undo(c *Canvas) {
	c.checkIndex(a.Index, "undo modify_stroke")
	if a.Before != nil {
		c.strokes[a.Index] = a.Before.Clone()
	}
}
