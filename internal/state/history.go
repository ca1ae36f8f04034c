package state

import (
	"encoding/json"
	"fmt"
)

// History is a linear undo/redo log over a Canvas.
type History struct {
	undo []Action
	redo []Action
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Run applies a to c and records it. Any redo branch is discarded.
func (h *History) Run(a Action, c *Canvas) {
	a.Execute(c)
	h.undo = append(h.undo, a)
	clear(h.redo)
	h.redo = h.redo[:0]
}

// Undo reverses the most recent action. It reports false when there is
// nothing to undo.
func (h *History) Undo(c *Canvas) bool {
	a, ok := pop(&h.undo)
	if !ok {
		return false
	}
	a.Undo(c)
	h.redo = append(h.redo, a)
	return true
}

// Redo reapplies the most recently undone action and moves it back onto the
// undo stack. It reports false when there is nothing to redo.
func (h *History) Redo(c *Canvas) bool {
	a, ok := pop(&h.redo)
	if !ok {
		return false
	}
	a.Execute(c)
	h.undo = append(h.undo, a)
	return true
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// UndoStack returns a copy of the undo stack, oldest first.
func (h *History) UndoStack() []Action { return append([]Action(nil), h.undo...) }

// RedoStack returns a copy of the redo stack, oldest first. The next Redo
// replays the last element.
func (h *History) RedoStack() []Action { return append([]Action(nil), h.redo...) }

func pop(stack *[]Action) (Action, bool) {
	s := *stack
	if len(s) == 0 {
		return nil, false
	}
	a := s[len(s)-1]
	s[len(s)-1] = nil
	*stack = s[:len(s)-1]
	return a, true
}

type actionJSON struct {
	Kind   ActionKind `json:"kind"`
	Stroke *Stroke    `json:"stroke,omitempty"`
	Before *Stroke    `json:"before,omitempty"`
	After  *Stroke    `json:"after,omitempty"`
	Index  int        `json:"index"`
}

func encodeAction(a Action) (actionJSON, error) {
	switch a := a.(type) {
	case AddStroke:
		s := a.Stroke
		return actionJSON{Kind: KindAddStroke, Stroke: &s}, nil
	case RemoveStroke:
		s := a.Stroke
		return actionJSON{Kind: KindRemoveStroke, Stroke: &s, Index: a.Index}, nil
	case ModifyStroke:
		return actionJSON{Kind: KindModifyStroke, Before: a.Before, After: a.After, Index: a.Index}, nil
	default:
		return actionJSON{}, fmt.Errorf("%w: %T", ErrUnknownAction, a)
	}
}

func decodeAction(v actionJSON) (Action, error) {
	switch v.Kind {
	case KindAddStroke:
		if v.Stroke == nil {
			return nil, fmt.Errorf("%w: %s without stroke", ErrBadSnapshot, v.Kind)
		}
		return AddStroke{Stroke: *v.Stroke}, nil
	case KindRemoveStroke:
		if v.Stroke == nil {
			return nil, fmt.Errorf("%w: %s without stroke", ErrBadSnapshot, v.Kind)
		}
		return RemoveStroke{Stroke: *v.Stroke, Index: v.Index}, nil
	case KindModifyStroke:
		return ModifyStroke{Before: v.Before, After: v.After, Index: v.Index}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, v.Kind)
	}
}

type historyJSON struct {
	Undo []actionJSON `json:"undo"`
	Redo []actionJSON `json:"redo"`
}

func encodeStack(stack []Action) ([]actionJSON, error) {
	out := make([]actionJSON, 0, len(stack))
	for _, a := range stack {
		v, err := encodeAction(a)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeStack(stack []actionJSON) ([]Action, error) {
	out := make([]Action, 0, len(stack))
	for i, v := range stack {
		a, err := decodeAction(v)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func (h *History) MarshalJSON() ([]byte, error) {
	undo, err := encodeStack(h.undo)
	if err != nil {
		return nil, err
	}
	redo, err := encodeStack(h.redo)
	if err != nil {
		return nil, err
	}
	return json.Marshal(historyJSON{Undo: undo, Redo: redo})
}

func (h *History) UnmarshalJSON(data []byte) error {
	var v historyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	undo, err := decodeStack(v.Undo)
	if err != nil {
		return fmt.Errorf("undo stack: %w", err)
	}
	redo, err := decodeStack(v.Redo)
	if err != nil {
		return fmt.Errorf("redo stack: %w", err)
	}
	h.undo, h.redo = undo, redo
	return nil
}
