package state

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SnapshotVersion is written into every encoded snapshot.
const SnapshotVersion = 1

var (
	ErrBadSnapshot   = errors.New("state: malformed snapshot")
	ErrUnknownAction = errors.New("state: unknown action kind")
)

// Snapshot is the persisted form of a session: the canvas and, optionally,
// its history. The stroke being drawn is not part of it.
type Snapshot struct {
	Version   int      `json:"version"`
	SessionID string   `json:"session_id"`
	Revision  uint64   `json:"revision"`
	Canvas    *Canvas  `json:"canvas"`
	History   *History `json:"history,omitempty"`
}

// EncodeSnapshot serialises s as JSON.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	if s.Canvas == nil {
		return nil, fmt.Errorf("%w: no canvas", ErrBadSnapshot)
	}
	s.Version = SnapshotVersion
	return json.Marshal(s)
}

// DecodeSnapshot parses a snapshot produced by EncodeSnapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return Snapshot{}, fmt.Errorf("%w: version %d, want %d", ErrBadSnapshot, s.Version, SnapshotVersion)
	}
	if s.Canvas == nil {
		return Snapshot{}, fmt.Errorf("%w: no canvas", ErrBadSnapshot)
	}
	if s.History != nil {
		if err := checkHistory(s.Canvas, s.History); err != nil {
			return Snapshot{}, err
		}
	}
	return s, nil
}

// checkHistory replays h against copies of c: every undo step back to the
// start, and every redo step forward from c. A step that does not fit the
// strokes it meets makes the snapshot unusable.
func checkHistory(c *Canvas, h *History) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: history does not match canvas: %v", ErrBadSnapshot, r)
		}
	}()

	undone := c.Clone()
	for i := len(h.undo) - 1; i >= 0; i-- {
		h.undo[i].Undo(undone)
	}
	redone := c.Clone()
	for i := len(h.redo) - 1; i >= 0; i-- {
		h.redo[i].Execute(redone)
	}
	return nil
}
