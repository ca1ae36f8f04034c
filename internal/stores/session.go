package stores

import (
	"context"
	"fmt"

	"InkBoard/internal/core"
	"InkBoard/internal/state"

	"github.com/sirupsen/logrus"
)

// SaveSession stores the session, history included, under id. An empty id
// creates a new record. The record's ID is returned.
func SaveSession(ctx context.Context, store core.SnapshotStore, s *state.Session, id, name string) (string, error) {
	snap := s.Snapshot(true)
	data, err := state.EncodeSnapshot(snap)
	if err != nil {
		return "", err
	}

	rec := &core.Record{ID: id, Name: name, Data: data}
	id, err = store.Save(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"snapshot_id": id,
		"session_id":  snap.SessionID,
		"revision":    snap.Revision,
		"strokes":     snap.Canvas.Len(),
	}).Info("Session saved")
	return id, nil
}

// LoadSession restores the record id into s.
func LoadSession(ctx context.Context, store core.SnapshotStore, s *state.Session, id string) error {
	rec, err := store.Load(ctx, id)
	if err != nil {
		return err
	}
	snap, err := state.DecodeSnapshot(rec.Data)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", id, err)
	}
	s.Restore(snap)
	return nil
}
