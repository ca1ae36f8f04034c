package core

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"
)

// ErrNotFound is returned when no snapshot has the requested ID.
var ErrNotFound = errors.New("snapshot not found")

type (
	// Record is one stored snapshot. Data holds the encoded state.Snapshot
	// and is left empty by List.
	Record struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Data      []byte    `json:"data,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// SnapshotStore is the persistence layer for snapshots.
	SnapshotStore interface {
		// Save creates the record, or replaces it when ID is set and
		// exists. A record without ID gets a new one. The ID is returned
		// and also written back into rec.
		Save(ctx context.Context, rec *Record) (string, error)

		// Load returns the record with its data.
		Load(ctx context.Context, id string) (*Record, error)

		// List returns metadata for every record, most recently updated
		// first.
		List(ctx context.Context) ([]*Record, error)

		// Delete removes a record. Deleting a missing record is not an error.
		Delete(ctx context.Context, id string) error
	}
)

// CheckID rejects IDs that could escape a directory or key prefix.
func CheckID(id string) error {
	if id == "" || id == "." || id == ".." {
		return errors.New("invalid snapshot id: must not be empty or a dot directory")
	}
	if path.Base(id) != id || strings.ContainsAny(id, `/\`) {
		return errors.New("invalid snapshot id: must not be a path")
	}
	return nil
}
