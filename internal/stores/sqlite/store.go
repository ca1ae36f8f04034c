package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"InkBoard/internal/core"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	data BLOB,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);`

// NewStore opens (or creates) the SQLite database at dataSourceName.
func NewStore(dataSourceName string) (core.SnapshotStore, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// :memory: databases exist per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshots table: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Save(ctx context.Context, rec *core.Record) (string, error) {
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	} else if err := core.CheckID(rec.ID); err != nil {
		return "", err
	}
	log := logrus.WithFields(logrus.Fields{
		"snapshot_id": rec.ID,
		"data_length": len(rec.Data),
	})

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var created time.Time
	err = tx.QueryRowContext(ctx, "SELECT created_at FROM snapshots WHERE id = ?", rec.ID).Scan(&created)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		created = now
		_, err = tx.ExecContext(ctx,
			"INSERT INTO snapshots (id, name, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			rec.ID, rec.Name, rec.Data, created, now)
	case err == nil:
		_, err = tx.ExecContext(ctx,
			"UPDATE snapshots SET name = ?, data = ?, updated_at = ? WHERE id = ?",
			rec.Name, rec.Data, now, rec.ID)
	}
	if err != nil {
		log.WithError(err).Error("Failed to save snapshot")
		return "", err
	}
	if err := tx.Commit(); err != nil {
		log.WithError(err).Error("Failed to commit snapshot")
		return "", err
	}

	rec.CreatedAt, rec.UpdatedAt = created, now
	log.Info("Snapshot saved")
	return rec.ID, nil
}

func (s *sqliteStore) Load(ctx context.Context, id string) (*core.Record, error) {
	log := logrus.WithField("snapshot_id", id)

	rec := core.Record{ID: id}
	err := s.db.QueryRowContext(ctx,
		"SELECT name, data, created_at, updated_at FROM snapshots WHERE id = ?", id,
	).Scan(&rec.Name, &rec.Data, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("Snapshot with specified ID not found")
			return nil, fmt.Errorf("snapshot %s: %w", id, core.ErrNotFound)
		}
		log.WithError(err).Error("Failed to retrieve snapshot")
		return nil, err
	}
	log.Debug("Snapshot retrieved successfully")
	return &rec, nil
}

func (s *sqliteStore) List(ctx context.Context) ([]*core.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_at, updated_at FROM snapshots ORDER BY updated_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*core.Record
	for rows.Next() {
		var rec core.Record
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", id)
	return err
}
