package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"InkBoard/internal/core"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

type fsStore struct {
	basePath string
}

// NewStore creates a store that writes one JSON file per snapshot under
// basePath.
func NewStore(basePath string) (core.SnapshotStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	return &fsStore{basePath: basePath}, nil
}

func (s *fsStore) path(id string) (string, error) {
	if err := core.CheckID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, id+".json"), nil
}

func (s *fsStore) read(filePath string) (*core.Record, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var rec core.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *fsStore) Save(ctx context.Context, rec *core.Record) (string, error) {
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}
	filePath, err := s.path(rec.ID)
	if err != nil {
		return "", err
	}
	log := logrus.WithFields(logrus.Fields{"snapshot_id": rec.ID, "path": filePath})

	now := time.Now()
	rec.CreatedAt = now
	if old, err := s.read(filePath); err == nil {
		rec.CreatedAt = old.CreatedAt
	}
	rec.UpdatedAt = now

	data, err := json.Marshal(rec)
	if err != nil {
		log.WithError(err).Error("Failed to marshal snapshot")
		return "", err
	}

	// Readers only ever see complete files.
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		log.WithError(err).Error("Failed to write snapshot file")
		return "", err
	}
	if err := os.Rename(tmp, filePath); err != nil {
		log.WithError(err).Error("Failed to move snapshot file into place")
		return "", err
	}

	log.WithField("data_length", len(rec.Data)).Info("Snapshot saved")
	return rec.ID, nil
}

func (s *fsStore) Load(ctx context.Context, id string) (*core.Record, error) {
	filePath, err := s.path(id)
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{"snapshot_id": id, "path": filePath})

	rec, err := s.read(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("Snapshot file not found")
			return nil, fmt.Errorf("snapshot %s: %w", id, core.ErrNotFound)
		}
		log.WithError(err).Error("Failed to read snapshot file")
		return nil, err
	}

	log.Debug("Snapshot retrieved successfully")
	return rec, nil
}

func (s *fsStore) List(ctx context.Context) ([]*core.Record, error) {
	log := logrus.WithField("path", s.basePath)

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		log.WithError(err).Error("Failed to read snapshot directory")
		return nil, err
	}

	records := make([]*core.Record, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		rec, err := s.read(filepath.Join(s.basePath, entry.Name()))
		if err != nil {
			log.WithError(err).Warnf("Failed to read snapshot file %s, skipping", entry.Name())
			continue
		}
		rec.Data = nil
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})
	log.Debugf("Listed %d snapshots", len(records))
	return records, nil
}

func (s *fsStore) Delete(ctx context.Context, id string) error {
	filePath, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).WithField("snapshot_id", id).Error("Failed to delete snapshot file")
		return err
	}
	return nil
}
