package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"InkBoard/internal/core"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

type memStore struct {
	mu      sync.RWMutex
	records map[string]core.Record
}

// NewStore creates a store that keeps snapshots in process memory.
func NewStore() core.SnapshotStore {
	return &memStore{
		records: make(map[string]core.Record),
	}
}

func (s *memStore) Save(ctx context.Context, rec *core.Record) (string, error) {
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	} else if err := core.CheckID(rec.ID); err != nil {
		return "", err
	}

	now := time.Now()
	s.mu.Lock()
	if old, ok := s.records[rec.ID]; ok {
		rec.CreatedAt = old.CreatedAt
	} else {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	stored := *rec
	stored.Data = append([]byte(nil), rec.Data...)
	s.records[rec.ID] = stored
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"snapshot_id": rec.ID,
		"data_length": len(rec.Data),
	}).Info("Snapshot saved")
	return rec.ID, nil
}

func (s *memStore) Load(ctx context.Context, id string) (*core.Record, error) {
	log := logrus.WithField("snapshot_id", id)

	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()

	if !ok {
		log.Warn("Snapshot with specified ID not found")
		return nil, fmt.Errorf("snapshot %s: %w", id, core.ErrNotFound)
	}
	rec.Data = append([]byte(nil), rec.Data...)
	log.Debug("Snapshot retrieved successfully")
	return &rec, nil
}

func (s *memStore) List(ctx context.Context) ([]*core.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*core.Record, 0, len(s.records))
	for _, rec := range s.records {
		rec.Data = nil
		records = append(records, &rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].UpdatedAt.Equal(records[j].UpdatedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})
	return records, nil
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
	return nil
}
