package storage

import (
	"sync/atomic"

	"escrutinio/internal/models"
)

// SnapshotStore holds the last published snapshot of one contest.
// Publish swaps the whole snapshot; readers never observe a partial one.
// Snapshots handed out by Load must be treated as read-only.
type SnapshotStore struct {
	current atomic.Pointer[models.Snapshot]
}

// NewSnapshotStore creates an empty store
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Load returns the published snapshot, or nil before the first successful cycle
func (s *SnapshotStore) Load() *models.Snapshot {
	return s.current.Load()
}

// Publish replaces the published snapshot
func (s *SnapshotStore) Publish(snap *models.Snapshot) {
	s.current.Store(snap)
}
