package storage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"escrutinio/internal/models"
)

func TestSnapshotStore(t *testing.T) {
	s := NewSnapshotStore()
	assert.Nil(t, s.Load())

	first := &models.Snapshot{Contest: "cyl", Dispatch: "001"}
	s.Publish(first)
	assert.Same(t, first, s.Load())

	second := &models.Snapshot{Contest: "cyl", Dispatch: "002"}
	s.Publish(second)
	assert.Same(t, second, s.Load())
}

func TestSnapshotStoreConcurrentReaders(t *testing.T) {
	s := NewSnapshotStore()
	s.Publish(&models.Snapshot{Dispatch: "000"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				snap := s.Load()
				assert.NotNil(t, snap)
			}
		}()
	}
	for j := 0; j < 100; j++ {
		s.Publish(&models.Snapshot{Dispatch: "x"})
	}
	wg.Wait()
}
