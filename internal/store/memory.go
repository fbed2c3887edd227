package store

import (
	"context"
	"sync"
)

// MemoryStore keeps the selection in process memory.
type MemoryStore struct {
	mutex sync.Mutex
	paths []string
	saves int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(initial ...string) *MemoryStore {
	return &MemoryStore{paths: normalizePaths(initial)}
}

// Load returns a copy of the stored selection.
func (memoryStore *MemoryStore) Load(ctx context.Context) ([]string, error) {
	memoryStore.mutex.Lock()
	defer memoryStore.mutex.Unlock()
	return append([]string(nil), memoryStore.paths...), nil
}

// Save replaces the stored selection.
func (memoryStore *MemoryStore) Save(ctx context.Context, paths []string) error {
	memoryStore.mutex.Lock()
	defer memoryStore.mutex.Unlock()
	memoryStore.paths = normalizePaths(paths)
	memoryStore.saves++
	return nil
}

// SaveCount reports how many times Save was called.
func (memoryStore *MemoryStore) SaveCount() int {
	memoryStore.mutex.Lock()
	defer memoryStore.mutex.Unlock()
	return memoryStore.saves
}
