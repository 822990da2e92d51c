package store

import (
	"fmt"
	"sync"

	"tagdb/internal/tagdb"
)

// MemoryStore keeps encoded databases in memory keyed by location. Saved
// databases are serialized, so later edits to the saved value are not
// visible through Load. This implementation is safe for concurrent use.
type MemoryStore struct {
	codec
	blobs map[string][]byte
	mu    sync.RWMutex
}

var _ tagdb.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Load(location string) (*tagdb.Database, error) {
	m.mu.RLock()
	data, ok := m.blobs[location]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", location, tagdb.ErrNotFound)
	}
	return m.decode(data)
}

func (m *MemoryStore) Save(db *tagdb.Database) error {
	data, err := m.encode(db)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[db.Location()] = data
	return nil
}

// Raw returns the stored bytes for location.
func (m *MemoryStore) Raw(location string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[location]
	return data, ok
}
