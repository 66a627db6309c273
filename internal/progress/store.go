package progress

import "sync"

// Store is the snapshot transport the ledger depends on: opaque load/save of
// one serialized state blob. Load returns (nil, nil) when no snapshot has
// been written yet. Save replaces the snapshot as a whole; partial writes
// are the transport's problem, not the engine's. Retry policy, if any, also
// belongs to the transport.
type Store interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// MemoryStore keeps the snapshot in memory. Used by tests and as a throwaway
// backend when no database is configured.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the last saved blob, or (nil, nil) if nothing was saved.
func (s *MemoryStore) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, nil
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

// Save replaces the stored blob.
func (s *MemoryStore) Save(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make([]byte, len(data))
	copy(s.data, data)
	return nil
}
