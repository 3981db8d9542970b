package records

import (
	"context"
	"sync"
)

// MemoryStore keeps records for the lifetime of the process
type MemoryStore struct {
	mu      sync.RWMutex
	byLevel map[string][]Record
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byLevel: make(map[string][]Record)}
}

func (s *MemoryStore) Save(ctx context.Context, rec Record) error {
	rec = prepare(rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byLevel[rec.Level] = append(s.byLevel[rec.Level], rec)
	return nil
}

func (s *MemoryStore) Best(ctx context.Context, level string) (*Record, error) {
	recs, _ := s.List(ctx, level, 1)
	if len(recs) == 0 {
		return nil, ErrNoRecord
	}
	return &recs[0], nil
}

func (s *MemoryStore) List(ctx context.Context, level string, limit int) ([]Record, error) {
	s.mu.RLock()
	recs := append([]Record(nil), s.byLevel[level]...)
	s.mu.RUnlock()

	rank(recs)
	if n := normalizeLimit(limit); len(recs) > n {
		recs = recs[:n]
	}
	return recs, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
