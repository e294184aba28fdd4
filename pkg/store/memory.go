package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process plan store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*PlanRecord
}

// NewMemoryStore creates an empty in-memory plan store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*PlanRecord)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*PlanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, notFound(id)
	}
	return rec, nil
}

func (s *MemoryStore) Put(ctx context.Context, rec *PlanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]*PlanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*PlanRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

var _ PlanStore = (*MemoryStore)(nil)
