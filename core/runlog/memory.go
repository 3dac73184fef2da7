package runlog

import (
	"context"
	"sync"
)

// MemoryStore keeps records in memory for testing or lightweight usage.
type MemoryStore struct {
	mu   sync.Mutex
	data []Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data, r)
	return nil
}

func (s *MemoryStore) Query(_ context.Context, q Query) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []Record
	for _, r := range s.data {
		if q.Match(r) {
			res = append(res, r)
		}
	}
	return finish(res, q.Limit), nil
}

func (s *MemoryStore) Close() error { return nil }
