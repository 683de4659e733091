package store

import (
	"sync"

	"recall/internal/domain"
	"recall/internal/port"
)

// MemoryIndexStore is the in-process fallback used when the bolt file
// cannot be opened, and the default store in tests. Safe for concurrent
// use.
type MemoryIndexStore struct {
	mu       sync.RWMutex
	postings map[string][]domain.Posting
	lengths  map[string]int
	stats    domain.Stats
	vectors  []port.VectorItem
}

func NewMemoryIndexStore() *MemoryIndexStore {
	return &MemoryIndexStore{
		postings: make(map[string][]domain.Posting),
		lengths:  make(map[string]int),
	}
}

func (s *MemoryIndexStore) ApplyBatch(batch port.IndexBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range batch.Lengths {
		s.lengths[id] = n
	}
	for term, newPostings := range batch.Postings {
		s.postings[term] = append(s.postings[term], newPostings...)
	}
	s.stats = batch.Stats
	return nil
}

func (s *MemoryIndexStore) GetPostings(term string) ([]domain.Posting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.postings[term], nil
}

func (s *MemoryIndexStore) ChunkLength(chunkID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lengths[chunkID], nil
}

func (s *MemoryIndexStore) Stats() (domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats, nil
}

func (s *MemoryIndexStore) PutVectors(items []port.VectorItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = append(s.vectors, items...)
	return nil
}

func (s *MemoryIndexStore) LoadVectors() ([]port.VectorItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]port.VectorItem, len(s.vectors))
	copy(out, s.vectors)
	return out, nil
}

func (s *MemoryIndexStore) Close() error {
	return nil
}
