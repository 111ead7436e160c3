package store

import (
	"context"
	"sort"
	"sync"

	"cardtrack/internal/vocab/models"
	"cardtrack/pkg/platform/sentinel"
)

// MemoryStore holds one vocabulary axis in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	entries map[int64]models.Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[int64]models.Entry)}
}

func (s *MemoryStore) Create(_ context.Context, name string) (models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.Name == name {
			return models.Entry{}, sentinel.ErrConflict
		}
	}
	s.nextID++
	entry := models.Entry{ID: s.nextID, Name: name}
	s.entries[entry.ID] = entry
	return entry, nil
}

func (s *MemoryStore) Rename(_ context.Context, id int64, name string) (models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return models.Entry{}, sentinel.ErrNotFound
	}
	for _, e := range s.entries {
		if e.Name == name && e.ID != id {
			return models.Entry{}, sentinel.ErrConflict
		}
	}
	entry.Name = name
	s.entries[id] = entry
	return entry, nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
