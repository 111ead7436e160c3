package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"cardtrack/internal/card/models"
	"cardtrack/pkg/platform/sentinel"
)

// MemoryStore keeps the registry in process memory. It backs unit tests and
// development without a database; semantics mirror the Postgres store.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	cards  map[string]models.Card
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cards: make(map[string]models.Card)}
}

func (s *MemoryStore) Create(_ context.Context, card models.Card) (models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cards[card.Name]; exists {
		return models.Card{}, sentinel.ErrConflict
	}
	s.nextID++
	card.ID = s.nextID
	s.cards[card.Name] = card
	return card, nil
}

func (s *MemoryStore) FindByName(_ context.Context, name string) (models.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	card, ok := s.cards[name]
	if !ok {
		return models.Card{}, sentinel.ErrNotFound
	}
	return card, nil
}

// FindByNameForUpdate matches the Postgres row-lock variant. The engine's
// transaction runner already serializes memory-backed mutations, so a plain
// read is sufficient here.
func (s *MemoryStore) FindByNameForUpdate(ctx context.Context, name string) (models.Card, error) {
	return s.FindByName(ctx, name)
}

func (s *MemoryStore) Update(_ context.Context, card models.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[card.Name]; !ok {
		return sentinel.ErrNotFound
	}
	s.cards[card.Name] = card
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[name]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.cards, name)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]models.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(models.Card) bool { return true }), nil
}

func (s *MemoryStore) ListByGeoStatus(_ context.Context, status string) ([]models.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(c models.Card) bool { return c.GeoStatus == status }), nil
}

func (s *MemoryStore) ListByOffloadStatus(_ context.Context, status string) ([]models.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(c models.Card) bool { return c.OffloadStatus == status }), nil
}

func (s *MemoryStore) SearchByPrefix(_ context.Context, prefix string) ([]models.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(c models.Card) bool { return strings.HasPrefix(c.Name, prefix) }), nil
}

func (s *MemoryStore) collect(keep func(models.Card) bool) []models.Card {
	var out []models.Card
	for _, card := range s.cards {
		if keep(card) {
			out = append(out, card)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
