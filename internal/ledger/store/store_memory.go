package store

import (
	"context"
	"sort"
	"sync"

	"cardtrack/internal/ledger/models"
	"cardtrack/pkg/platform/sentinel"
)

// MemoryOperationStore keeps the live ledger in process memory. IDs are
// assigned from a monotonic counter that never reuses a value, matching the
// BIGSERIAL behavior of the Postgres store.
type MemoryOperationStore struct {
	mu     sync.RWMutex
	nextID int64
	ops    map[int64]models.Operation
}

func NewMemoryOperationStore() *MemoryOperationStore {
	return &MemoryOperationStore{ops: make(map[int64]models.Operation)}
}

func (s *MemoryOperationStore) Append(_ context.Context, op *models.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	op.ID = s.nextID
	s.ops[op.ID] = *op
	return nil
}

func (s *MemoryOperationStore) FindByID(_ context.Context, id int64) (models.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	op, ok := s.ops[id]
	if !ok {
		return models.Operation{}, sentinel.ErrNotFound
	}
	return op, nil
}

func (s *MemoryOperationStore) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ops[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.ops, id)
	return nil
}

// LatestForCard returns the surviving operation with the highest ID for the
// card. IDs are monotonic so the highest ID is the most recent entry.
func (s *MemoryOperationStore) LatestForCard(_ context.Context, cardName string) (models.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest models.Operation
	found := false
	for _, op := range s.ops {
		if op.CardName == cardName && (!found || op.ID > latest.ID) {
			latest = op
			found = true
		}
	}
	if !found {
		return models.Operation{}, sentinel.ErrNotFound
	}
	return latest, nil
}

func (s *MemoryOperationStore) ListForCard(_ context.Context, cardName string) ([]models.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Operation
	for _, op := range s.ops {
		if op.CardName == cardName {
			out = append(out, op)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryOperationStore) ListRecent(_ context.Context, limit int) ([]models.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Operation, 0, len(s.ops))
	for _, op := range s.ops {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryOperationStore) CountForCard(_ context.Context, cardName string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, op := range s.ops {
		if op.CardName == cardName {
			count++
		}
	}
	return count, nil
}

// MatchingAfter serves the notification watcher: operations whose offload
// status equals target with IDs strictly above afterID, ascending.
func (s *MemoryOperationStore) MatchingAfter(_ context.Context, target string, afterID int64) ([]models.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Operation
	for _, op := range s.ops {
		if op.OffloadStatus == target && op.ID > afterID {
			out = append(out, op)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MaxMatchingID returns the highest existing ID with the target offload
// status, or zero when none match.
func (s *MemoryOperationStore) MaxMatchingID(_ context.Context, target string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var max int64
	for _, op := range s.ops {
		if op.OffloadStatus == target && op.ID > max {
			max = op.ID
		}
	}
	return max, nil
}

// MemoryCanceledStore is the append-only canceled ledger in memory.
type MemoryCanceledStore struct {
	mu  sync.RWMutex
	ops []models.CanceledOperation
}

func NewMemoryCanceledStore() *MemoryCanceledStore {
	return &MemoryCanceledStore{}
}

func (s *MemoryCanceledStore) Append(_ context.Context, op models.CanceledOperation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = append(s.ops, op)
	return nil
}

func (s *MemoryCanceledStore) ListRecent(_ context.Context, limit int) ([]models.CanceledOperation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CanceledOperation, len(s.ops))
	copy(out, s.ops)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
