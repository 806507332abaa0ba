package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/toolhouse/pkg/domain"
)

// DefaultCapacity is the number of records kept when NewStore is given zero.
const DefaultCapacity = 100

// Store implements ports.HistoryStore as a bounded ring in memory.
// Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	ring  []domain.RollRecord
	next  int
	count int
}

// NewStore creates a new in-memory history holding at most capacity records.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		ring: make([]domain.RollRecord, capacity),
	}
}

// Append stores a copy of the record, overwriting the oldest when full.
func (s *Store) Append(ctx context.Context, record domain.RollRecord) error {
	// Copy so callers can't mutate stored totals through the slice
	record.Totals = slices.Clone(record.Totals)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ring[s.next] = record
	s.next = (s.next + 1) % len(s.ring)
	if s.count < len(s.ring) {
		s.count++
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.RollRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := min(max(limit, 0), s.count)
	out := make([]domain.RollRecord, 0, n)
	for i := 1; i <= n; i++ {
		idx := (s.next - i + len(s.ring)) % len(s.ring)
		rec := s.ring[idx]
		rec.Totals = slices.Clone(rec.Totals)
		out = append(out, rec)
	}
	return out, nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
