package bookingstate

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. It enforces the same sequence rule as the
// Postgres store so it can stand in for it in tests and dev tools.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string][]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]Record)}
}

func (s *MemoryStore) LatestHistory(ctx context.Context, bookingID string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := s.records[bookingID]
	if len(recs) == 0 {
		return nil, nil
	}
	rec := recs[len(recs)-1]
	return &rec, nil
}

func (s *MemoryStore) History(ctx context.Context, bookingID string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := s.records[bookingID]
	out := make([]Record, len(recs))
	copy(out, recs)
	return out, nil
}

func (s *MemoryStore) AppendHistory(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := s.records[rec.BookingID]
	if rec.Sequence != len(recs)+1 {
		return ErrSequenceConflict
	}
	s.records[rec.BookingID] = append(recs, rec)
	return nil
}
