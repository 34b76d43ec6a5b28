package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/ragdex/internal/core/domain"
	"github.com/custodia-labs/ragdex/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore for
// testing.
type HistoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	entries []domain.HistoryEntry
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// Append records a search.
func (s *HistoryStore) Append(ctx context.Context, query string, results int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.entries = append(s.entries, domain.HistoryEntry{
		ID:        s.nextID,
		Query:     query,
		Results:   results,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

// List returns up to limit entries, most recent first. A non-positive
// limit returns the full history.
func (s *HistoryStore) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]domain.HistoryEntry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		entries = append(entries, s.entries[i])
		if limit > 0 && len(entries) == limit {
			break
		}
	}
	return entries, nil
}
