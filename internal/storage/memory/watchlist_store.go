package memory

import (
	"context"
	"sync"
	"time"

	"crypto-watchlist/internal/domain"
	"crypto-watchlist/internal/storage"
)

// WatchlistStore is an in-memory implementation of storage.WatchlistStore.
// State is lost at process exit; used in tests and as a fallback when no
// persistence is configured.
type WatchlistStore struct {
	mu      sync.RWMutex
	entries []domain.WatchlistEntry
	index   map[string]int
}

// NewWatchlistStore creates an empty in-memory watchlist store.
func NewWatchlistStore() *WatchlistStore {
	return &WatchlistStore{index: make(map[string]int)}
}

var _ storage.WatchlistStore = (*WatchlistStore)(nil)

// Add inserts a coin. Idempotent; the original timestamp wins on re-add.
func (s *WatchlistStore) Add(_ context.Context, coinID string, addedAt time.Time) (bool, error) {
	id := domain.NormalizeCoinID(coinID)
	if id == "" {
		return false, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[id]; exists {
		return false, nil
	}

	s.index[id] = len(s.entries)
	s.entries = append(s.entries, domain.WatchlistEntry{CoinID: id, AddedAt: addedAt})
	return true, nil
}

// Remove deletes a coin if present.
func (s *WatchlistStore) Remove(_ context.Context, coinID string) (bool, error) {
	id := domain.NormalizeCoinID(coinID)
	if id == "" {
		return false, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos, exists := s.index[id]
	if !exists {
		return false, nil
	}

	s.entries = append(s.entries[:pos], s.entries[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.entries); i++ {
		s.index[s.entries[i].CoinID] = i
	}
	return true, nil
}

// List returns all entries in insertion order.
func (s *WatchlistStore) List(_ context.Context) ([]domain.WatchlistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.WatchlistEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Clear removes all entries.
func (s *WatchlistStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.index = make(map[string]int)
	return nil
}
