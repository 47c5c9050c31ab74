package memory

import (
	"context"
	"sync"

	"crypto-watchlist/internal/domain"
	"crypto-watchlist/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
// Growth is unbounded, which is acceptable for a short-lived per-session
// process.
type SnapshotStore struct {
	mu     sync.RWMutex
	byCoin map[string][]*domain.PricePoint // append order, oldest first
}

// NewSnapshotStore creates an empty in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{byCoin: make(map[string][]*domain.PricePoint)}
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// Insert appends one point.
func (s *SnapshotStore) Insert(_ context.Context, p *domain.PricePoint) error {
	if p == nil || p.CoinID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pointCopy := *p
	s.byCoin[p.CoinID] = append(s.byCoin[p.CoinID], &pointCopy)
	return nil
}

// GetByCoinID retrieves up to limit points for a coin, newest first.
func (s *SnapshotStore) GetByCoinID(_ context.Context, coinID string, limit int) ([]*domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points := s.byCoin[domain.NormalizeCoinID(coinID)]
	out := make([]*domain.PricePoint, 0, len(points))
	for i := len(points) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		pointCopy := *points[i]
		out = append(out, &pointCopy)
	}
	return out, nil
}
