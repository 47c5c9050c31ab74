package tracker

import (
	"context"
	"sync"
	"time"

	"crypto-watchlist/internal/domain"
)

// sweepResult pairs a watchlist entry with its fetched snapshot. A nil
// snapshot marks a failed fetch.
type sweepResult struct {
	coinID   string
	addedAt  time.Time
	snapshot *domain.PriceSnapshot
}

// sweep fetches a current snapshot for every entry with at most
// sweepWorkers fetches in flight. Results come back in entry order and
// a failed fetch never aborts the others.
func (s *Service) sweep(ctx context.Context, entries []domain.WatchlistEntry) []sweepResult {
	results := make([]sweepResult, len(entries))
	sem := make(chan struct{}, s.sweepWorkers)

	var wg sync.WaitGroup
	for i, entry := range entries {
		wg.Add(1)
		go func(i int, entry domain.WatchlistEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			snap, err := s.prices.GetCurrentPrice(ctx, entry.CoinID)
			if err != nil {
				s.logger.Printf("price fetch failed for %s: %v", entry.CoinID, err)
				snap = nil
			}
			results[i] = sweepResult{
				coinID:   entry.CoinID,
				addedAt:  entry.AddedAt,
				snapshot: snap,
			}
		}(i, entry)
	}
	wg.Wait()

	return results
}
