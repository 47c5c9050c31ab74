package postgres

import (
	"context"
	"fmt"
	"time"

	"crypto-watchlist/internal/domain"
	"crypto-watchlist/internal/storage"
)

// WatchlistStore implements storage.WatchlistStore using PostgreSQL.
// Insertion order is materialized by the position sequence rather than
// kept in memory, so it survives restarts.
type WatchlistStore struct {
	pool *Pool
}

// NewWatchlistStore creates a new WatchlistStore.
func NewWatchlistStore(pool *Pool) *WatchlistStore {
	return &WatchlistStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WatchlistStore = (*WatchlistStore)(nil)

// Add inserts a coin. ON CONFLICT DO NOTHING makes re-adds a no-op that
// keeps the original added_at.
func (s *WatchlistStore) Add(ctx context.Context, coinID string, addedAt time.Time) (bool, error) {
	id := domain.NormalizeCoinID(coinID)
	if id == "" {
		return false, storage.ErrInvalidInput
	}

	query := `
		INSERT INTO watchlist (coin_id, added_at)
		VALUES ($1, $2)
		ON CONFLICT (coin_id) DO NOTHING
	`

	tag, err := s.pool.Exec(ctx, query, id, addedAt)
	if err != nil {
		return false, fmt.Errorf("insert watchlist entry: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Remove deletes a coin if present.
func (s *WatchlistStore) Remove(ctx context.Context, coinID string) (bool, error) {
	id := domain.NormalizeCoinID(coinID)
	if id == "" {
		return false, storage.ErrInvalidInput
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM watchlist WHERE coin_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete watchlist entry: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// List returns all entries in insertion order.
func (s *WatchlistStore) List(ctx context.Context) ([]domain.WatchlistEntry, error) {
	query := `
		SELECT coin_id, added_at
		FROM watchlist
		ORDER BY position ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query watchlist: %w", err)
	}
	defer rows.Close()

	var entries []domain.WatchlistEntry
	for rows.Next() {
		var e domain.WatchlistEntry
		if err := rows.Scan(&e.CoinID, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scan watchlist entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchlist: %w", err)
	}

	return entries, nil
}

// Clear removes all entries.
func (s *WatchlistStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM watchlist`); err != nil {
		return fmt.Errorf("clear watchlist: %w", err)
	}
	return nil
}
