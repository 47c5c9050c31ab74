package storage

import (
	"context"
	"time"

	"crypto-watchlist/internal/domain"
)

// WatchlistStore provides access to the persisted watchlist.
// Implementations normalize coin ids (lowercase, trimmed) on every call
// and preserve insertion order in List.
type WatchlistStore interface {
	// Add inserts a coin with the given timestamp. Idempotent: returns
	// added=false and keeps the original timestamp if the coin is already
	// present. A non-nil error with added=true means the in-memory insert
	// succeeded but persistence failed.
	Add(ctx context.Context, coinID string, addedAt time.Time) (added bool, err error)

	// Remove deletes a coin. Returns removed=false if the coin was not
	// present; nothing is written in that case.
	Remove(ctx context.Context, coinID string) (removed bool, err error)

	// List returns all entries in insertion order.
	List(ctx context.Context) ([]domain.WatchlistEntry, error)

	// Clear removes all entries.
	Clear(ctx context.Context) error
}

// SnapshotStore is an append-only log of successfully fetched price
// snapshots. Insert failures are logged by callers and never abort the
// price fetch that produced the point.
type SnapshotStore interface {
	// Insert appends one point.
	Insert(ctx context.Context, p *domain.PricePoint) error

	// GetByCoinID retrieves up to limit points for a coin, newest first.
	// limit <= 0 means no limit.
	GetByCoinID(ctx context.Context, coinID string, limit int) ([]*domain.PricePoint, error)
}
