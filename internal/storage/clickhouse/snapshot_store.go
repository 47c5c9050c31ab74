package clickhouse

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"crypto-watchlist/internal/domain"
	"crypto-watchlist/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using ClickHouse.
// Prices are stored as Float64: the snapshot log serves trend inspection,
// not accounting, so the float rounding at this edge is acceptable.
type SnapshotStore struct {
	conn *Conn
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(conn *Conn) *SnapshotStore {
	return &SnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// Insert appends one point.
func (s *SnapshotStore) Insert(ctx context.Context, p *domain.PricePoint) error {
	if p == nil || p.CoinID == "" {
		return storage.ErrInvalidInput
	}

	var change *float64
	if p.Change24h != nil {
		v := p.Change24h.InexactFloat64()
		change = &v
	}

	query := `
		INSERT INTO price_points (coin_id, price_usd, change_24h, fetched_at)
		VALUES (?, ?, ?, ?)
	`

	err := s.conn.Exec(ctx, query,
		p.CoinID,
		p.PriceUSD.InexactFloat64(),
		change,
		p.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("insert price point: %w", err)
	}
	return nil
}

// GetByCoinID retrieves up to limit points for a coin, newest first.
func (s *SnapshotStore) GetByCoinID(ctx context.Context, coinID string, limit int) ([]*domain.PricePoint, error) {
	query := `
		SELECT coin_id, price_usd, change_24h, fetched_at
		FROM price_points
		WHERE coin_id = ?
		ORDER BY fetched_at DESC
	`
	args := []any{domain.NormalizeCoinID(coinID)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query price points: %w", err)
	}
	defer rows.Close()

	var points []*domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		var price float64
		var change *float64

		if err := rows.Scan(&p.CoinID, &price, &change, &p.FetchedAt); err != nil {
			return nil, fmt.Errorf("scan price point: %w", err)
		}

		p.PriceUSD = domain.NewAmount(decimal.NewFromFloat(price))
		if change != nil {
			d := domain.NewAmount(decimal.NewFromFloat(*change))
			p.Change24h = &d
		}
		points = append(points, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price points: %w", err)
	}

	return points, nil
}
