package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"crypto-watchlist/internal/domain"
	"crypto-watchlist/internal/storage"
)

func TestSnapshotStore_InsertAndGet(t *testing.T) {
	s := NewSnapshotStore()
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := s.Insert(ctx, &domain.PricePoint{
			CoinID:    "bitcoin",
			PriceUSD:  domain.NewAmount(decimal.NewFromInt(int64(49000 + i))),
			FetchedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Insert %d: %v", i, err)
		}
	}

	points, err := s.GetByCoinID(ctx, "bitcoin", 3)
	if err != nil {
		t.Fatalf("GetByCoinID: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	// Newest first
	if !points[0].FetchedAt.Equal(base.Add(4 * time.Minute)) {
		t.Errorf("expected newest point first, got %v", points[0].FetchedAt)
	}
	if points[0].PriceUSD.String() != "49004" {
		t.Errorf("unexpected price: %s", points[0].PriceUSD)
	}
}

func TestSnapshotStore_GetUnknownCoin(t *testing.T) {
	s := NewSnapshotStore()

	points, err := s.GetByCoinID(context.Background(), "ethereum", 10)
	if err != nil {
		t.Fatalf("GetByCoinID: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected no points, got %d", len(points))
	}
}

func TestSnapshotStore_InsertCopiesPoint(t *testing.T) {
	s := NewSnapshotStore()
	ctx := context.Background()

	p := &domain.PricePoint{
		CoinID:    "bitcoin",
		PriceUSD:  domain.NewAmount(decimal.NewFromInt(100)),
		FetchedAt: time.Now(),
	}
	if err := s.Insert(ctx, p); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	p.CoinID = "mutated"

	points, _ := s.GetByCoinID(ctx, "bitcoin", 0)
	if len(points) != 1 || points[0].CoinID != "bitcoin" {
		t.Errorf("stored point was mutated through caller's pointer")
	}
}

func TestSnapshotStore_InvalidInput(t *testing.T) {
	s := NewSnapshotStore()

	if err := s.Insert(context.Background(), nil); err != storage.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if err := s.Insert(context.Background(), &domain.PricePoint{}); err != storage.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput for empty coin id, got %v", err)
	}
}
