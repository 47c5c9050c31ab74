package memory

import (
	"context"
	"testing"
	"time"

	"crypto-watchlist/internal/storage"
)

func TestWatchlistStore_AddAndList(t *testing.T) {
	s := NewWatchlistStore()
	ctx := context.Background()
	now := time.Now()

	added, err := s.Add(ctx, "BTC", now)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !added {
		t.Fatal("expected added=true for new coin")
	}

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].CoinID != "btc" {
		t.Errorf("expected lowercase id btc, got %s", entries[0].CoinID)
	}
}

func TestWatchlistStore_DuplicateAddKeepsTimestamp(t *testing.T) {
	s := NewWatchlistStore()
	ctx := context.Background()

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := s.Add(ctx, "bitcoin", first); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	added, err := s.Add(ctx, "bitcoin", first.Add(time.Hour))
	if err != nil {
		t.Fatalf("second Add failed: %v", err)
	}
	if added {
		t.Error("expected added=false for duplicate")
	}

	entries, _ := s.List(ctx)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !entries[0].AddedAt.Equal(first) {
		t.Errorf("timestamp changed on duplicate add: %v", entries[0].AddedAt)
	}
}

func TestWatchlistStore_RemovePreservesOrder(t *testing.T) {
	s := NewWatchlistStore()
	ctx := context.Background()

	for _, id := range []string{"a-coin", "b-coin", "c-coin", "d-coin"} {
		if _, err := s.Add(ctx, id, time.Now()); err != nil {
			t.Fatalf("Add %s: %v", id, err)
		}
	}

	removed, err := s.Remove(ctx, "b-coin")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !removed {
		t.Fatal("expected removed=true")
	}

	entries, _ := s.List(ctx)
	want := []string{"a-coin", "c-coin", "d-coin"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, id := range want {
		if entries[i].CoinID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, entries[i].CoinID)
		}
	}
}

func TestWatchlistStore_RemoveAbsent(t *testing.T) {
	s := NewWatchlistStore()

	removed, err := s.Remove(context.Background(), "bitcoin")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if removed {
		t.Error("expected removed=false for absent coin")
	}
}

func TestWatchlistStore_InvalidInput(t *testing.T) {
	s := NewWatchlistStore()
	ctx := context.Background()

	if _, err := s.Add(ctx, "", time.Now()); err != storage.ErrInvalidInput {
		t.Errorf("Add: expected ErrInvalidInput, got %v", err)
	}
	if _, err := s.Remove(ctx, "  "); err != storage.ErrInvalidInput {
		t.Errorf("Remove: expected ErrInvalidInput, got %v", err)
	}
}
