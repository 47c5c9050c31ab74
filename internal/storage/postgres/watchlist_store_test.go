package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-watchlist/internal/storage"
	"crypto-watchlist/internal/storage/postgres"
)

func TestWatchlistStore_AddListRemove(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewWatchlistStore(pool)
	ctx := context.Background()
	now := time.Now().Truncate(time.Millisecond)

	added, err := store.Add(ctx, "Bitcoin", now)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = store.Add(ctx, "ethereum", now)
	require.NoError(t, err)
	assert.True(t, added)

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "bitcoin", entries[0].CoinID, "insertion order must be preserved")
	assert.Equal(t, "ethereum", entries[1].CoinID)

	removed, err := store.Remove(ctx, "BITCOIN")
	require.NoError(t, err)
	assert.True(t, removed)

	entries, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ethereum", entries[0].CoinID)
}

func TestWatchlistStore_AddIsIdempotent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewWatchlistStore(pool)
	ctx := context.Background()

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	added, err := store.Add(ctx, "bitcoin", first)
	require.NoError(t, err)
	require.True(t, added)

	added, err = store.Add(ctx, "bitcoin", first.Add(24*time.Hour))
	require.NoError(t, err)
	assert.False(t, added)

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].AddedAt.Equal(first), "original added_at must win on re-add")
}

func TestWatchlistStore_RemoveAbsent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewWatchlistStore(pool)

	removed, err := store.Remove(context.Background(), "dogecoin")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestWatchlistStore_Clear(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewWatchlistStore(pool)
	ctx := context.Background()

	_, err := store.Add(ctx, "bitcoin", time.Now())
	require.NoError(t, err)
	require.NoError(t, store.Clear(ctx))

	entries, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWatchlistStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewWatchlistStore(pool)
	ctx := context.Background()

	_, err := store.Add(ctx, "   ", time.Now())
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	_, err = store.Remove(ctx, "")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
