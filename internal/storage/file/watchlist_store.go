// Package file implements storage.WatchlistStore on top of a single JSON
// file: an object mapping lowercase coin ids to "YYYY-MM-DD HH:MM:SS"
// timestamps, rewritten wholesale on every mutation.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"crypto-watchlist/internal/domain"
	"crypto-watchlist/internal/storage"
)

// WatchlistStore is a JSON-file-backed implementation of
// storage.WatchlistStore. Insertion order is preserved both in memory and
// on disk. An absent or unparsable file loads as an empty watchlist.
type WatchlistStore struct {
	mu      sync.RWMutex
	path    string
	entries []domain.WatchlistEntry
	index   map[string]int // coin id -> position in entries
	logger  *log.Logger
}

// NewWatchlistStore loads the watchlist from path. Load failures are
// logged and degrade to an empty watchlist; the constructor never fails.
func NewWatchlistStore(path string, logger *log.Logger) *WatchlistStore {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	s := &WatchlistStore{
		path:   path,
		index:  make(map[string]int),
		logger: logger,
	}
	s.load()
	return s
}

var _ storage.WatchlistStore = (*WatchlistStore)(nil)

// load reads the backing file. encoding/json maps lose key order, so the
// object is walked token by token to keep the on-disk insertion order.
func (s *WatchlistStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Printf("load watchlist %s: %v", s.path, err)
		}
		return
	}

	entries, err := decodeOrdered(data)
	if err != nil {
		s.logger.Printf("parse watchlist %s: %v (starting empty)", s.path, err)
		return
	}

	s.entries = entries
	for i, e := range entries {
		s.index[e.CoinID] = i
	}
}

// decodeOrdered parses {"id": "timestamp", ...} preserving key order.
func decodeOrdered(data []byte) ([]domain.WatchlistEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var entries []domain.WatchlistEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %v", keyTok)
		}

		var value string
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("value for %q: %w", key, err)
		}

		addedAt, err := time.ParseInLocation(domain.TimeLayout, value, time.Local)
		if err != nil {
			return nil, fmt.Errorf("timestamp for %q: %w", key, err)
		}

		entries = append(entries, domain.WatchlistEntry{
			CoinID:  domain.NormalizeCoinID(key),
			AddedAt: addedAt,
		})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Add inserts coinID with addedAt and persists. Persistence failure is
// returned but the in-memory insert is kept (no rollback).
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

	if err := s.save(); err != nil {
		s.logger.Printf("persist watchlist after adding %q: %v", id, err)
		return true, fmt.Errorf("persist watchlist: %w", err)
	}
	return true, nil
}

// Remove deletes coinID and persists. Absent ids are a no-op with no write.
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

	if err := s.save(); err != nil {
		s.logger.Printf("persist watchlist after removing %q: %v", id, err)
		return true, fmt.Errorf("persist watchlist: %w", err)
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

// Clear removes all entries and persists the empty watchlist.
func (s *WatchlistStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.index = make(map[string]int)

	if err := s.save(); err != nil {
		s.logger.Printf("persist watchlist after clear: %v", err)
		return fmt.Errorf("persist watchlist: %w", err)
	}
	return nil
}

// save rewrites the whole file, keys in insertion order.
func (s *WatchlistStore) save() error {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, e := range s.entries {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		key, _ := json.Marshal(e.CoinID)
		buf.Write(key)
		buf.WriteString(": ")
		value, _ := json.Marshal(e.AddedAt.Format(domain.TimeLayout))
		buf.Write(value)
	}
	if len(s.entries) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}")

	return os.WriteFile(s.path, buf.Bytes(), 0644)
}
