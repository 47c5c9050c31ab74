package domain

import (
	"strings"
	"time"
)

// TimeLayout is the timestamp format used in the watchlist file and in
// exported Added_On / Export_Time cells.
const TimeLayout = "2006-01-02 15:04:05"

// WatchlistEntry is one tracked coin. CoinID is the provider-native
// lowercase slug (e.g. "bitcoin"), not the trading symbol.
type WatchlistEntry struct {
	CoinID  string
	AddedAt time.Time
}

// NormalizeCoinID trims and lowercases a caller-supplied coin identifier.
// Store implementations apply it on every mutation so ids on disk are
// always lowercase and whitespace-free.
func NormalizeCoinID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
