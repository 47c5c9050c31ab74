package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CoinInfo is one entry of the provider's full coin catalog.
type CoinInfo struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// PriceSnapshot is the current USD pricing for one coin as returned by the
// provider. PriceUSD is always set; a snapshot without a USD price is a
// fetch failure, not a partial snapshot. Never mutated after construction.
//
// Amount fields preserve the provider's digits exactly, so a price the
// provider sends as 49000.0 renders as "49000.0", not "49000".
type PriceSnapshot struct {
	CoinID      string
	Symbol      string
	Name        string
	PriceUSD    Amount
	Change24h   *Amount // nil when the provider omits it
	LastUpdated *string // provider ISO-8601 string, nil when absent
}

// PricePoint is one recorded snapshot in the append-only snapshot log.
type PricePoint struct {
	CoinID    string
	PriceUSD  Amount
	Change24h *Amount
	FetchedAt time.Time
}

// HistoryPoint is one point of a historical price series.
type HistoryPoint struct {
	Time  time.Time
	Price decimal.Decimal
}

// ExportRow is the spreadsheet-bound union of a watchlist entry and its
// price snapshot. Ephemeral: built per export call, never stored.
type ExportRow struct {
	Symbol      string
	CoinID      string
	Name        string
	PriceUSD    Amount
	Change24h   *Amount
	LastUpdated *string
	AddedOn     time.Time
}
