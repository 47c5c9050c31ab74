// Package tracker is the tool-surface layer. Every operation returns a
// human-readable string; typed errors from the layers below are folded
// into the string channel here, never earlier.
package tracker

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"crypto-watchlist/internal/analysis"
	"crypto-watchlist/internal/domain"
	"crypto-watchlist/internal/export"
	"crypto-watchlist/internal/storage"
)

// displayDateLayout renders added-on dates in watchlist listings.
const displayDateLayout = "02-01-2006"

const (
	msgEmptyWatchlist    = "Your watchlist is empty."
	msgEmptyForPrices    = "Your watchlist is empty. Add coins using the add_to_watchlist tool."
	msgSheetsUnavailable = "Google Sheets integration is not configured. Please set up credentials."
)

// DefaultSweepWorkers caps concurrent price fetches during a sweep.
const DefaultSweepWorkers = 4

// PriceClient is the price-provider surface the tracker consumes.
type PriceClient interface {
	GetCurrentPrice(ctx context.Context, id string) (*domain.PriceSnapshot, error)
	GetPriceHistory(ctx context.Context, id, timeframe string) ([]domain.HistoryPoint, error)
	SearchCoins(ctx context.Context, query string) ([]domain.CoinInfo, error)
}

// Exporter pushes rows into a spreadsheet.
type Exporter interface {
	Export(ctx context.Context, sheetName string, rows []domain.ExportRow, shareWith string) (*export.Result, error)
}

// Analyzer scans an exported spreadsheet for performance leaders.
type Analyzer interface {
	Leaders(ctx context.Context, sheetName string) (*analysis.Leaders, error)
}

// Service wires the watchlist store, price client, export pipeline and
// analyzer into the operations exposed to callers. Exporter, Analyzer
// and Snapshots may be nil; the matching operations degrade to an
// unavailable message instead of failing startup.
type Service struct {
	watchlist    storage.WatchlistStore
	prices       PriceClient
	exporter     Exporter
	analyzer     Analyzer
	snapshots    storage.SnapshotStore
	sweepWorkers int
	logger       *log.Logger
	now          func() time.Time
}

// Options configures a Service. Watchlist and Prices are required.
type Options struct {
	Watchlist storage.WatchlistStore
	Prices    PriceClient
	Exporter  Exporter
	Analyzer  Analyzer
	Snapshots storage.SnapshotStore

	// SweepWorkers caps concurrent fetches in FetchAllPrices and
	// ExportToSheets. Defaults to DefaultSweepWorkers.
	SweepWorkers int

	Logger *log.Logger
	Now    func() time.Time
}

// NewService creates the tracker service.
func NewService(opts Options) *Service {
	s := &Service{
		watchlist:    opts.Watchlist,
		prices:       opts.Prices,
		exporter:     opts.Exporter,
		analyzer:     opts.Analyzer,
		snapshots:    opts.Snapshots,
		sweepWorkers: opts.SweepWorkers,
		logger:       opts.Logger,
		now:          opts.Now,
	}
	if s.sweepWorkers <= 0 {
		s.sweepWorkers = DefaultSweepWorkers
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard, "", 0)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Watchlist lists the watched coins with their added-on dates.
func (s *Service) Watchlist(ctx context.Context) string {
	entries, err := s.watchlist.List(ctx)
	if err != nil {
		return fmt.Sprintf("Error fetching watchlist: %v", err)
	}
	if len(entries) == 0 {
		return msgEmptyWatchlist
	}

	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, "Current Watchlist:")
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("- %s (Added on: %s)",
			entry.CoinID, entry.AddedAt.Format(displayDateLayout)))
	}
	return strings.Join(lines, "\n")
}

// Add puts a coin on the watchlist. Idempotent: adding a watched coin
// reports "already" and keeps the original timestamp.
func (s *Service) Add(ctx context.Context, id string) string {
	normalized := domain.NormalizeCoinID(id)
	if normalized == "" {
		return "Error: id cannot be empty."
	}

	added, err := s.watchlist.Add(ctx, normalized, s.now())
	if err != nil {
		if !added {
			return fmt.Sprintf("Error adding %s to watchlist: %v", normalized, err)
		}
		// In-memory insert applied but the file write failed. Report
		// success anyway; the inconsistency is logged, not rolled back.
		s.logger.Printf("watchlist persisted-write failure after adding %s: %v", normalized, err)
	}
	if !added {
		return fmt.Sprintf("%s is already in your watchlist.", normalized)
	}
	return fmt.Sprintf("Added %s to your watchlist.", normalized)
}

// Remove takes a coin off the watchlist.
func (s *Service) Remove(ctx context.Context, id string) string {
	normalized := domain.NormalizeCoinID(id)
	if normalized == "" {
		return "Error: id cannot be empty."
	}

	removed, err := s.watchlist.Remove(ctx, normalized)
	if err != nil {
		if !removed {
			return fmt.Sprintf("Error removing %s from watchlist: %v", normalized, err)
		}
		s.logger.Printf("watchlist persisted-write failure after removing %s: %v", normalized, err)
	}
	if !removed {
		return fmt.Sprintf("%s is not in your watchlist.", normalized)
	}
	return fmt.Sprintf("Removed %s from your watchlist.", normalized)
}

// Clear empties the watchlist.
func (s *Service) Clear(ctx context.Context) string {
	entries, err := s.watchlist.List(ctx)
	if err != nil {
		return fmt.Sprintf("Error clearing watchlist: %v", err)
	}
	if len(entries) == 0 {
		return msgEmptyWatchlist
	}

	if err := s.watchlist.Clear(ctx); err != nil {
		return fmt.Sprintf("Error clearing watchlist: %v", err)
	}
	return fmt.Sprintf("Cleared %d coins from your watchlist.", len(entries))
}

// Import adds several coins at once. Per-item failures are isolated;
// the summary counts only newly added coins.
func (s *Service) Import(ctx context.Context, ids []string) string {
	added := 0
	for _, id := range ids {
		normalized := domain.NormalizeCoinID(id)
		if normalized == "" {
			continue
		}
		ok, err := s.watchlist.Add(ctx, normalized, s.now())
		if err != nil && !ok {
			s.logger.Printf("import: failed to add %s: %v", normalized, err)
			continue
		}
		if ok {
			added++
		}
	}
	return fmt.Sprintf("Imported %d new coins into your watchlist.", added)
}

// FetchAllPrices fetches a current price snapshot per watched coin and
// renders one line each, in watchlist order. A failed fetch yields a
// failure line for that coin and does not abort the rest.
func (s *Service) FetchAllPrices(ctx context.Context) string {
	entries, err := s.watchlist.List(ctx)
	if err != nil {
		return fmt.Sprintf("Error fetching prices: %v", err)
	}
	if len(entries) == 0 {
		return msgEmptyForPrices
	}

	results := s.sweep(ctx, entries)

	lines := make([]string, 0, len(results))
	for _, res := range results {
		if res.snapshot == nil {
			lines = append(lines, fmt.Sprintf("%s: Failed to fetch price", res.coinID))
			continue
		}
		lines = append(lines, formatPriceLine(res.coinID, res.snapshot))
	}
	return "Current prices:\n" + strings.Join(lines, "\n")
}

// formatPriceLine preserves the provider's decimal digits verbatim.
func formatPriceLine(coinID string, snap *domain.PriceSnapshot) string {
	if snap.Change24h == nil {
		return fmt.Sprintf("%s: $%s", coinID, snap.PriceUSD)
	}
	return fmt.Sprintf("%s: $%s (%s%%)", coinID, snap.PriceUSD, snap.Change24h)
}

// ExportToSheets snapshots the watchlist into the named spreadsheet.
// Coins whose price fetch fails are skipped; only fetched rows are
// written.
func (s *Service) ExportToSheets(ctx context.Context, sheetName, userEmail string) string {
	if s.exporter == nil {
		return msgSheetsUnavailable
	}

	entries, err := s.watchlist.List(ctx)
	if err != nil {
		return fmt.Sprintf("Error exporting to Google Sheets: %v", err)
	}
	if len(entries) == 0 {
		return msgEmptyForPrices
	}

	results := s.sweep(ctx, entries)

	rows := make([]domain.ExportRow, 0, len(results))
	for _, res := range results {
		if res.snapshot == nil {
			s.logger.Printf("export: skipping %s, no price data", res.coinID)
			continue
		}
		rows = append(rows, domain.ExportRow{
			Symbol:      res.snapshot.Symbol,
			CoinID:      res.coinID,
			Name:        res.snapshot.Name,
			PriceUSD:    res.snapshot.PriceUSD,
			Change24h:   res.snapshot.Change24h,
			LastUpdated: res.snapshot.LastUpdated,
			AddedOn:     res.addedAt,
		})
	}

	result, err := s.exporter.Export(ctx, sheetName, rows, userEmail)
	if err != nil {
		return fmt.Sprintf("Error exporting to Google Sheets: %v", err)
	}
	return fmt.Sprintf("Successfully exported price data to '%s' sheet.\nURL: %s",
		sheetName, result.URL)
}

// AnalyzePerformance reports the 24h gain/loss leaders of a previously
// exported spreadsheet.
func (s *Service) AnalyzePerformance(ctx context.Context, sheetName string) string {
	if s.analyzer == nil {
		return msgSheetsUnavailable
	}

	leaders, err := s.analyzer.Leaders(ctx, sheetName)
	if err != nil {
		return fmt.Sprintf("Error analyzing performance: %v", err)
	}
	return leaders.Summary()
}

// PriceHistory renders a coin's historical price series for a
// timeframe such as "24h", "7d" or "30d".
func (s *Service) PriceHistory(ctx context.Context, id, timeframe string) string {
	normalized := domain.NormalizeCoinID(id)
	if normalized == "" {
		return "Error: id cannot be empty."
	}

	points, err := s.prices.GetPriceHistory(ctx, normalized, timeframe)
	if err != nil {
		return fmt.Sprintf("Error fetching price history for %s: %v", normalized, err)
	}
	if len(points) == 0 {
		return fmt.Sprintf("No price history available for %s.", normalized)
	}

	lines := make([]string, 0, len(points)+1)
	lines = append(lines, fmt.Sprintf("Price history for %s (%s):", normalized, timeframe))
	for _, p := range points {
		lines = append(lines, fmt.Sprintf("%s: $%s",
			p.Time.UTC().Format("2006-01-02 15:04"), p.Price.StringFixed(2)))
	}
	return strings.Join(lines, "\n")
}

// SearchCoins looks the query up in the provider's coin catalog.
func (s *Service) SearchCoins(ctx context.Context, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return "Error: query cannot be empty."
	}

	coins, err := s.prices.SearchCoins(ctx, query)
	if err != nil {
		return fmt.Sprintf("Error searching coins: %v", err)
	}
	if len(coins) == 0 {
		return fmt.Sprintf("No coins found matching '%s'.", query)
	}

	lines := make([]string, 0, len(coins)+1)
	lines = append(lines, fmt.Sprintf("Coins matching '%s':", query))
	for _, coin := range coins {
		lines = append(lines, fmt.Sprintf("- %s (%s) [id: %s]",
			coin.Name, strings.ToUpper(coin.Symbol), coin.ID))
	}
	return strings.Join(lines, "\n")
}

// SnapshotLog lists the most recent recorded price points for a coin.
func (s *Service) SnapshotLog(ctx context.Context, id string, limit int) string {
	if s.snapshots == nil {
		return "Price snapshot logging is not configured."
	}

	normalized := domain.NormalizeCoinID(id)
	if normalized == "" {
		return "Error: id cannot be empty."
	}

	points, err := s.snapshots.GetByCoinID(ctx, normalized, limit)
	if err != nil {
		return fmt.Sprintf("Error reading snapshot log for %s: %v", normalized, err)
	}
	if len(points) == 0 {
		return fmt.Sprintf("No recorded snapshots for %s.", normalized)
	}

	lines := make([]string, 0, len(points)+1)
	lines = append(lines, fmt.Sprintf("Recorded snapshots for %s:", normalized))
	for _, p := range points {
		line := fmt.Sprintf("%s: $%s", p.FetchedAt.UTC().Format(domain.TimeLayout), p.PriceUSD)
		if p.Change24h != nil {
			line += fmt.Sprintf(" (%s%%)", p.Change24h)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
