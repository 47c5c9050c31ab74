// Package export writes price snapshots to a spreadsheet.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"crypto-watchlist/internal/domain"
	"crypto-watchlist/internal/sheets"
)

// ErrNoRows is returned when an export is requested with nothing to write.
var ErrNoRows = errors.New("no rows to export")

// Header is the first spreadsheet row, one column per export field plus
// the export timestamp.
var Header = []string{
	"Symbol",
	"Id",
	"Name",
	"Price",
	"Change_24h",
	"Last_Updated",
	"Added_On",
	"Export_Time",
}

// Column indexes into Header used by the formatting step and the
// performance analyzer.
const (
	ColSymbol = iota
	ColID
	ColName
	ColPrice
	ColChange24h
	ColLastUpdated
	ColAddedOn
	ColExportTime
)

// Result describes a completed export.
type Result struct {
	SpreadsheetID string
	URL           string
	Rows          int
}

// Pipeline exports price rows to a spreadsheet resolved by title.
// Find-or-create by exact title: two concurrent exports with the same
// title race to first-one-wins.
type Pipeline struct {
	service sheets.Service
	logger  *log.Logger
	now     func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *log.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithClock overrides the export-timestamp clock.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// NewPipeline creates an export pipeline over a spreadsheet service.
func NewPipeline(service sheets.Service, opts ...Option) *Pipeline {
	p := &Pipeline{
		service: service,
		logger:  log.New(io.Discard, "", 0),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Export writes the rows to the spreadsheet titled sheetName, creating
// it when absent. When shareWith is non-empty the spreadsheet is shared
// with writer access; share and formatting failures are logged and do
// not fail the export. The data write is the only condition for success.
func (p *Pipeline) Export(ctx context.Context, sheetName string, rows []domain.ExportRow, shareWith string) (*Result, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	spreadsheetID, err := p.service.FindSpreadsheet(ctx, sheetName)
	if errors.Is(err, sheets.ErrNotFound) {
		p.logger.Printf("spreadsheet %q not found, creating it", sheetName)
		spreadsheetID, err = p.service.CreateSpreadsheet(ctx, sheetName)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve spreadsheet %q: %w", sheetName, err)
	}

	if shareWith != "" {
		if err := p.service.Share(ctx, spreadsheetID, shareWith, "writer"); err != nil {
			p.logger.Printf("failed to share spreadsheet with %s: %v", shareWith, err)
		}
	}

	if err := p.service.Clear(ctx, spreadsheetID); err != nil {
		return nil, fmt.Errorf("clear spreadsheet: %w", err)
	}

	if err := p.service.Write(ctx, spreadsheetID, p.buildValues(rows)); err != nil {
		return nil, fmt.Errorf("write spreadsheet values: %w", err)
	}

	format := sheets.Format{
		BoldHeader:      true,
		CurrencyColumns: []int{ColPrice},
		PercentColumns:  []int{ColChange24h},
	}
	if err := p.service.ApplyFormat(ctx, spreadsheetID, format); err != nil {
		p.logger.Printf("failed to apply formatting: %v", err)
	}

	p.logger.Printf("exported %d rows to spreadsheet %q", len(rows), sheetName)
	return &Result{
		SpreadsheetID: spreadsheetID,
		URL:           sheets.SpreadsheetURL(spreadsheetID),
		Rows:          len(rows),
	}, nil
}

// buildValues renders header plus one row per coin, preserving input
// order. Numeric cells go out as floats so the RAW write yields real
// numbers the formatting rules can act on; absent optionals go out as
// empty strings.
func (p *Pipeline) buildValues(rows []domain.ExportRow) [][]any {
	exportTime := p.now().Format(domain.TimeLayout)

	values := make([][]any, 0, len(rows)+1)

	header := make([]any, len(Header))
	for i, name := range Header {
		header[i] = name
	}
	values = append(values, header)

	for _, row := range rows {
		var change any = ""
		if row.Change24h != nil {
			change = row.Change24h.InexactFloat64()
		}
		var lastUpdated any = ""
		if row.LastUpdated != nil {
			lastUpdated = *row.LastUpdated
		}

		values = append(values, []any{
			row.Symbol,
			row.CoinID,
			row.Name,
			row.PriceUSD.InexactFloat64(),
			change,
			lastUpdated,
			row.AddedOn.Format(domain.TimeLayout),
			exportTime,
		})
	}

	return values
}
