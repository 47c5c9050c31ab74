// Package analysis computes 24h performance leaders from an exported
// spreadsheet.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"crypto-watchlist/internal/sheets"
)

var (
	// ErrInsufficientData is returned when the sheet has no data rows
	// beyond the header.
	ErrInsufficientData = errors.New("not enough data rows to analyze")

	// ErrNoParsableRows is returned when every data row failed to parse.
	ErrNoParsableRows = errors.New("could not determine performance leaders")
)

// identifierColumns is the preference order for the column naming each
// row's coin. First present column wins.
var identifierColumns = []string{"Id", "Symbol", "Name", "Coin"}

// changeColumn names the 24h percentage change column, matched
// case-insensitively.
const changeColumn = "Change_24h"

// Leaders are the extremes of 24h change across one sheet's rows.
type Leaders struct {
	// HighestGain identifies the row with the maximum 24h change.
	HighestGain string
	// HighestGainPct is that row's change value.
	HighestGainPct decimal.Decimal

	// BiggestLoss identifies the row with the minimum 24h change.
	BiggestLoss    string
	BiggestLossPct decimal.Decimal

	// Scanned counts data rows that parsed successfully.
	Scanned int
}

// Summary renders the leaders as a two-line report.
func (l *Leaders) Summary() string {
	return fmt.Sprintf("Highest gain: %s (%s%%)\nBiggest loss: %s (%s%%)",
		l.HighestGain, l.HighestGainPct.StringFixed(2),
		l.BiggestLoss, l.BiggestLossPct.StringFixed(2),
	)
}

// Analyzer scans a previously exported spreadsheet for performance
// extremes. It depends only on the sheet's persisted shape, not on the
// pipeline that wrote it.
type Analyzer struct {
	service sheets.Service
	logger  *log.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the analyzer logger.
func WithLogger(logger *log.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// NewAnalyzer creates an analyzer over a spreadsheet service.
func NewAnalyzer(service sheets.Service, opts ...Option) *Analyzer {
	a := &Analyzer{
		service: service,
		logger:  log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Leaders locates the spreadsheet by exact title and scans its data
// rows for the maximum and minimum 24h change. Rows that are too short,
// empty, or unparsable are skipped and logged. Ties go to the
// first-seen row.
func (a *Analyzer) Leaders(ctx context.Context, sheetName string) (*Leaders, error) {
	spreadsheetID, err := a.service.FindSpreadsheet(ctx, sheetName)
	if err != nil {
		return nil, fmt.Errorf("locate spreadsheet %q: %w", sheetName, err)
	}

	rows, err := a.service.Read(ctx, spreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet %q: %w", sheetName, err)
	}

	if len(rows) < 2 {
		return nil, ErrInsufficientData
	}

	header := rows[0]
	idCol, err := findIdentifierColumn(header)
	if err != nil {
		return nil, err
	}
	changeCol, ok := findColumn(header, changeColumn)
	if !ok {
		return nil, fmt.Errorf("column %q not found in sheet %q", changeColumn, sheetName)
	}

	var leaders *Leaders
	for i, row := range rows[1:] {
		if len(row) <= idCol || len(row) <= changeCol {
			a.logger.Printf("row %d skipped: too few columns", i+2)
			continue
		}

		change, err := parseChange(row[changeCol])
		if err != nil {
			a.logger.Printf("row %d skipped: %v", i+2, err)
			continue
		}
		id := cellString(row[idCol])

		if leaders == nil {
			leaders = &Leaders{
				HighestGain:    id,
				HighestGainPct: change,
				BiggestLoss:    id,
				BiggestLossPct: change,
			}
		} else {
			if change.GreaterThan(leaders.HighestGainPct) {
				leaders.HighestGain = id
				leaders.HighestGainPct = change
			}
			if change.LessThan(leaders.BiggestLossPct) {
				leaders.BiggestLoss = id
				leaders.BiggestLossPct = change
			}
		}
		leaders.Scanned++
	}

	if leaders == nil {
		return nil, ErrNoParsableRows
	}
	return leaders, nil
}

// findIdentifierColumn picks the first header column from the
// preference order.
func findIdentifierColumn(header []any) (int, error) {
	for _, name := range identifierColumns {
		if idx, ok := findColumn(header, name); ok {
			return idx, nil
		}
	}
	return 0, fmt.Errorf("no identifier column found (looked for %s)",
		strings.Join(identifierColumns, ", "))
}

// findColumn matches a header name case-insensitively.
func findColumn(header []any, name string) (int, bool) {
	for i, cell := range header {
		if strings.EqualFold(cellString(cell), name) {
			return i, true
		}
	}
	return 0, false
}

// parseChange reads a change cell. Values arrive either as raw numbers
// or as strings, possibly with a trailing percent sign.
func parseChange(cell any) (decimal.Decimal, error) {
	switch v := cell.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "%"))
		if s == "" {
			return decimal.Decimal{}, errors.New("empty change value")
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("unparsable change value %q", v)
		}
		return d, nil
	default:
		return decimal.Decimal{}, fmt.Errorf("unexpected change cell type %T", cell)
	}
}

// cellString renders an arbitrary sheet cell as a string.
func cellString(cell any) string {
	switch v := cell.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
