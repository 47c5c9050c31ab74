// Package sheets abstracts the spreadsheet provider behind a narrow
// service interface. The Google implementation lives in google.go; tests
// use the in-memory fake under stub/.
package sheets

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no spreadsheet carries the requested title.
var ErrNotFound = errors.New("spreadsheet not found")

// Format describes the cosmetic formatting applied after a snapshot
// write. Column indexes are zero-based and refer to data rows only; the
// header row is always row zero.
type Format struct {
	// BoldHeader bolds the header row.
	BoldHeader bool

	// CurrencyColumns get a "$#,##0.00" number format.
	CurrencyColumns []int

	// PercentColumns get a 0.00"%" number format plus conditional text
	// coloring: green above zero, red below.
	PercentColumns []int
}

// Service is the spreadsheet surface the export pipeline and the
// performance analyzer depend on. All operations address the primary
// sheet ("Sheet1") of a spreadsheet.
type Service interface {
	// FindSpreadsheet returns the id of the first spreadsheet with an
	// exact title match, or ErrNotFound.
	FindSpreadsheet(ctx context.Context, title string) (string, error)

	// CreateSpreadsheet creates a new spreadsheet and returns its id.
	CreateSpreadsheet(ctx context.Context, title string) (string, error)

	// Share grants the given role ("reader", "writer") on a spreadsheet
	// to an email address.
	Share(ctx context.Context, spreadsheetID, email, role string) error

	// Clear wipes all values from the primary sheet.
	Clear(ctx context.Context, spreadsheetID string) error

	// Write replaces the primary sheet's content starting at A1.
	Write(ctx context.Context, spreadsheetID string, values [][]any) error

	// Read returns all rows of the primary sheet, header included.
	Read(ctx context.Context, spreadsheetID string) ([][]any, error)

	// ApplyFormat applies cosmetic formatting to the primary sheet.
	ApplyFormat(ctx context.Context, spreadsheetID string, format Format) error
}

// SpreadsheetURL derives the human-viewable URL from a spreadsheet id.
func SpreadsheetURL(spreadsheetID string) string {
	return "https://docs.google.com/spreadsheets/d/" + spreadsheetID + "/edit"
}
