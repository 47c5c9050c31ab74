// Package stub provides an in-memory sheets.Service for testing.
package stub

import (
	"context"
	"errors"
	"fmt"

	"crypto-watchlist/internal/sheets"
)

// ShareRecord captures a single Share call.
type ShareRecord struct {
	SpreadsheetID string
	Email         string
	Role          string
}

// Service implements sheets.Service against in-memory state. Exported
// fields let tests inspect calls and inject failures.
type Service struct {
	// Titles maps spreadsheet title to id for FindSpreadsheet.
	Titles map[string]string

	// Cells holds the primary-sheet values per spreadsheet id.
	Cells map[string][][]any

	// Shares records every Share call in order.
	Shares []ShareRecord

	// Formats records every ApplyFormat call per spreadsheet id.
	Formats map[string][]sheets.Format

	// Created lists titles passed to CreateSpreadsheet, in order.
	Created []string

	// FailShare and FailFormat make the respective calls return an error.
	FailShare  bool
	FailFormat bool

	// FailWrite makes Write return an error.
	FailWrite bool

	nextID int
}

// NewService creates an empty stub service.
func NewService() *Service {
	return &Service{
		Titles:  make(map[string]string),
		Cells:   make(map[string][][]any),
		Formats: make(map[string][]sheets.Format),
	}
}

var _ sheets.Service = (*Service)(nil)

// FindSpreadsheet looks the title up in Titles.
func (s *Service) FindSpreadsheet(_ context.Context, title string) (string, error) {
	id, ok := s.Titles[title]
	if !ok {
		return "", fmt.Errorf("%w: %q", sheets.ErrNotFound, title)
	}
	return id, nil
}

// CreateSpreadsheet registers a new title with a generated id.
func (s *Service) CreateSpreadsheet(_ context.Context, title string) (string, error) {
	s.nextID++
	id := fmt.Sprintf("stub-sheet-%d", s.nextID)
	s.Titles[title] = id
	s.Created = append(s.Created, title)
	return id, nil
}

// Share records the call, or fails when FailShare is set.
func (s *Service) Share(_ context.Context, spreadsheetID, email, role string) error {
	if s.FailShare {
		return errors.New("stub: share failed")
	}
	s.Shares = append(s.Shares, ShareRecord{
		SpreadsheetID: spreadsheetID,
		Email:         email,
		Role:          role,
	})
	return nil
}

// Clear drops all values for the spreadsheet.
func (s *Service) Clear(_ context.Context, spreadsheetID string) error {
	delete(s.Cells, spreadsheetID)
	return nil
}

// Write replaces the spreadsheet's values.
func (s *Service) Write(_ context.Context, spreadsheetID string, values [][]any) error {
	if s.FailWrite {
		return errors.New("stub: write failed")
	}
	copied := make([][]any, len(values))
	for i, row := range values {
		copied[i] = append([]any(nil), row...)
	}
	s.Cells[spreadsheetID] = copied
	return nil
}

// Read returns the spreadsheet's values.
func (s *Service) Read(_ context.Context, spreadsheetID string) ([][]any, error) {
	return s.Cells[spreadsheetID], nil
}

// ApplyFormat records the call, or fails when FailFormat is set.
func (s *Service) ApplyFormat(_ context.Context, spreadsheetID string, format sheets.Format) error {
	if s.FailFormat {
		return errors.New("stub: format failed")
	}
	s.Formats[spreadsheetID] = append(s.Formats[spreadsheetID], format)
	return nil
}
