package sheets

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// primaryRange addresses the whole primary sheet. New spreadsheets carry a
// single sheet with id 0 named "Sheet1"; the formatting requests assume
// that sheet id, same as the data writes.
const (
	primaryRange   = "Sheet1"
	primarySheetID = 0
)

// GoogleService implements Service against the Google Sheets and Drive
// APIs using a service-account identity.
type GoogleService struct {
	sheets *sheetsapi.Service
	drive  *driveapi.Service
	logger *log.Logger
}

// NewGoogleService builds a Service from a service-account credentials
// file. The Drive scope is needed to find spreadsheets by title and to
// grant permissions.
func NewGoogleService(ctx context.Context, credentialsPath string, logger *log.Logger) (*GoogleService, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	conf, err := google.JWTConfigFromJSON(data,
		sheetsapi.SpreadsheetsScope,
		driveapi.DriveFileScope,
	)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	client := conf.Client(ctx)

	sheetsSvc, err := sheetsapi.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	driveSvc, err := driveapi.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &GoogleService{
		sheets: sheetsSvc,
		drive:  driveSvc,
		logger: logger,
	}, nil
}

var _ Service = (*GoogleService)(nil)

// FindSpreadsheet locates a spreadsheet by exact title. First match wins
// when several spreadsheets share the title.
func (g *GoogleService) FindSpreadsheet(ctx context.Context, title string) (string, error) {
	query := fmt.Sprintf(
		"mimeType='application/vnd.google-apps.spreadsheet' and name='%s' and trashed=false",
		strings.ReplaceAll(title, "'", `\'`),
	)

	resp, err := g.drive.Files.List().
		Q(query).
		Spaces("drive").
		Fields("files(id, name)").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("search for spreadsheet %q: %w", title, err)
	}

	if len(resp.Files) == 0 {
		return "", fmt.Errorf("%w: %q", ErrNotFound, title)
	}

	g.logger.Printf("found existing spreadsheet %q (id %s)", resp.Files[0].Name, resp.Files[0].Id)
	return resp.Files[0].Id, nil
}

// CreateSpreadsheet creates a new spreadsheet with the given title.
func (g *GoogleService) CreateSpreadsheet(ctx context.Context, title string) (string, error) {
	spreadsheet := &sheetsapi.Spreadsheet{
		Properties: &sheetsapi.SpreadsheetProperties{Title: title},
	}

	resp, err := g.sheets.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create spreadsheet %q: %w", title, err)
	}

	g.logger.Printf("created spreadsheet %q (id %s)", title, resp.SpreadsheetId)
	return resp.SpreadsheetId, nil
}

// Share grants the given role to an email address.
func (g *GoogleService) Share(ctx context.Context, spreadsheetID, email, role string) error {
	permission := &driveapi.Permission{
		Type:         "user",
		Role:         role,
		EmailAddress: email,
	}

	_, err := g.drive.Permissions.Create(spreadsheetID, permission).
		SendNotificationEmail(true).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("share spreadsheet with %s: %w", email, err)
	}
	return nil
}

// Clear wipes all values from the primary sheet.
func (g *GoogleService) Clear(ctx context.Context, spreadsheetID string) error {
	req := &sheetsapi.BatchClearValuesRequest{Ranges: []string{primaryRange}}

	_, err := g.sheets.Spreadsheets.Values.BatchClear(spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}
	return nil
}

// Write replaces the primary sheet's content starting at A1, RAW input.
func (g *GoogleService) Write(ctx context.Context, spreadsheetID string, values [][]any) error {
	body := &sheetsapi.ValueRange{Values: values}

	_, err := g.sheets.Spreadsheets.Values.Update(spreadsheetID, primaryRange+"!A1", body).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write sheet values: %w", err)
	}
	return nil
}

// Read returns all rows of the primary sheet.
func (g *GoogleService) Read(ctx context.Context, spreadsheetID string) ([][]any, error) {
	resp, err := g.sheets.Spreadsheets.Values.Get(spreadsheetID, primaryRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet values: %w", err)
	}
	return resp.Values, nil
}

// ApplyFormat translates a Format into a single batchUpdate call.
func (g *GoogleService) ApplyFormat(ctx context.Context, spreadsheetID string, format Format) error {
	requests := buildFormatRequests(format)
	if len(requests) == 0 {
		return nil
	}

	_, err := g.sheets.Spreadsheets.BatchUpdate(spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("apply formatting: %w", err)
	}
	return nil
}

// buildFormatRequests expands a Format into Sheets API requests.
func buildFormatRequests(format Format) []*sheetsapi.Request {
	var requests []*sheetsapi.Request

	if format.BoldHeader {
		requests = append(requests, &sheetsapi.Request{
			RepeatCell: &sheetsapi.RepeatCellRequest{
				Range: &sheetsapi.GridRange{
					SheetId:       primarySheetID,
					StartRowIndex: 0,
					EndRowIndex:   1,
				},
				Cell: &sheetsapi.CellData{
					UserEnteredFormat: &sheetsapi.CellFormat{
						TextFormat: &sheetsapi.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat.textFormat.bold",
			},
		})
	}

	for _, col := range format.CurrencyColumns {
		requests = append(requests, &sheetsapi.Request{
			RepeatCell: &sheetsapi.RepeatCellRequest{
				Range: dataColumnRange(col),
				Cell: &sheetsapi.CellData{
					UserEnteredFormat: &sheetsapi.CellFormat{
						NumberFormat: &sheetsapi.NumberFormat{
							Type:    "CURRENCY",
							Pattern: "$#,##0.00",
						},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		})
	}

	for _, col := range format.PercentColumns {
		requests = append(requests, &sheetsapi.Request{
			RepeatCell: &sheetsapi.RepeatCellRequest{
				Range: dataColumnRange(col),
				Cell: &sheetsapi.CellData{
					UserEnteredFormat: &sheetsapi.CellFormat{
						NumberFormat: &sheetsapi.NumberFormat{
							Type:    "NUMBER",
							Pattern: `0.00"%"`,
						},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		})

		// Positive changes in dark green, negative in dark red.
		requests = append(requests,
			conditionalColorRule(col, "NUMBER_GREATER", &sheetsapi.Color{Green: 0.6}, 0),
			conditionalColorRule(col, "NUMBER_LESS", &sheetsapi.Color{Red: 0.8}, 1),
		)
	}

	return requests
}

func dataColumnRange(col int) *sheetsapi.GridRange {
	return &sheetsapi.GridRange{
		SheetId:          primarySheetID,
		StartRowIndex:    1, // data rows only
		StartColumnIndex: int64(col),
		EndColumnIndex:   int64(col) + 1,
	}
}

func conditionalColorRule(col int, condition string, color *sheetsapi.Color, index int64) *sheetsapi.Request {
	return &sheetsapi.Request{
		AddConditionalFormatRule: &sheetsapi.AddConditionalFormatRuleRequest{
			Index: index,
			Rule: &sheetsapi.ConditionalFormatRule{
				Ranges: []*sheetsapi.GridRange{dataColumnRange(col)},
				BooleanRule: &sheetsapi.BooleanRule{
					Condition: &sheetsapi.BooleanCondition{
						Type:   condition,
						Values: []*sheetsapi.ConditionValue{{UserEnteredValue: "0"}},
					},
					Format: &sheetsapi.CellFormat{
						TextFormat: &sheetsapi.TextFormat{ForegroundColor: color},
					},
				},
			},
		},
	}
}
