package export

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-watchlist/internal/domain"
	"crypto-watchlist/internal/sheets"
	"crypto-watchlist/internal/sheets/stub"
)

func sampleRows() []domain.ExportRow {
	change := domain.MustParseAmount("1.23")
	updated := "2024-01-15T10:30:00.000Z"
	return []domain.ExportRow{
		{
			Symbol:      "BTC",
			CoinID:      "bitcoin",
			Name:        "Bitcoin",
			PriceUSD:    domain.MustParseAmount("49000"),
			Change24h:   &change,
			LastUpdated: &updated,
			AddedOn:     time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
		},
	}
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	}
}

func TestExport_CreatesSpreadsheetWhenMissing(t *testing.T) {
	svc := stub.NewService()
	pipeline := NewPipeline(svc, WithClock(fixedClock()))

	result, err := pipeline.Export(context.Background(), "Crypto Prices", sampleRows(), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"Crypto Prices"}, svc.Created)
	assert.Equal(t, 1, result.Rows)
	assert.Equal(t, sheets.SpreadsheetURL(result.SpreadsheetID), result.URL)
}

func TestExport_ReusesExistingSpreadsheet(t *testing.T) {
	svc := stub.NewService()
	svc.Titles["Crypto Prices"] = "existing-id"
	pipeline := NewPipeline(svc, WithClock(fixedClock()))

	result, err := pipeline.Export(context.Background(), "Crypto Prices", sampleRows(), "")
	require.NoError(t, err)

	assert.Empty(t, svc.Created)
	assert.Equal(t, "existing-id", result.SpreadsheetID)
}

func TestExport_WritesHeaderAndRows(t *testing.T) {
	svc := stub.NewService()
	pipeline := NewPipeline(svc, WithClock(fixedClock()))

	result, err := pipeline.Export(context.Background(), "Crypto Prices", sampleRows(), "")
	require.NoError(t, err)

	cells := svc.Cells[result.SpreadsheetID]
	require.Len(t, cells, 2)

	assert.Equal(t, []any{
		"Symbol", "Id", "Name", "Price", "Change_24h",
		"Last_Updated", "Added_On", "Export_Time",
	}, cells[0])

	assert.Equal(t, []any{
		"BTC", "bitcoin", "Bitcoin",
		49000.0, 1.23,
		"2024-01-15T10:30:00.000Z",
		"2024-01-10 09:00:00",
		"2024-01-15 12:00:00",
	}, cells[1])
}

func TestExport_MissingOptionalsBecomeEmptyCells(t *testing.T) {
	svc := stub.NewService()
	pipeline := NewPipeline(svc, WithClock(fixedClock()))

	rows := []domain.ExportRow{{
		Symbol:   "DOGE",
		CoinID:   "dogecoin",
		Name:     "Dogecoin",
		PriceUSD: domain.MustParseAmount("0.08"),
		AddedOn:  time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
	}}

	result, err := pipeline.Export(context.Background(), "Crypto Prices", rows, "")
	require.NoError(t, err)

	cells := svc.Cells[result.SpreadsheetID]
	require.Len(t, cells, 2)
	assert.Equal(t, "", cells[1][ColChange24h])
	assert.Equal(t, "", cells[1][ColLastUpdated])
}

func TestExport_NoRows(t *testing.T) {
	svc := stub.NewService()
	pipeline := NewPipeline(svc)

	_, err := pipeline.Export(context.Background(), "Crypto Prices", nil, "")
	assert.ErrorIs(t, err, ErrNoRows)
	assert.Empty(t, svc.Created, "declined export must not touch the spreadsheet service")
}

func TestExport_SharesWithWriterRole(t *testing.T) {
	svc := stub.NewService()
	pipeline := NewPipeline(svc, WithClock(fixedClock()))

	result, err := pipeline.Export(context.Background(), "Crypto Prices", sampleRows(), "user@example.com")
	require.NoError(t, err)

	require.Len(t, svc.Shares, 1)
	assert.Equal(t, stub.ShareRecord{
		SpreadsheetID: result.SpreadsheetID,
		Email:         "user@example.com",
		Role:          "writer",
	}, svc.Shares[0])
}

func TestExport_ShareFailureDoesNotAbort(t *testing.T) {
	svc := stub.NewService()
	svc.FailShare = true
	pipeline := NewPipeline(svc, WithClock(fixedClock()))

	result, err := pipeline.Export(context.Background(), "Crypto Prices", sampleRows(), "user@example.com")
	require.NoError(t, err)
	assert.Len(t, svc.Cells[result.SpreadsheetID], 2)
}

func TestExport_FormatFailureDoesNotAbort(t *testing.T) {
	svc := stub.NewService()
	svc.FailFormat = true
	pipeline := NewPipeline(svc, WithClock(fixedClock()))

	_, err := pipeline.Export(context.Background(), "Crypto Prices", sampleRows(), "")
	require.NoError(t, err)
}

func TestExport_WriteFailureFails(t *testing.T) {
	svc := stub.NewService()
	svc.FailWrite = true
	pipeline := NewPipeline(svc)

	_, err := pipeline.Export(context.Background(), "Crypto Prices", sampleRows(), "")
	assert.Error(t, err)
}

func TestExport_AppliesExpectedFormat(t *testing.T) {
	svc := stub.NewService()
	pipeline := NewPipeline(svc, WithClock(fixedClock()))

	result, err := pipeline.Export(context.Background(), "Crypto Prices", sampleRows(), "")
	require.NoError(t, err)

	formats := svc.Formats[result.SpreadsheetID]
	require.Len(t, formats, 1)
	assert.Equal(t, sheets.Format{
		BoldHeader:      true,
		CurrencyColumns: []int{ColPrice},
		PercentColumns:  []int{ColChange24h},
	}, formats[0])
}
