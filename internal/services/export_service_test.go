package services

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"taxledger/internal/models"
)

func newExportService(d testDeps) ExportServicer {
	return NewExportService(d.store, NewSummaryService(d.store, decimal.RequireFromString("0.25")))
}

func TestWriteCSV(t *testing.T) {
	d := setupDeps(t)
	seedLedger(t, d)
	svc := newExportService(d)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(&buf, models.TransactionTypeIncome, 2025))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ledgerHeaders, rows[0])
	assert.Equal(t, "Client B", rows[1][2])
	assert.Equal(t, "1000.00", rows[1][4])
}

func TestWriteCSVInvalidType(t *testing.T) {
	d := setupDeps(t)
	var buf bytes.Buffer
	err := newExportService(d).WriteCSV(&buf, "savings", 0)
	assert.Error(t, err)
}

func TestWriteXLSX(t *testing.T) {
	d := setupDeps(t)
	seedLedger(t, d)
	svc := newExportService(d)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteXLSX(&buf, 0))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Income", "Expenses", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Income")
	require.NoError(t, err)
	// header, three records, total
	assert.Len(t, rows, 5)
	assert.Equal(t, "Description", rows[0][2])

	estimate, err := f.GetCellValue("Summary", "A6")
	require.NoError(t, err)
	assert.Equal(t, "Estimated Tax", estimate)
}
