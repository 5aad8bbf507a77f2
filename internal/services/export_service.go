package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	apperrors "taxledger/internal/errors"
	"taxledger/internal/models"
	"taxledger/internal/money"
	"taxledger/internal/store"
)

var ledgerHeaders = []string{"ID", "Date", "Description", "Category", "Amount", "Receipts"}

// exportService writes the ledgers as spreadsheets.
type exportService struct {
	store   *store.Store
	summary SummaryServicer
}

// NewExportService creates a new ExportServicer.
func NewExportService(s *store.Store, summary SummaryServicer) ExportServicer {
	return &exportService{store: s, summary: summary}
}

// WriteXLSX writes a workbook with Income, Expenses and Summary sheets.
// year 0 exports every record.
func (s *exportService) WriteXLSX(w io.Writer, year int) error {
	income, err := s.ledger(models.TransactionTypeIncome, year)
	if err != nil {
		return err
	}
	expenses, err := s.ledger(models.TransactionTypeExpense, year)
	if err != nil {
		return err
	}
	sum, err := s.summary.GetSummary(year)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"3B82F6"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	amountStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4})
	totalStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		NumFmt: 4,
	})

	if err := f.SetSheetName("Sheet1", "Income"); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if _, err := f.NewSheet("Expenses"); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if _, err := f.NewSheet("Summary"); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for sheet, txs := range map[string][]models.Transaction{"Income": income, "Expenses": expenses} {
		if err := writeLedgerSheet(f, sheet, txs, headerStyle, amountStyle, totalStyle); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	if err := writeSummarySheet(f, sum, headerStyle, amountStyle); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := f.Write(w); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func writeLedgerSheet(f *excelize.File, sheet string, txs []models.Transaction, headerStyle, amountStyle, totalStyle int) error {
	_ = f.SetColWidth(sheet, "A", "A", 38)
	_ = f.SetColWidth(sheet, "B", "B", 12)
	_ = f.SetColWidth(sheet, "C", "C", 40)
	_ = f.SetColWidth(sheet, "D", "D", 18)
	_ = f.SetColWidth(sheet, "E", "E", 14)
	_ = f.SetColWidth(sheet, "F", "F", 10)

	if err := f.SetSheetRow(sheet, "A1", &ledgerHeaders); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "F1", headerStyle); err != nil {
		return err
	}

	var total int64
	for i, tx := range txs {
		row := []interface{}{
			tx.ID,
			tx.Date,
			tx.Description,
			tx.Category,
			money.FromCents(tx.Amount).InexactFloat64(),
			len(tx.Attachments),
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
		total += tx.Amount
	}

	last := len(txs) + 1
	if last > 1 {
		if err := f.SetCellStyle(sheet, "E2", fmt.Sprintf("E%d", last), amountStyle); err != nil {
			return err
		}
	}

	totalRow := last + 1
	if err := f.SetCellValue(sheet, fmt.Sprintf("D%d", totalRow), "Total"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, fmt.Sprintf("E%d", totalRow), money.FromCents(total).InexactFloat64()); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, fmt.Sprintf("D%d", totalRow), fmt.Sprintf("E%d", totalRow), totalStyle)
}

func writeSummarySheet(f *excelize.File, sum *Summary, headerStyle, amountStyle int) error {
	const sheet = "Summary"
	_ = f.SetColWidth(sheet, "A", "A", 24)
	_ = f.SetColWidth(sheet, "B", "B", 16)

	period := "All years"
	if sum.Year != 0 {
		period = strconv.Itoa(sum.Year)
	}
	rows := [][]interface{}{
		{"Tax Year", period},
		{"Total Income", money.FromCents(sum.TotalIncome).InexactFloat64()},
		{"Total Expenses", money.FromCents(sum.TotalExpenses).InexactFloat64()},
		{"Net Income", money.FromCents(sum.NetIncome).InexactFloat64()},
		{"Tax Rate", sum.TaxRate},
		{"Estimated Tax", money.FromCents(sum.EstimatedTax).InexactFloat64()},
	}
	for i, row := range rows {
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", headerStyle); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "B2", "B6", amountStyle)
}

// WriteCSV writes one ledger as CSV with amounts in currency units.
func (s *exportService) WriteCSV(w io.Writer, txType models.TransactionType, year int) error {
	txs, err := s.ledger(txType, year)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerHeaders); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, tx := range txs {
		record := []string{
			tx.ID,
			tx.Date,
			tx.Description,
			tx.Category,
			money.FromCents(tx.Amount).StringFixed(2),
			strconv.Itoa(len(tx.Attachments)),
		}
		if err := cw.Write(record); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *exportService) ledger(txType models.TransactionType, year int) ([]models.Transaction, error) {
	all, err := s.store.Transactions(txType)
	if err != nil {
		return nil, storeError(err)
	}
	if year == 0 {
		return all, nil
	}
	out := all[:0]
	for _, tx := range all {
		if yearOf(tx.Date) == year {
			out = append(out, tx)
		}
	}
	return out, nil
}
