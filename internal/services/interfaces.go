package services

import (
	"context"
	"io"
	"os"

	"taxledger/internal/models"
	"taxledger/internal/pagination"
)

// TransactionFilter holds optional filter parameters for listing transactions.
// Dates are inclusive YYYY-MM-DD bounds; Search matches description or
// category, ignoring case.
type TransactionFilter struct {
	Category  string
	FromDate  string
	ToDate    string
	Search    string
	MinAmount *int64
	MaxAmount *int64
}

// TransactionServicer defines the contract for income and expense records.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, txType models.TransactionType, in models.TransactionInput) (*models.Transaction, error)
	GetTransaction(txType models.TransactionType, id string) (*models.Transaction, error)
	ListTransactions(txType models.TransactionType, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	UpdateTransaction(ctx context.Context, txType models.TransactionType, id string, in models.TransactionInput) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, txType models.TransactionType, id string) error
	RemoveAttachment(ctx context.Context, txType models.TransactionType, id, attachmentID string) (*models.Transaction, error)
}

// ReceiptExport describes a copy of every receipt made into the export
// directory.
type ReceiptExport struct {
	Directory string `json:"directory"`
	Count     int    `json:"count"`
}

// AttachmentServicer defines the contract for receipt files.
type AttachmentServicer interface {
	Upload(ctx context.Context, r io.Reader, name, mimeType string) (*models.Attachment, error)
	Open(name string) (*os.File, error)
	WriteArchive(ctx context.Context, w io.Writer) (int, error)
	ExportReceipts(ctx context.Context) (*ReceiptExport, error)
}

// CategoryUsage is the number of transactions referencing a category.
type CategoryUsage struct {
	Category   models.Category `json:"category"`
	UsageCount int             `json:"usage_count"`
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	ListCategories(txType models.TransactionType) ([]models.Category, error)
	CreateCategory(txType models.TransactionType, name, color string) (*models.Category, error)
	GetCategoryUsage(txType models.TransactionType, id string) (*CategoryUsage, error)
	DeleteCategory(txType models.TransactionType, id string) (*models.Category, error)
}

// CategoryTotal is the sum of one category's transactions.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
	Count    int    `json:"count"`
}

// Summary aggregates both ledgers for a tax year, or for all time when Year
// is zero. Amounts are in cents.
type Summary struct {
	Year              int             `json:"year,omitempty"`
	TotalIncome       int64           `json:"total_income"`
	TotalExpenses     int64           `json:"total_expenses"`
	NetIncome         int64           `json:"net_income"`
	TaxRate           string          `json:"tax_rate"`
	EstimatedTax      int64           `json:"estimated_tax"`
	IncomeCount       int             `json:"income_count"`
	ExpenseCount      int             `json:"expense_count"`
	IncomeByCategory  []CategoryTotal `json:"income_by_category"`
	ExpenseByCategory []CategoryTotal `json:"expense_by_category"`
}

// SummaryServicer defines the contract for tax estimates.
type SummaryServicer interface {
	GetSummary(year int) (*Summary, error)
	Years() []int
}

// InvoiceRequest carries the fields of an invoice form. Amount is in cents.
type InvoiceRequest struct {
	ClientName       string
	ClientEmail      string
	Description      string
	Amount           int64
	PaymentReference string
	Date             string
	SaveAsIncome     bool
	SendEmail        bool
}

// Invoice is a rendered invoice and, when requested, the income record it
// was saved as.
type Invoice struct {
	Number      string              `json:"number"`
	ClientName  string              `json:"client_name"`
	Amount      int64               `json:"amount"`
	Date        string              `json:"date"`
	FileName    string              `json:"file_name"`
	HTML        string              `json:"-"`
	Transaction *models.Transaction `json:"transaction,omitempty"`
	Emailed     bool                `json:"emailed"`
}

// InvoiceServicer defines the contract for invoice generation.
type InvoiceServicer interface {
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error)
}

// ExportServicer defines the contract for ledger exports.
type ExportServicer interface {
	WriteXLSX(w io.Writer, year int) error
	WriteCSV(w io.Writer, txType models.TransactionType, year int) error
}

// SettingsServicer defines the contract for stored preferences.
type SettingsServicer interface {
	GetThemeMode() models.ThemeMode
	SetThemeMode(mode models.ThemeMode) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
	List(page pagination.PageRequest, action string) (*pagination.PageResponse[models.AuditLog], error)
}
