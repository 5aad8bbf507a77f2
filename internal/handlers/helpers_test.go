package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"taxledger/internal/logger"
	"taxledger/internal/models"
	"taxledger/internal/pagination"
	"taxledger/internal/services"
	"taxledger/internal/validator"
)

// --- mock services ---

type mockTransactionService struct {
	createTransactionFn func(ctx context.Context, txType models.TransactionType, in models.TransactionInput) (*models.Transaction, error)
	getTransactionFn    func(txType models.TransactionType, id string) (*models.Transaction, error)
	listTransactionsFn  func(txType models.TransactionType, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	updateTransactionFn func(ctx context.Context, txType models.TransactionType, id string, in models.TransactionInput) (*models.Transaction, error)
	deleteTransactionFn func(ctx context.Context, txType models.TransactionType, id string) error
	removeAttachmentFn  func(ctx context.Context, txType models.TransactionType, id, attachmentID string) (*models.Transaction, error)
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func (m *mockTransactionService) CreateTransaction(ctx context.Context, txType models.TransactionType, in models.TransactionInput) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(ctx, txType, in)
	}
	return nil, nil
}

func (m *mockTransactionService) GetTransaction(txType models.TransactionType, id string) (*models.Transaction, error) {
	if m.getTransactionFn != nil {
		return m.getTransactionFn(txType, id)
	}
	return nil, nil
}

func (m *mockTransactionService) ListTransactions(txType models.TransactionType, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.listTransactionsFn != nil {
		return m.listTransactionsFn(txType, page, filter)
	}
	return nil, nil
}

func (m *mockTransactionService) UpdateTransaction(ctx context.Context, txType models.TransactionType, id string, in models.TransactionInput) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(ctx, txType, id, in)
	}
	return nil, nil
}

func (m *mockTransactionService) DeleteTransaction(ctx context.Context, txType models.TransactionType, id string) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(ctx, txType, id)
	}
	return nil
}

func (m *mockTransactionService) RemoveAttachment(ctx context.Context, txType models.TransactionType, id, attachmentID string) (*models.Transaction, error) {
	if m.removeAttachmentFn != nil {
		return m.removeAttachmentFn(ctx, txType, id, attachmentID)
	}
	return nil, nil
}

type mockAttachmentService struct {
	uploadFn         func(ctx context.Context, r io.Reader, name, mimeType string) (*models.Attachment, error)
	openFn           func(name string) (*os.File, error)
	writeArchiveFn   func(ctx context.Context, w io.Writer) (int, error)
	exportReceiptsFn func(ctx context.Context) (*services.ReceiptExport, error)
}

var _ services.AttachmentServicer = (*mockAttachmentService)(nil)

func (m *mockAttachmentService) Upload(ctx context.Context, r io.Reader, name, mimeType string) (*models.Attachment, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, r, name, mimeType)
	}
	return nil, nil
}

func (m *mockAttachmentService) Open(name string) (*os.File, error) {
	if m.openFn != nil {
		return m.openFn(name)
	}
	return nil, os.ErrNotExist
}

func (m *mockAttachmentService) WriteArchive(ctx context.Context, w io.Writer) (int, error) {
	if m.writeArchiveFn != nil {
		return m.writeArchiveFn(ctx, w)
	}
	return 0, nil
}

func (m *mockAttachmentService) ExportReceipts(ctx context.Context) (*services.ReceiptExport, error) {
	if m.exportReceiptsFn != nil {
		return m.exportReceiptsFn(ctx)
	}
	return nil, nil
}

type mockCategoryService struct {
	listCategoriesFn   func(txType models.TransactionType) ([]models.Category, error)
	createCategoryFn   func(txType models.TransactionType, name, color string) (*models.Category, error)
	getCategoryUsageFn func(txType models.TransactionType, id string) (*services.CategoryUsage, error)
	deleteCategoryFn   func(txType models.TransactionType, id string) (*models.Category, error)
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

func (m *mockCategoryService) ListCategories(txType models.TransactionType) ([]models.Category, error) {
	if m.listCategoriesFn != nil {
		return m.listCategoriesFn(txType)
	}
	return nil, nil
}

func (m *mockCategoryService) CreateCategory(txType models.TransactionType, name, color string) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(txType, name, color)
	}
	return nil, nil
}

func (m *mockCategoryService) GetCategoryUsage(txType models.TransactionType, id string) (*services.CategoryUsage, error) {
	if m.getCategoryUsageFn != nil {
		return m.getCategoryUsageFn(txType, id)
	}
	return nil, nil
}

func (m *mockCategoryService) DeleteCategory(txType models.TransactionType, id string) (*models.Category, error) {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(txType, id)
	}
	return nil, nil
}

type mockSummaryService struct {
	getSummaryFn func(year int) (*services.Summary, error)
	years        []int
}

var _ services.SummaryServicer = (*mockSummaryService)(nil)

func (m *mockSummaryService) GetSummary(year int) (*services.Summary, error) {
	if m.getSummaryFn != nil {
		return m.getSummaryFn(year)
	}
	return &services.Summary{Year: year}, nil
}

func (m *mockSummaryService) Years() []int { return m.years }

type mockInvoiceService struct {
	createInvoiceFn func(ctx context.Context, req services.InvoiceRequest) (*services.Invoice, error)
}

var _ services.InvoiceServicer = (*mockInvoiceService)(nil)

func (m *mockInvoiceService) CreateInvoice(ctx context.Context, req services.InvoiceRequest) (*services.Invoice, error) {
	if m.createInvoiceFn != nil {
		return m.createInvoiceFn(ctx, req)
	}
	return nil, nil
}

type mockExportService struct {
	writeXLSXFn func(w io.Writer, year int) error
	writeCSVFn  func(w io.Writer, txType models.TransactionType, year int) error
}

var _ services.ExportServicer = (*mockExportService)(nil)

func (m *mockExportService) WriteXLSX(w io.Writer, year int) error {
	if m.writeXLSXFn != nil {
		return m.writeXLSXFn(w, year)
	}
	return nil
}

func (m *mockExportService) WriteCSV(w io.Writer, txType models.TransactionType, year int) error {
	if m.writeCSVFn != nil {
		return m.writeCSVFn(w, txType, year)
	}
	return nil
}

type mockSettingsService struct {
	mode      models.ThemeMode
	setModeFn func(mode models.ThemeMode) error
}

var _ services.SettingsServicer = (*mockSettingsService)(nil)

func (m *mockSettingsService) GetThemeMode() models.ThemeMode { return m.mode }

func (m *mockSettingsService) SetThemeMode(mode models.ThemeMode) error {
	if m.setModeFn != nil {
		return m.setModeFn(mode)
	}
	m.mode = mode
	return nil
}

type auditEntry struct {
	action       string
	resourceType string
	resourceID   string
	changes      map[string]interface{}
}

type mockAuditService struct {
	mu      sync.Mutex
	entries []auditEntry
	listFn  func(page pagination.PageRequest, action string) (*pagination.PageResponse[models.AuditLog], error)
}

var _ services.AuditServicer = (*mockAuditService)(nil)

func (m *mockAuditService) Log(action, resourceType, resourceID, _ string, changes map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, auditEntry{action: action, resourceType: resourceType, resourceID: resourceID, changes: changes})
}

func (m *mockAuditService) List(page pagination.PageRequest, action string) (*pagination.PageResponse[models.AuditLog], error) {
	if m.listFn != nil {
		return m.listFn(page, action)
	}
	resp := pagination.NewPageResponse([]models.AuditLog{}, page.Page, page.PageSize, 0)
	return &resp, nil
}

func (m *mockAuditService) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.action
	}
	return out
}

// --- helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

func newTestRouter(svc Services) *gin.Engine {
	if svc.Audit == nil {
		svc.Audit = &mockAuditService{}
	}
	return NewRouter(svc, nil)
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
