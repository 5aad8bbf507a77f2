// Package errors provides custom error types for the ledger API.
// All service-layer errors should use AppError so handlers can render
// consistent responses without leaking internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target carries the same error code, so wrapped copies
// still match their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Category errors.
var (
	ErrCategoryNotFound    = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCategoryInUse       = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is used by existing transactions", StatusCode: http.StatusConflict}
	ErrDuplicateCategory   = &AppError{Code: "DUPLICATE_CATEGORY", Message: "A category with this name already exists", StatusCode: http.StatusConflict}
	ErrInvalidCategoryName = &AppError{Code: "INVALID_CATEGORY_NAME", Message: "Category name is required", StatusCode: http.StatusBadRequest}
	ErrInvalidCategoryType = &AppError{Code: "INVALID_CATEGORY_TYPE", Message: "Category type must be income or expense", StatusCode: http.StatusBadRequest}
)

// Transaction errors.
var (
	ErrTransactionNotFound    = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionType = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Transaction type must be income or expense", StatusCode: http.StatusBadRequest}
	ErrReceiptRequired        = &AppError{Code: "RECEIPT_REQUIRED", Message: "Expenses require at least one receipt", StatusCode: http.StatusBadRequest}
)

// Attachment errors.
var (
	ErrAttachmentNotFound   = &AppError{Code: "ATTACHMENT_NOT_FOUND", Message: "Attachment not found", StatusCode: http.StatusNotFound}
	ErrAttachmentSaveFailed = &AppError{Code: "ATTACHMENT_SAVE_FAILED", Message: "Failed to save receipt file", StatusCode: http.StatusInternalServerError}
	ErrForeignAttachment    = &AppError{Code: "FOREIGN_ATTACHMENT", Message: "Attachment is not stored in the receipts directory", StatusCode: http.StatusBadRequest}
)

// Invoice errors.
var (
	ErrInvoiceRenderFailed = &AppError{Code: "INVOICE_RENDER_FAILED", Message: "Failed to generate invoice", StatusCode: http.StatusInternalServerError}
	ErrMailerDisabled      = &AppError{Code: "MAILER_DISABLED", Message: "Invoice e-mail is not configured", StatusCode: http.StatusServiceUnavailable}
)
