package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "taxledger/internal/errors"
	"taxledger/internal/models"
	"taxledger/internal/money"
	"taxledger/internal/pagination"
	"taxledger/internal/services"
	"taxledger/internal/validator"
)

// TransactionHandler serves the income and expense ledgers. The ledger a
// request targets is fixed by the route group it is mounted on.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// AttachmentRequest references a receipt previously returned by the upload
// endpoint.
type AttachmentRequest struct {
	ID       string                `json:"id" binding:"required"`
	URI      string                `json:"uri" binding:"required"`
	Name     string                `json:"name" binding:"required"`
	Type     models.AttachmentType `json:"type" binding:"required,oneof=image pdf document"`
	Size     *int64                `json:"size"`
	MimeType string                `json:"mimeType"`
}

// TransactionRequest represents the payload for creating or replacing a
// transaction. Amount is in cents, at most money.MaxCents.
type TransactionRequest struct {
	Description string              `json:"description" binding:"required,max=500"`
	Amount      int64               `json:"amount" binding:"required,gt=0,max_amount" minimum:"1" maximum:"9007199254740991"`
	Date        string              `json:"date" binding:"required,iso_date"`
	Category    string              `json:"category" binding:"required"`
	Attachments []AttachmentRequest `json:"attachments" binding:"omitempty,dive"`
}

func (r TransactionRequest) input() models.TransactionInput {
	in := models.TransactionInput{
		Description: r.Description,
		Amount:      r.Amount,
		Date:        r.Date,
		Category:    r.Category,
	}
	for _, a := range r.Attachments {
		in.Attachments = append(in.Attachments, models.Attachment{
			ID:       a.ID,
			URI:      a.URI,
			Name:     a.Name,
			Type:     a.Type,
			Size:     a.Size,
			MimeType: a.MimeType,
		})
	}
	return in
}

// CreateTransaction handles the creation of a new income or expense record.
// @Summary     Create a transaction
// @Description Record income, or an expense with at least one receipt
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income [post]
// @Router      /expenses [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	txType, err := getLedger(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tx, err := h.transactionService.CreateTransaction(c.Request.Context(), txType, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ledgerAction("CREATE", txType), string(txType), tx.ID, c.ClientIP(),
		map[string]interface{}{"amount": tx.Amount, "category": tx.Category, "attachments": len(tx.Attachments)})

	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

// ListTransactions returns one ledger, newest first.
// @Summary     List transactions
// @Description Get a paginated, filtered list of one ledger
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 50, max 500)"
// @Param       category   query string false "Exact category name"
// @Param       from_date  query string false "Inclusive start date (YYYY-MM-DD)"
// @Param       to_date    query string false "Inclusive end date (YYYY-MM-DD)"
// @Param       search     query string false "Text matched against description and category"
// @Param       min_amount query string false "Minimum amount, e.g. 12.50"
// @Param       max_amount query string false "Maximum amount, e.g. 99.99"
// @Success     200 {object} pagination.PageResponse[models.Transaction]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /income [get]
// @Router      /expenses [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	txType, err := getLedger(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.ListTransactions(txType, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransaction returns a single record.
// @Summary     Get a transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /income/{id} [get]
// @Router      /expenses/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	txType, err := getLedger(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx, err := h.transactionService.GetTransaction(txType, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// UpdateTransaction replaces every field of a record. Receipts left out of
// the new attachment list are deleted from disk.
// @Summary     Update a transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Transaction ID"
// @Param       request body TransactionRequest true "Replacement fields"
// @Success     200 {object} models.Transaction
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /income/{id} [put]
// @Router      /expenses/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	txType, err := getLedger(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tx, err := h.transactionService.UpdateTransaction(c.Request.Context(), txType, c.Param("id"), req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ledgerAction("UPDATE", txType), string(txType), tx.ID, c.ClientIP(),
		map[string]interface{}{"amount": tx.Amount, "category": tx.Category, "attachments": len(tx.Attachments)})

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// DeleteTransaction removes a record and its receipt files.
// @Summary     Delete a transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]string "Transaction deleted"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /income/{id} [delete]
// @Router      /expenses/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	txType, err := getLedger(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.transactionService.DeleteTransaction(c.Request.Context(), txType, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ledgerAction("DELETE", txType), string(txType), id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// RemoveAttachment detaches one receipt and deletes its file.
// @Summary     Remove a receipt
// @Description An expense keeps at least one receipt
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id            path string true "Transaction ID"
// @Param       attachment_id path string true "Attachment ID"
// @Success     200 {object} models.Transaction
// @Failure     400 {object} ErrorResponse "Last receipt of an expense"
// @Failure     404 {object} ErrorResponse "Transaction or attachment not found"
// @Router      /income/{id}/attachments/{attachment_id} [delete]
// @Router      /expenses/{id}/attachments/{attachment_id} [delete]
func (h *TransactionHandler) RemoveAttachment(c *gin.Context) {
	txType, err := getLedger(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	attachmentID := c.Param("attachment_id")
	tx, err := h.transactionService.RemoveAttachment(c.Request.Context(), txType, c.Param("id"), attachmentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ledgerAction("REMOVE_ATTACHMENT", txType), string(txType), tx.ID, c.ClientIP(),
		map[string]interface{}{"attachment_id": attachmentID})

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// parseTransactionFilter extracts optional filter parameters from query
// strings. Amounts are accepted in the same loose currency form as the
// entry forms and converted to cents.
func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	filter := services.TransactionFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	if v := c.Query("from_date"); v != "" {
		if !validator.IsISODate(v) {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use YYYY-MM-DD")
		}
		filter.FromDate = v
	}

	if v := c.Query("to_date"); v != "" {
		if !validator.IsISODate(v) {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use YYYY-MM-DD")
		}
		filter.ToDate = v
	}

	if v := c.Query("min_amount"); v != "" {
		amt, err := money.ParseAmount(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid min_amount")
		}
		filter.MinAmount = &amt
	}

	if v := c.Query("max_amount"); v != "" {
		amt, err := money.ParseAmount(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid max_amount")
		}
		filter.MaxAmount = &amt
	}

	return filter, nil
}
