package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "taxledger/internal/errors"
	"taxledger/internal/money"
	"taxledger/internal/services"
)

// InvoiceHandler handles invoice generation.
type InvoiceHandler struct {
	invoiceService services.InvoiceServicer
	auditService   services.AuditServicer
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService services.InvoiceServicer, auditService services.AuditServicer) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, auditService: auditService}
}

// CreateInvoiceRequest represents the invoice form. Amount is a currency
// string such as "1,250.00"; Date defaults to today.
type CreateInvoiceRequest struct {
	ClientName       string `json:"client_name"`
	ClientEmail      string `json:"client_email"`
	Description      string `json:"description"`
	Amount           string `json:"amount"`
	PaymentReference string `json:"payment_reference"`
	Date             string `json:"date" binding:"omitempty,iso_date"`
	SaveAsIncome     bool   `json:"save_as_income"`
	SendEmail        bool   `json:"send_email"`
}

// CreateInvoice renders an invoice and optionally books it as income or
// e-mails it to the client. With ?format=html the rendered document is
// returned instead of JSON.
// @Summary     Generate an invoice
// @Tags        invoices
// @Accept      json
// @Produce     json,html
// @Security    BearerAuth
// @Param       format  query string               false "json (default) or html"
// @Param       request body  CreateInvoiceRequest true  "Invoice details"
// @Success     201 {object} services.Invoice "Invoice generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     503 {object} ErrorResponse "Mail not configured"
// @Router      /invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	amount, err := money.ParseAmount(req.Amount)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Please enter a valid amount"))
		return
	}

	inv, err := h.invoiceService.CreateInvoice(c.Request.Context(), services.InvoiceRequest{
		ClientName:       req.ClientName,
		ClientEmail:      req.ClientEmail,
		Description:      req.Description,
		Amount:           amount,
		PaymentReference: req.PaymentReference,
		Date:             req.Date,
		SaveAsIncome:     req.SaveAsIncome,
		SendEmail:        req.SendEmail,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	resourceID := inv.Number
	if inv.Transaction != nil {
		resourceID = inv.Transaction.ID
	}
	h.auditService.Log("CREATE_INVOICE", "invoice", resourceID, c.ClientIP(),
		map[string]interface{}{"number": inv.Number, "amount": inv.Amount, "saved": inv.Transaction != nil, "emailed": inv.Emailed})

	if c.Query("format") == "html" {
		c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, inv.FileName))
		c.Data(http.StatusCreated, "text/html; charset=utf-8", []byte(inv.HTML))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"invoice": inv})
}
