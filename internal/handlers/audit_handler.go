package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "taxledger/internal/errors"
	"taxledger/internal/pagination"
	"taxledger/internal/services"
)

// AuditHandler exposes the audit trail.
type AuditHandler struct {
	auditService services.AuditServicer
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService services.AuditServicer) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// ListAuditLogs returns audit entries, newest first.
// @Summary     List audit logs
// @Tags        audit
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 50, max 500)"
// @Param       action    query string false "Filter by action, e.g. DELETE_EXPENSE"
// @Success     200 {object} pagination.PageResponse[models.AuditLog]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.auditService.List(page, c.Query("action"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
