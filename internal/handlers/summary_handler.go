package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxledger/internal/services"
)

// SummaryHandler serves tax estimates.
type SummaryHandler struct {
	summaryService services.SummaryServicer
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(summaryService services.SummaryServicer) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService}
}

// GetSummary totals both ledgers and estimates tax on the net income.
// @Summary     Tax summary
// @Description Totals for one tax year, or for all records when year is omitted
// @Tags        summary
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Tax year"
// @Success     200 {object} services.Summary
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Router      /summary [get]
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	year, err := parseYear(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.summaryService.GetSummary(year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ListYears returns every year that has at least one record, newest first.
// @Summary     Years with records
// @Tags        summary
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]int
// @Router      /summary/years [get]
func (h *SummaryHandler) ListYears(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"years": h.summaryService.Years()})
}
