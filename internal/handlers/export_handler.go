package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"taxledger/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves ledger downloads.
type ExportHandler struct {
	exportService services.ExportServicer
	auditService  services.AuditServicer
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService services.ExportServicer, auditService services.AuditServicer) *ExportHandler {
	return &ExportHandler{exportService: exportService, auditService: auditService}
}

// ExportXLSX returns a workbook with Income, Expenses and Summary sheets.
// @Summary     Export workbook
// @Tags        export
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       year query int false "Tax year"
// @Success     200 {file} file
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Router      /export/xlsx [get]
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	year, err := parseYear(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.exportService.WriteXLSX(&buf, year); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("EXPORT_XLSX", "export", "", c.ClientIP(), map[string]interface{}{"year": year})

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFileName("ledger", year, "xlsx")))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportCSV returns one ledger as CSV.
// @Summary     Export CSV
// @Tags        export
// @Produce     text/csv
// @Security    BearerAuth
// @Param       type query string true  "income or expense"
// @Param       year query int    false "Tax year"
// @Success     200 {file} file
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	txType, err := parseTypeQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, err := parseYear(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.exportService.WriteCSV(&buf, txType, year); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("EXPORT_CSV", "export", "", c.ClientIP(), map[string]interface{}{"type": txType, "year": year})

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFileName(string(txType), year, "csv")))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func exportFileName(prefix string, year int, ext string) string {
	if year == 0 {
		return fmt.Sprintf("%s_all.%s", prefix, ext)
	}
	return fmt.Sprintf("%s_%d.%s", prefix, year, ext)
}
