package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "taxledger/internal/errors"
	"taxledger/internal/logger"
	"taxledger/internal/services"
)

// maxUploadSize caps a single receipt upload.
const maxUploadSize = 25 << 20

// AttachmentHandler handles receipt upload, download and export.
type AttachmentHandler struct {
	attachmentService services.AttachmentServicer
	auditService      services.AuditServicer
}

// NewAttachmentHandler creates a new AttachmentHandler.
func NewAttachmentHandler(attachmentService services.AttachmentServicer, auditService services.AuditServicer) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService, auditService: auditService}
}

// UploadAttachment copies a receipt into the receipts directory. The returned
// attachment is referenced from a transaction request to attach it.
// @Summary     Upload a receipt
// @Tags        attachments
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       file formData file true "Receipt image or document"
// @Success     201 {object} models.Attachment
// @Failure     400 {object} ErrorResponse "Missing file"
// @Failure     500 {object} ErrorResponse "Failed to save receipt file"
// @Router      /attachments [post]
func (h *AttachmentHandler) UploadAttachment(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	header, err := c.FormFile("file")
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "file is required"))
		return
	}

	f, err := header.Open()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrAttachmentSaveFailed, err))
		return
	}
	defer f.Close()

	att, err := h.attachmentService.Upload(c.Request.Context(), f, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("UPLOAD_ATTACHMENT", "attachment", att.ID, c.ClientIP(),
		map[string]interface{}{"name": att.Name, "type": att.Type})

	c.JSON(http.StatusCreated, gin.H{"attachment": att})
}

// DownloadAttachment serves a stored receipt by file name.
// @Summary     Download a receipt
// @Tags        attachments
// @Produce     octet-stream
// @Security    BearerAuth
// @Param       name path string true "Stored file name"
// @Success     200 {file} file
// @Failure     404 {object} ErrorResponse "Attachment not found"
// @Router      /attachments/files/{name} [get]
func (h *AttachmentHandler) DownloadAttachment(c *gin.Context) {
	name := filepath.Base(c.Param("name"))

	f, err := h.attachmentService.Open(name)
	if err != nil {
		respondWithError(c, err)
		return
	}
	defer f.Close()

	modTime := time.Time{}
	if info, statErr := f.Stat(); statErr == nil {
		modTime = info.ModTime()
	}
	http.ServeContent(c.Writer, c.Request, name, modTime, f)
}

// DownloadArchive streams every referenced receipt as a zip file.
// @Summary     Download all receipts
// @Tags        attachments
// @Produce     application/zip
// @Security    BearerAuth
// @Success     200 {file} file
// @Router      /attachments/archive [get]
func (h *AttachmentHandler) DownloadArchive(c *gin.Context) {
	name := fmt.Sprintf("receipts_%s.zip", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Status(http.StatusOK)

	// Headers are already out, so a failure leaves the client a truncated archive.
	if n, err := h.attachmentService.WriteArchive(c.Request.Context(), c.Writer); err != nil {
		logger.Get().Errorw("receipt archive failed", "error", err, "written", n)
	}
}

// ExportReceipts copies every referenced receipt into the export directory.
// @Summary     Export receipts
// @Tags        attachments
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.ReceiptExport
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /attachments/export [post]
func (h *AttachmentHandler) ExportReceipts(c *gin.Context) {
	result, err := h.attachmentService.ExportReceipts(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("EXPORT_RECEIPTS", "attachment", "", c.ClientIP(),
		map[string]interface{}{"count": result.Count, "directory": result.Directory})

	c.JSON(http.StatusOK, result)
}
