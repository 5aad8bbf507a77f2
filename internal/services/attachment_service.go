package services

import (
	"context"
	"errors"
	"io"
	"os"

	"taxledger/internal/attachments"
	apperrors "taxledger/internal/errors"
	"taxledger/internal/models"
	"taxledger/internal/store"
)

// attachmentService handles uploads, downloads and bulk exports of receipts.
type attachmentService struct {
	store     *store.Store
	receipts  *attachments.Manager
	exportDir string
}

// NewAttachmentService creates a new AttachmentServicer. Receipt exports are
// copied into exportDir.
func NewAttachmentService(s *store.Store, receipts *attachments.Manager, exportDir string) AttachmentServicer {
	return &attachmentService{store: s, receipts: receipts, exportDir: exportDir}
}

// Upload copies a receipt into the receipts directory. The returned
// attachment is attached to a record by a later create or update.
func (s *attachmentService) Upload(ctx context.Context, r io.Reader, name, mimeType string) (*models.Attachment, error) {
	att, err := s.receipts.Save(ctx, r, name, mimeType)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAttachmentSaveFailed, err)
	}
	return &att, nil
}

// Open returns a stored receipt by file name for download.
func (s *attachmentService) Open(name string) (*os.File, error) {
	f, err := s.receipts.Open(name)
	if errors.Is(err, attachments.ErrOutsideDir) || errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.ErrAttachmentNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return f, nil
}

// WriteArchive streams a zip of every receipt referenced by either ledger.
func (s *attachmentService) WriteArchive(ctx context.Context, w io.Writer) (int, error) {
	n, err := s.receipts.WriteZip(ctx, w, s.store.AllAttachments())
	if err != nil {
		return n, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return n, nil
}

// ExportReceipts copies every referenced receipt into a fresh export
// directory.
func (s *attachmentService) ExportReceipts(ctx context.Context) (*ReceiptExport, error) {
	all := s.store.AllAttachments()
	if len(all) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrNotFound, "No receipts to export")
	}
	n, err := s.receipts.Export(ctx, all, s.exportDir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &ReceiptExport{Directory: s.exportDir, Count: n}, nil
}
