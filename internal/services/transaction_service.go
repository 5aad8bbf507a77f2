package services

import (
	"context"
	"strings"

	apperrors "taxledger/internal/errors"
	"taxledger/internal/models"
	"taxledger/internal/money"
	"taxledger/internal/pagination"
	"taxledger/internal/store"
	"taxledger/internal/validator"
)

// receiptStore is the part of attachments.Manager the transaction service
// relies on.
type receiptStore interface {
	Owns(uri string) bool
	Delete(ctx context.Context, uri string)
	DeleteAll(ctx context.Context, attachments []models.Attachment)
}

// transactionService handles income and expense records and the receipt
// files they own.
type transactionService struct {
	store    *store.Store
	receipts receiptStore
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(s *store.Store, receipts receiptStore) TransactionServicer {
	return &transactionService{store: s, receipts: receipts}
}

// CreateTransaction validates and stores a new record at the head of its
// ledger.
func (s *transactionService) CreateTransaction(ctx context.Context, txType models.TransactionType, in models.TransactionInput) (*models.Transaction, error) {
	in, err := s.validateInput(txType, in)
	if err != nil {
		return nil, err
	}

	tx, err := s.store.AddTransactionChecked(txType, in, func(claims store.Claims) error {
		return checkClaims(in.Attachments, "", claims)
	})
	if err != nil {
		return nil, storeError(err)
	}
	return &tx, nil
}

// GetTransaction retrieves a record by id.
func (s *transactionService) GetTransaction(txType models.TransactionType, id string) (*models.Transaction, error) {
	tx, err := s.store.GetTransaction(txType, id)
	if err != nil {
		return nil, storeError(err)
	}
	return &tx, nil
}

// ListTransactions returns one page of the filtered ledger, newest first.
func (s *transactionService) ListTransactions(txType models.TransactionType, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	all, err := s.store.Transactions(txType)
	if err != nil {
		return nil, storeError(err)
	}

	matched := all[:0]
	for _, tx := range all {
		if filter.matches(tx) {
			matched = append(matched, tx)
		}
	}

	result := pagination.Slice(matched, page)
	return &result, nil
}

func (f TransactionFilter) matches(tx models.Transaction) bool {
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	// dates are YYYY-MM-DD so string order is date order
	if f.FromDate != "" && tx.Date < f.FromDate {
		return false
	}
	if f.ToDate != "" && tx.Date > f.ToDate {
		return false
	}
	if f.MinAmount != nil && tx.Amount < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && tx.Amount > *f.MaxAmount {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(tx.Description), q) &&
			!strings.Contains(strings.ToLower(tx.Category), q) {
			return false
		}
	}
	return true
}

// UpdateTransaction replaces every non-id field of a record. Receipt files
// that the new version no longer references are deleted.
func (s *transactionService) UpdateTransaction(ctx context.Context, txType models.TransactionType, id string, in models.TransactionInput) (*models.Transaction, error) {
	in, err := s.validateInput(txType, in)
	if err != nil {
		return nil, err
	}

	before, after, err := s.store.ModifyTransaction(txType, id, func(tx *models.Transaction, claims store.Claims) error {
		if err := checkClaims(in.Attachments, tx.ID, claims); err != nil {
			return err
		}
		*tx = models.Transaction{
			ID:          tx.ID,
			Description: in.Description,
			Amount:      in.Amount,
			Date:        in.Date,
			Category:    in.Category,
			Attachments: in.Attachments,
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}

	s.receipts.DeleteAll(context.WithoutCancel(ctx), droppedAttachments(before.Attachments, after.Attachments))
	return &after, nil
}

// DeleteTransaction removes a record and then its receipt files. File
// failures are logged by the receipt store and do not fail the delete.
func (s *transactionService) DeleteTransaction(ctx context.Context, txType models.TransactionType, id string) error {
	removed, err := s.store.DeleteTransaction(txType, id)
	if err != nil {
		return storeError(err)
	}
	// the record is gone, so its files go too even if the caller has left
	s.receipts.DeleteAll(context.WithoutCancel(ctx), removed.Attachments)
	return nil
}

// RemoveAttachment detaches one receipt from a record and deletes its file.
// An expense keeps at least one receipt.
func (s *transactionService) RemoveAttachment(ctx context.Context, txType models.TransactionType, id, attachmentID string) (*models.Transaction, error) {
	var removed models.Attachment
	_, after, err := s.store.ModifyTransaction(txType, id, func(tx *models.Transaction, _ store.Claims) error {
		idx := tx.FindAttachment(attachmentID)
		if idx < 0 {
			return apperrors.ErrAttachmentNotFound
		}
		if txType == models.TransactionTypeExpense && len(tx.Attachments) == 1 {
			return apperrors.ErrReceiptRequired
		}
		removed = tx.Attachments[idx]
		tx.Attachments = append(tx.Attachments[:idx:idx], tx.Attachments[idx+1:]...)
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}

	s.receipts.Delete(context.WithoutCancel(ctx), removed.URI)
	return &after, nil
}

// validateInput checks the fields of a submitted record. Ownership of the
// referenced files is checked separately, under the store lock.
func (s *transactionService) validateInput(txType models.TransactionType, in models.TransactionInput) (models.TransactionInput, error) {
	if !txType.Valid() {
		return in, apperrors.ErrInvalidTransactionType
	}

	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Date = strings.TrimSpace(in.Date)

	if in.Description == "" {
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if in.Amount <= 0 || in.Amount > money.MaxCents {
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero and at most "+money.Format(money.MaxCents))
	}
	if !validator.IsISODate(in.Date) {
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be formatted as YYYY-MM-DD")
	}
	if in.Category == "" {
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if txType == models.TransactionTypeExpense && len(in.Attachments) == 0 {
		return in, apperrors.ErrReceiptRequired
	}

	ids := make(map[string]bool, len(in.Attachments))
	uris := make(map[string]bool, len(in.Attachments))
	for _, a := range in.Attachments {
		if a.ID == "" || a.URI == "" || a.Name == "" || a.Type == "" {
			return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "attachments need id, uri, name and type")
		}
		if ids[a.ID] {
			return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "duplicate attachment id "+a.ID)
		}
		if uris[a.URI] {
			return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "attachment "+a.ID+" repeats a file already attached")
		}
		ids[a.ID], uris[a.URI] = true, true
		if !s.receipts.Owns(a.URI) {
			return in, apperrors.ErrForeignAttachment
		}
	}
	return in, nil
}

// checkClaims rejects attachments whose file belongs to a record other than
// id. It runs with the store lock held.
func checkClaims(attachments []models.Attachment, id string, claims store.Claims) error {
	for _, a := range attachments {
		if claims.OwnedByOther(a.URI, id) {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "attachment "+a.ID+" belongs to another transaction")
		}
	}
	return nil
}

// droppedAttachments returns the entries of before whose file is no longer
// referenced by after.
func droppedAttachments(before, after []models.Attachment) []models.Attachment {
	kept := make(map[string]bool, len(after))
	for _, a := range after {
		kept[a.URI] = true
	}
	var dropped []models.Attachment
	for _, a := range before {
		if !kept[a.URI] {
			dropped = append(dropped, a)
		}
	}
	return dropped
}
