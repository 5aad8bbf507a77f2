package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"taxledger/internal/attachments"
	"taxledger/internal/kv"
	"taxledger/internal/models"
	"taxledger/internal/store"

	"go.uber.org/zap"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NewTestStore opens a store over a fresh in-memory kv backend. The store is
// closed when the test ends.
func NewTestStore(t *testing.T) (*store.Store, *kv.MemoryStore) {
	t.Helper()

	backend := kv.NewMemoryStore()
	return OpenTestStore(t, backend), backend
}

// OpenTestStore opens a store over backend and closes it when the test ends.
func OpenTestStore(t *testing.T, backend kv.Store) *store.Store {
	t.Helper()

	s, err := store.Open(context.Background(), backend, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(context.Background()); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return s
}

// NewTestReceipts creates an attachments manager over a temporary receipts
// directory.
func NewTestReceipts(t *testing.T) *attachments.Manager {
	t.Helper()

	m, err := attachments.NewManager(filepath.Join(t.TempDir(), "receipts"), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("failed to create receipts manager: %v", err)
	}
	return m
}

// CreateTempFile writes content to a new file outside any receipts directory
// and returns its path.
func CreateTempFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

// CreateTestAttachment stores a small receipt through m.
func CreateTestAttachment(t *testing.T, m *attachments.Manager) models.Attachment {
	t.Helper()

	name := fmt.Sprintf("receipt%d.pdf", nextID())
	att, err := m.SaveFile(context.Background(), CreateTempFile(t, name, "%PDF-1.4 receipt"), name, "application/pdf")
	if err != nil {
		t.Fatalf("failed to save test attachment: %v", err)
	}
	return att
}

// NewTransactionInput returns a valid input with a unique description.
func NewTransactionInput(category string, amount int64) models.TransactionInput {
	return models.TransactionInput{
		Description: fmt.Sprintf("Transaction %d", nextID()),
		Amount:      amount,
		Date:        "2024-03-15",
		Category:    category,
	}
}

// CreateTestIncome adds an income record directly to the store.
func CreateTestIncome(t *testing.T, s *store.Store, category string, amount int64) models.Transaction {
	t.Helper()

	tx, err := s.AddTransaction(models.TransactionTypeIncome, NewTransactionInput(category, amount))
	if err != nil {
		t.Fatalf("failed to create test income: %v", err)
	}
	return tx
}

// CreateTestExpense adds an expense record with one stored receipt.
func CreateTestExpense(t *testing.T, s *store.Store, m *attachments.Manager, category string, amount int64) models.Transaction {
	t.Helper()

	in := NewTransactionInput(category, amount)
	in.Attachments = []models.Attachment{CreateTestAttachment(t, m)}
	tx, err := s.AddTransaction(models.TransactionTypeExpense, in)
	if err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return tx
}
