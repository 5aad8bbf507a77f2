package services

import (
	"testing"

	"taxledger/internal/attachments"
	"taxledger/internal/models"
	"taxledger/internal/store"
	"taxledger/internal/testutil"
)

type testDeps struct {
	store    *store.Store
	receipts *attachments.Manager
}

func setupDeps(t *testing.T) testDeps {
	t.Helper()
	s, _ := testutil.NewTestStore(t)
	return testDeps{store: s, receipts: testutil.NewTestReceipts(t)}
}

func (d testDeps) expenseInput(t *testing.T, category string, amount int64) models.TransactionInput {
	t.Helper()
	in := testutil.NewTransactionInput(category, amount)
	in.Attachments = []models.Attachment{testutil.CreateTestAttachment(t, d.receipts)}
	return in
}
