package services

import (
	"context"
	"sync"
	"testing"

	"taxledger/internal/models"
	"taxledger/internal/money"
	"taxledger/internal/pagination"
	"taxledger/internal/testutil"
)

func TestCreateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("income_without_receipt", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)

		tx, err := svc.CreateTransaction(ctx, models.TransactionTypeIncome, testutil.NewTransactionInput("Salary", 5000))
		testutil.AssertNoError(t, err)

		if tx.ID == "" {
			t.Fatal("expected a generated id")
		}
		if tx.Amount != 5000 {
			t.Errorf("expected amount 5000, got %d", tx.Amount)
		}
	})

	t.Run("newest_first", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)

		first, err := svc.CreateTransaction(ctx, models.TransactionTypeIncome, testutil.NewTransactionInput("Salary", 1))
		testutil.AssertNoError(t, err)
		second, err := svc.CreateTransaction(ctx, models.TransactionTypeIncome, testutil.NewTransactionInput("Salary", 2))
		testutil.AssertNoError(t, err)

		page, err := svc.ListTransactions(models.TransactionTypeIncome, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if len(page.Data) != 2 || page.Data[0].ID != second.ID || page.Data[1].ID != first.ID {
			t.Errorf("expected [%s %s], got %+v", second.ID, first.ID, page.Data)
		}
	})

	t.Run("expense_requires_receipt", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)

		_, err := svc.CreateTransaction(ctx, models.TransactionTypeExpense, testutil.NewTransactionInput("Office", 100))
		testutil.AssertAppError(t, err, "RECEIPT_REQUIRED")
	})

	t.Run("expense_with_receipt", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)

		tx, err := svc.CreateTransaction(ctx, models.TransactionTypeExpense, d.expenseInput(t, "Office", 100))
		testutil.AssertNoError(t, err)
		if len(tx.Attachments) != 1 {
			t.Errorf("expected 1 attachment, got %d", len(tx.Attachments))
		}
	})

	t.Run("zero_amount", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)

		_, err := svc.CreateTransaction(ctx, models.TransactionTypeIncome, testutil.NewTransactionInput("Salary", 0))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("amount_above_max", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)

		_, err := svc.CreateTransaction(ctx, models.TransactionTypeIncome, testutil.NewTransactionInput("Salary", money.MaxCents+1))
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateTransaction(ctx, models.TransactionTypeIncome, testutil.NewTransactionInput("Salary", money.MaxCents))
		testutil.AssertNoError(t, err)
	})

	t.Run("blank_description", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)

		in := testutil.NewTransactionInput("Salary", 10)
		in.Description = "   "
		_, err := svc.CreateTransaction(ctx, models.TransactionTypeIncome, in)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("bad_date", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)

		in := testutil.NewTransactionInput("Salary", 10)
		in.Date = "15/03/2024"
		_, err := svc.CreateTransaction(ctx, models.TransactionTypeIncome, in)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("foreign_attachment", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)

		in := testutil.NewTransactionInput("Office", 10)
		in.Attachments = []models.Attachment{{
			ID: "x", URI: testutil.CreateTempFile(t, "elsewhere.pdf", "x"), Name: "elsewhere.pdf", Type: models.AttachmentTypePDF,
		}}
		_, err := svc.CreateTransaction(ctx, models.TransactionTypeExpense, in)
		testutil.AssertAppError(t, err, "FOREIGN_ATTACHMENT")
	})

	t.Run("attachment_owned_by_another_record", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)

		first, err := svc.CreateTransaction(ctx, models.TransactionTypeExpense, d.expenseInput(t, "Office", 10))
		testutil.AssertNoError(t, err)

		in := testutil.NewTransactionInput("Office", 10)
		in.Attachments = first.Attachments
		_, err = svc.CreateTransaction(ctx, models.TransactionTypeExpense, in)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("same_file_attached_twice", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)

		in := d.expenseInput(t, "Office", 10)
		copied := in.Attachments[0]
		copied.ID = copied.ID + "-copy"
		in.Attachments = append(in.Attachments, copied)

		_, err := svc.CreateTransaction(ctx, models.TransactionTypeExpense, in)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("concurrent_claims_of_one_upload", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)
		in := d.expenseInput(t, "Office", 10)

		const workers = 8
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created int
		)
		start := make(chan struct{})
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if _, err := svc.CreateTransaction(ctx, models.TransactionTypeExpense, in); err == nil {
					mu.Lock()
					created++
					mu.Unlock()
				}
			}()
		}
		close(start)
		wg.Wait()

		if created != 1 {
			t.Errorf("expected exactly one record to claim the upload, got %d", created)
		}
	})

	t.Run("invalid_type", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)

		_, err := svc.CreateTransaction(ctx, "savings", testutil.NewTransactionInput("Salary", 10))
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
	})
}

func TestListTransactions(t *testing.T) {
	ctx := context.Background()
	d := setupDeps(t)
	svc := NewTransactionService(d.store, d.receipts)

	for _, in := range []models.TransactionInput{
		{Description: "Website build", Amount: 100000, Date: "2024-01-10", Category: "Freelance"},
		{Description: "Retainer", Amount: 50000, Date: "2024-02-01", Category: "Consulting"},
		{Description: "Logo design", Amount: 20000, Date: "2023-12-20", Category: "Freelance"},
	} {
		_, err := svc.CreateTransaction(ctx, models.TransactionTypeIncome, in)
		testutil.AssertNoError(t, err)
	}

	t.Run("by_category", func(t *testing.T) {
		page, err := svc.ListTransactions(models.TransactionTypeIncome, pagination.PageRequest{}, TransactionFilter{Category: "Freelance"})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Errorf("expected 2 items, got %d", page.TotalItems)
		}
	})

	t.Run("by_date_range", func(t *testing.T) {
		page, err := svc.ListTransactions(models.TransactionTypeIncome, pagination.PageRequest{}, TransactionFilter{FromDate: "2024-01-01", ToDate: "2024-01-31"})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 || page.Data[0].Description != "Website build" {
			t.Errorf("expected only the January record, got %+v", page.Data)
		}
	})

	t.Run("by_search", func(t *testing.T) {
		page, err := svc.ListTransactions(models.TransactionTypeIncome, pagination.PageRequest{}, TransactionFilter{Search: "LOGO"})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Errorf("expected 1 item, got %d", page.TotalItems)
		}
	})

	t.Run("by_amount", func(t *testing.T) {
		minAmount := int64(30000)
		page, err := svc.ListTransactions(models.TransactionTypeIncome, pagination.PageRequest{}, TransactionFilter{MinAmount: &minAmount})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Errorf("expected 2 items, got %d", page.TotalItems)
		}
	})

	t.Run("paginated", func(t *testing.T) {
		page, err := svc.ListTransactions(models.TransactionTypeIncome, pagination.PageRequest{Page: 2, PageSize: 2}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if len(page.Data) != 1 || page.TotalPages != 2 {
			t.Errorf("expected 1 item on page 2 of 2, got %d items, %d pages", len(page.Data), page.TotalPages)
		}
	})
}

func TestUpdateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces_fields", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)
		tx, err := svc.CreateTransaction(ctx, models.TransactionTypeIncome, testutil.NewTransactionInput("Salary", 100))
		testutil.AssertNoError(t, err)

		updated, err := svc.UpdateTransaction(ctx, models.TransactionTypeIncome, tx.ID, models.TransactionInput{
			Description: "Bonus", Amount: 900, Date: "2024-06-30", Category: "Other",
		})
		testutil.AssertNoError(t, err)
		if updated.ID != tx.ID || updated.Description != "Bonus" || updated.Amount != 900 {
			t.Errorf("unexpected update result %+v", updated)
		}
	})

	t.Run("deletes_dropped_receipts", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)
		tx, err := svc.CreateTransaction(ctx, models.TransactionTypeExpense, d.expenseInput(t, "Office", 100))
		testutil.AssertNoError(t, err)
		oldURI := tx.Attachments[0].URI

		in := d.expenseInput(t, "Office", 100)
		_, err = svc.UpdateTransaction(ctx, models.TransactionTypeExpense, tx.ID, in)
		testutil.AssertNoError(t, err)

		testutil.AssertFileMissing(t, oldURI)
		testutil.AssertFileExists(t, in.Attachments[0].URI)
	})

	t.Run("keeps_own_receipts", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)
		tx, err := svc.CreateTransaction(ctx, models.TransactionTypeExpense, d.expenseInput(t, "Office", 100))
		testutil.AssertNoError(t, err)

		in := tx.Input()
		in.Amount = 250
		_, err = svc.UpdateTransaction(ctx, models.TransactionTypeExpense, tx.ID, in)
		testutil.AssertNoError(t, err)
		testutil.AssertFileExists(t, tx.Attachments[0].URI)
	})

	t.Run("expense_cannot_drop_all_receipts", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)
		tx, err := svc.CreateTransaction(ctx, models.TransactionTypeExpense, d.expenseInput(t, "Office", 100))
		testutil.AssertNoError(t, err)

		in := tx.Input()
		in.Attachments = nil
		_, err = svc.UpdateTransaction(ctx, models.TransactionTypeExpense, tx.ID, in)
		testutil.AssertAppError(t, err, "RECEIPT_REQUIRED")
		testutil.AssertFileExists(t, tx.Attachments[0].URI)
	})

	t.Run("same_file_attached_twice", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)
		tx, err := svc.CreateTransaction(ctx, models.TransactionTypeExpense, d.expenseInput(t, "Office", 100))
		testutil.AssertNoError(t, err)

		in := tx.Input()
		copied := in.Attachments[0]
		copied.ID = "copy"
		in.Attachments = append(in.Attachments, copied)
		_, err = svc.UpdateTransaction(ctx, models.TransactionTypeExpense, tx.ID, in)
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		stored, err := svc.GetTransaction(models.TransactionTypeExpense, tx.ID)
		testutil.AssertNoError(t, err)
		if len(stored.Attachments) != 1 {
			t.Errorf("expected the record to be unchanged, got %d attachments", len(stored.Attachments))
		}
	})

	t.Run("cancelled_context_still_deletes_dropped_receipts", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)
		tx, err := svc.CreateTransaction(ctx, models.TransactionTypeExpense, d.expenseInput(t, "Office", 100))
		testutil.AssertNoError(t, err)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err = svc.UpdateTransaction(cancelled, models.TransactionTypeExpense, tx.ID, d.expenseInput(t, "Office", 100))
		testutil.AssertNoError(t, err)
		testutil.AssertFileMissing(t, tx.Attachments[0].URI)
	})

	t.Run("not_found", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)

		_, err := svc.UpdateTransaction(ctx, models.TransactionTypeIncome, "missing", testutil.NewTransactionInput("Salary", 1))
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestDeleteTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("removes_record_and_files", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)
		in := d.expenseInput(t, "Office", 100)
		in.Attachments = append(in.Attachments, testutil.CreateTestAttachment(t, d.receipts))
		tx, err := svc.CreateTransaction(ctx, models.TransactionTypeExpense, in)
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.DeleteTransaction(ctx, models.TransactionTypeExpense, tx.ID))

		_, err = svc.GetTransaction(models.TransactionTypeExpense, tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
		for _, a := range tx.Attachments {
			testutil.AssertFileMissing(t, a.URI)
		}
	})

	t.Run("cancelled_context_still_removes_files", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)
		tx, err := svc.CreateTransaction(ctx, models.TransactionTypeExpense, d.expenseInput(t, "Office", 100))
		testutil.AssertNoError(t, err)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		testutil.AssertNoError(t, svc.DeleteTransaction(cancelled, models.TransactionTypeExpense, tx.ID))
		testutil.AssertFileMissing(t, tx.Attachments[0].URI)
	})

	t.Run("missing_file_does_not_block", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)
		tx, err := svc.CreateTransaction(ctx, models.TransactionTypeExpense, d.expenseInput(t, "Office", 100))
		testutil.AssertNoError(t, err)
		d.receipts.Delete(ctx, tx.Attachments[0].URI)

		testutil.AssertNoError(t, svc.DeleteTransaction(ctx, models.TransactionTypeExpense, tx.ID))
	})

	t.Run("not_found", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)

		err := svc.DeleteTransaction(ctx, models.TransactionTypeIncome, "missing")
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestRemoveAttachment(t *testing.T) {
	ctx := context.Background()

	t.Run("removes_one_of_two", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)
		in := d.expenseInput(t, "Office", 100)
		in.Attachments = append(in.Attachments, testutil.CreateTestAttachment(t, d.receipts))
		tx, err := svc.CreateTransaction(ctx, models.TransactionTypeExpense, in)
		testutil.AssertNoError(t, err)

		updated, err := svc.RemoveAttachment(ctx, models.TransactionTypeExpense, tx.ID, tx.Attachments[0].ID)
		testutil.AssertNoError(t, err)
		if len(updated.Attachments) != 1 || updated.Attachments[0].ID != tx.Attachments[1].ID {
			t.Errorf("unexpected attachments %+v", updated.Attachments)
		}
		testutil.AssertFileMissing(t, tx.Attachments[0].URI)
	})

	t.Run("last_expense_receipt", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)
		tx, err := svc.CreateTransaction(ctx, models.TransactionTypeExpense, d.expenseInput(t, "Office", 100))
		testutil.AssertNoError(t, err)

		_, err = svc.RemoveAttachment(ctx, models.TransactionTypeExpense, tx.ID, tx.Attachments[0].ID)
		testutil.AssertAppError(t, err, "RECEIPT_REQUIRED")
		testutil.AssertFileExists(t, tx.Attachments[0].URI)
	})

	t.Run("last_income_attachment", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)
		tx, err := svc.CreateTransaction(ctx, models.TransactionTypeIncome, d.expenseInput(t, "Salary", 100))
		testutil.AssertNoError(t, err)

		updated, err := svc.RemoveAttachment(ctx, models.TransactionTypeIncome, tx.ID, tx.Attachments[0].ID)
		testutil.AssertNoError(t, err)
		if len(updated.Attachments) != 0 {
			t.Errorf("expected no attachments, got %d", len(updated.Attachments))
		}
	})

	t.Run("concurrent_removals_keep_one_receipt", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)
		in := d.expenseInput(t, "Office", 100)
		in.Attachments = append(in.Attachments, testutil.CreateTestAttachment(t, d.receipts))
		tx, err := svc.CreateTransaction(ctx, models.TransactionTypeExpense, in)
		testutil.AssertNoError(t, err)

		var wg sync.WaitGroup
		errs := make([]error, len(tx.Attachments))
		start := make(chan struct{})
		for i, a := range tx.Attachments {
			wg.Add(1)
			go func(i int, id string) {
				defer wg.Done()
				<-start
				_, errs[i] = svc.RemoveAttachment(ctx, models.TransactionTypeExpense, tx.ID, id)
			}(i, a.ID)
		}
		close(start)
		wg.Wait()

		failed := 0
		for _, err := range errs {
			if err != nil {
				testutil.AssertAppError(t, err, "RECEIPT_REQUIRED")
				failed++
			}
		}
		if failed != 1 {
			t.Fatalf("expected exactly one removal to be refused, got %d", failed)
		}

		stored, err := svc.GetTransaction(models.TransactionTypeExpense, tx.ID)
		testutil.AssertNoError(t, err)
		if len(stored.Attachments) != 1 {
			t.Fatalf("expected one receipt left, got %d", len(stored.Attachments))
		}
		testutil.AssertFileExists(t, stored.Attachments[0].URI)
	})

	t.Run("unknown_attachment", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewTransactionService(d.store, d.receipts)
		tx, err := svc.CreateTransaction(ctx, models.TransactionTypeIncome, testutil.NewTransactionInput("Salary", 100))
		testutil.AssertNoError(t, err)

		_, err = svc.RemoveAttachment(ctx, models.TransactionTypeIncome, tx.ID, "nope")
		testutil.AssertAppError(t, err, "ATTACHMENT_NOT_FOUND")
	})
}
