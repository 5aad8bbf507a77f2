package services

import (
	"context"
	"errors"
	"testing"

	apperrors "taxledger/internal/errors"
	"taxledger/internal/models"
	"taxledger/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewCategoryService(d.store)

		cat, err := svc.CreateCategory(models.TransactionTypeExpense, " Rent ", "#FF0000")
		testutil.AssertNoError(t, err)

		if cat.ID == "" {
			t.Fatal("expected a generated id")
		}
		if cat.Name != "Rent" {
			t.Errorf("expected name Rent, got %q", cat.Name)
		}
	})

	t.Run("palette_colour_when_empty", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewCategoryService(d.store)

		cat, err := svc.CreateCategory(models.TransactionTypeIncome, "Royalties", "")
		testutil.AssertNoError(t, err)
		want := models.ColorPalette[len(models.DefaultIncomeCategories)%len(models.ColorPalette)]
		if cat.Color != want {
			t.Errorf("expected colour %s, got %s", want, cat.Color)
		}
	})

	t.Run("duplicate_name_ignores_case", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewCategoryService(d.store)

		_, err := svc.CreateCategory(models.TransactionTypeExpense, "TRAVEL", "#000")
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("same_name_other_type", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewCategoryService(d.store)

		_, err := svc.CreateCategory(models.TransactionTypeIncome, "Travel", "#000")
		testutil.AssertNoError(t, err)
	})

	t.Run("name_too_long", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewCategoryService(d.store)

		_, err := svc.CreateCategory(models.TransactionTypeIncome, "a very long category name", "#000")
		testutil.AssertAppError(t, err, "INVALID_CATEGORY_NAME")
	})

	t.Run("empty_name", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewCategoryService(d.store)

		_, err := svc.CreateCategory(models.TransactionTypeIncome, "", "#000")
		testutil.AssertAppError(t, err, "INVALID_CATEGORY_NAME")
	})

	t.Run("bad_colour", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewCategoryService(d.store)

		_, err := svc.CreateCategory(models.TransactionTypeIncome, "Grants", "blue")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("bad_type", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewCategoryService(d.store)

		_, err := svc.CreateCategory("savings", "Grants", "#000")
		testutil.AssertAppError(t, err, "INVALID_CATEGORY_TYPE")
	})
}

func TestDeleteCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("unused", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewCategoryService(d.store)

		deleted, err := svc.DeleteCategory(models.TransactionTypeIncome, "2")
		testutil.AssertNoError(t, err)
		if deleted.Name != "Consulting" {
			t.Errorf("expected Consulting, got %s", deleted.Name)
		}

		cats, err := svc.ListCategories(models.TransactionTypeIncome)
		testutil.AssertNoError(t, err)
		for _, c := range cats {
			if c.ID == "2" {
				t.Error("category should be gone")
			}
		}
	})

	t.Run("in_use", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewCategoryService(d.store)
		txSvc := NewTransactionService(d.store, d.receipts)
		_, err := txSvc.CreateTransaction(ctx, models.TransactionTypeExpense, d.expenseInput(t, "Travel", 100))
		testutil.AssertNoError(t, err)
		_, err = txSvc.CreateTransaction(ctx, models.TransactionTypeExpense, d.expenseInput(t, "Travel", 200))
		testutil.AssertNoError(t, err)

		_, err = svc.DeleteCategory(models.TransactionTypeExpense, "5")
		testutil.AssertAppError(t, err, "CATEGORY_IN_USE")

		var inUse *CategoryInUseError
		if !errors.As(err, &inUse) {
			t.Fatalf("expected CategoryInUseError, got %T", err)
		}
		if inUse.Usage.UsageCount != 2 {
			t.Errorf("expected usage count 2, got %d", inUse.Usage.UsageCount)
		}
		if !errors.Is(err, apperrors.ErrCategoryInUse) {
			t.Error("expected error to match ErrCategoryInUse")
		}

		usage, err := svc.GetCategoryUsage(models.TransactionTypeExpense, "5")
		testutil.AssertNoError(t, err)
		if usage.UsageCount != 2 {
			t.Errorf("expected usage count 2, got %d", usage.UsageCount)
		}
	})

	t.Run("usage_in_other_type_does_not_block", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewCategoryService(d.store)
		testutil.CreateTestIncome(t, d.store, "Other", 100)

		_, err := svc.DeleteCategory(models.TransactionTypeExpense, "8")
		testutil.AssertNoError(t, err)
	})

	t.Run("not_found", func(t *testing.T) {
		d := setupDeps(t)
		svc := NewCategoryService(d.store)

		_, err := svc.DeleteCategory(models.TransactionTypeIncome, "missing")
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")

		_, err = svc.GetCategoryUsage(models.TransactionTypeIncome, "missing")
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestSettingsService(t *testing.T) {
	d := setupDeps(t)
	svc := NewSettingsService(d.store)

	if got := svc.GetThemeMode(); got != models.ThemeModeAuto {
		t.Errorf("expected auto by default, got %s", got)
	}
	testutil.AssertNoError(t, svc.SetThemeMode(models.ThemeModeDark))
	if got := svc.GetThemeMode(); got != models.ThemeModeDark {
		t.Errorf("expected dark, got %s", got)
	}
	testutil.AssertAppError(t, svc.SetThemeMode("neon"), "INVALID_INPUT")
}
