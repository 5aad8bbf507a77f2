package handlers

import (
	"net/http"
	"testing"

	apperrors "taxledger/internal/errors"
	"taxledger/internal/models"
	"taxledger/internal/services"
)

func TestCategoryHandler_ListCategories(t *testing.T) {
	t.Run("accepts singular and plural type", func(t *testing.T) {
		var got []models.TransactionType
		svc := &mockCategoryService{
			listCategoriesFn: func(txType models.TransactionType) ([]models.Category, error) {
				got = append(got, txType)
				return models.DefaultCategories(txType), nil
			},
		}
		r := newTestRouter(Services{Categories: svc})

		for _, path := range []string{"/api/v1/categories/expense", "/api/v1/categories/expenses"} {
			rec := doRequest(r, "GET", path, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("%s: expected 200, got %d", path, rec.Code)
			}
			categories := parseJSON(t, rec)["categories"].([]interface{})
			if len(categories) != len(models.DefaultExpenseCategories) {
				t.Errorf("%s: expected %d categories, got %d", path, len(models.DefaultExpenseCategories), len(categories))
			}
		}
		if len(got) != 2 || got[0] != models.TransactionTypeExpense || got[1] != models.TransactionTypeExpense {
			t.Errorf("expected expense lookups, got %v", got)
		}
	})

	t.Run("returns 400 on unknown type", func(t *testing.T) {
		r := newTestRouter(Services{Categories: &mockCategoryService{}})

		rec := doRequest(r, "GET", "/api/v1/categories/transfer", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_CATEGORY_TYPE")
	})
}

func TestCategoryHandler_CreateCategory(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var gotName, gotColor string
		svc := &mockCategoryService{
			createCategoryFn: func(_ models.TransactionType, name, color string) (*models.Category, error) {
				gotName, gotColor = name, color
				return &models.Category{ID: "c1", Name: name, Color: "#3b82f6"}, nil
			},
		}
		audit := &mockAuditService{}
		r := newTestRouter(Services{Categories: svc, Audit: audit})

		rec := doRequest(r, "POST", "/api/v1/categories/income", `{"name":"Royalties"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotName != "Royalties" || gotColor != "" {
			t.Errorf("unexpected service args %q %q", gotName, gotColor)
		}
		if actions := audit.actions(); len(actions) != 1 || actions[0] != "CREATE_CATEGORY" {
			t.Errorf("expected CREATE_CATEGORY audit entry, got %v", actions)
		}
	})

	t.Run("returns 400 on invalid color", func(t *testing.T) {
		r := newTestRouter(Services{Categories: &mockCategoryService{}})

		rec := doRequest(r, "POST", "/api/v1/categories/income", `{"name":"Royalties","color":"blue"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 409 on duplicate name", func(t *testing.T) {
		svc := &mockCategoryService{
			createCategoryFn: func(_ models.TransactionType, _, _ string) (*models.Category, error) {
				return nil, apperrors.ErrDuplicateCategory
			},
		}
		r := newTestRouter(Services{Categories: svc})

		rec := doRequest(r, "POST", "/api/v1/categories/income", `{"name":"salary"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_CATEGORY")
	})
}

func TestCategoryHandler_GetCategoryUsage(t *testing.T) {
	svc := &mockCategoryService{
		getCategoryUsageFn: func(_ models.TransactionType, id string) (*services.CategoryUsage, error) {
			return &services.CategoryUsage{Category: models.Category{ID: id, Name: "Office"}, UsageCount: 4}, nil
		},
	}
	r := newTestRouter(Services{Categories: svc})

	rec := doRequest(r, "GET", "/api/v1/categories/expense/1/usage", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := parseJSON(t, rec)["usage_count"]; got != float64(4) {
		t.Errorf("expected usage_count 4, got %v", got)
	}
}

func TestCategoryHandler_DeleteCategory(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		svc := &mockCategoryService{
			deleteCategoryFn: func(_ models.TransactionType, id string) (*models.Category, error) {
				return &models.Category{ID: id, Name: "Meals"}, nil
			},
		}
		audit := &mockAuditService{}
		r := newTestRouter(Services{Categories: svc, Audit: audit})

		rec := doRequest(r, "DELETE", "/api/v1/categories/expense/3", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if actions := audit.actions(); len(actions) != 1 || actions[0] != "DELETE_CATEGORY" {
			t.Errorf("expected DELETE_CATEGORY audit entry, got %v", actions)
		}
	})

	t.Run("returns 409 with usage count when in use", func(t *testing.T) {
		svc := &mockCategoryService{
			deleteCategoryFn: func(_ models.TransactionType, _ string) (*models.Category, error) {
				return nil, &services.CategoryInUseError{Usage: services.CategoryUsage{
					Category:   models.Category{ID: "1", Name: "Office"},
					UsageCount: 3,
				}}
			},
		}
		audit := &mockAuditService{}
		r := newTestRouter(Services{Categories: svc, Audit: audit})

		rec := doRequest(r, "DELETE", "/api/v1/categories/expense/1", "")

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "CATEGORY_IN_USE")
		if result["usage_count"] != float64(3) {
			t.Errorf("expected usage_count 3, got %v", result["usage_count"])
		}
		if len(audit.actions()) != 0 {
			t.Error("blocked delete must not be audited")
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockCategoryService{
			deleteCategoryFn: func(_ models.TransactionType, _ string) (*models.Category, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		r := newTestRouter(Services{Categories: svc})

		rec := doRequest(r, "DELETE", "/api/v1/categories/income/99", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
