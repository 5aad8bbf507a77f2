package services

import (
	"fmt"

	apperrors "taxledger/internal/errors"
	"taxledger/internal/models"
	"taxledger/internal/store"
	"taxledger/internal/validator"
)

// categoryService handles category-related business logic.
type categoryService struct {
	store *store.Store
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(s *store.Store) CategoryServicer {
	return &categoryService{store: s}
}

// ListCategories returns the categories of one ledger in creation order.
func (s *categoryService) ListCategories(txType models.TransactionType) ([]models.Category, error) {
	if !txType.Valid() {
		return nil, apperrors.ErrInvalidCategoryType
	}
	cats, err := s.store.Categories(txType)
	if err != nil {
		return nil, storeError(err)
	}
	return cats, nil
}

// CreateCategory adds a category. When color is empty the next palette
// colour is used.
func (s *categoryService) CreateCategory(txType models.TransactionType, name, color string) (*models.Category, error) {
	if !txType.Valid() {
		return nil, apperrors.ErrInvalidCategoryType
	}
	if color == "" {
		existing, err := s.store.Categories(txType)
		if err != nil {
			return nil, storeError(err)
		}
		color = models.ColorPalette[len(existing)%len(models.ColorPalette)]
	}
	if !validator.IsHexColor(color) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "color must be a hex colour such as #3b82f6")
	}

	c, err := s.store.AddCategory(txType, name, color)
	if err != nil {
		return nil, storeError(err)
	}
	return &c, nil
}

// GetCategoryUsage reports how many transactions use a category.
func (s *categoryService) GetCategoryUsage(txType models.TransactionType, id string) (*CategoryUsage, error) {
	if !txType.Valid() {
		return nil, apperrors.ErrInvalidCategoryType
	}
	cats, err := s.store.Categories(txType)
	if err != nil {
		return nil, storeError(err)
	}
	for _, c := range cats {
		if c.ID != id {
			continue
		}
		n, err := s.store.CategoryUsageCount(txType, c.Name)
		if err != nil {
			return nil, storeError(err)
		}
		return &CategoryUsage{Category: c, UsageCount: n}, nil
	}
	return nil, apperrors.ErrCategoryNotFound
}

// DeleteCategory removes an unused category. A category still referenced by
// transactions yields a CategoryInUseError.
func (s *categoryService) DeleteCategory(txType models.TransactionType, id string) (*models.Category, error) {
	if !txType.Valid() {
		return nil, apperrors.ErrInvalidCategoryType
	}
	res, err := s.store.DeleteCategory(txType, id)
	if err != nil {
		return nil, storeError(err)
	}
	if !res.Deleted {
		return nil, &CategoryInUseError{Usage: CategoryUsage{Category: res.Category, UsageCount: res.UsageCount}}
	}
	return &res.Category, nil
}

// CategoryInUseError blocks the deletion of a referenced category. It
// matches apperrors.ErrCategoryInUse.
type CategoryInUseError struct {
	Usage CategoryUsage
}

func (e *CategoryInUseError) Error() string {
	return apperrors.ErrCategoryInUse.Message
}

// Unwrap exposes the AppError so handlers render it like any other.
func (e *CategoryInUseError) Unwrap() error {
	return apperrors.WithMessage(apperrors.ErrCategoryInUse, categoryInUseMessage(e.Usage))
}

func categoryInUseMessage(u CategoryUsage) string {
	noun := "transactions use"
	if u.UsageCount == 1 {
		noun = "transaction uses"
	}
	return fmt.Sprintf("Cannot delete %q: %d %s this category", u.Category.Name, u.UsageCount, noun)
}
