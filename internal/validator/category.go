package validator

import (
	"errors"
	"strings"
	"unicode/utf8"

	"taxledger/internal/models"
)

var (
	// ErrCategoryNameRequired is returned for blank category names.
	ErrCategoryNameRequired = errors.New("category name is required")
	// ErrCategoryNameTooLong is returned for names over the length limit.
	ErrCategoryNameTooLong = errors.New("category name must be 20 characters or less")
)

// CategoryName trims name and checks it is non-empty and within
// models.MaxCategoryNameLength characters.
func CategoryName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrCategoryNameRequired
	}
	if utf8.RuneCountInString(trimmed) > models.MaxCategoryNameLength {
		return "", ErrCategoryNameTooLong
	}
	return trimmed, nil
}

// IsDuplicateCategory reports whether name matches an existing category,
// ignoring case and surrounding whitespace.
func IsDuplicateCategory(name string, existing []models.Category) bool {
	needle := strings.TrimSpace(name)
	for _, c := range existing {
		if strings.EqualFold(strings.TrimSpace(c.Name), needle) {
			return true
		}
	}
	return false
}
