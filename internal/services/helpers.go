package services

import (
	"errors"

	apperrors "taxledger/internal/errors"
	"taxledger/internal/store"
	"taxledger/internal/validator"
)

// storeError translates store and validator errors into AppErrors. AppErrors
// raised inside a store callback pass through unchanged.
func storeError(err error) error {
	var appErr *apperrors.AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, store.ErrInvalidType):
		return apperrors.ErrInvalidTransactionType
	case errors.Is(err, store.ErrTransactionNotFound):
		return apperrors.ErrTransactionNotFound
	case errors.Is(err, store.ErrCategoryNotFound):
		return apperrors.ErrCategoryNotFound
	case errors.Is(err, store.ErrDuplicateCategory):
		return apperrors.ErrDuplicateCategory
	case errors.Is(err, store.ErrInvalidThemeMode):
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "theme mode must be light, dark or auto")
	case errors.Is(err, validator.ErrCategoryNameRequired):
		return apperrors.ErrInvalidCategoryName
	case errors.Is(err, validator.ErrCategoryNameTooLong):
		return apperrors.WithMessage(apperrors.ErrInvalidCategoryName, "Category name must be 20 characters or less")
	default:
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
}
