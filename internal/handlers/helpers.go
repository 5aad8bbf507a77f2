package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "taxledger/internal/errors"
	"taxledger/internal/logger"
	"taxledger/internal/models"
)

const ledgerKey = "ledger"

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// withLedger pins the transaction type served by a route group.
func withLedger(t models.TransactionType) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ledgerKey, t)
		c.Next()
	}
}

// getLedger returns the transaction type set by withLedger.
func getLedger(c *gin.Context) (models.TransactionType, error) {
	v, ok := c.Get(ledgerKey)
	if !ok {
		return "", apperrors.ErrInvalidTransactionType
	}
	t, ok := v.(models.TransactionType)
	if !ok || !t.Valid() {
		return "", apperrors.ErrInvalidTransactionType
	}
	return t, nil
}

// parseTypeParam parses a :type path parameter, accepting singular and
// plural forms.
func parseTypeParam(c *gin.Context) (models.TransactionType, error) {
	t, ok := models.ParseTransactionType(c.Param("type"))
	if !ok {
		return "", apperrors.ErrInvalidCategoryType
	}
	return t, nil
}

// parseYear reads the optional year query parameter. 0 means every year.
func parseYear(c *gin.Context) (int, error) {
	raw := c.Query("year")
	if raw == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1900 || year > 9999 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid year")
	}
	return year, nil
}

// ledgerAction builds audit action names such as CREATE_INCOME.
func ledgerAction(verb string, t models.TransactionType) string {
	if t == models.TransactionTypeIncome {
		return verb + "_INCOME"
	}
	return verb + "_EXPENSE"
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, ErrorResponse{Error: ErrorDetail{Code: appErr.Code, Message: appErr.Message}})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, ErrorResponse{Error: ErrorDetail{
		Code:    apperrors.ErrInternalServer.Code,
		Message: apperrors.ErrInternalServer.Message,
	}})
}

// parseTypeQuery parses the type query parameter.
func parseTypeQuery(c *gin.Context) (models.TransactionType, error) {
	t, ok := models.ParseTransactionType(c.Query("type"))
	if !ok {
		return "", apperrors.ErrInvalidTransactionType
	}
	return t, nil
}
