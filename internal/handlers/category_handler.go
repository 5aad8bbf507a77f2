package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "taxledger/internal/errors"
	"taxledger/internal/services"
)

// CategoryHandler handles category-related requests
type CategoryHandler struct {
	categoryService services.CategoryServicer
	auditService    services.AuditServicer
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService services.CategoryServicer, auditService services.AuditServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, auditService: auditService}
}

// CreateCategoryRequest represents the request payload for creating a category.
// An empty colour picks the next one from the palette.
type CreateCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color" binding:"omitempty,hex_color"`
}

// CategoryInUseResponse is returned when a delete is blocked by transactions
// that still use the category.
type CategoryInUseResponse struct {
	Error      ErrorDetail `json:"error"`
	UsageCount int         `json:"usage_count"`
}

// ListCategories returns the categories of one type in stored order.
// @Summary     List categories
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       type path string true "income or expense"
// @Success     200 {array} models.Category
// @Failure     400 {object} ErrorResponse "Invalid category type"
// @Router      /categories/{type} [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	txType, err := parseTypeParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categories, err := h.categoryService.ListCategories(txType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory handles the creation of a new category
// @Summary     Create a category
// @Description Names are trimmed, at most 20 characters and unique per type ignoring case
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       type    path string                true "income or expense"
// @Param       request body CreateCategoryRequest true "Category details"
// @Success     201 {object} models.Category "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Router      /categories/{type} [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	txType, err := parseTypeParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.CreateCategory(txType, req.Name, req.Color)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_CATEGORY", "category", category.ID, c.ClientIP(),
		map[string]interface{}{"type": txType, "name": category.Name, "color": category.Color})

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// GetCategoryUsage reports how many transactions use a category.
// @Summary     Category usage
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       type path string true "income or expense"
// @Param       id   path string true "Category ID"
// @Success     200 {object} services.CategoryUsage
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{type}/{id}/usage [get]
func (h *CategoryHandler) GetCategoryUsage(c *gin.Context) {
	txType, err := parseTypeParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	usage, err := h.categoryService.GetCategoryUsage(txType, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, usage)
}

// DeleteCategory removes a category that no transaction uses.
// @Summary     Delete a category
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       type path string true "income or expense"
// @Param       id   path string true "Category ID"
// @Success     200 {object} map[string]string "Category deleted"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} CategoryInUseResponse "Category in use"
// @Router      /categories/{type}/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	txType, err := parseTypeParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.DeleteCategory(txType, c.Param("id"))
	if err != nil {
		var inUse *services.CategoryInUseError
		if errors.As(err, &inUse) {
			appErr := inUse.Unwrap().(*apperrors.AppError)
			c.JSON(appErr.StatusCode, CategoryInUseResponse{
				Error:      ErrorDetail{Code: appErr.Code, Message: appErr.Message},
				UsageCount: inUse.Usage.UsageCount,
			})
			return
		}
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_CATEGORY", "category", category.ID, c.ClientIP(),
		map[string]interface{}{"type": txType, "name": category.Name})

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
