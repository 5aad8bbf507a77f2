package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "taxledger/internal/errors"
	"taxledger/internal/models"
	"taxledger/internal/services"
)

// SettingsHandler handles stored preferences.
type SettingsHandler struct {
	settingsService services.SettingsServicer
	auditService    services.AuditServicer
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService services.SettingsServicer, auditService services.AuditServicer) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, auditService: auditService}
}

// ThemeRequest represents the payload for changing the theme.
type ThemeRequest struct {
	Mode models.ThemeMode `json:"mode" binding:"required,theme_mode"`
}

// GetTheme returns the stored theme mode.
// @Summary     Get theme
// @Tags        settings
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} ThemeRequest
// @Router      /settings/theme [get]
func (h *SettingsHandler) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"mode": h.settingsService.GetThemeMode()})
}

// SetTheme stores the theme mode.
// @Summary     Set theme
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ThemeRequest true "light, dark or auto"
// @Success     200 {object} ThemeRequest
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /settings/theme [put]
func (h *SettingsHandler) SetTheme(c *gin.Context) {
	var req ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.settingsService.SetThemeMode(req.Mode); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("UPDATE_THEME", "settings", "theme", c.ClientIP(), map[string]interface{}{"mode": req.Mode})

	c.JSON(http.StatusOK, gin.H{"mode": req.Mode})
}
