package services

import (
	"taxledger/internal/models"
	"taxledger/internal/store"
)

type settingsService struct {
	store *store.Store
}

// NewSettingsService creates a new SettingsServicer.
func NewSettingsService(s *store.Store) SettingsServicer {
	return &settingsService{store: s}
}

func (s *settingsService) GetThemeMode() models.ThemeMode {
	return s.store.ThemeMode()
}

func (s *settingsService) SetThemeMode(mode models.ThemeMode) error {
	return storeError(s.store.SetThemeMode(mode))
}
