package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taxledger/internal/middleware"
	"taxledger/internal/models"
)

func TestRouter(t *testing.T) {
	t.Run("health is public", func(t *testing.T) {
		r := NewRouter(Services{Audit: &mockAuditService{}}, []byte("secret"))

		rec := doRequest(r, "GET", "/health", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := parseJSON(t, rec)["status"]; got != "ok" {
			t.Errorf("expected ok, got %v", got)
		}
	})

	t.Run("api requires a token when a secret is set", func(t *testing.T) {
		r := NewRouter(Services{Settings: &mockSettingsService{mode: models.ThemeModeDark}, Audit: &mockAuditService{}}, []byte("secret"))

		rec := doRequest(r, "GET", "/api/v1/settings/theme", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNAUTHORIZED")
	})

	t.Run("api accepts a valid token", func(t *testing.T) {
		secret := []byte("secret")
		token, err := middleware.GenerateToken(secret, middleware.OwnerSubject, time.Hour)
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}
		r := NewRouter(Services{Settings: &mockSettingsService{mode: models.ThemeModeDark}, Audit: &mockAuditService{}}, secret)

		req := httptest.NewRequest("GET", "/api/v1/settings/theme", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("answers CORS preflight", func(t *testing.T) {
		r := newTestRouter(Services{})

		rec := doRequest(r, "OPTIONS", "/api/v1/income", "")

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("expected CORS header")
		}
	})
}
