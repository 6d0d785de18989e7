package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/deficit-app/deficit-admin/internal/models"
	"gorm.io/gorm"
)

func newRefreshTokenRouter(db *gorm.DB) *gin.Engine {
	handler := NewRefreshTokenHandler(db)
	engine := gin.New()
	engine.GET("/api/admin/refresh-tokens", handler.List)
	engine.DELETE("/api/admin/refresh-tokens", handler.Cleanup)
	engine.DELETE("/api/admin/refresh-tokens/:id", handler.Delete)
	return engine
}

func seedRefreshToken(t *testing.T, db *gorm.DB, userID uint64, token string, expiresAt time.Time) models.RefreshToken {
	t.Helper()
	row := models.RefreshToken{UserID: userID, Token: token, ExpiresAt: expiresAt}
	if errCreate := db.Create(&row).Error; errCreate != nil {
		t.Fatalf("seed refresh token %s: %v", token, errCreate)
	}
	return row
}

func TestRefreshTokenListStatusFilter(t *testing.T) {
	db := newTestDB(t)
	engine := newRefreshTokenRouter(db)
	user := seedUser(t, db, "tokens@example.com", models.TierFree)

	seedRefreshToken(t, db, user.ID, "live-1", time.Now().Add(time.Hour))
	seedRefreshToken(t, db, user.ID, "live-2", time.Now().Add(2*time.Hour))
	seedRefreshToken(t, db, user.ID, "stale-1", time.Now().Add(-time.Hour))

	rec := performJSON(t, engine, http.MethodGet, "/api/admin/refresh-tokens?status=active", nil)
	expectStatus(t, rec, http.StatusOK)
	body := decodeBody(t, rec)
	rows := body["refreshTokens"].([]any)
	if len(rows) != 2 {
		t.Fatalf("expected 2 active tokens, got %d", len(rows))
	}
	row := rows[0].(map[string]any)
	owner, ok := row["user"].(map[string]any)
	if !ok || owner["email"] != "tokens@example.com" {
		t.Fatalf("expected owner summary on token row, got %v", row["user"])
	}

	rec = performJSON(t, engine, http.MethodGet, "/api/admin/refresh-tokens?status=expired", nil)
	expectStatus(t, rec, http.StatusOK)
	rows = decodeBody(t, rec)["refreshTokens"].([]any)
	if len(rows) != 1 {
		t.Fatalf("expected 1 expired token, got %d", len(rows))
	}
}

func TestRefreshTokenListUserFilter(t *testing.T) {
	db := newTestDB(t)
	engine := newRefreshTokenRouter(db)
	alice := seedUser(t, db, "alice@example.com", models.TierFree)
	bob := seedUser(t, db, "bob@example.com", models.TierFree)
	seedRefreshToken(t, db, alice.ID, "alice-tok", time.Now().Add(time.Hour))
	seedRefreshToken(t, db, bob.ID, "bob-tok", time.Now().Add(time.Hour))

	rec := performJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/admin/refresh-tokens?userId=%d", bob.ID), nil)
	expectStatus(t, rec, http.StatusOK)
	body := decodeBody(t, rec)
	rows := body["refreshTokens"].([]any)
	if len(rows) != 1 {
		t.Fatalf("expected 1 token for bob, got %d", len(rows))
	}
	if total := body["pagination"].(map[string]any)["total"]; total != float64(1) {
		t.Fatalf("expected filtered total 1, got %v", total)
	}
}

func TestRefreshTokenCleanupExpired(t *testing.T) {
	db := newTestDB(t)
	engine := newRefreshTokenRouter(db)
	user := seedUser(t, db, "cleanup@example.com", models.TierFree)
	seedRefreshToken(t, db, user.ID, "keep", time.Now().Add(time.Hour))
	seedRefreshToken(t, db, user.ID, "drop-1", time.Now().Add(-time.Hour))
	seedRefreshToken(t, db, user.ID, "drop-2", time.Now().Add(-2*time.Hour))

	rec := performJSON(t, engine, http.MethodDelete, "/api/admin/refresh-tokens?action=cleanup-expired", nil)
	expectStatus(t, rec, http.StatusOK)
	body := decodeBody(t, rec)
	if body["deleted"] != float64(2) {
		t.Fatalf("expected 2 deleted, got %v", body["deleted"])
	}

	var remaining int64
	if errCount := db.Model(&models.RefreshToken{}).Count(&remaining).Error; errCount != nil {
		t.Fatalf("count tokens: %v", errCount)
	}
	if remaining != 1 {
		t.Fatalf("expected 1 surviving token, got %d", remaining)
	}
}

func TestRefreshTokenCleanupRejectsUnknownAction(t *testing.T) {
	db := newTestDB(t)
	engine := newRefreshTokenRouter(db)

	rec := performJSON(t, engine, http.MethodDelete, "/api/admin/refresh-tokens?action=drop-everything", nil)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = performJSON(t, engine, http.MethodDelete, "/api/admin/refresh-tokens", nil)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestRefreshTokenDelete(t *testing.T) {
	db := newTestDB(t)
	engine := newRefreshTokenRouter(db)
	user := seedUser(t, db, "revoke@example.com", models.TierFree)
	row := seedRefreshToken(t, db, user.ID, "revoked", time.Now().Add(time.Hour))

	rec := performJSON(t, engine, http.MethodDelete, fmt.Sprintf("/api/admin/refresh-tokens/%d", row.ID), nil)
	expectStatus(t, rec, http.StatusOK)

	rec = performJSON(t, engine, http.MethodDelete, fmt.Sprintf("/api/admin/refresh-tokens/%d", row.ID), nil)
	expectStatus(t, rec, http.StatusNotFound)
}
