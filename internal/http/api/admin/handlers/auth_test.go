package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/deficit-app/deficit-admin/internal/config"
	"github.com/deficit-app/deficit-admin/internal/models"
	"github.com/deficit-app/deficit-admin/internal/ratelimit"
	"github.com/deficit-app/deficit-admin/internal/security"
	"gorm.io/gorm"
)

func newAuthRouter(db *gorm.DB, setupKey string) *gin.Engine {
	session := config.SessionConfig{Secret: "test-session-secret", Expiry: time.Hour}
	limiter := ratelimit.NewLoginLimiter(ratelimit.RedisSettings{}, nil, nil)
	handler := NewAuthHandler(db, limiter, session, setupKey)
	engine := gin.New()
	engine.POST("/api/admin/auth/login", handler.Login)
	engine.POST("/api/admin/auth/logout", handler.Logout)
	engine.GET("/api/admin/auth/check", handler.Check)
	engine.POST("/api/admin/auth/setup", handler.Setup)
	return engine
}

func seedAdmin(t *testing.T, db *gorm.DB, email, password string) models.Admin {
	t.Helper()
	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	admin := models.Admin{Email: email, PasswordHash: hash}
	if errCreate := db.Create(&admin).Error; errCreate != nil {
		t.Fatalf("seed admin: %v", errCreate)
	}
	return admin
}

func TestLoginIssuesSessionCookie(t *testing.T) {
	db := newTestDB(t)
	engine := newAuthRouter(db, "")
	seedAdmin(t, db, "ops@example.com", "correct horse battery")

	rec := performJSON(t, engine, http.MethodPost, "/api/admin/auth/login", gin.H{
		"email":    "Ops@Example.com",
		"password": "correct horse battery",
	})
	expectStatus(t, rec, http.StatusOK)

	var cookie string
	for _, raw := range rec.Result().Cookies() {
		if raw.Name == SessionCookieName {
			cookie = raw.Value
		}
	}
	if cookie == "" {
		t.Fatalf("expected %s cookie to be set", SessionCookieName)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/auth/check", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: cookie})
	checkRec := httptest.NewRecorder()
	engine.ServeHTTP(checkRec, req)
	expectStatus(t, checkRec, http.StatusOK)
	body := decodeBody(t, checkRec)
	if body["authenticated"] != true {
		t.Fatalf("expected authenticated=true, got %v", body)
	}
	if body["email"] != "ops@example.com" {
		t.Fatalf("expected lowered email in check response, got %v", body["email"])
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := newTestDB(t)
	engine := newAuthRouter(db, "")
	seedAdmin(t, db, "ops@example.com", "correct horse battery")

	rec := performJSON(t, engine, http.MethodPost, "/api/admin/auth/login", gin.H{
		"email":    "ops@example.com",
		"password": "wrong",
	})
	expectStatus(t, rec, http.StatusUnauthorized)
	if msg := decodeBody(t, rec)["error"]; msg != "invalid credentials" {
		t.Fatalf("unexpected error message: %v", msg)
	}

	rec = performJSON(t, engine, http.MethodPost, "/api/admin/auth/login", gin.H{
		"email":    "nobody@example.com",
		"password": "whatever",
	})
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestLoginRateLimitsAfterRepeatedFailures(t *testing.T) {
	db := newTestDB(t)
	engine := newAuthRouter(db, "")
	seedAdmin(t, db, "ops@example.com", "correct horse battery")

	for i := 0; i < ratelimit.LoginAttemptLimit; i++ {
		rec := performJSON(t, engine, http.MethodPost, "/api/admin/auth/login", gin.H{
			"email":    "ops@example.com",
			"password": "wrong",
		})
		expectStatus(t, rec, http.StatusUnauthorized)
	}

	// Even the right password is refused once the IP is blocked.
	rec := performJSON(t, engine, http.MethodPost, "/api/admin/auth/login", gin.H{
		"email":    "ops@example.com",
		"password": "correct horse battery",
	})
	expectStatus(t, rec, http.StatusTooManyRequests)
}

func TestLoginResetClearsFailureCount(t *testing.T) {
	db := newTestDB(t)
	engine := newAuthRouter(db, "")
	seedAdmin(t, db, "ops@example.com", "correct horse battery")

	for i := 0; i < ratelimit.LoginAttemptLimit-1; i++ {
		rec := performJSON(t, engine, http.MethodPost, "/api/admin/auth/login", gin.H{
			"email":    "ops@example.com",
			"password": "wrong",
		})
		expectStatus(t, rec, http.StatusUnauthorized)
	}

	rec := performJSON(t, engine, http.MethodPost, "/api/admin/auth/login", gin.H{
		"email":    "ops@example.com",
		"password": "correct horse battery",
	})
	expectStatus(t, rec, http.StatusOK)

	// The successful login reset the counter, so another failure is a 401
	// rather than a block.
	rec = performJSON(t, engine, http.MethodPost, "/api/admin/auth/login", gin.H{
		"email":    "ops@example.com",
		"password": "wrong",
	})
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestLogoutClearsCookie(t *testing.T) {
	db := newTestDB(t)
	engine := newAuthRouter(db, "")

	rec := performJSON(t, engine, http.MethodPost, "/api/admin/auth/logout", nil)
	expectStatus(t, rec, http.StatusOK)
	found := false
	for _, raw := range rec.Result().Cookies() {
		if raw.Name == SessionCookieName {
			found = true
			if raw.MaxAge >= 0 {
				t.Fatalf("expected negative max-age on logout cookie, got %d", raw.MaxAge)
			}
		}
	}
	if !found {
		t.Fatalf("expected logout to rewrite the session cookie")
	}
}

func TestSetupCreatesFirstAdmin(t *testing.T) {
	db := newTestDB(t)
	engine := newAuthRouter(db, "bootstrap-key")

	req := httptest.NewRequest(http.MethodPost, "/api/admin/auth/setup",
		strings.NewReader(`{"email":"Root@Example.com","password":"longenough"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SetupKeyHeader, "bootstrap-key")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusOK)
	body := decodeBody(t, rec)
	if body["email"] != "root@example.com" {
		t.Fatalf("expected normalized email, got %v", body["email"])
	}

	var count int64
	if errCount := db.Model(&models.Admin{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count admins: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("expected 1 admin, got %d", count)
	}
}

func TestSetupGuards(t *testing.T) {
	db := newTestDB(t)
	seedAdmin(t, db, "root@example.com", "longenough")

	// Disabled when no setup key is configured.
	engine := newAuthRouter(db, "")
	rec := performJSON(t, engine, http.MethodPost, "/api/admin/auth/setup", gin.H{
		"email": "x@example.com", "password": "longenough",
	})
	expectStatus(t, rec, http.StatusForbidden)

	engine = newAuthRouter(db, "bootstrap-key")

	// Wrong key.
	rec = performJSON(t, engine, http.MethodPost, "/api/admin/auth/setup", gin.H{
		"email": "x@example.com", "password": "longenough",
	})
	expectStatus(t, rec, http.StatusForbidden)

	withKey := func(payload string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/auth/setup", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(SetupKeyHeader, "bootstrap-key")
		out := httptest.NewRecorder()
		engine.ServeHTTP(out, req)
		return out
	}

	// Password too short.
	expectStatus(t, withKey(`{"email":"x@example.com","password":"short"}`), http.StatusBadRequest)

	// Duplicate email.
	expectStatus(t, withKey(`{"email":"root@example.com","password":"longenough"}`), http.StatusConflict)
}
