package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/deficit-app/deficit-admin/internal/config"
	handlers "github.com/deficit-app/deficit-admin/internal/http/api/admin/handlers"
	"github.com/deficit-app/deficit-admin/internal/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newGuardedRouter(session config.SessionConfig) *gin.Engine {
	engine := gin.New()
	guarded := engine.Group("/api/admin")
	guarded.Use(SessionMiddleware(session))
	guarded.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"adminID":    c.GetUint64("adminID"),
			"adminEmail": c.GetString("adminEmail"),
		})
	})
	return engine
}

func TestSessionMiddlewareRejectsMissingToken(t *testing.T) {
	engine := newGuardedRouter(config.SessionConfig{Secret: "secret", Expiry: time.Hour})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionMiddlewareAcceptsCookie(t *testing.T) {
	session := config.SessionConfig{Secret: "secret", Expiry: time.Hour}
	engine := newGuardedRouter(session)

	token, errSign := security.SignSessionToken(session.Secret, 7, "ops@example.com", session.Expiry)
	if errSign != nil {
		t.Fatalf("sign token: %v", errSign)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.AddCookie(&http.Cookie{Name: handlers.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSessionMiddlewareAcceptsBearerHeader(t *testing.T) {
	session := config.SessionConfig{Secret: "secret", Expiry: time.Hour}
	engine := newGuardedRouter(session)

	token, errSign := security.SignSessionToken(session.Secret, 7, "ops@example.com", session.Expiry)
	if errSign != nil {
		t.Fatalf("sign token: %v", errSign)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSessionMiddlewareRejectsBadSignature(t *testing.T) {
	engine := newGuardedRouter(config.SessionConfig{Secret: "secret", Expiry: time.Hour})

	token, errSign := security.SignSessionToken("other-secret", 7, "ops@example.com", time.Hour)
	if errSign != nil {
		t.Fatalf("sign token: %v", errSign)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionMiddlewareRejectsExpiredToken(t *testing.T) {
	session := config.SessionConfig{Secret: "secret", Expiry: time.Hour}
	engine := newGuardedRouter(session)

	token, errSign := security.SignSessionToken(session.Secret, 7, "ops@example.com", -time.Minute)
	if errSign != nil {
		t.Fatalf("sign token: %v", errSign)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
