package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/deficit-app/deficit-admin/internal/config"
	"github.com/deficit-app/deficit-admin/internal/models"
	"github.com/deficit-app/deficit-admin/internal/ratelimit"
	"github.com/deficit-app/deficit-admin/internal/security"
	"gorm.io/gorm"
)

// SessionCookieName carries the admin session token.
const SessionCookieName = "admin_token"

// SetupKeyHeader authorizes the admin bootstrap endpoint.
const SetupKeyHeader = "X-Setup-Key"

const minAdminPasswordLen = 8

// AuthHandler manages admin session endpoints.
type AuthHandler struct {
	db       *gorm.DB
	limiter  *ratelimit.LoginLimiter
	session  config.SessionConfig
	setupKey string
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, limiter *ratelimit.LoginLimiter, session config.SessionConfig, setupKey string) *AuthHandler {
	return &AuthHandler{db: db, limiter: limiter, session: session, setupKey: setupKey}
}

// loginRequest defines the request body for admin login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies admin credentials and issues a session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	ip := clientIP(c)
	ctx := c.Request.Context()

	if h.limiter.Blocked(ctx, ip) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts, please try again later"})
		return
	}

	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	password := body.Password
	if email == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	var admin models.Admin
	errFind := h.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			h.limiter.Fail(ctx, ip)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	if !security.CheckPassword(admin.PasswordHash, password) {
		h.limiter.Fail(ctx, ip)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	h.limiter.Reset(ctx, ip)

	if errUpdate := h.db.WithContext(ctx).Model(&models.Admin{}).
		Where("id = ?", admin.ID).
		Updates(map[string]any{"last_login_at": time.Now().UTC()}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	token, errSign := security.SignSessionToken(h.session.Secret, admin.ID, admin.Email, h.session.Expiry)
	if errSign != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	h.setSessionCookie(c, token, int(h.session.Expiry.Seconds()))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Check reports whether the request carries a valid session.
func (h *AuthHandler) Check(c *gin.Context) {
	raw := sessionTokenFromRequest(c)
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}
	claims, errParse := security.ParseSessionToken(h.session.Secret, raw)
	if errParse != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "email": claims.Email})
}

// setupRequest defines the request body for admin bootstrap.
type setupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Setup creates an admin account. The endpoint only works when a setup key
// is configured and the caller presents it.
func (h *AuthHandler) Setup(c *gin.Context) {
	if h.setupKey == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "setup endpoint is disabled"})
		return
	}
	if c.GetHeader(SetupKeyHeader) != h.setupKey {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid setup key"})
		return
	}

	var body setupRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	if len(body.Password) < minAdminPasswordLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
		return
	}

	ctx := c.Request.Context()
	var existing models.Admin
	errFind := h.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if errFind == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "admin user already exists"})
		return
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create admin failed"})
		return
	}

	hash, errHash := security.HashPassword(body.Password)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}
	admin := models.Admin{Email: email, PasswordHash: hash}
	if errCreate := h.db.WithContext(ctx).Create(&admin).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create admin failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": admin.ID, "email": admin.Email})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", c.Request.TLS != nil, true)
}

// sessionTokenFromRequest extracts the session token from the cookie or a
// Bearer authorization header.
func sessionTokenFromRequest(c *gin.Context) string {
	if cookie, errCookie := c.Cookie(SessionCookieName); errCookie == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return ""
	}
	return strings.TrimSpace(token)
}
