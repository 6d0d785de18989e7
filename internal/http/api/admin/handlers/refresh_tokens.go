package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/deficit-app/deficit-admin/internal/models"
	"gorm.io/gorm"
)

// RefreshTokenHandler manages refresh token endpoints.
type RefreshTokenHandler struct {
	db *gorm.DB
}

// NewRefreshTokenHandler constructs a RefreshTokenHandler.
func NewRefreshTokenHandler(db *gorm.DB) *RefreshTokenHandler {
	return &RefreshTokenHandler{db: db}
}

// refreshTokenRow is a refresh token with the owner projected down.
type refreshTokenRow struct {
	models.RefreshToken
	User gin.H `json:"user"`
}

// List returns refresh tokens with user and liveness filters. A token is
// active while its expiry is in the future.
func (h *RefreshTokenHandler) List(c *gin.Context) {
	page, limit := parsePagination(c, defaultPageLimit)
	var (
		userIDQ = strings.TrimSpace(c.Query("userId"))
		statusQ = strings.TrimSpace(c.Query("status"))
	)

	q := h.db.WithContext(c.Request.Context()).Model(&models.RefreshToken{})
	if userIDQ != "" {
		if userID, errParse := strconv.ParseUint(userIDQ, 10, 64); errParse == nil {
			q = q.Where("user_id = ?", userID)
		}
	}
	switch statusQ {
	case "active":
		q = q.Where("expires_at > ?", time.Now().UTC())
	case "expired":
		q = q.Where("expires_at <= ?", time.Now().UTC())
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list refresh tokens failed"})
		return
	}

	var rows []models.RefreshToken
	if errFind := q.Preload("User").Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list refresh tokens failed"})
		return
	}

	out := make([]refreshTokenRow, 0, len(rows))
	for _, row := range rows {
		summary := userSummary(row.User)
		row.User = nil
		out = append(out, refreshTokenRow{RefreshToken: row, User: summary})
	}
	c.JSON(http.StatusOK, gin.H{
		"refreshTokens": out,
		"pagination":    paginationBlock(page, limit, total),
	})
}

// Cleanup performs bulk maintenance on the token table. The only supported
// action removes tokens whose expiry has passed.
func (h *RefreshTokenHandler) Cleanup(c *gin.Context) {
	if strings.TrimSpace(c.Query("action")) != "cleanup-expired" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).
		Where("expires_at <= ?", time.Now().UTC()).
		Delete(&models.RefreshToken{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cleanup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": res.RowsAffected})
}

// Delete removes a single refresh token, revoking the device session.
func (h *RefreshTokenHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.RefreshToken{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete refresh token failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "refresh token not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
