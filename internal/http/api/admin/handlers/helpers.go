package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/deficit-app/deficit-admin/internal/models"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 200
)

// parsePagination reads page and limit query params with sane bounds.
func parsePagination(c *gin.Context, defaultLimit int) (page int, limit int) {
	page = 1
	if raw := strings.TrimSpace(c.Query("page")); raw != "" {
		if parsed, errParse := strconv.Atoi(raw); errParse == nil && parsed > 0 {
			page = parsed
		}
	}
	limit = defaultLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if parsed, errParse := strconv.Atoi(raw); errParse == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// paginationBlock builds the shared pagination envelope section.
func paginationBlock(page, limit int, total int64) gin.H {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return gin.H{
		"page":       page,
		"limit":      limit,
		"total":      total,
		"totalPages": pages,
	}
}

// userSummary projects the user fields embedded in list responses.
func userSummary(user *models.User) gin.H {
	if user == nil {
		return nil
	}
	return gin.H{
		"id":          user.ID,
		"email":       user.Email,
		"displayName": user.DisplayName,
	}
}

// clientIP resolves the caller address, preferring proxy headers.
func clientIP(c *gin.Context) string {
	if fwd := strings.TrimSpace(c.GetHeader("X-Forwarded-For")); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	if real := strings.TrimSpace(c.GetHeader("X-Real-IP")); real != "" {
		return real
	}
	return c.ClientIP()
}
