package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	dbutil "github.com/deficit-app/deficit-admin/internal/db"
	"github.com/deficit-app/deficit-admin/internal/models"
	"gorm.io/gorm"
)

// NotificationLogHandler exposes the global delivery log.
type NotificationLogHandler struct {
	db *gorm.DB
}

// NewNotificationLogHandler constructs a NotificationLogHandler.
func NewNotificationLogHandler(db *gorm.DB) *NotificationLogHandler {
	return &NotificationLogHandler{db: db}
}

// notificationLogRow is a log row with user and campaign projected down.
type notificationLogRow struct {
	models.NotificationLog
	User      gin.H `json:"user"`
	Broadcast gin.H `json:"broadcast,omitempty"`
}

// List returns notification logs across all campaigns with type, outcome,
// user, and text filters.
func (h *NotificationLogHandler) List(c *gin.Context) {
	page, limit := parsePagination(c, 50)
	var (
		typeQ   = strings.TrimSpace(c.Query("type"))
		statusQ = strings.TrimSpace(c.Query("status"))
		userIDQ = strings.TrimSpace(c.Query("userId"))
		searchQ = strings.TrimSpace(c.Query("search"))
	)

	q := h.db.WithContext(c.Request.Context()).Model(&models.NotificationLog{})
	if typeQ != "" {
		q = q.Where("notification_logs.type = ?", typeQ)
	}
	switch statusQ {
	case "sent":
		q = q.Where("notification_logs.sent_at IS NOT NULL")
	case "failed":
		q = q.Where("notification_logs.failed_at IS NOT NULL")
	}
	if userIDQ != "" {
		if userID, errParse := strconv.ParseUint(userIDQ, 10, 64); errParse == nil {
			q = q.Where("notification_logs.user_id = ?", userID)
		}
	}
	if searchQ != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+searchQ+"%")
		q = q.Joins("LEFT JOIN users ON users.id = notification_logs.user_id").
			Where(
				dbutil.CaseInsensitiveLikeExpr(h.db, "notification_logs.title")+" OR "+
					dbutil.CaseInsensitiveLikeExpr(h.db, "notification_logs.body")+" OR "+
					dbutil.CaseInsensitiveLikeExpr(h.db, "users.email"),
				pattern,
				pattern,
				pattern,
			)
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list logs failed"})
		return
	}

	var rows []models.NotificationLog
	if errFind := q.Preload("User").Preload("Broadcast").
		Order("notification_logs.created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list logs failed"})
		return
	}

	out := make([]notificationLogRow, 0, len(rows))
	for _, row := range rows {
		userBlock := userSummary(row.User)
		var broadcastBlock gin.H
		if row.Broadcast != nil {
			broadcastBlock = gin.H{"id": row.Broadcast.ID, "title": row.Broadcast.Title}
		}
		row.User = nil
		row.Broadcast = nil
		out = append(out, notificationLogRow{NotificationLog: row, User: userBlock, Broadcast: broadcastBlock})
	}
	c.JSON(http.StatusOK, gin.H{
		"logs":       out,
		"pagination": paginationBlock(page, limit, total),
	})
}
