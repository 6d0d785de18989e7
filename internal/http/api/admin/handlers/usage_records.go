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

// UsageRecordHandler manages scan usage endpoints.
type UsageRecordHandler struct {
	db *gorm.DB
}

// NewUsageRecordHandler constructs a UsageRecordHandler.
func NewUsageRecordHandler(db *gorm.DB) *UsageRecordHandler {
	return &UsageRecordHandler{db: db}
}

// usageRecordRow is a usage record with the owner projected down.
type usageRecordRow struct {
	models.UsageRecord
	User gin.H `json:"user"`
}

// List returns usage records with user and date filters.
func (h *UsageRecordHandler) List(c *gin.Context) {
	page, limit := parsePagination(c, defaultPageLimit)
	var (
		userIDQ = strings.TrimSpace(c.Query("userId"))
		dateQ   = strings.TrimSpace(c.Query("date"))
	)

	q := h.db.WithContext(c.Request.Context()).Model(&models.UsageRecord{})
	if userIDQ != "" {
		if userID, errParse := strconv.ParseUint(userIDQ, 10, 64); errParse == nil {
			q = q.Where("user_id = ?", userID)
		}
	}
	if dateQ != "" {
		q = q.Where("date = ?", dateQ)
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list usage records failed"})
		return
	}

	var rows []models.UsageRecord
	if errFind := q.Preload("User").Order("date DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list usage records failed"})
		return
	}

	out := make([]usageRecordRow, 0, len(rows))
	for _, row := range rows {
		var summary gin.H
		if row.User != nil {
			summary = gin.H{
				"id":               row.User.ID,
				"email":            row.User.Email,
				"displayName":      row.User.DisplayName,
				"subscriptionTier": row.User.SubscriptionTier,
			}
		}
		row.User = nil
		out = append(out, usageRecordRow{UsageRecord: row, User: summary})
	}
	c.JSON(http.StatusOK, gin.H{
		"usageRecords": out,
		"pagination":   paginationBlock(page, limit, total),
	})
}

// updateUsageRecordRequest defines the PATCH body for usage records.
type updateUsageRecordRequest struct {
	ScanCount  *int       `json:"scanCount"`
	LastScanAt *time.Time `json:"lastScanAt"`
}

// Update modifies a usage record.
func (h *UsageRecordHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateUsageRecordRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if body.ScanCount != nil {
		updates["scan_count"] = *body.ScanCount
	}
	if body.LastScanAt != nil {
		updates["last_scan_at"] = *body.LastScanAt
	}

	ctx := c.Request.Context()
	res := h.db.WithContext(ctx).Model(&models.UsageRecord{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update usage record failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "usage record not found"})
		return
	}

	var row models.UsageRecord
	if errFind := h.db.WithContext(ctx).First(&row, id).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, row)
}

// Delete removes a usage record.
func (h *UsageRecordHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.UsageRecord{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete usage record failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "usage record not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
