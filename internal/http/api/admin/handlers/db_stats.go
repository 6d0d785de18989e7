package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/deficit-app/deficit-admin/internal/models"
	"gorm.io/gorm"
)

// DBStatsHandler aggregates table counts for the dashboard overview.
type DBStatsHandler struct {
	db *gorm.DB
}

// NewDBStatsHandler constructs a DBStatsHandler.
func NewDBStatsHandler(db *gorm.DB) *DBStatsHandler {
	return &DBStatsHandler{db: db}
}

// Get returns aggregate counts across users, food logs, usage, and tokens.
func (h *DBStatsHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now().UTC()
	today := now.Format("2006-01-02")
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	count := func(model any, conds ...any) (int64, bool) {
		q := h.db.WithContext(ctx).Model(model)
		if len(conds) > 0 {
			q = q.Where(conds[0], conds[1:]...)
		}
		var n int64
		if errCount := q.Count(&n).Error; errCount != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
			return 0, false
		}
		return n, true
	}

	totalUsers, ok := count(&models.User{})
	if !ok {
		return
	}
	tierCounts := make(map[models.SubscriptionTier]int64, 4)
	for _, tier := range []models.SubscriptionTier{
		models.TierFree, models.TierProMonthly, models.TierProAnnual, models.TierLifetime,
	} {
		n, okTier := count(&models.User{}, "subscription_tier = ?", tier)
		if !okTier {
			return
		}
		tierCounts[tier] = n
	}
	withAppleID, ok := count(&models.User{}, "apple_user_id IS NOT NULL")
	if !ok {
		return
	}
	todaySignups, ok := count(&models.User{}, "created_at >= ?", todayStart)
	if !ok {
		return
	}

	totalFoodLogs, ok := count(&models.FoodLog{})
	if !ok {
		return
	}
	todayFoodLogs, ok := count(&models.FoodLog{}, "date = ?", today)
	if !ok {
		return
	}
	sourceCounts := make(map[models.FoodSource]int64, 4)
	for _, source := range []models.FoodSource{
		models.SourceAI, models.SourceManual, models.SourceBarcode, models.SourceVoice,
	} {
		n, okSource := count(&models.FoodLog{}, "source = ?", source)
		if !okSource {
			return
		}
		sourceCounts[source] = n
	}

	totalUsageRecords, ok := count(&models.UsageRecord{})
	if !ok {
		return
	}
	var totalScans int64
	if errSum := h.db.WithContext(ctx).Model(&models.UsageRecord{}).
		Select("COALESCE(SUM(scan_count), 0)").
		Scan(&totalScans).Error; errSum != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}

	totalTokens, ok := count(&models.RefreshToken{})
	if !ok {
		return
	}
	activeTokens, ok := count(&models.RefreshToken{}, "expires_at > ?", now)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": gin.H{
			"total":        totalUsers,
			"free":         tierCounts[models.TierFree],
			"proMonthly":   tierCounts[models.TierProMonthly],
			"proAnnual":    tierCounts[models.TierProAnnual],
			"lifetime":     tierCounts[models.TierLifetime],
			"withAppleId":  withAppleID,
			"todaySignups": todaySignups,
		},
		"foodLogs": gin.H{
			"total": totalFoodLogs,
			"today": todayFoodLogs,
			"bySource": gin.H{
				"AI":      sourceCounts[models.SourceAI],
				"MANUAL":  sourceCounts[models.SourceManual],
				"BARCODE": sourceCounts[models.SourceBarcode],
				"VOICE":   sourceCounts[models.SourceVoice],
			},
		},
		"usageRecords": gin.H{
			"total":      totalUsageRecords,
			"totalScans": totalScans,
		},
		"refreshTokens": gin.H{
			"total":  totalTokens,
			"active": activeTokens,
		},
	})
}
