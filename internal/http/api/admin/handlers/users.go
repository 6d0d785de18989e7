package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	dbutil "github.com/deficit-app/deficit-admin/internal/db"
	"github.com/deficit-app/deficit-admin/internal/models"
	"gorm.io/gorm"
)

// UserHandler manages app user endpoints.
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// List returns users with search and tier filters.
func (h *UserHandler) List(c *gin.Context) {
	page, limit := parsePagination(c, defaultPageLimit)
	searchQ := strings.TrimSpace(c.Query("search"))
	tierQ := strings.TrimSpace(c.Query("tier"))

	ctx := c.Request.Context()
	q := h.db.WithContext(ctx).Model(&models.User{})
	if searchQ != "" {
		searchPattern := "%" + searchQ + "%"
		ciPattern := dbutil.NormalizeLikePattern(h.db, searchPattern)
		q = q.Where(
			dbutil.CaseInsensitiveLikeExpr(h.db, "email")+" OR "+
				dbutil.CaseInsensitiveLikeExpr(h.db, "display_name")+" OR CAST(id AS TEXT) LIKE ?",
			ciPattern,
			ciPattern,
			searchPattern,
		)
	}
	if tierQ != "" {
		q = q.Where("subscription_tier = ?", tierQ)
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list users failed"})
		return
	}

	var rows []models.User
	if errFind := q.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list users failed"})
		return
	}

	foodLogCounts, errLogs := h.countByUser(c, &models.FoodLog{}, rows)
	if errLogs != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list users failed"})
		return
	}
	usageCounts, errUsage := h.countByUser(c, &models.UsageRecord{}, rows)
	if errUsage != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list users failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":                  row.ID,
			"email":               row.Email,
			"displayName":         row.DisplayName,
			"subscriptionTier":    row.SubscriptionTier,
			"subscriptionStatus":  row.SubscriptionStatus,
			"subscriptionExpiry":  row.SubscriptionExpiry,
			"appleUserId":         row.AppleUserID,
			"revenueCatAppUserId": row.RevenueCatAppUserID,
			"createdAt":           row.CreatedAt,
			"lastLoginAt":         row.LastLoginAt,
			"currentStreak":       row.CurrentStreak,
			"longestStreak":       row.LongestStreak,
			"_count": gin.H{
				"foodLogs":     foodLogCounts[row.ID],
				"usageRecords": usageCounts[row.ID],
			},
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"users":      out,
		"pagination": paginationBlock(page, limit, total),
	})
}

// countByUser counts rows of the model grouped by user for the listed users.
func (h *UserHandler) countByUser(c *gin.Context, model any, users []models.User) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(users))
	if len(users) == 0 {
		return counts, nil
	}
	ids := make([]uint64, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}
	type countRow struct {
		UserID uint64
		N      int64
	}
	var rows []countRow
	errFind := h.db.WithContext(c.Request.Context()).Model(model).
		Select("user_id, COUNT(*) AS n").
		Where("user_id IN ?", ids).
		Group("user_id").
		Find(&rows).Error
	if errFind != nil {
		return nil, errFind
	}
	for _, row := range rows {
		counts[row.UserID] = row.N
	}
	return counts, nil
}

// userDetail is the single-user response shape with recent related rows.
type userDetail struct {
	models.User
	FoodLogs      []models.FoodLog      `json:"foodLogs"`
	UsageRecords  []models.UsageRecord  `json:"usageRecords"`
	RefreshTokens []models.RefreshToken `json:"refreshTokens"`
	Count         gin.H                 `json:"_count"`
}

// Get returns a user with recent activity and related record counts.
func (h *UserHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	ctx := c.Request.Context()

	var user models.User
	if errFind := h.db.WithContext(ctx).First(&user, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	detail := userDetail{User: user}
	if errLogs := h.db.WithContext(ctx).Where("user_id = ?", id).
		Order("created_at DESC").Limit(10).Find(&detail.FoodLogs).Error; errLogs != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if errUsage := h.db.WithContext(ctx).Where("user_id = ?", id).
		Order("date DESC").Limit(10).Find(&detail.UsageRecords).Error; errUsage != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if errTokens := h.db.WithContext(ctx).Where("user_id = ?", id).
		Order("created_at DESC").Limit(5).Find(&detail.RefreshTokens).Error; errTokens != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	var foodLogCount, usageCount, tokenCount int64
	if errCount := h.db.WithContext(ctx).Model(&models.FoodLog{}).Where("user_id = ?", id).Count(&foodLogCount).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if errCount := h.db.WithContext(ctx).Model(&models.UsageRecord{}).Where("user_id = ?", id).Count(&usageCount).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if errCount := h.db.WithContext(ctx).Model(&models.RefreshToken{}).Where("user_id = ?", id).Count(&tokenCount).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	detail.Count = gin.H{
		"foodLogs":      foodLogCount,
		"usageRecords":  usageCount,
		"refreshTokens": tokenCount,
	}
	c.JSON(http.StatusOK, detail)
}

// updateUserRequest defines the PATCH body. Pointer fields distinguish
// absent keys from explicit zero values.
type updateUserRequest struct {
	Email                 *string    `json:"email"`
	DisplayName           *string    `json:"displayName"`
	SubscriptionTier      *string    `json:"subscriptionTier"`
	SubscriptionStatus    *string    `json:"subscriptionStatus"`
	SubscriptionExpiry    *time.Time `json:"subscriptionExpiry"`
	SubscriptionStartDate *time.Time `json:"subscriptionStartDate"`
	HeightCm              *float64   `json:"heightCm"`
	WeightKg              *float64   `json:"weightKg"`
	Age                   *int       `json:"age"`
	Sex                   *string    `json:"sex"`
	ActivityLevel         *string    `json:"activityLevel"`
	TDEE                  *float64   `json:"tdee"`
	BudgetCap             *int       `json:"budgetCap"`
	DeficitPercent        *float64   `json:"deficitPercent"`
	WeeklyGoal            *float64   `json:"weeklyGoal"`
	BMRValue              *float64   `json:"bmrValue"`
	CurrentStreak         *int       `json:"currentStreak"`
	LongestStreak         *int       `json:"longestStreak"`
	LastLogDate           *string    `json:"lastLogDate"`
}

// Update modifies a user profile.
func (h *UserHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateUserRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if body.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*body.Email))
		if email != "" {
			updates["email"] = email
		}
	}
	if body.DisplayName != nil {
		updates["display_name"] = strings.TrimSpace(*body.DisplayName)
	}
	if body.SubscriptionTier != nil {
		updates["subscription_tier"] = *body.SubscriptionTier
	}
	if body.SubscriptionStatus != nil {
		updates["subscription_status"] = *body.SubscriptionStatus
	}
	if body.SubscriptionExpiry != nil {
		updates["subscription_expiry"] = *body.SubscriptionExpiry
	}
	if body.SubscriptionStartDate != nil {
		updates["subscription_start_date"] = *body.SubscriptionStartDate
	}
	if body.HeightCm != nil {
		updates["height_cm"] = *body.HeightCm
	}
	if body.WeightKg != nil {
		updates["weight_kg"] = *body.WeightKg
	}
	if body.Age != nil {
		updates["age"] = *body.Age
	}
	if body.Sex != nil {
		updates["sex"] = *body.Sex
	}
	if body.ActivityLevel != nil {
		updates["activity_level"] = *body.ActivityLevel
	}
	if body.TDEE != nil {
		updates["tdee"] = *body.TDEE
	}
	if body.BudgetCap != nil {
		updates["budget_cap"] = *body.BudgetCap
	}
	if body.DeficitPercent != nil {
		updates["deficit_percent"] = *body.DeficitPercent
	}
	if body.WeeklyGoal != nil {
		updates["weekly_goal"] = *body.WeeklyGoal
	}
	if body.BMRValue != nil {
		updates["bmr_value"] = *body.BMRValue
	}
	if body.CurrentStreak != nil {
		updates["current_streak"] = *body.CurrentStreak
	}
	if body.LongestStreak != nil {
		updates["longest_streak"] = *body.LongestStreak
	}
	if body.LastLogDate != nil {
		updates["last_log_date"] = *body.LastLogDate
	}

	ctx := c.Request.Context()
	res := h.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update user failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	var user models.User
	if errFind := h.db.WithContext(ctx).First(&user, id).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// Delete removes a user and all dependent records.
func (h *UserHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	ctx := c.Request.Context()

	var user models.User
	if errFind := h.db.WithContext(ctx).First(&user, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	errTx := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []any{
			&models.FoodLog{},
			&models.UsageRecord{},
			&models.RefreshToken{},
			&models.PushToken{},
			&models.NotificationLog{},
		} {
			if errDel := tx.Where("user_id = ?", id).Delete(dependent).Error; errDel != nil {
				return errDel
			}
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete user failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
