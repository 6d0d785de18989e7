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
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FoodLogHandler manages food log endpoints.
type FoodLogHandler struct {
	db *gorm.DB
}

// NewFoodLogHandler constructs a FoodLogHandler.
func NewFoodLogHandler(db *gorm.DB) *FoodLogHandler {
	return &FoodLogHandler{db: db}
}

// foodLogRow is a food log with the owner projected down to summary fields.
type foodLogRow struct {
	models.FoodLog
	User gin.H `json:"user"`
}

// List returns food logs with user, source, date, and description filters.
func (h *FoodLogHandler) List(c *gin.Context) {
	page, limit := parsePagination(c, defaultPageLimit)
	var (
		userIDQ = strings.TrimSpace(c.Query("userId"))
		sourceQ = strings.TrimSpace(c.Query("source"))
		dateQ   = strings.TrimSpace(c.Query("date"))
		searchQ = strings.TrimSpace(c.Query("search"))
	)

	q := h.db.WithContext(c.Request.Context()).Model(&models.FoodLog{})
	if userIDQ != "" {
		if userID, errParse := strconv.ParseUint(userIDQ, 10, 64); errParse == nil {
			q = q.Where("user_id = ?", userID)
		}
	}
	if sourceQ != "" {
		q = q.Where("source = ?", sourceQ)
	}
	if dateQ != "" {
		q = q.Where("date = ?", dateQ)
	}
	if searchQ != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+searchQ+"%")
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "description"), pattern)
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list food logs failed"})
		return
	}

	var rows []models.FoodLog
	if errFind := q.Preload("User").Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list food logs failed"})
		return
	}

	out := make([]foodLogRow, 0, len(rows))
	for _, row := range rows {
		summary := userSummary(row.User)
		row.User = nil
		out = append(out, foodLogRow{FoodLog: row, User: summary})
	}
	c.JSON(http.StatusOK, gin.H{
		"foodLogs":   out,
		"pagination": paginationBlock(page, limit, total),
	})
}

// Get returns a single food log with its owner.
func (h *FoodLogHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var row models.FoodLog
	errFind := h.db.WithContext(c.Request.Context()).Preload("User").First(&row, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "food log not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	summary := userSummary(row.User)
	row.User = nil
	c.JSON(http.StatusOK, foodLogRow{FoodLog: row, User: summary})
}

// updateFoodLogRequest defines the PATCH body for food logs.
type updateFoodLogRequest struct {
	Calories     *int            `json:"calories"`
	BaseCalories *int            `json:"baseCalories"`
	Description  *string         `json:"description"`
	ImageURL     *string         `json:"imageUrl"`
	IsGreasy     *bool           `json:"isGreasy"`
	Source       *string         `json:"source"`
	Confidence   *string         `json:"confidence"`
	Protein      *float64        `json:"protein"`
	Carbs        *float64        `json:"carbs"`
	Fat          *float64        `json:"fat"`
	Items        *datatypes.JSON `json:"items"`
	Notes        *string         `json:"notes"`
	Date         *string         `json:"date"`
}

// Update modifies a food log entry.
func (h *FoodLogHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateFoodLogRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if body.Calories != nil {
		updates["calories"] = *body.Calories
	}
	if body.BaseCalories != nil {
		updates["base_calories"] = *body.BaseCalories
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if body.ImageURL != nil {
		updates["image_url"] = *body.ImageURL
	}
	if body.IsGreasy != nil {
		updates["is_greasy"] = *body.IsGreasy
	}
	if body.Source != nil {
		updates["source"] = *body.Source
	}
	if body.Confidence != nil {
		updates["confidence"] = *body.Confidence
	}
	if body.Protein != nil {
		updates["protein"] = *body.Protein
	}
	if body.Carbs != nil {
		updates["carbs"] = *body.Carbs
	}
	if body.Fat != nil {
		updates["fat"] = *body.Fat
	}
	if body.Items != nil {
		updates["items"] = *body.Items
	}
	if body.Notes != nil {
		updates["notes"] = *body.Notes
	}
	if body.Date != nil {
		updates["date"] = *body.Date
	}

	ctx := c.Request.Context()
	res := h.db.WithContext(ctx).Model(&models.FoodLog{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update food log failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "food log not found"})
		return
	}

	var row models.FoodLog
	if errFind := h.db.WithContext(ctx).First(&row, id).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, row)
}

// Delete removes a food log entry.
func (h *FoodLogHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.FoodLog{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete food log failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "food log not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
