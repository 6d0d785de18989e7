package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/deficit-app/deficit-admin/internal/backend"
	"github.com/deficit-app/deficit-admin/internal/campaign"
	"github.com/deficit-app/deficit-admin/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationHandler manages broadcast campaign endpoints. Lifecycle rules
// are enforced through the campaign transition table; delivery itself is
// proxied to the push backend.
type NotificationHandler struct {
	db      *gorm.DB
	backend *backend.Client
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(db *gorm.DB, backendClient *backend.Client) *NotificationHandler {
	return &NotificationHandler{db: db, backend: backendClient}
}

// ListCampaigns returns campaigns with an optional status filter.
func (h *NotificationHandler) ListCampaigns(c *gin.Context) {
	page, limit := parsePagination(c, defaultPageLimit)
	statusQ := strings.TrimSpace(c.Query("status"))

	q := h.db.WithContext(c.Request.Context()).Model(&models.BroadcastCampaign{})
	if statusQ != "" {
		q = q.Where("status = ?", statusQ)
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list campaigns failed"})
		return
	}

	var rows []models.BroadcastCampaign
	if errFind := q.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list campaigns failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"campaigns":  rows,
		"pagination": paginationBlock(page, limit, total),
	})
}

// createCampaignRequest defines the request body for campaign creation.
type createCampaignRequest struct {
	Title             string         `json:"title"`
	NotificationTitle string         `json:"notificationTitle"`
	NotificationBody  string         `json:"notificationBody"`
	Data              datatypes.JSON `json:"data"`
	TargetTiers       datatypes.JSON `json:"targetTiers"`
	TargetPlatforms   datatypes.JSON `json:"targetPlatforms"`
	ScheduledFor      *time.Time     `json:"scheduledFor"`
	CreatedBy         *string        `json:"createdBy"`
}

// CreateCampaign creates a campaign. Scheduling it at creation time queues
// it immediately, otherwise it starts as a draft.
func (h *NotificationHandler) CreateCampaign(c *gin.Context) {
	var body createCampaignRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing title"})
		return
	}
	notifTitle := strings.TrimSpace(body.NotificationTitle)
	notifBody := strings.TrimSpace(body.NotificationBody)
	if notifTitle == "" || notifBody == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing notification title or body"})
		return
	}
	if len(notifTitle) > models.MaxNotificationTitleLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "notification title too long"})
		return
	}
	if len(notifBody) > models.MaxNotificationBodyLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "notification body too long"})
		return
	}

	targetTiers := body.TargetTiers
	if len(targetTiers) == 0 {
		targetTiers = datatypes.JSON("[]")
	}
	targetPlatforms := body.TargetPlatforms
	if len(targetPlatforms) == 0 {
		targetPlatforms = datatypes.JSON("[]")
	}

	row := models.BroadcastCampaign{
		Title:             title,
		NotificationTitle: notifTitle,
		NotificationBody:  notifBody,
		Data:              body.Data,
		TargetTiers:       targetTiers,
		TargetPlatforms:   targetPlatforms,
		ScheduledFor:      body.ScheduledFor,
		CreatedBy:         body.CreatedBy,
		Status:            campaign.InitialStatus(body.ScheduledFor != nil),
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&row).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create campaign failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"campaign": row})
}

// GetCampaign returns a campaign with delivery counts derived from its
// notification logs.
func (h *NotificationHandler) GetCampaign(c *gin.Context) {
	row, ok := h.loadCampaign(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var sent, failed int64
	if errCount := h.db.WithContext(ctx).Model(&models.NotificationLog{}).
		Where("broadcast_id = ? AND sent_at IS NOT NULL", row.ID).
		Count(&sent).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if errCount := h.db.WithContext(ctx).Model(&models.NotificationLog{}).
		Where("broadcast_id = ? AND failed_at IS NOT NULL", row.ID).
		Count(&failed).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"campaign": row,
		"stats":    gin.H{"sent": sent, "failed": failed},
	})
}

// updateCampaignRequest defines the PATCH body for campaigns.
type updateCampaignRequest struct {
	Title             *string         `json:"title"`
	NotificationTitle *string         `json:"notificationTitle"`
	NotificationBody  *string         `json:"notificationBody"`
	Data              *datatypes.JSON `json:"data"`
	TargetTiers       *datatypes.JSON `json:"targetTiers"`
	TargetPlatforms   *datatypes.JSON `json:"targetPlatforms"`
	ScheduledFor      *time.Time      `json:"scheduledFor"`
}

// UpdateCampaign edits a campaign that has not started delivery yet.
func (h *NotificationHandler) UpdateCampaign(c *gin.Context) {
	row, ok := h.loadCampaign(c)
	if !ok {
		return
	}
	if !campaign.Allowed(row.Status, campaign.ActionUpdate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "can only update draft or queued campaigns"})
		return
	}

	var body updateCampaignRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if body.Title != nil {
		title := strings.TrimSpace(*body.Title)
		if title != "" {
			updates["title"] = title
		}
	}
	if body.NotificationTitle != nil {
		notifTitle := strings.TrimSpace(*body.NotificationTitle)
		if notifTitle == "" || len(notifTitle) > models.MaxNotificationTitleLen {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification title"})
			return
		}
		updates["notification_title"] = notifTitle
	}
	if body.NotificationBody != nil {
		notifBody := strings.TrimSpace(*body.NotificationBody)
		if notifBody == "" || len(notifBody) > models.MaxNotificationBodyLen {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification body"})
			return
		}
		updates["notification_body"] = notifBody
	}
	if body.Data != nil {
		updates["data"] = *body.Data
	}
	if body.TargetTiers != nil {
		updates["target_tiers"] = *body.TargetTiers
	}
	if body.TargetPlatforms != nil {
		updates["target_platforms"] = *body.TargetPlatforms
	}
	if body.ScheduledFor != nil {
		updates["scheduled_for"] = *body.ScheduledFor
	}

	ctx := c.Request.Context()
	if errUpdate := h.db.WithContext(ctx).Model(&models.BroadcastCampaign{}).
		Where("id = ?", row.ID).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update campaign failed"})
		return
	}
	var updated models.BroadcastCampaign
	if errFind := h.db.WithContext(ctx).First(&updated, row.ID).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaign": updated})
}

// DeleteCampaign removes a campaign that never left the draft state.
func (h *NotificationHandler) DeleteCampaign(c *gin.Context) {
	row, ok := h.loadCampaign(c)
	if !ok {
		return
	}
	if !campaign.Allowed(row.Status, campaign.ActionDelete) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "can only delete draft campaigns"})
		return
	}
	if errDelete := h.db.WithContext(c.Request.Context()).
		Delete(&models.BroadcastCampaign{}, row.ID).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete campaign failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "campaign deleted"})
}

// SendCampaign hands a campaign to the push backend. The backend owns the
// PROCESSING and terminal states; locally the campaign is queued.
func (h *NotificationHandler) SendCampaign(c *gin.Context) {
	row, ok := h.loadCampaign(c)
	if !ok {
		return
	}
	next, errTransition := campaign.Transition(row.Status, campaign.ActionSend)
	if errTransition != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "can only send draft or queued campaigns"})
		return
	}
	if !h.backend.Configured() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "push backend not configured"})
		return
	}

	ctx := c.Request.Context()
	if errSend := h.backend.SendBroadcast(ctx, row.ID); errSend != nil {
		h.backendError(c, errSend)
		return
	}
	if errUpdate := h.db.WithContext(ctx).Model(&models.BroadcastCampaign{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{"status": next, "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update campaign failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": next})
}

// CancelCampaign stops a queued or in-flight campaign via the push backend.
func (h *NotificationHandler) CancelCampaign(c *gin.Context) {
	row, ok := h.loadCampaign(c)
	if !ok {
		return
	}
	next, errTransition := campaign.Transition(row.Status, campaign.ActionCancel)
	if errTransition != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "can only cancel queued or processing campaigns"})
		return
	}
	if !h.backend.Configured() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "push backend not configured"})
		return
	}

	ctx := c.Request.Context()
	if errCancel := h.backend.CancelBroadcast(ctx, row.ID); errCancel != nil {
		h.backendError(c, errCancel)
		return
	}
	if errUpdate := h.db.WithContext(ctx).Model(&models.BroadcastCampaign{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{"status": next, "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update campaign failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": next})
}

// CampaignLogs returns the delivery log for one campaign.
func (h *NotificationHandler) CampaignLogs(c *gin.Context) {
	row, ok := h.loadCampaign(c)
	if !ok {
		return
	}
	page, limit := parsePagination(c, 50)
	statusQ := strings.TrimSpace(c.Query("status"))

	q := h.db.WithContext(c.Request.Context()).Model(&models.NotificationLog{}).
		Where("broadcast_id = ?", row.ID)
	switch statusQ {
	case "sent":
		q = q.Where("sent_at IS NOT NULL")
	case "failed":
		q = q.Where("failed_at IS NOT NULL")
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list logs failed"})
		return
	}

	var rows []models.NotificationLog
	if errFind := q.Preload("User").Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list logs failed"})
		return
	}

	out := make([]notificationLogRow, 0, len(rows))
	for _, logRow := range rows {
		summary := userSummary(logRow.User)
		logRow.User = nil
		out = append(out, notificationLogRow{NotificationLog: logRow, User: summary})
	}
	c.JSON(http.StatusOK, gin.H{
		"logs":       out,
		"pagination": paginationBlock(page, limit, total),
	})
}

// Stats summarizes notification activity for the dashboard.
func (h *NotificationHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	thisWeek := today.AddDate(0, 0, -7)

	type countQuery struct {
		dest  *int64
		model any
		conds []any
	}
	var totalCampaigns, activeCampaigns, totalSent, sentToday, sentThisWeek, totalPushTokens, activePushTokens int64
	queries := []countQuery{
		{&totalCampaigns, &models.BroadcastCampaign{}, nil},
		{&activeCampaigns, &models.BroadcastCampaign{}, []any{"status = ?", models.CampaignProcessing}},
		{&totalSent, &models.NotificationLog{}, []any{"sent_at IS NOT NULL"}},
		{&sentToday, &models.NotificationLog{}, []any{"sent_at >= ?", today}},
		{&sentThisWeek, &models.NotificationLog{}, []any{"sent_at >= ?", thisWeek}},
		{&totalPushTokens, &models.PushToken{}, nil},
		{&activePushTokens, &models.PushToken{}, []any{"is_active = ?", true}},
	}
	for _, query := range queries {
		q := h.db.WithContext(ctx).Model(query.model)
		if len(query.conds) > 0 {
			q = q.Where(query.conds[0], query.conds[1:]...)
		}
		if errCount := q.Count(query.dest).Error; errCount != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"totalCampaigns":            totalCampaigns,
		"activeCampaigns":           activeCampaigns,
		"totalNotificationsSent":    totalSent,
		"notificationsSentToday":    sentToday,
		"notificationsSentThisWeek": sentThisWeek,
		"totalPushTokens":           totalPushTokens,
		"activePushTokens":          activePushTokens,
	})
}

// loadCampaign fetches the campaign addressed by the path, answering the
// request itself when the ID is bad or the row is missing.
func (h *NotificationHandler) loadCampaign(c *gin.Context) (*models.BroadcastCampaign, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	var row models.BroadcastCampaign
	if errFind := h.db.WithContext(c.Request.Context()).First(&row, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return &row, true
}

// backendError relays a push backend failure, passing its status and
// message through unchanged when available.
func (h *NotificationHandler) backendError(c *gin.Context, err error) {
	var backendErr *backend.Error
	if errors.As(err, &backendErr) {
		c.JSON(backendErr.StatusCode, gin.H{"error": backendErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "push backend unavailable"})
}
