package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/deficit-app/deficit-admin/internal/waitlist"
)

// WaitlistHandler manages the admin view of landing page signups.
type WaitlistHandler struct {
	store waitlist.Store
}

// NewWaitlistHandler constructs a WaitlistHandler.
func NewWaitlistHandler(store waitlist.Store) *WaitlistHandler {
	return &WaitlistHandler{store: store}
}

// List returns a page of signups with search and sorting.
func (h *WaitlistHandler) List(c *gin.Context) {
	page, limit := parsePagination(c, 50)
	params := waitlist.ListParams{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(c.Query("search")),
		Sort:   strings.TrimSpace(c.Query("sort")),
		Order:  strings.TrimSpace(c.Query("order")),
	}
	result, errList := h.store.List(c.Request.Context(), params)
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list waitlist failed"})
		return
	}
	pages := result.Total / limit
	if result.Total%limit != 0 {
		pages++
	}
	c.JSON(http.StatusOK, gin.H{
		"data":       result.Entries,
		"total":      result.Total,
		"page":       page,
		"limit":      limit,
		"totalPages": pages,
	})
}

// deleteWaitlistRequest defines the bulk delete body.
type deleteWaitlistRequest struct {
	IDs []string `json:"ids"`
}

// Delete removes the listed signups.
func (h *WaitlistHandler) Delete(c *gin.Context) {
	var body deleteWaitlistRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(body.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids required"})
		return
	}
	deleted, errDelete := h.store.Delete(c.Request.Context(), body.IDs)
	if errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete entries failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": deleted})
}

// Stats returns signup totals and the 30-day chart.
func (h *WaitlistHandler) Stats(c *gin.Context) {
	stats, errStats := h.store.Stats(c.Request.Context(), time.Now().UTC())
	if errStats != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
