// Package public serves the unauthenticated landing page endpoints.
package public

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/deficit-app/deficit-admin/internal/pricing"
	"github.com/deficit-app/deficit-admin/internal/waitlist"
)

// RegisterPublicRoutes registers the waitlist and pricing endpoints.
func RegisterPublicRoutes(r *gin.Engine, store waitlist.Store) {
	if r == nil {
		return
	}
	if store != nil {
		waitlistHandler := NewWaitlistHandler(store)
		r.POST("/api/waitlist", waitlistHandler.Join)
	}
	pricingHandler := NewPricingHandler()
	r.GET("/api/pricing", pricingHandler.Get)
}

// WaitlistHandler accepts landing page signups.
type WaitlistHandler struct {
	store waitlist.Store
}

// NewWaitlistHandler constructs a WaitlistHandler.
func NewWaitlistHandler(store waitlist.Store) *WaitlistHandler {
	return &WaitlistHandler{store: store}
}

// joinRequest defines the signup body.
type joinRequest struct {
	Email string `json:"email"`
}

// Join records a signup, capturing the referring page and user agent.
func (h *WaitlistHandler) Join(c *gin.Context) {
	var body joinRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid email required"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" || !strings.Contains(email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid email required"})
		return
	}

	entry := waitlist.Entry{
		Email:          email,
		ReferralSource: c.GetHeader("Referer"),
		UserAgent:      c.GetHeader("User-Agent"),
	}
	if errJoin := h.store.Join(c.Request.Context(), &entry); errJoin != nil {
		if errors.Is(errJoin, waitlist.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "already on the waitlist"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join waitlist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PricingHandler resolves regional pricing for the landing page.
type PricingHandler struct{}

// NewPricingHandler constructs a PricingHandler.
func NewPricingHandler() *PricingHandler {
	return &PricingHandler{}
}

// Get resolves pricing from the edge country header and mirrors it into a
// cookie the landing page reads client side.
func (h *PricingHandler) Get(c *gin.Context) {
	resolved := pricing.Resolve(c.GetHeader(pricing.CountryHeader))

	payload, errMarshal := json.Marshal(resolved)
	if errMarshal == nil {
		c.SetSameSite(http.SameSiteLaxMode)
		// Not httpOnly: the page reads the cookie in the browser.
		c.SetCookie(pricing.CookieName, url.QueryEscape(string(payload)),
			pricing.CookieMaxAge, "/", "", c.Request.TLS != nil, false)
	}
	c.JSON(http.StatusOK, resolved)
}
