package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/deficit-app/deficit-admin/internal/backend"
	"github.com/deficit-app/deficit-admin/internal/config"
	handlers "github.com/deficit-app/deficit-admin/internal/http/api/admin/handlers"
	"github.com/deficit-app/deficit-admin/internal/ratelimit"
	"github.com/deficit-app/deficit-admin/internal/security"
	"github.com/deficit-app/deficit-admin/internal/waitlist"
	"gorm.io/gorm"
)

// Deps carries the shared dependencies the admin routes need.
type Deps struct {
	DB            *gorm.DB
	Session       config.SessionConfig
	SetupKey      string
	LoginLimiter  *ratelimit.LoginLimiter
	Backend       *backend.Client
	WaitlistStore waitlist.Store
}

// RegisterAdminRoutes registers admin routes, middleware, and handlers.
func RegisterAdminRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.DB == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(deps.DB)
	r.GET("/healthz", healthHandler.Healthz)

	adminGroup := r.Group("/api/admin")

	authHandler := handlers.NewAuthHandler(deps.DB, deps.LoginLimiter, deps.Session, deps.SetupKey)
	adminGroup.POST("/auth/login", authHandler.Login)
	adminGroup.POST("/auth/logout", authHandler.Logout)
	adminGroup.GET("/auth/check", authHandler.Check)
	adminGroup.POST("/auth/setup", authHandler.Setup)

	authed := adminGroup.Group("")
	authed.Use(SessionMiddleware(deps.Session))

	userHandler := handlers.NewUserHandler(deps.DB)
	authed.GET("/users", userHandler.List)
	authed.GET("/users/:id", userHandler.Get)
	authed.PATCH("/users/:id", userHandler.Update)
	authed.DELETE("/users/:id", userHandler.Delete)

	foodLogHandler := handlers.NewFoodLogHandler(deps.DB)
	authed.GET("/food-logs", foodLogHandler.List)
	authed.GET("/food-logs/:id", foodLogHandler.Get)
	authed.PATCH("/food-logs/:id", foodLogHandler.Update)
	authed.DELETE("/food-logs/:id", foodLogHandler.Delete)

	usageRecordHandler := handlers.NewUsageRecordHandler(deps.DB)
	authed.GET("/usage-records", usageRecordHandler.List)
	authed.PATCH("/usage-records/:id", usageRecordHandler.Update)
	authed.DELETE("/usage-records/:id", usageRecordHandler.Delete)

	refreshTokenHandler := handlers.NewRefreshTokenHandler(deps.DB)
	authed.GET("/refresh-tokens", refreshTokenHandler.List)
	authed.DELETE("/refresh-tokens", refreshTokenHandler.Cleanup)
	authed.DELETE("/refresh-tokens/:id", refreshTokenHandler.Delete)

	notificationHandler := handlers.NewNotificationHandler(deps.DB, deps.Backend)
	authed.GET("/notifications", notificationHandler.ListCampaigns)
	authed.POST("/notifications", notificationHandler.CreateCampaign)
	authed.GET("/notifications/stats", notificationHandler.Stats)
	authed.GET("/notifications/:id", notificationHandler.GetCampaign)
	authed.PATCH("/notifications/:id", notificationHandler.UpdateCampaign)
	authed.DELETE("/notifications/:id", notificationHandler.DeleteCampaign)
	authed.POST("/notifications/:id/send", notificationHandler.SendCampaign)
	authed.POST("/notifications/:id/cancel", notificationHandler.CancelCampaign)
	authed.GET("/notifications/:id/logs", notificationHandler.CampaignLogs)

	notificationLogHandler := handlers.NewNotificationLogHandler(deps.DB)
	authed.GET("/notification-logs", notificationLogHandler.List)

	dbStatsHandler := handlers.NewDBStatsHandler(deps.DB)
	authed.GET("/db-stats", dbStatsHandler.Get)

	if deps.WaitlistStore != nil {
		waitlistHandler := handlers.NewWaitlistHandler(deps.WaitlistStore)
		authed.GET("/waitlist", waitlistHandler.List)
		authed.DELETE("/waitlist", waitlistHandler.Delete)
		authed.GET("/waitlist/stats", waitlistHandler.Stats)
	}
}

// SessionMiddleware validates the admin session token from the cookie or a
// Bearer header. Validation is purely cryptographic; no database access.
func SessionMiddleware(session config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, errCookie := c.Cookie(handlers.SessionCookieName)
		if errCookie != nil || raw == "" {
			authHeader := c.GetHeader("Authorization")
			if after, ok := cutBearer(authHeader); ok {
				raw = after
			}
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		claims, errParse := security.ParseSessionToken(session.Secret, raw)
		if errParse != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("adminID", claims.AdminID)
		c.Set("adminEmail", claims.Email)
		c.Next()
	}
}

func cutBearer(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):], true
	}
	return "", false
}
