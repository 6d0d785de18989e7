// Package app wires configuration, storage, and HTTP routing into a
// runnable admin server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/deficit-app/deficit-admin/internal/backend"
	"github.com/deficit-app/deficit-admin/internal/config"
	"github.com/deficit-app/deficit-admin/internal/db"
	adminapi "github.com/deficit-app/deficit-admin/internal/http/api/admin"
	publicapi "github.com/deficit-app/deficit-admin/internal/http/api/public"
	"github.com/deficit-app/deficit-admin/internal/ratelimit"
	"github.com/deficit-app/deficit-admin/internal/waitlist"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the admin API server.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	sessionCfg, errSession := config.LoadSessionConfig(configPath)
	if errSession != nil {
		return errSession
	}
	if strings.TrimSpace(sessionCfg.Secret) == "" {
		return errors.New("missing session secret (set SESSION_SECRET)")
	}

	backendCfg := config.LoadBackendConfig(configPath)
	backendClient := backend.NewClient(backendCfg.BaseURL, backendCfg.AdminSecret, nil)
	if !backendClient.Configured() {
		log.Warn("push backend not configured, campaign send and cancel are disabled")
	}

	redisCfg := config.LoadRedisConfig(configPath)
	limiter := ratelimit.NewLoginLimiter(ratelimit.RedisSettings{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
		Prefix:   redisCfg.Prefix,
	}, nil, nil)

	var waitlistStore waitlist.Store
	waitlistCfg := config.LoadWaitlistConfig(configPath)
	if strings.TrimSpace(waitlistCfg.ProjectID) != "" {
		firestoreClient, errFirestore := waitlist.NewFirestoreClient(ctx, waitlistCfg.ProjectID, waitlistCfg.CredentialsFile)
		if errFirestore != nil {
			return fmt.Errorf("connect firestore: %w", errFirestore)
		}
		defer func() {
			if errClose := firestoreClient.Close(); errClose != nil {
				log.WithError(errClose).Warn("close firestore client failed")
			}
		}()
		waitlistStore = waitlist.NewFirestoreStore(firestoreClient, waitlistCfg.Collection)
	} else {
		log.Warn("firestore not configured, waitlist endpoints are disabled")
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	publicapi.RegisterPublicRoutes(engine, waitlistStore)
	adminapi.RegisterAdminRoutes(engine, adminapi.Deps{
		DB:            conn,
		Session:       sessionCfg,
		SetupKey:      config.LoadAdminSetupKey(),
		LoginLimiter:  limiter,
		Backend:       backendClient,
		WaitlistStore: waitlistStore,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("admin server listening on %s", server.Addr)
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return <-errCh
	case errServe := <-errCh:
		return errServe
	}
}

// corsMiddleware allows the landing page and dashboard origins. With no
// CLIENT_URL set the policy is open but credential-less.
func corsMiddleware() gin.HandlerFunc {
	clientURL := strings.TrimSpace(os.Getenv(config.EnvClientURL))
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Setup-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: true,
	}
	if clientURL != "" {
		cfg.AllowOrigins = strings.Split(clientURL, ",")
	} else {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}
	return cors.New(cfg)
}
