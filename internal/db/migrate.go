package db

import (
	"fmt"

	"github.com/deficit-app/deficit-admin/internal/models"
	"gorm.io/gorm"
)

// Migrate runs database migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.Admin{},
		&models.User{},
		&models.FoodLog{},
		&models.UsageRecord{},
		&models.RefreshToken{},
		&models.PushToken{},
		&models.BroadcastCampaign{},
		&models.NotificationLog{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	// ddl defines an index or DDL statement to apply.
	type ddl struct {
		name string // Human-readable name for error reporting.
		sql  string // SQL to execute.
	}
	ddls := []ddl{
		{
			name: "idx_users_created_at_id",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_users_created_at_id
				ON users (created_at DESC, id DESC)
			`,
		},
		{
			name: "idx_food_logs_user_id_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_food_logs_user_id_created_at
				ON food_logs (user_id, created_at DESC)
			`,
		},
		{
			name: "idx_food_logs_source_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_food_logs_source_created_at
				ON food_logs (source, created_at DESC)
			`,
		},
		{
			name: "idx_usage_records_user_id_date",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_usage_records_user_id_date
				ON usage_records (user_id, date DESC)
			`,
		},
		{
			name: "idx_refresh_tokens_user_id_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id_created_at
				ON refresh_tokens (user_id, created_at DESC)
			`,
		},
		{
			name: "idx_broadcast_campaigns_status_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_broadcast_campaigns_status_created_at
				ON broadcast_campaigns (status, created_at DESC)
			`,
		},
		{
			name: "idx_notification_logs_broadcast_id_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_notification_logs_broadcast_id_created_at
				ON notification_logs (broadcast_id, created_at DESC)
			`,
		},
		{
			name: "idx_notification_logs_user_id_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_notification_logs_user_id_created_at
				ON notification_logs (user_id, created_at DESC)
			`,
		},
	}
	for _, item := range ddls {
		if errDDL := conn.Exec(item.sql).Error; errDDL != nil {
			return fmt.Errorf("db: create index %s: %w", item.name, errDDL)
		}
	}

	return nil
}
