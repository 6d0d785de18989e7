package models

import "time"

// UsageRecord tracks per-user per-day scan usage.
type UsageRecord struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	UserID uint64 `gorm:"not null;uniqueIndex:idx_usage_records_user_date" json:"userId"` // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`                        // Owning user record.

	Date       string     `gorm:"type:varchar(10);not null;uniqueIndex:idx_usage_records_user_date" json:"date"` // Usage day (YYYY-MM-DD).
	ScanCount  int        `gorm:"not null;default:0" json:"scanCount"` // Scans performed that day.
	LastScanAt *time.Time `json:"lastScanAt"`                          // Most recent scan time.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last update timestamp.
}
