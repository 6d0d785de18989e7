package models

import "time"

// Admin represents a dashboard administrator account.
type Admin struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	Email        string `gorm:"type:text;not null;uniqueIndex" json:"email"` // Login email, stored lowercase.
	PasswordHash string `gorm:"type:text;not null" json:"-"`                 // Bcrypt password hash.

	LastLoginAt *time.Time `json:"lastLoginAt"` // Last successful login time.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last update timestamp.
}
