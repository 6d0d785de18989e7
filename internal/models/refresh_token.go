package models

import "time"

// RefreshToken stores an opaque refresh token issued to a user device.
// A token is live while ExpiresAt is in the future; there is no revocation
// list beyond row deletion.
type RefreshToken struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	UserID uint64 `gorm:"not null;index" json:"userId"`            // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"` // Owning user record.

	Token     string    `gorm:"type:text;not null;uniqueIndex" json:"token"` // Opaque token value.
	ExpiresAt time.Time `gorm:"not null;index" json:"expiresAt"`             // Expiry time.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last update timestamp.
}
