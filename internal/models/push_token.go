package models

import "time"

// PushToken stores a device push token registered by the mobile app.
type PushToken struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	UserID uint64 `gorm:"not null;index" json:"userId"`            // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"` // Owning user record.

	Token    string `gorm:"type:text;not null;uniqueIndex" json:"token"` // Device push token.
	Platform string `gorm:"type:varchar(16);not null" json:"platform"`   // Device platform (ios/android).
	IsActive bool   `gorm:"not null;default:true" json:"isActive"`       // Whether the token still receives pushes.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last update timestamp.
}
