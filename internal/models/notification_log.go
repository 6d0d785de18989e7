package models

import "time"

// NotificationLog records one push delivery attempt to a user. Exactly one
// of SentAt and FailedAt is set once the attempt resolves.
type NotificationLog struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	UserID uint64 `gorm:"not null;index" json:"userId"`            // Recipient user ID.
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"` // Recipient user record.

	BroadcastID *uint64            `gorm:"index" json:"broadcastId"`                          // Originating campaign ID, if any.
	Broadcast   *BroadcastCampaign `gorm:"foreignKey:BroadcastID" json:"broadcast,omitempty"` // Originating campaign record.

	Type  string `gorm:"type:varchar(32);not null;index" json:"type"` // Notification type label.
	Title string `gorm:"type:text;not null" json:"title"`             // Delivered title.
	Body  string `gorm:"type:text;not null" json:"body"`              // Delivered body.

	SentAt        *time.Time `gorm:"index" json:"sentAt"`               // Successful delivery time.
	FailedAt      *time.Time `gorm:"index" json:"failedAt"`             // Failure time.
	FailureReason *string    `gorm:"type:text" json:"failureReason"`    // Failure detail from the push gateway.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Creation timestamp.
}
