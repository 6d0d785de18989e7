package models

import (
	"time"

	"gorm.io/datatypes"
)

// CampaignStatus represents the lifecycle state of a broadcast campaign.
type CampaignStatus string

// CampaignStatus constants define the campaign lifecycle states.
const (
	// CampaignDraft marks a campaign still being edited.
	CampaignDraft CampaignStatus = "DRAFT"
	// CampaignQueued marks a campaign handed to the delivery backend.
	CampaignQueued CampaignStatus = "QUEUED"
	// CampaignProcessing marks a campaign the backend is actively sending.
	CampaignProcessing CampaignStatus = "PROCESSING"
	// CampaignCompleted marks a fully delivered campaign.
	CampaignCompleted CampaignStatus = "COMPLETED"
	// CampaignCancelled marks a campaign cancelled before completion.
	CampaignCancelled CampaignStatus = "CANCELLED"
	// CampaignFailed marks a campaign the backend could not deliver.
	CampaignFailed CampaignStatus = "FAILED"
)

// Limits on notification copy enforced at create/update time.
const (
	// MaxNotificationTitleLen bounds the push notification title.
	MaxNotificationTitleLen = 50
	// MaxNotificationBodyLen bounds the push notification body.
	MaxNotificationBodyLen = 200
)

// BroadcastCampaign represents a push notification campaign targeting a
// filtered user segment. Delivery is performed by the external backend;
// this service owns the lifecycle bookkeeping.
type BroadcastCampaign struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	Title             string `gorm:"type:text;not null" json:"title"`                  // Internal campaign name.
	NotificationTitle string `gorm:"type:varchar(50);not null" json:"notificationTitle"` // Push title shown to users.
	NotificationBody  string `gorm:"type:varchar(200);not null" json:"notificationBody"` // Push body shown to users.

	Data datatypes.JSON `gorm:"type:jsonb" json:"data"` // Arbitrary payload delivered with the push.

	Status CampaignStatus `gorm:"type:varchar(16);not null;default:'DRAFT';index" json:"status"` // Lifecycle state.

	TargetTiers     datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'" json:"targetTiers"`     // Targeted tiers; empty = all.
	TargetPlatforms datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'" json:"targetPlatforms"` // Targeted platforms; empty = all.

	TotalRecipients int `gorm:"not null;default:0" json:"totalRecipients"` // Recipients resolved at send time.
	SentCount       int `gorm:"not null;default:0" json:"sentCount"`       // Successful deliveries (backend-maintained).
	FailedCount     int `gorm:"not null;default:0" json:"failedCount"`     // Failed deliveries (backend-maintained).

	ScheduledFor *time.Time `json:"scheduledFor"` // Optional scheduled send time.
	StartedAt    *time.Time `json:"startedAt"`    // Time the backend began sending.
	CompletedAt  *time.Time `json:"completedAt"`  // Time the send finished.

	CreatedBy *string `gorm:"type:text" json:"createdBy"` // Admin who created the campaign.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last update timestamp.
}
