package models

import "time"

// SubscriptionTier represents a user's subscription level.
type SubscriptionTier string

// SubscriptionTier constants define the available subscription levels.
const (
	// TierFree is the default free tier.
	TierFree SubscriptionTier = "FREE"
	// TierProMonthly is the monthly paid tier.
	TierProMonthly SubscriptionTier = "PRO_MONTHLY"
	// TierProAnnual is the annual paid tier.
	TierProAnnual SubscriptionTier = "PRO_ANNUAL"
	// TierLifetime is the one-time lifetime purchase tier.
	TierLifetime SubscriptionTier = "LIFETIME"
)

// SubscriptionStatus represents the state of a user's subscription.
type SubscriptionStatus string

// SubscriptionStatus constants define subscription states.
const (
	// SubscriptionActive marks a subscription in good standing.
	SubscriptionActive SubscriptionStatus = "ACTIVE"
	// SubscriptionCancelled marks a cancelled subscription.
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
	// SubscriptionExpired marks a lapsed subscription.
	SubscriptionExpired SubscriptionStatus = "EXPIRED"
)

// User represents an app user account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	Email       string `gorm:"type:text;not null;uniqueIndex" json:"email"` // Email address.
	DisplayName string `gorm:"type:text" json:"displayName"`                // Display name.

	SubscriptionTier      SubscriptionTier   `gorm:"type:varchar(32);not null;default:'FREE'" json:"subscriptionTier"`     // Subscription level.
	SubscriptionStatus    SubscriptionStatus `gorm:"type:varchar(32);not null;default:'ACTIVE'" json:"subscriptionStatus"` // Subscription state.
	SubscriptionExpiry    *time.Time         `json:"subscriptionExpiry"`                                                   // Subscription expiry time.
	SubscriptionStartDate *time.Time         `json:"subscriptionStartDate"`                                                // Subscription start time.

	AppleUserID         *string `gorm:"type:text;index" json:"appleUserId"`  // Linked Apple identity.
	RevenueCatAppUserID *string `gorm:"type:text" json:"revenueCatAppUserId"` // RevenueCat app user id.

	HeightCm       *float64 `json:"heightCm"`                      // Height in centimeters.
	WeightKg       *float64 `json:"weightKg"`                      // Weight in kilograms.
	Age            *int     `json:"age"`                           // Age in years.
	Sex            *string  `gorm:"type:varchar(16)" json:"sex"`   // Biological sex.
	ActivityLevel  *string  `gorm:"type:varchar(32)" json:"activityLevel"` // Activity level label.
	TDEE           *float64 `json:"tdee"`                          // Total daily energy expenditure.
	BudgetCap      *int     `json:"budgetCap"`                     // Daily calorie budget cap.
	DeficitPercent *float64 `json:"deficitPercent"`                // Target deficit percentage.
	WeeklyGoal     *float64 `json:"weeklyGoal"`                    // Weekly weight goal.
	BMRValue       *float64 `gorm:"column:bmr_value" json:"bmrValue"` // Basal metabolic rate.

	CurrentStreak int     `gorm:"not null;default:0" json:"currentStreak"` // Consecutive logging days.
	LongestStreak int     `gorm:"not null;default:0" json:"longestStreak"` // Best logging streak.
	LastLogDate   *string `gorm:"type:varchar(10)" json:"lastLogDate"`     // Last logged day (YYYY-MM-DD).

	LastLoginAt *time.Time `json:"lastLoginAt"` // Last sign-in time.

	FoodLogs      []FoodLog      `gorm:"foreignKey:UserID" json:"-"` // Related food logs.
	UsageRecords  []UsageRecord  `gorm:"foreignKey:UserID" json:"-"` // Related usage records.
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID" json:"-"` // Related refresh tokens.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last update timestamp.
}
