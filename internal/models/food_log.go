package models

import (
	"time"

	"gorm.io/datatypes"
)

// FoodSource represents how a food log entry was captured.
type FoodSource string

// FoodSource constants define capture methods.
const (
	// SourceAI marks an entry estimated from a photo by the AI pipeline.
	SourceAI FoodSource = "AI"
	// SourceManual marks a manually entered log.
	SourceManual FoodSource = "MANUAL"
	// SourceBarcode marks a barcode scan.
	SourceBarcode FoodSource = "BARCODE"
	// SourceVoice marks a voice-dictated log.
	SourceVoice FoodSource = "VOICE"
)

// Confidence represents the AI estimate confidence for a food log.
type Confidence string

// Confidence constants define estimate confidence levels.
const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// FoodLog records one logged meal for a user.
type FoodLog struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	UserID uint64 `gorm:"not null;index" json:"userId"` // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"` // Owning user record.

	Calories     int  `gorm:"not null" json:"calories"` // Estimated calories.
	BaseCalories *int `json:"baseCalories"`             // Calories before adjustments.

	Protein *float64 `json:"protein"` // Protein grams.
	Carbs   *float64 `json:"carbs"`   // Carbohydrate grams.
	Fat     *float64 `json:"fat"`     // Fat grams.

	Description string  `gorm:"type:text" json:"description"` // Meal description.
	ImageURL    *string `gorm:"type:text" json:"imageUrl"`    // Source photo URL.
	IsGreasy    bool    `gorm:"not null;default:false" json:"isGreasy"` // Greasy-meal flag.

	Source     FoodSource  `gorm:"type:varchar(16);not null;index" json:"source"` // Capture method.
	Confidence *Confidence `gorm:"type:varchar(16)" json:"confidence"`            // AI estimate confidence.

	Items datatypes.JSON `gorm:"type:jsonb" json:"items"`    // Itemized breakdown payload.
	Notes *string        `gorm:"type:text" json:"notes"`     // Free-form notes.
	Date  string         `gorm:"type:varchar(10);not null;index" json:"date"` // Log day (YYYY-MM-DD).

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last update timestamp.
}
