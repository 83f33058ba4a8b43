package models

import "time"

// WeeklyRateSource records where a weekly rate value came from.
type WeeklyRateSource string

const (
	// WeeklyRateManual was entered by a back-office user.
	WeeklyRateManual WeeklyRateSource = "manual"
	// WeeklyRateSuggested was extracted from a rate document by the
	// suggestion service and still needs human confirmation.
	WeeklyRateSuggested WeeklyRateSource = "suggested"
)

// WeeklyRate is an externally supplied rate for one customer and week.
// For MileageRateDOT customers Value is a surcharge percentage; for
// MileageRateVariable customers it is the absolute €/km price.
type WeeklyRate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CustomerID uint     `gorm:"not null;uniqueIndex:idx_customer_week" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID" json:"-"`
	WeekID     string   `gorm:"size:8;not null;uniqueIndex:idx_customer_week" json:"week_id"`

	Value  float64          `gorm:"type:decimal(10,4);not null" json:"value"`
	Source WeeklyRateSource `gorm:"size:20;not null;default:'manual'" json:"source"`
}
