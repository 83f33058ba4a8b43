package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// BillingType determines which kinds of invoice lines a customer is billed with.
type BillingType string

const (
	BillingTypeHourly   BillingType = "hourly"
	BillingTypeMileage  BillingType = "mileage"
	BillingTypeCombined BillingType = "combined"
)

// IncludesHourly reports whether worked hours are billed.
func (b BillingType) IncludesHourly() bool {
	return b == BillingTypeHourly || b == BillingTypeCombined
}

// IncludesMileage reports whether driven kilometers are billed.
func (b BillingType) IncludesMileage() bool {
	return b == BillingTypeMileage || b == BillingTypeCombined
}

// MileageRateType selects how the effective €/km price is derived.
type MileageRateType string

const (
	// MileageRateFixed bills the customer's own mileage rate as-is.
	MileageRateFixed MileageRateType = "fixed"
	// MileageRateDOT applies a weekly diesel-surcharge percentage on top of the base rate.
	MileageRateDOT MileageRateType = "dot"
	// MileageRateVariable takes the weekly rate as the absolute €/km price.
	MileageRateVariable MileageRateType = "variable"
)

// Customer represents a billing relation with its invoicing configuration.
type Customer struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name  string `gorm:"size:255;not null" json:"name"`
	Email string `gorm:"size:255" json:"email,omitempty"`

	// Billing configuration
	BillingType       BillingType `gorm:"size:20;not null;default:'hourly'" json:"billing_type"`
	HourlyRate        float64     `gorm:"type:decimal(10,2)" json:"hourly_rate"`
	SaturdaySurcharge float64     `gorm:"type:decimal(6,2)" json:"saturday_surcharge"`
	SundaySurcharge   float64     `gorm:"type:decimal(6,2)" json:"sunday_surcharge"`

	MileageRateType MileageRateType `gorm:"size:20;not null;default:'fixed'" json:"mileage_rate_type"`
	MileageRate     float64         `gorm:"type:decimal(10,4)" json:"mileage_rate"`

	OvernightRate float64 `gorm:"type:decimal(10,2)" json:"overnight_rate"`
	ShowWorkTimes bool    `json:"show_work_times"`

	// DailyExpenseAllowance is paid out through payroll; it must never end up
	// on a customer invoice.
	DailyExpenseAllowance float64 `gorm:"type:decimal(10,2)" json:"daily_expense_allowance"`

	FooterText string `gorm:"type:text" json:"footer_text,omitempty"`

	// Plates assigned to this customer, used to resolve a weekly log to its customer.
	LicensePlates []LicensePlate `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"license_plates,omitempty"`
}

// LicensePlate couples a truck's plate to the customer it drives for.
type LicensePlate struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	CustomerID uint      `gorm:"index;not null" json:"customer_id"`
	Plate      string    `gorm:"size:20;uniqueIndex;not null" json:"plate"`
}

// NormalizePlate strips separators and uppercases so "12-abc-3" and "12 ABC 3"
// compare equal.
func NormalizePlate(plate string) string {
	s := strings.ToUpper(strings.TrimSpace(plate))
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}
