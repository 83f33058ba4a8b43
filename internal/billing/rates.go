// Package billing implements the deterministic invoice computation engine:
// rate resolution, line generation from a weekly log, and VAT-aware total
// aggregation. Everything in this package is a pure function of its inputs;
// persistence and lookups live in internal/services.
package billing

import (
	"time"

	"github.com/jdvries/transportdesk/internal/models"
)

// Defaults applied when a customer's billing configuration leaves a rate
// unset. Applying one of these is a loggable condition, never an error.
const (
	DefaultHourlyRate    = 46.43
	DefaultMileageRate   = 0.56
	DefaultOvernightRate = 50.0

	// StandardVATRate applies to every line this engine emits.
	StandardVATRate = 21.0
)

// ResolveHourlyRate returns the effective hourly price for a given weekday.
// Saturday and Sunday surcharges are percentages of the base rate (120 means
// 120% of base); Monday through Friday always bill the base rate, whatever
// the configuration says.
func ResolveHourlyRate(c *models.Customer, weekday time.Weekday) float64 {
	base := c.HourlyRate
	if base <= 0 {
		base = DefaultHourlyRate
	}
	switch weekday {
	case time.Saturday:
		if c.SaturdaySurcharge > 0 {
			return base * c.SaturdaySurcharge / 100
		}
	case time.Sunday:
		if c.SundaySurcharge > 0 {
			return base * c.SundaySurcharge / 100
		}
	}
	return base
}

// ResolveMileageRate returns the effective €/km price. weeklyRate is the
// externally supplied rate for the week, nil when none is known; for DOT
// customers it is a surcharge percentage, for variable customers the absolute
// price. A missing weekly rate never fails generation: the base (or default)
// rate applies instead.
func ResolveMileageRate(c *models.Customer, weeklyRate *float64) float64 {
	base := c.MileageRate
	if base <= 0 {
		base = DefaultMileageRate
	}
	switch c.MileageRateType {
	case models.MileageRateDOT:
		if weeklyRate != nil {
			return base * (1 + *weeklyRate/100)
		}
	case models.MileageRateVariable:
		if weeklyRate != nil {
			return *weeklyRate
		}
	}
	return base
}

// ResolveOvernightRate returns the per-night allowance price.
func ResolveOvernightRate(c *models.Customer) float64 {
	if c.OvernightRate > 0 {
		return c.OvernightRate
	}
	return DefaultOvernightRate
}
