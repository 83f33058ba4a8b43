// Package validation holds field-level checks for incoming submissions.
package validation

import (
	"regexp"
	"strings"
)

// Violations maps field name to a violation code.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

var (
	clockRe  = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	weekIDRe = regexp.MustCompile(`^\d{4}-\d{1,2}$`)
)

// Required flags empty string fields.
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// ClockTime flags values that are not "HH:MM". Empty values pass; combine
// with Required when the field is mandatory.
func ClockTime(field, value string, v Violations) {
	if value != "" && !clockRe.MatchString(value) {
		v[field] = "invalid_time"
	}
}

// WeekID flags values not shaped like "YYYY-WW".
func WeekID(field, value string, v Violations) {
	if !weekIDRe.MatchString(value) {
		v[field] = "invalid_week_id"
	}
}

// NonNegativeInt flags negative counters such as odometer readings.
func NonNegativeInt(field string, value int, v Violations) {
	if value < 0 {
		v[field] = "must_be_non_negative"
	}
}

// MinuteRange flags break minutes outside 0-59.
func MinuteRange(field string, value int, v Violations) {
	if value < 0 || value > 59 {
		v[field] = "out_of_range"
	}
}

// PositiveFloat flags rates that must be strictly positive.
func PositiveFloat(field string, value float64, v Violations) {
	if value <= 0 {
		v[field] = "must_be_positive"
	}
}
