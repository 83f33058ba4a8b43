package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DayStatus classifies a submitted day. Only DayStatusWorked produces
// billable invoice lines.
type DayStatus string

const (
	DayStatusWorked      DayStatus = "worked"
	DayStatusSick        DayStatus = "sick"
	DayStatusLeave       DayStatus = "leave"
	DayStatusLeaveUnpaid DayStatus = "leave_unpaid"
	DayStatusHoliday     DayStatus = "holiday"
)

// ValidDayStatus reports whether s is one of the known day statuses.
func ValidDayStatus(s DayStatus) bool {
	switch s {
	case DayStatusWorked, DayStatusSick, DayStatusLeave, DayStatusLeaveUnpaid, DayStatusHoliday:
		return true
	}
	return false
}

// TollZone marks which countries' toll roads were used on a day.
type TollZone string

const (
	TollNone TollZone = ""
	TollBE   TollZone = "BE"
	TollDE   TollZone = "DE"
	TollBEDE TollZone = "BE+DE"
)

// IncludesBE reports whether Belgian toll applies.
func (t TollZone) IncludesBE() bool { return t == TollBE || t == TollBEDE }

// IncludesDE reports whether German toll applies.
func (t TollZone) IncludesDE() bool { return t == TollDE || t == TollBEDE }

// WeeklyLog is a driver's activity log for one calendar week. It is created on
// the first daily submission for that week and mutated by later submissions;
// logs are never deleted so the audit trail stays intact.
type WeeklyLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DriverID uint   `gorm:"not null;uniqueIndex:idx_driver_week" json:"driver_id"`
	WeekID   string `gorm:"size:8;not null;uniqueIndex:idx_driver_week" json:"week_id"`

	Days []Day `gorm:"foreignKey:WeeklyLogID;constraint:OnDelete:CASCADE" json:"days,omitempty"`
}

// Day is one submitted day within a weekly log.
type Day struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	WeeklyLogID uint           `gorm:"index;not null" json:"weekly_log_id"`

	Date   time.Time `gorm:"type:date;not null" json:"date"`
	Status DayStatus `gorm:"size:20;not null" json:"status"`

	// Local clock times as "HH:MM"; empty when not worked.
	StartTime    string `gorm:"size:5" json:"start_time,omitempty"`
	EndTime      string `gorm:"size:5" json:"end_time,omitempty"`
	BreakHours   int    `json:"break_hours"`
	BreakMinutes int    `json:"break_minutes"`

	// Odometer readings. Upstream does not guarantee end >= start; the billing
	// engine clamps the derived distance at zero.
	StartMileage int `json:"start_mileage"`
	EndMileage   int `json:"end_mileage"`

	Toll          TollZone `gorm:"size:5" json:"toll"`
	LicensePlate  string   `gorm:"size:20" json:"license_plate,omitempty"`
	OvernightStay bool     `json:"overnight_stay"`
}

// Kilometers returns the driven distance, clamped at zero for inverted
// odometer readings.
func (d *Day) Kilometers() int {
	km := d.EndMileage - d.StartMileage
	if km < 0 {
		return 0
	}
	return km
}

// BreakTotalMinutes returns the break duration in minutes.
func (d *Day) BreakTotalMinutes() int {
	return d.BreakHours*60 + d.BreakMinutes
}

// WeekIDForDate returns the "YYYY-WW" key of the ISO week containing t.
func WeekIDForDate(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-%02d", year, week)
}

// NormalizeWeekID zero-pads single-digit week numbers so "2026-7" and
// "2026-07" address the same log.
func NormalizeWeekID(weekID string) string {
	var year, week int
	if _, err := fmt.Sscanf(weekID, "%d-%d", &year, &week); err != nil {
		return weekID
	}
	return fmt.Sprintf("%d-%02d", year, week)
}
