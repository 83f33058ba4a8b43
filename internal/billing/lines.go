package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jdvries/transportdesk/internal/models"
)

// Warning flags a condition the engine absorbed with a documented fallback.
// Warnings are surfaced to the caller and logged for audit; they never block
// invoice generation.
type Warning struct {
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

// Warning codes emitted by the engine.
const (
	WarnDefaultHourlyRate    = "default_hourly_rate"
	WarnDefaultMileageRate   = "default_mileage_rate"
	WarnDefaultOvernightRate = "default_overnight_rate"
	WarnMissingWeeklyRate    = "missing_weekly_rate"
	WarnNegativeWorkDuration = "negative_work_duration"
	WarnInvalidWorkTimes     = "invalid_work_times"
)

// Invoice line type labels, matched verbatim by downstream consumers: the PDF
// layout groups on them, and toll reconciliation finds its placeholders by
// the "Tol" prefix.
const (
	labelHours     = "Uren"
	labelKilometer = "Kilometers"
	labelOvernight = "Overnachting"
	labelTollBE    = "Tol België"
	labelTollDE    = "Tol Duitsland"
)

var dutchDayNames = map[time.Weekday]string{
	time.Monday:    "Maandag",
	time.Tuesday:   "Dinsdag",
	time.Wednesday: "Woensdag",
	time.Thursday:  "Donderdag",
	time.Friday:    "Vrijdag",
	time.Saturday:  "Zaterdag",
	time.Sunday:    "Zondag",
}

// dayHeading renders the first description line, e.g. "Maandag 02-03-2026".
func dayHeading(date time.Time) string {
	return dutchDayNames[date.Weekday()] + " " + date.Format("02-01-2006")
}

// GenerateLines walks the weekly log day by day and emits the invoice lines
// the customer's billing configuration asks for. The returned slice is in
// stable day order (kilometers, hours, overnight stay, toll placeholders per
// day), each line carries the standard VAT rate, and the function is pure:
// identical inputs yield identical output.
//
// The customer's daily expense allowance is a payroll value and is never
// turned into a line, under any configuration.
func GenerateLines(log *models.WeeklyLog, c *models.Customer, weeklyRate *float64) ([]models.InvoiceLine, []Warning) {
	var lines []models.InvoiceLine
	var warnings []Warning

	if c.BillingType.IncludesHourly() && c.HourlyRate <= 0 {
		warnings = append(warnings, Warning{Code: WarnDefaultHourlyRate,
			Detail: fmt.Sprintf("%.2f", DefaultHourlyRate)})
	}
	if c.BillingType.IncludesMileage() && c.MileageRate <= 0 {
		warnings = append(warnings, Warning{Code: WarnDefaultMileageRate,
			Detail: fmt.Sprintf("%.2f", DefaultMileageRate)})
	}
	if c.BillingType.IncludesMileage() && c.MileageRateType != models.MileageRateFixed && weeklyRate == nil {
		warnings = append(warnings, Warning{Code: WarnMissingWeeklyRate,
			Detail: log.WeekID})
	}

	for i := range log.Days {
		day := &log.Days[i]
		if day.Status != models.DayStatusWorked {
			continue
		}
		heading := dayHeading(day.Date)

		if c.BillingType.IncludesMileage() {
			if km := day.Kilometers(); km > 0 {
				lines = append(lines, newLine(float64(km), heading+"\n"+labelKilometer,
					ResolveMileageRate(c, weeklyRate)))
			}
		}

		if c.BillingType.IncludesHourly() {
			hours, warn, ok := workedHours(day)
			if warn != nil {
				warnings = append(warnings, *warn)
			}
			if ok {
				desc := heading + "\n" + labelHours
				if c.ShowWorkTimes {
					desc += fmt.Sprintf(" (%s - %s, %d min pauze)",
						day.StartTime, day.EndTime, day.BreakTotalMinutes())
				}
				lines = append(lines, newLine(hours, desc,
					ResolveHourlyRate(c, day.Date.Weekday())))
			}
		}

		if day.OvernightStay {
			if c.OvernightRate <= 0 {
				warnings = append(warnings, Warning{Code: WarnDefaultOvernightRate,
					Detail: heading})
			}
			lines = append(lines, newLine(1, heading+"\n"+labelOvernight,
				ResolveOvernightRate(c)))
		}

		// Zero-valued placeholders; toll reconciliation fills in the real
		// amounts once the provider transactions are imported.
		if day.Toll.IncludesBE() {
			lines = append(lines, newLine(0, heading+"\n"+labelTollBE, 0))
		}
		if day.Toll.IncludesDE() {
			lines = append(lines, newLine(0, heading+"\n"+labelTollDE, 0))
		}
	}

	for i := range lines {
		lines[i].Position = i
	}
	return lines, warnings
}

func newLine(quantity float64, description string, unitPrice float64) models.InvoiceLine {
	return models.InvoiceLine{
		Quantity:    quantity,
		Description: description,
		UnitPrice:   unitPrice,
		VATRate:     StandardVATRate,
		Total:       quantity * unitPrice,
	}
}

// workedHours computes the billable hours for a worked day from its clock
// times and break. A shift whose net duration comes out negative (end before
// start, or a break longer than the shift) is clamped to zero hours and
// reported; the source data does not mark midnight-spanning shifts, so no
// rollover is guessed. Malformed clock times suppress the hours line
// entirely.
func workedHours(day *models.Day) (float64, *Warning, bool) {
	start, okStart := parseClock(day.StartTime)
	end, okEnd := parseClock(day.EndTime)
	if !okStart || !okEnd {
		return 0, &Warning{Code: WarnInvalidWorkTimes,
			Detail: fmt.Sprintf("%s: %q - %q", day.Date.Format("02-01-2006"), day.StartTime, day.EndTime)}, false
	}
	minutes := end - start - day.BreakTotalMinutes()
	if minutes < 0 {
		return 0, &Warning{Code: WarnNegativeWorkDuration,
			Detail: fmt.Sprintf("%s: %d min", day.Date.Format("02-01-2006"), minutes)}, true
	}
	return float64(minutes) / 60, nil, true
}

// parseClock parses "HH:MM" into minutes since midnight.
func parseClock(s string) (int, bool) {
	h, m, found := strings.Cut(s, ":")
	if !found {
		return 0, false
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	mins, err := strconv.Atoi(m)
	if err != nil || mins < 0 || mins > 59 {
		return 0, false
	}
	return hours*60 + mins, true
}
