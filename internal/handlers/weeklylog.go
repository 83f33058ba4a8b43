package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/jdvries/transportdesk/internal/calendar"
	"github.com/jdvries/transportdesk/internal/httpx"
	"github.com/jdvries/transportdesk/internal/models"
	"github.com/jdvries/transportdesk/internal/validation"
)

// WeeklyLogHandler accepts daily submissions and serves weekly logs.
type WeeklyLogHandler struct {
	db       *gorm.DB
	holidays *calendar.Provider
}

func NewWeeklyLogHandler(db *gorm.DB, holidays *calendar.Provider) *WeeklyLogHandler {
	return &WeeklyLogHandler{db: db, holidays: holidays}
}

type submitDayRequest struct {
	Date          string           `json:"date"` // "2006-01-02"
	Status        models.DayStatus `json:"status,omitempty"`
	StartTime     string           `json:"start_time,omitempty"`
	EndTime       string           `json:"end_time,omitempty"`
	BreakHours    int              `json:"break_hours"`
	BreakMinutes  int              `json:"break_minutes"`
	StartMileage  int              `json:"start_mileage"`
	EndMileage    int              `json:"end_mileage"`
	Toll          models.TollZone  `json:"toll,omitempty"`
	LicensePlate  string           `json:"license_plate,omitempty"`
	OvernightStay bool             `json:"overnight_stay"`
}

// SubmitDay handles POST /weeklylogs/{driverID}/days. The weekly log for the
// day's ISO week is created on first submission; a resubmitted date
// overwrites that day in place. Logs are never deleted.
func (h *WeeklyLogHandler) SubmitDay(w http.ResponseWriter, r *http.Request) {
	driverID, ok := pathUint(r, "driverID")
	if !ok {
		httpx.Error(w, r, http.StatusNotFound, "not_found", nil)
		return
	}

	var req submitDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "validation_failed", validation.Violations{"date": "invalid_date"})
		return
	}

	// Public holidays default to the holiday status when the driver submits
	// nothing else; an explicit status (e.g. worked on Koningsdag) wins.
	if req.Status == "" {
		if h.holidays.IsHoliday(date) {
			req.Status = models.DayStatusHoliday
		} else {
			req.Status = models.DayStatusWorked
		}
	}

	v := make(validation.Violations)
	if !models.ValidDayStatus(req.Status) {
		v["status"] = "invalid_status"
	}
	if req.Status == models.DayStatusWorked {
		validation.Required("start_time", req.StartTime, v)
		validation.Required("end_time", req.EndTime, v)
	}
	validation.ClockTime("start_time", req.StartTime, v)
	validation.ClockTime("end_time", req.EndTime, v)
	validation.NonNegativeInt("break_hours", req.BreakHours, v)
	validation.MinuteRange("break_minutes", req.BreakMinutes, v)
	validation.NonNegativeInt("start_mileage", req.StartMileage, v)
	validation.NonNegativeInt("end_mileage", req.EndMileage, v)
	if !v.Empty() {
		httpx.Error(w, r, http.StatusBadRequest, "validation_failed", v)
		return
	}

	weekID := models.WeekIDForDate(date)

	var weeklyLog models.WeeklyLog
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(models.WeeklyLog{DriverID: driverID, WeekID: weekID}).
			FirstOrCreate(&weeklyLog).Error; err != nil {
			return err
		}

		day := models.Day{
			WeeklyLogID:   weeklyLog.ID,
			Date:          date,
			Status:        req.Status,
			StartTime:     req.StartTime,
			EndTime:       req.EndTime,
			BreakHours:    req.BreakHours,
			BreakMinutes:  req.BreakMinutes,
			StartMileage:  req.StartMileage,
			EndMileage:    req.EndMileage,
			Toll:          req.Toll,
			LicensePlate:  req.LicensePlate,
			OvernightStay: req.OvernightStay,
		}

		var existing models.Day
		err := tx.Where("weekly_log_id = ? AND date = ?", weeklyLog.ID, date).First(&existing).Error
		switch {
		case err == nil:
			day.ID = existing.ID
			day.CreatedAt = existing.CreatedAt
			return tx.Save(&day).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&day).Error
		default:
			return err
		}
	})
	if err != nil {
		httpx.Error(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	h.loadLog(&weeklyLog)
	httpx.JSON(w, http.StatusOK, weeklyLog)
}

// Get handles GET /weeklylogs/{driverID}/{weekID}.
func (h *WeeklyLogHandler) Get(w http.ResponseWriter, r *http.Request) {
	driverID, ok := pathUint(r, "driverID")
	if !ok {
		httpx.Error(w, r, http.StatusNotFound, "not_found", nil)
		return
	}
	weekID := models.NormalizeWeekID(r.PathValue("weekID"))

	var weeklyLog models.WeeklyLog
	err := h.db.
		Preload("Days", func(db *gorm.DB) *gorm.DB { return db.Order("date") }).
		Where("driver_id = ? AND week_id = ?", driverID, weekID).
		First(&weeklyLog).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.Error(w, r, http.StatusNotFound, "week_log_not_found", nil)
		return
	}
	if err != nil {
		httpx.Error(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, weeklyLog)
}

func (h *WeeklyLogHandler) loadLog(weeklyLog *models.WeeklyLog) {
	h.db.Preload("Days", func(db *gorm.DB) *gorm.DB { return db.Order("date") }).
		First(weeklyLog, weeklyLog.ID)
}

// pathUint reads a positive integer path segment.
func pathUint(r *http.Request, name string) (uint, bool) {
	n, err := strconv.ParseUint(r.PathValue(name), 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
