package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jdvries/transportdesk/internal/httpx"
	"github.com/jdvries/transportdesk/internal/models"
	"github.com/jdvries/transportdesk/internal/services"
	"github.com/jdvries/transportdesk/internal/validation"
)

// WeeklyRateHandler manages externally supplied weekly rates and the
// best-effort suggestion path.
type WeeklyRateHandler struct {
	db      *gorm.DB
	suggest *services.RateSuggestionService // nil when no API key is configured
}

func NewWeeklyRateHandler(db *gorm.DB, suggest *services.RateSuggestionService) *WeeklyRateHandler {
	return &WeeklyRateHandler{db: db, suggest: suggest}
}

type upsertRateRequest struct {
	Value float64 `json:"value"`
}

// Upsert handles PUT /weeklyrates/{customerID}/{weekID}. A manual entry
// always wins over an earlier suggestion.
func (h *WeeklyRateHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	customer, weekID, ok := h.rateTarget(w, r)
	if !ok {
		return
	}

	var req upsertRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	validation.PositiveFloat("value", req.Value, v)
	if !v.Empty() {
		httpx.Error(w, r, http.StatusBadRequest, "validation_failed", v)
		return
	}

	rate := models.WeeklyRate{
		CustomerID: customer.ID,
		WeekID:     weekID,
		Value:      req.Value,
		Source:     models.WeeklyRateManual,
	}
	err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "customer_id"}, {Name: "week_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "source", "updated_at"}),
	}).Create(&rate).Error
	if err != nil {
		httpx.Error(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}

type suggestRateRequest struct {
	Document string `json:"document"`
}

// Suggest handles POST /weeklyrates/{customerID}/{weekID}/suggest: feed a
// pasted rate document through the LLM extraction and store the result as a
// suggestion awaiting confirmation.
func (h *WeeklyRateHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	if h.suggest == nil {
		httpx.Error(w, r, http.StatusNotImplemented, "suggestion_unavailable", nil)
		return
	}
	customer, weekID, ok := h.rateTarget(w, r)
	if !ok {
		return
	}

	var req suggestRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	validation.Required("document", req.Document, v)
	if !v.Empty() {
		httpx.Error(w, r, http.StatusBadRequest, "validation_failed", v)
		return
	}

	rate, err := h.suggest.SuggestWeeklyRate(r.Context(), customer, weekID, req.Document)
	switch {
	case errors.Is(err, services.ErrServiceOverloaded):
		httpx.Error(w, r, http.StatusServiceUnavailable, "service_overloaded", nil)
		return
	case errors.Is(err, services.ErrNoRateFound):
		httpx.Error(w, r, http.StatusUnprocessableEntity, "no_rate_found", nil)
		return
	case err != nil:
		httpx.Error(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}

func (h *WeeklyRateHandler) rateTarget(w http.ResponseWriter, r *http.Request) (*models.Customer, string, bool) {
	customerID, ok := pathUint(r, "customerID")
	if !ok {
		httpx.Error(w, r, http.StatusNotFound, "customer_not_found", nil)
		return nil, "", false
	}
	weekID := models.NormalizeWeekID(r.PathValue("weekID"))
	v := make(validation.Violations)
	validation.WeekID("week_id", weekID, v)
	if !v.Empty() {
		httpx.Error(w, r, http.StatusBadRequest, "validation_failed", v)
		return nil, "", false
	}

	var customer models.Customer
	err := h.db.First(&customer, customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.Error(w, r, http.StatusNotFound, "customer_not_found", nil)
		return nil, "", false
	}
	if err != nil {
		httpx.Error(w, r, http.StatusInternalServerError, "internal_error", nil)
		return nil, "", false
	}
	return &customer, weekID, true
}
