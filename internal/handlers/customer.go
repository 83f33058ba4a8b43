package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/jdvries/transportdesk/internal/httpx"
	"github.com/jdvries/transportdesk/internal/models"
	"github.com/jdvries/transportdesk/internal/validation"
)

// CustomerHandler manages customers and their billing configuration.
type CustomerHandler struct {
	db *gorm.DB
}

func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	var customers []models.Customer
	if err := h.db.Preload("LicensePlates").Order("name").Find(&customers).Error; err != nil {
		httpx.Error(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": customers, "total": len(customers)})
}

type customerRequest struct {
	Name                  string                 `json:"name"`
	Email                 string                 `json:"email"`
	BillingType           models.BillingType     `json:"billing_type"`
	HourlyRate            float64                `json:"hourly_rate"`
	SaturdaySurcharge     float64                `json:"saturday_surcharge"`
	SundaySurcharge       float64                `json:"sunday_surcharge"`
	MileageRateType       models.MileageRateType `json:"mileage_rate_type"`
	MileageRate           float64                `json:"mileage_rate"`
	OvernightRate         float64                `json:"overnight_rate"`
	ShowWorkTimes         bool                   `json:"show_work_times"`
	DailyExpenseAllowance float64                `json:"daily_expense_allowance"`
	FooterText            string                 `json:"footer_text"`
	LicensePlates         []string               `json:"license_plates"`
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	v := make(validation.Violations)
	validation.Required("name", req.Name, v)
	switch req.BillingType {
	case models.BillingTypeHourly, models.BillingTypeMileage, models.BillingTypeCombined:
	default:
		v["billing_type"] = "invalid_billing_type"
	}
	switch req.MileageRateType {
	case "", models.MileageRateFixed, models.MileageRateDOT, models.MileageRateVariable:
	default:
		v["mileage_rate_type"] = "invalid_mileage_rate_type"
	}
	if !v.Empty() {
		httpx.Error(w, r, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if req.MileageRateType == "" {
		req.MileageRateType = models.MileageRateFixed
	}

	customer := models.Customer{
		Name:                  req.Name,
		Email:                 req.Email,
		BillingType:           req.BillingType,
		HourlyRate:            req.HourlyRate,
		SaturdaySurcharge:     req.SaturdaySurcharge,
		SundaySurcharge:       req.SundaySurcharge,
		MileageRateType:       req.MileageRateType,
		MileageRate:           req.MileageRate,
		OvernightRate:         req.OvernightRate,
		ShowWorkTimes:         req.ShowWorkTimes,
		DailyExpenseAllowance: req.DailyExpenseAllowance,
		FooterText:            req.FooterText,
	}
	for _, plate := range req.LicensePlates {
		if normalized := models.NormalizePlate(plate); normalized != "" {
			customer.LicensePlates = append(customer.LicensePlates, models.LicensePlate{Plate: normalized})
		}
	}

	if err := h.db.Create(&customer).Error; err != nil {
		httpx.Error(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, customer)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUint(r, "id")
	if !ok {
		httpx.Error(w, r, http.StatusNotFound, "customer_not_found", nil)
		return
	}
	var customer models.Customer
	err := h.db.Preload("LicensePlates").First(&customer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.Error(w, r, http.StatusNotFound, "customer_not_found", nil)
		return
	}
	if err != nil {
		httpx.Error(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}
