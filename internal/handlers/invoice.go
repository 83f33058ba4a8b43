package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/jdvries/transportdesk/internal/httpx"
	"github.com/jdvries/transportdesk/internal/models"
	"github.com/jdvries/transportdesk/internal/services"
)

// InvoiceHandler exposes the invoice generation engine over HTTP: preview
// computes in memory, create persists the concept invoice.
type InvoiceHandler struct {
	db  *gorm.DB
	svc *services.InvoiceService
}

func NewInvoiceHandler(db *gorm.DB, svc *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{db: db, svc: svc}
}

type generateRequest struct {
	DriverID uint   `json:"driver_id"`
	WeekID   string `json:"week_id"`
	// CustomerID skips plate-based resolution when set.
	CustomerID uint `json:"customer_id,omitempty"`
	// WeeklyRate overrides the stored weekly rate when set.
	WeeklyRate *float64 `json:"weekly_rate,omitempty"`
}

// Preview handles POST /invoices/preview: full computation, nothing stored.
func (h *InvoiceHandler) Preview(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, false)
}

// Create handles POST /invoices: computation plus transactional persistence
// of the concept invoice.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, true)
}

func (h *InvoiceHandler) generate(w http.ResponseWriter, r *http.Request, persist bool) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	weeklyLog, err := h.svc.LoadWeeklyLog(r.Context(), req.DriverID, req.WeekID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(w, r, http.StatusNotFound, "week_log_not_found", nil)
			return
		}
		httpx.Error(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	opts := services.CreateOptions{WeeklyRate: req.WeeklyRate, Persist: persist}
	if req.CustomerID != 0 {
		var customer models.Customer
		err := h.db.Preload("LicensePlates").First(&customer, req.CustomerID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(w, r, http.StatusNotFound, "customer_not_found", nil)
			return
		}
		if err != nil {
			httpx.Error(w, r, http.StatusInternalServerError, "internal_error", nil)
			return
		}
		opts.Customer = &customer
	}

	result, err := h.svc.CreateInvoice(r.Context(), weeklyLog, opts)
	switch {
	case errors.Is(err, services.ErrNoCustomerFound):
		httpx.Error(w, r, http.StatusUnprocessableEntity, "no_customer_found", nil)
		return
	case err != nil:
		httpx.Error(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	status := http.StatusOK
	if persist {
		status = http.StatusCreated
	}
	httpx.JSON(w, status, result)
}

// Get handles GET /invoices/{id}.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUint(r, "id")
	if !ok {
		httpx.Error(w, r, http.StatusNotFound, "not_found", nil)
		return
	}
	var invoice models.Invoice
	err := h.db.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Customer").
		First(&invoice, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.Error(w, r, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		httpx.Error(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}
