// Package services wires the pure billing engine to storage: customer
// resolution, weekly-rate lookup, and transactional invoice persistence.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/jdvries/transportdesk/internal/billing"
	"github.com/jdvries/transportdesk/internal/logger"
	"github.com/jdvries/transportdesk/internal/models"
)

// ErrNoCustomerFound means no customer could be resolved from the weekly
// log's license plates. It is the only fatal condition of invoice generation;
// the caller must supply a customer explicitly or reject the approval.
var ErrNoCustomerFound = errors.New("no customer found for weekly log")

// DefaultPaymentTermDays is used when the caller does not set a due date.
const DefaultPaymentTermDays = 30

// InvoiceService turns an approved weekly log into an invoice.
type InvoiceService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db, log: logger.WithComponent("invoice-service")}
}

// CreateOptions controls one generation call.
type CreateOptions struct {
	// Customer overrides plate-based resolution when set.
	Customer *models.Customer
	// WeeklyRate overrides the stored weekly rate when set.
	WeeklyRate *float64
	// Persist writes the invoice header and lines in one transaction.
	Persist bool

	InvoiceDate time.Time // zero value: today
	Reference   string    // empty: a generated UUID
}

// InvoiceResult is the outcome of a generation call. Invoice is only set when
// the call persisted.
type InvoiceResult struct {
	Customer   *models.Customer     `json:"-"`
	Lines      []models.InvoiceLine `json:"lines"`
	SubTotal   float64              `json:"sub_total"`
	Buckets    []billing.VATBucket  `json:"vat_breakdown"`
	VATTotal   float64              `json:"vat_total"`
	GrandTotal float64              `json:"grand_total"`
	Warnings   []billing.Warning    `json:"warnings,omitempty"`
	Invoice    *models.Invoice      `json:"invoice,omitempty"`
}

// CreateInvoice resolves the customer and weekly rate, runs line generation
// and total aggregation, and optionally persists the result. Lookups complete
// before generation starts; there is no internal concurrency. Callers are
// expected to invoke creation at most once per approval event — the service
// does not guard against a duplicate-invoice race.
func (s *InvoiceService) CreateInvoice(ctx context.Context, weeklyLog *models.WeeklyLog, opts CreateOptions) (*InvoiceResult, error) {
	customer := opts.Customer
	if customer == nil {
		resolved, err := s.resolveCustomer(ctx, weeklyLog)
		if err != nil {
			return nil, err
		}
		customer = resolved
	}

	weeklyRate := opts.WeeklyRate
	if weeklyRate == nil && customer.MileageRateType != models.MileageRateFixed {
		weeklyRate = s.lookupWeeklyRate(ctx, customer.ID, weeklyLog.WeekID)
	}

	lines, warnings := billing.GenerateLines(weeklyLog, customer, weeklyRate)
	totals := billing.AggregateTotals(lines)

	for _, w := range warnings {
		s.log.Warn().
			Str("week_id", weeklyLog.WeekID).
			Uint("customer_id", customer.ID).
			Str("code", w.Code).
			Str("detail", w.Detail).
			Msg("fallback applied during invoice generation")
	}

	result := &InvoiceResult{
		Customer:   customer,
		Lines:      lines,
		SubTotal:   totals.SubTotal,
		Buckets:    totals.Buckets,
		VATTotal:   totals.VATTotal,
		GrandTotal: totals.GrandTotal,
		Warnings:   warnings,
	}

	if opts.Persist {
		invoice, err := s.persist(ctx, weeklyLog, customer, result, opts)
		if err != nil {
			return nil, err
		}
		result.Invoice = invoice
	}
	return result, nil
}

// persist writes the header and its lines as one transaction, so a failing
// line insert can never leave an orphaned header behind.
func (s *InvoiceService) persist(ctx context.Context, weeklyLog *models.WeeklyLog, customer *models.Customer, result *InvoiceResult, opts CreateOptions) (*models.Invoice, error) {
	invoiceDate := opts.InvoiceDate
	if invoiceDate.IsZero() {
		invoiceDate = time.Now()
	}
	reference := opts.Reference
	if reference == "" {
		reference = uuid.NewString()
	}

	invoice := &models.Invoice{
		Reference:     reference,
		CustomerID:    customer.ID,
		WeekID:        weeklyLog.WeekID,
		InvoiceDate:   invoiceDate,
		DueDate:       invoiceDate.AddDate(0, 0, DefaultPaymentTermDays),
		Status:        models.InvoiceStatusConcept,
		SubTotal:      billing.RoundCents(result.SubTotal),
		VATTotal:      billing.RoundCents(result.VATTotal),
		GrandTotal:    billing.RoundCents(result.GrandTotal),
		FooterText:    customer.FooterText,
		ShowWorkTimes: customer.ShowWorkTimes,
		Lines:         result.Lines,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(invoice).Error
	})
	if err != nil {
		return nil, fmt.Errorf("persist invoice for week %s: %w", weeklyLog.WeekID, err)
	}

	s.log.Info().
		Uint("invoice_id", invoice.ID).
		Uint("customer_id", customer.ID).
		Str("week_id", weeklyLog.WeekID).
		Float64("grand_total", invoice.GrandTotal).
		Msg("concept invoice created")
	return invoice, nil
}

// resolveCustomer picks the customer by majority vote of the license plates
// seen on the log's worked days, matched against the plates assigned to each
// customer. Ties break toward the plate seen first in day order.
func (s *InvoiceService) resolveCustomer(ctx context.Context, weeklyLog *models.WeeklyLog) (*models.Customer, error) {
	counts := make(map[string]int)
	var order []string
	for i := range weeklyLog.Days {
		day := &weeklyLog.Days[i]
		if day.Status != models.DayStatusWorked {
			continue
		}
		plate := models.NormalizePlate(day.LicensePlate)
		if plate == "" {
			continue
		}
		if counts[plate] == 0 {
			order = append(order, plate)
		}
		counts[plate]++
	}
	if len(order) == 0 {
		return nil, ErrNoCustomerFound
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	for _, plate := range order {
		var assignment models.LicensePlate
		err := s.db.WithContext(ctx).Where("plate = ?", plate).First(&assignment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve customer by plate %s: %w", plate, err)
		}
		var customer models.Customer
		if err := s.db.WithContext(ctx).Preload("LicensePlates").First(&customer, assignment.CustomerID).Error; err != nil {
			return nil, fmt.Errorf("load customer %d: %w", assignment.CustomerID, err)
		}
		return &customer, nil
	}
	return nil, ErrNoCustomerFound
}

// lookupWeeklyRate fetches the stored weekly rate for (customer, week).
// Absence is not an error: generation proceeds and the engine reports the
// fallback as a warning.
func (s *InvoiceService) lookupWeeklyRate(ctx context.Context, customerID uint, weekID string) *float64 {
	var rate models.WeeklyRate
	err := s.db.WithContext(ctx).
		Where("customer_id = ? AND week_id = ?", customerID, models.NormalizeWeekID(weekID)).
		First(&rate).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Error().Err(err).Uint("customer_id", customerID).Str("week_id", weekID).
				Msg("weekly rate lookup failed; falling back to base rate")
		}
		return nil
	}
	return &rate.Value
}

// LoadWeeklyLog fetches a driver's log with its days in date order.
func (s *InvoiceService) LoadWeeklyLog(ctx context.Context, driverID uint, weekID string) (*models.WeeklyLog, error) {
	var weeklyLog models.WeeklyLog
	err := s.db.WithContext(ctx).
		Preload("Days", func(db *gorm.DB) *gorm.DB { return db.Order("date") }).
		Where("driver_id = ? AND week_id = ?", driverID, models.NormalizeWeekID(weekID)).
		First(&weeklyLog).Error
	if err != nil {
		return nil, fmt.Errorf("load weekly log %d/%s: %w", driverID, weekID, err)
	}
	return &weeklyLog, nil
}
