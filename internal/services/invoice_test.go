package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jdvries/transportdesk/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Customer{}, &models.LicensePlate{},
		&models.WeeklyLog{}, &models.Day{},
		&models.WeeklyRate{},
		&models.Invoice{}, &models.InvoiceLine{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, plates ...string) *models.Customer {
	t.Helper()
	customer := models.Customer{
		Name:              "Van Dijk Transport",
		BillingType:       models.BillingTypeCombined,
		HourlyRate:        40,
		SaturdaySurcharge: 120,
		SundaySurcharge:   150,
		MileageRateType:   models.MileageRateFixed,
		MileageRate:       0.56,
		OvernightRate:     50,
	}
	for _, plate := range plates {
		customer.LicensePlates = append(customer.LicensePlates, models.LicensePlate{Plate: models.NormalizePlate(plate)})
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return &customer
}

func seedLog(t *testing.T, db *gorm.DB, driverID uint, weekID string, days []models.Day) *models.WeeklyLog {
	t.Helper()
	weeklyLog := models.WeeklyLog{DriverID: driverID, WeekID: weekID, Days: days}
	if err := db.Create(&weeklyLog).Error; err != nil {
		t.Fatalf("seed weekly log: %v", err)
	}
	return &weeklyLog
}

func testDay(date time.Time, plate string) models.Day {
	return models.Day{
		Date:         date,
		Status:       models.DayStatusWorked,
		StartTime:    "08:00",
		EndTime:      "16:00",
		StartMileage: 1000,
		EndMileage:   1200,
		LicensePlate: plate,
	}
}

var monday = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

func TestCreateInvoicePreview(t *testing.T) {
	db := setupTestDB(t)
	seedCustomer(t, db, "12-ABC-3")
	weeklyLog := seedLog(t, db, 1, "2026-10", []models.Day{
		testDay(monday, "12-ABC-3"),
	})

	svc := NewInvoiceService(db)
	result, err := svc.CreateInvoice(context.Background(), weeklyLog, CreateOptions{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Invoice != nil {
		t.Fatalf("preview must not persist")
	}
	// 200 km * 0.56 + 8 h * 40 = 112 + 320 = 432
	if math.Abs(result.SubTotal-432) > 1e-9 {
		t.Errorf("subtotal = %v, want 432", result.SubTotal)
	}
	if math.Abs(result.GrandTotal-432*1.21) > 1e-9 {
		t.Errorf("grand total = %v, want %v", result.GrandTotal, 432*1.21)
	}

	var count int64
	db.Model(&models.Invoice{}).Count(&count)
	if count != 0 {
		t.Errorf("preview persisted %d invoices", count)
	}
}

func TestCreateInvoicePersists(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db, "12-ABC-3")
	weeklyLog := seedLog(t, db, 1, "2026-10", []models.Day{
		testDay(monday, "12-ABC-3"),
	})

	svc := NewInvoiceService(db)
	result, err := svc.CreateInvoice(context.Background(), weeklyLog, CreateOptions{Persist: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Invoice == nil {
		t.Fatal("expected persisted invoice")
	}
	if result.Invoice.Status != models.InvoiceStatusConcept {
		t.Errorf("status = %s, want concept", result.Invoice.Status)
	}
	if result.Invoice.Number != "" {
		t.Errorf("number must stay empty until accounting assigns one, got %q", result.Invoice.Number)
	}
	if result.Invoice.Reference == "" {
		t.Errorf("reference should default to a generated value")
	}
	if result.Invoice.CustomerID != customer.ID {
		t.Errorf("customer = %d, want %d", result.Invoice.CustomerID, customer.ID)
	}

	var stored models.Invoice
	if err := db.Preload("Lines").First(&stored, result.Invoice.ID).Error; err != nil {
		t.Fatalf("load stored invoice: %v", err)
	}
	if len(stored.Lines) != 2 {
		t.Errorf("stored %d lines, want 2", len(stored.Lines))
	}
	if stored.SubTotal != 432 {
		t.Errorf("stored subtotal = %v, want 432", stored.SubTotal)
	}
	// Totals are rounded to cents at persistence.
	if stored.GrandTotal != 522.72 {
		t.Errorf("stored grand total = %v, want 522.72", stored.GrandTotal)
	}
}

func TestResolveCustomerMajorityVote(t *testing.T) {
	db := setupTestDB(t)
	seedCustomer(t, db, "12-ABC-3")
	winner := seedCustomer(t, db, "99-XYZ-9")

	days := []models.Day{
		testDay(monday, "12-ABC-3"),
		testDay(monday.AddDate(0, 0, 1), "99-XYZ-9"),
		testDay(monday.AddDate(0, 0, 2), "99 xyz 9"), // same plate, different formatting
	}
	weeklyLog := seedLog(t, db, 1, "2026-10", days)

	svc := NewInvoiceService(db)
	result, err := svc.CreateInvoice(context.Background(), weeklyLog, CreateOptions{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Customer.ID != winner.ID {
		t.Errorf("resolved customer %d, want majority holder %d", result.Customer.ID, winner.ID)
	}
}

func TestResolveCustomerIgnoresNonWorkedDays(t *testing.T) {
	db := setupTestDB(t)
	seedCustomer(t, db, "12-ABC-3")
	worked := seedCustomer(t, db, "99-XYZ-9")

	sickA := testDay(monday, "12-ABC-3")
	sickA.Status = models.DayStatusSick
	sickB := testDay(monday.AddDate(0, 0, 1), "12-ABC-3")
	sickB.Status = models.DayStatusSick

	weeklyLog := seedLog(t, db, 1, "2026-10", []models.Day{
		sickA, sickB,
		testDay(monday.AddDate(0, 0, 2), "99-XYZ-9"),
	})

	svc := NewInvoiceService(db)
	result, err := svc.CreateInvoice(context.Background(), weeklyLog, CreateOptions{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Customer.ID != worked.ID {
		t.Errorf("resolved %d, want %d (sick days don't vote)", result.Customer.ID, worked.ID)
	}
}

func TestCreateInvoiceNoCustomer(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db)

	// No worked day with a plate at all.
	empty := seedLog(t, db, 1, "2026-10", []models.Day{
		{Date: monday, Status: models.DayStatusLeave},
	})
	if _, err := svc.CreateInvoice(context.Background(), empty, CreateOptions{}); !errors.Is(err, ErrNoCustomerFound) {
		t.Fatalf("err = %v, want ErrNoCustomerFound", err)
	}

	// A plate nobody claims.
	unclaimed := seedLog(t, db, 2, "2026-10", []models.Day{
		testDay(monday, "00-UNK-0"),
	})
	if _, err := svc.CreateInvoice(context.Background(), unclaimed, CreateOptions{}); !errors.Is(err, ErrNoCustomerFound) {
		t.Fatalf("err = %v, want ErrNoCustomerFound", err)
	}
}

func TestCreateInvoiceExplicitCustomerSkipsResolution(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db) // no plates assigned
	weeklyLog := seedLog(t, db, 1, "2026-10", []models.Day{
		testDay(monday, "00-UNK-0"),
	})

	svc := NewInvoiceService(db)
	result, err := svc.CreateInvoice(context.Background(), weeklyLog, CreateOptions{Customer: customer})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Customer.ID != customer.ID {
		t.Errorf("resolved %d, want explicit %d", result.Customer.ID, customer.ID)
	}
}

func TestCreateInvoiceUsesStoredWeeklyRate(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db, "12-ABC-3")
	customer.MileageRateType = models.MileageRateDOT
	customer.MileageRate = 1.10
	if err := db.Save(customer).Error; err != nil {
		t.Fatalf("update customer: %v", err)
	}
	if err := db.Create(&models.WeeklyRate{
		CustomerID: customer.ID, WeekID: "2026-10", Value: 10, Source: models.WeeklyRateManual,
	}).Error; err != nil {
		t.Fatalf("seed rate: %v", err)
	}

	weeklyLog := seedLog(t, db, 1, "2026-10", []models.Day{
		testDay(monday, "12-ABC-3"),
	})

	svc := NewInvoiceService(db)
	result, err := svc.CreateInvoice(context.Background(), weeklyLog, CreateOptions{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var kmLine *models.InvoiceLine
	for i := range result.Lines {
		if result.Lines[i].Quantity == 200 {
			kmLine = &result.Lines[i]
		}
	}
	if kmLine == nil {
		t.Fatal("no kilometer line emitted")
	}
	if math.Abs(kmLine.UnitPrice-1.21) > 1e-9 {
		t.Errorf("unit price = %v, want 1.10 * 1.10 = 1.21", kmLine.UnitPrice)
	}
}

func TestCreateInvoiceMissingWeeklyRateWarns(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db, "12-ABC-3")
	customer.MileageRateType = models.MileageRateVariable
	if err := db.Save(customer).Error; err != nil {
		t.Fatalf("update customer: %v", err)
	}

	weeklyLog := seedLog(t, db, 1, "2026-10", []models.Day{
		testDay(monday, "12-ABC-3"),
	})

	svc := NewInvoiceService(db)
	result, err := svc.CreateInvoice(context.Background(), weeklyLog, CreateOptions{})
	if err != nil {
		t.Fatalf("missing weekly rate must not fail generation: %v", err)
	}
	found := false
	for _, w := range result.Warnings {
		if w.Code == "missing_weekly_rate" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected missing_weekly_rate warning, got %v", result.Warnings)
	}
}

func TestLoadWeeklyLogNormalizesWeekID(t *testing.T) {
	db := setupTestDB(t)
	seedLog(t, db, 1, "2026-07", []models.Day{testDay(monday, "12-ABC-3")})

	svc := NewInvoiceService(db)
	weeklyLog, err := svc.LoadWeeklyLog(context.Background(), 1, "2026-7")
	if err != nil {
		t.Fatalf("load with unpadded week id: %v", err)
	}
	if weeklyLog.WeekID != "2026-07" {
		t.Errorf("week id = %s", weeklyLog.WeekID)
	}
	if len(weeklyLog.Days) != 1 {
		t.Errorf("days not preloaded")
	}
}
