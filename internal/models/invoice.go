package models

import (
	"time"

	"gorm.io/gorm"
)

// InvoiceStatus represents the lifecycle state of an invoice. The generation
// engine only ever creates invoices in the concept state; the rest of the
// lifecycle is managed by the back office.
type InvoiceStatus string

const (
	InvoiceStatusConcept   InvoiceStatus = "concept"
	InvoiceStatusFinal     InvoiceStatus = "final"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Invoice is the persisted invoice header with its child lines.
type Invoice struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Number is assigned manually by accounting once the concept is approved.
	Number    string `gorm:"size:50;index" json:"number,omitempty"`
	Reference string `gorm:"size:100" json:"reference,omitempty"`

	CustomerID uint      `gorm:"index;not null" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`

	// WeekID records which weekly log the invoice was generated from.
	WeekID string `gorm:"size:8;index" json:"week_id,omitempty"`

	InvoiceDate time.Time `gorm:"not null" json:"invoice_date"`
	DueDate     time.Time `gorm:"not null" json:"due_date"`

	Status InvoiceStatus `gorm:"size:20;not null;default:'concept'" json:"status"`

	SubTotal   float64 `gorm:"type:decimal(12,2);not null" json:"sub_total"`
	VATTotal   float64 `gorm:"type:decimal(12,2);not null" json:"vat_total"`
	GrandTotal float64 `gorm:"type:decimal(12,2);not null" json:"grand_total"`

	FooterText    string `gorm:"type:text" json:"footer_text,omitempty"`
	ShowWorkTimes bool   `json:"show_work_times"`

	Lines []InvoiceLine `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
}

// IsConcept returns true while the invoice can still be regenerated.
func (i *Invoice) IsConcept() bool {
	return i.Status == InvoiceStatusConcept
}

// InvoiceLine is one billable row. Lines are immutable value objects once
// emitted by the engine; toll placeholder lines (quantity and unit price both
// zero) are later overwritten by toll reconciliation, which is the single
// sanctioned exception.
type InvoiceLine struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	InvoiceID uint     `gorm:"index;not null" json:"invoice_id"`
	Invoice   *Invoice `gorm:"foreignKey:InvoiceID" json:"-"`

	Quantity    float64 `gorm:"type:decimal(10,3);not null" json:"quantity"`
	Description string  `gorm:"size:500;not null" json:"description"`
	UnitPrice   float64 `gorm:"type:decimal(10,4);not null" json:"unit_price"`
	VATRate     float64 `gorm:"type:decimal(5,2);not null" json:"vat_rate"`
	Total       float64 `gorm:"type:decimal(12,4);not null" json:"total"`

	// Position keeps the day-walk emission order stable in storage.
	Position int `gorm:"default:0" json:"position"`
}

// IsTollPlaceholder reports whether the line is a zero-valued toll marker
// awaiting reconciliation.
func (l *InvoiceLine) IsTollPlaceholder() bool {
	return l.Quantity == 0 && l.UnitPrice == 0
}
