package billing

import (
	"math"
	"sort"

	"github.com/jdvries/transportdesk/internal/models"
)

// VATBucket groups the lines sharing one VAT rate.
type VATBucket struct {
	Rate float64 `json:"rate"`
	Base float64 `json:"base"`
	VAT  float64 `json:"vat"`
}

// Totals is the aggregation result. Amounts are kept unrounded; rounding to
// cents happens at presentation and persistence, not during accumulation, so
// many small lines cannot compound rounding error.
type Totals struct {
	SubTotal   float64     `json:"sub_total"`
	Buckets    []VATBucket `json:"vat_breakdown"`
	VATTotal   float64     `json:"vat_total"`
	GrandTotal float64     `json:"grand_total"`
}

// AggregateTotals computes the subtotal, per-rate VAT amounts, and grand
// total for a line sequence. Line totals are re-derived from quantity and
// unit price rather than trusted, guarding against construction bugs
// upstream.
func AggregateTotals(lines []models.InvoiceLine) Totals {
	byRate := make(map[float64]float64)
	var sub float64
	for i := range lines {
		lineTotal := lines[i].Quantity * lines[i].UnitPrice
		sub += lineTotal
		byRate[lines[i].VATRate] += lineTotal
	}

	rates := make([]float64, 0, len(byRate))
	for rate := range byRate {
		rates = append(rates, rate)
	}
	sort.Float64s(rates)

	t := Totals{SubTotal: sub}
	for _, rate := range rates {
		base := byRate[rate]
		vat := base * rate / 100
		t.Buckets = append(t.Buckets, VATBucket{Rate: rate, Base: base, VAT: vat})
		t.VATTotal += vat
	}
	t.GrandTotal = t.SubTotal + t.VATTotal
	return t
}

// RoundCents rounds a euro amount to two decimals for presentation or
// persistence.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
