package billing

import (
	"testing"

	"github.com/jdvries/transportdesk/internal/models"
)

func TestAggregateTotalsSingleRate(t *testing.T) {
	lines := []models.InvoiceLine{
		{Quantity: 7.5, UnitPrice: 48, VATRate: 21, Total: 360},
		{Quantity: 200, UnitPrice: 0.56, VATRate: 21, Total: 112},
		{Quantity: 1, UnitPrice: 50, VATRate: 21, Total: 50},
		{Quantity: 0, UnitPrice: 0, VATRate: 21, Total: 0}, // toll placeholder
	}

	totals := AggregateTotals(lines)
	if !almostEqual(totals.SubTotal, 522) {
		t.Errorf("subtotal = %v, want 522", totals.SubTotal)
	}
	if len(totals.Buckets) != 1 {
		t.Fatalf("got %d buckets, want 1", len(totals.Buckets))
	}
	if !almostEqual(totals.Buckets[0].VAT, 522*0.21) {
		t.Errorf("vat = %v, want %v", totals.Buckets[0].VAT, 522*0.21)
	}
	if !almostEqual(totals.VATTotal, 522*0.21) {
		t.Errorf("vat total = %v", totals.VATTotal)
	}
	if !almostEqual(totals.GrandTotal, totals.SubTotal+totals.VATTotal) {
		t.Errorf("grand total = %v, want sub+vat", totals.GrandTotal)
	}
}

func TestAggregateTotalsRederivesLineTotals(t *testing.T) {
	// A corrupted stored total must not leak into the aggregate.
	lines := []models.InvoiceLine{
		{Quantity: 10, UnitPrice: 2, VATRate: 21, Total: 9999},
	}
	totals := AggregateTotals(lines)
	if !almostEqual(totals.SubTotal, 20) {
		t.Errorf("subtotal = %v, want re-derived 20", totals.SubTotal)
	}
}

func TestAggregateTotalsMultipleRates(t *testing.T) {
	lines := []models.InvoiceLine{
		{Quantity: 1, UnitPrice: 100, VATRate: 21},
		{Quantity: 1, UnitPrice: 100, VATRate: 9},
		{Quantity: 2, UnitPrice: 50, VATRate: 21},
	}
	totals := AggregateTotals(lines)
	if len(totals.Buckets) != 2 {
		t.Fatalf("got %d buckets, want 2", len(totals.Buckets))
	}
	// Buckets sorted ascending by rate.
	if totals.Buckets[0].Rate != 9 || totals.Buckets[1].Rate != 21 {
		t.Fatalf("bucket order: %v", totals.Buckets)
	}
	if !almostEqual(totals.Buckets[0].VAT, 9) {
		t.Errorf("9%% bucket vat = %v, want 9", totals.Buckets[0].VAT)
	}
	if !almostEqual(totals.Buckets[1].VAT, 200*0.21) {
		t.Errorf("21%% bucket vat = %v, want 42", totals.Buckets[1].VAT)
	}
	if !almostEqual(totals.VATTotal, 9+42) {
		t.Errorf("vat total = %v, want 51", totals.VATTotal)
	}
	if !almostEqual(totals.GrandTotal, 300+51) {
		t.Errorf("grand total = %v, want 351", totals.GrandTotal)
	}
}

func TestAggregateTotalsEmpty(t *testing.T) {
	totals := AggregateTotals(nil)
	if totals.SubTotal != 0 || totals.VATTotal != 0 || totals.GrandTotal != 0 {
		t.Errorf("empty aggregation should be all zero: %+v", totals)
	}
	if len(totals.Buckets) != 0 {
		t.Errorf("expected no buckets, got %v", totals.Buckets)
	}
}

func TestAggregateTotalsNoIntermediateRounding(t *testing.T) {
	// 100 lines of 1/3 cent each: rounding per line would lose the fraction.
	var lines []models.InvoiceLine
	for i := 0; i < 100; i++ {
		lines = append(lines, models.InvoiceLine{Quantity: 1, UnitPrice: 0.00333333, VATRate: 21})
	}
	totals := AggregateTotals(lines)
	if !almostEqual(totals.SubTotal, 0.333333) {
		t.Errorf("subtotal = %v, want exact accumulation 0.333333", totals.SubTotal)
	}
	if RoundCents(totals.SubTotal) != 0.33 {
		t.Errorf("rounded subtotal = %v, want 0.33", RoundCents(totals.SubTotal))
	}
}

func TestRoundCents(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{1.226, 1.23},
		{1.224, 1.22},
		{-1.226, -1.23},
		{360, 360},
		{0, 0},
	}
	for _, tc := range cases {
		if got := RoundCents(tc.in); !almostEqual(got, tc.want) {
			t.Errorf("RoundCents(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
