package billing

import (
	"math"
	"testing"
	"time"

	"github.com/jdvries/transportdesk/internal/models"
)

const eps = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestResolveHourlyRateWeekdays(t *testing.T) {
	c := &models.Customer{HourlyRate: 40, SaturdaySurcharge: 120, SundaySurcharge: 150}

	// Mon-Fri: base rate exactly, surcharges never apply.
	for _, wd := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday} {
		if got := ResolveHourlyRate(c, wd); !almostEqual(got, 40) {
			t.Fatalf("weekday %v: got %v, want 40", wd, got)
		}
	}
	if got := ResolveHourlyRate(c, time.Saturday); !almostEqual(got, 48) {
		t.Fatalf("saturday: got %v, want 48", got)
	}
	if got := ResolveHourlyRate(c, time.Sunday); !almostEqual(got, 60) {
		t.Fatalf("sunday: got %v, want 60", got)
	}
}

func TestResolveHourlyRateDefault(t *testing.T) {
	c := &models.Customer{}
	if got := ResolveHourlyRate(c, time.Wednesday); !almostEqual(got, DefaultHourlyRate) {
		t.Fatalf("got %v, want default %v", got, DefaultHourlyRate)
	}
	// Default base still gets the weekend surcharge.
	c.SaturdaySurcharge = 200
	if got := ResolveHourlyRate(c, time.Saturday); !almostEqual(got, DefaultHourlyRate*2) {
		t.Fatalf("got %v, want %v", got, DefaultHourlyRate*2)
	}
}

func TestResolveHourlyRateNegativeConfigured(t *testing.T) {
	c := &models.Customer{HourlyRate: -5}
	if got := ResolveHourlyRate(c, time.Monday); !almostEqual(got, DefaultHourlyRate) {
		t.Fatalf("got %v, want default %v", got, DefaultHourlyRate)
	}
}

func TestResolveMileageRateFixed(t *testing.T) {
	c := &models.Customer{MileageRateType: models.MileageRateFixed, MileageRate: 0.62}
	if got := ResolveMileageRate(c, nil); !almostEqual(got, 0.62) {
		t.Fatalf("got %v, want 0.62", got)
	}

	c.MileageRate = 0
	if got := ResolveMileageRate(c, nil); !almostEqual(got, DefaultMileageRate) {
		t.Fatalf("got %v, want default %v", got, DefaultMileageRate)
	}
}

func TestResolveMileageRateDOT(t *testing.T) {
	c := &models.Customer{MileageRateType: models.MileageRateDOT, MileageRate: 1.10}

	weekly := 10.0
	if got := ResolveMileageRate(c, &weekly); !almostEqual(got, 1.21) {
		t.Fatalf("got %v, want 1.21", got)
	}

	// Missing weekly rate falls back to the base rate, not to an error.
	if got := ResolveMileageRate(c, nil); !almostEqual(got, 1.10) {
		t.Fatalf("got %v, want 1.10", got)
	}

	c.MileageRate = 0
	if got := ResolveMileageRate(c, nil); !almostEqual(got, DefaultMileageRate) {
		t.Fatalf("got %v, want default %v", got, DefaultMileageRate)
	}
}

func TestResolveMileageRateVariable(t *testing.T) {
	c := &models.Customer{MileageRateType: models.MileageRateVariable, MileageRate: 0.50}

	weekly := 0.61
	if got := ResolveMileageRate(c, &weekly); !almostEqual(got, 0.61) {
		t.Fatalf("got %v, want 0.61", got)
	}
	if got := ResolveMileageRate(c, nil); !almostEqual(got, 0.50) {
		t.Fatalf("got %v, want 0.50", got)
	}
}

func TestResolveOvernightRate(t *testing.T) {
	if got := ResolveOvernightRate(&models.Customer{OvernightRate: 65}); !almostEqual(got, 65) {
		t.Fatalf("got %v, want 65", got)
	}
	if got := ResolveOvernightRate(&models.Customer{}); !almostEqual(got, DefaultOvernightRate) {
		t.Fatalf("got %v, want default %v", got, DefaultOvernightRate)
	}
}
