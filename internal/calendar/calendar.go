// Package calendar provides Dutch public holidays. A Provider is constructed
// once at startup with the years it needs to cover and handed to consumers;
// there is no package-level lazy cache.
package calendar

import "time"

const dateKey = "2006-01-02"

// Provider answers holiday lookups for a fixed set of years.
type Provider struct {
	holidays map[string]string // "YYYY-MM-DD" -> holiday name
}

// NewProvider precomputes the Dutch public holidays for the given years.
func NewProvider(years ...int) *Provider {
	p := &Provider{holidays: make(map[string]string)}
	for _, year := range years {
		p.addYear(year)
	}
	return p
}

// NewProviderAround covers the year containing t plus the year before and
// after, enough for week logs spanning a year boundary.
func NewProviderAround(t time.Time) *Provider {
	y := t.Year()
	return NewProvider(y-1, y, y+1)
}

// Holiday returns the holiday name for a date, if it is one.
func (p *Provider) Holiday(t time.Time) (string, bool) {
	name, ok := p.holidays[t.Format(dateKey)]
	return name, ok
}

// IsHoliday reports whether the date is a Dutch public holiday.
func (p *Provider) IsHoliday(t time.Time) bool {
	_, ok := p.Holiday(t)
	return ok
}

func (p *Provider) addYear(year int) {
	add := func(t time.Time, name string) {
		p.holidays[t.Format(dateKey)] = name
	}
	day := func(month time.Month, d int) time.Time {
		return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	}

	add(day(time.January, 1), "Nieuwjaarsdag")

	easter := easterSunday(year)
	add(easter.AddDate(0, 0, -2), "Goede Vrijdag")
	add(easter, "Eerste Paasdag")
	add(easter.AddDate(0, 0, 1), "Tweede Paasdag")
	add(easter.AddDate(0, 0, 39), "Hemelvaartsdag")
	add(easter.AddDate(0, 0, 49), "Eerste Pinksterdag")
	add(easter.AddDate(0, 0, 50), "Tweede Pinksterdag")

	// Koningsdag shifts to the 26th when April 27 falls on a Sunday.
	koningsdag := day(time.April, 27)
	if koningsdag.Weekday() == time.Sunday {
		koningsdag = day(time.April, 26)
	}
	add(koningsdag, "Koningsdag")

	add(day(time.May, 5), "Bevrijdingsdag")
	add(day(time.December, 25), "Eerste Kerstdag")
	add(day(time.December, 26), "Tweede Kerstdag")
}

// easterSunday computes Easter for a year in the Gregorian calendar
// (anonymous Gregorian algorithm).
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
