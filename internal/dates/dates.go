// Package dates computes the digest target date and renders it in each
// source's native format.
package dates

import "time"

const (
	isoLayout        = "2006-01-02"
	metacriticLayout = "2 January 2006"
	geniusLayout     = "1/2"
	wikipediaLayout  = "January 2"
	monthYearLayout  = "January 2006"
	humanLayout      = "Monday, January 2, 2006"
)

// Target is a release date at day precision together with its
// source-native renderings.
type Target struct {
	date time.Time
}

// NewTarget truncates t to day precision in its own location.
func NewTarget(t time.Time) Target {
	year, month, day := t.Date()
	return Target{date: time.Date(year, month, day, 0, 0, 0, 0, t.Location())}
}

// Tomorrow returns the day after now, the digest's standing target.
func Tomorrow(now time.Time) Target {
	return NewTarget(now.AddDate(0, 0, 1))
}

// Today returns now at day precision, the monitor's reference date.
func Today(now time.Time) Target {
	return NewTarget(now)
}

// AddDays returns the target shifted by n days.
func (t Target) AddDays(n int) Target {
	return NewTarget(t.date.AddDate(0, 0, n))
}

// Time returns the underlying day-precision time.
func (t Target) Time() time.Time { return t.date }

// Year returns the target's calendar year.
func (t Target) Year() int { return t.date.Year() }

// ISO renders the catalog's date format, e.g. "2026-08-05".
func (t Target) ISO() string { return t.date.Format(isoLayout) }

// Metacritic renders the coming-soon row header format, e.g. "5 August 2026".
func (t Target) Metacritic() string { return t.date.Format(metacriticLayout) }

// Genius renders the calendar heading format, e.g. "8/5".
func (t Target) Genius() string { return t.date.Format(geniusLayout) }

// Wikipedia renders the month-table row header format, e.g. "August 5".
func (t Target) Wikipedia() string { return t.date.Format(wikipediaLayout) }

// MonthYear renders the month heading, e.g. "August 2026". Used for the
// Genius calendar URL slug and the Wikipedia table caption match.
func (t Target) MonthYear() string { return t.date.Format(monthYearLayout) }

// Human renders the long display form used in notification bodies.
func (t Target) Human() string { return t.date.Format(humanLayout) }

// Accepted returns the ISO dates treated as matching the target: the target
// itself and the day before. Catalog listings sometimes carry the eve date
// for releases that land at midnight.
func (t Target) Accepted() DateSet {
	set := make(DateSet, 2)
	set[t.ISO()] = struct{}{}
	set[t.AddDays(-1).ISO()] = struct{}{}
	return set
}

// DateSet is a set of ISO-rendered dates.
type DateSet map[string]struct{}

// Contains reports whether the ISO date is in the set.
func (s DateSet) Contains(iso string) bool {
	_, ok := s[iso]
	return ok
}

// ParseISO parses a day-precision catalog date.
func ParseISO(value string) (time.Time, error) {
	return time.Parse(isoLayout, value)
}
