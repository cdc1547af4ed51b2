package domain

import (
	"fmt"
	"time"
)

// calendarDateLayout matches the locale date tag stored next to the daily
// quote, e.g. "Mon Jan 01 2024".
const calendarDateLayout = "Mon Jan 02 2006"

// timestampLayouts are the created_at forms accepted from the backend and
// from older cache entries, most specific first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTimestamp parses a created_at value. Values without a zone are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("parsing timestamp %q: unrecognized layout", s)
}

// FormatTimestamp renders t in the persisted created_at form.
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// CalendarDate is a client-local calendar day. It is never asserted by the
// server; it only scopes the daily cache to the day it was written on.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// ParseCalendarDate parses a tag produced by CalendarDate.String.
func ParseCalendarDate(s string) (CalendarDate, error) {
	t, err := time.Parse(calendarDateLayout, s)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("parsing calendar date %q: %w", s, err)
	}

	return DateOf(t), nil
}

// String renders the date in the persisted tag format.
func (d CalendarDate) String() string {
	return d.Time(time.UTC).Format(calendarDateLayout)
}

// Time returns midnight of the date in loc.
func (d CalendarDate) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// IsZero reports whether d is the zero date.
func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}
