// Package daycount converts leave date ranges into fractional day counts.
// All math is calendar-day based: dates carry no time-of-day or timezone.
package daycount

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the wire format for calendar dates.
const DateFormat = "2006-01-02"

var (
	fullDayWeight = decimal.NewFromInt(1)
	halfDayWeight = decimal.NewFromFloat(0.5)
)

// YearMonth identifies one calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// SubtypeWeight returns the per-calendar-day weight for a leave subtype:
// 1.0 for a full day, 0.5 for a morning or afternoon half day.
func SubtypeWeight(subtype string) decimal.Decimal {
	if subtype == "FULL_DAY" {
		return fullDayWeight
	}
	return halfDayWeight
}

// normalize truncates t to midnight UTC so date arithmetic ignores clock time.
func normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInRange counts calendar days in the inclusive range [start, end].
// Returns 0 when the range is inverted.
func DaysInRange(start, end time.Time) int {
	start, end = normalize(start), normalize(end)
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// MonthsTouched lists every (year, month) the inclusive range [start, end]
// intersects, in chronological order.
func MonthsTouched(start, end time.Time) []YearMonth {
	start, end = normalize(start), normalize(end)
	if end.Before(start) {
		return nil
	}
	var months []YearMonth
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(last) {
		months = append(months, YearMonth{Year: cur.Year(), Month: cur.Month()})
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}

// MonthBounds returns the first and last calendar day of (year, month).
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}

// ClippedDays counts the calendar days of [start, end] falling inside
// (year, month). A range spanning a month boundary contributes only the
// days inside the queried month.
func ClippedDays(start, end time.Time, year int, month time.Month) int {
	start, end = normalize(start), normalize(end)
	first, last := MonthBounds(year, month)
	if start.Before(first) {
		start = first
	}
	if end.After(last) {
		end = last
	}
	return DaysInRange(start, end)
}

// WeightInMonth is the day-weighted contribution of a leave range to one
// month's usage: clipped day count times the subtype weight.
func WeightInMonth(start, end time.Time, subtype string, year int, month time.Month) decimal.Decimal {
	days := ClippedDays(start, end, year, month)
	if days <= 0 {
		return decimal.Zero
	}
	return SubtypeWeight(subtype).Mul(decimal.NewFromInt(int64(days)))
}

// TotalWeight is the day-weighted size of the whole range, across all months.
func TotalWeight(start, end time.Time, subtype string) decimal.Decimal {
	days := DaysInRange(start, end)
	if days <= 0 {
		return decimal.Zero
	}
	return SubtypeWeight(subtype).Mul(decimal.NewFromInt(int64(days)))
}
