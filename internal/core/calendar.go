// Package core holds the budget domain: items, overrides, payments and
// the calendar/money value types everything else is built on.
package core

import (
	"time"
)

type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day (UTC, midnight).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a stored date leniently. It accepts "2006-01-02" and
// the datetime form legacy rows carry; anything else yields a zero Date,
// which callers treat as "absent".
func ParseDate(s string) Date {
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}
		}
	}
	return Date{}
}

// Day returns the day of the month.
func (d Date) Day() int { return d.Time.Day() }

// Month returns the month as an int (1-12).
func (d Date) Month() int { return int(d.Time.Month()) }

// Year returns the year.
func (d Date) Year() int { return d.Time.Year() }

// String formats the date as 2006-01-02; zero dates format as "".
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// Period identifies one calendar month.
type Period struct {
	Year  int
	Month int // 1-12
}

// Before reports whether p precedes q.
func (p Period) Before(q Period) bool {
	if p.Year != q.Year {
		return p.Year < q.Year
	}
	return p.Month < q.Month
}

// Next returns the following month.
func (p Period) Next() Period {
	if p.Month == 12 {
		return Period{Year: p.Year + 1, Month: 1}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Prev returns the preceding month.
func (p Period) Prev() Period {
	if p.Month == 1 {
		return Period{Year: p.Year - 1, Month: 12}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// CurrentPeriod returns the period containing now.
func CurrentPeriod(now time.Time) Period {
	return Period{Year: now.Year(), Month: int(now.Month())}
}

// MonthRange enumerates every month between start and end inclusive,
// truncated to month boundaries. A collapsed range (end before start) is
// corrected by swapping the bounds, never treated as empty. Zero bounds
// yield nil.
func MonthRange(start, end Date) []Period {
	if start.IsZero() || end.IsZero() {
		return nil
	}
	if end.Time.Before(start.Time) {
		start, end = end, start
	}
	cur := Period{Year: start.Year(), Month: start.Month()}
	last := Period{Year: end.Year(), Month: end.Month()}
	var out []Period
	for !last.Before(cur) {
		out = append(out, cur)
		cur = cur.Next()
	}
	return out
}

var monthLabels = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthLabel returns the Spanish month name for 1-12, or "" out of range.
func MonthLabel(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthLabels[month-1]
}

// LastDay returns the last valid day of the given month.
func LastDay(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay clamps day into [1, last day of month].
func ClampDay(year, month, day int) int {
	if day < 1 {
		return 1
	}
	if last := LastDay(year, month); day > last {
		return last
	}
	return day
}
