// Package budget implements the monthly-override recurrence model: it
// expands recurring item definitions into due periods, keeps the sparse
// per-(item, year, month) override table, reconciles payments and
// projects balances.
//
// This file implements the Strategy Pattern for recurrence expansion.
// Each periodicity has its own expander that encapsulates the logic for
// deriving the set of due periods.
package budget

import (
	"fmt"

	"ordenate/internal/core"
)

// PeriodExpander is the strategy interface for expanding a recurring item
// into the ordered set of periods it is due in. The reference period
// substitutes missing validity bounds so ranges never become unbounded.
type PeriodExpander interface {
	DuePeriods(item core.Item, ref core.Period) []core.Period
}

// MonthlyExpander implements PeriodExpander for monthly items.
type MonthlyExpander struct{}

// DuePeriods returns every month of the validity window, truncated to
// month boundaries. The anchor day is not consulted: a monthly item is
// due in every active month regardless of day alignment.
func (MonthlyExpander) DuePeriods(item core.Item, ref core.Period) []core.Period {
	start, end := effectiveWindow(item, ref)
	return core.MonthRange(start, end)
}

// AnnualExpander implements PeriodExpander for annual items.
type AnnualExpander struct{}

// DuePeriods restricts the validity window to the single calendar month
// of the anchor date, across every year in range. Without an anchor date
// the item is never due.
func (AnnualExpander) DuePeriods(item core.Item, ref core.Period) []core.Period {
	if item.PaymentDate.IsZero() {
		return nil
	}
	start, end := effectiveWindow(item, ref)
	var out []core.Period
	for _, p := range core.MonthRange(start, end) {
		if p.Month == item.PaymentDate.Month() {
			out = append(out, p)
		}
	}
	return out
}

// effectiveWindow resolves the validity bounds, defaulting a missing
// start to day 1 and a missing end to day 28 of the reference month.
func effectiveWindow(item core.Item, ref core.Period) (core.Date, core.Date) {
	start := item.ValidFrom
	if start.IsZero() {
		start = core.NewDate(ref.Year, ref.Month, 1)
	}
	end := item.ValidTo
	if end.IsZero() {
		end = core.NewDate(ref.Year, ref.Month, 28)
	}
	return start, end
}

// expanders maps periodicities to their expander strategies.
var expanders = map[core.Periodicity]PeriodExpander{
	core.Monthly: MonthlyExpander{},
	core.Annual:  AnnualExpander{},
}

// GetExpander returns the expander for a periodicity, or an error when
// the periodicity is not supported.
func GetExpander(p core.Periodicity) (PeriodExpander, error) {
	exp, ok := expanders[p]
	if !ok {
		return nil, fmt.Errorf("unknown periodicity: %s", p)
	}
	return exp, nil
}

// DuePeriods expands an item using the expander registry. Legacy rows
// with an unrecognized periodicity expand as monthly, matching the
// historical behavior of the spreadsheet data.
func DuePeriods(item core.Item, ref core.Period) []core.Period {
	exp, err := GetExpander(item.Periodicity)
	if err != nil {
		exp = MonthlyExpander{}
	}
	return exp.DuePeriods(item, ref)
}

// ActiveInMonth reports whether the item's validity window overlaps the
// given month. The period end uses a fixed sentinel of day 28 rather
// than the true last day, so items starting or ending on days 29-31 of
// a boundary month can be misclassified. This matches the historical
// behavior and is kept deliberately; do not "fix" it without a product
// decision.
func ActiveInMonth(item core.Item, year, month int) bool {
	start := item.ValidFrom
	if start.IsZero() {
		start = core.NewDate(year, month, 1)
	}
	end := item.ValidTo
	if end.IsZero() {
		end = core.NewDate(year, month, 28)
	}
	periodStart := core.NewDate(year, month, 1)
	periodEnd := core.NewDate(year, month, 28)
	return !start.After(periodEnd.Time) && !end.Before(periodStart.Time)
}
