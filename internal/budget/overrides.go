package budget

import "ordenate/internal/core"

// overrideKey identifies one row of the sparse override table.
type overrideKey struct {
	ItemID int64
	Year   int
	Month  int
}

func keyOf(o core.Override) overrideKey {
	return overrideKey{ItemID: o.ItemID, Year: o.Year, Month: o.Month}
}

func keySet(rows []core.Override) map[overrideKey]struct{} {
	set := make(map[overrideKey]struct{}, len(rows))
	for _, o := range rows {
		set[keyOf(o)] = struct{}{}
	}
	return set
}

// AmountFor returns the override amount for an item in a given period.
// A missing row reads as zero; callers must not substitute the item's
// base amount, the override table is the single source of truth once an
// item has been migrated.
func AmountFor(rows []core.Override, itemID int64, year, month int) core.Money {
	for _, o := range rows {
		if o.ItemID == itemID && o.Year == year && o.Month == month {
			return o.Amount
		}
	}
	return core.Money{}
}

// YearAmounts collects the twelve monthly amounts of one item for a
// year. Index 0 is January.
func YearAmounts(rows []core.Override, itemID int64, year int) [12]core.Money {
	var out [12]core.Money
	for _, o := range rows {
		if o.ItemID == itemID && o.Year == year && o.Month >= 1 && o.Month <= 12 {
			out[o.Month-1] = o.Amount
		}
	}
	return out
}

// ReplaceYear discards every override row for the given year and
// substitutes the provided rows. Replacement rows carry twelve entries
// per item, zero amounts included, so a zero means "explicitly zero"
// rather than "no row". Rows for other years pass through untouched.
func ReplaceYear(rows []core.Override, year int, replacement []core.Override) []core.Override {
	out := make([]core.Override, 0, len(rows)+len(replacement))
	for _, o := range rows {
		if o.Year != year {
			out = append(out, o)
		}
	}
	return append(out, replacement...)
}

// BuildYearRows expands a per-item twelve-month table into override
// rows suitable for ReplaceYear.
func BuildYearRows(year int, table map[int64][12]core.Money) []core.Override {
	out := make([]core.Override, 0, len(table)*12)
	for itemID, amounts := range table {
		for m := 1; m <= 12; m++ {
			out = append(out, core.Override{
				ItemID: itemID,
				Year:   year,
				Month:  m,
				Amount: amounts[m-1],
			})
		}
	}
	return out
}

// AppendIfAbsent seeds override rows at the item's base amount for each
// due period that has no row yet. Existing rows always win, whatever
// their amount.
func AppendIfAbsent(rows []core.Override, item core.Item, periods []core.Period) []core.Override {
	present := keySet(rows)
	for _, p := range periods {
		k := overrideKey{ItemID: item.ID, Year: p.Year, Month: p.Month}
		if _, ok := present[k]; ok {
			continue
		}
		rows = append(rows, core.Override{
			ItemID: item.ID,
			Year:   p.Year,
			Month:  p.Month,
			Amount: item.BaseAmount,
		})
		present[k] = struct{}{}
	}
	return rows
}

// MigrateFromBase makes the override table complete: for every item it
// expands the due periods against the reference period and inserts any
// missing row at the item's base amount. The merge is idempotent; the
// returned flag reports whether any row was added so callers can skip
// a pointless save.
func MigrateFromBase(items []core.Item, rows []core.Override, ref core.Period) ([]core.Override, bool) {
	before := len(rows)
	for _, item := range items {
		rows = AppendIfAbsent(rows, item, DuePeriods(item, ref))
	}
	return rows, len(rows) != before
}

// MergeLegacy folds historical adjustment rows into the override table,
// keeping current rows when both sides have one for the same key.
func MergeLegacy(rows, legacy []core.Override) ([]core.Override, bool) {
	present := keySet(rows)
	changed := false
	for _, o := range legacy {
		if _, ok := present[keyOf(o)]; ok {
			continue
		}
		rows = append(rows, o)
		present[keyOf(o)] = struct{}{}
		changed = true
	}
	return rows, changed
}

// DropItems removes every override row belonging to the given item ids.
// Used when items are deleted so the table does not accumulate orphans.
func DropItems(rows []core.Override, ids map[int64]struct{}) []core.Override {
	out := rows[:0]
	for _, o := range rows {
		if _, gone := ids[o.ItemID]; !gone {
			out = append(out, o)
		}
	}
	return out
}
