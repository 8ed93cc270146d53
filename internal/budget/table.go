package budget

import (
	"sort"

	"ordenate/internal/core"
)

// YearRow is one item's twelve monthly amounts plus per-month activity
// flags, the editable row of the year table.
type YearRow struct {
	ItemID   int64
	Name     string
	Category string
	Amounts  [12]core.Money
	Active   [12]bool
	Total    core.Money
}

// YearTable is a fully expanded view of one side of the budget for a
// year. It is derived data and safe to cache against the dataset
// version.
type YearTable struct {
	Year   int
	Rows   []YearRow
	Totals [12]core.Money
}

// BuildYearTable expands items and their overrides into the year table,
// rows sorted by category then name.
func BuildYearTable(items []core.Item, rows []core.Override, year int) YearTable {
	t := YearTable{Year: year, Rows: make([]YearRow, 0, len(items))}
	for _, it := range items {
		row := YearRow{
			ItemID:   it.ID,
			Name:     it.Name,
			Category: it.Category,
			Amounts:  YearAmounts(rows, it.ID, year),
		}
		for m := 1; m <= 12; m++ {
			row.Active[m-1] = ActiveInMonth(it, year, m)
			row.Total = row.Total.Add(row.Amounts[m-1])
			t.Totals[m-1] = t.Totals[m-1].Add(row.Amounts[m-1])
		}
		t.Rows = append(t.Rows, row)
	}
	sort.Slice(t.Rows, func(i, j int) bool {
		if t.Rows[i].Category != t.Rows[j].Category {
			return t.Rows[i].Category < t.Rows[j].Category
		}
		return t.Rows[i].Name < t.Rows[j].Name
	})
	return t
}
