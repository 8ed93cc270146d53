package budget

import (
	"sort"

	"ordenate/internal/core"
)

// MonthlySummary aggregates one month of the expense side.
type MonthlySummary struct {
	Budgeted core.Money
	Actual   core.Money
	Pending  core.Money
}

// AnnualRow is one month of the annual overview. Balance compares
// budgeted figures only; actual spend is informational.
type AnnualRow struct {
	Month    int
	Label    string
	Income   core.Money
	Budgeted core.Money
	Actual   core.Money
	Balance  core.Money
}

// PendingItem is an expense still due in a month.
type PendingItem struct {
	Item   core.Item
	Amount core.Money
}

func budgetedFor(items []core.Item, rows []core.Override, year, month int) core.Money {
	var total core.Money
	for _, it := range items {
		total = total.Add(AmountFor(rows, it.ID, year, month))
	}
	return total
}

func actualFor(payments []core.Payment, year, month int) core.Money {
	var total core.Money
	for _, p := range payments {
		if p.PaidOn.Year() == year && p.PaidOn.Month() == month {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// Summarize computes the budgeted, actual and pending totals of one
// month. Pending never goes negative; overspend reads as zero left to
// pay.
func Summarize(ds *core.Dataset, year, month int) MonthlySummary {
	budgeted := budgetedFor(ds.Expenses, ds.ExpenseOverrides, year, month)
	actual := actualFor(ds.Payments, year, month)
	pending := budgeted.Sub(actual)
	if pending.Cents < 0 {
		pending = core.Money{}
	}
	return MonthlySummary{Budgeted: budgeted, Actual: actual, Pending: pending}
}

// AnnualSummary returns twelve rows, one per month, with the budgeted
// income and expense totals, the actual spend and the projected
// balance. The balance intentionally ignores payments: it answers
// "what does the plan say", not "what happened".
func AnnualSummary(ds *core.Dataset, year int) []AnnualRow {
	out := make([]AnnualRow, 0, 12)
	for m := 1; m <= 12; m++ {
		income := budgetedFor(ds.Incomes, ds.IncomeOverrides, year, m)
		budgeted := budgetedFor(ds.Expenses, ds.ExpenseOverrides, year, m)
		out = append(out, AnnualRow{
			Month:    m,
			Label:    core.MonthLabel(m),
			Income:   income,
			Budgeted: budgeted,
			Actual:   actualFor(ds.Payments, year, m),
			Balance:  income.Sub(budgeted),
		})
	}
	return out
}

// ProjectBalance rolls the starting balance forward by the budgeted net
// of each month in [fromMonth, toMonth]. Payments are never consulted;
// a month where everything is already paid still projects its full
// budgeted expense.
func ProjectBalance(ds *core.Dataset, start core.Money, year, fromMonth, toMonth int) core.Money {
	balance := start
	for m := fromMonth; m <= toMonth; m++ {
		income := budgetedFor(ds.Incomes, ds.IncomeOverrides, year, m)
		budgeted := budgetedFor(ds.Expenses, ds.ExpenseOverrides, year, m)
		balance = balance.Add(income.Sub(budgeted))
	}
	return balance
}

// PendingItems lists the expenses due in a month that carry a nonzero
// budgeted amount and have no payment yet, ordered by category then
// name for stable display.
func PendingItems(ds *core.Dataset, year, month int) []PendingItem {
	var out []PendingItem
	for _, it := range ds.Expenses {
		if !dueIn(it, year, month) {
			continue
		}
		amount := AmountFor(ds.ExpenseOverrides, it.ID, year, month)
		if amount.IsZero() {
			continue
		}
		if IsPaid(ds.Payments, it.ID, year, month) {
			continue
		}
		out = append(out, PendingItem{Item: it, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Item, out[j].Item
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Name < b.Name
	})
	return out
}

func dueIn(item core.Item, year, month int) bool {
	for _, p := range DuePeriods(item, core.Period{Year: year, Month: month}) {
		if p.Year == year && p.Month == month {
			return true
		}
	}
	return false
}
