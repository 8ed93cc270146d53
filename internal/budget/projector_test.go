package budget

import (
	"testing"

	"ordenate/internal/core"
)

// planDataset builds a dataset with one income of 50 units and one
// expense of 30 units budgeted for every month of 2025.
func planDataset() *core.Dataset {
	ds := &core.Dataset{
		Expenses: []core.Item{{ID: 1, Name: "Arriendo", Category: "Hogar", Periodicity: core.Monthly}},
		Incomes:  []core.Item{{ID: 1, Name: "Sueldo", Periodicity: core.Monthly}},
	}
	for m := 1; m <= 12; m++ {
		ds.ExpenseOverrides = append(ds.ExpenseOverrides, core.Override{
			ItemID: 1, Year: 2025, Month: m, Amount: core.Money{Cents: 3000},
		})
		ds.IncomeOverrides = append(ds.IncomeOverrides, core.Override{
			ItemID: 1, Year: 2025, Month: m, Amount: core.Money{Cents: 5000},
		})
	}
	return ds
}

func TestProjectBalance(t *testing.T) {
	ds := planDataset()

	// 100 + 7 months of (50 - 30) net = 240.
	got := ProjectBalance(ds, core.Money{Cents: 10000}, 2025, 6, 12)
	if got.Cents != 24000 {
		t.Errorf("got %d, want 24000", got.Cents)
	}
}

func TestProjectBalanceIgnoresPayments(t *testing.T) {
	ds := planDataset()
	ds.Payments = []core.Payment{
		{ID: 1, ItemID: 1, Amount: core.Money{Cents: 3000}, PaidOn: core.NewDate(2025, 6, 5), Status: core.StatusPaid},
	}

	got := ProjectBalance(ds, core.Money{Cents: 10000}, 2025, 6, 12)
	if got.Cents != 24000 {
		t.Errorf("paid months must still project full budget: got %d, want 24000", got.Cents)
	}
}

func TestSummarize(t *testing.T) {
	ds := planDataset()
	ds.Payments = []core.Payment{
		{ID: 1, ItemID: 1, Amount: core.Money{Cents: 1000}, PaidOn: core.NewDate(2025, 6, 5), Status: core.StatusPaid},
	}

	s := Summarize(ds, 2025, 6)
	if s.Budgeted.Cents != 3000 {
		t.Errorf("budgeted = %d, want 3000", s.Budgeted.Cents)
	}
	if s.Actual.Cents != 1000 {
		t.Errorf("actual = %d, want 1000", s.Actual.Cents)
	}
	if s.Pending.Cents != 2000 {
		t.Errorf("pending = %d, want 2000", s.Pending.Cents)
	}
}

func TestSummarizePendingNeverNegative(t *testing.T) {
	ds := planDataset()
	ds.Payments = []core.Payment{
		{ID: 1, ItemID: 1, Amount: core.Money{Cents: 9000}, PaidOn: core.NewDate(2025, 6, 5), Status: core.StatusPaid},
	}

	s := Summarize(ds, 2025, 6)
	if !s.Pending.IsZero() {
		t.Errorf("overspent month: pending = %d, want 0", s.Pending.Cents)
	}
}

func TestAnnualSummary(t *testing.T) {
	ds := planDataset()

	rows := AnnualSummary(ds, 2025)
	if len(rows) != 12 {
		t.Fatalf("got %d rows, want 12", len(rows))
	}
	if rows[0].Label != "Enero" || rows[11].Label != "Diciembre" {
		t.Errorf("labels = %q..%q, want Enero..Diciembre", rows[0].Label, rows[11].Label)
	}
	for _, r := range rows {
		if r.Balance.Cents != 2000 {
			t.Errorf("month %d balance = %d, want 2000", r.Month, r.Balance.Cents)
		}
	}
}

func TestPendingItems(t *testing.T) {
	ds := &core.Dataset{
		Expenses: []core.Item{
			{ID: 1, Name: "Luz", Category: "Servicios", Periodicity: core.Monthly},
			{ID: 2, Name: "Arriendo", Category: "Hogar", Periodicity: core.Monthly},
			{ID: 3, Name: "Agua", Category: "Servicios", Periodicity: core.Monthly},
			{ID: 4, Name: "Netflix", Category: "Ocio", Periodicity: core.Monthly},
		},
		ExpenseOverrides: []core.Override{
			{ItemID: 1, Year: 2025, Month: 6, Amount: core.Money{Cents: 4500}},
			{ItemID: 2, Year: 2025, Month: 6, Amount: core.Money{Cents: 50000}},
			{ItemID: 3, Year: 2025, Month: 6, Amount: core.Money{Cents: 3000}},
			// Item 4 has an explicit zero: not pending.
			{ItemID: 4, Year: 2025, Month: 6, Amount: core.Money{}},
		},
		Payments: []core.Payment{
			{ID: 1, ItemID: 3, Amount: core.Money{Cents: 3000}, PaidOn: core.NewDate(2025, 6, 3), Status: core.StatusPaid},
		},
	}

	got := PendingItems(ds, 2025, 6)
	if len(got) != 2 {
		t.Fatalf("got %d pending items, want 2: %+v", len(got), got)
	}
	if got[0].Item.Name != "Arriendo" || got[1].Item.Name != "Luz" {
		t.Errorf("order = %q, %q; want Arriendo, Luz (category then name)", got[0].Item.Name, got[1].Item.Name)
	}
}
