package budget

import (
	"testing"

	"ordenate/internal/core"
)

func TestBuildYearTable(t *testing.T) {
	items := []core.Item{
		{ID: 1, Name: "Luz", Category: "Casa", Periodicity: core.Monthly},
		{ID: 2, Name: "Agua", Category: "Casa", Periodicity: core.Monthly},
		{ID: 3, Name: "Bencina", Category: "Auto", Periodicity: core.Monthly},
	}
	rows := []core.Override{
		{ItemID: 1, Year: 2025, Month: 1, Amount: core.Money{Cents: 2000000}},
		{ItemID: 1, Year: 2025, Month: 2, Amount: core.Money{Cents: 2100000}},
		{ItemID: 2, Year: 2025, Month: 1, Amount: core.Money{Cents: 1500000}},
		// other years never leak into the table
		{ItemID: 3, Year: 2024, Month: 1, Amount: core.Money{Cents: 9900000}},
	}

	table := BuildYearTable(items, rows, 2025)

	if table.Year != 2025 {
		t.Fatalf("Year = %d, want 2025", table.Year)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(table.Rows))
	}

	// sorted by category then name
	wantOrder := []string{"Bencina", "Agua", "Luz"}
	for i, want := range wantOrder {
		if table.Rows[i].Name != want {
			t.Errorf("row[%d] = %q, want %q", i, table.Rows[i].Name, want)
		}
	}

	var luz YearRow
	for _, row := range table.Rows {
		if row.ItemID == 1 {
			luz = row
		}
	}
	if luz.Amounts[0].Cents != 2000000 || luz.Amounts[1].Cents != 2100000 {
		t.Errorf("luz amounts = %d, %d", luz.Amounts[0].Cents, luz.Amounts[1].Cents)
	}
	if luz.Amounts[2].Cents != 0 {
		t.Errorf("missing override month = %d, want 0", luz.Amounts[2].Cents)
	}
	if luz.Total.Cents != 4100000 {
		t.Errorf("luz total = %d, want 4100000", luz.Total.Cents)
	}

	if table.Totals[0].Cents != 3500000 {
		t.Errorf("january total = %d, want 3500000", table.Totals[0].Cents)
	}
	if table.Totals[11].Cents != 0 {
		t.Errorf("december total = %d, want 0", table.Totals[11].Cents)
	}
}

func TestBuildYearTableActivity(t *testing.T) {
	item := core.Item{
		ID:          1,
		Name:        "Colegio",
		Category:    "Familia",
		Periodicity: core.Monthly,
		ValidFrom:   core.NewDate(2025, 3, 1),
		ValidTo:     core.NewDate(2025, 6, 28),
	}

	table := BuildYearTable([]core.Item{item}, nil, 2025)
	row := table.Rows[0]

	for m := 1; m <= 12; m++ {
		want := m >= 3 && m <= 6
		if row.Active[m-1] != want {
			t.Errorf("month %d active = %v, want %v", m, row.Active[m-1], want)
		}
	}
}
