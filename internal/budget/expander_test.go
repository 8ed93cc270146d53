package budget

import (
	"testing"

	"ordenate/internal/core"
)

func monthlyItem(from, to core.Date) core.Item {
	return core.Item{
		ID:          1,
		Name:        "Arriendo",
		Category:    "Hogar",
		BaseAmount:  core.Money{Cents: 50000000},
		Periodicity: core.Monthly,
		PaymentDay:  5,
		ValidFrom:   from,
		ValidTo:     to,
	}
}

func TestMonthlyExpanderDuePeriods(t *testing.T) {
	ref := core.Period{Year: 2025, Month: 6}

	tests := []struct {
		name string
		item core.Item
		want []core.Period
	}{
		{
			name: "bounded window",
			item: monthlyItem(core.NewDate(2025, 1, 5), core.NewDate(2025, 3, 5)),
			want: []core.Period{{Year: 2025, Month: 1}, {Year: 2025, Month: 2}, {Year: 2025, Month: 3}},
		},
		{
			name: "no bounds defaults to reference month",
			item: monthlyItem(core.Date{}, core.Date{}),
			want: []core.Period{{Year: 2025, Month: 6}},
		},
		{
			name: "missing end stops at reference month",
			item: monthlyItem(core.NewDate(2025, 4, 1), core.Date{}),
			want: []core.Period{{Year: 2025, Month: 4}, {Year: 2025, Month: 5}, {Year: 2025, Month: 6}},
		},
		{
			name: "year crossing",
			item: monthlyItem(core.NewDate(2024, 11, 1), core.NewDate(2025, 2, 28)),
			want: []core.Period{
				{Year: 2024, Month: 11}, {Year: 2024, Month: 12},
				{Year: 2025, Month: 1}, {Year: 2025, Month: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DuePeriods(tt.item, ref)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d periods, want %d: %v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("period %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAnnualExpanderDuePeriods(t *testing.T) {
	ref := core.Period{Year: 2025, Month: 6}

	item := core.Item{
		ID:          2,
		Name:        "Permiso de circulación",
		Periodicity: core.Annual,
		PaymentDate: core.NewDate(2024, 3, 15),
		ValidFrom:   core.NewDate(2024, 1, 1),
		ValidTo:     core.NewDate(2026, 12, 28),
	}

	got := DuePeriods(item, ref)
	want := []core.Period{{Year: 2024, Month: 3}, {Year: 2025, Month: 3}, {Year: 2026, Month: 3}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("period %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAnnualExpanderWithoutAnchor(t *testing.T) {
	item := core.Item{ID: 3, Name: "Seguro", Periodicity: core.Annual}
	if got := DuePeriods(item, core.Period{Year: 2025, Month: 6}); got != nil {
		t.Errorf("expected no periods without anchor date, got %v", got)
	}
}

func TestUnknownPeriodicityExpandsAsMonthly(t *testing.T) {
	item := monthlyItem(core.NewDate(2025, 1, 1), core.NewDate(2025, 2, 28))
	item.Periodicity = core.Periodicity("Semanal")
	got := DuePeriods(item, core.Period{Year: 2025, Month: 6})
	if len(got) != 2 {
		t.Errorf("got %v, want 2 monthly periods", got)
	}
}

func TestGetExpander(t *testing.T) {
	if _, err := GetExpander(core.Monthly); err != nil {
		t.Errorf("monthly: unexpected error %v", err)
	}
	if _, err := GetExpander(core.Periodicity("Semanal")); err == nil {
		t.Error("expected error for unknown periodicity")
	}
}

func TestActiveInMonth(t *testing.T) {
	tests := []struct {
		name  string
		from  core.Date
		to    core.Date
		year  int
		month int
		want  bool
	}{
		{"inside window", core.NewDate(2025, 1, 1), core.NewDate(2025, 12, 28), 2025, 6, true},
		{"before window", core.NewDate(2025, 6, 1), core.NewDate(2025, 12, 28), 2025, 5, false},
		{"after window", core.NewDate(2025, 1, 1), core.NewDate(2025, 5, 28), 2025, 6, false},
		{"no bounds always active", core.Date{}, core.Date{}, 2025, 6, true},
		{"starts on boundary day 28", core.NewDate(2025, 6, 28), core.NewDate(2025, 12, 28), 2025, 6, true},
		// Day 29-31 starts fall past the day-28 sentinel and read as
		// inactive in their own first month. Known historical behavior.
		{"starts on day 30 misses own month", core.NewDate(2025, 6, 30), core.NewDate(2025, 12, 28), 2025, 6, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := monthlyItem(tt.from, tt.to)
			if got := ActiveInMonth(item, tt.year, tt.month); got != tt.want {
				t.Errorf("ActiveInMonth(%d, %d) = %v, want %v", tt.year, tt.month, got, tt.want)
			}
		})
	}
}
