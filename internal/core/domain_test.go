package core

import (
	"errors"
	"testing"
)

func TestItemValidate(t *testing.T) {
	good := Item{
		ID:          1,
		Name:        "Arriendo",
		Category:    "Hogar",
		BaseAmount:  Money{Cents: 50000000},
		Periodicity: Monthly,
		PaymentDay:  5,
		ValidFrom:   NewDate(2024, 1, 1),
		ValidTo:     NewDate(2024, 12, 31),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name string
		mut  func(*Item)
		want error
	}{
		{"empty name", func(it *Item) { it.Name = "   " }, ErrEmptyName},
		{"bad periodicity", func(it *Item) { it.Periodicity = "Semanal" }, ErrInvalidPeriodicity},
		{"negative amount", func(it *Item) { it.BaseAmount = Money{Cents: -1} }, ErrInvalidAmount},
		{"day out of range", func(it *Item) { it.PaymentDay = 32 }, ErrInvalidDay},
		{"annual without date", func(it *Item) { it.Periodicity = Annual; it.PaymentDate = Date{} }, ErrMissingAnchorDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := good
			tt.mut(&it)
			if err := it.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNextIDs(t *testing.T) {
	if got := NextItemID(nil); got != 1 {
		t.Errorf("NextItemID(nil) = %d, want 1", got)
	}
	items := []Item{{ID: 3}, {ID: 7}, {ID: 5}}
	if got := NextItemID(items); got != 8 {
		t.Errorf("NextItemID = %d, want 8", got)
	}
	pays := []Payment{{ID: 2}, {ID: 9}}
	if got := NextPaymentID(pays); got != 10 {
		t.Errorf("NextPaymentID = %d, want 10", got)
	}
}

func TestDatasetClone(t *testing.T) {
	ds := &Dataset{
		Expenses: []Item{{ID: 1, Name: "Luz"}},
		Payments: []Payment{{ID: 1, ItemID: 1}},
		Comment:  "nota",
	}
	cp := ds.Clone()
	cp.Expenses[0].Name = "Agua"
	cp.Payments = append(cp.Payments, Payment{ID: 2})
	if ds.Expenses[0].Name != "Luz" {
		t.Error("clone shares expense backing array")
	}
	if len(ds.Payments) != 1 {
		t.Error("clone shares payments slice")
	}
}

func TestFindItem(t *testing.T) {
	items := []Item{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}
	if it := FindItem(items, 2); it == nil || it.Name != "b" {
		t.Fatalf("FindItem(2) = %v", it)
	}
	if it := FindItem(items, 99); it != nil {
		t.Fatalf("FindItem(99) = %v, want nil", it)
	}
}
