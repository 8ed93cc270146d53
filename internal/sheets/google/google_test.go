package google

import (
	"context"
	"testing"

	"ordenate/internal/core"
)

func TestNewClientMissingSpreadsheetID(t *testing.T) {
	_, err := NewClient(context.Background(), "", "", "{}")
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
}

func TestNewClientMissingCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), "sheet-id", "", "")
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
}

func TestBuildSnapshotValues(t *testing.T) {
	ds := &core.Dataset{
		Expenses: []core.Item{
			{ID: 1, Name: "Arriendo", Category: "Hogar", Periodicity: core.Monthly},
		},
		Incomes: []core.Item{
			{ID: 1, Name: "Sueldo", Periodicity: core.Monthly},
		},
		ExpenseOverrides: []core.Override{
			{ItemID: 1, Year: 2025, Month: 1, Amount: core.Money{Cents: 50000000}},
		},
		IncomeOverrides: []core.Override{
			{ItemID: 1, Year: 2025, Month: 1, Amount: core.Money{Cents: 150000000}},
		},
	}

	values := buildSnapshotValues("maria", ds, 2025)

	if len(values) == 0 {
		t.Fatal("expected rows")
	}
	if values[0][0] != "Presupuesto 2025" || values[0][1] != "maria" {
		t.Errorf("title row = %v", values[0])
	}
	if values[2][0] != "Mes" {
		t.Errorf("summary header = %v", values[2])
	}
	// 12 summary rows follow the header.
	if values[3][0] != "Enero" || values[14][0] != "Diciembre" {
		t.Errorf("summary rows = %v .. %v", values[3][0], values[14][0])
	}

	// Expense table follows with its own header and one row.
	var foundExpenses, foundIncomes bool
	for _, row := range values {
		if len(row) > 0 && row[0] == "Gastos" {
			foundExpenses = true
		}
		if len(row) > 0 && row[0] == "Ingresos" && len(row) > 5 {
			foundIncomes = true
		}
	}
	if !foundExpenses || !foundIncomes {
		t.Errorf("expected Gastos and Ingresos tables, got expenses=%v incomes=%v", foundExpenses, foundIncomes)
	}
}
