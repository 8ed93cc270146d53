package core

import (
	"errors"
	"strings"
)

const (
	// Periodicity values are stored verbatim, matching the historical
	// spreadsheet data ("Mensual"/"Anual").
	Monthly Periodicity = "Mensual"
	Annual  Periodicity = "Anual"

	// StatusPaid is the only payment status the system writes today.
	StatusPaid = "Pagado"
)

type (
	Periodicity string

	// Item is a recurring budget entry. Expenses and incomes share the
	// shape; incomes simply carry no category.
	Item struct {
		ID          int64
		Name        string
		Category    string
		BaseAmount  Money
		Periodicity Periodicity
		// PaymentDay is the anchor day for Monthly items (1-31). It is
		// advisory metadata used to default payment dates, never a gate
		// for dueness.
		PaymentDay int
		// PaymentDate is the anchor date for Annual items; its month
		// decides which calendar month the item is due in.
		PaymentDate Date
		ValidFrom   Date
		ValidTo     Date
	}

	// Override is the budgeted amount for one item in one period. Once
	// overrides exist they are the sole source of per-month budgeted
	// amounts; an absent row means zero, not BaseAmount.
	Override struct {
		ItemID int64
		Year   int
		Month  int
		Amount Money
	}

	// Payment records an actual expense payment. At most one payment per
	// (item, calendar month).
	Payment struct {
		ID     int64
		ItemID int64
		Amount Money
		PaidOn Date
		Status string
	}

	// Account is the singleton current-balance record, overwritten
	// wholesale on save.
	Account struct {
		Balance Money
	}

	// Dataset is the full snapshot for one user, the unit the storage
	// collaborator loads and saves. Version counts in-memory mutations
	// and keys derived-table memoization; it is not persisted.
	Dataset struct {
		Expenses         []Item
		Incomes          []Item
		Payments         []Payment
		ExpenseOverrides []Override
		IncomeOverrides  []Override
		Account          Account
		Comment          string
		Version          int64
	}
)

var (
	ErrEmptyName          = errors.New("empty name")
	ErrInvalidPeriodicity = errors.New("invalid periodicity")
	ErrInvalidDay         = errors.New("invalid payment day")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrMissingAnchorDate  = errors.New("annual item needs a payment date")
)

func (p Periodicity) Valid() bool {
	return p == Monthly || p == Annual
}

func (it Item) Validate() error {
	if strings.TrimSpace(it.Name) == "" {
		return ErrEmptyName
	}
	if !it.Periodicity.Valid() {
		return ErrInvalidPeriodicity
	}
	if it.BaseAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	switch it.Periodicity {
	case Monthly:
		if it.PaymentDay != 0 && (it.PaymentDay < 1 || it.PaymentDay > 31) {
			return ErrInvalidDay
		}
	case Annual:
		if it.PaymentDate.IsZero() {
			return ErrMissingAnchorDate
		}
	}
	return nil
}

// NextItemID returns max(ID)+1 over the given items, starting at 1.
func NextItemID(items []Item) int64 {
	var max int64
	for _, it := range items {
		if it.ID > max {
			max = it.ID
		}
	}
	return max + 1
}

// NextPaymentID returns max(ID)+1 over the given payments, starting at 1.
func NextPaymentID(payments []Payment) int64 {
	var max int64
	for _, p := range payments {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}

// FindItem returns the item with the given id, or nil.
func FindItem(items []Item, id int64) *Item {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}

// Touch bumps the dataset version after a mutation so memoized derived
// tables are invalidated.
func (d *Dataset) Touch() {
	d.Version++
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	out := *d
	out.Expenses = append([]Item(nil), d.Expenses...)
	out.Incomes = append([]Item(nil), d.Incomes...)
	out.Payments = append([]Payment(nil), d.Payments...)
	out.ExpenseOverrides = append([]Override(nil), d.ExpenseOverrides...)
	out.IncomeOverrides = append([]Override(nil), d.IncomeOverrides...)
	return &out
}
