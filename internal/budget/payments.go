package budget

import "ordenate/internal/core"

// PaymentRequest describes one payment to register for a period. Name
// is carried along only to report skipped duplicates back to the
// caller.
type PaymentRequest struct {
	ItemID int64
	Name   string
	Amount core.Money
	PaidOn core.Date
}

// PaymentForPeriod returns the first payment recorded for the item in
// the given month. Ordering follows the stored slice, so with multiple
// rows for one period the earliest registration wins.
func PaymentForPeriod(payments []core.Payment, itemID int64, year, month int) (core.Payment, bool) {
	for _, p := range payments {
		if p.ItemID != itemID {
			continue
		}
		if p.PaidOn.Year() == year && p.PaidOn.Month() == month {
			return p, true
		}
	}
	return core.Payment{}, false
}

// IsPaid reports whether the item already has a payment in the period.
func IsPaid(payments []core.Payment, itemID int64, year, month int) bool {
	_, ok := PaymentForPeriod(payments, itemID, year, month)
	return ok
}

// NormalizePaymentDate forces a paid-on date into the target period. A
// zero date becomes day 1; a date in another month keeps its day number
// clamped to the target month's length.
func NormalizePaymentDate(year, month int, paidOn core.Date) core.Date {
	if paidOn.IsZero() {
		return core.NewDate(year, month, 1)
	}
	if paidOn.Year() == year && paidOn.Month() == month {
		return paidOn
	}
	return core.NewDate(year, month, core.ClampDay(year, month, paidOn.Day()))
}

// RegisterPayments records a batch of payments for one target period.
// Requests for items already paid in the period are skipped and
// reported by name; the rest get sequential ids and a paid-on date
// normalized into the period.
func RegisterPayments(payments []core.Payment, reqs []PaymentRequest, year, month int) ([]core.Payment, []string) {
	var skipped []string
	nextID := core.NextPaymentID(payments)
	for _, req := range reqs {
		if IsPaid(payments, req.ItemID, year, month) {
			skipped = append(skipped, req.Name)
			continue
		}
		payments = append(payments, core.Payment{
			ID:     nextID,
			ItemID: req.ItemID,
			Amount: req.Amount,
			PaidOn: NormalizePaymentDate(year, month, req.PaidOn),
			Status: core.StatusPaid,
		})
		nextID++
	}
	return payments, skipped
}
