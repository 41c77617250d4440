package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/taxiops-finance-core/internal/domain/shared"
)

// Round2 rounds a value to two decimal places, the currency minor unit.
// It is applied at exactly two points: display formatting and payment-status
// comparison. Everything in between stays unrounded.
func Round2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// PaymentResolution is the derived partial-payment state of a payable record.
type PaymentResolution struct {
	Remaining decimal.Decimal      `json:"remaining"`
	Status    shared.PaymentStatus `json:"status"`
}

// ResolvePaymentStatus derives unpaid/partially_paid/paid from total owed vs.
// cumulative paid. Both operands are rounded to cents before comparison so
// floating-point noise near the boundary cannot produce a phantom
// partially_paid state.
func ResolvePaymentStatus(total, paid decimal.Decimal) PaymentResolution {
	roundedTotal := Round2(total)
	roundedPaid := Round2(paid)

	res := PaymentResolution{Remaining: roundedTotal.Sub(roundedPaid)}
	switch {
	case roundedPaid.GreaterThanOrEqual(roundedTotal):
		res.Status = shared.PaymentStatusPaid
	case roundedPaid.IsZero():
		res.Status = shared.PaymentStatusUnpaid
	default:
		res.Status = shared.PaymentStatusPartiallyPaid
	}
	return res
}

// RoundingDiscrepancyError signals that a record's stored total disagrees with
// the sum of its lines or payments by more than one minor currency unit.
// It is a data-integrity warning, not a fatal failure; callers log it and
// must not silently correct the stored value.
type RoundingDiscrepancyError struct {
	Stored  decimal.Decimal
	Derived decimal.Decimal
}

func (e RoundingDiscrepancyError) Error() string {
	return fmt.Sprintf("stored total %s disagrees with derived total %s beyond one minor unit",
		e.Stored.StringFixed(2), e.Derived.StringFixed(2))
}

var oneCent = decimal.New(1, -2)

// CheckDerivedTotal compares a stored total against a derived one and returns
// a RoundingDiscrepancyError when they differ by more than one cent.
func CheckDerivedTotal(stored, derived decimal.Decimal) error {
	if Round2(stored).Sub(Round2(derived)).Abs().GreaterThan(oneCent) {
		return RoundingDiscrepancyError{Stored: stored, Derived: derived}
	}
	return nil
}
