package payable

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taxiops-finance-core/internal/domain/money"
	"github.com/taxiops-finance-core/internal/domain/shared"
)

// Common errors
var (
	ErrNonPositiveTotal   = errors.New("payable total must be positive")
	ErrNonPositivePayment = errors.New("payment amount must be positive")
	ErrOverpayment        = errors.New("payment exceeds remaining amount")
)

// Kind distinguishes the payable flavours; they are structurally identical
// for the finance core.
type Kind string

const (
	KindInvoice        Kind = "INVOICE"
	KindMaintenanceLog Kind = "MAINTENANCE_LOG"
	KindVDFinance      Kind = "VD_FINANCE"
)

// Payment is one partial payment against a payable record
type Payment struct {
	ID        uuid.UUID       `json:"id" bson:"id"`
	Amount    decimal.Decimal `json:"amount" bson:"amount"`
	Date      time.Time       `json:"date" bson:"date"`
	Method    string          `json:"method,omitempty" bson:"method,omitempty"`
	Reference string          `json:"reference,omitempty" bson:"reference,omitempty"`
}

// Record is an amount owed with partial-payment tracking. PaidAmount,
// RemainingAmount and PaymentStatus are derived from the payments list and
// recomputed on every mutation.
type Record struct {
	ID              uuid.UUID            `json:"id" bson:"_id"`
	Kind            Kind                 `json:"kind" bson:"kind"`
	Reference       string               `json:"reference,omitempty" bson:"reference,omitempty"`
	Amount          decimal.Decimal      `json:"amount" bson:"amount"`
	PaidAmount      decimal.Decimal      `json:"paid_amount" bson:"paid_amount"`
	RemainingAmount decimal.Decimal      `json:"remaining_amount" bson:"remaining_amount"`
	PaymentStatus   shared.PaymentStatus `json:"payment_status" bson:"payment_status"`
	Payments        []Payment            `json:"payments" bson:"payments"`
	CreatedAt       time.Time            `json:"created_at" bson:"created_at"`
	CreatedBy       shared.Actor         `json:"created_by" bson:"created_by"`
	UpdatedAt       time.Time            `json:"updated_at" bson:"updated_at"`
	UpdatedBy       shared.Actor         `json:"updated_by" bson:"updated_by"`
}

// NewRecord creates an unpaid payable record
func NewRecord(kind Kind, reference string, amount decimal.Decimal, actor shared.Actor) (*Record, error) {
	if !amount.IsPositive() {
		return nil, ErrNonPositiveTotal
	}

	now := time.Now()
	rec := &Record{
		ID:        uuid.New(),
		Kind:      kind,
		Reference: reference,
		Amount:    amount,
		CreatedAt: now,
		CreatedBy: actor,
		UpdatedAt: now,
		UpdatedBy: actor,
	}
	rec.recompute()
	return rec, nil
}

// AddPayment appends a payment and recomputes the derived fields. Payments
// past the remaining amount are rejected, so RemainingAmount never goes
// negative.
func (r *Record) AddPayment(amount decimal.Decimal, date time.Time, method, reference string, actor shared.Actor) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, ErrNonPositivePayment
	}
	if money.Round2(amount).GreaterThan(money.Round2(r.RemainingAmount)) {
		return nil, ErrOverpayment
	}

	p := Payment{
		ID:        uuid.New(),
		Amount:    amount,
		Date:      date,
		Method:    method,
		Reference: reference,
	}
	r.Payments = append(r.Payments, p)
	r.UpdatedAt = time.Now()
	r.UpdatedBy = actor
	r.recompute()
	return &p, nil
}

// RemovePayment deletes a payment by id and recomputes paid/remaining/status
func (r *Record) RemovePayment(paymentID uuid.UUID, actor shared.Actor) error {
	for i, p := range r.Payments {
		if p.ID == paymentID {
			r.Payments = append(r.Payments[:i], r.Payments[i+1:]...)
			r.UpdatedAt = time.Now()
			r.UpdatedBy = actor
			r.recompute()
			return nil
		}
	}
	return ErrPaymentNotFound{PaymentID: paymentID}
}

// CheckIntegrity compares the stored paid amount with the sum of payments,
// returning a money.RoundingDiscrepancyError when they drift beyond one cent.
func (r *Record) CheckIntegrity() error {
	sum := decimal.Zero
	for _, p := range r.Payments {
		sum = sum.Add(p.Amount)
	}
	return money.CheckDerivedTotal(r.PaidAmount, sum)
}

func (r *Record) recompute() {
	paid := decimal.Zero
	for _, p := range r.Payments {
		paid = paid.Add(p.Amount)
	}
	r.PaidAmount = paid

	res := money.ResolvePaymentStatus(r.Amount, paid)
	r.RemainingAmount = res.Remaining
	r.PaymentStatus = res.Status
}
