package payable

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages payable record persistence with the embedded payments
// list stored alongside the record.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByKind(ctx context.Context, kind Kind, limit, offset int) ([]*Record, error)
	CountByKind(ctx context.Context, kind Kind) (int64, error)
}

// ErrRecordNotFound indicates missing payable record
type ErrRecordNotFound struct {
	RecordID uuid.UUID
}

func (e ErrRecordNotFound) Error() string {
	return "payable record not found: " + e.RecordID.String()
}

// Is matches any ErrRecordNotFound when the target carries a nil ID
func (e ErrRecordNotFound) Is(target error) bool {
	t, ok := target.(ErrRecordNotFound)
	if !ok {
		return false
	}
	if t.RecordID == uuid.Nil {
		return true
	}
	return e.RecordID == t.RecordID
}

// ErrPaymentNotFound indicates a payment id that is not on the record
type ErrPaymentNotFound struct {
	PaymentID uuid.UUID
}

func (e ErrPaymentNotFound) Error() string {
	return "payment not found: " + e.PaymentID.String()
}

// Is matches any ErrPaymentNotFound when the target carries a nil ID
func (e ErrPaymentNotFound) Is(target error) bool {
	t, ok := target.(ErrPaymentNotFound)
	if !ok {
		return false
	}
	if t.PaymentID == uuid.Nil {
		return true
	}
	return e.PaymentID == t.PaymentID
}
