package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taxiops-finance-core/internal/domain/shared"
)

// Common errors
var (
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrNoResolvableSide  = errors.New("at least one side must reference an internal account")
	ErrMissingDate       = errors.New("transaction date is required")
	ErrCurrencyMismatch  = errors.New("transfer accounts must share a currency")
	ErrUnknownType       = errors.New("transaction type could not be determined")
)

// PartyRef names one side of a transaction: either an internal account, a
// free-text external party, or absent.
type PartyRef struct {
	AccountID *uuid.UUID `json:"account_id,omitempty"`
	External  string     `json:"external,omitempty"`
}

// Internal reports whether the ref points at a tracked account
func (r PartyRef) Internal() bool {
	return r.AccountID != nil && *r.AccountID != uuid.Nil
}

// Absent reports whether neither an account nor an external label is set
func (r PartyRef) Absent() bool {
	return !r.Internal() && r.External == ""
}

// InternalRef builds a ref to a tracked account
func InternalRef(id uuid.UUID) PartyRef {
	return PartyRef{AccountID: &id}
}

// ExternalRef builds a ref to a named external party
func ExternalRef(label string) PartyRef {
	return PartyRef{External: label}
}

// Transaction is a single monetary movement. Amount is always stored
// non-negative; direction is expressed entirely through Type and the
// from/to refs.
type Transaction struct {
	ID               uuid.UUID                `json:"id"`
	Type             shared.TransactionType   `json:"type"`
	Amount           decimal.Decimal          `json:"amount"`
	Date             time.Time                `json:"date"`
	Category         string                   `json:"category,omitempty"`
	Description      string                   `json:"description,omitempty"`
	AccountFrom      PartyRef                 `json:"account_from"`
	AccountTo        PartyRef                 `json:"account_to"`
	PaymentMethod    string                   `json:"payment_method,omitempty"`
	PaymentReference string                   `json:"payment_reference,omitempty"`
	PaymentStatus    shared.PaymentStatus     `json:"payment_status,omitempty"`
	Status           shared.TransactionStatus `json:"status"`
	Deleted          bool                     `json:"deleted"`
	CreatedAt        time.Time                `json:"created_at"`
	CreatedBy        shared.Actor             `json:"created_by"`
	UpdatedAt        time.Time                `json:"updated_at"`
	UpdatedBy        shared.Actor             `json:"updated_by"`
}

// Classify derives the transaction type from which sides resolve to internal
// accounts. Both internal means transfer, only the receiving side means
// income, only the paying side means expense. When both parties are external
// no balance effect is possible and the caller-supplied fallback is used.
func Classify(from, to PartyRef, fallback shared.TransactionType) shared.TransactionType {
	fromInternal := from.Internal()
	toInternal := to.Internal()

	switch {
	case fromInternal && toInternal:
		return shared.TransactionTypeTransfer
	case toInternal:
		return shared.TransactionTypeIncome
	case fromInternal:
		return shared.TransactionTypeExpense
	default:
		return fallback
	}
}

// Validate rejects drafts before any balance mutation: the amount must be
// positive and at least one side must be resolvable (internal or external).
func (t *Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if t.AccountFrom.Absent() && t.AccountTo.Absent() {
		return ErrNoResolvableSide
	}
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// HasBalanceEffect reports whether applying this transaction moves any
// internal balance.
func (t *Transaction) HasBalanceEffect() bool {
	return t.AccountFrom.Internal() || t.AccountTo.Internal()
}
