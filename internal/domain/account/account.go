package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrInvalidDelta          = errors.New("balance delta cannot be zero")
	ErrEmptyName             = errors.New("account name cannot be empty")
	ErrInvalidCurrencyFormat = errors.New("currency must be a 3-letter code")
	ErrAccountReferenced     = errors.New("account is referenced by transactions and cannot be deleted")
)

// Account is a named internal pool of money. Its balance is the signed sum of
// every transaction effect applied to it since creation and is mutated only
// through the effect engine.
type Account struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Currency   string          `json:"currency"`
	Balance    decimal.Decimal `json:"balance"`
	Unverified bool            `json:"unverified"` // set when a reconciliation incident touched this account
	Version    int             `json:"version"`    // For optimistic locking
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewAccount creates a new account with the given parameters
func NewAccount(name string, currency string, openingBalance decimal.Decimal) (*Account, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if len(currency) != 3 { // Basic validation for currency code length
		return nil, ErrInvalidCurrencyFormat
	}

	now := time.Now()
	return &Account{
		ID:        uuid.New(),
		Name:      name,
		Currency:  currency,
		Balance:   openingBalance,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Adjust applies a signed delta to the balance. Balances may go negative;
// sign conventions live entirely in the effect engine.
func (a *Account) Adjust(delta decimal.Decimal) error {
	if delta.IsZero() {
		return ErrInvalidDelta
	}

	a.Balance = a.Balance.Add(delta)
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// MarkUnverified flags the balance as needing manual verification after a
// reconciliation incident.
func (a *Account) MarkUnverified() {
	a.Unverified = true
	a.UpdatedAt = time.Now()
	a.Version++
}

// ClearUnverified removes the verification flag once an operator has replayed
// or confirmed the balance.
func (a *Account) ClearUnverified() {
	a.Unverified = false
	a.UpdatedAt = time.Now()
	a.Version++
}
