package split

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
	ErrPercentageOverflow  = errors.New("recipient percentages sum to more than 100")
	ErrNegativePercentage  = errors.New("recipient percentage cannot be negative")
	ErrNoRecipients        = errors.New("at least one recipient is required")
	ErrInvalidWindow       = errors.New("window end date cannot precede start date")
	ErrNegativeBalance     = errors.New("distributable balance cannot be negative")
	ErrEmptyRecipientName  = errors.New("recipient name cannot be empty")
)

var hundred = decimal.NewFromInt(100)

// Window is a closed date interval
type Window struct {
	Start time.Time `json:"start" bson:"start"`
	End   time.Time `json:"end" bson:"end"`
}

// Overlaps implements the closed-interval overlap test: two ranges overlap
// unless one ends before the other starts.
func (w Window) Overlaps(other Window) bool {
	return !(other.End.Before(w.Start) || other.Start.After(w.End))
}

// Validate rejects inverted windows
func (w Window) Validate() error {
	if w.End.Before(w.Start) {
		return ErrInvalidWindow
	}
	return nil
}

// Recipient is one named party in a profit distribution
type Recipient struct {
	Name       string          `json:"name" bson:"name"`
	Percentage decimal.Decimal `json:"percentage" bson:"percentage"`
	Amount     decimal.Decimal `json:"amount" bson:"amount"`
}

// Record is a profit distribution over a date window
type Record struct {
	ID               uuid.UUID       `json:"id" bson:"_id"`
	Window           Window          `json:"window" bson:"window"`
	Recipients       []Recipient     `json:"recipients" bson:"recipients"`
	TotalSplitAmount decimal.Decimal `json:"total_split_amount" bson:"total_split_amount"`
	CreatedAt        time.Time       `json:"created_at" bson:"created_at"`
	CreatedBy        shared.Actor    `json:"created_by" bson:"created_by"`
	UpdatedAt        time.Time       `json:"updated_at" bson:"updated_at"`
	UpdatedBy        shared.Actor    `json:"updated_by" bson:"updated_by"`
}

// WindowAmounts are the signed inputs to ComputeBalance: income amounts and
// expense totals already filtered to the window by the caller's repository
// query.
type WindowAmounts struct {
	Income   []decimal.Decimal
	Expenses []decimal.Decimal
}

// ComputeBalance nets window income against window expenses and previously
// allocated splits whose windows overlap this one. An edit excludes the split
// being edited via excludeID. The result is floored at zero: past
// over-allocation never produces a negative distributable balance.
func ComputeBalance(window Window, amounts WindowAmounts, priorSplits []*Record, excludeID uuid.UUID) (decimal.Decimal, error) {
	if err := window.Validate(); err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, amt := range amounts.Income {
		balance = balance.Add(amt)
	}
	for _, amt := range amounts.Expenses {
		balance = balance.Sub(amt)
	}
	for _, prior := range priorSplits {
		if prior.ID == excludeID {
			continue
		}
		if window.Overlaps(prior.Window) {
			balance = balance.Sub(prior.TotalSplitAmount)
		}
	}

	if balance.IsNegative() {
		return decimal.Zero, nil
	}
	return balance, nil
}

// Allocate partitions a distributable balance across recipients by
// percentage. Each share is rounded to two decimals; the total is the sum of
// the rounded shares. Percentages summing over 100 fail validation rather
// than being clamped.
func Allocate(balance decimal.Decimal, recipients []Recipient) ([]Recipient, decimal.Decimal, error) {
	if balance.IsNegative() {
		return nil, decimal.Zero, ErrNegativeBalance
	}
	if len(recipients) == 0 {
		return nil, decimal.Zero, ErrNoRecipients
	}

	totalPct := decimal.Zero
	for _, rec := range recipients {
		if rec.Name == "" {
			return nil, decimal.Zero, ErrEmptyRecipientName
		}
		if rec.Percentage.IsNegative() {
			return nil, decimal.Zero, ErrNegativePercentage
		}
		totalPct = totalPct.Add(rec.Percentage)
	}
	if totalPct.GreaterThan(hundred) {
		return nil, decimal.Zero, ErrPercentageOverflow
	}

	out := make([]Recipient, len(recipients))
	total := decimal.Zero
	for i, rec := range recipients {
		share := money.Round2(balance.Mul(rec.Percentage).Div(hundred))
		out[i] = Recipient{Name: rec.Name, Percentage: rec.Percentage, Amount: share}
		total = total.Add(share)
	}
	return out, total, nil
}
