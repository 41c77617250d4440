package ledgerbook

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taxiops-finance-core/internal/domain/shared"
)

// Entry is one row of a running-balance ledger: petty cash movements and
// profit-split history both use this shape.
type Entry struct {
	ID             uuid.UUID       `json:"id" bson:"_id"`
	Date           time.Time       `json:"date" bson:"date"`
	Description    string          `json:"description,omitempty" bson:"description,omitempty"`
	AmountIn       decimal.Decimal `json:"amount_in" bson:"amount_in"`
	AmountOut      decimal.Decimal `json:"amount_out" bson:"amount_out"`
	RunningBalance decimal.Decimal `json:"running_balance" bson:"-"`
	CreatedAt      time.Time       `json:"created_at" bson:"created_at"`
	CreatedBy      shared.Actor    `json:"created_by" bson:"created_by"`
}

// Signed returns the entry's net movement, in minus out.
func (e Entry) Signed() decimal.Decimal {
	return e.AmountIn.Sub(e.AmountOut)
}
