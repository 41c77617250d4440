package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ChargeMode selects how an add-on charge (client repair fee, legal fee) is
// expressed. The mode is an explicit exclusive choice: a charge is either a
// percentage of the net amount or a fixed override, never both.
type ChargeMode string

const (
	ChargeModePercent ChargeMode = "PERCENT"
	ChargeModeFixed   ChargeMode = "FIXED"
)

var (
	ErrUnknownChargeMode = errors.New("unknown charge mode")
	ErrNegativeCharge    = errors.New("charge value cannot be negative")
)

// Charge is a single add-on charge with one mode and one value.
type Charge struct {
	Mode  ChargeMode      `json:"mode"`
	Value decimal.Decimal `json:"value"`
}

// Resolve computes the charge amount against a net base. Percent charges are
// Value percent of net; fixed charges ignore the base entirely.
func (c Charge) Resolve(net decimal.Decimal) (decimal.Decimal, error) {
	if c.Value.IsNegative() {
		return decimal.Zero, ErrNegativeCharge
	}
	switch c.Mode {
	case ChargeModePercent:
		return net.Mul(c.Value).Div(decimal.NewFromInt(100)), nil
	case ChargeModeFixed:
		return c.Value, nil
	default:
		return decimal.Zero, ErrUnknownChargeMode
	}
}
