// Package money holds the pure calculation primitives of the finance core:
// VAT-aware cost breakdowns, payment-status resolution and rounding rules.
// Nothing in this package touches storage or performs I/O, so every function
// is safe for any number of concurrent callers.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// VATRate is the fixed VAT rate applied to lines flagged as VAT-inclusive.
var VATRate = decimal.NewFromFloat(0.20)

var (
	ErrNegativeQuantity  = errors.New("line quantity cannot be negative")
	ErrNegativeUnitPrice = errors.New("line unit price cannot be negative")
	ErrNegativeLabor     = errors.New("labor hours and rate cannot be negative")
)

// CostLine is a single itemised line: a part, an expense item or a
// VAT description row.
type CostLine struct {
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	IncludeVAT  bool            `json:"include_vat"`
}

// Total returns quantity x unit price, grossed up by VAT when flagged.
func (l CostLine) Total() decimal.Decimal {
	net := l.Quantity.Mul(l.UnitPrice)
	if l.IncludeVAT {
		return net.Add(net.Mul(VATRate))
	}
	return net
}

// CostBreakdown is the result of CalculateCosts. All values are exact sums;
// rounding happens only at display time.
type CostBreakdown struct {
	NetAmount   decimal.Decimal `json:"net_amount"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PartsTotal  decimal.Decimal `json:"parts_total"`
	LaborTotal  decimal.Decimal `json:"labor_total"`
}

// ValidateLines rejects lines with negative quantities or unit prices.
// CalculateCosts itself does not clamp; callers validate first.
func ValidateLines(lines []CostLine) error {
	for _, line := range lines {
		if line.Quantity.IsNegative() {
			return ErrNegativeQuantity
		}
		if line.UnitPrice.IsNegative() {
			return ErrNegativeUnitPrice
		}
	}
	return nil
}

// CalculateCosts turns itemised lines plus labor into a net/VAT/gross
// breakdown. The computation is a plain sum over the inputs, so calculating
// over a concatenation of two line lists equals the sum of calculating over
// each list separately.
func CalculateCosts(lines []CostLine, laborHours, laborRate decimal.Decimal, laborIncludesVAT bool) CostBreakdown {
	partsNet := decimal.Zero
	partsVAT := decimal.Zero
	for _, line := range lines {
		lineNet := line.Quantity.Mul(line.UnitPrice)
		partsNet = partsNet.Add(lineNet)
		if line.IncludeVAT {
			partsVAT = partsVAT.Add(lineNet.Mul(VATRate))
		}
	}

	laborNet := laborHours.Mul(laborRate)
	laborVAT := decimal.Zero
	if laborIncludesVAT {
		laborVAT = laborNet.Mul(VATRate)
	}

	net := partsNet.Add(laborNet)
	vat := partsVAT.Add(laborVAT)

	return CostBreakdown{
		NetAmount:   net,
		VATAmount:   vat,
		TotalAmount: net.Add(vat),
		PartsTotal:  partsNet.Add(partsVAT),
		LaborTotal:  laborNet.Add(laborVAT),
	}
}
