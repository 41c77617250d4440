package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/taxiops-finance-core/internal/domain/money"
)

// CostsHandler computes cost breakdowns. It is stateless: quotes are pure
// arithmetic over the request and nothing is persisted.
type CostsHandler struct {
	logger *slog.Logger
}

// NewCostsHandler creates a new costs handler
func NewCostsHandler(logger *slog.Logger) *CostsHandler {
	return &CostsHandler{logger: logger}
}

// Quote computes the net/VAT/gross breakdown for itemised lines plus labor,
// then resolves any add-on charges against the net amount
func (h *CostsHandler) Quote(c *gin.Context) {
	var req CostQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	lines := make([]money.CostLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, money.CostLine{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			IncludeVAT:  l.IncludeVAT,
		})
	}

	if err := money.ValidateLines(lines); err != nil {
		RespondUnprocessable(c, err.Error())
		return
	}
	if req.LaborHours.IsNegative() || req.LaborRate.IsNegative() {
		RespondUnprocessable(c, "labor hours and rate cannot be negative")
		return
	}

	breakdown := money.CalculateCosts(lines, req.LaborHours, req.LaborRate, req.LaborIncludesVAT)

	charges := make([]ChargeQuote, 0, len(req.Charges))
	grandTotal := breakdown.TotalAmount
	for _, chg := range req.Charges {
		amount, err := money.Charge{Mode: money.ChargeMode(chg.Mode), Value: chg.Value}.Resolve(breakdown.NetAmount)
		if err != nil {
			if errors.Is(err, money.ErrNegativeCharge) || errors.Is(err, money.ErrUnknownChargeMode) {
				RespondUnprocessable(c, err.Error())
				return
			}
			h.logger.Error("Failed to resolve charge", "error", err)
			RespondInternalError(c)
			return
		}
		charges = append(charges, ChargeQuote{
			Description: chg.Description,
			Mode:        chg.Mode,
			Amount:      money.Round2(amount).StringFixed(2),
		})
		grandTotal = grandTotal.Add(amount)
	}

	RespondOK(c, CostQuoteResponse{
		NetAmount:   money.Round2(breakdown.NetAmount).StringFixed(2),
		VATAmount:   money.Round2(breakdown.VATAmount).StringFixed(2),
		TotalAmount: money.Round2(breakdown.TotalAmount).StringFixed(2),
		PartsTotal:  money.Round2(breakdown.PartsTotal).StringFixed(2),
		LaborTotal:  money.Round2(breakdown.LaborTotal).StringFixed(2),
		Charges:     charges,
		GrandTotal:  money.Round2(grandTotal).StringFixed(2),
	})
}
