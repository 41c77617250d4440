package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quoteRequest(t *testing.T, req CostQuoteRequest) *httptest.ResponseRecorder {
	t.Helper()
	handler := NewCostsHandler(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	router := setupTestRouter()
	router.POST("/costs/quote", handler.Quote)

	body, err := json.Marshal(req)
	require.NoError(t, err)

	httpReq, _ := http.NewRequest(http.MethodPost, "/costs/quote", bytes.NewBuffer(body))
	httpReq.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httpReq)
	return rr
}

func TestCostsHandler_Quote(t *testing.T) {
	t.Run("BreakdownWithLaborAndVAT", func(t *testing.T) {
		rr := quoteRequest(t, CostQuoteRequest{
			Lines: []CostLineDTO{
				{Description: "brake pads", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(40), IncludeVAT: true},
				{Description: "towing", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(35)},
			},
			LaborHours:       decimal.NewFromInt(3),
			LaborRate:        decimal.NewFromInt(50),
			LaborIncludesVAT: true,
		})

		assert.Equal(t, http.StatusOK, rr.Code)
		quote := decodeData[CostQuoteResponse](t, rr.Body.Bytes())
		assert.Equal(t, "265.00", quote.NetAmount)
		assert.Equal(t, "46.00", quote.VATAmount)
		assert.Equal(t, "311.00", quote.TotalAmount)
		assert.Equal(t, "131.00", quote.PartsTotal)
		assert.Equal(t, "180.00", quote.LaborTotal)
		assert.Equal(t, "311.00", quote.GrandTotal)
	})

	t.Run("PercentAndFixedCharges", func(t *testing.T) {
		rr := quoteRequest(t, CostQuoteRequest{
			Lines: []CostLineDTO{
				{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(200)},
			},
			Charges: []ChargeDTO{
				{Description: "client fee", Mode: "PERCENT", Value: decimal.NewFromInt(15)},
				{Description: "legal fee", Mode: "FIXED", Value: decimal.NewFromFloat(49.90)},
			},
		})

		assert.Equal(t, http.StatusOK, rr.Code)
		quote := decodeData[CostQuoteResponse](t, rr.Body.Bytes())
		require.Len(t, quote.Charges, 2)
		assert.Equal(t, "30.00", quote.Charges[0].Amount)
		assert.Equal(t, "49.90", quote.Charges[1].Amount)
		assert.Equal(t, "279.90", quote.GrandTotal)
	})

	t.Run("NegativeQuantityIsUnprocessable", func(t *testing.T) {
		rr := quoteRequest(t, CostQuoteRequest{
			Lines: []CostLineDTO{
				{Quantity: decimal.NewFromInt(-1), UnitPrice: decimal.NewFromInt(10)},
			},
		})

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("NegativeLaborIsUnprocessable", func(t *testing.T) {
		rr := quoteRequest(t, CostQuoteRequest{
			LaborHours: decimal.NewFromInt(-1),
			LaborRate:  decimal.NewFromInt(50),
		})

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("NegativeChargeIsUnprocessable", func(t *testing.T) {
		rr := quoteRequest(t, CostQuoteRequest{
			Lines: []CostLineDTO{
				{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100)},
			},
			Charges: []ChargeDTO{
				{Mode: "FIXED", Value: decimal.NewFromInt(-5)},
			},
		})

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})
}
