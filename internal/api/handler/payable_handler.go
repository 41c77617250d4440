package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taxiops-finance-core/internal/api/middleware"
	"github.com/taxiops-finance-core/internal/api/service"
	"github.com/taxiops-finance-core/internal/domain/payable"
)

// PayableHandler handles HTTP requests for payable records and their payments
type PayableHandler struct {
	payableService service.PayableService
	logger         *slog.Logger
}

// NewPayableHandler creates a new payable handler
func NewPayableHandler(logger *slog.Logger, payableService service.PayableService) *PayableHandler {
	return &PayableHandler{
		payableService: payableService,
		logger:         logger,
	}
}

// Create records a new payable
func (h *PayableHandler) Create(c *gin.Context) {
	var req CreatePayableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	rec, err := h.payableService.CreateRecord(c.Request.Context(), payable.Kind(req.Kind), req.Reference, req.Amount, middleware.GetActor(c))
	if err != nil {
		if errors.Is(err, payable.ErrNonPositiveTotal) {
			RespondUnprocessable(c, err.Error())
			return
		}
		h.logger.Error("Failed to create payable record", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapPayableToResponse(rec))
}

// GetByID retrieves a payable record with its payment history
func (h *PayableHandler) GetByID(c *gin.Context) {
	id, ok := h.parseRecordID(c)
	if !ok {
		return
	}

	rec, err := h.payableService.GetRecordByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, payable.ErrRecordNotFound{}) {
			RespondNotFound(c, "Payable record not found")
			return
		}
		h.logger.Error("Failed to get payable record", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapPayableToResponse(rec))
}

// List retrieves paginated payable records of one kind
func (h *PayableHandler) List(c *gin.Context) {
	kind := payable.Kind(c.Query("kind"))
	switch kind {
	case payable.KindInvoice, payable.KindMaintenanceLog, payable.KindVDFinance:
	default:
		RespondBadRequest(c, "kind must be one of INVOICE, MAINTENANCE_LOG, VD_FINANCE")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	recs, total, err := h.payableService.ListRecords(c.Request.Context(), kind, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list payable records", "kind", string(kind), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]PayableResponse, 0, len(recs))
	for _, rec := range recs {
		responses = append(responses, mapPayableToResponse(rec))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, pagination.Page, pagination.PerPage, int(total))
}

// Delete removes a payable record and its payment history
func (h *PayableHandler) Delete(c *gin.Context) {
	id, ok := h.parseRecordID(c)
	if !ok {
		return
	}

	if err := h.payableService.DeleteRecord(c.Request.Context(), id); err != nil {
		if errors.Is(err, payable.ErrRecordNotFound{}) {
			RespondNotFound(c, "Payable record not found")
			return
		}
		h.logger.Error("Failed to delete payable record", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

// AddPayment records a partial payment against a payable record
func (h *PayableHandler) AddPayment(c *gin.Context) {
	id, ok := h.parseRecordID(c)
	if !ok {
		return
	}

	var req AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		RespondBadRequest(c, "Invalid date: "+err.Error())
		return
	}

	rec, err := h.payableService.AddPayment(c.Request.Context(), id, req.Amount, date, req.Method, req.Reference, middleware.GetActor(c))
	if err != nil {
		switch {
		case errors.Is(err, payable.ErrRecordNotFound{}):
			RespondNotFound(c, "Payable record not found")
		case errors.Is(err, payable.ErrNonPositivePayment), errors.Is(err, payable.ErrOverpayment):
			RespondUnprocessable(c, err.Error())
		default:
			h.logger.Error("Failed to add payment", "record_id", id.String(), "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, mapPayableToResponse(rec))
}

// RemovePayment deletes a payment from a payable record
func (h *PayableHandler) RemovePayment(c *gin.Context) {
	id, ok := h.parseRecordID(c)
	if !ok {
		return
	}

	paymentIDParam := c.Param("paymentId")
	paymentID, err := uuid.Parse(paymentIDParam)
	if err != nil {
		RespondBadRequest(c, "Invalid payment ID")
		return
	}

	rec, err := h.payableService.RemovePayment(c.Request.Context(), id, paymentID, middleware.GetActor(c))
	if err != nil {
		switch {
		case errors.Is(err, payable.ErrRecordNotFound{}):
			RespondNotFound(c, "Payable record not found")
		case errors.Is(err, payable.ErrPaymentNotFound{}):
			RespondNotFound(c, "Payment not found")
		default:
			h.logger.Error("Failed to remove payment", "record_id", id.String(), "payment_id", paymentIDParam, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, mapPayableToResponse(rec))
}

func (h *PayableHandler) parseRecordID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid payable record ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid payable record ID")
		return uuid.Nil, false
	}
	return id, true
}

// mapPayableToResponse maps a payable record to a response DTO
func mapPayableToResponse(rec *payable.Record) PayableResponse {
	payments := make([]PaymentResponse, 0, len(rec.Payments))
	for _, p := range rec.Payments {
		payments = append(payments, PaymentResponse{
			ID:        p.ID.String(),
			Amount:    p.Amount.StringFixed(2),
			Date:      p.Date.Format(time.DateOnly),
			Method:    p.Method,
			Reference: p.Reference,
		})
	}

	return PayableResponse{
		ID:              rec.ID.String(),
		Kind:            string(rec.Kind),
		Reference:       rec.Reference,
		Amount:          rec.Amount.StringFixed(2),
		PaidAmount:      rec.PaidAmount.StringFixed(2),
		RemainingAmount: rec.RemainingAmount.StringFixed(2),
		PaymentStatus:   string(rec.PaymentStatus),
		Payments:        payments,
		CreatedAt:       rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       rec.UpdatedAt.Format(time.RFC3339),
	}
}
