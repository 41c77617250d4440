package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taxiops-finance-core/internal/api/middleware"
	"github.com/taxiops-finance-core/internal/api/service"
	"github.com/taxiops-finance-core/internal/domain/ledgerbook"
)

// PettyCashHandler handles HTTP requests for the petty cash ledger
type PettyCashHandler struct {
	pettyCashService service.PettyCashService
	logger           *slog.Logger
}

// NewPettyCashHandler creates a new petty cash handler
func NewPettyCashHandler(logger *slog.Logger, pettyCashService service.PettyCashService) *PettyCashHandler {
	return &PettyCashHandler{
		pettyCashService: pettyCashService,
		logger:           logger,
	}
}

// Create records a petty cash movement
func (h *PettyCashHandler) Create(c *gin.Context) {
	var req CreatePettyCashRequest
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

	entry, err := h.pettyCashService.CreateEntry(c.Request.Context(), date, req.Description, req.AmountIn, req.AmountOut, middleware.GetActor(c))
	if err != nil {
		if errors.Is(err, service.ErrEmptyMovement) || errors.Is(err, service.ErrNegativeMovement) {
			RespondUnprocessable(c, err.Error())
			return
		}
		h.logger.Error("Failed to create petty cash entry", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapEntryToResponse(*entry))
}

// Delete removes a petty cash entry; later running balances shift on the
// next read
func (h *PettyCashHandler) Delete(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid entry ID")
		return
	}

	if err := h.pettyCashService.DeleteEntry(c.Request.Context(), id); err != nil {
		if errors.Is(err, ledgerbook.ErrEntryNotFound{}) {
			RespondNotFound(c, "Petty cash entry not found")
			return
		}
		h.logger.Error("Failed to delete petty cash entry", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

// List returns the petty cash ledger newest first with running balances.
// An optional start/end query pair restricts the window.
func (h *PettyCashHandler) List(c *gin.Context) {
	var params DateRangeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	var (
		entries []ledgerbook.Entry
		closing decimal.Decimal
		err     error
	)

	if params.Start != "" || params.End != "" {
		var start, end time.Time
		if start, err = parseDate(params.Start); err != nil {
			RespondBadRequest(c, "Invalid start date: "+err.Error())
			return
		}
		if end, err = parseDate(params.End); err != nil {
			RespondBadRequest(c, "Invalid end date: "+err.Error())
			return
		}
		entries, closing, err = h.pettyCashService.ListEntriesByDateRange(c.Request.Context(), start, end)
	} else {
		entries, closing, err = h.pettyCashService.ListEntries(c.Request.Context())
	}

	if err != nil {
		h.logger.Error("Failed to list petty cash entries", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]PettyCashEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, mapEntryToResponse(entry))
	}

	RespondOK(c, PettyCashListResponse{
		Entries:        responses,
		ClosingBalance: closing.StringFixed(2),
	})
}

// mapEntryToResponse maps a ledger entry to a response DTO
func mapEntryToResponse(entry ledgerbook.Entry) PettyCashEntryResponse {
	return PettyCashEntryResponse{
		ID:             entry.ID.String(),
		Date:           entry.Date.Format(time.DateOnly),
		Description:    entry.Description,
		AmountIn:       entry.AmountIn.StringFixed(2),
		AmountOut:      entry.AmountOut.StringFixed(2),
		RunningBalance: entry.RunningBalance.StringFixed(2),
		CreatedAt:      entry.CreatedAt.Format(time.RFC3339),
	}
}
