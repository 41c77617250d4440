package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taxiops-finance-core/internal/api/middleware"
	"github.com/taxiops-finance-core/internal/api/service"
	"github.com/taxiops-finance-core/internal/domain/split"
)

// SplitHandler handles HTTP requests for profit split operations
type SplitHandler struct {
	splitService service.SplitService
	logger       *slog.Logger
}

// NewSplitHandler creates a new split handler
func NewSplitHandler(logger *slog.Logger, splitService service.SplitService) *SplitHandler {
	return &SplitHandler{
		splitService: splitService,
		logger:       logger,
	}
}

// Preview computes the distributable balance and allocation for a window
// without persisting anything
func (h *SplitHandler) Preview(c *gin.Context) {
	window, recipients, ok := h.bindSplitRequest(c)
	if !ok {
		return
	}

	balance, allocated, total, err := h.splitService.PreviewSplit(c.Request.Context(), window, recipients)
	if err != nil {
		h.respondSplitError(c, err)
		return
	}

	RespondOK(c, SplitResponse{
		WindowStart:          window.Start.Format(time.DateOnly),
		WindowEnd:            window.End.Format(time.DateOnly),
		DistributableBalance: balance.StringFixed(2),
		Recipients:           mapRecipientsToDTO(allocated),
		TotalSplitAmount:     total.StringFixed(2),
	})
}

// Create allocates and persists a new profit split
func (h *SplitHandler) Create(c *gin.Context) {
	window, recipients, ok := h.bindSplitRequest(c)
	if !ok {
		return
	}

	rec, err := h.splitService.CreateSplit(c.Request.Context(), window, recipients, middleware.GetActor(c))
	if err != nil {
		h.respondSplitError(c, err)
		return
	}

	RespondCreated(c, mapSplitToResponse(rec))
}

// Update reallocates an existing split
func (h *SplitHandler) Update(c *gin.Context) {
	id, ok := h.parseSplitID(c)
	if !ok {
		return
	}

	window, recipients, ok := h.bindSplitRequest(c)
	if !ok {
		return
	}

	rec, err := h.splitService.UpdateSplit(c.Request.Context(), id, window, recipients, middleware.GetActor(c))
	if err != nil {
		h.respondSplitError(c, err)
		return
	}

	RespondOK(c, mapSplitToResponse(rec))
}

// Delete removes a split record
func (h *SplitHandler) Delete(c *gin.Context) {
	id, ok := h.parseSplitID(c)
	if !ok {
		return
	}

	if err := h.splitService.DeleteSplit(c.Request.Context(), id); err != nil {
		if errors.Is(err, split.ErrSplitNotFound{}) {
			RespondNotFound(c, "Split record not found")
			return
		}
		h.logger.Error("Failed to delete split record", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

// GetByID retrieves a split record
func (h *SplitHandler) GetByID(c *gin.Context) {
	id, ok := h.parseSplitID(c)
	if !ok {
		return
	}

	rec, err := h.splitService.GetSplitByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, split.ErrSplitNotFound{}) {
			RespondNotFound(c, "Split record not found")
			return
		}
		h.logger.Error("Failed to get split record", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapSplitToResponse(rec))
}

// List returns all split records
func (h *SplitHandler) List(c *gin.Context) {
	recs, err := h.splitService.ListSplits(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list split records", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]SplitResponse, 0, len(recs))
	for _, rec := range recs {
		responses = append(responses, mapSplitToResponse(rec))
	}
	RespondOK(c, responses)
}

func (h *SplitHandler) parseSplitID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid split ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid split ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *SplitHandler) bindSplitRequest(c *gin.Context) (split.Window, []split.Recipient, bool) {
	var req SplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return split.Window{}, nil, false
	}

	start, err := parseDate(req.WindowStart)
	if err != nil {
		RespondBadRequest(c, "Invalid window_start: "+err.Error())
		return split.Window{}, nil, false
	}
	end, err := parseDate(req.WindowEnd)
	if err != nil {
		RespondBadRequest(c, "Invalid window_end: "+err.Error())
		return split.Window{}, nil, false
	}

	recipients := make([]split.Recipient, 0, len(req.Recipients))
	for _, r := range req.Recipients {
		recipients = append(recipients, split.Recipient{
			Name:       r.Name,
			Percentage: r.Percentage,
		})
	}

	return split.Window{Start: start, End: end}, recipients, true
}

func (h *SplitHandler) respondSplitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, split.ErrSplitNotFound{}):
		RespondNotFound(c, "Split record not found")
	case errors.Is(err, split.ErrInvalidWindow),
		errors.Is(err, split.ErrPercentageOverflow),
		errors.Is(err, split.ErrNegativePercentage),
		errors.Is(err, split.ErrNoRecipients),
		errors.Is(err, split.ErrEmptyRecipientName):
		RespondUnprocessable(c, err.Error())
	default:
		h.logger.Error("Failed split operation", "error", err)
		RespondInternalError(c)
	}
}

func mapRecipientsToDTO(recipients []split.Recipient) []SplitRecipientDTO {
	out := make([]SplitRecipientDTO, 0, len(recipients))
	for _, r := range recipients {
		out = append(out, SplitRecipientDTO{
			Name:       r.Name,
			Percentage: r.Percentage,
			Amount:     r.Amount.StringFixed(2),
		})
	}
	return out
}

// mapSplitToResponse maps a split record to a response DTO
func mapSplitToResponse(rec *split.Record) SplitResponse {
	return SplitResponse{
		ID:               rec.ID.String(),
		WindowStart:      rec.Window.Start.Format(time.DateOnly),
		WindowEnd:        rec.Window.End.Format(time.DateOnly),
		Recipients:       mapRecipientsToDTO(rec.Recipients),
		TotalSplitAmount: rec.TotalSplitAmount.StringFixed(2),
		CreatedAt:        rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        rec.UpdatedAt.Format(time.RFC3339),
	}
}
