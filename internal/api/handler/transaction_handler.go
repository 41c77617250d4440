package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taxiops-finance-core/internal/api/middleware"
	"github.com/taxiops-finance-core/internal/api/service"
	"github.com/taxiops-finance-core/internal/domain/account"
	"github.com/taxiops-finance-core/internal/domain/shared"
	"github.com/taxiops-finance-core/internal/domain/transaction"
	"github.com/taxiops-finance-core/internal/engine"
)

// TransactionHandler handles HTTP requests for transaction operations
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// Create records a new transaction and applies its balance effect
func (h *TransactionHandler) Create(c *gin.Context) {
	draft, ok := h.bindDraft(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.CreateTransaction(c.Request.Context(), draft, middleware.GetActor(c))
	if err != nil {
		h.respondMutationError(c, err)
		return
	}

	RespondCreated(c, mapTransactionToResponse(txn))
}

// Update edits a transaction, reversing the stored effect and applying the
// new one atomically
func (h *TransactionHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	draft, ok := h.bindDraft(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.UpdateTransaction(c.Request.Context(), id, draft, middleware.GetActor(c))
	if err != nil {
		h.respondMutationError(c, err)
		return
	}

	RespondOK(c, mapTransactionToResponse(txn))
}

// Delete reverses a transaction's effect and tombstones it
func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), id, middleware.GetActor(c)); err != nil {
		h.respondMutationError(c, err)
		return
	}

	RespondNoContent(c)
}

// GetByID retrieves transaction details by its ID, returns 404 if not found
func (h *TransactionHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.GetTransactionByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	if txn == nil {
		RespondNotFound(c, "Transaction not found")
		return
	}

	RespondOK(c, mapTransactionToResponse(txn))
}

// GetByAccountID retrieves paginated transaction history for an account
func (h *TransactionHandler) GetByAccountID(c *gin.Context) {
	accountIDParam := c.Param("id")
	accountID, err := uuid.Parse(accountIDParam)
	if err != nil {
		h.logger.Error("Invalid account ID", "id", accountIDParam, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	txns, total, err := h.transactionService.GetTransactionsByAccountID(c.Request.Context(), accountID, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list transactions for account", "account_id", accountIDParam, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		responses = append(responses, mapTransactionToResponse(txn))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, pagination.Page, pagination.PerPage, int(total))
}

func (h *TransactionHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid transaction ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid transaction ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *TransactionHandler) bindDraft(c *gin.Context) (*transaction.Transaction, bool) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return nil, false
	}

	date, err := parseDate(req.Date)
	if err != nil {
		RespondBadRequest(c, "Invalid date: "+err.Error())
		return nil, false
	}

	from, err := mapPartyRef(req.AccountFrom)
	if err != nil {
		RespondBadRequest(c, "Invalid account_from: "+err.Error())
		return nil, false
	}
	to, err := mapPartyRef(req.AccountTo)
	if err != nil {
		RespondBadRequest(c, "Invalid account_to: "+err.Error())
		return nil, false
	}

	draft := &transaction.Transaction{
		Type:             shared.TransactionType(req.Type),
		Amount:           req.Amount,
		Date:             date,
		Category:         req.Category,
		Description:      req.Description,
		AccountFrom:      from,
		AccountTo:        to,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: req.PaymentReference,
	}
	return draft, true
}

func (h *TransactionHandler) respondMutationError(c *gin.Context, err error) {
	var reconciliation *engine.ReconciliationError
	if errors.As(err, &reconciliation) {
		h.logger.Error("Reconciliation required", "transaction_id", reconciliation.TransactionID.String(), "op", reconciliation.Op, "error", err)
		RespondWithError(c, http.StatusInternalServerError, "RECONCILIATION_REQUIRED",
			"A partial failure left account balances unverified; the incident has been queued for an operator")
		return
	}

	switch {
	case errors.Is(err, transaction.ErrTransactionNotFound{}):
		RespondNotFound(c, "Transaction not found")
	case errors.Is(err, account.ErrAccountNotFound{}):
		RespondUnprocessable(c, "Referenced account does not exist")
	case errors.Is(err, transaction.ErrNonPositiveAmount),
		errors.Is(err, transaction.ErrNoResolvableSide),
		errors.Is(err, transaction.ErrMissingDate),
		errors.Is(err, transaction.ErrCurrencyMismatch):
		RespondUnprocessable(c, err.Error())
	default:
		h.logger.Error("Failed to mutate transaction", "error", err)
		RespondInternalError(c)
	}
}

// mapPartyRef maps a DTO party ref to the domain representation
func mapPartyRef(dto PartyRefDTO) (transaction.PartyRef, error) {
	if dto.AccountID != "" {
		id, err := uuid.Parse(dto.AccountID)
		if err != nil {
			return transaction.PartyRef{}, fmt.Errorf("invalid account id %q", dto.AccountID)
		}
		return transaction.InternalRef(id), nil
	}
	if dto.External != "" {
		return transaction.ExternalRef(dto.External), nil
	}
	return transaction.PartyRef{}, nil
}

func mapPartyRefToDTO(ref transaction.PartyRef) PartyRefDTO {
	dto := PartyRefDTO{External: ref.External}
	if ref.AccountID != nil {
		dto.AccountID = ref.AccountID.String()
	}
	return dto
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// mapTransactionToResponse maps a transaction entity to a response DTO
func mapTransactionToResponse(txn *transaction.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:               txn.ID.String(),
		Type:             string(txn.Type),
		Amount:           txn.Amount.StringFixed(2),
		Date:             txn.Date.Format(time.DateOnly),
		Category:         txn.Category,
		Description:      txn.Description,
		AccountFrom:      mapPartyRefToDTO(txn.AccountFrom),
		AccountTo:        mapPartyRefToDTO(txn.AccountTo),
		PaymentMethod:    txn.PaymentMethod,
		PaymentReference: txn.PaymentReference,
		Status:           string(txn.Status),
		Deleted:          txn.Deleted,
		CreatedAt:        txn.CreatedAt.Format(time.RFC3339),
		CreatedBy:        txn.CreatedBy.Name,
		UpdatedAt:        txn.UpdatedAt.Format(time.RFC3339),
		UpdatedBy:        txn.UpdatedBy.Name,
	}
}
