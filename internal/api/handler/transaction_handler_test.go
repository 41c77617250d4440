package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/taxiops-finance-core/internal/domain/account"
	"github.com/taxiops-finance-core/internal/domain/shared"
	"github.com/taxiops-finance-core/internal/domain/transaction"
	"github.com/taxiops-finance-core/internal/engine"
)

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) CreateTransaction(ctx context.Context, draft *transaction.Transaction, actor shared.Actor) (*transaction.Transaction, error) {
	args := m.Called(ctx, draft, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) UpdateTransaction(ctx context.Context, id uuid.UUID, draft *transaction.Transaction, actor shared.Actor) (*transaction.Transaction, error) {
	args := m.Called(ctx, id, draft, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) DeleteTransaction(ctx context.Context, id uuid.UUID, actor shared.Actor) error {
	args := m.Called(ctx, id, actor)
	return args.Error(0)
}

func (m *MockTransactionService) GetTransactionByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) GetTransactionsByAccountID(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*transaction.Transaction, int64, error) {
	args := m.Called(ctx, accountID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*transaction.Transaction), args.Get(1).(int64), args.Error(2)
}

func storedTransaction() *transaction.Transaction {
	now := time.Now()
	return &transaction.Transaction{
		ID:          uuid.New(),
		Type:        shared.TransactionTypeExpense,
		Amount:      decimal.NewFromInt(150),
		Date:        time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		AccountFrom: transaction.InternalRef(uuid.New()),
		AccountTo:   transaction.ExternalRef("Garage Schmidt"),
		Status:      shared.TransactionStatusCompleted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func transactionRequestBody(txn *transaction.Transaction) []byte {
	req := TransactionRequest{
		Amount:      txn.Amount,
		Date:        txn.Date.Format(time.DateOnly),
		AccountFrom: PartyRefDTO{AccountID: txn.AccountFrom.AccountID.String()},
		AccountTo:   PartyRefDTO{External: txn.AccountTo.External},
	}
	body, _ := json.Marshal(req)
	return body
}

func TestTransactionHandler_Create(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		stored := storedTransaction()
		mockService.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(draft *transaction.Transaction) bool {
			return draft.Amount.Equal(stored.Amount) && draft.AccountFrom.Internal()
		}), mock.Anything).Return(stored, nil)

		router := setupTestRouter()
		router.POST("/transactions", handler.Create)

		req, _ := http.NewRequest(http.MethodPost, "/transactions", bytes.NewBuffer(transactionRequestBody(stored)))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		responseBody := decodeData[TransactionResponse](t, rr.Body.Bytes())
		assert.Equal(t, stored.ID.String(), responseBody.ID)
		assert.Equal(t, "EXPENSE", responseBody.Type)
		assert.Equal(t, "150.00", responseBody.Amount)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidDate", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/transactions", handler.Create)

		body, _ := json.Marshal(TransactionRequest{
			Amount:    decimal.NewFromInt(100),
			Date:      "10/03/2026",
			AccountTo: PartyRefDTO{External: "Customer"},
		})
		req, _ := http.NewRequest(http.MethodPost, "/transactions", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ValidationErrorIsUnprocessable", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		stored := storedTransaction()
		mockService.On("CreateTransaction", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, transaction.ErrNoResolvableSide)

		router := setupTestRouter()
		router.POST("/transactions", handler.Create)

		req, _ := http.NewRequest(http.MethodPost, "/transactions", bytes.NewBuffer(transactionRequestBody(stored)))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("UnknownAccountIsUnprocessable", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		stored := storedTransaction()
		mockService.On("CreateTransaction", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, account.ErrAccountNotFound{AccountID: uuid.New()})

		router := setupTestRouter()
		router.POST("/transactions", handler.Create)

		req, _ := http.NewRequest(http.MethodPost, "/transactions", bytes.NewBuffer(transactionRequestBody(stored)))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("ReconciliationIncidentSurfacesOperatorCode", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		stored := storedTransaction()
		recErr := &engine.ReconciliationError{
			Op:            "create",
			TransactionID: stored.ID,
			NewSnapshot:   stored,
			Cause:         errors.New("commit failed"),
		}
		mockService.On("CreateTransaction", mock.Anything, mock.Anything, mock.Anything).Return(nil, recErr)

		router := setupTestRouter()
		router.POST("/transactions", handler.Create)

		req, _ := http.NewRequest(http.MethodPost, "/transactions", bytes.NewBuffer(transactionRequestBody(stored)))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)

		var topLevel Response
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevel))
		assert.NotNil(t, topLevel.Error)
		assert.Equal(t, "RECONCILIATION_REQUIRED", topLevel.Error.Code)
	})
}

func TestTransactionHandler_Update(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		stored := storedTransaction()
		mockService.On("UpdateTransaction", mock.Anything, stored.ID, mock.Anything, mock.Anything).Return(stored, nil)

		router := setupTestRouter()
		router.PUT("/transactions/:id", handler.Update)

		req, _ := http.NewRequest(http.MethodPut, "/transactions/"+stored.ID.String(), bytes.NewBuffer(transactionRequestBody(stored)))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		stored := storedTransaction()
		mockService.On("UpdateTransaction", mock.Anything, stored.ID, mock.Anything, mock.Anything).
			Return(nil, transaction.ErrTransactionNotFound{TransactionID: stored.ID})

		router := setupTestRouter()
		router.PUT("/transactions/:id", handler.Update)

		req, _ := http.NewRequest(http.MethodPut, "/transactions/"+stored.ID.String(), bytes.NewBuffer(transactionRequestBody(stored)))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestTransactionHandler_Delete(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	mockService := new(MockTransactionService)
	handler := NewTransactionHandler(logger, mockService)

	id := uuid.New()
	mockService.On("DeleteTransaction", mock.Anything, id, mock.Anything).Return(nil)

	router := setupTestRouter()
	router.DELETE("/transactions/:id", handler.Delete)

	req, _ := http.NewRequest(http.MethodDelete, "/transactions/"+id.String(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	mockService.AssertExpectations(t)
}

func TestTransactionHandler_GetByID(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		stored := storedTransaction()
		mockService.On("GetTransactionByID", mock.Anything, stored.ID).Return(stored, nil)

		router := setupTestRouter()
		router.GET("/transactions/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/transactions/"+stored.ID.String(), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		responseBody := decodeData[TransactionResponse](t, rr.Body.Bytes())
		assert.Equal(t, "2026-03-10", responseBody.Date)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		id := uuid.New()
		mockService.On("GetTransactionByID", mock.Anything, id).Return(nil, nil)

		router := setupTestRouter()
		router.GET("/transactions/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/transactions/"+id.String(), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestTransactionHandler_GetByAccountID(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	mockService := new(MockTransactionService)
	handler := NewTransactionHandler(logger, mockService)

	accountID := uuid.New()
	txns := []*transaction.Transaction{storedTransaction(), storedTransaction()}
	mockService.On("GetTransactionsByAccountID", mock.Anything, accountID, 1, 10).Return(txns, int64(25), nil)

	router := setupTestRouter()
	router.GET("/accounts/:id/transactions", handler.GetByAccountID)

	req, _ := http.NewRequest(http.MethodGet, "/accounts/"+accountID.String()+"/transactions", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var topLevel Response
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevel))
	assert.NotNil(t, topLevel.Meta)
	assert.Equal(t, 25, topLevel.Meta.TotalItems)
	assert.Equal(t, 3, topLevel.Meta.TotalPages)
	mockService.AssertExpectations(t)
}
