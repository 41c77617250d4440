package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taxiops-finance-core/internal/domain/shared"
	"github.com/taxiops-finance-core/internal/domain/transaction"
	"github.com/taxiops-finance-core/internal/engine"
)

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	orchestrator engine.Orchestrator
	txnRepo      transaction.Repository
	logger       *slog.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(logger *slog.Logger, orchestrator engine.Orchestrator, txnRepo transaction.Repository) TransactionService {
	return &TransactionServiceImpl{
		orchestrator: orchestrator,
		txnRepo:      txnRepo,
		logger:       logger,
	}
}

// CreateTransaction validates and persists a new transaction, applying its
// balance effect in the same database transaction
func (s *TransactionServiceImpl) CreateTransaction(ctx context.Context, draft *transaction.Transaction, actor shared.Actor) (*transaction.Transaction, error) {
	txn, err := s.orchestrator.Create(ctx, draft, actor)
	if err != nil {
		s.logger.Error("Failed to create transaction",
			"transaction_type", string(draft.Type),
			"amount", draft.Amount.String(),
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("Transaction created",
		"transaction_id", txn.ID.String(),
		"transaction_type", string(txn.Type),
		"amount", txn.Amount.String(),
	)
	return txn, nil
}

// UpdateTransaction reverses the stored effect and applies the draft's effect
// atomically, then persists the edited transaction
func (s *TransactionServiceImpl) UpdateTransaction(ctx context.Context, id uuid.UUID, draft *transaction.Transaction, actor shared.Actor) (*transaction.Transaction, error) {
	txn, err := s.orchestrator.Update(ctx, id, draft, actor)
	if err != nil {
		s.logger.Error("Failed to update transaction", "transaction_id", id.String(), "error", err)
		return nil, err
	}

	s.logger.Info("Transaction updated", "transaction_id", id.String())
	return txn, nil
}

// DeleteTransaction reverses the stored effect and tombstones the transaction
func (s *TransactionServiceImpl) DeleteTransaction(ctx context.Context, id uuid.UUID, actor shared.Actor) error {
	if err := s.orchestrator.Delete(ctx, id, actor); err != nil {
		s.logger.Error("Failed to delete transaction", "transaction_id", id.String(), "error", err)
		return err
	}

	s.logger.Info("Transaction deleted", "transaction_id", id.String())
	return nil
}

// GetTransactionByID retrieves a transaction by its ID. Returns nil if not found
func (s *TransactionServiceImpl) GetTransactionByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	txn, err := s.txnRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound{}) {
			s.logger.Info("Transaction not found", "transaction_id", id.String())
			return nil, nil
		}
		s.logger.Error("Failed to get transaction by ID", "transaction_id", id.String(), "error", err)
		return nil, err
	}
	return txn, nil
}

// GetTransactionsByAccountID retrieves paginated transactions for an account
// Returns transactions, total count, and any error
func (s *TransactionServiceImpl) GetTransactionsByAccountID(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*transaction.Transaction, int64, error) {
	offset := (page - 1) * perPage

	txns, err := s.txnRepo.ListByAccountID(ctx, accountID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.txnRepo.CountByAccountID(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}

	return txns, total, nil
}
