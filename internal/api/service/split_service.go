package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taxiops-finance-core/internal/domain/shared"
	"github.com/taxiops-finance-core/internal/domain/split"
	"github.com/taxiops-finance-core/internal/domain/transaction"
)

// SplitServiceImpl implements the SplitService interface
type SplitServiceImpl struct {
	splitRepo split.Repository
	txnRepo   transaction.Repository
	logger    *slog.Logger
}

// NewSplitService creates a new split service
func NewSplitService(logger *slog.Logger, splitRepo split.Repository, txnRepo transaction.Repository) SplitService {
	return &SplitServiceImpl{
		splitRepo: splitRepo,
		txnRepo:   txnRepo,
		logger:    logger,
	}
}

// windowAmounts gathers income and expense amounts inside the window from the
// transaction store
func (s *SplitServiceImpl) windowAmounts(ctx context.Context, window split.Window) (split.WindowAmounts, error) {
	var amounts split.WindowAmounts

	income, err := s.txnRepo.ListByDateRange(ctx, window.Start, window.End, shared.TransactionTypeIncome)
	if err != nil {
		return amounts, err
	}
	for _, txn := range income {
		amounts.Income = append(amounts.Income, txn.Amount)
	}

	expenses, err := s.txnRepo.ListByDateRange(ctx, window.Start, window.End, shared.TransactionTypeExpense)
	if err != nil {
		return amounts, err
	}
	for _, txn := range expenses {
		amounts.Expenses = append(amounts.Expenses, txn.Amount)
	}

	return amounts, nil
}

// allocate computes the distributable balance for the window, minus prior
// overlapping splits (excluding excludeID on edits), and partitions it across
// the recipients
func (s *SplitServiceImpl) allocate(ctx context.Context, window split.Window, recipients []split.Recipient, excludeID uuid.UUID) (decimal.Decimal, []split.Recipient, decimal.Decimal, error) {
	if err := window.Validate(); err != nil {
		return decimal.Zero, nil, decimal.Zero, err
	}

	amounts, err := s.windowAmounts(ctx, window)
	if err != nil {
		return decimal.Zero, nil, decimal.Zero, err
	}

	priorSplits, err := s.splitRepo.ListOverlapping(ctx, window)
	if err != nil {
		return decimal.Zero, nil, decimal.Zero, err
	}

	balance, err := split.ComputeBalance(window, amounts, priorSplits, excludeID)
	if err != nil {
		return decimal.Zero, nil, decimal.Zero, err
	}

	allocated, total, err := split.Allocate(balance, recipients)
	if err != nil {
		return decimal.Zero, nil, decimal.Zero, err
	}

	return balance, allocated, total, nil
}

// PreviewSplit computes the window balance and allocation without persisting
func (s *SplitServiceImpl) PreviewSplit(ctx context.Context, window split.Window, recipients []split.Recipient) (decimal.Decimal, []split.Recipient, decimal.Decimal, error) {
	return s.allocate(ctx, window, recipients, uuid.Nil)
}

// CreateSplit allocates and persists a new profit split for the window
func (s *SplitServiceImpl) CreateSplit(ctx context.Context, window split.Window, recipients []split.Recipient, actor shared.Actor) (*split.Record, error) {
	balance, allocated, total, err := s.allocate(ctx, window, recipients, uuid.Nil)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rec := &split.Record{
		ID:               uuid.New(),
		Window:           window,
		Recipients:       allocated,
		TotalSplitAmount: total,
		CreatedAt:        now,
		CreatedBy:        actor,
		UpdatedAt:        now,
		UpdatedBy:        actor,
	}

	if err := s.splitRepo.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("Profit split created",
		"split_id", rec.ID.String(),
		"window_start", window.Start.Format(time.DateOnly),
		"window_end", window.End.Format(time.DateOnly),
		"distributable_balance", balance.StringFixed(2),
		"total_split_amount", total.StringFixed(2),
	)
	return rec, nil
}

// UpdateSplit reallocates an existing split over a possibly changed window.
// The split being edited is excluded from the prior-allocation deduction so
// its own amount does not count against itself.
func (s *SplitServiceImpl) UpdateSplit(ctx context.Context, id uuid.UUID, window split.Window, recipients []split.Recipient, actor shared.Actor) (*split.Record, error) {
	rec, err := s.splitRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	balance, allocated, total, err := s.allocate(ctx, window, recipients, id)
	if err != nil {
		return nil, err
	}

	rec.Window = window
	rec.Recipients = allocated
	rec.TotalSplitAmount = total
	rec.UpdatedAt = time.Now()
	rec.UpdatedBy = actor

	if err := s.splitRepo.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("Profit split updated",
		"split_id", rec.ID.String(),
		"distributable_balance", balance.StringFixed(2),
		"total_split_amount", total.StringFixed(2),
	)
	return rec, nil
}

// DeleteSplit removes a split record, returning its amount to future windows
func (s *SplitServiceImpl) DeleteSplit(ctx context.Context, id uuid.UUID) error {
	return s.splitRepo.Delete(ctx, id)
}

// GetSplitByID retrieves a split record by its ID
func (s *SplitServiceImpl) GetSplitByID(ctx context.Context, id uuid.UUID) (*split.Record, error) {
	return s.splitRepo.GetByID(ctx, id)
}

// ListSplits returns all split records
func (s *SplitServiceImpl) ListSplits(ctx context.Context) ([]*split.Record, error) {
	return s.splitRepo.ListAll(ctx)
}
