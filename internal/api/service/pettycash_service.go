package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taxiops-finance-core/internal/domain/ledgerbook"
	"github.com/taxiops-finance-core/internal/domain/shared"
)

// ErrEmptyMovement rejects petty cash entries where both amounts are zero
var ErrEmptyMovement = errors.New("petty cash entry needs an in or out amount")

// ErrNegativeMovement rejects negative in/out amounts; direction is expressed
// by which column the amount goes in
var ErrNegativeMovement = errors.New("petty cash amounts cannot be negative")

// PettyCashServiceImpl implements the PettyCashService interface
type PettyCashServiceImpl struct {
	entryRepo ledgerbook.Repository
	logger    *slog.Logger
}

// NewPettyCashService creates a new petty cash service
func NewPettyCashService(logger *slog.Logger, entryRepo ledgerbook.Repository) PettyCashService {
	return &PettyCashServiceImpl{
		entryRepo: entryRepo,
		logger:    logger,
	}
}

// CreateEntry records a petty cash movement
func (s *PettyCashServiceImpl) CreateEntry(ctx context.Context, date time.Time, description string, amountIn, amountOut decimal.Decimal, actor shared.Actor) (*ledgerbook.Entry, error) {
	if amountIn.IsNegative() || amountOut.IsNegative() {
		return nil, ErrNegativeMovement
	}
	if amountIn.IsZero() && amountOut.IsZero() {
		return nil, ErrEmptyMovement
	}

	entry := &ledgerbook.Entry{
		ID:          uuid.New(),
		Date:        date,
		Description: description,
		AmountIn:    amountIn,
		AmountOut:   amountOut,
		CreatedAt:   time.Now(),
		CreatedBy:   actor,
	}

	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("Petty cash entry created",
		"entry_id", entry.ID.String(),
		"amount_in", entry.AmountIn.String(),
		"amount_out", entry.AmountOut.String(),
	)
	return entry, nil
}

// DeleteEntry removes a petty cash entry. Running balances of later entries
// shift accordingly since they are always derived at read time.
func (s *PettyCashServiceImpl) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	return s.entryRepo.Delete(ctx, id)
}

// ListEntries returns all entries newest first with running balances and the
// closing balance
func (s *PettyCashServiceImpl) ListEntries(ctx context.Context) ([]ledgerbook.Entry, decimal.Decimal, error) {
	entries, err := s.entryRepo.ListAll(ctx)
	if err != nil {
		return nil, decimal.Zero, err
	}

	projected := ledgerbook.ProjectNewestFirst(entries)
	return projected, ledgerbook.ClosingBalance(entries), nil
}

// ListEntriesByDateRange returns window entries newest first with running
// balances accumulated over the window only
func (s *PettyCashServiceImpl) ListEntriesByDateRange(ctx context.Context, start, end time.Time) ([]ledgerbook.Entry, decimal.Decimal, error) {
	entries, err := s.entryRepo.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, decimal.Zero, err
	}

	projected := ledgerbook.ProjectNewestFirst(entries)
	return projected, ledgerbook.ClosingBalance(entries), nil
}
