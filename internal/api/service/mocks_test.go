package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/taxiops-finance-core/internal/domain/account"
	"github.com/taxiops-finance-core/internal/domain/ledgerbook"
	"github.com/taxiops-finance-core/internal/domain/payable"
	"github.com/taxiops-finance-core/internal/domain/shared"
	"github.com/taxiops-finance-core/internal/domain/split"
	"github.com/taxiops-finance-core/internal/domain/transaction"
	"github.com/taxiops-finance-core/internal/engine"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// MockAccountRepository mocks account.Repository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if acc, ok := args.Get(0).(*account.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) GetByName(ctx context.Context, name string) (*account.Account, error) {
	args := m.Called(ctx, name)
	if acc, ok := args.Get(0).(*account.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) List(ctx context.Context) ([]*account.Account, error) {
	args := m.Called(ctx)
	if accounts, ok := args.Get(0).([]*account.Account); ok {
		return accounts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) Update(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if acc, ok := args.Get(0).(*account.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) WithTx(tx pgx.Tx) account.Repository {
	m.Called(tx)
	return m
}

// MockTransactionRepository mocks transaction.Repository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if txn, ok := args.Get(0).(*transaction.Transaction); ok {
		return txn, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransactionRepository) Update(ctx context.Context, txn *transaction.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) Tombstone(ctx context.Context, id uuid.UUID, actor shared.Actor) error {
	args := m.Called(ctx, id, actor)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if txns, ok := args.Get(0).([]*transaction.Transaction); ok {
		return txns, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransactionRepository) CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) ListByDateRange(ctx context.Context, start, end time.Time, txnType shared.TransactionType) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, start, end, txnType)
	if txns, ok := args.Get(0).([]*transaction.Transaction); ok {
		return txns, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	m.Called(tx)
	return m
}

// MockPayableRepository mocks payable.Repository
type MockPayableRepository struct {
	mock.Mock
}

func (m *MockPayableRepository) Create(ctx context.Context, rec *payable.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockPayableRepository) GetByID(ctx context.Context, id uuid.UUID) (*payable.Record, error) {
	args := m.Called(ctx, id)
	if rec, ok := args.Get(0).(*payable.Record); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPayableRepository) Update(ctx context.Context, rec *payable.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockPayableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPayableRepository) ListByKind(ctx context.Context, kind payable.Kind, limit, offset int) ([]*payable.Record, error) {
	args := m.Called(ctx, kind, limit, offset)
	if recs, ok := args.Get(0).([]*payable.Record); ok {
		return recs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPayableRepository) CountByKind(ctx context.Context, kind payable.Kind) (int64, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(int64), args.Error(1)
}

// MockLedgerbookRepository mocks ledgerbook.Repository
type MockLedgerbookRepository struct {
	mock.Mock
}

func (m *MockLedgerbookRepository) Create(ctx context.Context, entry *ledgerbook.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerbookRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledgerbook.Entry, error) {
	args := m.Called(ctx, id)
	if entry, ok := args.Get(0).(*ledgerbook.Entry); ok {
		return entry, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLedgerbookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLedgerbookRepository) ListAll(ctx context.Context) ([]ledgerbook.Entry, error) {
	args := m.Called(ctx)
	if entries, ok := args.Get(0).([]ledgerbook.Entry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLedgerbookRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]ledgerbook.Entry, error) {
	args := m.Called(ctx, start, end)
	if entries, ok := args.Get(0).([]ledgerbook.Entry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockSplitRepository mocks split.Repository
type MockSplitRepository struct {
	mock.Mock
}

func (m *MockSplitRepository) Create(ctx context.Context, rec *split.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockSplitRepository) GetByID(ctx context.Context, id uuid.UUID) (*split.Record, error) {
	args := m.Called(ctx, id)
	if rec, ok := args.Get(0).(*split.Record); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSplitRepository) Update(ctx context.Context, rec *split.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockSplitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSplitRepository) ListOverlapping(ctx context.Context, window split.Window) ([]*split.Record, error) {
	args := m.Called(ctx, window)
	if recs, ok := args.Get(0).([]*split.Record); ok {
		return recs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSplitRepository) ListAll(ctx context.Context) ([]*split.Record, error) {
	args := m.Called(ctx)
	if recs, ok := args.Get(0).([]*split.Record); ok {
		return recs, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockOrchestrator mocks engine.Orchestrator
type MockOrchestrator struct {
	mock.Mock
}

func (m *MockOrchestrator) Create(ctx context.Context, draft *transaction.Transaction, actor shared.Actor) (*transaction.Transaction, error) {
	args := m.Called(ctx, draft, actor)
	if txn, ok := args.Get(0).(*transaction.Transaction); ok {
		return txn, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrchestrator) Update(ctx context.Context, id uuid.UUID, draft *transaction.Transaction, actor shared.Actor) (*transaction.Transaction, error) {
	args := m.Called(ctx, id, draft, actor)
	if txn, ok := args.Get(0).(*transaction.Transaction); ok {
		return txn, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrchestrator) Delete(ctx context.Context, id uuid.UUID, actor shared.Actor) error {
	args := m.Called(ctx, id, actor)
	return args.Error(0)
}

var (
	_ account.Repository     = (*MockAccountRepository)(nil)
	_ transaction.Repository = (*MockTransactionRepository)(nil)
	_ payable.Repository     = (*MockPayableRepository)(nil)
	_ ledgerbook.Repository  = (*MockLedgerbookRepository)(nil)
	_ split.Repository       = (*MockSplitRepository)(nil)
	_ engine.Orchestrator    = (*MockOrchestrator)(nil)
)
