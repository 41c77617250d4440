package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taxiops-finance-core/internal/domain/account"
	"github.com/taxiops-finance-core/internal/domain/ledgerbook"
	"github.com/taxiops-finance-core/internal/domain/payable"
	"github.com/taxiops-finance-core/internal/domain/shared"
	"github.com/taxiops-finance-core/internal/domain/split"
	"github.com/taxiops-finance-core/internal/domain/transaction"
)

// AccountService defines the interface for ledger account operations
type AccountService interface {
	// CreateAccount creates a new account with an opening balance
	// Returns ErrDuplicateName if an account with the same name exists
	CreateAccount(ctx context.Context, name string, currency string, openingBalance decimal.Decimal) (*account.Account, error)

	// GetAccountByID retrieves an account by its ID
	// Returns ErrAccountNotFound if the account doesn't exist
	GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error)

	// ListAccounts returns all accounts
	ListAccounts(ctx context.Context) ([]*account.Account, error)

	// ClearUnverified removes the unverified marker after an operator has
	// reconciled the account balance by hand
	ClearUnverified(ctx context.Context, id uuid.UUID) (*account.Account, error)
}

// TransactionService defines the interface for transaction operations.
// All balance-affecting mutations go through the edit orchestrator.
type TransactionService interface {
	CreateTransaction(ctx context.Context, draft *transaction.Transaction, actor shared.Actor) (*transaction.Transaction, error)
	UpdateTransaction(ctx context.Context, id uuid.UUID, draft *transaction.Transaction, actor shared.Actor) (*transaction.Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID, actor shared.Actor) error

	// GetTransactionByID retrieves a transaction by its ID
	// Returns nil if the transaction is not found
	GetTransactionByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)

	// GetTransactionsByAccountID retrieves paginated transactions for an account
	// Returns transactions, total count, and any error
	GetTransactionsByAccountID(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*transaction.Transaction, int64, error)
}

// PayableService defines the interface for payable record operations
type PayableService interface {
	CreateRecord(ctx context.Context, kind payable.Kind, reference string, amount decimal.Decimal, actor shared.Actor) (*payable.Record, error)
	GetRecordByID(ctx context.Context, id uuid.UUID) (*payable.Record, error)
	ListRecords(ctx context.Context, kind payable.Kind, page, perPage int) ([]*payable.Record, int64, error)
	DeleteRecord(ctx context.Context, id uuid.UUID) error

	// AddPayment records a partial payment and returns the updated record
	AddPayment(ctx context.Context, recordID uuid.UUID, amount decimal.Decimal, date time.Time, method, reference string, actor shared.Actor) (*payable.Record, error)

	// RemovePayment deletes a payment and returns the updated record
	RemovePayment(ctx context.Context, recordID, paymentID uuid.UUID, actor shared.Actor) (*payable.Record, error)
}

// PettyCashService defines the interface for petty cash ledger operations
type PettyCashService interface {
	CreateEntry(ctx context.Context, date time.Time, description string, amountIn, amountOut decimal.Decimal, actor shared.Actor) (*ledgerbook.Entry, error)
	DeleteEntry(ctx context.Context, id uuid.UUID) error

	// ListEntries returns all entries newest first with running balances
	// projected in chronological order
	ListEntries(ctx context.Context) ([]ledgerbook.Entry, decimal.Decimal, error)

	// ListEntriesByDateRange returns entries in the window, newest first,
	// with running balances projected over the window only
	ListEntriesByDateRange(ctx context.Context, start, end time.Time) ([]ledgerbook.Entry, decimal.Decimal, error)
}

// SplitService defines the interface for profit split operations
type SplitService interface {
	// PreviewSplit computes the distributable balance and per-recipient
	// amounts for a window without persisting anything
	PreviewSplit(ctx context.Context, window split.Window, recipients []split.Recipient) (decimal.Decimal, []split.Recipient, decimal.Decimal, error)

	CreateSplit(ctx context.Context, window split.Window, recipients []split.Recipient, actor shared.Actor) (*split.Record, error)
	UpdateSplit(ctx context.Context, id uuid.UUID, window split.Window, recipients []split.Recipient, actor shared.Actor) (*split.Record, error)
	DeleteSplit(ctx context.Context, id uuid.UUID) error
	GetSplitByID(ctx context.Context, id uuid.UUID) (*split.Record, error)
	ListSplits(ctx context.Context) ([]*split.Record, error)
}
