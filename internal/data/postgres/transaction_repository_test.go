package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taxiops-finance-core/internal/domain/shared"
	"github.com/taxiops-finance-core/internal/domain/transaction"
)

var transactionRowColumns = []string{
	"id", "type", "amount", "date", "category", "description",
	"account_from_id", "account_from_external", "account_to_id", "account_to_external",
	"payment_method", "payment_reference", "payment_status", "status", "deleted",
	"created_at", "created_by_id", "created_by_name", "updated_at", "updated_by_id", "updated_by_name",
}

func storedExpense(fromID uuid.UUID) *transaction.Transaction {
	now := time.Now()
	return &transaction.Transaction{
		ID:          uuid.New(),
		Type:        shared.TransactionTypeExpense,
		Amount:      decimal.NewFromInt(150),
		Date:        now.AddDate(0, 0, -1),
		Category:    "FUEL",
		Description: "diesel",
		AccountFrom: transaction.InternalRef(fromID),
		AccountTo:   transaction.ExternalRef("Shell"),
		Status:      shared.TransactionStatusCompleted,
		CreatedAt:   now,
		CreatedBy:   shared.Actor{ID: "u-1", Name: "dispatcher"},
		UpdatedAt:   now,
		UpdatedBy:   shared.Actor{ID: "u-1", Name: "dispatcher"},
	}
}

func transactionArgs(txn *transaction.Transaction) []interface{} {
	return []interface{}{
		txn.ID, txn.Type, txn.Amount, txn.Date, txn.Category, txn.Description,
		txn.AccountFrom.AccountID, txn.AccountFrom.External, txn.AccountTo.AccountID, txn.AccountTo.External,
		txn.PaymentMethod, txn.PaymentReference, txn.PaymentStatus, txn.Status, txn.Deleted,
		txn.CreatedAt, txn.CreatedBy.ID, txn.CreatedBy.Name, txn.UpdatedAt, txn.UpdatedBy.ID, txn.UpdatedBy.Name,
	}
}

func transactionRow(txn *transaction.Transaction) *pgxmock.Rows {
	return pgxmock.NewRows(transactionRowColumns).AddRow(transactionArgs(txn)...)
}

func TestTransactionRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: logger}
	txn := storedExpense(uuid.New())

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO transactions`).
			WithArgs(transactionArgs(txn)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, txn)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(`INSERT INTO transactions`).
			WithArgs(transactionArgs(txn)...).
			WillReturnError(expectedErr)

		err := repo.Create(ctx, txn)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create transaction")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: logger}

	query := `FROM transactions WHERE id = \$1`

	t.Run("success", func(t *testing.T) {
		txn := storedExpense(uuid.New())
		mock.ExpectQuery(query).WithArgs(txn.ID).WillReturnRows(transactionRow(txn))

		got, err := repo.GetByID(ctx, txn.ID)
		assert.NoError(t, err)
		assert.Equal(t, txn, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("tombstoned rows are still returned", func(t *testing.T) {
		txn := storedExpense(uuid.New())
		txn.Deleted = true
		txn.Status = shared.TransactionStatusCancelled
		mock.ExpectQuery(query).WithArgs(txn.ID).WillReturnRows(transactionRow(txn))

		got, err := repo.GetByID(ctx, txn.ID)
		assert.NoError(t, err)
		assert.True(t, got.Deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectQuery(query).WithArgs(id).WillReturnError(pgx.ErrNoRows)

		got, err := repo.GetByID(ctx, id)
		assert.Error(t, err)
		assert.Nil(t, got)
		var notFoundErr transaction.ErrTransactionNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, id, notFoundErr.TransactionID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_Update(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: logger}
	txn := storedExpense(uuid.New())

	query := `UPDATE transactions\s+SET type = \$2`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(transactionArgs(txn)...).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.Update(ctx, txn)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(transactionArgs(txn)...).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Update(ctx, txn)
		assert.ErrorIs(t, err, transaction.ErrTransactionNotFound{})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_Tombstone(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: logger}
	id := uuid.New()
	actor := shared.Actor{ID: "u-2", Name: "accountant"}

	query := `UPDATE transactions\s+SET deleted = TRUE`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(id, shared.TransactionStatusCancelled, pgxmock.AnyArg(), actor.ID, actor.Name).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.Tombstone(ctx, id, actor)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already deleted", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(id, shared.TransactionStatusCancelled, pgxmock.AnyArg(), actor.ID, actor.Name).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Tombstone(ctx, id, actor)
		assert.ErrorIs(t, err, transaction.ErrTransactionNotFound{})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_ListByAccountID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: logger}
	accID := uuid.New()

	query := `FROM transactions\s+WHERE deleted = FALSE AND \(account_from_id = \$1 OR account_to_id = \$1\)`

	t.Run("success", func(t *testing.T) {
		first := storedExpense(accID)
		second := storedExpense(accID)
		rows := pgxmock.NewRows(transactionRowColumns).
			AddRow(transactionArgs(first)...).
			AddRow(transactionArgs(second)...)
		mock.ExpectQuery(query).WithArgs(accID, 10, 20).WillReturnRows(rows)

		txns, err := repo.ListByAccountID(ctx, accID, 10, 20)
		assert.NoError(t, err)
		require.Len(t, txns, 2)
		assert.Equal(t, first.ID, txns[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectQuery(query).WithArgs(accID, 10, 0).WillReturnError(expectedErr)

		txns, err := repo.ListByAccountID(ctx, accID, 10, 0)
		assert.Error(t, err)
		assert.Nil(t, txns)
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_CountByAccountID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: logger}
	accID := uuid.New()

	mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM transactions`).
		WithArgs(accID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(42)))

	count, err := repo.CountByAccountID(ctx, accID)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_ListByDateRange(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: logger}
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)

	t.Run("filtered by type", func(t *testing.T) {
		txn := storedExpense(uuid.New())
		mock.ExpectQuery(`FROM transactions\s+WHERE deleted = FALSE AND date >= \$1 AND date <= \$2\s+AND type = \$3`).
			WithArgs(start, end, shared.TransactionTypeExpense).
			WillReturnRows(transactionRow(txn))

		txns, err := repo.ListByDateRange(ctx, start, end, shared.TransactionTypeExpense)
		assert.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, txn.ID, txns[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unfiltered", func(t *testing.T) {
		income := storedExpense(uuid.New())
		income.Type = shared.TransactionTypeIncome
		expense := storedExpense(uuid.New())
		rows := pgxmock.NewRows(transactionRowColumns).
			AddRow(transactionArgs(income)...).
			AddRow(transactionArgs(expense)...)
		mock.ExpectQuery(`FROM transactions\s+WHERE deleted = FALSE AND date >= \$1 AND date <= \$2`).
			WithArgs(start, end).
			WillReturnRows(rows)

		txns, err := repo.ListByDateRange(ctx, start, end, "")
		assert.NoError(t, err)
		require.Len(t, txns, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
