package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/taxiops-finance-core/internal/domain/shared"
	"github.com/taxiops-finance-core/internal/domain/transaction"
	"github.com/taxiops-finance-core/internal/platform/persistence"
)

const transactionColumns = `
	id, type, amount, date, category, description,
	account_from_id, account_from_external, account_to_id, account_to_external,
	payment_method, payment_reference, payment_status, status, deleted,
	created_at, created_by_id, created_by_name, updated_at, updated_by_id, updated_by_name`

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so document writes share the
// critical section with the balance mutations they describe.
func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new transaction document
func (r *TransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err := r.querier.Exec(ctx, query, r.args(txn)...)
	if err != nil {
		r.logger.Error("Failed to create transaction", "id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by its ID, tombstoned rows included so the
// orchestrator can distinguish deleted from missing.
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	txn, err := r.scanOne(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return txn, nil
}

// Update overwrites a transaction document
func (r *TransactionRepository) Update(ctx context.Context, txn *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET type = $2, amount = $3, date = $4, category = $5, description = $6,
			account_from_id = $7, account_from_external = $8, account_to_id = $9, account_to_external = $10,
			payment_method = $11, payment_reference = $12, payment_status = $13, status = $14, deleted = $15,
			created_at = $16, created_by_id = $17, created_by_name = $18,
			updated_at = $19, updated_by_id = $20, updated_by_name = $21
		WHERE id = $1
	`

	result, err := r.querier.Exec(ctx, query, r.args(txn)...)
	if err != nil {
		r.logger.Error("Failed to update transaction", "id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound{TransactionID: txn.ID}
	}

	return nil
}

// Tombstone marks a transaction deleted without removing the row, so the
// reversal evidence stays queryable.
func (r *TransactionRepository) Tombstone(ctx context.Context, id uuid.UUID, actor shared.Actor) error {
	query := `
		UPDATE transactions
		SET deleted = TRUE, status = $2, updated_at = $3, updated_by_id = $4, updated_by_name = $5
		WHERE id = $1 AND deleted = FALSE
	`

	result, err := r.querier.Exec(ctx, query, id, shared.TransactionStatusCancelled, time.Now(), actor.ID, actor.Name)
	if err != nil {
		r.logger.Error("Failed to tombstone transaction", "id", id.String(), "error", err)
		return fmt.Errorf("failed to tombstone transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound{TransactionID: id}
	}

	return nil
}

// ListByAccountID retrieves live transactions touching an account, newest
// date first.
func (r *TransactionRepository) ListByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE deleted = FALSE AND (account_from_id = $1 OR account_to_id = $1)
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list transactions by account", "account_id", accountID.String(), "error", err)
		return nil, fmt.Errorf("failed to list transactions by account: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// CountByAccountID counts live transactions touching an account
func (r *TransactionRepository) CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE deleted = FALSE AND (account_from_id = $1 OR account_to_id = $1)
	`

	var count int64
	if err := r.querier.QueryRow(ctx, query, accountID).Scan(&count); err != nil {
		r.logger.Error("Failed to count transactions by account", "account_id", accountID.String(), "error", err)
		return 0, fmt.Errorf("failed to count transactions by account: %w", err)
	}

	return count, nil
}

// ListByDateRange retrieves live transactions inside a closed date window,
// optionally filtered by type. Used by the profit-split allocator to net
// window income against window expenses.
func (r *TransactionRepository) ListByDateRange(ctx context.Context, start, end time.Time, txnType shared.TransactionType) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE deleted = FALSE AND date >= $1 AND date <= $2
	`
	args := []interface{}{start, end}
	if txnType != "" {
		query += ` AND type = $3`
		args = append(args, txnType)
	}
	query += ` ORDER BY date ASC, created_at ASC`

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list transactions by date range", "error", err)
		return nil, fmt.Errorf("failed to list transactions by date range: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *TransactionRepository) args(txn *transaction.Transaction) []interface{} {
	return []interface{}{
		txn.ID,
		txn.Type,
		txn.Amount,
		txn.Date,
		txn.Category,
		txn.Description,
		txn.AccountFrom.AccountID,
		txn.AccountFrom.External,
		txn.AccountTo.AccountID,
		txn.AccountTo.External,
		txn.PaymentMethod,
		txn.PaymentReference,
		txn.PaymentStatus,
		txn.Status,
		txn.Deleted,
		txn.CreatedAt,
		txn.CreatedBy.ID,
		txn.CreatedBy.Name,
		txn.UpdatedAt,
		txn.UpdatedBy.ID,
		txn.UpdatedBy.Name,
	}
}

func (r *TransactionRepository) scanOne(row pgx.Row) (*transaction.Transaction, error) {
	var txn transaction.Transaction
	err := row.Scan(
		&txn.ID,
		&txn.Type,
		&txn.Amount,
		&txn.Date,
		&txn.Category,
		&txn.Description,
		&txn.AccountFrom.AccountID,
		&txn.AccountFrom.External,
		&txn.AccountTo.AccountID,
		&txn.AccountTo.External,
		&txn.PaymentMethod,
		&txn.PaymentReference,
		&txn.PaymentStatus,
		&txn.Status,
		&txn.Deleted,
		&txn.CreatedAt,
		&txn.CreatedBy.ID,
		&txn.CreatedBy.Name,
		&txn.UpdatedAt,
		&txn.UpdatedBy.ID,
		&txn.UpdatedBy.Name,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *TransactionRepository) collect(rows pgx.Rows) ([]*transaction.Transaction, error) {
	var txns []*transaction.Transaction
	for rows.Next() {
		txn, err := r.scanOne(rows)
		if err != nil {
			r.logger.Error("Failed to scan transaction", "error", err)
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}

	return txns, nil
}
