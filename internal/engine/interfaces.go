package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/taxiops-finance-core/internal/domain/shared"
	"github.com/taxiops-finance-core/internal/domain/transaction"
)

// TxBeginner starts database transactions; satisfied by *pgxpool.Pool
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// EffectApplier applies and reverses transaction effects on account balances.
// Both methods run inside a caller-supplied database transaction; the caller
// owns commit and rollback.
type EffectApplier interface {
	ApplyEffect(ctx context.Context, tx pgx.Tx, txn *transaction.Transaction) error
	ReverseEffect(ctx context.Context, tx pgx.Tx, txn *transaction.Transaction) error
}

// Orchestrator sequences effect reversal and application across transaction
// create, edit and delete.
type Orchestrator interface {
	Create(ctx context.Context, draft *transaction.Transaction, actor shared.Actor) (*transaction.Transaction, error)
	Update(ctx context.Context, id uuid.UUID, draft *transaction.Transaction, actor shared.Actor) (*transaction.Transaction, error)
	Delete(ctx context.Context, id uuid.UUID, actor shared.Actor) error
}
