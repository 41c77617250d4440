// Package engine owns the two mutating pieces of the finance core: the
// effect engine that applies and reverses a transaction's balance deltas, and
// the orchestrator that sequences reversal and re-application across create,
// edit and delete.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/taxiops-finance-core/internal/domain/account"
	"github.com/taxiops-finance-core/internal/domain/outbox"
	"github.com/taxiops-finance-core/internal/domain/shared"
	"github.com/taxiops-finance-core/internal/domain/transaction"
)

// EffectEngineImpl implements the EffectApplier interface
type EffectEngineImpl struct {
	accountRepo account.Repository
	outboxRepo  outbox.Repository
	logger      *slog.Logger
}

// NewEffectEngine creates a new EffectEngineImpl
func NewEffectEngine(accountRepo account.Repository, outboxRepo outbox.Repository, logger *slog.Logger) EffectApplier {
	return &EffectEngineImpl{
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		logger:      logger,
	}
}

type balanceDelta struct {
	accountID uuid.UUID
	delta     decimal.Decimal
}

// deltasFor maps a transaction onto its signed balance deltas. The paying
// side loses the amount on expense and transfer; the receiving side gains it
// on income and transfer. External parties carry no delta. Amounts are
// treated as non-negative here; sign is expressed entirely through type and
// directionality.
func deltasFor(txn *transaction.Transaction) []balanceDelta {
	var deltas []balanceDelta

	if txn.AccountFrom.Internal() &&
		(txn.Type == shared.TransactionTypeExpense || txn.Type == shared.TransactionTypeTransfer) {
		deltas = append(deltas, balanceDelta{accountID: *txn.AccountFrom.AccountID, delta: txn.Amount.Neg()})
	}
	if txn.AccountTo.Internal() &&
		(txn.Type == shared.TransactionTypeIncome || txn.Type == shared.TransactionTypeTransfer) {
		deltas = append(deltas, balanceDelta{accountID: *txn.AccountTo.AccountID, delta: txn.Amount})
	}

	// Deterministic lock order across calls touching the same account pair
	sort.Slice(deltas, func(i, j int) bool {
		return bytes.Compare(deltas[i].accountID[:], deltas[j].accountID[:]) < 0
	})
	return deltas
}

// ApplyEffect applies the transaction's balance deltas inside the given
// database transaction.
func (e *EffectEngineImpl) ApplyEffect(ctx context.Context, tx pgx.Tx, txn *transaction.Transaction) error {
	return e.applyDeltas(ctx, tx, txn.ID, deltasFor(txn))
}

// ReverseEffect is the exact amount-negated mirror of ApplyEffect. It is
// driven by the transaction's stored refs, type and amount, never the
// caller's current form state, so reversal stays correct mid-edit.
func (e *EffectEngineImpl) ReverseEffect(ctx context.Context, tx pgx.Tx, txn *transaction.Transaction) error {
	deltas := deltasFor(txn)
	for i := range deltas {
		deltas[i].delta = deltas[i].delta.Neg()
	}
	return e.applyDeltas(ctx, tx, txn.ID, deltas)
}

// applyDeltas is the only sanctioned balance mutator. Each account row is
// locked for the duration of its read-modify-write, and every adjustment
// lands in the outbox as an auditable event within the same database
// transaction.
func (e *EffectEngineImpl) applyDeltas(ctx context.Context, tx pgx.Tx, causeID uuid.UUID, deltas []balanceDelta) error {
	accountRepoTx := e.accountRepo.WithTx(tx)
	outboxRepoTx := e.outboxRepo.WithTx(tx)

	for _, d := range deltas {
		locked, err := accountRepoTx.LockForUpdate(ctx, d.accountID)
		if err != nil {
			return err
		}

		oldBalance := locked.Balance
		if err := locked.Adjust(d.delta); err != nil {
			return fmt.Errorf("failed to adjust balance of account %s: %w", d.accountID.String(), err)
		}

		if err := accountRepoTx.Update(ctx, locked); err != nil {
			return err
		}

		audit := account.BalanceAudit{
			AccountID:     d.accountID,
			TransactionID: causeID,
			OldBalance:    oldBalance,
			Delta:         d.delta,
			NewBalance:    locked.Balance,
			OccurredAt:    time.Now(),
		}
		msg, err := outbox.NewMessage(shared.EventKindBalanceAudit, d.accountID, audit)
		if err != nil {
			return fmt.Errorf("failed to build balance audit message: %w", err)
		}
		if err := outboxRepoTx.Create(ctx, msg); err != nil {
			return err
		}

		e.logger.Info("Balance adjusted",
			"account_id", d.accountID.String(),
			"transaction_id", causeID.String(),
			"old_balance", oldBalance.String(),
			"delta", d.delta.String(),
			"new_balance", locked.Balance.String(),
		)
	}

	return nil
}
