package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/looplab/fsm"
	"github.com/taxiops-finance-core/internal/domain/account"
	"github.com/taxiops-finance-core/internal/domain/outbox"
	"github.com/taxiops-finance-core/internal/domain/shared"
	"github.com/taxiops-finance-core/internal/domain/transaction"
)

// Edit flow states
const (
	stateDraft          = "draft"
	stateValidated      = "validated"
	stateEffectReversed = "effect_reversed"
	stateEffectApplied  = "effect_applied"
	statePersisted      = "persisted"
	stateAborted        = "aborted"
)

// Edit flow events
const (
	eventValidate = "validate"
	eventReverse  = "reverse"
	eventApply    = "apply"
	eventPersist  = "persist"
	eventAbort    = "abort"
)

// newEditFlow builds the per-operation state machine. Reversal is only
// reachable from validated (edit/delete), application from validated (create)
// or after reversal (edit), and persistence after application or, for
// deletes, straight after reversal. The machine makes reordering the
// reverse/apply steps impossible.
func newEditFlow() *fsm.FSM {
	return fsm.NewFSM(
		stateDraft,
		fsm.Events{
			{Name: eventValidate, Src: []string{stateDraft}, Dst: stateValidated},
			{Name: eventReverse, Src: []string{stateValidated}, Dst: stateEffectReversed},
			{Name: eventApply, Src: []string{stateValidated, stateEffectReversed}, Dst: stateEffectApplied},
			{Name: eventPersist, Src: []string{stateEffectApplied, stateEffectReversed}, Dst: statePersisted},
			{Name: eventAbort, Src: []string{stateDraft, stateValidated, stateEffectReversed, stateEffectApplied}, Dst: stateAborted},
		},
		fsm.Callbacks{},
	)
}

// OrchestratorImpl implements the Orchestrator interface
type OrchestratorImpl struct {
	db          TxBeginner
	effects     EffectApplier
	txnRepo     transaction.Repository
	accountRepo account.Repository
	outboxRepo  outbox.Repository
	logger      *slog.Logger
}

// NewOrchestrator creates a new OrchestratorImpl
func NewOrchestrator(
	db TxBeginner,
	effects EffectApplier,
	txnRepo transaction.Repository,
	accountRepo account.Repository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
) Orchestrator {
	return &OrchestratorImpl{
		db:          db,
		effects:     effects,
		txnRepo:     txnRepo,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		logger:      logger,
	}
}

// Create validates a draft, applies its effect and persists the transaction
// document, all inside one database transaction. A failure anywhere rolls
// everything back: the caller may report "could not save; no changes
// applied".
func (o *OrchestratorImpl) Create(ctx context.Context, draft *transaction.Transaction, actor shared.Actor) (*transaction.Transaction, error) {
	flow := newEditFlow()

	if err := o.validateDraft(ctx, draft); err != nil {
		_ = flow.Event(ctx, eventAbort)
		return nil, err
	}
	if err := flow.Event(ctx, eventValidate); err != nil {
		return nil, fmt.Errorf("edit flow: %w", err)
	}

	now := time.Now()
	if draft.ID == uuid.Nil {
		draft.ID = uuid.New()
	}
	if draft.Status == "" {
		draft.Status = shared.TransactionStatusCompleted
	}
	draft.CreatedAt = now
	draft.CreatedBy = actor
	draft.UpdatedAt = now
	draft.UpdatedBy = actor

	tx, err := o.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin DB transaction: %w", err)
	}

	if err := o.effects.ApplyEffect(ctx, tx, draft); err != nil {
		return nil, o.rollback(ctx, tx, flow, "create", draft.ID, nil, draft, err)
	}
	if err := flow.Event(ctx, eventApply); err != nil {
		return nil, fmt.Errorf("edit flow: %w", err)
	}

	if err := o.txnRepo.WithTx(tx).Create(ctx, draft); err != nil {
		return nil, o.rollback(ctx, tx, flow, "create", draft.ID, nil, draft, err)
	}
	if err := flow.Event(ctx, eventPersist); err != nil {
		return nil, fmt.Errorf("edit flow: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, o.incident(ctx, "create", draft.ID, nil, draft, err)
	}

	o.logger.Info("Transaction created",
		"transaction_id", draft.ID.String(),
		"type", string(draft.Type),
		"amount", draft.Amount.String(),
	)
	return draft, nil
}

// Update reverses the stored transaction's effect, applies the new one and
// overwrites the document, preserving the original createdAt/createdBy. The
// reverse and apply steps are ordered, never parallelized, and coalesced into
// one locked database transaction.
func (o *OrchestratorImpl) Update(ctx context.Context, id uuid.UUID, draft *transaction.Transaction, actor shared.Actor) (*transaction.Transaction, error) {
	flow := newEditFlow()

	existing, err := o.loadExisting(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := o.validateDraft(ctx, draft); err != nil {
		_ = flow.Event(ctx, eventAbort)
		return nil, err
	}
	if err := flow.Event(ctx, eventValidate); err != nil {
		return nil, fmt.Errorf("edit flow: %w", err)
	}

	draft.ID = existing.ID
	draft.CreatedAt = existing.CreatedAt
	draft.CreatedBy = existing.CreatedBy
	draft.UpdatedAt = time.Now()
	draft.UpdatedBy = actor
	if draft.Status == "" {
		draft.Status = existing.Status
	}

	tx, err := o.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin DB transaction: %w", err)
	}

	// Reverse the original effect using its stored snapshot. On failure the
	// rollback leaves transaction and balances exactly as they were pre-edit.
	if err := o.effects.ReverseEffect(ctx, tx, existing); err != nil {
		return nil, o.rollback(ctx, tx, flow, "update", id, existing, draft, err)
	}
	if err := flow.Event(ctx, eventReverse); err != nil {
		return nil, fmt.Errorf("edit flow: %w", err)
	}

	if err := o.effects.ApplyEffect(ctx, tx, draft); err != nil {
		// Balances inside the open tx reflect "neither old nor new"; the
		// rollback is what restores them. If it fails, this becomes a
		// reconciliation incident carrying both snapshots.
		return nil, o.rollback(ctx, tx, flow, "update", id, existing, draft, err)
	}
	if err := flow.Event(ctx, eventApply); err != nil {
		return nil, fmt.Errorf("edit flow: %w", err)
	}

	if err := o.txnRepo.WithTx(tx).Update(ctx, draft); err != nil {
		return nil, o.rollback(ctx, tx, flow, "update", id, existing, draft, err)
	}
	if err := flow.Event(ctx, eventPersist); err != nil {
		return nil, fmt.Errorf("edit flow: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, o.incident(ctx, "update", id, existing, draft, err)
	}

	o.logger.Info("Transaction updated",
		"transaction_id", id.String(),
		"type", string(draft.Type),
		"amount", draft.Amount.String(),
	)
	return draft, nil
}

// Delete reverses the stored effect and tombstones the document. No new
// effect is applied.
func (o *OrchestratorImpl) Delete(ctx context.Context, id uuid.UUID, actor shared.Actor) error {
	flow := newEditFlow()

	existing, err := o.loadExisting(ctx, id)
	if err != nil {
		return err
	}
	if err := flow.Event(ctx, eventValidate); err != nil {
		return fmt.Errorf("edit flow: %w", err)
	}

	tx, err := o.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin DB transaction: %w", err)
	}

	if err := o.effects.ReverseEffect(ctx, tx, existing); err != nil {
		return o.rollback(ctx, tx, flow, "delete", id, existing, nil, err)
	}
	if err := flow.Event(ctx, eventReverse); err != nil {
		return fmt.Errorf("edit flow: %w", err)
	}

	if err := o.txnRepo.WithTx(tx).Tombstone(ctx, id, actor); err != nil {
		return o.rollback(ctx, tx, flow, "delete", id, existing, nil, err)
	}
	if err := flow.Event(ctx, eventPersist); err != nil {
		return fmt.Errorf("edit flow: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return o.incident(ctx, "delete", id, existing, nil, err)
	}

	o.logger.Info("Transaction deleted", "transaction_id", id.String())
	return nil
}

// validateDraft enforces the pre-mutation invariants: positive amount, a
// resolvable side, existing accounts behind every internal ref, and matching
// currencies on transfers. Classification is recomputed here so the stored
// type always agrees with the refs.
func (o *OrchestratorImpl) validateDraft(ctx context.Context, draft *transaction.Transaction) error {
	if err := draft.Validate(); err != nil {
		return err
	}

	var currencies []string
	for _, ref := range []transaction.PartyRef{draft.AccountFrom, draft.AccountTo} {
		if !ref.Internal() {
			continue
		}
		acc, err := o.accountRepo.GetByID(ctx, *ref.AccountID)
		if err != nil {
			return err
		}
		currencies = append(currencies, acc.Currency)
	}
	if len(currencies) == 2 && currencies[0] != currencies[1] {
		return transaction.ErrCurrencyMismatch
	}

	draft.Type = transaction.Classify(draft.AccountFrom, draft.AccountTo, draft.Type)
	if !draft.Type.Valid() {
		return transaction.ErrUnknownType
	}
	return nil
}

func (o *OrchestratorImpl) loadExisting(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	existing, err := o.txnRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Deleted {
		return nil, transaction.ErrTransactionNotFound{TransactionID: id}
	}
	return existing, nil
}

// rollback aborts the flow and rolls the database transaction back. A failed
// rollback after balance mutations means the committed state can no longer be
// trusted: it escalates to a reconciliation incident.
func (o *OrchestratorImpl) rollback(ctx context.Context, tx pgx.Tx, flow *fsm.FSM, op string, id uuid.UUID, oldTxn, newTxn *transaction.Transaction, cause error) error {
	_ = flow.Event(ctx, eventAbort)

	if rbErr := tx.Rollback(ctx); rbErr != nil {
		o.logger.Error("Rollback failed after aborted edit flow",
			"op", op, "transaction_id", id.String(), "rollback_error", rbErr, "original_error", cause)
		return o.incident(ctx, op, id, oldTxn, newTxn, fmt.Errorf("rollback failed: %v (original: %w)", rbErr, cause))
	}

	o.logger.Warn("Edit flow aborted, no changes applied",
		"op", op, "transaction_id", id.String(), "error", cause)
	return cause
}

// incident handles the dangerous partial-failure case: mutations were issued
// and the engine cannot prove whether they are durable. Every touched account
// is marked unverified and a reconciliation event carrying both snapshots is
// queued for the operator. The engine never replays either effect on its own.
func (o *OrchestratorImpl) incident(ctx context.Context, op string, id uuid.UUID, oldTxn, newTxn *transaction.Transaction, cause error) error {
	accountIDs := touchedAccounts(oldTxn, newTxn)

	recErr := &ReconciliationError{
		Op:            op,
		TransactionID: id,
		OldSnapshot:   oldTxn,
		NewSnapshot:   newTxn,
		AccountIDs:    accountIDs,
		Cause:         cause,
	}

	o.logger.Error("Reconciliation incident",
		"op", op,
		"transaction_id", id.String(),
		"old_snapshot", oldTxn,
		"new_snapshot", newTxn,
		"error", cause,
	)

	for _, accID := range accountIDs {
		if err := o.markUnverified(ctx, accID); err != nil {
			o.logger.Error("Failed to mark account unverified", "account_id", accID.String(), "error", err)
		}
	}

	event := ReconciliationEvent{
		Op:            op,
		TransactionID: id,
		OldSnapshot:   oldTxn,
		NewSnapshot:   newTxn,
		AccountIDs:    accountIDs,
		Reason:        cause.Error(),
		OccurredAt:    time.Now(),
	}
	var eventAccount uuid.UUID
	if len(accountIDs) > 0 {
		eventAccount = accountIDs[0]
	}
	if msg, err := outbox.NewMessage(shared.EventKindReconciliation, eventAccount, event); err != nil {
		o.logger.Error("Failed to build reconciliation message", "transaction_id", id.String(), "error", err)
	} else if err := o.outboxRepo.Create(ctx, msg); err != nil {
		o.logger.Error("Failed to queue reconciliation event", "transaction_id", id.String(), "error", err)
	}

	return recErr
}

func (o *OrchestratorImpl) markUnverified(ctx context.Context, id uuid.UUID) error {
	acc, err := o.accountRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	acc.MarkUnverified()
	return o.accountRepo.Update(ctx, acc)
}

// touchedAccounts returns the union of internal refs across both snapshots
func touchedAccounts(oldTxn, newTxn *transaction.Transaction) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, txn := range []*transaction.Transaction{oldTxn, newTxn} {
		if txn == nil {
			continue
		}
		for _, ref := range []transaction.PartyRef{txn.AccountFrom, txn.AccountTo} {
			if ref.Internal() {
				if _, ok := seen[*ref.AccountID]; !ok {
					seen[*ref.AccountID] = struct{}{}
					ids = append(ids, *ref.AccountID)
				}
			}
		}
	}
	return ids
}
