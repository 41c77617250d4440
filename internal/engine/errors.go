package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taxiops-finance-core/internal/domain/transaction"
)

// ReconciliationError is raised when the engine can no longer prove the
// balances reflect either the old or the new transaction state: a commit or
// rollback failure after balance mutations were issued. It carries both
// snapshots so an operator (or an automated replayer) can roll back to the
// old effect or roll forward to the new one; the engine itself never guesses
// which.
type ReconciliationError struct {
	Op            string
	TransactionID uuid.UUID
	OldSnapshot   *transaction.Transaction // nil on create
	NewSnapshot   *transaction.Transaction // nil on delete
	AccountIDs    []uuid.UUID
	Cause         error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconciliation required after %s of transaction %s: %v",
		e.Op, e.TransactionID.String(), e.Cause)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Cause
}

// ReconciliationEvent is the operator-queue payload published for every
// reconciliation incident.
type ReconciliationEvent struct {
	Op            string                   `json:"op"`
	TransactionID uuid.UUID                `json:"transaction_id"`
	OldSnapshot   *transaction.Transaction `json:"old_snapshot,omitempty"`
	NewSnapshot   *transaction.Transaction `json:"new_snapshot,omitempty"`
	AccountIDs    []uuid.UUID              `json:"account_ids"`
	Reason        string                   `json:"reason"`
	OccurredAt    time.Time                `json:"occurred_at"`
}
