package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/taxiops-finance-core/internal/domain/shared"
)

// Message stores a balance-audit or reconciliation event for reliable
// publishing. Rows are written in the same database transaction as the
// balance mutation they describe, then drained to Kafka by the poller.
type Message struct {
	ID            int64               `json:"id"`
	EventID       uuid.UUID           `json:"event_id"`
	AccountID     uuid.UUID           `json:"account_id"`
	Kind          shared.EventKind    `json:"kind"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

// NewMessage wraps an event payload for the outbox
func NewMessage(kind shared.EventKind, accountID uuid.UUID, payload any) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:   uuid.New(),
		AccountID: accountID,
		Kind:      kind,
		Payload:   raw,
		Status:    shared.OutboxStatusPending,
		Attempts:  0,
		CreatedAt: time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// DecodePayload unmarshals the payload into the given event struct
func (m *Message) DecodePayload(v any) error {
	return json.Unmarshal(m.Payload, v)
}
