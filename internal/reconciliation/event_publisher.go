package reconciliation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/taxiops-finance-core/internal/domain/outbox"
	"github.com/taxiops-finance-core/internal/domain/shared"
	"github.com/taxiops-finance-core/internal/platform/messaging/producers"
)

// EventPublisher routes outbox messages to their Kafka topic
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// EventPublisherImpl implements EventPublisher
type EventPublisherImpl struct {
	outboxRepo             outbox.Repository
	auditProducer          producers.MessagePublisher
	reconciliationProducer producers.MessagePublisher
	logger                 *slog.Logger
}

// NewEventPublisher creates a new publisher
func NewEventPublisher(
	outboxRepo outbox.Repository,
	auditProducer producers.MessagePublisher,
	reconciliationProducer producers.MessagePublisher,
	logger *slog.Logger,
) EventPublisher {
	return &EventPublisherImpl{
		outboxRepo:             outboxRepo,
		auditProducer:          auditProducer,
		reconciliationProducer: reconciliationProducer,
		logger:                 logger,
	}
}

// PublishEvent publishes an outbox message to the topic matching its kind and
// marks it PROCESSED on success
func (p *EventPublisherImpl) PublishEvent(ctx context.Context, message *outbox.Message) error {
	logger := p.logger.With("outbox_id", message.ID, "event_id", message.EventID.String(), "kind", string(message.Kind))

	var producer producers.MessagePublisher
	switch message.Kind {
	case shared.EventKindBalanceAudit:
		producer = p.auditProducer
	case shared.EventKindReconciliation:
		producer = p.reconciliationProducer
	default:
		logger.Error("Unknown event kind in outbox message, marking as FAILED_TO_PUBLISH")
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			logger.Error("Also failed to update outbox status after unknown kind", "update_error", updateErr)
		}
		return fmt.Errorf("unknown event kind %q for outbox message %d", message.Kind, message.ID)
	}

	logger.Info("Attempting to publish outbox message")

	if err := producer.Publish(ctx, message.AccountID.String(), json.RawMessage(message.Payload)); err != nil {
		logger.Error("Failed to publish outbox message", "error", err)
		return fmt.Errorf("failed to publish outbox message %d: %w", message.ID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED", "error", err)
		return fmt.Errorf("publish for outbox %d OK, but failed to mark as PROCESSED: %w", message.ID, err)
	}

	logger.Info("Outbox message successfully published and marked as PROCESSED")
	return nil
}
