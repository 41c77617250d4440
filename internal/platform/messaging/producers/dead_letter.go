package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/taxiops-finance-core/internal/config"
	"github.com/taxiops-finance-core/internal/domain/outbox"
)

// DLQProducer parks outbox events whose publish attempts are exhausted so an
// operator can replay them once the underlying topic problem is fixed.
type DLQProducer struct {
	logger   *slog.Logger
	writer   KafkaWriter
	dlqTopic string
}

// Returns nil producer if cfg.DLQTopic is empty (DLQ disabled)
func NewDLQProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*DLQProducer, error) {
	if cfg.DLQTopic == "" {
		logger.Info("DLQ topic is not configured. DLQProducer will not be initialized.")
		return nil, nil // DLQ is disabled, not an error.
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for dlq producer: %w", err)
	}
	defer conn.Close()

	if err := createKafkaTopicIfNotExists(conn, cfg.DLQTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure DLQ topic %s exists: %w", cfg.DLQTopic, err)
	}

	// Parked events must not be lost a second time, so writes are synchronous
	// and acknowledged by all replicas.
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.DLQTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return &DLQProducer{
		logger:   logger,
		writer:   writer,
		dlqTopic: cfg.DLQTopic,
	}, nil
}

// PublishToDLQ parks an exhausted outbox event. The envelope keeps the event
// identity, kind and attempt count next to the untouched payload so replays
// need no database lookup.
func (p *DLQProducer) PublishToDLQ(ctx context.Context, msg *outbox.Message, reason string) error {
	if p == nil || p.writer == nil {
		return fmt.Errorf("DLQ producer not initialized")
	}

	envelope := struct {
		EventID       string          `json:"event_id"`
		EventKind     string          `json:"event_kind"`
		AccountID     string          `json:"account_id"`
		Payload       json.RawMessage `json:"payload"`
		Attempts      int             `json:"attempts"`
		FailureReason string          `json:"failure_reason"`
		ParkedAt      string          `json:"parked_at"`
	}{
		EventID:       msg.EventID.String(),
		EventKind:     string(msg.Kind),
		AccountID:     msg.AccountID.String(),
		Payload:       msg.Payload,
		Attempts:      msg.Attempts,
		FailureReason: reason,
		ParkedAt:      time.Now().UTC().Format(time.RFC3339Nano),
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal DLQ envelope: %w", err)
	}

	kafkaMsg := kafka.Message{
		Key:   []byte(msg.EventID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-kind", Value: []byte(msg.Kind)},
			{Key: "failure-reason", Value: []byte(reason)},
		},
	}

	if err := p.writer.WriteMessages(ctx, kafkaMsg); err != nil {
		p.logger.Error("Failed to park outbox event in DLQ",
			"topic", p.dlqTopic,
			"event_id", msg.EventID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to publish message to DLQ %s: %w", p.dlqTopic, err)
	}

	p.logger.Info("Parked exhausted outbox event in DLQ",
		"topic", p.dlqTopic,
		"event_id", msg.EventID.String(),
		"kind", string(msg.Kind),
		"attempts", msg.Attempts,
		"reason", reason,
	)
	return nil
}

func (p *DLQProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	p.logger.Info("Closing DLQ Kafka message producer", "topic", p.dlqTopic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close dlq kafka writer for topic %s: %w", p.dlqTopic, err)
	}
	return nil
}
