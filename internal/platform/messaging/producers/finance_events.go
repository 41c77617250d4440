package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"github.com/taxiops-finance-core/internal/config"
)

type FinanceEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewBalanceAuditProducer creates the producer for balance audit events and
// ensures the topic exists. Audit events are high volume, so writes are async.
func NewBalanceAuditProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*FinanceEventProducer, error) {
	if cfg.AuditTopic == "" {
		return nil, fmt.Errorf("kafka audit topic is not configured")
	}
	return newFinanceEventProducer(logger, cfg, cfg.AuditTopic, kafka.RequireOne, true)
}

// NewReconciliationEventProducer creates the producer for reconciliation
// incident events. These are operator-critical, so writes are synchronous and
// require acknowledgement from all replicas.
func NewReconciliationEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*FinanceEventProducer, error) {
	if cfg.ReconciliationTopic == "" {
		return nil, fmt.Errorf("kafka reconciliation topic is not configured")
	}
	return newFinanceEventProducer(logger, cfg, cfg.ReconciliationTopic, kafka.RequireAll, false)
}

func newFinanceEventProducer(logger *slog.Logger, cfg *config.KafkaConfig, topic string, acks kafka.RequiredAcks, async bool) (*FinanceEventProducer, error) {
	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for finance event producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, topic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure topic %s exists for finance event producer: %w", topic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: acks,
		Async:        async,
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write messages", "topic", topic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote messages", "topic", topic, "count", len(messages))
			}
		},
	}

	return &FinanceEventProducer{
		logger: logger,
		writer: writer,
		topic:  topic,
	}, nil
}

func (p *FinanceEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message value for finance event producer: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish finance event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish message to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published finance event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *FinanceEventProducer) Close() error {
	p.logger.Info("Closing finance event Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
