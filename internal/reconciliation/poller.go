package reconciliation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/taxiops-finance-core/internal/config"
	"github.com/taxiops-finance-core/internal/domain/outbox"
	"github.com/taxiops-finance-core/internal/domain/shared"
	"github.com/taxiops-finance-core/internal/platform/messaging/producers"
)

// Poller processes pending outbox messages through a worker pool
type Poller struct {
	outboxRepo       outbox.Repository
	publisher        EventPublisher
	dlqProducer      producers.DeadLetterPublisher
	pool             *ants.Pool
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	workerPoolSize int,
	outboxRepo outbox.Repository,
	publisher EventPublisher,
	dlqProducer producers.DeadLetterPublisher,
	logger *slog.Logger,
) (*Poller, error) {
	pool, err := ants.NewPool(workerPoolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create outbox worker pool: %w", err)
	}

	return &Poller{
		outboxRepo:       outboxRepo,
		publisher:        publisher,
		dlqProducer:      dlqProducer,
		pool:             pool,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}, nil
}

// Start begins polling until context is canceled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting Outbox Poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
		"worker_pool_capacity", p.pool.Cap(),
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox Poller stopping due to context cancellation.")
			p.pool.Release()
			return
		case <-ticker.C:
			p.logger.Debug("Outbox Poller tick: processing pending messages")
			if err := p.processPendingMessages(ctx); err != nil {
				p.logger.Error("Error during batch processing of pending outbox messages", "error", err)
			}
		}
	}
}

func (p *Poller) processPendingMessages(ctx context.Context) error {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending outbox messages: %w", err)
	}

	if len(messages) == 0 {
		p.logger.Debug("No pending outbox messages found.")
		return nil
	}

	p.logger.Info("Fetched pending outbox messages", "count", len(messages))

	var wg sync.WaitGroup
	for _, msg := range messages {
		msg := msg
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			p.handleMessage(ctx, msg)
		})
		if submitErr != nil {
			wg.Done()
			p.logger.Error("Failed to submit outbox message to worker pool", "outbox_id", msg.ID, "error", submitErr)
		}
	}
	wg.Wait()
	return nil
}

func (p *Poller) handleMessage(ctx context.Context, msg *outbox.Message) {
	logger := p.logger.With("outbox_id", msg.ID, "event_id", msg.EventID.String(), "account_id", msg.AccountID.String())

	err := p.publisher.PublishEvent(ctx, msg)
	if err == nil {
		logger.Info("Successfully processed and published outbox message")
		return
	}

	logger.Error("Failed to publish outbox message", "current_attempts", msg.Attempts, "error", err)

	if errInc := p.outboxRepo.IncrementAttempts(ctx, msg.ID); errInc != nil {
		logger.Error("Failed to increment attempts for outbox message", "error", errInc)
		return
	}

	if msg.Attempts+1 >= p.maxRetryAttempts {
		logger.Warn("Max retry attempts reached for outbox message, marking as FAILED_TO_PUBLISH",
			"attempts_made", msg.Attempts+1,
		)
		if errUpdate := p.outboxRepo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusFailedToPublish); errUpdate != nil {
			logger.Error("Failed to update outbox status to FAILED_TO_PUBLISH after max retries", "error", errUpdate)
		}
		if p.dlqProducer != nil {
			if dlqErr := p.dlqProducer.PublishToDLQ(ctx, msg, err.Error()); dlqErr != nil {
				logger.Error("Failed to publish exhausted outbox message to DLQ", "error", dlqErr)
			}
		}
	}
}
