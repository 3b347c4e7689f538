package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blog-commerce-backend/internal/domain/outbox"
	"github.com/blog-commerce-backend/internal/domain/receipt"
	"github.com/blog-commerce-backend/internal/receipt_processor/service"
	"github.com/jackc/pgx/v5"
)

type OutboxManagerImpl struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewOutboxManager(outboxRepo outbox.Repository, logger *slog.Logger) service.OutboxManager {
	return &OutboxManagerImpl{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// CreateOutboxEntry queues the issued receipt for the outbox poller within tx
func (m *OutboxManagerImpl) CreateOutboxEntry(ctx context.Context, tx pgx.Tx, issued *receipt.Receipt, correlationID string) error {
	logger := m.logger
	if correlationID != "" {
		logger = m.logger.With("correlation_id", correlationID)
	}

	outboxMessage, err := outbox.NewMessage(issued)
	if err != nil {
		logger.Error("Failed to create new outbox message (marshal payload)",
			"transaction_id", issued.TransactionID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message payload for tx %s: %w", issued.TransactionID.String(), err)
	}

	if err = m.outboxRepo.WithTx(tx).Create(ctx, outboxMessage); err != nil {
		logger.Error("Failed to create outbox message",
			"transaction_id", issued.TransactionID.String(),
			"receipt_id", issued.ID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message for tx %s: %w", issued.TransactionID.String(), err)
	}
	logger.Info("Outbox message created successfully",
		"transaction_id", issued.TransactionID.String(),
		"outbox_id", outboxMessage.ID,
	)

	return nil
}
