package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/blog-commerce-backend/internal/domain/outbox"
	"github.com/blog-commerce-backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ReceiptPublisher delivers an outbox message to its destination
type ReceiptPublisher interface {
	PublishReceipt(ctx context.Context, message *outbox.Message) error
}

// ReceiptStamper records an issued receipt on the payment transaction
type ReceiptStamper interface {
	AttachReceipt(ctx context.Context, transactionID uuid.UUID, receiptNumber string, issuedAt time.Time) error
}

// ReceiptPublisherImpl stamps receipt numbers onto payment records
type ReceiptPublisherImpl struct {
	outboxRepo outbox.Repository
	stamper    ReceiptStamper
	logger     *slog.Logger
}

func NewReceiptPublisher(
	outboxRepo outbox.Repository,
	stamper ReceiptStamper,
	logger *slog.Logger,
) ReceiptPublisher {
	return &ReceiptPublisherImpl{
		outboxRepo: outboxRepo,
		stamper:    stamper,
		logger:     logger,
	}
}

// PublishReceipt stamps the receipt and marks the message PROCESSED.
// Stamping sets the same fields every time, so a retry after a failed status update is harmless.
func (p *ReceiptPublisherImpl) PublishReceipt(ctx context.Context, message *outbox.Message) error {
	issued, err := message.GetReceipt()
	if err != nil {
		p.logger.Error("Failed to unmarshal receipt from outbox payload",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger.With("outbox_id", message.ID, "transaction_id", issued.TransactionID.String())

	if err := p.stamper.AttachReceipt(ctx, issued.TransactionID, issued.Number, issued.CreatedAt); err != nil {
		logger.Error("Failed to attach receipt to payment transaction", "receipt_number", issued.Number, "error", err)
		return fmt.Errorf("failed to attach receipt %s: %w", issued.Number, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED", "error", err)
		return fmt.Errorf("receipt %s attached, but failed to mark outbox %d as PROCESSED: %w", issued.Number, message.ID, err)
	}

	logger.Info("Receipt attached to payment transaction", "receipt_number", issued.Number)
	return nil
}
