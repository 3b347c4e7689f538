package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/blog-commerce-backend/internal/domain/receipt"
	"github.com/blog-commerce-backend/internal/domain/shared"
	"github.com/blog-commerce-backend/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// ProcessingServiceImpl issues one receipt per paid transaction
type ProcessingServiceImpl struct {
	db             persistence.TxBeginner
	validator      EventValidator
	receiptManager ReceiptManager
	outboxManager  OutboxManager
	logger         *slog.Logger
}

func NewProcessingService(
	db persistence.TxBeginner,
	validator EventValidator,
	receiptManager ReceiptManager,
	outboxManager OutboxManager,
	logger *slog.Logger,
) *ProcessingServiceImpl {
	return &ProcessingServiceImpl{
		db:             db,
		validator:      validator,
		receiptManager: receiptManager,
		outboxManager:  outboxManager,
		logger:         logger,
	}
}

// ProcessEvent validates the event, skips it when a receipt already exists, and
// otherwise stores the receipt and its outbox row in a single transaction.
// A nil return means the message can be acknowledged.
func (s *ProcessingServiceImpl) ProcessEvent(ctx context.Context, event *shared.PaymentEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	if err := s.validator.Validate(ctx, event); err != nil {
		if errors.Is(err, ErrInvalidEvent) {
			logger.Warn("Dropping invalid payment event",
				"event_id", event.EventID.String(),
				"transaction_id", event.TransactionID.String(),
				"error", err,
			)
			return nil
		}
		return err
	}

	skip, err := s.validator.CheckIdempotency(ctx, event)
	if err != nil {
		return err
	}
	if skip {
		return nil
	}

	var issued *receipt.Receipt
	err = persistence.ExecuteTx(ctx, s.db, func(tx pgx.Tx) error {
		r, err := s.receiptManager.IssueReceipt(ctx, tx, event)
		if err != nil {
			return err
		}
		if err := s.outboxManager.CreateOutboxEntry(ctx, tx, r, event.CorrelationID); err != nil {
			return err
		}
		issued = r
		return nil
	})
	if err != nil {
		if errors.Is(err, receipt.ErrDuplicateReceipt{}) {
			logger.Info("Receipt issued concurrently, skipping",
				"transaction_id", event.TransactionID.String(),
			)
			return nil
		}
		logger.Error("Failed to issue receipt",
			"transaction_id", event.TransactionID.String(),
			"error", err,
		)
		return fmt.Errorf("issue receipt for transaction %s: %w", event.TransactionID.String(), err)
	}

	logger.Info("Receipt issued",
		"transaction_id", event.TransactionID.String(),
		"receipt_number", issued.Number,
	)
	return nil
}
