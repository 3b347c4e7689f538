package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blog-commerce-backend/internal/domain/receipt"
	"github.com/blog-commerce-backend/internal/domain/shared"
	"github.com/blog-commerce-backend/internal/receipt_processor/service"
	"github.com/go-playground/validator/v10"
)

type EventValidatorImpl struct {
	receiptRepo receipt.Repository
	validate    *validator.Validate
	logger      *slog.Logger
}

func NewEventValidator(receiptRepo receipt.Repository, logger *slog.Logger) service.EventValidator {
	return &EventValidatorImpl{
		receiptRepo: receiptRepo,
		validate:    validator.New(),
		logger:      logger,
	}
}

// Validate checks the event against its struct tags. Failures wrap service.ErrInvalidEvent.
func (v *EventValidatorImpl) Validate(ctx context.Context, event *shared.PaymentEvent) error {
	if event == nil {
		return fmt.Errorf("%w: empty event", service.ErrInvalidEvent)
	}
	if err := v.validate.StructCtx(ctx, event); err != nil {
		return fmt.Errorf("%w: %v", service.ErrInvalidEvent, err)
	}
	return nil
}

// CheckIdempotency reports true when a receipt was already issued for the transaction
func (v *EventValidatorImpl) CheckIdempotency(ctx context.Context, event *shared.PaymentEvent) (bool, error) {
	logger := v.logger
	if event.CorrelationID != "" {
		logger = v.logger.With("correlation_id", event.CorrelationID)
	}

	exists, err := v.receiptRepo.ExistsForTransaction(ctx, event.TransactionID)
	if err != nil {
		logger.Error("Failed to check receipts for idempotency", "transaction_id", event.TransactionID.String(), "error", err)
		return false, fmt.Errorf("idempotency check failed for transaction %s: %w", event.TransactionID.String(), err)
	}
	if exists {
		logger.Info("Receipt already issued (idempotency)", "transaction_id", event.TransactionID.String(), "event_id", event.EventID.String())
	}
	return exists, nil
}
