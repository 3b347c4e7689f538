package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/blog-commerce-backend/internal/domain/shared"
	"github.com/blog-commerce-backend/internal/platform/messaging/producers"
	"github.com/blog-commerce-backend/internal/receipt_processor/service"
)

// PaymentEventHandler handles payment events consumed from Kafka
type PaymentEventHandler struct {
	processingService service.ProcessingService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

func NewPaymentEventHandler(
	logger *slog.Logger,
	processingService service.ProcessingService,
	producer producers.DeadLetterPublisher,
) *PaymentEventHandler {
	return &PaymentEventHandler{
		processingService: processingService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage decodes and processes one message. A nil return commits the offset.
func (h *PaymentEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.PaymentEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return h.deadLetter(ctx, key, value, err)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received payment event for processing",
		"event_id", event.EventID.String(),
		"transaction_id", event.TransactionID.String(),
		"type", event.Type,
		"amount", event.Amount,
	)

	if err := h.processingService.ProcessEvent(ctx, &event); err != nil {
		logger.Error("Failed to process payment event",
			"transaction_id", event.TransactionID.String(),
			"error", err,
		)
		return fmt.Errorf("processing payment event %s failed: %w", event.EventID.String(), err)
	}

	return nil
}

// deadLetter parks an undecodable message. Only a failed DLQ write keeps the offset uncommitted.
func (h *PaymentEventHandler) deadLetter(ctx context.Context, key, value []byte, decodeErr error) error {
	reason := fmt.Sprintf("Failed to unmarshal payment event: %s", decodeErr.Error())
	h.logger.Error("Failed to unmarshal payment event from Kafka message",
		"error", decodeErr,
		"message_key", string(key),
	)

	if h.producer == nil {
		h.logger.Error("No dead letter queue configured, dropping message", "message_key", string(key))
		return nil
	}

	err := h.producer.PublishToDLQ(ctx, string(key), value, reason)
	switch {
	case err == nil:
		h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key))
		return nil
	case errors.Is(err, producers.ErrDLQDisabled):
		h.logger.Error("Dead letter queue disabled, dropping message", "message_key", string(key))
		return nil
	default:
		h.logger.Error("Failed to publish message to DLQ after unmarshal error",
			"dlq_error", err,
			"original_error", decodeErr,
			"message_key", string(key),
		)
		return fmt.Errorf("failed to unmarshal message value: %w", decodeErr)
	}
}
