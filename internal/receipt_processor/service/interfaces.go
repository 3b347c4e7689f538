package service

import (
	"context"
	"errors"

	"github.com/blog-commerce-backend/internal/domain/receipt"
	"github.com/blog-commerce-backend/internal/domain/shared"
	"github.com/jackc/pgx/v5"
)

// ErrInvalidEvent marks a payment event that can never be turned into a receipt
var ErrInvalidEvent = errors.New("invalid payment event")

// ProcessingService turns confirmed payment events into receipts
type ProcessingService interface {
	ProcessEvent(ctx context.Context, event *shared.PaymentEvent) error
}

// EventValidator validates events and reports whether one was already handled
type EventValidator interface {
	Validate(ctx context.Context, event *shared.PaymentEvent) error
	CheckIdempotency(ctx context.Context, event *shared.PaymentEvent) (bool, error)
}

// ReceiptManager issues the receipt inside the processing transaction
type ReceiptManager interface {
	IssueReceipt(ctx context.Context, tx pgx.Tx, event *shared.PaymentEvent) (*receipt.Receipt, error)
}

// OutboxManager queues the issued receipt for stamping onto the payment record
type OutboxManager interface {
	CreateOutboxEntry(ctx context.Context, tx pgx.Tx, issued *receipt.Receipt, correlationID string) error
}
