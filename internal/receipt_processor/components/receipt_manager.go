package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blog-commerce-backend/internal/domain/receipt"
	"github.com/blog-commerce-backend/internal/domain/shared"
	"github.com/blog-commerce-backend/internal/receipt_processor/service"
	"github.com/jackc/pgx/v5"
)

type ReceiptManagerImpl struct {
	receiptRepo receipt.Repository
	logger      *slog.Logger
}

func NewReceiptManager(receiptRepo receipt.Repository, logger *slog.Logger) service.ReceiptManager {
	return &ReceiptManagerImpl{
		receiptRepo: receiptRepo,
		logger:      logger,
	}
}

// IssueReceipt builds the receipt for a confirmed payment and inserts it within tx
func (m *ReceiptManagerImpl) IssueReceipt(ctx context.Context, tx pgx.Tx, event *shared.PaymentEvent) (*receipt.Receipt, error) {
	logger := m.logger
	if event.CorrelationID != "" {
		logger = m.logger.With("correlation_id", event.CorrelationID)
	}

	r, err := receipt.NewReceipt(event.TransactionID, event.CustomerName, event.CustomerEmail, event.Amount, event.Currency, event.OccurredAt)
	if err != nil {
		logger.Error("Failed to build receipt", "transaction_id", event.TransactionID.String(), "error", err)
		return nil, fmt.Errorf("build receipt for tx %s: %w", event.TransactionID.String(), err)
	}

	if err := m.receiptRepo.WithTx(tx).Create(ctx, r); err != nil {
		return nil, err
	}

	logger.Debug("Receipt row inserted", "transaction_id", event.TransactionID.String(), "receipt_number", r.Number)
	return r, nil
}
