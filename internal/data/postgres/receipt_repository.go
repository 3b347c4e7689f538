// Package postgres provides PostgreSQL implementations of the receipt and outbox repositories.
// Both can be bound to a pgx.Tx so a receipt and its outbox row commit together.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/blog-commerce-backend/internal/domain/receipt"
	"github.com/blog-commerce-backend/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// ReceiptRepository implements the receipt.Repository interface for PostgreSQL
type ReceiptRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewReceiptRepository creates a new PostgreSQL receipt repository
func NewReceiptRepository(logger *slog.Logger, db *persistence.PostgresDB) receipt.Repository {
	return &ReceiptRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a copy of the repository bound to tx
func (r *ReceiptRepository) WithTx(tx pgx.Tx) receipt.Repository {
	return &ReceiptRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new receipt. A second receipt for the same transaction
// violates the unique constraint and yields ErrDuplicateReceipt.
func (r *ReceiptRepository) Create(ctx context.Context, rc *receipt.Receipt) error {
	query := `
		INSERT INTO payment_receipts (id, receipt_number, transaction_id, customer_name, customer_email, amount, currency, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		rc.ID,
		rc.Number,
		rc.TransactionID,
		rc.CustomerName,
		rc.CustomerEmail,
		rc.Amount,
		rc.Currency,
		rc.PaidAt,
		rc.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return receipt.ErrDuplicateReceipt{TransactionID: rc.TransactionID}
		}
		r.logger.Error("Failed to create receipt",
			"transaction_id", rc.TransactionID.String(),
			"error", err)
		return fmt.Errorf("failed to create receipt: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves the receipt issued for a payment transaction
func (r *ReceiptRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*receipt.Receipt, error) {
	query := `
		SELECT id, receipt_number, transaction_id, customer_name, customer_email, amount, currency, paid_at, created_at
		FROM payment_receipts
		WHERE transaction_id = $1
	`

	var rc receipt.Receipt
	err := r.querier.QueryRow(ctx, query, transactionID).Scan(
		&rc.ID,
		&rc.Number,
		&rc.TransactionID,
		&rc.CustomerName,
		&rc.CustomerEmail,
		&rc.Amount,
		&rc.Currency,
		&rc.PaidAt,
		&rc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, receipt.ErrReceiptNotFound{TransactionID: transactionID}
		}
		r.logger.Error("Failed to get receipt", "transaction_id", transactionID.String(), "error", err)
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	return &rc, nil
}

// ExistsForTransaction reports whether a receipt was already issued
func (r *ReceiptRepository) ExistsForTransaction(ctx context.Context, transactionID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM payment_receipts WHERE transaction_id = $1)`

	var exists bool
	if err := r.querier.QueryRow(ctx, query, transactionID).Scan(&exists); err != nil {
		r.logger.Error("Failed to check receipt existence", "transaction_id", transactionID.String(), "error", err)
		return false, fmt.Errorf("failed to check receipt existence: %w", err)
	}

	return exists, nil
}
