package receipt

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines receipt persistence operations
type Repository interface {
	Create(ctx context.Context, receipt *Receipt) error
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*Receipt, error)
	ExistsForTransaction(ctx context.Context, transactionID uuid.UUID) (bool, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrReceiptNotFound indicates missing receipt
type ErrReceiptNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrReceiptNotFound) Error() string {
	return "receipt not found for transaction: " + e.TransactionID.String()
}

// Is implements the errors.Is interface for ErrReceiptNotFound
func (e ErrReceiptNotFound) Is(target error) bool {
	t, ok := target.(ErrReceiptNotFound)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}

// ErrDuplicateReceipt indicates a receipt was already issued for the transaction
type ErrDuplicateReceipt struct {
	TransactionID uuid.UUID
}

func (e ErrDuplicateReceipt) Error() string {
	return "receipt already issued for transaction: " + e.TransactionID.String()
}

// Is implements the errors.Is interface for ErrDuplicateReceipt
func (e ErrDuplicateReceipt) Is(target error) bool {
	_, ok := target.(ErrDuplicateReceipt)
	return ok
}
