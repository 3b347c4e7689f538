package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository manages payment transaction persistence
type Repository interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*Transaction, error)

	// MarkPaid flips PENDING to PAID. It returns false without error when the record
	// exists but was already paid, and ErrTransactionNotFound when it does not exist.
	MarkPaid(ctx context.Context, transactionID uuid.UUID, paidAt time.Time) (bool, error)

	SetGatewaySession(ctx context.Context, transactionID uuid.UUID, sessionKey string) error
	SetGatewayError(ctx context.Context, transactionID uuid.UUID, reason string) error

	// RecordFailure stores a fail/cancel reason on a PENDING transaction. It returns false
	// without error when the transaction is already paid, leaving it untouched.
	RecordFailure(ctx context.Context, transactionID uuid.UUID, reason string) (bool, error)
	AttachReceipt(ctx context.Context, transactionID uuid.UUID, receiptNumber string, issuedAt time.Time) error
}

// ErrTransactionNotFound indicates a callback or lookup for a transaction this system never created
type ErrTransactionNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "payment transaction not found: " + e.TransactionID.String()
}

// Is implements the errors.Is interface for ErrTransactionNotFound
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}

// ErrDuplicateTransaction indicates transaction id uniqueness violation
type ErrDuplicateTransaction struct {
	TransactionID uuid.UUID
}

func (e ErrDuplicateTransaction) Error() string {
	return "duplicate payment transaction: " + e.TransactionID.String()
}

// Is implements the errors.Is interface for ErrDuplicateTransaction
func (e ErrDuplicateTransaction) Is(target error) bool {
	t, ok := target.(ErrDuplicateTransaction)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}

// ErrGateway indicates the external payment gateway rejected or failed the initiation call
type ErrGateway struct {
	TransactionID uuid.UUID
	Reason        string
}

func (e ErrGateway) Error() string {
	return "payment gateway error for transaction " + e.TransactionID.String() + ": " + e.Reason
}

// Is implements the errors.Is interface for ErrGateway
func (e ErrGateway) Is(target error) bool {
	_, ok := target.(ErrGateway)
	return ok
}
