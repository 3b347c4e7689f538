package payment

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInvalidCurrencyFormat = errors.New("currency must be a 3-letter code")
	ErrMissingCustomerEmail  = errors.New("customer email is required")
)

// Status defines payment transaction states. PENDING -> PAID is the only transition.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
)

// Customer holds the buyer details forwarded to the gateway
type Customer struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
}

// Transaction is a checkout attempt keyed by a locally generated id
type Transaction struct {
	TransactionID     uuid.UUID  `json:"transaction_id" bson:"transaction_id"`
	Customer          Customer   `json:"customer" bson:"customer"`
	Amount            int64      `json:"amount" bson:"amount"` // Stored in minor units
	Currency          string     `json:"currency" bson:"currency"`
	Status            Status     `json:"status" bson:"status"`
	IdempotencyKey    string     `json:"idempotency_key,omitempty" bson:"idempotency_key,omitempty"`
	CorrelationID     string     `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	GatewaySessionKey string     `json:"gateway_session_key,omitempty" bson:"gateway_session_key,omitempty"`
	GatewayError      string     `json:"gateway_error,omitempty" bson:"gateway_error,omitempty"`
	FailureReason     string     `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	ReceiptNumber     string     `json:"receipt_number,omitempty" bson:"receipt_number,omitempty"`
	ReceiptIssuedAt   *time.Time `json:"receipt_issued_at,omitempty" bson:"receipt_issued_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" bson:"updated_at"`
	PaidAt            *time.Time `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
}

// NewTransaction creates a PENDING transaction with a fresh id
func NewTransaction(customer Customer, amount int64, currency string) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if len(currency) != 3 {
		return nil, ErrInvalidCurrencyFormat
	}
	if strings.TrimSpace(customer.Email) == "" {
		return nil, ErrMissingCustomerEmail
	}

	now := time.Now().UTC()
	return &Transaction{
		TransactionID: uuid.New(),
		Customer:      customer,
		Amount:        amount,
		Currency:      strings.ToUpper(currency),
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// IsPaid reports whether the transaction reached its terminal state
func (t *Transaction) IsPaid() bool {
	return t.Status == StatusPaid
}
