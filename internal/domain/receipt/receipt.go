package receipt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInvalidCurrencyFormat = errors.New("currency must be a 3-letter code")
	ErrMissingTransactionID  = errors.New("transaction id is required")
)

// Receipt is the accounting record issued once per paid transaction
type Receipt struct {
	ID            uuid.UUID `json:"id"`
	Number        string    `json:"number"`
	TransactionID uuid.UUID `json:"transaction_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	Amount        int64     `json:"amount"` // Stored in minor units
	Currency      string    `json:"currency"`
	PaidAt        time.Time `json:"paid_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewReceipt issues a receipt for a paid transaction
func NewReceipt(transactionID uuid.UUID, customerName, customerEmail string, amount int64, currency string, paidAt time.Time) (*Receipt, error) {
	if transactionID == uuid.Nil {
		return nil, ErrMissingTransactionID
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if len(currency) != 3 {
		return nil, ErrInvalidCurrencyFormat
	}

	now := time.Now().UTC()
	id := uuid.New()
	return &Receipt{
		ID:            id,
		Number:        Number(now, id),
		TransactionID: transactionID,
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		Amount:        amount,
		Currency:      strings.ToUpper(currency),
		PaidAt:        paidAt,
		CreatedAt:     now,
	}, nil
}

// Number formats a human-facing receipt number such as RCPT-20240131-1A2B3C4D
func Number(issued time.Time, id uuid.UUID) string {
	return fmt.Sprintf("RCPT-%s-%s", issued.UTC().Format("20060102"), strings.ToUpper(id.String()[:8]))
}
