package outbox

import (
	"encoding/json"
	"time"

	"github.com/blog-commerce-backend/internal/domain/receipt"
	"github.com/blog-commerce-backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Message carries an issued receipt until it is stamped onto the payment record
type Message struct {
	ID            int64               `json:"id"`
	TransactionID uuid.UUID           `json:"transaction_id"`
	ReceiptID     uuid.UUID           `json:"receipt_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(r *receipt.Receipt) (*Message, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}

	return &Message{
		TransactionID: r.TransactionID,
		ReceiptID:     r.ID,
		Payload:       payload,
		Status:        shared.OutboxStatusPending,
		CreatedAt:     time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// GetReceipt extracts the receipt from the payload
func (m *Message) GetReceipt() (*receipt.Receipt, error) {
	var r receipt.Receipt
	if err := json.Unmarshal(m.Payload, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
