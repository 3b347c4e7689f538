package shared

import (
	"time"

	"github.com/google/uuid"
)

// PaymentEvent is the Kafka message emitted when a payment transaction becomes paid
type PaymentEvent struct {
	EventID       uuid.UUID `json:"event_id" validate:"required"`
	Type          EventType `json:"type" validate:"required,oneof=PAYMENT_CONFIRMED"`
	TransactionID uuid.UUID `json:"transaction_id" validate:"required"`
	Amount        int64     `json:"amount" validate:"gt=0"` // Stored in minor units
	Currency      string    `json:"currency" validate:"required,len=3"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email" validate:"required,email"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at" validate:"required"`
}
