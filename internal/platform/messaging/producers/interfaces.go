package producers

import (
	"context"

	"github.com/blog-commerce-backend/internal/domain/shared"
	"github.com/segmentio/kafka-go"
)

// EventPublisher publishes payment lifecycle events to the primary topic
type EventPublisher interface {
	PublishPaymentEvent(ctx context.Context, event *shared.PaymentEvent) error
	Close() error
}

// DeadLetterPublisher handles publishing messages to a Dead Letter Queue
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
