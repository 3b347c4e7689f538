package service

import (
	"context"

	"github.com/blog-commerce-backend/internal/domain/comment"
	"github.com/blog-commerce-backend/internal/domain/payment"
	"github.com/blog-commerce-backend/internal/domain/shared"
	"github.com/blog-commerce-backend/internal/platform/gateway"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentInput carries the fields of a new top-level comment
type CommentInput struct {
	PostID primitive.ObjectID
	Author comment.Author
	Text   string
}

// ReplyInput carries the fields of a new reply
type ReplyInput struct {
	Author comment.Author
	Text   string
}

// CommentService defines the interface for top-level comment operations
type CommentService interface {
	// CreateComment stores a comment with an empty reply list and returns it with its id
	CreateComment(ctx context.Context, input CommentInput) (*comment.Comment, error)

	// GetComment returns ErrCommentNotFound if the comment doesn't exist
	GetComment(ctx context.Context, id primitive.ObjectID) (*comment.Comment, error)

	// ListComments returns the comments of a post, oldest first
	ListComments(ctx context.Context, postID primitive.ObjectID) ([]*comment.Comment, error)

	UpdateComment(ctx context.Context, id primitive.ObjectID, text string) error
	DeleteComment(ctx context.Context, id primitive.ObjectID) error
}

// ReplyLedger manages the replies embedded in a single parent comment
type ReplyLedger interface {
	AddReply(ctx context.Context, commentID primitive.ObjectID, input ReplyInput) (*comment.Reply, error)

	// UpdateReply returns ErrReplyNotFound if the parent holds no reply with replyID,
	// and ErrConcurrentModification if the parent changed while the update was applied
	UpdateReply(ctx context.Context, commentID, replyID primitive.ObjectID, text string) error

	DeleteReply(ctx context.Context, commentID, replyID primitive.ObjectID) error
}

// CheckoutRequest carries the data needed to open a payment
type CheckoutRequest struct {
	Customer       payment.Customer
	Amount         int64
	Currency       string
	Subject        string // Session subject that idempotency keys are scoped to
	IdempotencyKey string
	CorrelationID  string
}

// ConfirmationResult reports the outcome of a success callback
type ConfirmationResult struct {
	TransactionID uuid.UUID
	AlreadyPaid   bool // True when an earlier callback already completed the payment
}

// PaymentService defines the interface for payment orchestration
type PaymentService interface {
	// InitiateCheckout persists a PENDING transaction and opens a gateway session for it.
	// Returns ErrGateway when the gateway refuses, leaving the transaction PENDING.
	// A reused idempotency key returns ErrIdempotencyKeyReused or ErrCheckoutInProgress
	// unless it repeats a finished checkout with the same parameters.
	InitiateCheckout(ctx context.Context, req CheckoutRequest) (*payment.CheckoutResult, error)

	// ConfirmPayment moves a PENDING transaction to PAID; repeated calls are harmless
	ConfirmPayment(ctx context.Context, transactionID uuid.UUID) (*ConfirmationResult, error)

	GetTransaction(ctx context.Context, transactionID uuid.UUID) (*payment.Transaction, error)
	RecordFailure(ctx context.Context, transactionID uuid.UUID, reason string) error
}

// GatewayClient opens hosted checkout sessions
type GatewayClient interface {
	Initiate(ctx context.Context, req gateway.InitiateRequest) (*gateway.InitiateResponse, error)
}

// EventPublisher emits payment events for downstream consumers
type EventPublisher interface {
	PublishPaymentEvent(ctx context.Context, event *shared.PaymentEvent) error
}
