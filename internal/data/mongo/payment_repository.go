package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/blog-commerce-backend/internal/domain/payment"
)

const (
	// PaymentCollectionName is the name of the payment transactions collection in MongoDB
	PaymentCollectionName = "payment_transactions"
)

// PaymentRepository implements the payment.Repository interface for MongoDB
type PaymentRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewPaymentRepository creates a new MongoDB payment transaction repository
func NewPaymentRepository(logger *slog.Logger, db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes makes transaction_id unique so a second insert with the same key fails
func (r *PaymentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(PaymentCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "transaction_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create payment indexes: %w", err)
	}
	return nil
}

// Create stores a new PENDING transaction.
// Returns ErrDuplicateTransaction if the transaction id is already taken.
func (r *PaymentRepository) Create(ctx context.Context, tx *payment.Transaction) error {
	_, err := r.db.Collection(PaymentCollectionName).InsertOne(ctx, tx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return payment.ErrDuplicateTransaction{TransactionID: tx.TransactionID}
		}
		r.logger.Error("Failed to create payment transaction",
			"transaction_id", tx.TransactionID.String(),
			"error", err)
		return fmt.Errorf("failed to create payment transaction: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves a transaction by its locally generated id.
// Returns ErrTransactionNotFound if it does not exist.
func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*payment.Transaction, error) {
	var tx payment.Transaction
	err := r.db.Collection(PaymentCollectionName).FindOne(ctx, bson.M{"transaction_id": transactionID}).Decode(&tx)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, payment.ErrTransactionNotFound{TransactionID: transactionID}
		}
		r.logger.Error("Failed to get payment transaction",
			"transaction_id", transactionID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get payment transaction: %w", err)
	}

	return &tx, nil
}

// MarkPaid performs the PENDING -> PAID transition as a single conditional update,
// so exactly one of several concurrent callers observes transitioned == true.
func (r *PaymentRepository) MarkPaid(ctx context.Context, transactionID uuid.UUID, paidAt time.Time) (bool, error) {
	filter := bson.M{
		"transaction_id": transactionID,
		"status":         payment.StatusPending,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     payment.StatusPaid,
			"paid_at":    paidAt,
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := r.db.Collection(PaymentCollectionName).UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to mark payment transaction paid",
			"transaction_id", transactionID.String(),
			"error", err)
		return false, fmt.Errorf("failed to mark payment transaction paid: %w", err)
	}

	if result.MatchedCount > 0 {
		return true, nil
	}
	return false, r.ensureExists(ctx, transactionID)
}

// ensureExists tells a settled transaction apart from an unknown one after a
// conditional update matched nothing
func (r *PaymentRepository) ensureExists(ctx context.Context, transactionID uuid.UUID) error {
	count, err := r.db.Collection(PaymentCollectionName).CountDocuments(ctx, bson.M{"transaction_id": transactionID})
	if err != nil {
		r.logger.Error("Failed to check payment transaction existence",
			"transaction_id", transactionID.String(),
			"error", err)
		return fmt.Errorf("failed to check payment transaction existence: %w", err)
	}
	if count == 0 {
		return payment.ErrTransactionNotFound{TransactionID: transactionID}
	}
	return nil
}

// SetGatewaySession stores the gateway's session key after a successful initiation
func (r *PaymentRepository) SetGatewaySession(ctx context.Context, transactionID uuid.UUID, sessionKey string) error {
	return r.setFields(ctx, transactionID, "set gateway session", bson.M{
		"gateway_session_key": sessionKey,
	})
}

// SetGatewayError records why initiation failed; the record stays PENDING for reconciliation
func (r *PaymentRepository) SetGatewayError(ctx context.Context, transactionID uuid.UUID, reason string) error {
	return r.setFields(ctx, transactionID, "set gateway error", bson.M{
		"gateway_error": reason,
	})
}

// RecordFailure stores a fail/cancel callback reason on a PENDING transaction without
// touching the status. It returns false without error when the transaction is already paid.
func (r *PaymentRepository) RecordFailure(ctx context.Context, transactionID uuid.UUID, reason string) (bool, error) {
	filter := bson.M{
		"transaction_id": transactionID,
		"status":         payment.StatusPending,
	}
	update := bson.M{
		"$set": bson.M{
			"failure_reason": reason,
			"updated_at":     time.Now().UTC(),
		},
	}

	result, err := r.db.Collection(PaymentCollectionName).UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to record payment failure",
			"transaction_id", transactionID.String(),
			"error", err)
		return false, fmt.Errorf("failed to record payment failure: %w", err)
	}

	if result.MatchedCount > 0 {
		return true, nil
	}
	return false, r.ensureExists(ctx, transactionID)
}

// AttachReceipt stamps the issued receipt onto the transaction. Re-applying the same receipt is harmless.
func (r *PaymentRepository) AttachReceipt(ctx context.Context, transactionID uuid.UUID, receiptNumber string, issuedAt time.Time) error {
	return r.setFields(ctx, transactionID, "attach receipt", bson.M{
		"receipt_number":    receiptNumber,
		"receipt_issued_at": issuedAt,
	})
}

func (r *PaymentRepository) setFields(ctx context.Context, transactionID uuid.UUID, op string, fields bson.M) error {
	fields["updated_at"] = time.Now().UTC()

	result, err := r.db.Collection(PaymentCollectionName).UpdateOne(ctx,
		bson.M{"transaction_id": transactionID},
		bson.M{"$set": fields},
	)
	if err != nil {
		r.logger.Error("Failed to "+op,
			"transaction_id", transactionID.String(),
			"error", err)
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	if result.MatchedCount == 0 {
		return payment.ErrTransactionNotFound{TransactionID: transactionID}
	}
	return nil
}
