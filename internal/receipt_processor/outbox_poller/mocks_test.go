package outbox_poller

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/blog-commerce-backend/internal/domain/outbox"
	"github.com/blog-commerce-backend/internal/domain/receipt"
	"github.com/blog-commerce-backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*outbox.Message, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	return m
}

type MockReceiptStamper struct {
	mock.Mock
}

func (m *MockReceiptStamper) AttachReceipt(ctx context.Context, transactionID uuid.UUID, receiptNumber string, issuedAt time.Time) error {
	args := m.Called(ctx, transactionID, receiptNumber, issuedAt)
	return args.Error(0)
}

type MockReceiptPublisher struct {
	mock.Mock
}

func (m *MockReceiptPublisher) PublishReceipt(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newOutboxMessage(t *testing.T, id int64, attempts int) (*outbox.Message, *receipt.Receipt) {
	t.Helper()
	r, err := receipt.NewReceipt(uuid.New(), "Rahim", "rahim@example.com", 2500, "BDT", time.Now().UTC())
	require.NoError(t, err)
	msg, err := outbox.NewMessage(r)
	require.NoError(t, err)
	msg.ID = id
	msg.Attempts = attempts
	return msg, r
}
