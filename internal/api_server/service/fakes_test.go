package service

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/blog-commerce-backend/internal/domain/comment"
	"github.com/blog-commerce-backend/internal/domain/payment"
	"github.com/blog-commerce-backend/internal/domain/shared"
	"github.com/blog-commerce-backend/internal/platform/gateway"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// memoryCommentRepo mirrors the document store's version semantics
type memoryCommentRepo struct {
	mu       sync.Mutex
	comments map[primitive.ObjectID]*comment.Comment
	writes   int

	// beforeReplace runs inside ReplaceReplies to simulate a racing writer
	beforeReplace func(stored *comment.Comment)
}

func newMemoryCommentRepo() *memoryCommentRepo {
	return &memoryCommentRepo{comments: make(map[primitive.ObjectID]*comment.Comment)}
}

func cloneComment(c *comment.Comment) *comment.Comment {
	cp := *c
	cp.Replies = append([]comment.Reply{}, c.Replies...)
	return &cp
}

func (r *memoryCommentRepo) Create(_ context.Context, c *comment.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = primitive.NewObjectID()
	r.comments[c.ID] = cloneComment(c)
	r.writes++
	return nil
}

func (r *memoryCommentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*comment.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, comment.ErrCommentNotFound{CommentID: id}
	}
	return cloneComment(c), nil
}

func (r *memoryCommentRepo) ListByPostID(_ context.Context, postID primitive.ObjectID) ([]*comment.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*comment.Comment
	for _, c := range r.comments {
		if c.PostID == postID {
			out = append(out, cloneComment(c))
		}
	}
	return out, nil
}

func (r *memoryCommentRepo) UpdateText(_ context.Context, id primitive.ObjectID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return comment.ErrCommentNotFound{CommentID: id}
	}
	c.Text = text
	r.writes++
	return nil
}

func (r *memoryCommentRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return comment.ErrCommentNotFound{CommentID: id}
	}
	delete(r.comments, id)
	r.writes++
	return nil
}

func (r *memoryCommentRepo) AppendReply(_ context.Context, id primitive.ObjectID, reply *comment.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return comment.ErrCommentNotFound{CommentID: id}
	}
	c.Replies = append(c.Replies, *reply)
	c.Version++
	r.writes++
	return nil
}

func (r *memoryCommentRepo) ReplaceReplies(_ context.Context, id primitive.ObjectID, replies []comment.Reply, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return comment.ErrCommentNotFound{CommentID: id}
	}
	if r.beforeReplace != nil {
		r.beforeReplace(c)
	}
	if c.Version != expectedVersion {
		return comment.ErrConcurrentModification{CommentID: id}
	}
	c.Replies = append([]comment.Reply{}, replies...)
	c.Version++
	r.writes++
	return nil
}

func (r *memoryCommentRepo) stored(id primitive.ObjectID) *comment.Comment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneComment(r.comments[id])
}

// memoryPaymentRepo implements the conditional PENDING -> PAID transition
type memoryPaymentRepo struct {
	mu     sync.Mutex
	txs    map[uuid.UUID]*payment.Transaction
	writes int

	createErr error
}

func newMemoryPaymentRepo() *memoryPaymentRepo {
	return &memoryPaymentRepo{txs: make(map[uuid.UUID]*payment.Transaction)}
}

func (r *memoryPaymentRepo) Create(_ context.Context, tx *payment.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	cp := *tx
	r.txs[tx.TransactionID] = &cp
	r.writes++
	return nil
}

func (r *memoryPaymentRepo) GetByTransactionID(_ context.Context, id uuid.UUID) (*payment.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok {
		return nil, payment.ErrTransactionNotFound{TransactionID: id}
	}
	cp := *tx
	return &cp, nil
}

func (r *memoryPaymentRepo) MarkPaid(_ context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok {
		return false, payment.ErrTransactionNotFound{TransactionID: id}
	}
	if tx.Status != payment.StatusPending {
		return false, nil
	}
	tx.Status = payment.StatusPaid
	tx.PaidAt = &paidAt
	r.writes++
	return true, nil
}

func (r *memoryPaymentRepo) update(id uuid.UUID, fn func(*payment.Transaction)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok {
		return payment.ErrTransactionNotFound{TransactionID: id}
	}
	fn(tx)
	r.writes++
	return nil
}

func (r *memoryPaymentRepo) SetGatewaySession(_ context.Context, id uuid.UUID, key string) error {
	return r.update(id, func(tx *payment.Transaction) { tx.GatewaySessionKey = key })
}

func (r *memoryPaymentRepo) SetGatewayError(_ context.Context, id uuid.UUID, reason string) error {
	return r.update(id, func(tx *payment.Transaction) { tx.GatewayError = reason })
}

func (r *memoryPaymentRepo) RecordFailure(_ context.Context, id uuid.UUID, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok {
		return false, payment.ErrTransactionNotFound{TransactionID: id}
	}
	if tx.Status != payment.StatusPending {
		return false, nil
	}
	tx.FailureReason = reason
	r.writes++
	return true, nil
}

func (r *memoryPaymentRepo) AttachReceipt(_ context.Context, id uuid.UUID, number string, issuedAt time.Time) error {
	return r.update(id, func(tx *payment.Transaction) {
		tx.ReceiptNumber = number
		tx.ReceiptIssuedAt = &issuedAt
	})
}

func (r *memoryPaymentRepo) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

type MockGatewayClient struct {
	mock.Mock
}

func (m *MockGatewayClient) Initiate(ctx context.Context, req gateway.InitiateRequest) (*gateway.InitiateResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.InitiateResponse), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishPaymentEvent(ctx context.Context, event *shared.PaymentEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// memoryCheckoutCache mirrors the SETNX semantics of the Redis cache
type memoryCheckoutCache struct {
	mu         sync.Mutex
	entries    map[string]payment.CheckoutReplay
	reserveErr error
	completed  int
}

func newMemoryCheckoutCache() *memoryCheckoutCache {
	return &memoryCheckoutCache{entries: make(map[string]payment.CheckoutReplay)}
}

func (c *memoryCheckoutCache) Reserve(_ context.Context, key, fingerprint string) (*payment.CheckoutReplay, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reserveErr != nil {
		return nil, c.reserveErr
	}
	if existing, ok := c.entries[key]; ok {
		return &existing, nil
	}
	c.entries[key] = payment.CheckoutReplay{Fingerprint: fingerprint}
	return nil, nil
}

func (c *memoryCheckoutCache) Complete(_ context.Context, key string, replay *payment.CheckoutReplay) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = *replay
	c.completed++
	return nil
}

func (c *memoryCheckoutCache) Release(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}
