package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blog-commerce-backend/internal/api_server/middleware"
	"github.com/blog-commerce-backend/internal/api_server/service"
	"github.com/blog-commerce-backend/internal/domain/comment"
	"github.com/blog-commerce-backend/internal/domain/payment"
	"github.com/blog-commerce-backend/internal/platform/session"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) CreateComment(ctx context.Context, input service.CommentInput) (*comment.Comment, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*comment.Comment), args.Error(1)
}

func (m *MockCommentService) GetComment(ctx context.Context, id primitive.ObjectID) (*comment.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*comment.Comment), args.Error(1)
}

func (m *MockCommentService) ListComments(ctx context.Context, postID primitive.ObjectID) ([]*comment.Comment, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*comment.Comment), args.Error(1)
}

func (m *MockCommentService) UpdateComment(ctx context.Context, id primitive.ObjectID, text string) error {
	return m.Called(ctx, id, text).Error(0)
}

func (m *MockCommentService) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

type MockReplyLedger struct {
	mock.Mock
}

func (m *MockReplyLedger) AddReply(ctx context.Context, commentID primitive.ObjectID, input service.ReplyInput) (*comment.Reply, error) {
	args := m.Called(ctx, commentID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*comment.Reply), args.Error(1)
}

func (m *MockReplyLedger) UpdateReply(ctx context.Context, commentID, replyID primitive.ObjectID, text string) error {
	return m.Called(ctx, commentID, replyID, text).Error(0)
}

func (m *MockReplyLedger) DeleteReply(ctx context.Context, commentID, replyID primitive.ObjectID) error {
	return m.Called(ctx, commentID, replyID).Error(0)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) InitiateCheckout(ctx context.Context, req service.CheckoutRequest) (*payment.CheckoutResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CheckoutResult), args.Error(1)
}

func (m *MockPaymentService) ConfirmPayment(ctx context.Context, transactionID uuid.UUID) (*service.ConfirmationResult, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ConfirmationResult), args.Error(1)
}

func (m *MockPaymentService) GetTransaction(ctx context.Context, transactionID uuid.UUID) (*payment.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Transaction), args.Error(1)
}

func (m *MockPaymentService) RecordFailure(ctx context.Context, transactionID uuid.UUID, reason string) error {
	return m.Called(ctx, transactionID, reason).Error(0)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(subject, name string) (string, time.Time, error) {
	args := m.Called(subject, name)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenIssuer) TTL() time.Duration {
	return m.Called().Get(0).(time.Duration)
}

// testClaims stands in for SessionGuard on routes under test
func testClaims(subject, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.SessionClaimsKey, &session.Claims{
			Name:             name,
			RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
		})
		c.Next()
	}
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.CorrelationID())
	return router
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder, data interface{}) Response {
	t.Helper()
	resp := Response{Data: data}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}
