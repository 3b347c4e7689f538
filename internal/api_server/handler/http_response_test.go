package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blog-commerce-backend/internal/domain/comment"
	"github.com/blog-commerce-backend/internal/domain/payment"
	"github.com/blog-commerce-backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRespondError(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"InvalidIdentifier", shared.ErrInvalidIdentifier{Field: "comment id", Value: "x"}, http.StatusBadRequest, "INVALID_IDENTIFIER"},
		{"EmptyText", comment.ErrEmptyText, http.StatusBadRequest, "BAD_REQUEST"},
		{"InvalidAmount", payment.ErrInvalidAmount, http.StatusBadRequest, "BAD_REQUEST"},
		{"CommentNotFound", comment.ErrCommentNotFound{CommentID: primitive.NewObjectID()}, http.StatusNotFound, "NOT_FOUND"},
		{"ReplyNotFound", comment.ErrReplyNotFound{ReplyID: primitive.NewObjectID()}, http.StatusNotFound, "REPLY_NOT_FOUND"},
		{"TransactionNotFound", payment.ErrTransactionNotFound{TransactionID: uuid.New()}, http.StatusNotFound, "TRANSACTION_NOT_FOUND"},
		{"Conflict", comment.ErrConcurrentModification{CommentID: primitive.NewObjectID()}, http.StatusConflict, "CONFLICT"},
		{"IdempotencyKeyReused", payment.ErrIdempotencyKeyReused{Key: "k"}, http.StatusConflict, "IDEMPOTENCY_KEY_REUSED"},
		{"CheckoutInProgress", payment.ErrCheckoutInProgress{Key: "k"}, http.StatusConflict, "CHECKOUT_IN_PROGRESS"},
		{"Gateway", payment.ErrGateway{Reason: "timeout"}, http.StatusBadGateway, "GATEWAY_ERROR"},
		{"WrappedNotFound", fmt.Errorf("lookup: %w", comment.ErrCommentNotFound{}), http.StatusNotFound, "NOT_FOUND"},
		{"StoreError", errors.New("server selection timeout"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter()
			router.GET("/x", func(c *gin.Context) { RespondError(c, testLogger, tc.err) })

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))

			assert.Equal(t, tc.wantStatus, rr.Code)
			resp := decodeResponse(t, rr, nil)
			if assert.NotNil(t, resp.Error) {
				assert.Equal(t, tc.wantCode, resp.Error.Code)
			}
			assert.NotEmpty(t, resp.CorrelationID)
		})
	}
}
