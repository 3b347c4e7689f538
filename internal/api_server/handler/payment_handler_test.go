package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/blog-commerce-backend/internal/api_server/service"
	"github.com/blog-commerce-backend/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testPages = PaymentPages{
	SuccessURL:      "https://shop.example.com/payment/success",
	FailureURL:      "https://shop.example.com/payment/failed?from=gateway",
	DefaultCurrency: "BDT",
}

func TestPaymentHandler_Checkout(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockPaymentService)
		h := NewPaymentHandler(testLogger, mockService, testPages)
		router := newTestRouter()
		router.POST("/payment", testClaims("rahim@example.com", "Rahim"), h.Checkout)

		result := &payment.CheckoutResult{TransactionID: uuid.New(), RedirectURL: "https://pay.example.com/s/1"}
		mockService.On("InitiateCheckout", mock.Anything, mock.MatchedBy(func(req service.CheckoutRequest) bool {
			return req.Amount == 150000 &&
				req.Currency == "BDT" &&
				req.Customer.Email == "rahim@example.com" &&
				req.Customer.Name == "Rahim" &&
				req.IdempotencyKey == "idem-1" &&
				req.Subject == "rahim@example.com" &&
				req.CorrelationID != ""
		})).Return(result, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/payment", bytes.NewBufferString(`{"amount":150000}`))
		req.Header.Set(IdempotencyKeyHeader, "idem-1")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var got payment.CheckoutResult
		decodeResponse(t, rr, &got)
		assert.Equal(t, result.TransactionID, got.TransactionID)
		assert.Equal(t, result.RedirectURL, got.RedirectURL)
		mockService.AssertExpectations(t)
	})

	t.Run("GatewayFailure", func(t *testing.T) {
		mockService := new(MockPaymentService)
		h := NewPaymentHandler(testLogger, mockService, testPages)
		router := newTestRouter()
		router.POST("/payment", testClaims("rahim@example.com", "Rahim"), h.Checkout)
		mockService.On("InitiateCheckout", mock.Anything, mock.Anything).Return(nil, payment.ErrGateway{Reason: "FAILED"}).Once()

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/payment", bytes.NewBufferString(`{"amount":100,"currency":"USD"}`)))

		assert.Equal(t, http.StatusBadGateway, rr.Code)
		resp := decodeResponse(t, rr, nil)
		assert.Equal(t, "GATEWAY_ERROR", resp.Error.Code)
		assert.NotContains(t, rr.Body.String(), "redirect_url")
	})

	t.Run("IdempotencyKeyReusedForOtherAmount", func(t *testing.T) {
		mockService := new(MockPaymentService)
		h := NewPaymentHandler(testLogger, mockService, testPages)
		router := newTestRouter()
		router.POST("/payment", testClaims("rahim@example.com", "Rahim"), h.Checkout)
		mockService.On("InitiateCheckout", mock.Anything, mock.Anything).
			Return(nil, payment.ErrIdempotencyKeyReused{Key: "idem-1"}).Once()

		req := httptest.NewRequest(http.MethodPost, "/payment", bytes.NewBufferString(`{"amount":99900}`))
		req.Header.Set(IdempotencyKeyHeader, "idem-1")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		resp := decodeResponse(t, rr, nil)
		assert.Equal(t, "IDEMPOTENCY_KEY_REUSED", resp.Error.Code)
		assert.NotContains(t, rr.Body.String(), "redirect_url")
	})

	t.Run("InvalidBody", func(t *testing.T) {
		mockService := new(MockPaymentService)
		h := NewPaymentHandler(testLogger, mockService, testPages)
		router := newTestRouter()
		router.POST("/payment", testClaims("rahim@example.com", "Rahim"), h.Checkout)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/payment", bytes.NewBufferString(`{"amount":-1}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "InitiateCheckout", mock.Anything, mock.Anything)
	})
}

func TestPaymentHandler_Get(t *testing.T) {
	mockService := new(MockPaymentService)
	h := NewPaymentHandler(testLogger, mockService, testPages)
	router := newTestRouter()
	router.GET("/payment/:id", h.Get)

	paidAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tx := &payment.Transaction{
		TransactionID: uuid.New(),
		Customer:      payment.Customer{Email: "rahim@example.com"},
		Amount:        500,
		Currency:      "BDT",
		Status:        payment.StatusPaid,
		PaidAt:        &paidAt,
	}
	mockService.On("GetTransaction", mock.Anything, tx.TransactionID).Return(tx, nil).Once()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/payment/"+tx.TransactionID.String(), nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var got TransactionResponse
	decodeResponse(t, rr, &got)
	assert.Equal(t, "PAID", got.Status)
	assert.Equal(t, "2024-05-01T10:00:00Z", got.PaidAt)
}

func TestPaymentHandler_Success(t *testing.T) {
	t.Run("RedirectsToSuccessPage", func(t *testing.T) {
		mockService := new(MockPaymentService)
		h := NewPaymentHandler(testLogger, mockService, testPages)
		router := newTestRouter()
		router.POST("/success/:id", h.Success)

		id := uuid.New()
		mockService.On("ConfirmPayment", mock.Anything, id).Return(&service.ConfirmationResult{TransactionID: id}, nil).Once()

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/success/"+id.String(), nil))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, testPages.SuccessURL+"?transactionId="+id.String(), rr.Header().Get("Location"))
	})

	t.Run("UnknownTransaction", func(t *testing.T) {
		mockService := new(MockPaymentService)
		h := NewPaymentHandler(testLogger, mockService, testPages)
		router := newTestRouter()
		router.POST("/success/:id", h.Success)

		id := uuid.New()
		mockService.On("ConfirmPayment", mock.Anything, id).Return(nil, payment.ErrTransactionNotFound{TransactionID: id}).Once()

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/success/"+id.String(), nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "TRANSACTION_NOT_FOUND", decodeResponse(t, rr, nil).Error.Code)
	})

	t.Run("MalformedID", func(t *testing.T) {
		mockService := new(MockPaymentService)
		h := NewPaymentHandler(testLogger, mockService, testPages)
		router := newTestRouter()
		router.POST("/success/:id", h.Success)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/success/12345", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "ConfirmPayment", mock.Anything, mock.Anything)
	})
}

func TestPaymentHandler_Fail(t *testing.T) {
	mockService := new(MockPaymentService)
	h := NewPaymentHandler(testLogger, mockService, testPages)
	router := newTestRouter()
	router.POST("/cancel/:id", h.Fail("cancelled"))

	id := uuid.New()
	mockService.On("RecordFailure", mock.Anything, id, "cancelled: user closed page").Return(nil).Once()

	form := url.Values{"error": {"user closed page"}}
	req := httptest.NewRequest(http.MethodPost, "/cancel/"+id.String(), strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, testPages.FailureURL+"&transactionId="+id.String(), rr.Header().Get("Location"))
	mockService.AssertExpectations(t)
}

func TestPaymentHandler_FailWithUnreadableForm(t *testing.T) {
	mockService := new(MockPaymentService)
	h := NewPaymentHandler(testLogger, mockService, testPages)
	router := newTestRouter()
	router.POST("/fail/:id", h.Fail("failed"))

	id := uuid.New()
	mockService.On("RecordFailure", mock.Anything, id, "failed").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/fail/"+id.String(), strings.NewReader("error=%zz"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	mockService.AssertExpectations(t)
}
