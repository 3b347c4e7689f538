package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/blog-commerce-backend/internal/api_server/middleware"
	"github.com/blog-commerce-backend/internal/api_server/service"
	"github.com/blog-commerce-backend/internal/domain/payment"
	"github.com/blog-commerce-backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IdempotencyKeyHeader lets clients retry a checkout without opening a second payment
const IdempotencyKeyHeader = "Idempotency-Key"

// PaymentPages are the storefront pages a customer returns to after the gateway
type PaymentPages struct {
	SuccessURL      string
	FailureURL      string
	DefaultCurrency string
}

// PaymentHandler handles checkout and the gateway's return callbacks
type PaymentHandler struct {
	paymentService service.PaymentService
	pages          PaymentPages
	logger         *slog.Logger
}

func NewPaymentHandler(logger *slog.Logger, paymentService service.PaymentService, pages PaymentPages) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		pages:          pages,
		logger:         logger,
	}
}

// Checkout opens a payment and returns the hosted page to redirect the customer to
func (h *PaymentHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	claims := middleware.GetSessionClaims(c)
	if claims == nil {
		RespondUnauthorized(c, "")
		return
	}

	customer := payment.Customer{
		Name:  firstNonEmpty(req.CustomerName, claims.Name),
		Email: firstNonEmpty(req.CustomerEmail, claims.Subject),
		Phone: req.CustomerPhone,
	}

	result, err := h.paymentService.InitiateCheckout(c.Request.Context(), service.CheckoutRequest{
		Customer:       customer,
		Amount:         req.Amount,
		Currency:       firstNonEmpty(req.Currency, h.pages.DefaultCurrency),
		Subject:        claims.Subject,
		IdempotencyKey: firstNonEmpty(c.GetHeader(IdempotencyKeyHeader), req.IdempotencyKey),
		CorrelationID:  middleware.GetCorrelationID(c),
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, result)
}

func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := shared.ParseUUID("transaction id", c.Param("id"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	tx, err := h.paymentService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, mapTransactionToResponse(tx))
}

// Success is the gateway's return call for a completed payment
func (h *PaymentHandler) Success(c *gin.Context) {
	id, err := shared.ParseUUID("transaction id", c.Param("id"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	result, err := h.paymentService.ConfirmPayment(c.Request.Context(), id)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	h.logger.Info("Payment confirmed via callback",
		"transaction_id", id,
		"already_paid", result.AlreadyPaid,
		"correlation_id", middleware.GetCorrelationID(c),
	)
	c.Redirect(http.StatusSeeOther, withTransactionID(h.pages.SuccessURL, id))
}

// Fail handles both the gateway's failure and cancellation returns
func (h *PaymentHandler) Fail(outcome string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := shared.ParseUUID("transaction id", c.Param("id"))
		if err != nil {
			RespondError(c, h.logger, err)
			return
		}

		var form CallbackForm
		// the reason is informational; an unreadable form still records the outcome
		if err := c.ShouldBind(&form); err != nil {
			h.logger.Debug("Ignoring unreadable callback form",
				"transaction_id", id,
				"outcome", outcome,
				"error", err,
			)
		}
		reason := outcome
		if form.FailedReason != "" {
			reason = outcome + ": " + form.FailedReason
		}

		if err := h.paymentService.RecordFailure(c.Request.Context(), id, reason); err != nil {
			RespondError(c, h.logger, err)
			return
		}
		c.Redirect(http.StatusSeeOther, withTransactionID(h.pages.FailureURL, id))
	}
}

func withTransactionID(page string, id uuid.UUID) string {
	sep := "?"
	if strings.Contains(page, "?") {
		sep = "&"
	}
	return page + sep + "transactionId=" + url.QueryEscape(id.String())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
