package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/blog-commerce-backend/internal/api_server/middleware"
	"github.com/blog-commerce-backend/internal/domain/comment"
	"github.com/blog-commerce-backend/internal/domain/payment"
	"github.com/blog-commerce-backend/internal/domain/shared"
	"github.com/blog-commerce-backend/internal/platform/session"
	"github.com/gin-gonic/gin"
)

// Response represents a standard API response
type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
}

// ErrorInfo represents error information in a response
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondWithData sends a JSON response with data
func RespondWithData(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, &Response{
		Data:          data,
		CorrelationID: middleware.GetCorrelationID(c),
	})
}

// RespondWithError sends a JSON response with an error
func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, &Response{
		Error:         &ErrorInfo{Code: code, Message: message},
		CorrelationID: middleware.GetCorrelationID(c),
	})
}

func RespondOK(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusOK, data)
}

func RespondCreated(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusCreated, data)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func RespondInternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred")
}

// validationErrors are caller mistakes detected by the domain constructors
var validationErrors = []error{
	comment.ErrEmptyText,
	comment.ErrEmptyAuthorName,
	comment.ErrMissingPostID,
	payment.ErrInvalidAmount,
	payment.ErrInvalidCurrencyFormat,
	payment.ErrMissingCustomerEmail,
	session.ErrMissingSubject,
}

// RespondError maps a service error onto its HTTP status and error code.
// Anything unrecognised is treated as a store failure and logged.
func RespondError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidIdentifier{}):
		RespondWithError(c, http.StatusBadRequest, "INVALID_IDENTIFIER", err.Error())
	case isValidationError(err):
		RespondBadRequest(c, err.Error())
	case errors.Is(err, comment.ErrReplyNotFound{}):
		RespondWithError(c, http.StatusNotFound, "REPLY_NOT_FOUND", "Reply not found")
	case errors.Is(err, comment.ErrCommentNotFound{}):
		RespondWithError(c, http.StatusNotFound, "NOT_FOUND", "Comment not found")
	case errors.Is(err, payment.ErrTransactionNotFound{}):
		RespondWithError(c, http.StatusNotFound, "TRANSACTION_NOT_FOUND", "Transaction not found")
	case errors.Is(err, comment.ErrConcurrentModification{}):
		RespondWithError(c, http.StatusConflict, "CONFLICT", "The comment was modified concurrently, retry the request")
	case errors.Is(err, payment.ErrIdempotencyKeyReused{}):
		RespondWithError(c, http.StatusConflict, "IDEMPOTENCY_KEY_REUSED", err.Error())
	case errors.Is(err, payment.ErrCheckoutInProgress{}):
		RespondWithError(c, http.StatusConflict, "CHECKOUT_IN_PROGRESS", err.Error())
	case errors.Is(err, payment.ErrGateway{}):
		logger.Error("Payment gateway failure", "correlation_id", middleware.GetCorrelationID(c), "error", err)
		RespondWithError(c, http.StatusBadGateway, "GATEWAY_ERROR", "Payment gateway is unavailable")
	default:
		logger.Error("Request failed",
			"path", c.Request.URL.Path,
			"correlation_id", middleware.GetCorrelationID(c),
			"error", err,
		)
		RespondInternalError(c)
	}
}

func isValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
