package handler

import (
	"time"

	"github.com/blog-commerce-backend/internal/domain/comment"
	"github.com/blog-commerce-backend/internal/domain/payment"
)

// IssueSessionRequest represents a request for a session token
type IssueSessionRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
}

// SessionResponse is returned when a session is issued
type SessionResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// AuthorPayload lets the caller override how they are shown on a comment
type AuthorPayload struct {
	Name     string `json:"name"`
	PhotoRef string `json:"photo_ref"`
}

// CreateCommentRequest represents a request to comment on a post
type CreateCommentRequest struct {
	PostID string        `json:"post_id" binding:"required"`
	Text   string        `json:"text" binding:"required"`
	Author AuthorPayload `json:"author"`
}

// TextRequest updates the text of a comment or reply
type TextRequest struct {
	Text string `json:"text" binding:"required"`
}

// CreateReplyRequest represents a request to reply to a comment
type CreateReplyRequest struct {
	Text   string        `json:"text" binding:"required"`
	Author AuthorPayload `json:"author"`
}

// CheckoutRequest represents a request to start a payment
type CheckoutRequest struct {
	Amount         int64  `json:"amount" binding:"required,gt=0"`
	Currency       string `json:"currency" binding:"omitempty,len=3"`
	CustomerName   string `json:"customer_name"`
	CustomerEmail  string `json:"customer_email" binding:"omitempty,email"`
	CustomerPhone  string `json:"customer_phone"`
	IdempotencyKey string `json:"idempotency_key"`
}

// CallbackForm is the subset of the gateway's callback form we keep
type CallbackForm struct {
	Status       string `form:"status"`
	FailedReason string `form:"error"`
}

// TransactionResponse represents a payment transaction in API responses
type TransactionResponse struct {
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	CustomerEmail string `json:"customer_email"`
	ReceiptNumber string `json:"receipt_number,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
	CreatedAt     string `json:"created_at"`
	PaidAt        string `json:"paid_at,omitempty"`
}

func mapTransactionToResponse(tx *payment.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID: tx.TransactionID.String(),
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		Status:        string(tx.Status),
		CustomerEmail: tx.Customer.Email,
		ReceiptNumber: tx.ReceiptNumber,
		FailureReason: tx.FailureReason,
		CreatedAt:     tx.CreatedAt.Format(time.RFC3339),
	}
	if tx.PaidAt != nil {
		resp.PaidAt = tx.PaidAt.Format(time.RFC3339)
	}
	return resp
}

// authorFor builds the author snapshot: identity from the session, display overrides from the body
func authorFor(email, sessionName string, payload AuthorPayload) comment.Author {
	name := payload.Name
	if name == "" {
		name = sessionName
	}
	return comment.Author{Name: name, Email: email, PhotoRef: payload.PhotoRef}
}
