// Package gateway talks to the hosted payment page provider.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/blog-commerce-backend/internal/config"
	"github.com/blog-commerce-backend/internal/domain/payment"
	"github.com/google/uuid"
)

const statusSuccess = "SUCCESS"

// InitiateRequest is everything the gateway needs to open a hosted checkout session
type InitiateRequest struct {
	TransactionID uuid.UUID
	Amount        int64 // Minor units
	Currency      string
	Customer      payment.Customer
	SuccessURL    string
	FailURL       string
	CancelURL     string
}

// InitiateResponse carries the hosted page the customer is redirected to
type InitiateResponse struct {
	RedirectURL string
	SessionKey  string
}

type initResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

// Client initiates checkout sessions over the gateway's form-encoded API
type Client struct {
	httpClient    *http.Client
	endpoint      string
	storeID       string
	storePassword string
	logger        *slog.Logger
}

// NewClient creates a gateway client from configuration
func NewClient(logger *slog.Logger, cfg *config.GatewayConfig) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		endpoint:      strings.TrimRight(cfg.BaseURL, "/") + cfg.InitPath,
		storeID:       cfg.StoreID,
		storePassword: cfg.StorePassword,
		logger:        logger,
	}
}

// Initiate opens a checkout session. Any transport failure, non-2xx answer or
// non-SUCCESS status is returned as payment.ErrGateway.
func (c *Client) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	form := url.Values{}
	form.Set("store_id", c.storeID)
	form.Set("store_passwd", c.storePassword)
	form.Set("tran_id", req.TransactionID.String())
	form.Set("total_amount", FormatAmount(req.Amount))
	form.Set("currency", req.Currency)
	form.Set("success_url", req.SuccessURL)
	form.Set("fail_url", req.FailURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("cus_name", req.Customer.Name)
	form.Set("cus_email", req.Customer.Email)
	form.Set("cus_phone", req.Customer.Phone)
	form.Set("shipping_method", "NO")
	form.Set("product_name", "Order "+req.TransactionID.String()[:8])
	form.Set("product_category", "general")
	form.Set("product_profile", "general")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, payment.ErrGateway{TransactionID: req.TransactionID, Reason: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, payment.ErrGateway{TransactionID: req.TransactionID, Reason: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, payment.ErrGateway{TransactionID: req.TransactionID, Reason: "failed to read response: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, payment.ErrGateway{TransactionID: req.TransactionID, Reason: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	var parsed initResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, payment.ErrGateway{TransactionID: req.TransactionID, Reason: "malformed response: " + err.Error()}
	}

	if !strings.EqualFold(parsed.Status, statusSuccess) {
		reason := parsed.FailedReason
		if reason == "" {
			reason = "status " + parsed.Status
		}
		return nil, payment.ErrGateway{TransactionID: req.TransactionID, Reason: reason}
	}
	if parsed.GatewayPageURL == "" {
		return nil, payment.ErrGateway{TransactionID: req.TransactionID, Reason: "missing redirect url"}
	}

	c.logger.Debug("Gateway session opened",
		"transaction_id", req.TransactionID.String(),
		"session_key", parsed.SessionKey)

	return &InitiateResponse{
		RedirectURL: parsed.GatewayPageURL,
		SessionKey:  parsed.SessionKey,
	}, nil
}

// FormatAmount renders minor units as a decimal with two places, e.g. 12345 -> "123.45"
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	cents := strconv.FormatInt(minor%100, 10)
	if len(cents) == 1 {
		cents = "0" + cents
	}
	return sign + strconv.FormatInt(minor/100, 10) + "." + cents
}
