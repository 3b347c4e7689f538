package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/blog-commerce-backend/internal/domain/payment"
	"github.com/blog-commerce-backend/internal/domain/shared"
	"github.com/blog-commerce-backend/internal/platform/gateway"
	"github.com/google/uuid"
)

// CallbackURLs builds the gateway return addresses for one transaction.
// Each address is signed with Secret when it is set.
type CallbackURLs struct {
	PublicBaseURL string
	Secret        string
}

func (u CallbackURLs) forTransaction(id uuid.UUID) (success, fail, cancel string) {
	txID := id.String()
	return gateway.ReturnURL(u.PublicBaseURL, gateway.OutcomeSuccess, txID, u.Secret),
		gateway.ReturnURL(u.PublicBaseURL, gateway.OutcomeFail, txID, u.Secret),
		gateway.ReturnURL(u.PublicBaseURL, gateway.OutcomeCancel, txID, u.Secret)
}

// PaymentServiceImpl implements the PaymentService interface
type PaymentServiceImpl struct {
	repo      payment.Repository
	gateway   GatewayClient
	publisher EventPublisher
	cache     payment.CheckoutCache // Optional
	callbacks CallbackURLs
	logger    *slog.Logger
	now       func() time.Time
}

// NewPaymentService creates a new payment service. cache may be nil, in which case
// retried checkouts are not de-duplicated.
func NewPaymentService(
	logger *slog.Logger,
	repo payment.Repository,
	gatewayClient GatewayClient,
	publisher EventPublisher,
	cache payment.CheckoutCache,
	callbacks CallbackURLs,
) PaymentService {
	return &PaymentServiceImpl{
		repo:      repo,
		gateway:   gatewayClient,
		publisher: publisher,
		cache:     cache,
		callbacks: callbacks,
		logger:    logger.With("component", "payment_service"),
		now:       time.Now,
	}
}

func (s *PaymentServiceImpl) InitiateCheckout(ctx context.Context, req CheckoutRequest) (*payment.CheckoutResult, error) {
	key := replayKey(req.Subject, req.IdempotencyKey)
	fingerprint := checkoutFingerprint(req)

	reserved, replayed, err := s.reserve(ctx, key, req.IdempotencyKey, fingerprint)
	if err != nil {
		return nil, err
	}
	if replayed != nil {
		return replayed, nil
	}

	result, err := s.initiate(ctx, req)
	if reserved {
		if err != nil {
			s.release(ctx, key)
		} else {
			s.complete(ctx, key, &payment.CheckoutReplay{Fingerprint: fingerprint, Result: result})
		}
	}
	return result, err
}

func (s *PaymentServiceImpl) initiate(ctx context.Context, req CheckoutRequest) (*payment.CheckoutResult, error) {
	tx, err := payment.NewTransaction(req.Customer, req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}
	tx.IdempotencyKey = req.IdempotencyKey
	tx.CorrelationID = req.CorrelationID

	log := s.logger.With("transaction_id", tx.TransactionID)

	// The record must exist before the gateway can call back for it
	if err := s.repo.Create(ctx, tx); err != nil {
		log.Error("Failed to persist pending transaction", "error", err)
		return nil, err
	}

	successURL, failURL, cancelURL := s.callbacks.forTransaction(tx.TransactionID)
	resp, err := s.gateway.Initiate(ctx, gateway.InitiateRequest{
		TransactionID: tx.TransactionID,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		Customer:      tx.Customer,
		SuccessURL:    successURL,
		FailURL:       failURL,
		CancelURL:     cancelURL,
	})
	if err != nil {
		log.Error("Gateway initiation failed, transaction left pending", "error", err)
		if recErr := s.repo.SetGatewayError(ctx, tx.TransactionID, err.Error()); recErr != nil {
			log.Error("Failed to record gateway error on transaction", "error", recErr)
		}
		var gwErr payment.ErrGateway
		if errors.As(err, &gwErr) {
			return nil, gwErr
		}
		return nil, payment.ErrGateway{TransactionID: tx.TransactionID, Reason: err.Error()}
	}

	if err := s.repo.SetGatewaySession(ctx, tx.TransactionID, resp.SessionKey); err != nil {
		// The customer can still pay; reconciliation only loses the session key
		log.Warn("Failed to store gateway session key", "error", err)
	}

	log.Info("Checkout initiated", "amount", tx.Amount, "currency", tx.Currency)
	return &payment.CheckoutResult{
		TransactionID: tx.TransactionID,
		RedirectURL:   resp.RedirectURL,
	}, nil
}

// replayKey scopes a client idempotency key to the session subject that sent it
func replayKey(subject, idempotencyKey string) string {
	if idempotencyKey == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(subject))
	return hex.EncodeToString(sum[:]) + ":" + idempotencyKey
}

// checkoutFingerprint identifies the parameters a replayed key must repeat
func checkoutFingerprint(req CheckoutRequest) string {
	raw, _ := json.Marshal(struct {
		Amount   int64            `json:"amount"`
		Currency string           `json:"currency"`
		Customer payment.Customer `json:"customer"`
	}{req.Amount, strings.ToUpper(req.Currency), req.Customer})
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// reserve claims key for this request. It returns the earlier result when the key
// already finished with the same parameters. Cache failures degrade to no replay.
func (s *PaymentServiceImpl) reserve(ctx context.Context, key, clientKey, fingerprint string) (bool, *payment.CheckoutResult, error) {
	if s.cache == nil || key == "" {
		return false, nil, nil
	}

	existing, err := s.cache.Reserve(ctx, key, fingerprint)
	if err != nil {
		s.logger.Warn("Checkout cache unavailable, continuing without replay", "idempotency_key", clientKey, "error", err)
		return false, nil, nil
	}
	if existing == nil {
		return true, nil, nil
	}

	if existing.Fingerprint != fingerprint {
		s.logger.Warn("Idempotency key reused with different checkout parameters", "idempotency_key", clientKey)
		return false, nil, payment.ErrIdempotencyKeyReused{Key: clientKey}
	}
	if existing.Result == nil {
		return false, nil, payment.ErrCheckoutInProgress{Key: clientKey}
	}

	s.logger.Info("Replaying checkout for idempotency key", "idempotency_key", clientKey, "transaction_id", existing.Result.TransactionID)
	return false, existing.Result, nil
}

func (s *PaymentServiceImpl) complete(ctx context.Context, key string, replay *payment.CheckoutReplay) {
	if err := s.cache.Complete(ctx, key, replay); err != nil {
		s.logger.Warn("Failed to cache checkout result", "transaction_id", replay.Result.TransactionID, "error", err)
	}
}

func (s *PaymentServiceImpl) release(ctx context.Context, key string) {
	if err := s.cache.Release(ctx, key); err != nil {
		s.logger.Warn("Failed to release checkout reservation", "error", err)
	}
}

func (s *PaymentServiceImpl) ConfirmPayment(ctx context.Context, transactionID uuid.UUID) (*ConfirmationResult, error) {
	log := s.logger.With("transaction_id", transactionID)

	tx, err := s.repo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, payment.ErrTransactionNotFound{}) {
			log.Warn("Success callback for unknown transaction")
		}
		return nil, err
	}

	if tx.IsPaid() {
		log.Info("Transaction already paid, ignoring repeated callback")
		return &ConfirmationResult{TransactionID: transactionID, AlreadyPaid: true}, nil
	}

	paidAt := s.now().UTC()
	won, err := s.repo.MarkPaid(ctx, transactionID, paidAt)
	if err != nil {
		log.Error("Failed to mark transaction paid", "error", err)
		return nil, err
	}
	if !won {
		log.Info("Transaction was paid by a concurrent callback")
		return &ConfirmationResult{TransactionID: transactionID, AlreadyPaid: true}, nil
	}

	log.Info("Transaction paid", "amount", tx.Amount, "currency", tx.Currency)
	s.publishConfirmed(ctx, tx, paidAt)

	return &ConfirmationResult{TransactionID: transactionID}, nil
}

// publishConfirmed never fails the confirmation; the payment is already recorded
func (s *PaymentServiceImpl) publishConfirmed(ctx context.Context, tx *payment.Transaction, paidAt time.Time) {
	if s.publisher == nil {
		return
	}
	event := &shared.PaymentEvent{
		EventID:       uuid.New(),
		Type:          shared.EventTypePaymentConfirmed,
		TransactionID: tx.TransactionID,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		CustomerName:  tx.Customer.Name,
		CustomerEmail: tx.Customer.Email,
		CorrelationID: tx.CorrelationID,
		OccurredAt:    paidAt,
	}
	if err := s.publisher.PublishPaymentEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish payment confirmed event",
			"transaction_id", tx.TransactionID,
			"event_id", event.EventID,
			"error", err,
		)
	}
}

func (s *PaymentServiceImpl) GetTransaction(ctx context.Context, transactionID uuid.UUID) (*payment.Transaction, error) {
	return s.repo.GetByTransactionID(ctx, transactionID)
}

// RecordFailure ignores late fail/cancel callbacks for a transaction that is already paid
func (s *PaymentServiceImpl) RecordFailure(ctx context.Context, transactionID uuid.UUID, reason string) error {
	recorded, err := s.repo.RecordFailure(ctx, transactionID, reason)
	if err != nil {
		if errors.Is(err, payment.ErrTransactionNotFound{}) {
			s.logger.Warn("Failure callback for unknown transaction", "transaction_id", transactionID)
		}
		return err
	}
	if !recorded {
		s.logger.Info("Ignoring failure callback for paid transaction", "transaction_id", transactionID, "reason", reason)
		return nil
	}
	s.logger.Info("Payment failure recorded", "transaction_id", transactionID, "reason", reason)
	return nil
}
