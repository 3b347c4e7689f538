// Package redis holds Redis-backed stores.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/blog-commerce-backend/internal/domain/payment"
	"github.com/go-redis/redis/v8"
)

const checkoutKeyPrefix = "checkout:idempotency:"

// ErrReservationLost is returned when a taken key expired before it could be read
var ErrReservationLost = errors.New("checkout reservation expired while reading it")

// CheckoutCache implements payment.CheckoutCache on Redis
type CheckoutCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCheckoutCache creates a replay cache whose entries expire after ttl
func NewCheckoutCache(logger *slog.Logger, client *redis.Client, ttl time.Duration) *CheckoutCache {
	return &CheckoutCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Reserve claims the key with SETNX. Of several concurrent callers exactly one gets nil back.
func (c *CheckoutCache) Reserve(ctx context.Context, key, fingerprint string) (*payment.CheckoutReplay, error) {
	raw, err := json.Marshal(&payment.CheckoutReplay{Fingerprint: fingerprint})
	if err != nil {
		return nil, fmt.Errorf("failed to encode checkout reservation: %w", err)
	}

	claimed, err := c.client.SetNX(ctx, checkoutKeyPrefix+key, raw, c.ttl).Result()
	if err != nil {
		c.logger.Error("Failed to reserve checkout key", "idempotency_key", key, "error", err)
		return nil, fmt.Errorf("failed to reserve checkout key: %w", err)
	}
	if claimed {
		return nil, nil
	}

	existing, err := c.client.Get(ctx, checkoutKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrReservationLost
		}
		c.logger.Error("Failed to read checkout cache", "idempotency_key", key, "error", err)
		return nil, fmt.Errorf("failed to read checkout cache: %w", err)
	}

	var replay payment.CheckoutReplay
	if err := json.Unmarshal(existing, &replay); err != nil {
		return nil, fmt.Errorf("failed to decode cached checkout: %w", err)
	}
	return &replay, nil
}

// Complete overwrites the reservation with the finished result for the configured ttl
func (c *CheckoutCache) Complete(ctx context.Context, key string, replay *payment.CheckoutReplay) error {
	raw, err := json.Marshal(replay)
	if err != nil {
		return fmt.Errorf("failed to encode checkout result: %w", err)
	}

	if err := c.client.Set(ctx, checkoutKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		c.logger.Error("Failed to write checkout cache", "idempotency_key", key, "error", err)
		return fmt.Errorf("failed to write checkout cache: %w", err)
	}
	return nil
}

func (c *CheckoutCache) Release(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, checkoutKeyPrefix+key).Err(); err != nil {
		c.logger.Error("Failed to release checkout key", "idempotency_key", key, "error", err)
		return fmt.Errorf("failed to release checkout key: %w", err)
	}
	return nil
}
