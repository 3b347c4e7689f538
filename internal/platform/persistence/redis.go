package persistence

import (
	"context"
	"log/slog"
	"time"

	"github.com/blog-commerce-backend/internal/config"
	"github.com/go-redis/redis/v8"
)

// NewRedis connects to Redis. An unreachable server is not fatal: it returns nil
// and callers run without the features Redis backs.
func NewRedis(ctx context.Context, logger *slog.Logger, cfg *config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		logger.Warn("Redis address not configured, continuing without Redis")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis connection failed, continuing without Redis", "addr", cfg.Addr, "error", err)
		_ = client.Close()
		return nil
	}

	logger.Info("Connected to Redis", "addr", cfg.Addr)
	return client
}
