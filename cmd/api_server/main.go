package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/blog-commerce-backend/internal/api_server"
	"github.com/blog-commerce-backend/internal/api_server/service"
	"github.com/blog-commerce-backend/internal/config"
	"github.com/blog-commerce-backend/internal/data/mongo"
	redisdata "github.com/blog-commerce-backend/internal/data/redis"
	"github.com/blog-commerce-backend/internal/domain/payment"
	"github.com/blog-commerce-backend/internal/logger"
	"github.com/blog-commerce-backend/internal/platform/gateway"
	"github.com/blog-commerce-backend/internal/platform/messaging/producers"
	"github.com/blog-commerce-backend/internal/platform/persistence"
	"github.com/blog-commerce-backend/internal/platform/session"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("api_server")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting API Server",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	commentRepo := mongo.NewCommentRepository(log, mongoDB.Database())
	paymentRepo := mongo.NewPaymentRepository(log, mongoDB.Database())
	if err = commentRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to ensure comment indexes", "error", err)
		os.Exit(1)
	}
	if err = paymentRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to ensure payment indexes", "error", err)
		os.Exit(1)
	}

	// Redis is optional; checkouts are not replayed without it
	var checkoutCache payment.CheckoutCache
	redisClient := persistence.NewRedis(appCtx, log, &cfg.Redis)
	if redisClient != nil {
		checkoutCache = redisdata.NewCheckoutCache(log, redisClient, cfg.Redis.IdempotencyTTL)
	}

	eventProducer, err := producers.NewPaymentEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize payment event producer", "error", err)
		os.Exit(1)
	}

	if cfg.Gateway.CallbackSecret == "" {
		log.Warn("GATEWAY_CALLBACK_SECRET is empty, gateway callbacks are accepted unsigned")
	}

	sessions := session.NewManager(&cfg.Session)
	services := api_server.Services{
		Comments: service.NewCommentService(log, commentRepo),
		Replies:  service.NewReplyLedger(log, commentRepo),
		Payments: service.NewPaymentService(
			log,
			paymentRepo,
			gateway.NewClient(log, &cfg.Gateway),
			eventProducer,
			checkoutCache,
			service.CallbackURLs{
				PublicBaseURL: cfg.Gateway.PublicBaseURL,
				Secret:        cfg.Gateway.CallbackSecret,
			},
		),
	}

	server := api_server.NewServer(log, cfg, services, sessions)
	log.Info("REST server initialized")

	errChan := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	var shutdownErr error
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
		shutdownErr = err
	}

	if err := eventProducer.Close(); err != nil {
		log.Error("Error closing payment event producer", "error", err)
		shutdownErr = err
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis client", "error", err)
			shutdownErr = err
		}
	}

	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
		shutdownErr = err
	}

	if serverErr != nil || shutdownErr != nil {
		log.Error("API Server shutdown completed with errors", "server_error", serverErr, "shutdown_error", shutdownErr)
		os.Exit(1)
	}
	log.Info("API Server shutdown completed successfully")
}
