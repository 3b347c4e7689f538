package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/blog-commerce-backend/internal/config"
	"github.com/blog-commerce-backend/internal/data/mongo"
	"github.com/blog-commerce-backend/internal/data/postgres"
	"github.com/blog-commerce-backend/internal/logger"
	"github.com/blog-commerce-backend/internal/platform/messaging/consumers"
	"github.com/blog-commerce-backend/internal/platform/messaging/producers"
	"github.com/blog-commerce-backend/internal/platform/persistence"
	"github.com/blog-commerce-backend/internal/receipt_processor/components"
	"github.com/blog-commerce-backend/internal/receipt_processor/consumer"
	"github.com/blog-commerce-backend/internal/receipt_processor/outbox_poller"
	"github.com/blog-commerce-backend/internal/receipt_processor/service"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("receipt_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting Receipt Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	if err = persistence.RunMigrations(cfg.Postgres.URL, cfg.Postgres.MigrationsPath); err != nil {
		log.Error("Failed to run PostgreSQL migrations", "error", err)
		os.Exit(1)
	}

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	receiptRepo := postgres.NewReceiptRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	paymentRepo := mongo.NewPaymentRepository(log, mongoDB.Database())

	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// nil when no DLQ topic is configured; PublishToDLQ then reports ErrDLQDisabled
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}

	processingService := components.CreateProcessingService(
		postgresDB.Pool(),
		receiptRepo,
		outboxRepo,
		log,
		cfg,
	)

	eventHandler := consumer.NewPaymentEventHandler(log, processingService, dlqProducer)

	poller := outbox_poller.NewPoller(
		&cfg.Outbox,
		outboxRepo,
		outbox_poller.NewReceiptPublisher(outboxRepo, paymentRepo, log),
		log,
	)

	if err = kafkaConsumer.Subscribe(appCtx, eventHandler.HandleMessage); err != nil {
		log.Error("Failed to subscribe Kafka consumer", "error", err)
		os.Exit(1)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case <-kafkaConsumer.Done():
		log.Error("Kafka consumer stopped unexpectedly")
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	stopped := make(chan struct{})
	go func() {
		<-kafkaConsumer.Done()
		wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		log.Info("Consumer and outbox poller stopped")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	if wpService, ok := processingService.(*service.WorkerPoolProcessingService); ok {
		wpService.Shutdown()
	}

	var shutdownErr error
	if err := kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
		shutdownErr = err
	}

	if err := dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ Kafka producer", "error", err)
		shutdownErr = err
	}

	postgresDB.Close()

	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
		shutdownErr = err
	}

	if shutdownErr != nil {
		log.Error("Receipt Processor shutdown completed with errors", "error", shutdownErr)
		os.Exit(1)
	}
	log.Info("Receipt Processor shutdown completed successfully")
}
