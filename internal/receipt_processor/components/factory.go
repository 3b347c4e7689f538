package components

import (
	"log/slog"

	"github.com/blog-commerce-backend/internal/config"
	"github.com/blog-commerce-backend/internal/domain/outbox"
	"github.com/blog-commerce-backend/internal/domain/receipt"
	"github.com/blog-commerce-backend/internal/platform/persistence"
	"github.com/blog-commerce-backend/internal/receipt_processor/service"
)

// CreateProcessingService wires the receipt pipeline and wraps it in the worker pool.
// If the pool cannot be created the unpooled service is returned.
func CreateProcessingService(
	db persistence.TxBeginner,
	receiptRepo receipt.Repository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
	cfg *config.Config,
) service.ProcessingService {
	baseService := service.NewProcessingService(
		db,
		NewEventValidator(receiptRepo, logger),
		NewReceiptManager(receiptRepo, logger),
		NewOutboxManager(outboxRepo, logger),
		logger,
	)

	workerPoolService, err := service.NewWorkerPoolProcessingService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool processing service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
